package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderCertificate(t *testing.T) {
	renderer := NewCertificateRenderer()

	data, err := renderer.Render(CertificateData{
		Recipient: "alice",
		Project:   "openwave",
		Hackathon: "ETHGlobal 2026",
		Rank:      2,
		Date:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")), "output should be a PDF document")
	assert.Greater(t, len(data), 1000)
}

func TestRenderCertificateNoRank(t *testing.T) {
	renderer := NewCertificateRenderer()

	data, err := renderer.Render(CertificateData{
		Recipient: "bob",
		Project:   "demo-project",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestRenderCertificateValidation(t *testing.T) {
	renderer := NewCertificateRenderer()

	_, err := renderer.Render(CertificateData{Project: "p"})
	assert.Error(t, err)

	_, err = renderer.Render(CertificateData{Recipient: "alice"})
	assert.Error(t, err)
}

func TestRenderDeterministicLayout(t *testing.T) {
	renderer := NewCertificateRenderer()
	fixed := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	a, err := renderer.Render(CertificateData{Recipient: "alice", Project: "p1", Date: fixed})
	require.NoError(t, err)
	b, err := renderer.Render(CertificateData{Recipient: "alice", Project: "p1", Date: fixed})
	require.NoError(t, err)

	assert.Equal(t, len(a), len(b))
}
