package pinning

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openwave/ows/internal/apperr"
	"github.com/openwave/ows/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, check func(r *http.Request)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/pinning/pinFileToIPFS", r.URL.Path)
		check(r)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"IpfsHash":"QmTestHash123","PinSize":1024,"Timestamp":"2026-01-01T00:00:00Z"}`))
	}))
}

func TestPinFileWithKeySecret(t *testing.T) {
	srv := newTestServer(t, func(r *http.Request) {
		assert.Equal(t, "key-1", r.Header.Get("pinata_api_key"))
		assert.Equal(t, "secret-1", r.Header.Get("pinata_secret_api_key"))
		assert.Empty(t, r.Header.Get("Authorization"))
	})
	defer srv.Close()

	client := NewClient(config.PinningConfig{
		ApiUrl:     srv.URL,
		ApiKey:     "key-1",
		ApiSecret:  "secret-1",
		GatewayUrl: "https://gateway.example/ipfs",
	})

	cid, err := client.PinFile(context.Background(), "cert.pdf", []byte("%PDF-1.4 test"))
	require.NoError(t, err)
	assert.Equal(t, "QmTestHash123", cid)
	assert.Equal(t, "https://gateway.example/ipfs/QmTestHash123", client.GatewayURL(cid))
}

func TestPinFileWithBearerToken(t *testing.T) {
	srv := newTestServer(t, func(r *http.Request) {
		assert.Equal(t, "Bearer jwt-token", r.Header.Get("Authorization"))
		assert.Empty(t, r.Header.Get("pinata_api_key"))
	})
	defer srv.Close()

	client := NewClient(config.PinningConfig{
		ApiUrl:     srv.URL,
		Jwt:        "jwt-token",
		GatewayUrl: "https://gateway.example/ipfs",
	})

	cid, err := client.PinFile(context.Background(), "cert.pdf", []byte("%PDF-1.4 test"))
	require.NoError(t, err)
	assert.Equal(t, "QmTestHash123", cid)
}

func TestPinFileNoCredentials(t *testing.T) {
	client := NewClient(config.PinningConfig{ApiUrl: "https://api.example"})

	_, err := client.PinFile(context.Background(), "cert.pdf", []byte("data"))
	assert.True(t, errors.Is(err, apperr.ErrNoCredentials))
}

func TestPinFileServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(config.PinningConfig{ApiUrl: srv.URL, Jwt: "jwt"})

	_, err := client.PinFile(context.Background(), "cert.pdf", []byte("data"))
	assert.True(t, apperr.IsConnectivity(err))
}
