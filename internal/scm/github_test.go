package scm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openwave/ows/internal/apperr"
	"github.com/openwave/ows/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMerged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer ghp_test", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/repos/acme/widgets/pulls/7/merge":
			w.WriteHeader(http.StatusNoContent)
		case "/repos/acme/widgets/pulls/8/merge":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	client := NewGithubClient(config.ScmConfig{ApiUrl: srv.URL, Token: "ghp_test"})

	merged, err := client.IsMerged(context.Background(), "acme/widgets", 7)
	require.NoError(t, err)
	assert.True(t, merged)

	merged, err = client.IsMerged(context.Background(), "acme/widgets", 8)
	require.NoError(t, err)
	assert.False(t, merged)

	_, err = client.IsMerged(context.Background(), "acme/other", 1)
	assert.True(t, apperr.IsConnectivity(err))
}
