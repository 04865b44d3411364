package geocoding_adapter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"homiio/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNominatimClient_Geocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "homiio-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))

		switch r.URL.Query().Get("q") {
		case "Carrer de Mallorca 200, Barcelona, ES":
			_, _ = w.Write([]byte(`[{"lat":"41.3936","lon":"2.1600","display_name":"Carrer de Mallorca"}]`))
		case "Nowhere":
			_, _ = w.Write([]byte(`[]`))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	client := NewNominatimClient(srv.URL, "homiio-test", time.Second)

	loc, err := client.Geocode(context.Background(), "Carrer de Mallorca 200, Barcelona, ES")
	require.NoError(t, err)
	assert.InDelta(t, 41.3936, loc.Latitude, 1e-9)
	assert.InDelta(t, 2.16, loc.Longitude, 1e-9)

	_, err = client.Geocode(context.Background(), "Nowhere")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = client.Geocode(context.Background(), "down")
	assert.Equal(t, domain.CodeUpstreamError, domain.AsAppError(err).Code)

	_, err = client.Geocode(context.Background(), "  ")
	assert.True(t, errors.Is(err, domain.ErrValidation))
}
