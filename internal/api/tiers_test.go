package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"eagler-tiers/internal/config"
	"eagler-tiers/internal/domain"
	"eagler-tiers/internal/metrics"
	"eagler-tiers/internal/registry"
	"eagler-tiers/internal/server"
	"eagler-tiers/internal/storage"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) *TiersClient {
	t.Helper()
	catalog, err := config.DefaultCatalog()
	require.NoError(t, err)
	reg, err := metrics.NewRegistry()
	require.NoError(t, err)

	store := storage.NewFileStore(filepath.Join(t.TempDir(), "tiers.json"), catalog, zerolog.Nop())
	svc := registry.NewService(store, catalog, zerolog.Nop())
	cfg := &config.Config{AllowedOrigins: []string{"*"}, APIRateLimit: 100}

	srv := httptest.NewServer(server.NewRouter(server.NewTierServer(svc, catalog, zerolog.Nop()), cfg, reg, zerolog.Nop()))
	t.Cleanup(srv.Close)

	cfg.APIURL = srv.URL + "/"
	return NewTiersClient(cfg)
}

func TestClientRoundTrip(t *testing.T) {
	client := newClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, client.SetTier(ctx, domain.SetTierRequest{
		Player:       "Steve",
		GameModeID:   "smp",
		TierName:     "HT3",
		ModifiedBy:   "mod#1",
		ModifiedByID: "1",
		ModifiedAt:   time.Now().UTC().Format(time.RFC3339),
	}))

	tiers, err := client.GetTiers(ctx)
	require.NoError(t, err)
	require.Len(t, tiers["smp"]["HT3"], 1)
	assert.Equal(t, "Steve", tiers["smp"]["HT3"][0].Name)

	res, err := client.RemoveTier(ctx, domain.RemoveTierRequest{Player: "steve", GameModeID: "smp"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Removed)

	res, err = client.RemoveTier(ctx, domain.RemoveTierRequest{Player: "steve", GameModeID: "smp"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Removed)
}

func TestClientSurfacesServerError(t *testing.T) {
	client := newClient(t)

	err := client.SetTier(context.Background(), domain.SetTierRequest{Player: "bob", GameModeID: "smp", TierName: "XX"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, `unknown tierName "XX"`, apiErr.Error())
}

func TestAPIErrorFallsBackToStatusText(t *testing.T) {
	err := &APIError{StatusCode: http.StatusBadGateway}
	assert.Equal(t, "Bad Gateway", err.Error())
}
