package vaultapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetvault/internal/domain"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestListAssetsDecodesClientShapes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/assets", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[
			{"_id":"a1","client":{"_id":"c1","companyName":"Acme"},"category":"Domain","serviceName":"GoDaddy",
			 "identifier":"acme.com","expiryDate":"2025-06-01T00:00:00.000Z","renewalCost":12.5,"currency":"USD"},
			{"_id":"a2","client":"c2","category":"Hosting","serviceName":"AWS","identifier":"ec2","expiryDate":null},
			{"_id":"a3","client":null,"category":"Other","serviceName":"X","identifier":"y","expiryDate":"2025-07-04"}
		]`)
	})

	assets, err := c.ListAssets(context.Background())
	require.NoError(t, err)
	require.Len(t, assets, 3)

	assert.Equal(t, "c1", assets[0].ClientID)
	require.NotNil(t, assets[0].Client)
	assert.Equal(t, "Acme", assets[0].ClientName())
	require.NotNil(t, assets[0].ExpiryDate)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), assets[0].ExpiryDate.UTC())
	assert.Equal(t, "USD", assets[0].Currency)

	assert.Equal(t, "c2", assets[1].ClientID)
	assert.Nil(t, assets[1].Client)
	assert.Nil(t, assets[1].ExpiryDate)

	require.NotNil(t, assets[2].ExpiryDate)
	assert.Equal(t, "2025-07-04", assets[2].ExpiryDate.Format("2006-01-02"))
}

func TestGetClientNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"msg":"Client not found"}`)
	})

	_, err := c.GetClient(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Client not found", apiErr.Message)
	assert.Equal(t, domain.FailureNotFound, domain.Classify(err))
}

func TestUnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, err := c.DashboardStats(context.Background())
	require.ErrorIs(t, err, domain.ErrUnreachable)
	assert.Equal(t, domain.FailureUnreachable, domain.Classify(err))
}

func TestServerErrorPlainBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "Server Error")
	})
	err := c.DeleteClient(context.Background(), "c1")
	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 500, apiErr.Status)
	assert.Equal(t, "Server Error", apiErr.Message)
	assert.Equal(t, domain.FailureGeneric, domain.Classify(err))
}

func TestSetClientStatusSendsPartialBody(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/clients/c9", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"_id":"c9","status":"Inactive"}`)
	})

	require.NoError(t, c.SetClientStatus(context.Background(), "c9", domain.ClientInactive))
	assert.Equal(t, map[string]any{"status": "Inactive"}, got)
}

func TestUpdateAssetOmitsMaskedPassword(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"_id":"a1"}`)
	})

	expiry := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	_, err := c.UpdateAsset(context.Background(), "a1", domain.AssetInput{
		ClientID:    "c1",
		Category:    domain.CategoryDomain,
		ServiceName: "GoDaddy",
		Identifier:  "acme.com",
		Username:    "admin",
		Password:    domain.SecretMask,
		ExpiryDate:  &expiry,
		Currency:    "INR",
	})
	require.NoError(t, err)

	creds, ok := got["credentials"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "admin", creds["username"])
	assert.NotContains(t, creds, "password")
	assert.Equal(t, "2026-01-31", got["expiryDate"])
	assert.Equal(t, "c1", got["client"])
}

func TestUpdateAssetClearsExpiry(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"_id":"a1"}`)
	})

	_, err := c.UpdateAsset(context.Background(), "a1", domain.AssetInput{
		ClientID:    "c1",
		Category:    domain.CategoryDomain,
		ServiceName: "GoDaddy",
		Identifier:  "acme.com",
	})
	require.NoError(t, err)

	v, ok := got["expiryDate"]
	require.True(t, ok, "expiryDate must be sent so the API drops the old date")
	assert.Nil(t, v)
}

func TestBearerForwarded(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"totalClients":4,"activeClients":3,"inactiveClients":1,"totalAssets":9,"expiringSoon":2,"totalRenewalAmount":1500.5}`)
	})

	stats, err := c.DashboardStats(WithBearer(context.Background(), "tok"))
	require.NoError(t, err)
	assert.Equal(t, domain.DashboardStats{
		TotalClients: 4, ActiveClients: 3, InactiveClients: 1,
		TotalAssets: 9, ExpiringSoon: 2, TotalRenewalAmount: 1500.5,
	}, stats)
}

func TestRevealAndProject(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/assets/reveal/a1":
			_, _ = io.WriteString(w, `{"_id":"a1","client":"c1","credentials":{"username":"u","apiKey":"k-123"}}`)
		case "/api/projects/p1":
			_, _ = io.WriteString(w, `{"_id":"p1","name":"Shop","client":{"_id":"c1","companyName":"Acme"},
				"status":"Production","github":{"frontend":"gh/fe"},"deploymentUrls":{"backend":"https://api"},
				"env":{"frontend":"A=1"},"techStack":{"frontend":"Next.js","backend":"Go"}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	a, err := c.RevealAsset(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "k-123", a.Credentials.Secret())

	p, err := c.GetProject(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Acme", p.ClientName())
	assert.Equal(t, domain.ProjectProduction, p.Status)
	assert.Equal(t, "gh/fe", p.GitHub.Frontend)
	assert.Equal(t, "https://api", p.Deployment.Backend)
	assert.Equal(t, "A=1", p.Env.Get("frontend"))
	assert.Equal(t, "Go", p.TechStack.Backend)
}
