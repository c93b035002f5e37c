package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetvault/internal/domain"
)

var now = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

func ptime(d time.Duration) *time.Time { t := now.Add(d); return &t }

func vaultFixture() *fakeVault {
	acme := &domain.ClientRef{ID: "c1", CompanyName: "Acme"}
	beta := &domain.ClientRef{ID: "c2", CompanyName: "Beta Labs"}
	day := 24 * time.Hour
	return &fakeVault{
		clients: []domain.Client{
			{ID: "c1", CompanyName: "Acme", ContactPerson: "Jane", Email: "jane@acme.test", Status: domain.ClientActive},
			{ID: "c2", CompanyName: "Beta Labs", ContactPerson: "Raj", Email: "raj@beta.test", Status: domain.ClientInactive},
		},
		assets: []domain.Asset{
			{ID: "a1", ClientID: "c1", Client: acme, Category: domain.CategoryDomain, ServiceName: "GoDaddy", Identifier: "acme.com", ExpiryDate: ptime(3 * day), RenewalCost: 10},
			{ID: "a2", ClientID: "c1", Client: acme, Category: domain.CategoryHosting, ServiceName: "AWS", Identifier: "acme-prod", ExpiryDate: ptime(20 * day), RenewalCost: 50},
			{ID: "a3", ClientID: "c2", Client: beta, Category: domain.CategoryDomain, ServiceName: "Namecheap", Identifier: "beta.io", ExpiryDate: ptime(200 * day)},
			{ID: "a4", ClientID: "c2", Client: beta, Category: domain.CategoryEmail, ServiceName: "Zoho", Identifier: "mail"},
			{ID: "a5", ClientID: "c2", Client: beta, Category: domain.CategoryServer, ServiceName: "VPS", Identifier: "old", ExpiryDate: ptime(-2 * day)},
		},
		projects: []domain.Project{
			{ID: "p1", Name: "Storefront", Status: domain.ProjectProduction, Client: acme},
			{ID: "p2", Name: "Lab portal", Description: "internal", Status: domain.ProjectDevelopment, Client: beta},
		},
		secrets: map[string]*domain.Credentials{
			"a1": {Username: "admin", Password: "hunter2"},
			"a2": {APIKey: "AKIA-1"},
		},
	}
}

func TestToggleStatusPersistsOnlyOnSuccess(t *testing.T) {
	fv := vaultFixture()
	uc := &Clients{Log: discardLog(), API: fv}
	c := fv.clients[0]

	got, err := uc.ToggleStatus(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, domain.ClientInactive, got.Status)
	assert.Equal(t, []domain.ClientStatus{domain.ClientInactive}, fv.statusSets)

	got, err = uc.ToggleStatus(context.Background(), got)
	require.NoError(t, err)
	assert.Equal(t, domain.ClientActive, got.Status)

	fv.statusErr = &domain.APIError{Status: 500, Message: "db down"}
	got, err = uc.ToggleStatus(context.Background(), c)
	require.Error(t, err)
	assert.Equal(t, domain.ClientActive, got.Status, "status must not change when the update fails")
}

func TestClientsListSearch(t *testing.T) {
	uc := &Clients{Log: discardLog(), API: vaultFixture()}
	got, err := uc.List(context.Background(), "RAJ@")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c2", got[0].ID)

	got, err = uc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestClientsCreateValidates(t *testing.T) {
	fv := vaultFixture()
	uc := &Clients{Log: discardLog(), API: fv}

	_, err := uc.Create(context.Background(), ClientForm{CompanyName: "X", Email: "not-an-email"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Fields, 2)

	_, err = uc.Create(context.Background(), ClientForm{CompanyName: "X", ContactPerson: "Y", Email: "y@x.test", ProjectType: "Mobile"})
	require.ErrorAs(t, err, &ve)

	c, err := uc.Create(context.Background(), ClientForm{CompanyName: " Gamma ", ContactPerson: "Y", Email: "y@x.test"})
	require.NoError(t, err)
	assert.Equal(t, "Gamma", c.CompanyName)
	assert.Equal(t, domain.ProjectTypeWeb, c.ProjectType)
	assert.Equal(t, domain.ClientActive, c.Status)
}

func TestAssetFilterIntersection(t *testing.T) {
	uc := &Assets{Log: discardLog(), API: vaultFixture()}

	cases := []struct {
		name string
		f    Filter
		ids  []string
	}{
		{"all", Filter{}, []string{"a1", "a2", "a3", "a4", "a5"}},
		{"all categories literal", Filter{Category: domain.AllCategories}, []string{"a1", "a2", "a3", "a4", "a5"}},
		{"category only", Filter{Category: "Domain"}, []string{"a1", "a3"}},
		{"query only by client", Filter{Query: "beta"}, []string{"a3", "a4", "a5"}},
		{"both", Filter{Category: "Domain", Query: "beta"}, []string{"a3"}},
		{"query by identifier", Filter{Query: "ACME-PROD"}, []string{"a2"}},
		{"no match", Filter{Category: "Cloudinary", Query: "acme"}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := uc.List(context.Background(), tc.f)
			require.NoError(t, err)
			var ids []string
			for _, a := range got {
				ids = append(ids, a.ID)
			}
			assert.Equal(t, tc.ids, ids)
		})
	}
}

func TestRevealCallsAPIAtMostOncePerSession(t *testing.T) {
	fv := vaultFixture()
	audit := &MemoryAudit{Log: discardLog()}
	uc := &Assets{Log: discardLog(), API: fv, Audit: audit, Now: func() time.Time { return now }}
	cache := newFakeCache("s1")
	ctx := context.Background()

	r, err := uc.Reveal(ctx, cache, "ops", "a1")
	require.NoError(t, err)
	assert.Equal(t, RevealResult{Visible: true, Secret: "hunter2"}, r)

	r, err = uc.Reveal(ctx, cache, "ops", "a1")
	require.NoError(t, err)
	assert.False(t, r.Visible)

	r, err = uc.Reveal(ctx, cache, "ops", "a1")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", r.Secret)
	assert.EqualValues(t, 1, fv.revealCalls.Load())

	r, err = uc.Reveal(ctx, newFakeCache("s2"), "ops", "a2")
	require.NoError(t, err)
	assert.Equal(t, "AKIA-1", r.Secret)
	assert.EqualValues(t, 2, fv.revealCalls.Load())

	events, err := audit.ListReveals(ctx, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "a2", events[0].AssetID)
	assert.Equal(t, "s1", events[1].SessionID)
}

func TestRevealConcurrentSameSession(t *testing.T) {
	fv := vaultFixture()
	fv.revealDelay = 30 * time.Millisecond
	uc := &Assets{Log: discardLog(), API: fv}
	cache := newFakeCache("s1")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = uc.Reveal(context.Background(), cache, "ops", "a1")
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, fv.revealCalls.Load())
	s, ok := cache.Secret("a1")
	assert.True(t, ok)
	assert.Equal(t, "hunter2", s)
}

func TestRevealNoSecretAndFailure(t *testing.T) {
	fv := vaultFixture()
	uc := &Assets{Log: discardLog(), API: fv}
	r, err := uc.Reveal(context.Background(), newFakeCache("s"), "ops", "a4")
	require.NoError(t, err)
	assert.Equal(t, "No Secret", r.Secret)

	fv.err = errors.New("boom")
	cache := newFakeCache("s")
	_, err = uc.Reveal(context.Background(), cache, "ops", "a1")
	require.Error(t, err)
	assert.False(t, cache.Visible("a1"))
	_, cached := cache.Secret("a1")
	assert.False(t, cached)
}

func TestRenewCollapsesConcurrentCalls(t *testing.T) {
	fv := vaultFixture()
	uc := &Assets{Log: discardLog(), API: fv}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Renew(context.Background(), "a1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Less(t, fv.renewCalls.Load(), int32(5))
}

func TestAssetSaveCreateAndUpdate(t *testing.T) {
	fv := vaultFixture()
	uc := &Assets{Log: discardLog(), API: fv}
	form := AssetForm{
		ClientID: "c1", Category: "Domain", ServiceName: "GoDaddy", Identifier: "acme.com",
		Username: "admin", Password: domain.SecretMask, ExpiryDate: "2026-02-01", RenewalCost: "12.5",
	}

	_, err := uc.Save(context.Background(), "", form)
	require.NoError(t, err)
	require.Len(t, fv.created, 1)
	in := fv.created[0]
	assert.Equal(t, "INR", in.Currency)
	assert.InDelta(t, 12.5, in.RenewalCost, 0.001)
	assert.Equal(t, "2026-02-01", in.ExpiryDate.Format("2006-01-02"))
	assert.False(t, in.PasswordChanged())

	form.Password = "n3w"
	_, err = uc.Save(context.Background(), "a1", form)
	require.NoError(t, err)
	assert.True(t, fv.updated["a1"].PasswordChanged())

	form.Category = "Blog"
	_, err = uc.Save(context.Background(), "a1", form)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestAssetGet(t *testing.T) {
	uc := &Assets{Log: discardLog(), API: vaultFixture()}
	a, err := uc.Get(context.Background(), "a3")
	require.NoError(t, err)
	assert.Equal(t, "Namecheap", a.ServiceName)

	_, err = uc.Get(context.Background(), "zzz")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBuildExpiry(t *testing.T) {
	v := BuildExpiry(vaultFixture().assets, now)

	require.Len(t, v.Entries, 4)
	assert.Equal(t, []string{"a5", "a1", "a2", "a3"}, []string{
		v.Entries[0].Asset.ID, v.Entries[1].Asset.ID, v.Entries[2].Asset.ID, v.Entries[3].Asset.ID,
	})
	assert.Equal(t, -2, v.Entries[0].DaysLeft)
	assert.Equal(t, domain.BucketCritical, v.Entries[0].Bucket)
	assert.Equal(t, domain.BucketWarning, v.Entries[2].Bucket)
	assert.Equal(t, domain.BucketHealthy, v.Entries[3].Bucket)

	assert.Equal(t, 2, v.Critical)
	assert.Equal(t, 3, v.Warning)
	assert.Equal(t, 2, v.Healthy)
}

func TestProjectsList(t *testing.T) {
	uc := &Projects{Log: discardLog(), API: vaultFixture()}
	got, err := uc.List(context.Background(), "production")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].ID)

	p, err := uc.Save(context.Background(), "", ProjectForm{Name: "New", ClientID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectDevelopment, p.Status)

	_, err = uc.Save(context.Background(), "p1", ProjectForm{Name: "New", ClientID: "c1", Status: "Done"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestReports(t *testing.T) {
	fv := vaultFixture()
	audit := &MemoryAudit{Log: discardLog()}
	uc := &Reports{Log: discardLog(), Assets: fv, Clients: fv, Audit: audit}
	ctx := context.Background()

	e, err := uc.Forecast(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, e.Table.Len(), "expired and far-future assets fall outside the window")
	assert.Equal(t, "expiry_forecast_2025-05-01.csv", e.Filename(now, "csv"))

	e, err = uc.ExpiryReport(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, "-2", e.Table.Rows[0][4])

	e, err = uc.ClientAssets(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Acme_Assets_2025-05-01.xlsx", e.Filename(now, "xlsx"))
	assert.Equal(t, 2, e.Table.Len())

	e, err = uc.VaultExport(ctx, Filter{Category: "Email"})
	require.NoError(t, err)
	assert.Equal(t, 1, e.Table.Len())

	_, err = uc.VaultExport(ctx, Filter{Query: "nothing-matches"})
	assert.ErrorIs(t, err, domain.ErrNoData)

	_, err = uc.Build(ctx, KindAudit, now)
	assert.ErrorIs(t, err, domain.ErrNoData)

	_, err = uc.Build(ctx, "weekly", now)
	assert.ErrorIs(t, err, domain.ErrInvalidEnum)

	_, err = uc.ClientAssets(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPaymentRequestNeedsAssets(t *testing.T) {
	fv := vaultFixture()
	fv.clients = append(fv.clients, domain.Client{ID: "c3", CompanyName: "Empty"})
	uc := &Reports{Log: discardLog(), Assets: fv, Clients: fv}

	p, err := uc.PaymentRequest(context.Background(), "c1")
	require.NoError(t, err)
	assert.InDelta(t, 60, p.TotalRenewal(), 0.001)

	_, err = uc.PaymentRequest(context.Background(), "c3")
	assert.ErrorIs(t, err, domain.ErrNoData)
}

func TestMirrorRun(t *testing.T) {
	fv := vaultFixture()
	sink := &fakeSink{}
	uc := &Mirror{Log: discardLog(), Source: fv, Sink: sink}

	require.NoError(t, uc.Run(context.Background()))
	assert.Equal(t, 2, sink.clients)
	assert.Equal(t, 5, sink.assets)
	assert.Equal(t, 2, sink.projects)

	uc.mu.Lock()
	assert.ErrorIs(t, uc.Run(context.Background()), ErrMirrorRunning)
	uc.mu.Unlock()

	fv.err = errors.New("api down")
	assert.Error(t, uc.Run(context.Background()))
}

func TestMemoryAuditCap(t *testing.T) {
	m := &MemoryAudit{Log: discardLog(), Cap: 2}
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, m.RecordReveal(context.Background(), domain.RevealEvent{AssetID: id}))
	}
	got, err := m.ListReveals(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].AssetID)
	assert.Equal(t, "b", got[1].AssetID)
}

func TestDashboardLoad(t *testing.T) {
	fv := vaultFixture()
	fv.stats = domain.DashboardStats{TotalClients: 2, ActiveClients: 1}
	uc := &Dashboard{Log: discardLog(), API: fv}
	s, err := uc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 50, s.ActivePercent())

	fv.err = domain.ErrUnreachable
	_, err = uc.Load(context.Background())
	assert.Equal(t, domain.FailureUnreachable, domain.Classify(err))
}

func TestDeletePropagatesAPIError(t *testing.T) {
	fv := vaultFixture()
	clients := &Clients{Log: discardLog(), API: fv}
	projects := &Projects{Log: discardLog(), API: fv}

	require.NoError(t, clients.Delete(context.Background(), "c1"))
	require.NoError(t, projects.Delete(context.Background(), "p1"))

	fv.err = fmt.Errorf("delete: %w", domain.ErrUnreachable)
	assert.ErrorIs(t, clients.Delete(context.Background(), "c1"), domain.ErrUnreachable)
	assert.ErrorIs(t, projects.Delete(context.Background(), "p1"), domain.ErrUnreachable)
}
