package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"assetvault/internal/domain"
)

func discardLog() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

// fakeVault is an in-memory ports.VaultAPI with call counters.
type fakeVault struct {
	mu       sync.Mutex
	clients  []domain.Client
	assets   []domain.Asset
	projects []domain.Project
	secrets  map[string]*domain.Credentials
	stats    domain.DashboardStats

	err         error
	statusErr   error
	revealDelay time.Duration

	revealCalls atomic.Int32
	renewCalls  atomic.Int32
	statusSets  []domain.ClientStatus
	created     []domain.AssetInput
	updated     map[string]domain.AssetInput
}

func (f *fakeVault) ListClients(ctx context.Context) ([]domain.Client, error) {
	return f.clients, f.err
}

func (f *fakeVault) GetClient(ctx context.Context, id string) (domain.ClientProfile, error) {
	if f.err != nil {
		return domain.ClientProfile{}, f.err
	}
	for _, c := range f.clients {
		if c.ID == id {
			p := domain.ClientProfile{Client: c}
			for _, a := range f.assets {
				if a.ClientID == id {
					p.Assets = append(p.Assets, a)
				}
			}
			return p, nil
		}
	}
	return domain.ClientProfile{}, &domain.APIError{Status: 404, Message: "Client not found"}
}

func (f *fakeVault) CreateClient(ctx context.Context, c domain.Client) (domain.Client, error) {
	if f.err != nil {
		return domain.Client{}, f.err
	}
	c.ID = "new"
	f.clients = append(f.clients, c)
	return c, nil
}

func (f *fakeVault) SetClientStatus(ctx context.Context, id string, status domain.ClientStatus) error {
	if f.statusErr != nil {
		return f.statusErr
	}
	f.mu.Lock()
	f.statusSets = append(f.statusSets, status)
	f.mu.Unlock()
	return nil
}

func (f *fakeVault) DeleteClient(ctx context.Context, id string) error { return f.err }

func (f *fakeVault) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	return f.assets, f.err
}

func (f *fakeVault) RevealAsset(ctx context.Context, id string) (domain.Asset, error) {
	f.revealCalls.Add(1)
	if f.revealDelay > 0 {
		time.Sleep(f.revealDelay)
	}
	if f.err != nil {
		return domain.Asset{}, f.err
	}
	for _, a := range f.assets {
		if a.ID == id {
			a.Credentials = f.secrets[id]
			return a, nil
		}
	}
	return domain.Asset{}, &domain.APIError{Status: 404, Message: "Asset not found"}
}

func (f *fakeVault) CreateAsset(ctx context.Context, in domain.AssetInput) (domain.Asset, error) {
	f.created = append(f.created, in)
	return domain.Asset{ID: "a-new", ServiceName: in.ServiceName}, f.err
}

func (f *fakeVault) UpdateAsset(ctx context.Context, id string, in domain.AssetInput) (domain.Asset, error) {
	if f.updated == nil {
		f.updated = map[string]domain.AssetInput{}
	}
	f.updated[id] = in
	return domain.Asset{ID: id}, f.err
}

func (f *fakeVault) RenewAsset(ctx context.Context, id string) (domain.Asset, error) {
	f.renewCalls.Add(1)
	time.Sleep(20 * time.Millisecond)
	return domain.Asset{ID: id}, f.err
}

func (f *fakeVault) ListProjects(ctx context.Context) ([]domain.Project, error) {
	return f.projects, f.err
}

func (f *fakeVault) GetProject(ctx context.Context, id string) (domain.Project, error) {
	for _, p := range f.projects {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Project{}, &domain.APIError{Status: 404}
}

func (f *fakeVault) CreateProject(ctx context.Context, in domain.ProjectInput) (domain.Project, error) {
	return domain.Project{ID: "p-new", Name: in.Name, Status: in.Status}, f.err
}

func (f *fakeVault) UpdateProject(ctx context.Context, id string, in domain.ProjectInput) (domain.Project, error) {
	return domain.Project{ID: id, Name: in.Name, Status: in.Status}, f.err
}

func (f *fakeVault) DeleteProject(ctx context.Context, id string) error { return f.err }

func (f *fakeVault) DashboardStats(ctx context.Context) (domain.DashboardStats, error) {
	return f.stats, f.err
}

// fakeCache is a minimal ports.RevealCache.
type fakeCache struct {
	id      string
	mu      sync.Mutex
	secrets map[string]string
	visible map[string]bool
}

func newFakeCache(id string) *fakeCache {
	return &fakeCache{id: id, secrets: map[string]string{}, visible: map[string]bool{}}
}

func (c *fakeCache) ID() string { return c.id }

func (c *fakeCache) Secret(id string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.secrets[id]
	return s, ok
}

func (c *fakeCache) StoreSecret(id, s string) {
	c.mu.Lock()
	c.secrets[id] = s
	c.mu.Unlock()
}

func (c *fakeCache) Visible(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible[id]
}

func (c *fakeCache) SetVisible(id string, v bool) {
	c.mu.Lock()
	c.visible[id] = v
	c.mu.Unlock()
}

type fakeSink struct {
	clients, assets, projects int
	err                       error
}

func (s *fakeSink) SyncClients(ctx context.Context, c []domain.Client) error {
	s.clients += len(c)
	return s.err
}

func (s *fakeSink) SyncAssets(ctx context.Context, a []domain.Asset) error {
	s.assets += len(a)
	return s.err
}

func (s *fakeSink) SyncProjects(ctx context.Context, p []domain.Project) error {
	s.projects += len(p)
	return s.err
}
