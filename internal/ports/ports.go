package ports

import (
	"context"

	"assetvault/internal/domain"
)

// ClientAPI is the client half of the vault API.
type ClientAPI interface {
	ListClients(ctx context.Context) ([]domain.Client, error)
	GetClient(ctx context.Context, id string) (domain.ClientProfile, error)
	CreateClient(ctx context.Context, c domain.Client) (domain.Client, error)
	SetClientStatus(ctx context.Context, id string, status domain.ClientStatus) error
	DeleteClient(ctx context.Context, id string) error
}

// AssetAPI is the asset half of the vault API. ListAssets never carries
// plaintext credentials; RevealAsset does.
type AssetAPI interface {
	ListAssets(ctx context.Context) ([]domain.Asset, error)
	RevealAsset(ctx context.Context, id string) (domain.Asset, error)
	CreateAsset(ctx context.Context, in domain.AssetInput) (domain.Asset, error)
	UpdateAsset(ctx context.Context, id string, in domain.AssetInput) (domain.Asset, error)
	RenewAsset(ctx context.Context, id string) (domain.Asset, error)
}

type ProjectAPI interface {
	ListProjects(ctx context.Context) ([]domain.Project, error)
	GetProject(ctx context.Context, id string) (domain.Project, error)
	CreateProject(ctx context.Context, in domain.ProjectInput) (domain.Project, error)
	UpdateProject(ctx context.Context, id string, in domain.ProjectInput) (domain.Project, error)
	DeleteProject(ctx context.Context, id string) error
}

type StatsAPI interface {
	DashboardStats(ctx context.Context) (domain.DashboardStats, error)
}

// VaultAPI is the whole remote API.
type VaultAPI interface {
	ClientAPI
	AssetAPI
	ProjectAPI
	StatsAPI
}

// Sink receives vault records and persists them to a reporting mirror.
type Sink interface {
	SyncClients(ctx context.Context, clients []domain.Client) error
	SyncAssets(ctx context.Context, assets []domain.Asset) error
	SyncProjects(ctx context.Context, projects []domain.Project) error
}

// AuditRecorder keeps a trail of secret reveals.
type AuditRecorder interface {
	RecordReveal(ctx context.Context, ev domain.RevealEvent) error
	ListReveals(ctx context.Context, limit int) ([]domain.RevealEvent, error)
}

// RevealCache is the per-session store of revealed secrets and their
// visibility toggles.
type RevealCache interface {
	ID() string
	Secret(assetID string) (string, bool)
	StoreSecret(assetID, secret string)
	Visible(assetID string) bool
	SetVisible(assetID string, visible bool)
}
