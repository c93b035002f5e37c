package mysql

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetvault/internal/domain"
)

var fixedNow = time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

func newMock(t *testing.T) (*Client, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	c := NewWithDB(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.now = func() time.Time { return fixedNow }
	return c, mock
}

func TestSyncAssetsUpsertsWithoutCredentials(t *testing.T) {
	c, mock := newMock(t)
	expiry := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	assets := []domain.Asset{
		{
			ID: "a1", ClientID: "c1", Category: domain.CategoryDomain, ServiceName: "GoDaddy",
			Identifier: "acme.com", ExpiryDate: &expiry, RenewalCost: 12,
			Credentials: &domain.Credentials{Username: "u", Password: "hunter2"},
		},
		{ID: "a2", ClientID: "c1", Category: domain.CategoryHosting, ServiceName: "AWS", Identifier: "ec2", Currency: "USD"},
	}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO vault_assets"))
	prep.ExpectExec().
		WithArgs("a1", "c1", "Domain", "GoDaddy", "acme.com", expiry, false, 12.0, "INR", fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().
		WithArgs("a2", "c1", "Hosting", "AWS", "ec2", nil, false, 0.0, "USD", fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, c.SyncAssets(context.Background(), assets))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncRollsBackOnError(t *testing.T) {
	c, mock := newMock(t)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO vault_clients"))
	prep.ExpectExec().WillReturnError(errors.New("deadlock"))
	mock.ExpectRollback()

	err := c.SyncClients(context.Background(), []domain.Client{{ID: "c1", CompanyName: "Acme"}})
	require.EqualError(t, err, "deadlock")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncEmptyIsNoop(t *testing.T) {
	c, mock := newMock(t)
	require.NoError(t, c.SyncProjects(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncProjectsSkipsEnv(t *testing.T) {
	c, mock := newMock(t)
	p := domain.Project{
		ID: "p1", ClientID: "c1", Name: "Shop", Status: domain.ProjectProduction,
		TechStack:  domain.Pair{Frontend: "Next.js", Backend: "Go"},
		Deployment: domain.Pair{Frontend: "https://shop", Backend: "https://api"},
		Env:        domain.Pair{Frontend: "SECRET=1"},
	}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO vault_projects"))
	prep.ExpectExec().
		WithArgs("p1", "c1", "Shop", "Production", "Next.js", "Go", "https://shop", "https://api", nil, fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, c.SyncProjects(context.Background(), []domain.Project{p}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRevealAudit(t *testing.T) {
	c, mock := newMock(t)
	ev := domain.RevealEvent{At: fixedNow, Actor: "ops@acme", AssetID: "a1", ServiceName: "GoDaddy", SessionID: "s1"}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reveal_audit")).
		WithArgs(fixedNow, "ops@acme", "a1", "GoDaddy", "s1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, c.RecordReveal(context.Background(), ev))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT revealed_at, actor, asset_id, service_name, session_id FROM reveal_audit")).
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows([]string{"revealed_at", "actor", "asset_id", "service_name", "session_id"}).
			AddRow(fixedNow, "ops@acme", "a1", "GoDaddy", "s1"))
	got, err := c.ListReveals(context.Background(), 50)
	require.NoError(t, err)
	assert.Equal(t, []domain.RevealEvent{ev}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}
