package mysql

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"assetvault/internal/domain"
)

// Client implements ports.Sink and ports.AuditRecorder on MySQL.
type Client struct {
	db  *sql.DB
	log *slog.Logger
	now func() time.Time
}

// NewClient opens a MySQL connection using the provided DSN.
// Example DSN: user:pass@tcp(host:3306)/vault?parseTime=true&multiStatements=true
func NewClient(ctx context.Context, dsn string, log *slog.Logger) (*Client, error) {
	if dsn == "" {
		return nil, errors.New("mysql: DSN is required")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(c); err != nil {
		db.Close()
		return nil, err
	}
	return NewWithDB(db, log), nil
}

// NewWithDB wraps an already open handle.
func NewWithDB(db *sql.DB, log *slog.Logger) *Client {
	return &Client{db: db, log: log, now: time.Now}
}

// DB exposes the handle for migrations.
func (c *Client) DB() *sql.DB { return c.db }

const upsertClient = `
INSERT INTO vault_clients
  (id, company_name, contact_person, email, phone, project_type, website, status, created_at, mirrored_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  company_name=VALUES(company_name),
  contact_person=VALUES(contact_person),
  email=VALUES(email),
  phone=VALUES(phone),
  project_type=VALUES(project_type),
  website=VALUES(website),
  status=VALUES(status),
  created_at=VALUES(created_at),
  mirrored_at=VALUES(mirrored_at);
`

// SyncClients upserts clients into vault_clients.
func (c *Client) SyncClients(ctx context.Context, clients []domain.Client) error {
	at := c.now().UTC()
	err := c.upsert(ctx, upsertClient, len(clients), func(i int) []any {
		cl := clients[i]
		return []any{
			cl.ID, cl.CompanyName, cl.ContactPerson, cl.Email, cl.Phone,
			string(cl.ProjectType), cl.Website, string(cl.Status), nullTime(cl.CreatedAt), at,
		}
	})
	if err != nil {
		return err
	}
	c.log.Info("mysql sink upserted clients", slog.Int("count", len(clients)))
	return nil
}

const upsertAsset = `
INSERT INTO vault_assets
  (id, client_id, category, service_name, identifier, expiry_date, auto_renew, renewal_cost, currency, mirrored_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  client_id=VALUES(client_id),
  category=VALUES(category),
  service_name=VALUES(service_name),
  identifier=VALUES(identifier),
  expiry_date=VALUES(expiry_date),
  auto_renew=VALUES(auto_renew),
  renewal_cost=VALUES(renewal_cost),
  currency=VALUES(currency),
  mirrored_at=VALUES(mirrored_at);
`

// SyncAssets upserts assets into vault_assets. Credentials are never
// written.
func (c *Client) SyncAssets(ctx context.Context, assets []domain.Asset) error {
	at := c.now().UTC()
	err := c.upsert(ctx, upsertAsset, len(assets), func(i int) []any {
		a := assets[i]
		return []any{
			a.ID, a.ClientID, string(a.Category), a.ServiceName, a.Identifier,
			nullTime(a.ExpiryDate), a.AutoRenew, a.RenewalCost, a.CurrencyOrDefault(), at,
		}
	})
	if err != nil {
		return err
	}
	c.log.Info("mysql sink upserted assets", slog.Int("count", len(assets)))
	return nil
}

const upsertProject = `
INSERT INTO vault_projects
  (id, client_id, name, status, fe_stack, be_stack, fe_url, be_url, updated_at, mirrored_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  client_id=VALUES(client_id),
  name=VALUES(name),
  status=VALUES(status),
  fe_stack=VALUES(fe_stack),
  be_stack=VALUES(be_stack),
  fe_url=VALUES(fe_url),
  be_url=VALUES(be_url),
  updated_at=VALUES(updated_at),
  mirrored_at=VALUES(mirrored_at);
`

// SyncProjects upserts projects into vault_projects. Env blobs are never
// written.
func (c *Client) SyncProjects(ctx context.Context, projects []domain.Project) error {
	at := c.now().UTC()
	err := c.upsert(ctx, upsertProject, len(projects), func(i int) []any {
		p := projects[i]
		return []any{
			p.ID, p.ClientID, p.Name, string(p.Status),
			p.TechStack.Frontend, p.TechStack.Backend, p.Deployment.Frontend, p.Deployment.Backend,
			nullTime(p.UpdatedAt), at,
		}
	})
	if err != nil {
		return err
	}
	c.log.Info("mysql sink upserted projects", slog.Int("count", len(projects)))
	return nil
}

// upsert runs q once per row inside a single transaction.
func (c *Client) upsert(ctx context.Context, q string, n int, row func(i int) []any) error {
	if n == 0 {
		return nil
	}
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, row(i)...); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

// Close closes the underlying DB.
func (c *Client) Close() error { return c.db.Close() }
