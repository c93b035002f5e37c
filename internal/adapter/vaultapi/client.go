package vaultapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"assetvault/internal/domain"
)

const maxErrorBody = 4096

// Client implements ports.VaultAPI over the vault REST API.
type Client struct {
	http *resty.Client
	log  *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:5000"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &Client{http: httpClient, log: log}
}

type bearerKey struct{}

// WithBearer attaches the caller's token so it is forwarded on every call
// made with the returned context.
func WithBearer(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, bearerKey{}, token)
}

func bearerFrom(ctx context.Context) string {
	s, _ := ctx.Value(bearerKey{}).(string)
	return s
}

// do sends one request. Transport failures wrap domain.ErrUnreachable,
// non-2xx responses become *domain.APIError.
func (c *Client) do(ctx context.Context, method, path string, params map[string]string, body, out any) error {
	req := c.http.R().SetContext(ctx).SetPathParams(params)
	if token := bearerFrom(ctx); token != "" {
		req.SetAuthToken(token)
	}
	if body != nil {
		req.SetBody(body)
	}
	start := time.Now()
	resp, err := req.Execute(method, path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("vault api: %s %s: %w", method, path, ctxErr)
		}
		c.log.Warn("vault api unreachable", slog.String("method", method), slog.String("path", path), slog.String("err", err.Error()))
		return fmt.Errorf("vault api: %s %s: %w: %w", method, path, domain.ErrUnreachable, err)
	}
	c.log.Debug("vault api call",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode()),
		slog.Duration("dur", time.Since(start)),
	)
	if resp.IsError() || resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return apiError(resp.StatusCode(), resp.Body())
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("vault api: decode %s %s: %w", method, path, err)
	}
	return nil
}

func apiError(status int, body []byte) *domain.APIError {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	var eb errorBody
	msg := string(body)
	if json.Unmarshal(body, &eb) == nil && eb.text() != "" {
		msg = eb.text()
	}
	return &domain.APIError{Status: status, Message: msg}
}

func idParam(id string) map[string]string { return map[string]string{"id": id} }

func (c *Client) ListClients(ctx context.Context) ([]domain.Client, error) {
	var raw []rawClient
	if err := c.do(ctx, http.MethodGet, "/api/clients", nil, nil, &raw); err != nil {
		return nil, err
	}
	out := make([]domain.Client, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// GetClient returns the client together with its assets.
func (c *Client) GetClient(ctx context.Context, id string) (domain.ClientProfile, error) {
	var raw rawProfile
	if err := c.do(ctx, http.MethodGet, "/api/clients/{id}", idParam(id), nil, &raw); err != nil {
		return domain.ClientProfile{}, err
	}
	p := domain.ClientProfile{Client: raw.Client.toDomain(), Assets: make([]domain.Asset, 0, len(raw.Assets))}
	for _, a := range raw.Assets {
		p.Assets = append(p.Assets, a.toDomain())
	}
	return p, nil
}

func (c *Client) CreateClient(ctx context.Context, cl domain.Client) (domain.Client, error) {
	body := clientPayload{
		CompanyName:   cl.CompanyName,
		ContactPerson: cl.ContactPerson,
		Email:         cl.Email,
		Phone:         cl.Phone,
		ProjectType:   string(cl.ProjectType),
		Website:       cl.Website,
		Status:        string(cl.Status),
		Notes:         cl.Notes,
	}
	var raw rawClient
	if err := c.do(ctx, http.MethodPost, "/api/clients", nil, body, &raw); err != nil {
		return domain.Client{}, err
	}
	return raw.toDomain(), nil
}

func (c *Client) SetClientStatus(ctx context.Context, id string, status domain.ClientStatus) error {
	body := map[string]string{"status": string(status)}
	return c.do(ctx, http.MethodPut, "/api/clients/{id}", idParam(id), body, nil)
}

func (c *Client) DeleteClient(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/clients/{id}", idParam(id), nil, nil)
}

// ListAssets returns assets with their client populated and credentials
// stripped by the API.
func (c *Client) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	var raw []rawAsset
	if err := c.do(ctx, http.MethodGet, "/api/assets", nil, nil, &raw); err != nil {
		return nil, err
	}
	out := make([]domain.Asset, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (c *Client) RevealAsset(ctx context.Context, id string) (domain.Asset, error) {
	var raw rawAsset
	if err := c.do(ctx, http.MethodGet, "/api/assets/reveal/{id}", idParam(id), nil, &raw); err != nil {
		return domain.Asset{}, err
	}
	return raw.toDomain(), nil
}

func (c *Client) CreateAsset(ctx context.Context, in domain.AssetInput) (domain.Asset, error) {
	var raw rawAsset
	if err := c.do(ctx, http.MethodPost, "/api/assets", nil, assetPayloadOf(in), &raw); err != nil {
		return domain.Asset{}, err
	}
	return raw.toDomain(), nil
}

func (c *Client) UpdateAsset(ctx context.Context, id string, in domain.AssetInput) (domain.Asset, error) {
	var raw rawAsset
	if err := c.do(ctx, http.MethodPut, "/api/assets/{id}", idParam(id), assetPayloadOf(in), &raw); err != nil {
		return domain.Asset{}, err
	}
	return raw.toDomain(), nil
}

// RenewAsset asks the API to push the expiry date one term forward.
func (c *Client) RenewAsset(ctx context.Context, id string) (domain.Asset, error) {
	var raw rawAsset
	if err := c.do(ctx, http.MethodPut, "/api/assets/renew/{id}", idParam(id), nil, &raw); err != nil {
		return domain.Asset{}, err
	}
	return raw.toDomain(), nil
}

func (c *Client) ListProjects(ctx context.Context) ([]domain.Project, error) {
	var raw []rawProject
	if err := c.do(ctx, http.MethodGet, "/api/projects", nil, nil, &raw); err != nil {
		return nil, err
	}
	out := make([]domain.Project, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (c *Client) GetProject(ctx context.Context, id string) (domain.Project, error) {
	var raw rawProject
	if err := c.do(ctx, http.MethodGet, "/api/projects/{id}", idParam(id), nil, &raw); err != nil {
		return domain.Project{}, err
	}
	return raw.toDomain(), nil
}

func (c *Client) CreateProject(ctx context.Context, in domain.ProjectInput) (domain.Project, error) {
	var raw rawProject
	if err := c.do(ctx, http.MethodPost, "/api/projects", nil, projectPayloadOf(in), &raw); err != nil {
		return domain.Project{}, err
	}
	return raw.toDomain(), nil
}

func (c *Client) UpdateProject(ctx context.Context, id string, in domain.ProjectInput) (domain.Project, error) {
	var raw rawProject
	if err := c.do(ctx, http.MethodPut, "/api/projects/{id}", idParam(id), projectPayloadOf(in), &raw); err != nil {
		return domain.Project{}, err
	}
	return raw.toDomain(), nil
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/projects/{id}", idParam(id), nil, nil)
}

func (c *Client) DashboardStats(ctx context.Context) (domain.DashboardStats, error) {
	var raw rawStats
	if err := c.do(ctx, http.MethodGet, "/api/dashboard/stats", nil, nil, &raw); err != nil {
		return domain.DashboardStats{}, err
	}
	return domain.DashboardStats(raw), nil
}
