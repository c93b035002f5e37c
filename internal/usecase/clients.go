package usecase

import (
	"context"
	"log/slog"
	"strings"

	"assetvault/internal/domain"
	"assetvault/internal/ports"
)

// Clients backs the client directory and the client profile.
type Clients struct {
	Log *slog.Logger
	API ports.ClientAPI
}

// List returns every client, narrowed by a case-insensitive match on
// company name, contact person or email when query is set.
func (uc *Clients) List(ctx context.Context, query string) ([]domain.Client, error) {
	all, err := uc.API.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return all, nil
	}
	out := make([]domain.Client, 0, len(all))
	for _, c := range all {
		if strings.Contains(strings.ToLower(c.CompanyName), q) ||
			strings.Contains(strings.ToLower(c.ContactPerson), q) ||
			strings.Contains(strings.ToLower(c.Email), q) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (uc *Clients) Create(ctx context.Context, form ClientForm) (domain.Client, error) {
	c, err := form.toDomain()
	if err != nil {
		return domain.Client{}, err
	}
	created, err := uc.API.CreateClient(ctx, c)
	if err != nil {
		return domain.Client{}, err
	}
	uc.Log.Info("client created", slog.String("id", created.ID), slog.String("company", created.CompanyName))
	return created, nil
}

func (uc *Clients) Profile(ctx context.Context, id string) (domain.ClientProfile, error) {
	return uc.API.GetClient(ctx, id)
}

// ToggleStatus flips Active and Inactive. The returned client only carries
// the new status once the API accepted it; on failure it is returned
// unchanged alongside the error.
func (uc *Clients) ToggleStatus(ctx context.Context, c domain.Client) (domain.Client, error) {
	next := c.ToggledStatus()
	if err := uc.API.SetClientStatus(ctx, c.ID, next); err != nil {
		return c, err
	}
	uc.Log.Info("client status changed", slog.String("id", c.ID), slog.String("status", string(next)))
	c.Status = next
	return c, nil
}

func (uc *Clients) Delete(ctx context.Context, id string) error {
	if err := uc.API.DeleteClient(ctx, id); err != nil {
		return err
	}
	uc.Log.Info("client deleted", slog.String("id", id))
	return nil
}
