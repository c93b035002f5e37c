package usecase

import (
	"context"
	"log/slog"

	"assetvault/internal/domain"
	"assetvault/internal/ports"
)

type Projects struct {
	Log *slog.Logger
	API ports.ProjectAPI
}

func (uc *Projects) List(ctx context.Context, query string) ([]domain.Project, error) {
	all, err := uc.API.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Project, 0, len(all))
	for _, p := range all {
		if p.Matches(query) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (uc *Projects) Get(ctx context.Context, id string) (domain.Project, error) {
	return uc.API.GetProject(ctx, id)
}

// Save creates the project when id is empty and updates it otherwise.
func (uc *Projects) Save(ctx context.Context, id string, form ProjectForm) (domain.Project, error) {
	in, err := form.toDomain()
	if err != nil {
		return domain.Project{}, err
	}
	if id == "" {
		p, err := uc.API.CreateProject(ctx, in)
		if err != nil {
			return domain.Project{}, err
		}
		uc.Log.Info("project created", slog.String("id", p.ID), slog.String("name", in.Name))
		return p, nil
	}
	p, err := uc.API.UpdateProject(ctx, id, in)
	if err != nil {
		return domain.Project{}, err
	}
	uc.Log.Info("project updated", slog.String("id", id))
	return p, nil
}

func (uc *Projects) Delete(ctx context.Context, id string) error {
	if err := uc.API.DeleteProject(ctx, id); err != nil {
		return err
	}
	uc.Log.Info("project deleted", slog.String("id", id))
	return nil
}
