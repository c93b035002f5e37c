package domain

import (
	"fmt"
	"strings"
	"time"
)

// ProjectStatus is the lifecycle stage of a project.
type ProjectStatus string

const (
	ProjectDevelopment ProjectStatus = "Development"
	ProjectStaging     ProjectStatus = "Staging"
	ProjectProduction  ProjectStatus = "Production"
	ProjectMaintenance ProjectStatus = "Maintenance"
	ProjectArchived    ProjectStatus = "Archived"
)

var ProjectStatuses = []ProjectStatus{
	ProjectDevelopment, ProjectStaging, ProjectProduction, ProjectMaintenance, ProjectArchived,
}

func ParseProjectStatus(s string) (ProjectStatus, error) {
	for _, st := range ProjectStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("project status %q: %w", s, ErrInvalidEnum)
}

// Pair holds a frontend and a backend value of the same kind.
type Pair struct {
	Frontend string
	Backend  string
}

func (p Pair) Get(side string) string {
	switch side {
	case "frontend":
		return p.Frontend
	case "backend":
		return p.Backend
	}
	return ""
}

// Project is a software project delivered for a client.
type Project struct {
	ID          string
	ClientID    string
	Client      *ClientRef
	Name        string
	Description string
	Status      ProjectStatus
	GitHub      Pair
	Deployment  Pair
	Env         Pair
	TechStack   Pair
	Notes       string
	CreatedAt   *time.Time
	UpdatedAt   *time.Time
}

func (p Project) ClientName() string {
	if p.Client == nil {
		return ""
	}
	return p.Client.CompanyName
}

// Matches is a case-insensitive substring match over name, description,
// client name and status.
func (p Project) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, f := range []string{p.Name, p.Description, p.ClientName(), string(p.Status)} {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// ProjectInput is the create/update payload for a project.
type ProjectInput struct {
	ClientID    string
	Name        string
	Description string
	Status      ProjectStatus
	GitHub      Pair
	Deployment  Pair
	Env         Pair
	TechStack   Pair
	Notes       string
}

const envMaskLine = "••••••••••••••••"

// MaskEnv returns a placeholder with the same number of lines as text.
// It never echoes any of the input.
func MaskEnv(text string) string {
	if text == "" {
		return ""
	}
	n := strings.Count(strings.TrimRight(text, "\n"), "\n") + 1
	lines := make([]string, n)
	for i := range lines {
		lines[i] = envMaskLine
	}
	return strings.Join(lines, "\n")
}
