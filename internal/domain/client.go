package domain

import (
	"fmt"
	"strings"
	"time"
)

// ProjectType is the kind of engagement a client was signed for.
type ProjectType string

const (
	ProjectTypeWeb   ProjectType = "Web"
	ProjectTypeApp   ProjectType = "App"
	ProjectTypeSaaS  ProjectType = "SaaS"
	ProjectTypeSEO   ProjectType = "SEO"
	ProjectTypeOther ProjectType = "Other"
)

var ProjectTypes = []ProjectType{ProjectTypeWeb, ProjectTypeApp, ProjectTypeSaaS, ProjectTypeSEO, ProjectTypeOther}

func ParseProjectType(s string) (ProjectType, error) {
	for _, t := range ProjectTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("project type %q: %w", s, ErrInvalidEnum)
}

// ClientStatus is Active or Inactive.
type ClientStatus string

const (
	ClientActive   ClientStatus = "Active"
	ClientInactive ClientStatus = "Inactive"
)

func ParseClientStatus(s string) (ClientStatus, error) {
	switch ClientStatus(s) {
	case ClientActive, ClientInactive:
		return ClientStatus(s), nil
	}
	return "", fmt.Errorf("client status %q: %w", s, ErrInvalidEnum)
}

// Client is a customer organization.
type Client struct {
	ID            string
	CompanyName   string
	ContactPerson string
	Email         string
	Phone         string
	ProjectType   ProjectType
	Website       string
	Status        ClientStatus
	Notes         string
	CreatedAt     *time.Time
}

// ToggledStatus is the status a status toggle would move the client to.
// An empty status counts as Active, as the list view renders it.
func (c Client) ToggledStatus() ClientStatus {
	if c.Status == ClientActive || c.Status == "" {
		return ClientInactive
	}
	return ClientActive
}

func (c Client) IsActive() bool { return c.Status != ClientInactive }

// Initials is the two-letter badge shown next to the company name.
func (c Client) Initials() string {
	r := []rune(c.CompanyName)
	if len(r) > 2 {
		r = r[:2]
	}
	return strings.ToUpper(string(r))
}

// ClientRef is the client summary embedded in asset and project records.
type ClientRef struct {
	ID          string
	CompanyName string
}

// ClientProfile is a client together with its assets.
type ClientProfile struct {
	Client Client
	Assets []Asset
}

func (p ClientProfile) TotalRenewal() float64 { return TotalRenewal(p.Assets) }
