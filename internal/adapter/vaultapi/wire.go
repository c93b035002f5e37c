package vaultapi

import (
	"bytes"
	"encoding/json"
	"time"

	"assetvault/internal/domain"
)

// flexTime accepts null, "", RFC 3339 timestamps and bare dates.
type flexTime struct {
	t *time.Time
}

func (f *flexTime) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == nil || *s == "" {
		f.t = nil
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, *s); err == nil {
			f.t = &t
			return nil
		}
	}
	_, err := time.Parse(time.RFC3339Nano, *s)
	return err
}

// rawClientRef decodes a `client` field that is either an id string or a
// populated client object.
type rawClientRef struct {
	ID          string
	CompanyName string
	set         bool
}

func (r *rawClientRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		r.set = true
		return json.Unmarshal(b, &r.ID)
	}
	var obj struct {
		ID          string `json:"_id"`
		CompanyName string `json:"companyName"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	r.ID, r.CompanyName, r.set = obj.ID, obj.CompanyName, true
	return nil
}

// ref is nil when the API sent no populated client.
func (r rawClientRef) ref() *domain.ClientRef {
	if !r.set || r.CompanyName == "" {
		return nil
	}
	return &domain.ClientRef{ID: r.ID, CompanyName: r.CompanyName}
}

type rawClient struct {
	ID            string   `json:"_id"`
	CompanyName   string   `json:"companyName"`
	ContactPerson string   `json:"contactPerson"`
	Email         string   `json:"email"`
	Phone         string   `json:"phone"`
	ProjectType   string   `json:"projectType"`
	Website       string   `json:"website"`
	Status        string   `json:"status"`
	Notes         string   `json:"notes"`
	CreatedAt     flexTime `json:"createdAt"`
}

func (r rawClient) toDomain() domain.Client {
	return domain.Client{
		ID:            r.ID,
		CompanyName:   r.CompanyName,
		ContactPerson: r.ContactPerson,
		Email:         r.Email,
		Phone:         r.Phone,
		ProjectType:   domain.ProjectType(r.ProjectType),
		Website:       r.Website,
		Status:        domain.ClientStatus(r.Status),
		Notes:         r.Notes,
		CreatedAt:     r.CreatedAt.t,
	}
}

type rawCredentials struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	APIKey    string `json:"apiKey"`
	APISecret string `json:"apiSecret"`
}

type rawAsset struct {
	ID          string          `json:"_id"`
	Client      rawClientRef    `json:"client"`
	Category    string          `json:"category"`
	ServiceName string          `json:"serviceName"`
	Identifier  string          `json:"identifier"`
	Credentials *rawCredentials `json:"credentials"`
	ExpiryDate  flexTime        `json:"expiryDate"`
	AutoRenew   bool            `json:"autoRenew"`
	RenewalCost float64         `json:"renewalCost"`
	Currency    string          `json:"currency"`
	Notes       string          `json:"notes"`
}

func (r rawAsset) toDomain() domain.Asset {
	a := domain.Asset{
		ID:          r.ID,
		ClientID:    r.Client.ID,
		Client:      r.Client.ref(),
		Category:    domain.Category(r.Category),
		ServiceName: r.ServiceName,
		Identifier:  r.Identifier,
		ExpiryDate:  r.ExpiryDate.t,
		AutoRenew:   r.AutoRenew,
		RenewalCost: r.RenewalCost,
		Currency:    r.Currency,
		Notes:       r.Notes,
	}
	if r.Credentials != nil {
		a.Credentials = &domain.Credentials{
			Username:  r.Credentials.Username,
			Password:  r.Credentials.Password,
			APIKey:    r.Credentials.APIKey,
			APISecret: r.Credentials.APISecret,
		}
	}
	return a
}

type rawPair struct {
	Frontend string `json:"frontend"`
	Backend  string `json:"backend"`
}

func (p rawPair) toDomain() domain.Pair { return domain.Pair{Frontend: p.Frontend, Backend: p.Backend} }

func pairOf(p domain.Pair) rawPair { return rawPair{Frontend: p.Frontend, Backend: p.Backend} }

type rawProject struct {
	ID             string       `json:"_id"`
	Client         rawClientRef `json:"client"`
	Name           string       `json:"name"`
	Description    string       `json:"description"`
	Status         string       `json:"status"`
	GitHub         rawPair      `json:"github"`
	DeploymentURLs rawPair      `json:"deploymentUrls"`
	Env            rawPair      `json:"env"`
	TechStack      rawPair      `json:"techStack"`
	Notes          string       `json:"notes"`
	CreatedAt      flexTime     `json:"createdAt"`
	UpdatedAt      flexTime     `json:"updatedAt"`
}

func (r rawProject) toDomain() domain.Project {
	return domain.Project{
		ID:          r.ID,
		ClientID:    r.Client.ID,
		Client:      r.Client.ref(),
		Name:        r.Name,
		Description: r.Description,
		Status:      domain.ProjectStatus(r.Status),
		GitHub:      r.GitHub.toDomain(),
		Deployment:  r.DeploymentURLs.toDomain(),
		Env:         r.Env.toDomain(),
		TechStack:   r.TechStack.toDomain(),
		Notes:       r.Notes,
		CreatedAt:   r.CreatedAt.t,
		UpdatedAt:   r.UpdatedAt.t,
	}
}

type rawStats struct {
	TotalClients       int     `json:"totalClients"`
	ActiveClients      int     `json:"activeClients"`
	InactiveClients    int     `json:"inactiveClients"`
	TotalAssets        int     `json:"totalAssets"`
	ExpiringSoon       int     `json:"expiringSoon"`
	TotalRenewalAmount float64 `json:"totalRenewalAmount"`
}

type rawProfile struct {
	Client rawClient  `json:"client"`
	Assets []rawAsset `json:"assets"`
}

type clientPayload struct {
	CompanyName   string `json:"companyName"`
	ContactPerson string `json:"contactPerson"`
	Email         string `json:"email"`
	Phone         string `json:"phone,omitempty"`
	ProjectType   string `json:"projectType,omitempty"`
	Website       string `json:"website,omitempty"`
	Status        string `json:"status,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

type credentialsPayload struct {
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
}

type assetPayload struct {
	Client      string             `json:"client"`
	Category    string             `json:"category"`
	ServiceName string             `json:"serviceName"`
	Identifier  string             `json:"identifier"`
	Credentials credentialsPayload `json:"credentials"`
	ExpiryDate  *string            `json:"expiryDate"` // null clears the date
	AutoRenew   bool               `json:"autoRenew"`
	RenewalCost float64            `json:"renewalCost"`
	Currency    string             `json:"currency,omitempty"`
	Notes       string             `json:"notes"`
}

func assetPayloadOf(in domain.AssetInput) assetPayload {
	p := assetPayload{
		Client:      in.ClientID,
		Category:    string(in.Category),
		ServiceName: in.ServiceName,
		Identifier:  in.Identifier,
		Credentials: credentialsPayload{Username: in.Username},
		AutoRenew:   in.AutoRenew,
		RenewalCost: in.RenewalCost,
		Currency:    in.Currency,
		Notes:       in.Notes,
	}
	if in.PasswordChanged() {
		p.Credentials.Password = in.Password
	}
	if in.ExpiryDate != nil {
		d := in.ExpiryDate.Format("2006-01-02")
		p.ExpiryDate = &d
	}
	return p
}

type projectPayload struct {
	Name           string  `json:"name"`
	Client         string  `json:"client,omitempty"`
	Description    string  `json:"description"`
	GitHub         rawPair `json:"github"`
	Env            rawPair `json:"env"`
	DeploymentURLs rawPair `json:"deploymentUrls"`
	Status         string  `json:"status"`
	TechStack      rawPair `json:"techStack"`
	Notes          string  `json:"notes"`
}

func projectPayloadOf(in domain.ProjectInput) projectPayload {
	return projectPayload{
		Name:           in.Name,
		Client:         in.ClientID,
		Description:    in.Description,
		GitHub:         pairOf(in.GitHub),
		Env:            pairOf(in.Env),
		DeploymentURLs: pairOf(in.Deployment),
		Status:         string(in.Status),
		TechStack:      pairOf(in.TechStack),
		Notes:          in.Notes,
	}
}

// errorBody is the shape the API uses for failures. Different routes use
// different field names.
type errorBody struct {
	Msg     string `json:"msg"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (e errorBody) text() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.Message != "":
		return e.Message
	}
	return e.Error
}
