package usecase

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"assetvault/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError lists the form fields that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid input: " + strings.Join(e.Fields, ", ")
}

func checkForm(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	ve := &ValidationError{}
	for _, fe := range verrs {
		ve.Fields = append(ve.Fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return ve
}

// ClientForm is the create-client form.
type ClientForm struct {
	CompanyName   string `validate:"required"`
	ContactPerson string `validate:"required"`
	Email         string `validate:"required,email"`
	Phone         string
	ProjectType   string `validate:"omitempty,oneof=Web App SaaS SEO Other"`
	Website       string
	Notes         string
}

func (f ClientForm) toDomain() (domain.Client, error) {
	if err := checkForm(f); err != nil {
		return domain.Client{}, err
	}
	pt := domain.ProjectTypeWeb
	if f.ProjectType != "" {
		var err error
		if pt, err = domain.ParseProjectType(f.ProjectType); err != nil {
			return domain.Client{}, err
		}
	}
	return domain.Client{
		CompanyName:   strings.TrimSpace(f.CompanyName),
		ContactPerson: strings.TrimSpace(f.ContactPerson),
		Email:         strings.TrimSpace(f.Email),
		Phone:         f.Phone,
		ProjectType:   pt,
		Website:       f.Website,
		Status:        domain.ClientActive,
		Notes:         f.Notes,
	}, nil
}

// AssetForm is the add/edit asset form. Dates use YYYY-MM-DD.
type AssetForm struct {
	ClientID    string `validate:"required"`
	Category    string `validate:"required,oneof=Domain Hosting Server Email Database Cloudinary Other"`
	ServiceName string `validate:"required"`
	Identifier  string `validate:"required"`
	Username    string
	Password    string
	ExpiryDate  string `validate:"omitempty,datetime=2006-01-02"`
	AutoRenew   bool
	RenewalCost string `validate:"omitempty,number"`
	Currency    string `validate:"omitempty,oneof=INR USD"`
	Notes       string
}

func (f AssetForm) toDomain() (domain.AssetInput, error) {
	if err := checkForm(f); err != nil {
		return domain.AssetInput{}, err
	}
	cat, err := domain.ParseCategory(f.Category)
	if err != nil {
		return domain.AssetInput{}, err
	}
	in := domain.AssetInput{
		ClientID:    f.ClientID,
		Category:    cat,
		ServiceName: strings.TrimSpace(f.ServiceName),
		Identifier:  strings.TrimSpace(f.Identifier),
		Username:    f.Username,
		Password:    f.Password,
		AutoRenew:   f.AutoRenew,
		Currency:    f.Currency,
		Notes:       f.Notes,
	}
	if in.Currency == "" {
		in.Currency = domain.DefaultCurrency
	}
	if f.ExpiryDate != "" {
		t, err := time.Parse("2006-01-02", f.ExpiryDate)
		if err != nil {
			return domain.AssetInput{}, err
		}
		in.ExpiryDate = &t
	}
	if f.RenewalCost != "" {
		if in.RenewalCost, err = strconv.ParseFloat(f.RenewalCost, 64); err != nil {
			return domain.AssetInput{}, err
		}
	}
	return in, nil
}

// ProjectForm is the add/edit project form.
type ProjectForm struct {
	Name        string `validate:"required"`
	ClientID    string `validate:"required"`
	Description string
	Status      string `validate:"omitempty,oneof=Development Staging Production Maintenance Archived"`
	GitHub      domain.Pair
	Deployment  domain.Pair
	Env         domain.Pair
	TechStack   domain.Pair
	Notes       string
}

func (f ProjectForm) toDomain() (domain.ProjectInput, error) {
	if err := checkForm(f); err != nil {
		return domain.ProjectInput{}, err
	}
	st := domain.ProjectDevelopment
	if f.Status != "" {
		var err error
		if st, err = domain.ParseProjectStatus(f.Status); err != nil {
			return domain.ProjectInput{}, err
		}
	}
	return domain.ProjectInput{
		ClientID:    f.ClientID,
		Name:        strings.TrimSpace(f.Name),
		Description: f.Description,
		Status:      st,
		GitHub:      f.GitHub,
		Deployment:  f.Deployment,
		Env:         f.Env,
		TechStack:   f.TechStack,
		Notes:       f.Notes,
	}, nil
}
