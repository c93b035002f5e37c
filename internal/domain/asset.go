package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Category classifies a tracked asset.
type Category string

const (
	CategoryDomain     Category = "Domain"
	CategoryHosting    Category = "Hosting"
	CategoryServer     Category = "Server"
	CategoryEmail      Category = "Email"
	CategoryDatabase   Category = "Database"
	CategoryCloudinary Category = "Cloudinary"
	CategoryOther      Category = "Other"
)

// AllCategories is the filter value that matches every category.
const AllCategories = "All Categories"

var Categories = []Category{
	CategoryDomain, CategoryHosting, CategoryServer, CategoryDatabase,
	CategoryEmail, CategoryCloudinary, CategoryOther,
}

func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("category %q: %w", s, ErrInvalidEnum)
}

const (
	DefaultCurrency = "INR"
	SecretMask      = "••••••••"
	noSecret        = "No Secret"
)

// Credentials is only populated with plaintext by a reveal call.
type Credentials struct {
	Username  string
	Password  string
	APIKey    string
	APISecret string
}

// Secret is the value a reveal displays: password, then API key.
func (c *Credentials) Secret() string {
	if c == nil {
		return noSecret
	}
	if c.Password != "" {
		return c.Password
	}
	if c.APIKey != "" {
		return c.APIKey
	}
	return noSecret
}

// Asset is a tracked technical resource owned by one client.
type Asset struct {
	ID          string
	ClientID    string
	Client      *ClientRef
	Category    Category
	ServiceName string
	Identifier  string
	Credentials *Credentials
	ExpiryDate  *time.Time
	AutoRenew   bool
	RenewalCost float64
	Currency    string
	Notes       string
}

func (a Asset) ClientName() string {
	if a.Client == nil {
		return ""
	}
	return a.Client.CompanyName
}

func (a Asset) Username() string {
	if a.Credentials == nil {
		return ""
	}
	return a.Credentials.Username
}

func (a Asset) CurrencyOrDefault() string {
	if a.Currency == "" {
		return DefaultCurrency
	}
	return a.Currency
}

// DaysLeft is the whole number of days until expiry, rounded up.
// Negative once expired. ok is false when the asset has no expiry.
func (a Asset) DaysLeft(now time.Time) (days int, ok bool) {
	if a.ExpiryDate == nil {
		return 0, false
	}
	d := a.ExpiryDate.Sub(now).Hours() / 24
	return int(math.Ceil(d)), true
}

// Matches reports whether the asset passes both the category and the
// free-text predicate. The query is matched case-insensitively against the
// service name, the identifier and the client name.
func (a Asset) Matches(category, query string) bool {
	if category != "" && category != AllCategories && string(a.Category) != category {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(a.ServiceName), q) ||
		strings.Contains(strings.ToLower(a.Identifier), q) ||
		strings.Contains(strings.ToLower(a.ClientName()), q)
}

// AssetInput is the create/update payload for an asset. An empty Password,
// or one equal to SecretMask, leaves the stored secret untouched.
type AssetInput struct {
	ClientID    string
	Category    Category
	ServiceName string
	Identifier  string
	Username    string
	Password    string
	ExpiryDate  *time.Time
	AutoRenew   bool
	RenewalCost float64
	Currency    string
	Notes       string
}

func (in AssetInput) PasswordChanged() bool {
	return in.Password != "" && in.Password != SecretMask
}

func TotalRenewal(assets []Asset) float64 {
	var sum float64
	for _, a := range assets {
		sum += a.RenewalCost
	}
	return sum
}

// ExpiryBucket is the urgency band of an upcoming expiry.
type ExpiryBucket string

const (
	BucketCritical ExpiryBucket = "critical"
	BucketWarning  ExpiryBucket = "warning"
	BucketHealthy  ExpiryBucket = "healthy"
)

func BucketFor(daysLeft int) ExpiryBucket {
	switch {
	case daysLeft < 7:
		return BucketCritical
	case daysLeft < 30:
		return BucketWarning
	default:
		return BucketHealthy
	}
}

// ExpiryEntry is one asset on the expiry timeline.
type ExpiryEntry struct {
	Asset    Asset
	DaysLeft int
	Bucket   ExpiryBucket
}
