package report

import (
	"embed"
	"html/template"
	"io"
	"strconv"
	"strings"
	"time"

	"assetvault/internal/domain"
)

//go:embed templates/*.html
var templatesFS embed.FS

var printTemplates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

const (
	TitleAllAssets = "All Assets Summary"
	TitleForecast  = "Expiry Forecast (90 Days)"
)

// Branding is the issuer text printed on documents.
type Branding struct {
	Issuer      string
	Footer      string
	BankDetails string
}

type summaryLine struct {
	Client, Category, Service, Identifier, Expiry, Cost string
}

type summaryDoc struct {
	Title       string
	GeneratedAt time.Time
	Lines       []summaryLine
	Footer      string
}

// WriteSummaryPrint renders the print view used for both the all-assets
// summary and the 90 day forecast.
func WriteSummaryPrint(w io.Writer, title string, assets []domain.Asset, now time.Time, b Branding) error {
	doc := summaryDoc{Title: title, GeneratedAt: now, Footer: b.Footer}
	for _, a := range assets {
		doc.Lines = append(doc.Lines, summaryLine{
			Client:     clientOrNA(a.ClientName()),
			Category:   string(a.Category),
			Service:    a.ServiceName,
			Identifier: a.Identifier,
			Expiry:     expiryOr(a, "Never"),
			Cost:       a.CurrencyOrDefault() + " " + money(a.RenewalCost),
		})
	}
	return printTemplates.ExecuteTemplate(w, "summary.html", doc)
}

type paymentLine struct {
	Description, Identifier, Expiry, Amount string
}

type paymentDoc struct {
	Client      domain.Client
	Issuer      string
	Lines       []paymentLine
	TotalDue    string
	BankDetails string
	Footer      string
}

// WritePaymentRequest renders the renewal notice for one client.
func WritePaymentRequest(w io.Writer, client domain.Client, assets []domain.Asset, defaultCurrency string, b Branding) error {
	doc := paymentDoc{
		Client:      client,
		Issuer:      b.Issuer,
		BankDetails: b.BankDetails,
		Footer:      b.Footer,
		TotalDue:    CurrencySymbol(defaultCurrency) + Grouped(domain.TotalRenewal(assets)),
	}
	for _, a := range assets {
		doc.Lines = append(doc.Lines, paymentLine{
			Description: string(a.Category) + " - " + a.ServiceName,
			Identifier:  a.Identifier,
			Expiry:      expiryOr(a, "N/A"),
			Amount:      a.CurrencyOrDefault() + " " + money(a.RenewalCost),
		})
	}
	return printTemplates.ExecuteTemplate(w, "payment_request.html", doc)
}

func CurrencySymbol(code string) string {
	switch code {
	case "INR":
		return "₹"
	case "USD":
		return "$"
	}
	return code + " "
}

// Grouped formats v with comma thousands separators and at most two
// decimals, e.g. 1234567.5 -> 1,234,567.5.
func Grouped(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimSuffix(strings.TrimRight(s, "0"), ".")
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String()
	if hasFrac {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}
