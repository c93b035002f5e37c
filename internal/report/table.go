// Package report turns vault records into downloadable tables and
// printable documents.
package report

import (
	"strconv"
	"strings"
	"time"

	"assetvault/internal/domain"
)

// Table is a header row plus data rows of equal width.
type Table struct {
	Headers []string
	Rows    [][]string
}

func (t Table) Len() int { return len(t.Rows) }

const dateLayout = "2006-01-02"

// Filename builds names like expiry_report_2025-05-01.csv. The prefix may
// carry a company name, so separators and control characters become '_'
// and leading dots are dropped; the result is always a bare file name.
func Filename(prefix string, now time.Time, ext string) string {
	prefix = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r < 0x20 || r == 0x7f {
			return '_'
		}
		return r
	}, prefix)
	prefix = strings.TrimLeft(prefix, ".")
	return prefix + "_" + now.Format(dateLayout) + "." + ext
}

func expiryOr(a domain.Asset, none string) string {
	if a.ExpiryDate == nil {
		return none
	}
	return a.ExpiryDate.Format(dateLayout)
}

func money(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func clientOrNA(name string) string {
	if name == "" {
		return "N/A"
	}
	return name
}

// VaultExport is the filtered asset list as shown in the vault grid.
func VaultExport(assets []domain.Asset) Table {
	t := Table{Headers: []string{"Client", "Category", "Service", "Identifier", "Username", "Cost", "Currency", "Expiry"}}
	for _, a := range assets {
		user := a.Username()
		if user == "" {
			user = "N/A"
		}
		t.Rows = append(t.Rows, []string{
			clientOrNA(a.ClientName()), string(a.Category), a.ServiceName, a.Identifier,
			user, money(a.RenewalCost), a.CurrencyOrDefault(), expiryOr(a, "Never"),
		})
	}
	return t
}

// AssetSummary is the all-assets report and, restricted, the forecast.
func AssetSummary(assets []domain.Asset) Table {
	t := Table{Headers: []string{"Client", "Category", "Service", "Identifier", "Expiry", "Notes"}}
	for _, a := range assets {
		t.Rows = append(t.Rows, []string{
			clientOrNA(a.ClientName()), string(a.Category), a.ServiceName, a.Identifier,
			expiryOr(a, "Never"), a.Notes,
		})
	}
	return t
}

func ExpiryReport(rows []domain.ExpiryEntry) Table {
	t := Table{Headers: []string{"Client", "Item", "Type", "Expiry", "DaysLeft"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			clientOrNA(r.Asset.ClientName()), r.Asset.ServiceName, string(r.Asset.Category),
			expiryOr(r.Asset, ""), strconv.Itoa(r.DaysLeft),
		})
	}
	return t
}

// ClientAssets is the per-client export from the client profile.
func ClientAssets(assets []domain.Asset) Table {
	t := Table{Headers: []string{"Category", "Service Name", "Identifier", "Username", "Expiry Date", "Renewal Cost", "Currency", "Notes"}}
	for _, a := range assets {
		user := a.Username()
		if user == "" {
			user = "N/A"
		}
		t.Rows = append(t.Rows, []string{
			string(a.Category), a.ServiceName, a.Identifier, user,
			expiryOr(a, "Never"), money(a.RenewalCost), a.CurrencyOrDefault(), a.Notes,
		})
	}
	return t
}

func RevealAudit(events []domain.RevealEvent) Table {
	t := Table{Headers: []string{"Time", "Actor", "Asset", "Service"}}
	for _, ev := range events {
		t.Rows = append(t.Rows, []string{ev.At.UTC().Format(time.RFC3339), ev.Actor, ev.AssetID, ev.ServiceName})
	}
	return t
}
