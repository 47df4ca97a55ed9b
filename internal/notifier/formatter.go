package notifier

import (
	"fmt"
	"html"
	"strings"

	"StockBoard/internal/model"
	"StockBoard/internal/report"
)

// FormatLatestDigest formats the latest-per-company view as a Telegram HTML message.
func FormatLatestDigest(d *model.Dashboard, currency string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📈 <b>Latest stock prices</b> | %s\n", d.UpdatedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Period %s, interval %s\n\n", d.Selection.Period, d.Selection.Interval))

	if d.NoData {
		b.WriteString("⚠️ No price data available.\n")
	}
	for _, r := range d.Latest {
		b.WriteString(fmt.Sprintf("• %s: <b>%s</b> (%s)\n",
			html.EscapeString(r.Company), report.FormatPrice(r.Price, currency), r.Date.Format("2006-01-02")))
	}

	if len(d.Warnings) > 0 && !d.NoData {
		b.WriteString("\n")
		for _, w := range d.Warnings {
			b.WriteString(fmt.Sprintf("⚠️ %s\n", html.EscapeString(w)))
		}
	}
	return b.String()
}

// FormatCompanies lists the configured companies.
func FormatCompanies(companies []model.Company) string {
	var b strings.Builder
	b.WriteString("🏢 <b>Companies</b>\n\n")
	for _, c := range companies {
		b.WriteString(fmt.Sprintf("• %s (%s)\n", html.EscapeString(c.Label), html.EscapeString(c.Symbol)))
	}
	return b.String()
}
