package report

import (
	"bytes"
	"fmt"

	"github.com/charmbracelet/glamour"
	md "github.com/nao1215/markdown"
	"github.com/shopspring/decimal"

	"StockBoard/internal/model"
)

const timeLayout = "2006-01-02 15:04:05"

// FormatPrice renders a price with two decimals and its currency code.
func FormatPrice(price float64, currency string) string {
	return decimal.NewFromFloat(price).StringFixed(2) + " " + currency
}

// FormatPercent renders a signed percentage with two decimals.
func FormatPercent(pct float64) string {
	d := decimal.NewFromFloat(pct).Round(2)
	if d.IsPositive() {
		return "+" + d.StringFixed(2) + "%"
	}
	return d.StringFixed(2) + "%"
}

// LatestMarkdown renders the latest price of every company as a Markdown
// document, or the no-data warning when the dashboard is empty.
func LatestMarkdown(d *model.Dashboard, currency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Latest stock prices")
	doc.PlainText(fmt.Sprintf("Period %s, interval %s", d.Selection.Period, d.Selection.Interval))

	if len(d.Warnings) > 0 {
		doc.H2("Warnings")
		doc.BulletList(d.Warnings...)
	}

	if !d.NoData {
		rows := make([][]string, 0, len(d.Latest))
		for _, r := range d.Latest {
			rows = append(rows, []string{r.Company, r.Date.Format("2006-01-02"), FormatPrice(r.Price, currency)})
		}
		doc.Table(md.TableSet{
			Header: []string{"Company", "Date", "Price"},
			Rows:   rows,
		})
		doc.PlainText(fmt.Sprintf("%d observations across %d companies", len(d.Rows), len(d.Latest)))

		if len(d.Stats) > 0 {
			stats := make([][]string, 0, len(d.Stats))
			for _, s := range d.Stats {
				stats = append(stats, []string{s.Company, FormatPrice(s.Low, currency), FormatPrice(s.High, currency), FormatPercent(s.ChangePct)})
			}
			doc.H2("Period summary")
			doc.Table(md.TableSet{
				Header: []string{"Company", "Low", "High", "Change"},
				Rows:   stats,
			})
		}
	}

	doc.PlainText("Last updated: " + d.UpdatedAt.Format(timeLayout))
	return doc.String()
}

// RenderTerminal renders Markdown for display in a terminal.
func RenderTerminal(markdown string) (string, error) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
