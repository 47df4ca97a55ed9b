package web

import "StockBoard/internal/model"

const vegaLiteSchema = "https://vega.github.io/schema/vega-lite/v5.json"

// ChartSpec builds a Vega-Lite line chart overlaying every company's series,
// with the price axis pinned to [AxisLow, AxisHigh].
func ChartSpec(d *model.Dashboard, currency string) map[string]any {
	return map[string]any{
		"$schema": vegaLiteSchema,
		"width":   "container",
		"height":  400,
		"data":    map[string]any{"values": d.Rows},
		"mark":    map[string]any{"type": "line"},
		"encoding": map[string]any{
			"x": map[string]any{"field": "date", "type": "temporal", "title": "Date"},
			"y": map[string]any{
				"field": "price",
				"type":  "quantitative",
				"title": "Price (" + currency + ")",
				"scale": map[string]any{"domain": []float64{d.AxisLow, d.AxisHigh}},
			},
			"color": map[string]any{"field": "company", "type": "nominal", "title": "Company"},
			"tooltip": []map[string]any{
				{"field": "date", "type": "temporal", "title": "Date"},
				{"field": "company", "type": "nominal", "title": "Company"},
				{"field": "price", "type": "quantitative", "title": "Price"},
			},
		},
		// Drag to pan, scroll to zoom.
		"params": []map[string]any{
			{"name": "zoom", "select": "interval", "bind": "scales"},
		},
	}
}
