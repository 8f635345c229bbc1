package email

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"strings"

	"sellwatch/internal/models"
)

// AlertData is the content of one alert email
type AlertData struct {
	Date           string
	MinPrice       float64
	WindowFrom     string
	WindowTo       string
	Intervals      []models.PriceInterval
	UnsubscribeURL string
}

type alertRow struct {
	Range string
	Price string
}

var alertTemplate = template.Must(template.New("alert").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2933;">
	<h2>Sell price alert for {{.Date}}</h2>
	<p>{{.Count}} interval(s) on {{.Date}} are at or above your threshold of <strong>{{.Threshold}} EUR/MWh</strong>{{if .Window}} within {{.Window}}{{end}}.</p>
	<table cellpadding="6" style="border-collapse: collapse;">
		<thead>
			<tr><th align="left">Interval</th><th align="right">Price (EUR/MWh)</th></tr>
		</thead>
		<tbody>
		{{range .Rows}}<tr><td>{{.Range}}</td><td align="right">{{.Price}}</td></tr>
		{{end}}</tbody>
	</table>
	{{if .UnsubscribeURL}}<p style="font-size: 12px; color: #7b8794;">No longer interested? <a href="{{.UnsubscribeURL}}">Unsubscribe from this alert</a>.</p>{{end}}
</body>
</html>`))

// AlertSubject returns the subject line of an alert email
func AlertSubject(count int, minPrice float64) string {
	return fmt.Sprintf("Price alert: %d intervals at or above %s EUR/MWh", count, models.FormatPrice(minPrice))
}

// RenderAlert builds the alert email for recipient. Intervals are listed by
// price, highest first.
func RenderAlert(to string, data AlertData) (Message, error) {
	sorted := make([]models.PriceInterval, len(data.Intervals))
	copy(sorted, data.Intervals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PriceEurMwh > sorted[j].PriceEurMwh
	})

	rows := make([]alertRow, 0, len(sorted))
	var text strings.Builder
	fmt.Fprintf(&text, "%s\n\n", AlertSubject(len(sorted), data.MinPrice))
	for _, iv := range sorted {
		row := alertRow{Range: iv.StartTime + "–" + iv.EndTime, Price: models.FormatPrice(iv.PriceEurMwh)}
		rows = append(rows, row)
		fmt.Fprintf(&text, "%s  %s EUR/MWh\n", row.Range, row.Price)
	}
	if data.UnsubscribeURL != "" {
		fmt.Fprintf(&text, "\nUnsubscribe: %s\n", data.UnsubscribeURL)
	}

	var body bytes.Buffer
	if err := alertTemplate.Execute(&body, map[string]any{
		"Date":           data.Date,
		"Count":          len(sorted),
		"Threshold":      models.FormatPrice(data.MinPrice),
		"Window":         describeWindow(data.WindowFrom, data.WindowTo),
		"Rows":           rows,
		"UnsubscribeURL": data.UnsubscribeURL,
	}); err != nil {
		return Message{}, fmt.Errorf("failed to execute email template: %w", err)
	}

	return Message{
		To:      to,
		Subject: AlertSubject(len(sorted), data.MinPrice),
		HTML:    body.String(),
		Text:    text.String(),
	}, nil
}

func describeWindow(from, to string) string {
	if from == "" && to == "" {
		return ""
	}
	if from == "" {
		from = "00:00"
	}
	if to == "" {
		to = "24:00"
	}
	return from + "–" + to
}
