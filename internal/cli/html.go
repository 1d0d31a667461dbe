package cli

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"

	"TickerScope/internal/model"
)

// plotlyCDN is the plotly.js bundle the standalone page loads.
const plotlyCDN = "https://cdn.plot.ly/plotly-2.35.2.min.js"

var plotPage = template.Must(template.New("plot").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="{{.Script}}"></script>
</head>
<body>
<div id="chart"></div>
<script>
var fig = {{.Figure}};
Plotly.newPlot("chart", fig.data, fig.layout, {responsive: true});
</script>
</body>
</html>
`))

type plotPageData struct {
	Title  string
	Script string
	Figure template.JS
}

// renderPlotHTML writes a self-contained page drawing doc with plotly.js.
func renderPlotHTML(w io.Writer, ticker string, doc model.ChartDocument) error {
	// encoding/json escapes <, > and & so the figure cannot close the script tag.
	fig, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode chart: %w", err)
	}
	title := doc.Layout.Title.Text
	if title == "" {
		title = ticker
	}
	return plotPage.Execute(w, plotPageData{Title: title, Script: plotlyCDN, Figure: template.JS(fig)})
}

func writePlotHTML(path, ticker string, doc model.ChartDocument) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()
	if err := renderPlotHTML(file, ticker, doc); err != nil {
		return err
	}
	return file.Close()
}
