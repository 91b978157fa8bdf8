package enginehttp

import (
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	echartstypes "github.com/go-echarts/go-echarts/v2/types"

	"verdict/internal/decision"
)

const (
	chartWidthPx  = 1200
	chartHeightPx = 520

	colorConfidence = "#3b82f6"
	colorRisk       = "#f87171"
)

// handleHistoryChart 将近期决策的置信度与风险分数渲染成折线图页面。
func (r *Router) handleHistoryChart(c *gin.Context) {
	limit := 200
	symbol := strings.ToUpper(strings.TrimSpace(c.Query("symbol")))

	recent := r.Engine.History().Recent(limit)
	filtered := recent[:0:0]
	for _, d := range recent {
		if symbol != "" && d.Symbol != symbol {
			continue
		}
		filtered = append(filtered, d)
	}
	if len(filtered) == 0 {
		c.JSON(http.StatusNotFound, errorResponse{Error: "no decisions recorded"})
		return
	}
	// Recent 返回最新在前，图表按时间正序绘制。
	ordered := make([]decision.Decision, len(filtered))
	for i, d := range filtered {
		ordered[len(filtered)-1-i] = d
	}

	line := buildHistoryLine(symbol, ordered)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := line.Render(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

func buildHistoryLine(symbol string, decisions []decision.Decision) *charts.Line {
	title := "Decision History"
	if symbol != "" {
		title = fmt.Sprintf("Decision History %s", symbol)
	}
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  echartstypes.ThemeWesteros,
			Width:  fmt.Sprintf("%dpx", chartWidthPx),
			Height: fmt.Sprintf("%dpx", chartHeightPx),
		}),
		charts.WithTitleOpts(opts.Title{Title: title, Left: "left"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 1}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", XAxisIndex: []int{0}}),
	)

	xAxis := make([]string, len(decisions))
	confData := make([]opts.LineData, len(decisions))
	riskData := make([]opts.LineData, len(decisions))
	for i, d := range decisions {
		label := d.CreatedAt.UTC().Format("01-02 15:04:05")
		if symbol == "" {
			label = fmt.Sprintf("%s %s", d.Symbol, label)
		}
		xAxis[i] = label
		confData[i] = opts.LineData{Value: roundScore(d.ConfidenceScore)}
		riskData[i] = opts.LineData{Value: roundScore(d.RiskScore)}
	}

	line.SetXAxis(xAxis)
	line.AddSeries("Confidence", confData, charts.WithLineStyleOpts(opts.LineStyle{Color: colorConfidence, Width: 2}))
	line.AddSeries("Risk", riskData, charts.WithLineStyleOpts(opts.LineStyle{Color: colorRisk, Width: 2}))
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	return line
}

func roundScore(v float64) float64 {
	return math.Round(v*10000) / 10000
}
