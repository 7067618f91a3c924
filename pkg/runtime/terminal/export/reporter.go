package export

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/de-tools/posture-atlas/pkg/models/domain"
	"github.com/pterm/pterm"
)

// Reporter renders a posture report as pterm tables.
type Reporter struct {
	writer io.Writer
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer}
}

func (c *Reporter) Handle(report *domain.PostureReport) error {
	header := pterm.DefaultHeader.Sprint(report.Title)
	if _, err := fmt.Fprintln(c.writer, header); err != nil {
		return err
	}

	p := report.Posture
	s := report.Stats

	posture := [][]string{
		{"Metric", "Value"},
		{"Overall score", formatScore(p.OverallScore)},
		{"Risk level", riskStyle(p.RiskLevel)},
		{"Critical alerts", strconv.FormatInt(p.CriticalAlerts, 10)},
		{"Open vulnerabilities", strconv.FormatInt(p.OpenVulnerabilities, 10)},
		{"Active incidents", strconv.FormatInt(p.ActiveIncidents, 10)},
		{"Compliance score", formatScore(p.ComplianceScore)},
	}
	if err := c.render(posture); err != nil {
		return err
	}

	stats := [][]string{
		{"Statistic", "Value"},
		{"Total vulnerabilities", strconv.FormatInt(s.TotalVulnerabilities, 10)},
		{"Critical vulnerabilities", strconv.FormatInt(s.CriticalVulnerabilities, 10)},
		{"Open incidents", strconv.FormatInt(s.OpenIncidents, 10)},
		{"Critical incidents", strconv.FormatInt(s.CriticalIncidents, 10)},
		{"Compliant frameworks", fmt.Sprintf("%d/%d", s.CompliantFrameworks, s.ComplianceFrameworks)},
	}
	if err := c.render(stats); err != nil {
		return err
	}

	if len(p.TrendData) == 0 {
		_, err := fmt.Fprintln(c.writer, pterm.Info.Sprint("No security score observations in the trend window."))
		return err
	}

	trend := [][]string{{"Recorded at", "Security score"}}
	for _, tp := range p.TrendData {
		trend = append(trend, []string{tp.Date.UTC().Format("2006-01-02 15:04"), formatScore(tp.Value)})
	}
	return c.render(trend)
}

func (c *Reporter) render(data [][]string) error {
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	_, err = fmt.Fprintln(c.writer, out)
	return err
}

func riskStyle(level domain.RiskLevel) string {
	switch level {
	case domain.RiskLevelCritical:
		return pterm.FgRed.Sprint("CRITICAL")
	case domain.RiskLevelHigh:
		return pterm.FgRed.Sprint("HIGH")
	case domain.RiskLevelMedium:
		return pterm.FgYellow.Sprint("MEDIUM")
	default:
		return pterm.FgGreen.Sprint("LOW")
	}
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
