package terminal

import (
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/de-tools/posture-atlas/pkg/models/domain"
)

// Reporter outputs reports as plain text, suitable for piping.
type Reporter struct {
	writer io.Writer
}

// NewReporter creates a new plain text reporter
func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer}
}

func (c *Reporter) Handle(report *domain.PostureReport) error {
	tmpl := `{{.Title}}
Generated: {{.GeneratedAt.Format "2006-01-02T15:04:05Z07:00"}}

overall_score: {{printf "%.1f" .Posture.OverallScore}}
risk_level: {{.Posture.RiskLevel}}
critical_alerts: {{.Posture.CriticalAlerts}}
open_vulnerabilities: {{.Posture.OpenVulnerabilities}}
active_incidents: {{.Posture.ActiveIncidents}}
compliance_score: {{printf "%.1f" .Posture.ComplianceScore}}
total_vulnerabilities: {{.Stats.TotalVulnerabilities}}
critical_vulnerabilities: {{.Stats.CriticalVulnerabilities}}
critical_incidents: {{.Stats.CriticalIncidents}}
compliant_frameworks: {{.Stats.CompliantFrameworks}}/{{.Stats.ComplianceFrameworks}}
{{range .Posture.TrendData}}trend {{.Date.Format "2006-01-02T15:04:05Z07:00"}} {{printf "%.1f" .Value}}
{{end}}`

	t, err := template.New("report").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, report)
}
