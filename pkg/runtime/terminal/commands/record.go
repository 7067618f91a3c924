package commands

import (
	"fmt"

	"github.com/de-tools/posture-atlas/pkg/models/domain"
	"github.com/spf13/cobra"
)

type RecordCmd struct {
	open        Opener
	metricType  string
	value       float64
	category    string
	description string
}

func NewRecordCmd(open Opener) *cobra.Command {
	rc := &RecordCmd{open: open}
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Append a security metric observation",
		RunE:  rc.run,
	}

	cmd.Flags().StringVar(&rc.metricType, "type", "", "Metric type (e.g., security_score)")
	cmd.Flags().Float64Var(&rc.value, "value", 0, "Observed value")
	cmd.Flags().StringVar(&rc.category, "category", "", "Optional category")
	cmd.Flags().StringVar(&rc.description, "description", "", "Optional description")

	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("value")

	return cmd
}

func (rc *RecordCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	typ, err := domain.ParseMetricType(rc.metricType)
	if err != nil {
		return err
	}

	reg, closeFn, err := rc.open(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	m, err := reg.Metrics.Record(ctx, domain.SecurityMetric{
		Type:        typ,
		Value:       rc.value,
		Category:    rc.category,
		Description: rc.description,
	})
	if err != nil {
		return fmt.Errorf("failed to record metric: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s=%g (id %d) at %s\n",
		m.Type, m.Value, m.ID, m.RecordedAt.Format("2006-01-02T15:04:05Z07:00"))
	return nil
}
