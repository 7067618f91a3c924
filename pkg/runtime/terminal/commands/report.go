package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/de-tools/posture-atlas/pkg/models/domain"
	"github.com/de-tools/posture-atlas/pkg/services/registry"
	"github.com/spf13/cobra"
)

type Opener func(ctx context.Context) (*registry.Registry, func() error, error)

type ReportHandler interface {
	Handle(report *domain.PostureReport) error
}

type ReportCmd struct {
	open      Opener
	reporters map[string]ReportHandler
	format    string
	now       func() time.Time
}

func NewReportCmd(open Opener, reporters map[string]ReportHandler) *cobra.Command {
	rc := &ReportCmd{open: open, reporters: reporters, now: time.Now}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the current security posture and dashboard statistics",
		RunE:  rc.run,
	}

	cmd.Flags().StringVar(&rc.format, "format", "table", "Output format (table or plain)")

	return cmd
}

func (rc *ReportCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	reporter, ok := rc.reporters[rc.format]
	if !ok {
		return fmt.Errorf("unsupported format %q", rc.format)
	}

	reg, closeFn, err := rc.open(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	posture, err := reg.Aggregator.Posture(ctx)
	if err != nil {
		return fmt.Errorf("failed to compute posture: %w", err)
	}
	stats, err := reg.Aggregator.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to compute statistics: %w", err)
	}

	return reporter.Handle(&domain.PostureReport{
		Title:       "Security posture",
		GeneratedAt: rc.now().UTC(),
		Posture:     posture,
		Stats:       stats,
	})
}
