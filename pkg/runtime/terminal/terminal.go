package terminal

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/de-tools/posture-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/posture-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/posture-atlas/pkg/services/config"
	"github.com/de-tools/posture-atlas/pkg/services/registry"
	"github.com/de-tools/posture-atlas/pkg/store/duckdb"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	opts    Options
	rootCmd *cobra.Command
	cfgPath string
}

// Options contain configuration for the CLI
type Options struct {
	// Open builds the services for one command run. Defaults to OpenRegistry.
	Open   commands.Opener
	Output io.Writer
	Logger *zerolog.Logger
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Logger == nil {
		logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
		opts.Logger = &logger
	}

	cli := &CLI{opts: opts}
	if cli.opts.Open == nil {
		cli.opts.Open = func(ctx context.Context) (*registry.Registry, func() error, error) {
			return OpenRegistry(ctx, cli.cfgPath)
		}
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.ExecuteContext(context.Background())
}

func (cli *CLI) ExecuteContext(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(cli.opts.Logger.WithContext(ctx))
}

func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "posture",
		Short:         "Security posture reporting tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(cli.opts.Output)
	cmd.PersistentFlags().StringVarP(&cli.cfgPath, "config", "c", "", "Path to a YAML config file")

	reporters := map[string]commands.ReportHandler{
		"table": export.NewReporter(cli.opts.Output),
		"plain": NewReporter(cli.opts.Output),
	}

	cmd.AddCommand(commands.NewReportCmd(cli.opts.Open, reporters))
	cmd.AddCommand(commands.NewRecordCmd(cli.opts.Open))

	return cmd
}

// OpenRegistry loads the config at cfgPath and opens its database.
// The returned close function releases the database.
func OpenRegistry(ctx context.Context, cfgPath string) (*registry.Registry, func() error, error) {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return nil, nil, err
	}

	db, err := duckdb.NewDB(ctx, duckdb.Settings{
		DbPath:            cfg.Database.Path,
		ConnectMaxElapsed: cfg.Database.ConnectMaxElapsed,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create DuckDB instance: %w", err)
	}

	reg, err := registry.New(db, *cfg)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return reg, db.Close, nil
}
