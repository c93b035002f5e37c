package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"assetvault/internal/config"
)

// cli carries what every subcommand needs once flags are parsed.
type cli struct {
	verbose bool
	log     *slog.Logger
	cfg     config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	cmd := &cobra.Command{
		Use:               "assetvault",
		Short:             "Admin dashboard for client assets and projects backed by the vault API",
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}
	cmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.AddCommand(
		newServeCmd(c),
		newMirrorCmd(c),
		newExportCmd(c),
	)
	return cmd
}

func (c *cli) setup(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if c.verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	c.log = slog.New(handler)
	slog.SetDefault(c.log)

	cfg, err := config.Load()
	if err != nil {
		c.log.Error("failed to load config", slog.String("error", err.Error()))
		return fmt.Errorf("load config: %w", err)
	}
	c.cfg = cfg
	return nil
}
