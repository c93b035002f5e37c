package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"assetvault/internal/app"
	"assetvault/internal/domain"
	"assetvault/internal/report"
	"assetvault/internal/usecase"
)

type exportFlags struct {
	format string
	out    string
}

func newExportCmd(c *cli) *cobra.Command {
	var f exportFlags
	cmd := &cobra.Command{
		Use:   "export <" + strings.Join(usecase.ReportKinds, "|") + "|client <id>>",
		Short: "Write a report to a CSV or Excel file",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.format != "csv" && f.format != "xlsx" {
				return fmt.Errorf("--format must be csv or xlsx, got %q", f.format)
			}
			application, err := app.New(cmd.Context(), c.log, c.cfg)
			if err != nil {
				c.log.Error("failed to initialize app", slog.String("error", err.Error()))
				return err
			}
			defer application.Close()
			return c.export(cmd.Context(), application.Reports(), args, f, time.Now())
		},
	}
	cmd.Flags().StringVar(&f.format, "format", "csv", "Output format: csv or xlsx")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "Output path (default: the report's dated filename)")
	return cmd
}

func (c *cli) export(ctx context.Context, reports *usecase.Reports, args []string, f exportFlags, now time.Time) error {
	var (
		e   usecase.Export
		err error
	)
	switch {
	case args[0] == "client":
		if len(args) != 2 {
			return errors.New("export client needs a client id")
		}
		e, err = reports.ClientAssets(ctx, args[1])
	case len(args) == 1:
		e, err = reports.Build(ctx, args[0], now)
	default:
		return fmt.Errorf("unexpected argument %q", args[1])
	}
	if errors.Is(err, domain.ErrNoData) {
		return errors.New("no data to export")
	}
	if err != nil {
		return err
	}

	path := f.out
	if path == "" {
		path = e.Filename(now, f.format)
	}
	if err := writeExport(path, f.format, e); err != nil {
		return err
	}
	c.log.Info("report exported", slog.String("path", path), slog.Int("rows", e.Table.Len()))
	return nil
}

func writeExport(path, format string, e usecase.Export) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	if format == "xlsx" {
		return report.WriteXLSX(file, e.Sheet, e.Table)
	}
	return report.WriteCSV(file, e.Table)
}
