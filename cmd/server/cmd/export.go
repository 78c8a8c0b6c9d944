package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sbms-academy/server/internal/domain/registrations"
	"github.com/sbms-academy/server/internal/export"
	"github.com/sbms-academy/server/internal/storage/postgres"
	"github.com/spf13/cobra"
)

var (
	exportEventID   string
	exportSessionID string
	exportOut       string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export data for offline use",
}

var exportRegistrationsCmd = &cobra.Command{
	Use:   "registrations",
	Short: "Write registrations to an Excel workbook",
	Long: `Write registrations to an Excel workbook, optionally narrowed to one
event or session. Use --out - to write the workbook to stdout.

Examples:
  server export registrations --out all.xlsx
  server export registrations --event 5b0c... --out expo.xlsx`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportOut == "" {
			return fmt.Errorf("--out is required")
		}
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}

		pool, err := openPool(cfg.Database)
		if err != nil {
			return err
		}
		defer pool.Close()

		repo, err := postgres.NewRepository(pool)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()
		regs, err := repo.Registrations().ListForExport(ctx, registrations.ExportFilter{
			EventID:   exportEventID,
			SessionID: exportSessionID,
		})
		if err != nil {
			return fmt.Errorf("load registrations: %w", err)
		}

		return writeExport(cmd.OutOrStdout(), exportOut, func(w io.Writer) error {
			return export.WriteRegistrations(w, regs)
		})
	},
}

func writeExport(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func init() {
	exportRegistrationsCmd.Flags().StringVar(&exportEventID, "event", "", "only export this event")
	exportRegistrationsCmd.Flags().StringVar(&exportSessionID, "session", "", "only export this session")
	exportRegistrationsCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (- for stdout)")
	exportCmd.AddCommand(exportRegistrationsCmd)
}
