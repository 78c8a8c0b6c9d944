package cmd

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/sbms-academy/server/internal/config"
	"github.com/sbms-academy/server/internal/media"
	"github.com/stretchr/testify/require"
)

func TestWriteExportToStdout(t *testing.T) {
	var buf bytes.Buffer
	err := writeExport(&buf, "-", func(w io.Writer) error {
		_, err := w.Write([]byte("xlsx"))
		return err
	})
	require.NoError(t, err)
	require.Equal(t, "xlsx", buf.String())
}

func TestWriteExportToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regs.xlsx")
	err := writeExport(io.Discard, path, func(w io.Writer) error {
		_, err := w.Write([]byte("sheet"))
		return err
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "sheet", string(data))
}

func TestWriteExportPropagatesWriterError(t *testing.T) {
	boom := errors.New("boom")
	err := writeExport(io.Discard, filepath.Join(t.TempDir(), "x.xlsx"), func(io.Writer) error { return boom })
	require.ErrorIs(t, err, boom)
}

func TestExportRequiresOut(t *testing.T) {
	exportOut = ""
	err := exportRegistrationsCmd.RunE(exportRegistrationsCmd, nil)
	require.EqualError(t, err, "--out is required")
}

func TestMigrateDownRejectsZeroSteps(t *testing.T) {
	migrateSteps = 0
	defer func() { migrateSteps = 1 }()
	err := migrateDownCmd.RunE(migrateDownCmd, nil)
	require.EqualError(t, err, "--steps must be at least 1")
}

func TestNewMediaStoreFallsBackWhenUnconfigured(t *testing.T) {
	store, err := newMediaStore(config.MediaConfig{}, zerolog.Nop())
	require.NoError(t, err)
	require.IsType(t, media.Disabled{}, store)
}
