package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/verttool/vert/internal/archive"
	"github.com/verttool/vert/internal/format"
)

func newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "x <file>...",
		Short: "Extract contents of the archive (in a sane way)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ecfg, err := newEngineConfig(cmd)
			if err != nil {
				return err
			}

			if ecfg.UseExternalTools {
				ecfg.Logger.Info("using external tools `tar` or `unzip` for extraction")
			}

			// files are processed strictly sequentially; one bad file never
			// aborts the rest of the batch
			failed := 0
			for _, path := range args {
				if err := extractOne(cmd.Context(), ecfg, path); err != nil {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("failed to extract %d file(s)", failed)
			}
			return nil
		},
	}
}

func extractOne(ctx context.Context, ecfg *archive.Config, path string) error {
	if _, err := os.Stat(path); err != nil {
		critical(ecfg.Logger, "file doesn't exist, skipping", "file", path)
		return err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	f, stem, err := format.Resolve(filepath.Base(abs))
	if err != nil {
		critical(ecfg.Logger, "unsupported file format", "file", path, "error", err)
		return err
	}

	stop := withSpinner(ctx, fmt.Sprintf("Extracting %s...", filepath.Base(path)))
	dest, err := archive.ExtractFile(abs, f, stem, ecfg)
	stop()
	if err != nil {
		critical(ecfg.Logger, "extraction failed", "file", path, "error", err)
		fmt.Printf("%s %s: %v\n", red("✗"), path, err)
		return err
	}

	if cwd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(cwd, dest); err == nil {
			dest = rel
		}
	}
	fmt.Printf("%s %s %s %s\n", green("✓"), bold(filepath.Base(path)), dim("->"), cyan(dest))
	return nil
}
