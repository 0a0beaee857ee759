package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/verttool/vert/internal/archive"
	"github.com/verttool/vert/internal/format"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "l <file>...",
		Short: "List contents of the archive",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ecfg, err := newEngineConfig(cmd)
			if err != nil {
				return err
			}

			failed := 0
			for _, path := range args {
				if err := listOne(ecfg, path); err != nil {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("failed to list %d file(s)", failed)
			}
			return nil
		},
	}
}

func listOne(ecfg *archive.Config, path string) error {
	if _, err := os.Stat(path); err != nil {
		critical(ecfg.Logger, "file doesn't exist, skipping", "file", path)
		return err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	f, _, err := format.Resolve(filepath.Base(abs))
	if err != nil {
		critical(ecfg.Logger, "unsupported file format", "file", path, "error", err)
		return err
	}

	fmt.Printf("%s\n", bold(path))
	if err := archive.ListFile(abs, f, ecfg, os.Stdout); err != nil {
		critical(ecfg.Logger, "listing failed", "file", path, "error", err)
		return err
	}
	return nil
}
