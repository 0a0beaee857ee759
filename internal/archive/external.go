package archive

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/verttool/vert/internal/format"
)

// externalExtract delegates the extraction to the platform's archive tools
// instead of the native backends. The destination has already been computed
// and created by the caller; only the entry writing is handed off.
func externalExtract(path string, f format.Format, dest string) error {
	var cmd *exec.Cmd
	switch f {
	case format.Zip:
		cmd = exec.Command("unzip", path, "-d", dest)
	default:
		cmd = exec.Command("tar", "-xf", path, "--directory", dest)
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("external extraction of %s failed: %w", path, err)
	}
	return nil
}
