//go:build windows

package linker

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// createLink uses mklink so that no developer-mode privilege is needed for
// directories: those become junctions.
func createLink(target, link string) error {
	args := []string{"/c", "mklink"}
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		args = append(args, "/J")
	}
	args = append(args, link, target)

	out, err := exec.Command("cmd", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("mklink: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Junctions are reported as irregular files rather than symlinks.
func isLinkMode(mode os.FileMode) bool {
	return mode&(os.ModeSymlink|os.ModeIrregular) != 0
}
