//go:build !windows

package linker

import "os"

func createLink(target, link string) error {
	return os.Symlink(target, link)
}

func isLinkMode(mode os.FileMode) bool {
	return mode&os.ModeSymlink != 0
}
