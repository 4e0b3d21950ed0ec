package snapshot

import (
	"fmt"
	"io"
	"os"
)

// copyFile copies src to dst, preserving the source's permission bits and
// modification time. It returns the number of bytes copied.
func copyFile(src, dst string) (int64, error) {
	info, err := os.Stat(src)
	if err != nil {
		return 0, fmt.Errorf("stat source: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("opening source: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return 0, fmt.Errorf("creating destination: %w", err)
	}

	n, err := io.Copy(out, in)
	if err != nil {
		out.Close()
		os.Remove(dst)
		return 0, fmt.Errorf("copying content: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return 0, fmt.Errorf("closing destination: %w", err)
	}

	// OpenFile's mode is masked by the umask; restore the exact bits.
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return n, fmt.Errorf("preserving permissions: %w", err)
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return n, fmt.Errorf("preserving modification time: %w", err)
	}
	return n, nil
}
