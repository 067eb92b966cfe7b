//go:build unix

package ingest

import (
	"bytes"
	"context"
	"os"

	"golang.org/x/sys/unix"
)

// readMapped reports mapped=false when the file could not be mapped and the
// caller should fall back to streaming.
func readMapped(ctx context.Context, source string, file *os.File, size int, normalize Normalizer) (*scanned, bool, error) {
	data, err := unix.Mmap(int(file.Fd()), 0, size, unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, false, nil
	}
	defer func() { _ = unix.Munmap(data) }()

	result, err := scan(ctx, source, bytes.NewReader(data), normalize)
	return result, true, err
}
