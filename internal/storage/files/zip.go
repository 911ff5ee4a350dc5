package files

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
)

// ArchiveZip packs the given files into a single in-memory zip archive, so a
// multi-file delivery becomes one transport message.
func ArchiveZip(stored []StoredFile) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	for _, file := range stored {
		src, err := os.Open(file.Path)
		if err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("open %s: %w", file.Name, err)
		}

		entry, err := w.Create(file.Name)
		if err != nil {
			_ = src.Close()
			_ = w.Close()
			return nil, fmt.Errorf("archive %s: %w", file.Name, err)
		}

		_, copyErr := io.Copy(entry, src)
		closeErr := src.Close()
		if copyErr != nil {
			_ = w.Close()
			return nil, fmt.Errorf("archive %s: %w", file.Name, copyErr)
		}
		if closeErr != nil {
			_ = w.Close()
			return nil, fmt.Errorf("close %s: %w", file.Name, closeErr)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}
