package files

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	domainErrors "github.com/polkiloo/orderdesk/internal/domain/errors"
)

// Namespace separates submitted attachments from delivered work.
type Namespace string

const (
	NamespaceSubmitted Namespace = "submitted"
	NamespaceDelivered Namespace = "delivered"
)

// StoredFile references a persisted attachment.
type StoredFile struct {
	OrderID   string
	Namespace Namespace
	Name      string
	Path      string
}

// Folder is a handle to the per-order directory of one namespace.
type Folder struct {
	OrderID   string
	Namespace Namespace
	Path      string
}

// Store keeps order attachments on the local filesystem, isolated per order
// and per namespace.
type Store struct {
	submittedRoot string
	deliveredRoot string
	maxFileSize   int64
}

// NewStore creates both namespace roots if missing.
func NewStore(submittedRoot, deliveredRoot string, maxFileSize int64) (*Store, error) {
	if strings.TrimSpace(submittedRoot) == "" || strings.TrimSpace(deliveredRoot) == "" {
		return nil, fmt.Errorf("attachment roots are required")
	}
	for _, root := range []string{submittedRoot, deliveredRoot} {
		if err := os.MkdirAll(root, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create root %s: %v", domainErrors.ErrStorageUnavailable, root, err)
		}
	}
	return &Store{
		submittedRoot: submittedRoot,
		deliveredRoot: deliveredRoot,
		maxFileSize:   maxFileSize,
	}, nil
}

func (s *Store) root(ns Namespace) string {
	if ns == NamespaceDelivered {
		return s.deliveredRoot
	}
	return s.submittedRoot
}

// Folder returns the handle for an order directory without creating it.
func (s *Store) Folder(orderID string, requesterID int64, ns Namespace) Folder {
	return Folder{
		OrderID:   orderID,
		Namespace: ns,
		Path:      filepath.Join(s.root(ns), strconv.FormatInt(requesterID, 10), orderID),
	}
}

// EnsureFolder creates the order directory if absent. Idempotent.
func (s *Store) EnsureFolder(orderID string, requesterID int64, ns Namespace) (Folder, error) {
	folder := s.Folder(orderID, requesterID, ns)
	if err := os.MkdirAll(folder.Path, 0o755); err != nil {
		return Folder{}, fmt.Errorf("%w: create folder %s: %v", domainErrors.ErrStorageUnavailable, folder.Path, err)
	}
	return folder, nil
}

// AddFile persists content under a collision-free name derived from
// suggestedName. The write is not trusted until a post-write existence and
// nonzero-size check succeeds.
func (s *Store) AddFile(folder Folder, r io.Reader, suggestedName string) (StoredFile, error) {
	target := filepath.Join(folder.Path, s.freeName(folder.Path, safeFilename(suggestedName)))

	out, err := os.Create(target)
	if err != nil {
		return StoredFile{}, fmt.Errorf("%w: create file: %v", domainErrors.ErrStorageUnavailable, err)
	}

	written, copyErr := io.Copy(out, io.LimitReader(r, s.maxFileSize+1))
	closeErr := out.Close()

	if copyErr != nil || closeErr != nil {
		_ = os.Remove(target)
		if copyErr == nil {
			copyErr = closeErr
		}
		return StoredFile{}, fmt.Errorf("write file: %w", copyErr)
	}

	if written > s.maxFileSize {
		_ = os.Remove(target)
		return StoredFile{}, domainErrors.ErrFileTooLarge
	}

	info, err := os.Stat(target)
	if err != nil || info.Size() == 0 {
		_ = os.Remove(target)
		return StoredFile{}, domainErrors.ErrEmptyWrite
	}

	return StoredFile{
		OrderID:   folder.OrderID,
		Namespace: folder.Namespace,
		Name:      filepath.Base(target),
		Path:      target,
	}, nil
}

// ListFiles enumerates stored files in filesystem order.
func (s *Store) ListFiles(folder Folder) ([]StoredFile, error) {
	entries, err := os.ReadDir(folder.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: list folder: %v", domainErrors.ErrStorageUnavailable, err)
	}

	var result []StoredFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		result = append(result, StoredFile{
			OrderID:   folder.OrderID,
			Namespace: folder.Namespace,
			Name:      entry.Name(),
			Path:      filepath.Join(folder.Path, entry.Name()),
		})
	}
	return result, nil
}

// Move re-keys a folder under a new order identifier within the same
// namespace. Moving an absent folder returns the target handle untouched.
func (s *Store) Move(folder Folder, newOrderID string, requesterID int64) (Folder, error) {
	target := s.Folder(newOrderID, requesterID, folder.Namespace)
	if _, err := os.Stat(folder.Path); errors.Is(err, os.ErrNotExist) {
		return target, nil
	}
	if err := os.MkdirAll(filepath.Dir(target.Path), 0o755); err != nil {
		return Folder{}, fmt.Errorf("%w: prepare folder %s: %v", domainErrors.ErrStorageUnavailable, target.Path, err)
	}
	if err := os.Rename(folder.Path, target.Path); err != nil {
		return Folder{}, fmt.Errorf("%w: move folder: %v", domainErrors.ErrStorageUnavailable, err)
	}
	return target, nil
}

// Purge recursively deletes the folder. Removing an absent folder is not an error.
func (s *Store) Purge(folder Folder) error {
	if err := os.RemoveAll(folder.Path); err != nil {
		return fmt.Errorf("%w: purge folder: %v", domainErrors.ErrStorageUnavailable, err)
	}
	return nil
}

// freeName appends a numeric suffix before the extension until the name is unused.
func (s *Store) freeName(dir, name string) string {
	candidate := name
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for counter := 1; ; counter++ {
		if _, err := os.Stat(filepath.Join(dir, candidate)); errors.Is(err, os.ErrNotExist) {
			return candidate
		}
		candidate = fmt.Sprintf("%s_%d%s", stem, counter, ext)
	}
}

func safeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, string(os.PathSeparator), "_")
	name = strings.TrimSpace(name)
	if name == "" || name == "." {
		return "attachment"
	}
	return name
}
