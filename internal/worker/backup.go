package worker

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Backup copies a source file into a timestamped snapshot directory and
// prunes old snapshots, keeping the newest keep files.
type Backup struct {
	source string
	dir    string
	keep   int

	now func() time.Time
}

// NewBackup constructs a backup rotation. Returns nil when no source is
// configured, which disables backups entirely.
func NewBackup(source, dir string, keep int) *Backup {
	if source == "" {
		return nil
	}
	if keep <= 0 {
		keep = 1
	}
	return &Backup{source: source, dir: dir, keep: keep, now: time.Now}
}

// Run takes one snapshot and prunes the directory.
func (b *Backup) Run() error {
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}

	stamp := b.now().Format("20060102_150405")
	name := fmt.Sprintf("%s_%s%s", trimExt(filepath.Base(b.source)), stamp, filepath.Ext(b.source))
	if err := copyFile(b.source, filepath.Join(b.dir, name)); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}

	return b.prune()
}

func (b *Backup) prune() error {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return fmt.Errorf("list backup dir: %w", err)
	}

	type snapshot struct {
		name    string
		modTime time.Time
	}
	var snapshots []snapshot
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		snapshots = append(snapshots, snapshot{name: entry.Name(), modTime: info.ModTime()})
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].modTime.After(snapshots[j].modTime)
	})

	for _, stale := range snapshots[min(b.keep, len(snapshots)):] {
		if err := os.Remove(filepath.Join(b.dir, stale.name)); err != nil {
			return fmt.Errorf("remove stale backup: %w", err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}
