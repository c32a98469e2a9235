package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// IDLayout formats a snapshot id from its UTC creation time.
const IDLayout = "20060102_150405"

// DisplayLayout is how List renders a snapshot's creation time.
const DisplayLayout = "2006-01-02 03:04:05 PM"

const (
	filePrefix = "backup_"
	fileSuffix = ".json"
)

// FormatID returns the snapshot id for t.
func FormatID(t time.Time) string {
	return t.UTC().Format(IDLayout)
}

// ParseID returns the creation time encoded in id.
func ParseID(id string) (time.Time, error) {
	t, err := time.Parse(IDLayout, id)
	if err != nil {
		return time.Time{}, fmt.Errorf("snapshot: parse id %q: %w", id, err)
	}
	return t, nil
}

// FileName returns the backup file name for id.
func FileName(id string) string {
	return filePrefix + id + fileSuffix
}

// idFromFileName returns the id of a backup file name, or false if name is
// not one.
func idFromFileName(name string) (string, bool) {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
		return "", false
	}
	id := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
	if _, err := ParseID(id); err != nil {
		return "", false
	}
	return id, true
}

// scanIDs returns the ids of every backup file in dir, newest first.
// A missing dir yields no ids.
func scanIDs(dir string) ([]string, error) {
	des, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot: read dir: %w", err)
	}
	var ids []string
	for _, de := range des {
		if de.IsDir() {
			continue
		}
		if id, ok := idFromFileName(de.Name()); ok {
			ids = append(ids, id)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	return ids, nil
}

// writeAtomic writes data to dir/name through a temp file in the same dir,
// fsyncs it and renames it into place. Readers never see a partial file.
func writeAtomic(dir, name string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, filepath.Join(dir, name)); err != nil {
		cleanup()
		return err
	}
	return nil
}
