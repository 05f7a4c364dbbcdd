package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectStorage captures the minimal S3-compatible operations the pipeline needs.
type ObjectStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	DownloadObject(ctx context.Context, key string, destPath string) error
	UploadObject(ctx context.Context, key string, data []byte) error
}

// IsLedgerKey reports whether key names a ledger file the loader understands.
func IsLedgerKey(key string) bool {
	switch strings.ToLower(path.Ext(key)) {
	case ".csv", ".xlsx":
		return true
	}
	return false
}

// DownloadLedgers fetches every ledger object under prefix into destDir and returns
// the local paths in key order. Objects that are not ledgers are skipped.
func DownloadLedgers(ctx context.Context, store ObjectStorage, prefix, destDir string) ([]string, error) {
	objects, err := store.ListObjects(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list ledgers under %q: %w", prefix, err)
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("create download dir %s: %w", destDir, err)
	}

	paths := make([]string, 0, len(objects))
	for _, obj := range objects {
		if !IsLedgerKey(obj.Key) {
			continue
		}
		dest := filepath.Join(destDir, path.Base(obj.Key))
		if err := store.DownloadObject(ctx, obj.Key, dest); err != nil {
			return nil, fmt.Errorf("download %s: %w", obj.Key, err)
		}
		paths = append(paths, dest)
	}
	return paths, nil
}

// UploadFiles uploads local files under prefix, keyed by their base names.
func UploadFiles(ctx context.Context, store ObjectStorage, prefix string, files []string) error {
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}
		key := path.Join(prefix, filepath.Base(f))
		if err := store.UploadObject(ctx, key, data); err != nil {
			return fmt.Errorf("upload %s: %w", key, err)
		}
	}
	return nil
}
