package repository

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/andresuchdata/clearance-agent/internal/domain"
	"github.com/andresuchdata/clearance-agent/internal/pipeline/clearance"
	"github.com/andresuchdata/clearance-agent/internal/storage"
)

// LedgerRepository yields the current inventory snapshot. Every call reads the
// source again; nothing is kept between calls.
type LedgerRepository interface {
	Load(ctx context.Context) ([]domain.InventoryRecord, error)
	Source() string
}

type fileLedgerRepository struct {
	path string
}

// NewFileLedgerRepository reads the ledger from a local CSV or XLSX file.
func NewFileLedgerRepository(path string) LedgerRepository {
	return &fileLedgerRepository{path: path}
}

func (r *fileLedgerRepository) Load(ctx context.Context) ([]domain.InventoryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return clearance.LoadLedger(r.path)
}

func (r *fileLedgerRepository) Source() string {
	return r.path
}

type objectLedgerRepository struct {
	store   storage.ObjectStorage
	key     string
	tempDir string
}

// NewObjectLedgerRepository reads the ledger object key from store. The object is
// downloaded into a fresh temporary file under tempDir on every Load.
func NewObjectLedgerRepository(store storage.ObjectStorage, key, tempDir string) LedgerRepository {
	return &objectLedgerRepository{store: store, key: key, tempDir: tempDir}
}

func (r *objectLedgerRepository) Load(ctx context.Context) ([]domain.InventoryRecord, error) {
	if err := os.MkdirAll(r.tempDir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	dir, err := os.MkdirTemp(r.tempDir, "ledger-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	dest := filepath.Join(dir, path.Base(r.key))
	if err := r.store.DownloadObject(ctx, r.key, dest); err != nil {
		return nil, fmt.Errorf("download ledger %s: %w", r.key, err)
	}
	return clearance.LoadLedger(dest)
}

func (r *objectLedgerRepository) Source() string {
	return r.key
}
