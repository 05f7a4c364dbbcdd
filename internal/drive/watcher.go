package drive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andresuchdata/clearance-agent/pkg/logger"
)

// DownloadOptions controls how files are pulled from Google Drive.
type DownloadOptions struct {
	FolderID    string
	DownloadDir string
}

// fileSource is the subset of Service the downloader needs.
type fileSource interface {
	ListFiles(ctx context.Context, folderID string) ([]*File, error)
	DownloadFile(ctx context.Context, fileID string, w io.Writer) error
	ExportCSV(ctx context.Context, fileID string, w io.Writer) error
}

// Downloader wraps Service to download ledgers from a specific folder.
type Downloader struct {
	source fileSource
}

// NewDownloader creates a new Downloader.
func NewDownloader(s *Service) *Downloader {
	return &Downloader{source: s}
}

// DownloadLedgers downloads every ledger in the folder into DownloadDir and returns
// local CSV paths, in Drive listing order.
//
//   - CSV files are downloaded directly.
//   - XLSX files are downloaded, their first sheet converted to CSV, and the
//     .xlsx removed.
//   - Native Google Sheets are exported as CSV.
//
// Anything else is skipped.
func (d *Downloader) DownloadLedgers(ctx context.Context, opts DownloadOptions) ([]string, error) {
	if opts.DownloadDir == "" {
		return nil, fmt.Errorf("download dir is required")
	}
	if err := os.MkdirAll(opts.DownloadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download dir: %w", err)
	}

	files, err := d.source.ListFiles(ctx, opts.FolderID)
	if err != nil {
		return nil, err
	}

	var localPaths []string
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := filepath.Base(f.Name)
		ext := strings.ToLower(filepath.Ext(name))

		switch {
		case f.MimeType == MimeSpreadsheet:
			csvPath := filepath.Join(opts.DownloadDir, name+".csv")
			if err := writeLocal(csvPath, func(w io.Writer) error {
				return d.source.ExportCSV(ctx, f.ID, w)
			}); err != nil {
				return nil, fmt.Errorf("failed to export %s: %w", f.Name, err)
			}
			localPaths = append(localPaths, csvPath)

		case ext == ".csv":
			localPath := filepath.Join(opts.DownloadDir, name)
			if err := writeLocal(localPath, func(w io.Writer) error {
				return d.source.DownloadFile(ctx, f.ID, w)
			}); err != nil {
				return nil, fmt.Errorf("failed to download %s: %w", f.Name, err)
			}
			localPaths = append(localPaths, localPath)

		case ext == ".xlsx":
			tmpXLSXPath := filepath.Join(opts.DownloadDir, name)
			if err := writeLocal(tmpXLSXPath, func(w io.Writer) error {
				return d.source.DownloadFile(ctx, f.ID, w)
			}); err != nil {
				return nil, fmt.Errorf("failed to download %s: %w", f.Name, err)
			}

			csvPath := filepath.Join(opts.DownloadDir, strings.TrimSuffix(name, filepath.Ext(name))+".csv")
			if err := convertXLSXToCSV(tmpXLSXPath, csvPath); err != nil {
				return nil, fmt.Errorf("failed to convert %s to csv: %w", f.Name, err)
			}
			_ = os.Remove(tmpXLSXPath)
			localPaths = append(localPaths, csvPath)

		default:
			logger.Log.Debug().Str("file", f.Name).Str("mime", f.MimeType).Msg("Skipping non-ledger Drive file")
		}
	}

	logger.Log.Info().Str("folder", opts.FolderID).Int("files", len(localPaths)).Msg("Downloaded ledgers from Drive")
	return localPaths, nil
}

func writeLocal(path string, fill func(io.Writer) error) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create local file %s: %w", path, err)
	}
	if err := fill(out); err != nil {
		out.Close()
		os.Remove(path)
		return err
	}
	return out.Close()
}
