package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	"expensetracker/internal/sheets"
	"expensetracker/internal/transfer"
)

const (
	backupPrefix = "ledger-"
	backupExt    = ".json"
)

// LedgerSource yields the persisted ledger; *ledger.Bridge implements it.
type LedgerSource interface {
	Load(ctx context.Context) core.Ledger
}

// BackupWorker reacts to ledger changes by writing a JSON snapshot to disk and,
// when an exporter is configured, mirroring transactions to a spreadsheet.
type BackupWorker struct {
	source   LedgerSource
	dir      string
	keep     int
	exporter sheets.TransactionExporter
	now      func() time.Time
}

func NewBackupWorker(source LedgerSource, dir string, keep int, exporter sheets.TransactionExporter) (*BackupWorker, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup directory: %w", err)
	}
	if keep < 1 {
		keep = 1
	}
	return &BackupWorker{source: source, dir: dir, keep: keep, exporter: exporter, now: time.Now}, nil
}

// HandleLedgerChanged processes a single ledger-changed message from AMQP.
func (w *BackupWorker) HandleLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error {
	slog.InfoContext(ctx, "Processing ledger changed message",
		"op", msg.Op,
		"transactions", msg.Transactions,
		"timestamp", msg.Timestamp)

	l := w.source.Load(ctx)
	path, err := w.Backup(ctx, l)
	if err != nil {
		return err
	}

	if w.exporter != nil {
		ref, err := w.exporter.ExportTransactions(ctx, l.Transactions)
		if err != nil {
			// the backup is written; a requeue would only repeat it
			slog.ErrorContext(ctx, "Failed to mirror transactions to sheets", "error", err, "backup", path)
			return nil
		}
		slog.InfoContext(ctx, "Transactions mirrored to sheets", "range", ref)
	}
	return nil
}

// StartupBackup takes one snapshot when the worker starts so the backup
// directory is never empty.
func (w *BackupWorker) StartupBackup(ctx context.Context) error {
	_, err := w.Backup(ctx, w.source.Load(ctx))
	return err
}

// Backup writes l and prunes old snapshots. It returns the new file's path.
func (w *BackupWorker) Backup(ctx context.Context, l core.Ledger) (string, error) {
	data, err := transfer.ExportJSON(l)
	if err != nil {
		return "", fmt.Errorf("encode backup: %w", err)
	}

	name := fmt.Sprintf("%s%s-%s%s", backupPrefix, w.now().UTC().Format("20060102T150405.000Z"), uuid.NewString()[:8], backupExt)
	path := filepath.Join(w.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("finalize backup: %w", err)
	}

	removed, err := w.prune()
	if err != nil {
		slog.WarnContext(ctx, "Failed to prune old backups", "error", err)
	}

	slog.InfoContext(ctx, "Ledger backup written",
		"path", path,
		"bytes", len(data),
		"pruned", removed)
	return path, nil
}

// Backups lists snapshot file names, oldest first.
func (w *BackupWorker) Backups() ([]string, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, fmt.Errorf("read backup directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		n := e.Name()
		if !e.IsDir() && strings.HasPrefix(n, backupPrefix) && strings.HasSuffix(n, backupExt) {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (w *BackupWorker) prune() (int, error) {
	names, err := w.Backups()
	if err != nil {
		return 0, err
	}
	removed := 0
	for len(names) > w.keep {
		if err := os.Remove(filepath.Join(w.dir, names[0])); err != nil {
			return removed, fmt.Errorf("remove %s: %w", names[0], err)
		}
		names = names[1:]
		removed++
	}
	return removed, nil
}
