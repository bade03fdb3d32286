// Package backup snapshots the raw contents of every entity family into a
// single serialized blob and restores them wholesale. Restore is a
// destructive, non-transactional replace: a crash mid-restore leaves a
// mixed state. That limitation is part of the contract, not a bug to fix
// here.
package backup

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"foliodb/pkg/logger"
	"foliodb/pkg/models"
	"foliodb/pkg/store"
	"foliodb/pkg/utils"
)

const keyBackups = "backups"

// Snapshot is the serialized payload of a completed backup.
type Snapshot struct {
	Families map[string]map[string]string `json:"families"`
	Settings string                       `json:"settings,omitempty"`
	TakenAt  int64                        `json:"taken_at"`
}

// Orchestrator drives backup and restore over the repositories' raw
// hashes. maxSize bounds the serialized blob; zero means unbounded.
type Orchestrator struct {
	store   *store.Store
	maxSize int64
}

// New returns an orchestrator. maxSize of 0 disables the size cap.
func New(st *store.Store, maxSize int64) *Orchestrator {
	return &Orchestrator{store: st, maxSize: maxSize}
}

// CreateBackup writes a pending record, reads every entity family and the
// settings scalar into one snapshot, serializes it and rewrites the record
// as completed with the blob and its size. Any failure rewrites the record
// as failed with an error payload instead; CreateBackup never returns an
// error to the caller. The outcome is only visible in the record's status.
func (o *Orchestrator) CreateBackup(name, btype, description string) models.Backup {
	now := time.Now().UTC().UnixMilli()
	b := models.Backup{
		ID:          utils.GenID("backup"),
		Name:        name,
		Description: description,
		Status:      models.BackupPending,
		Type:        btype,
		CreatedAt:   now,
	}
	if b.Type == "" {
		b.Type = models.BackupFull
	}
	if err := o.writeRecord(&b); err != nil {
		logger.Error("backup_pending_write_failed", "id", b.ID, "error", err)
		b.Status = models.BackupFailed
		b.Data = errPayload(err)
		return b
	}

	snap := Snapshot{Families: make(map[string]map[string]string), TakenAt: now}
	for _, family := range store.Families() {
		contents, err := o.store.RawFamily(family)
		if err != nil {
			return o.markFailed(b, fmt.Errorf("read %s: %w", family, err))
		}
		snap.Families[family] = contents
	}
	if doc, ok, err := o.store.RawSettings(); err != nil {
		return o.markFailed(b, fmt.Errorf("read settings: %w", err))
	} else if ok {
		snap.Settings = doc
	}

	blob, err := json.Marshal(snap)
	if err != nil {
		return o.markFailed(b, fmt.Errorf("serialize snapshot: %w", err))
	}
	if o.maxSize > 0 && int64(len(blob)) > o.maxSize {
		return o.markFailed(b, fmt.Errorf("snapshot size %d exceeds limit %d", len(blob), o.maxSize))
	}

	b.Status = models.BackupCompleted
	b.Data = string(blob)
	b.Size = int64(len(blob))
	b.CompletedAt = time.Now().UTC().UnixMilli()
	if err := o.writeRecord(&b); err != nil {
		return o.markFailed(b, fmt.Errorf("write completed record: %w", err))
	}
	logger.Info("backup_completed", "id", b.ID, "name", b.Name, "size", b.Size)
	return b
}

func (o *Orchestrator) markFailed(b models.Backup, cause error) models.Backup {
	logger.Error("backup_failed", "id", b.ID, "error", cause)
	b.Status = models.BackupFailed
	b.Data = errPayload(cause)
	b.Size = 0
	b.CompletedAt = time.Now().UTC().UnixMilli()
	if err := o.writeRecord(&b); err != nil {
		logger.Error("backup_failed_record_write_failed", "id", b.ID, "error", err)
	}
	return b
}

func errPayload(err error) string {
	doc, _ := json.Marshal(map[string]string{"error": err.Error()})
	return string(doc)
}

// GetBackup returns nil when absent.
func (o *Orchestrator) GetBackup(id string) (*models.Backup, error) {
	c := o.store.KV()
	if c == nil {
		return nil, nil
	}
	doc, ok, err := c.HGet(keyBackups, id)
	if err != nil {
		logger.Error("backup_read_failed", "id", id, "error", err)
		return nil, nil
	}
	if !ok {
		return nil, nil
	}
	var b models.Backup
	if err := json.Unmarshal([]byte(doc), &b); err != nil {
		logger.Error("backup_unmarshal_failed", "id", id, "error", err)
		return nil, nil
	}
	return &b, nil
}

// ListBackups returns metadata (never the blob) newest-first.
func (o *Orchestrator) ListBackups() []models.BackupMeta {
	c := o.store.KV()
	if c == nil {
		return []models.BackupMeta{}
	}
	all, err := c.HGetAll(keyBackups)
	if err != nil {
		logger.Error("backup_list_failed", "error", err)
		return []models.BackupMeta{}
	}
	out := make([]models.BackupMeta, 0, len(all))
	for id, doc := range all {
		var b models.Backup
		if err := json.Unmarshal([]byte(doc), &b); err != nil {
			logger.Error("backup_unmarshal_failed", "id", id, "error", err)
			continue
		}
		out = append(out, b.Meta())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out
}

// RestoreBackup deserializes a completed backup's blob and replaces each
// entity family's primary hash wholesale, then the settings scalar. The
// replace is sequential and non-atomic by design. Secondary indexes are not
// rebuilt; they reflect whatever state preceded the restore.
func (o *Orchestrator) RestoreBackup(id string) error {
	b, err := o.GetBackup(id)
	if err != nil {
		return err
	}
	if b == nil {
		return fmt.Errorf("backup %s not found", id)
	}
	if b.Status != models.BackupCompleted {
		return fmt.Errorf("backup %s is %s, not %s", id, b.Status, models.BackupCompleted)
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(b.Data), &snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	for _, family := range store.Families() {
		contents, ok := snap.Families[family]
		if !ok {
			continue
		}
		if err := o.store.ReplaceFamily(family, contents); err != nil {
			return fmt.Errorf("restore %s: %w", family, err)
		}
	}
	if snap.Settings != "" {
		if err := o.store.ReplaceSettings(snap.Settings); err != nil {
			return fmt.Errorf("restore settings: %w", err)
		}
	}
	logger.Info("backup_restored", "id", id)
	return nil
}

// DeleteBackup removes only the backup's own record; the entities it
// snapshotted are untouched.
func (o *Orchestrator) DeleteBackup(id string) (bool, error) {
	b, err := o.GetBackup(id)
	if err != nil || b == nil {
		return false, err
	}
	c := o.store.KV()
	if c == nil {
		return false, nil
	}
	if err := c.HDel(keyBackups, id); err != nil {
		return false, err
	}
	logger.Info("backup_deleted", "id", id)
	return true, nil
}

// Prune deletes completed backups beyond the newest keep records and
// returns how many were removed. Used by the snapshot scheduler.
func (o *Orchestrator) Prune(keep int) int {
	if keep <= 0 {
		return 0
	}
	metas := o.ListBackups()
	removed := 0
	seen := 0
	for _, m := range metas {
		if m.Status != models.BackupCompleted {
			continue
		}
		seen++
		if seen <= keep {
			continue
		}
		if ok, err := o.DeleteBackup(m.ID); err == nil && ok {
			removed++
		}
	}
	if removed > 0 {
		logger.Info("backups_pruned", "removed", removed, "kept", keep)
	}
	return removed
}

func (o *Orchestrator) writeRecord(b *models.Backup) error {
	c := o.store.KV()
	if c == nil {
		return fmt.Errorf("kv store not configured")
	}
	doc, err := json.Marshal(b)
	if err != nil {
		return err
	}
	return c.HSet(keyBackups, b.ID, string(doc))
}
