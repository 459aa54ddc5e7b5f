package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"spckit/domain/table"
	"spckit/internal/errors"
)

// Snapshot is one loaded dataset. It is never mutated after creation;
// loading a new dataset replaces the snapshot wholesale.
type Snapshot struct {
	ID       uuid.UUID
	Version  int64
	Name     string
	Table    *table.Table
	LoadedAt time.Time
}

// SnapshotInfo is the serializable description of a snapshot.
type SnapshotInfo struct {
	ID       string             `json:"id"`
	Version  int64              `json:"version"`
	Name     string             `json:"name"`
	Rows     int                `json:"rows"`
	Columns  []table.ColumnInfo `json:"columns"`
	LoadedAt time.Time          `json:"loaded_at"`
}

// Info describes the snapshot.
func (s *Snapshot) Info() SnapshotInfo {
	return SnapshotInfo{
		ID:       s.ID.String(),
		Version:  s.Version,
		Name:     s.Name,
		Rows:     s.Table.RowCount(),
		Columns:  s.Table.Columns(),
		LoadedAt: s.LoadedAt,
	}
}

// Workspace holds the current snapshot. Readers take the snapshot once per
// request and work on it without further locking.
type Workspace struct {
	mu      sync.RWMutex
	current *Snapshot
	version int64
	now     func() time.Time
}

// NewWorkspace creates an empty workspace
func NewWorkspace() *Workspace {
	return &Workspace{now: time.Now}
}

// Replace installs t as the current dataset and bumps the version.
func (w *Workspace) Replace(name string, t *table.Table) *Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.install(name, t)
}

// ReplaceIf installs t only while the current snapshot is still at
// expected. A snapshot installed in between makes it fail with CONFLICT and
// leaves the workspace untouched.
func (w *Workspace) ReplaceIf(expected int64, name string, t *table.Table) (*Snapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.current == nil || w.current.Version != expected {
		current := int64(0)
		if w.current != nil {
			current = w.current.Version
		}
		return nil, errors.Conflict(fmt.Sprintf(
			"dataset changed from version %d to %d while it was being prepared", expected, current))
	}
	return w.install(name, t), nil
}

func (w *Workspace) install(name string, t *table.Table) *Snapshot {
	w.version++
	w.current = &Snapshot{
		ID:       uuid.New(),
		Version:  w.version,
		Name:     name,
		Table:    t,
		LoadedAt: w.now().UTC(),
	}
	return w.current
}

// Current returns the current snapshot, NOT_FOUND when nothing is loaded.
func (w *Workspace) Current() (*Snapshot, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.current == nil {
		return nil, errors.NotFound("dataset")
	}
	return w.current, nil
}

// Resolve returns the current snapshot, checking it against the version the
// caller last saw. A zero version skips the check.
func (w *Workspace) Resolve(version int64) (*Snapshot, error) {
	snap, err := w.Current()
	if err != nil {
		return nil, err
	}
	if version != 0 && version != snap.Version {
		return nil, errors.Conflict(fmt.Sprintf(
			"dataset version %d is stale, current version is %d", version, snap.Version))
	}
	return snap, nil
}

// Clear drops the current snapshot. The version counter keeps increasing.
func (w *Workspace) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.current = nil
}
