package project

import (
	"fmt"
	"time"
)

// Checkpoint is an immutable named snapshot of the full frame set at a
// point in time. Its FrameSet is a fully independent copy: mutating the
// live set never changes a checkpoint and vice versa.
type Checkpoint struct {
	ID           string
	CreatedAt    time.Time
	Name         string
	FrameIndices []int
	Frames       FrameSet
}

// CheckpointManager creates, lists, restores, and deletes checkpoints of a
// live FrameStore. Checkpoints preserve creation order; restore and delete
// never reorder the list. Every successful mutation marks the project dirty
// through the provided callback.
type CheckpointManager struct {
	live        *FrameStore
	checkpoints []*Checkpoint
	clock       Clock
	idgen       IDGenerator
	logger      Logger
	markDirty   func()
}

// NewCheckpointManager creates a manager over the given live frame store.
// markDirty is invoked after every mutation of the checkpoint list.
func NewCheckpointManager(live *FrameStore, clock Clock, idgen IDGenerator, logger Logger, markDirty func()) *CheckpointManager {
	return &CheckpointManager{
		live:      live,
		clock:     clock,
		idgen:     idgen,
		logger:    logger,
		markDirty: markDirty,
	}
}

// defaultName formats the fallback checkpoint label from the current time.
func (m *CheckpointManager) defaultName() string {
	return "Checkpoint " + m.clock.Now().Format("15:04:05")
}

// Create snapshots the live frame set into a new checkpoint. When name is
// empty a timestamp label ("Checkpoint HH:MM:SS") is used.
func (m *CheckpointManager) Create(name string) *Checkpoint {
	if name == "" {
		name = m.defaultName()
	}

	frames := m.live.CloneAll()
	cp := &Checkpoint{
		ID:           m.idgen.New(),
		CreatedAt:    m.clock.Now(),
		Name:         name,
		FrameIndices: frames.Indices(),
		Frames:       frames,
	}

	m.checkpoints = append(m.checkpoints, cp)
	m.markDirty()

	m.logger.Info("checkpoint created", "id", cp.ID, "name", cp.Name, "frames", len(frames))
	return cp
}

// Restore replaces the entire live frame set with a deep copy of the
// checkpoint's set. The checkpoint itself is left unmodified and can be
// restored again later. Returns false if the id is unknown.
func (m *CheckpointManager) Restore(id string) bool {
	cp := m.find(id)
	if cp == nil {
		m.logger.Error("checkpoint not found", "id", id)
		return false
	}

	m.live.ReplaceAll(cp.Frames)
	m.markDirty()

	m.logger.Info("checkpoint restored", "id", cp.ID, "name", cp.Name)
	return true
}

// Delete removes one checkpoint. Deleting an unknown id is a no-op and
// returns false.
func (m *CheckpointManager) Delete(id string) bool {
	for i, cp := range m.checkpoints {
		if cp.ID == id {
			m.checkpoints = append(m.checkpoints[:i], m.checkpoints[i+1:]...)
			m.markDirty()
			m.logger.Info("checkpoint deleted", "id", id, "name", cp.Name)
			return true
		}
	}
	return false
}

// DeleteMany removes each listed checkpoint. Unknown ids are skipped, not
// fatal. Returns the number actually deleted; the project is marked dirty
// only when at least one was removed.
func (m *CheckpointManager) DeleteMany(ids []string) int {
	deleted := 0
	for _, id := range ids {
		for i, cp := range m.checkpoints {
			if cp.ID == id {
				m.checkpoints = append(m.checkpoints[:i], m.checkpoints[i+1:]...)
				deleted++
				break
			}
		}
	}
	if deleted > 0 {
		m.markDirty()
		m.logger.Info("checkpoints deleted", "count", deleted)
	}
	return deleted
}

// Clear removes every checkpoint and returns how many were removed.
func (m *CheckpointManager) Clear() int {
	count := len(m.checkpoints)
	m.checkpoints = nil
	if count > 0 {
		m.markDirty()
		m.logger.Info("checkpoints cleared", "count", count)
	}
	return count
}

// List returns the checkpoints in creation order. The returned slice is a
// copy; the checkpoints themselves are shared and must not be mutated.
func (m *CheckpointManager) List() []*Checkpoint {
	out := make([]*Checkpoint, len(m.checkpoints))
	copy(out, m.checkpoints)
	return out
}

// Count returns the number of checkpoints.
func (m *CheckpointManager) Count() int {
	return len(m.checkpoints)
}

// Get returns the checkpoint with the given id, or an error if unknown.
func (m *CheckpointManager) Get(id string) (*Checkpoint, error) {
	if cp := m.find(id); cp != nil {
		return cp, nil
	}
	return nil, fmt.Errorf("checkpoint not found: %s", id)
}

// replaceAll swaps the full checkpoint list, used when loading an archive.
func (m *CheckpointManager) replaceAll(checkpoints []*Checkpoint) {
	m.checkpoints = checkpoints
}

func (m *CheckpointManager) find(id string) *Checkpoint {
	for _, cp := range m.checkpoints {
		if cp.ID == id {
			return cp
		}
	}
	return nil
}
