package project

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// ProjectSession is the stateful persistence core: it tracks project
// identity and the dirty flag, owns the save/auto-save state machine, and
// owns the video-source reconnection state for reference archives.
//
// A session is constructed once per application lifetime and passed by
// reference to collaborators. Methods are safe for use from the autosave
// scheduler's timer goroutines.
type ProjectSession struct {
	codec  ArchiveCodec
	clock  Clock
	idgen  IDGenerator
	logger Logger

	mu          sync.Mutex
	name        string
	format      Format
	createdAt   time.Time
	settings    Settings
	frames      *FrameStore
	checkpoints *CheckpointManager

	dirty     bool
	status    AutoSaveStatus
	lastSaved time.Time
	target    WriteTarget
	saving    bool

	// mutationGen counts mutations; savedGen records the count snapshotted
	// by the save in flight. A save clears the dirty flag only when the two
	// still match at completion, so an edit that lands while the archive is
	// being written is not lost.
	mutationGen uint64
	savedGen    uint64

	embeddedVideo  []byte
	needsReconnect bool
	videoSource    *VideoSourceReference

	onDirty func()
}

// NewProjectSession creates an empty session for an untitled reference
// project with no write target.
func NewProjectSession(codec ArchiveCodec, clock Clock, idgen IDGenerator, logger Logger) *ProjectSession {
	s := &ProjectSession{
		codec:     codec,
		clock:     clock,
		idgen:     idgen,
		logger:    logger,
		name:      "Untitled",
		format:    FormatReference,
		createdAt: clock.Now(),
		status:    StatusNoHandle,
		frames:    NewFrameStore(),
	}
	s.checkpoints = NewCheckpointManager(s.frames, clock, idgen, logger, s.markDirtyLocked)
	return s
}

// SetDirtyObserver registers a callback invoked on every mutation that
// dirties the project. The autosave scheduler's Notify hangs off this.
func (s *ProjectSession) SetDirtyObserver(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onDirty = fn
}

// markDirtyLocked is the single mutation-notification point. The caller
// must hold s.mu.
func (s *ProjectSession) markDirtyLocked() {
	s.dirty = true
	s.mutationGen++
	if s.status == StatusSaved {
		s.status = StatusIdle
	}
	if s.onDirty != nil {
		s.onDirty()
	}
}

// MarkDirty records that project state changed outside the session's own
// mutating methods (e.g. a settings edit by a collaborator).
func (s *ProjectSession) MarkDirty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markDirtyLocked()
}

// Name returns the project display name.
func (s *ProjectSession) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// SetName renames the project and marks it dirty.
func (s *ProjectSession) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.name == name {
		return
	}
	s.name = name
	s.markDirtyLocked()
}

// Format returns the current archive format.
func (s *ProjectSession) Format() Format {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.format
}

// SetFormat switches between the reference and embedded archive variants.
// A format change marks the project dirty. Switching to the reference
// variant drops any embedded video bytes.
func (s *ProjectSession) SetFormat(f Format) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.format == f {
		return
	}
	s.format = f
	if f == FormatReference {
		s.embeddedVideo = nil
	}
	s.markDirtyLocked()
}

// AttachEmbeddedVideo supplies raw video bytes for the embedded format and
// marks the project dirty.
func (s *ProjectSession) AttachEmbeddedVideo(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.embeddedVideo = data
	s.markDirtyLocked()
}

// EmbeddedVideo returns the embedded video bytes, or nil for reference
// projects.
func (s *ProjectSession) EmbeddedVideo() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.embeddedVideo
}

// Status returns the autosave state machine position.
func (s *ProjectSession) Status() AutoSaveStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Dirty reports whether unsaved changes exist.
func (s *ProjectSession) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// LastSaved returns the time of the last confirmed successful save, zero
// if none.
func (s *ProjectSession) LastSaved() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSaved
}

// HasTarget reports whether a persistent write target is attached.
func (s *ProjectSession) HasTarget() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target != nil
}

// StatusText renders the user-facing autosave label.
func (s *ProjectSession) StatusText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StatusText(s.status, s.lastSaved, s.clock.Now())
}

// Frames returns the live frame store. Callers mutating it directly must
// report the change via MarkDirty.
func (s *ProjectSession) Frames() *FrameStore {
	return s.frames
}

// PutFrame records a frame's drawing state and thumbnail and marks dirty.
func (s *ProjectSession) PutFrame(index int, drawingState string, thumbnail []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames.Put(index, drawingState, thumbnail)
	s.markDirtyLocked()
}

// FrameAt returns the frame record at index, or nil if none exists.
func (s *ProjectSession) FrameAt(index int) *FrameRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames.Get(index)
}

// RemoveFrame deletes a frame record and marks dirty.
func (s *ProjectSession) RemoveFrame(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames.Remove(index)
	s.markDirtyLocked()
}

// ShiftFrames relabels frame records when frames are inserted or removed
// upstream of the drawing timeline, and marks dirty.
func (s *ProjectSession) ShiftFrames(fromIndex, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames.Shift(fromIndex, delta)
	s.markDirtyLocked()
}

// Checkpoints exposes checkpoint operations. The manager shares the
// session's dirty tracking.
func (s *ProjectSession) Checkpoints() *CheckpointManager {
	return s.checkpoints
}

// CreateCheckpoint snapshots the live frame set under the session lock.
func (s *ProjectSession) CreateCheckpoint(name string) *Checkpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkpoints.Create(name)
}

// RestoreCheckpoint replaces the live frame set from a checkpoint.
func (s *ProjectSession) RestoreCheckpoint(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkpoints.Restore(id)
}

// DeleteCheckpoints removes the listed checkpoints, skipping unknown ids.
func (s *ProjectSession) DeleteCheckpoints(ids []string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkpoints.DeleteMany(ids)
}

// ClearCheckpoints removes all checkpoints.
func (s *ProjectSession) ClearCheckpoints() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkpoints.Clear()
}

// Settings returns a copy of the project settings document.
func (s *ProjectSession) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// UpdateSettings replaces the settings document and marks dirty.
func (s *ProjectSession) UpdateSettings(settings Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	s.markDirtyLocked()
}

// SetCurrentFrame records the frame index the user is viewing.
func (s *ProjectSession) SetCurrentFrame(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings.CurrentFrameIndex == index {
		return
	}
	s.settings.CurrentFrameIndex = index
	s.markDirtyLocked()
}

// AcquireTarget asks the provider for a persistent write target. On grant
// the session adopts the target's name, moves to idle, and performs an
// immediate save. Returns false when the host declined; the session then
// stays in no-handle.
func (s *ProjectSession) AcquireTarget(ctx context.Context, provider TargetProvider) (bool, error) {
	s.mu.Lock()
	suggested := SafeFileName(s.name) + s.format.Extension()
	s.mu.Unlock()

	target, err := provider.RequestTarget(ctx, suggested)
	if err != nil {
		return false, fmt.Errorf("requesting write target: %w", err)
	}
	if target == nil {
		return false, nil
	}

	s.mu.Lock()
	s.target = target
	s.status = StatusIdle
	name := strings.TrimSuffix(target.Name(), s.format.Extension())
	if name != "" {
		s.name = name
	}
	s.mu.Unlock()

	s.logger.Info("write target acquired", "target", target.Name())
	return true, s.Save(ctx)
}

// DetachTarget drops the write target and regresses to no-handle. Used
// when starting a fresh project.
func (s *ProjectSession) DetachTarget() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.target = nil
	s.status = StatusNoHandle
}

// Save serializes the project and writes it to the attached target. Save
// is idempotent given identical inputs. A save already in flight makes
// this call a no-op: attempts are skipped, not queued.
func (s *ProjectSession) Save(ctx context.Context) error {
	s.mu.Lock()
	if s.target == nil {
		s.mu.Unlock()
		return fmt.Errorf("no write target attached")
	}
	s.mu.Unlock()

	doc, target, ok := s.beginSave()
	if !ok {
		return nil
	}

	blob, err := s.codec.Serialize(ctx, doc)
	if err != nil {
		s.endSave(false, false)
		return fmt.Errorf("serializing project: %w", err)
	}

	if err := target.WriteAll(ctx, blob); err != nil {
		lost := errors.Is(err, ErrWriteTargetLost)
		s.endSave(false, lost)
		if lost {
			s.logger.Warn("write target lost, autosave disabled until a new target is chosen", "target", target.Name())
		}
		return fmt.Errorf("writing archive: %w", err)
	}

	s.endSave(true, false)
	s.logger.Info("project saved", "target", target.Name(), "bytes", len(blob))
	return nil
}

// AutoSave is the scheduler entry point: it saves only when the project is
// dirty and a target exists, and silently skips when a save is in flight.
func (s *ProjectSession) AutoSave(ctx context.Context) {
	s.mu.Lock()
	skip := !s.dirty || s.target == nil || s.saving
	s.mu.Unlock()
	if skip {
		return
	}
	if err := s.Save(ctx); err != nil {
		s.logger.Error("autosave failed", "error", err)
	}
}

// Export serializes the project once and writes it to w: the one-shot
// download fallback for hosts without persistent write capability. The
// session stays in no-handle so autosave never engages, but the dirty flag
// clears on success.
func (s *ProjectSession) Export(ctx context.Context, w io.Writer) error {
	doc, _, ok := s.beginSave()
	if !ok {
		return fmt.Errorf("save already in flight")
	}

	blob, err := s.codec.Serialize(ctx, doc)
	if err != nil {
		s.endSave(false, false)
		return fmt.Errorf("serializing project: %w", err)
	}

	if _, err := w.Write(blob); err != nil {
		s.endSave(false, false)
		return fmt.Errorf("writing export: %w", err)
	}

	s.mu.Lock()
	s.saving = false
	if s.mutationGen == s.savedGen {
		s.dirty = false
	}
	s.lastSaved = s.clock.Now()
	s.status = StatusNoHandle
	s.mu.Unlock()
	return nil
}

// beginSave snapshots the document under the in-flight guard. The bool is
// false when another save is already running.
func (s *ProjectSession) beginSave() (*ArchiveDocument, WriteTarget, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saving {
		return nil, nil, false
	}
	s.saving = true
	s.savedGen = s.mutationGen
	s.status = StatusSaving

	settings := s.settings
	settings.Video.VideoSource = s.videoSource

	doc := &ArchiveDocument{
		Manifest: Manifest{
			FormatVersion: FormatVersion,
			AppID:         AppID,
			CreatedAt:     s.createdAt,
			ModifiedAt:    s.clock.Now(),
			DisplayName:   s.name,
		},
		Settings:    settings,
		Frames:      s.frames.CloneAll(),
		Checkpoints: s.checkpoints.List(),
	}
	if s.format == FormatEmbedded {
		doc.EmbeddedVideo = s.embeddedVideo
	}
	return doc, s.target, true
}

// endSave applies the save outcome to the state machine. targetLost clears
// the target and regresses to no-handle so a stale target is never retried.
// A mutation that arrived after beginSave's snapshot keeps the session
// dirty so the next autosave attempt picks it up.
func (s *ProjectSession) endSave(success, targetLost bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.saving = false
	switch {
	case success:
		s.lastSaved = s.clock.Now()
		if s.mutationGen == s.savedGen {
			s.dirty = false
			s.status = StatusSaved
		} else {
			s.status = StatusIdle
		}
	case targetLost:
		s.target = nil
		s.status = StatusNoHandle
	default:
		s.status = StatusError
	}
}

// Load replaces the session's frame set, settings, and checkpoint list
// wholesale from an archive blob. On failure the prior session state is
// left untouched. Reference archives with a video source enter the
// reconnect-pending sub-state with a placeholder working area synthesized
// from the saved dimensions.
func (s *ProjectSession) Load(ctx context.Context, data []byte) error {
	doc, err := s.codec.Deserialize(ctx, data)
	if err != nil {
		return fmt.Errorf("loading project: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.name = doc.Manifest.DisplayName
	s.createdAt = doc.Manifest.CreatedAt
	s.settings = doc.Settings
	s.frames.ReplaceAll(doc.Frames)
	s.checkpoints.replaceAll(doc.Checkpoints)
	s.dirty = false
	s.embeddedVideo = doc.EmbeddedVideo
	s.videoSource = doc.Settings.Video.VideoSource

	if len(doc.EmbeddedVideo) > 0 {
		s.format = FormatEmbedded
		s.needsReconnect = false
	} else {
		s.format = FormatReference
		switch {
		case doc.Settings.Video.IsEmpty:
			s.needsReconnect = false
		case s.videoSource != nil:
			s.needsReconnect = true
		default:
			// Legacy archives claim a video without recording its source.
			// Fabricate a placeholder reference so reconnection is still
			// offered; validation against it is best-effort.
			s.videoSource = &VideoSourceReference{Filename: "unknown"}
			s.needsReconnect = true
		}
		if s.needsReconnect {
			s.synthesizePlaceholderLocked()
		}
	}

	// The loaded state has not been written to the target yet, so a held
	// target lands on idle rather than saved.
	if s.target != nil {
		s.status = StatusIdle
	} else {
		s.status = StatusNoHandle
	}

	s.logger.Info("project loaded",
		"name", s.name,
		"frames", s.frames.Len(),
		"checkpoints", s.checkpoints.Count(),
		"reconnect", s.needsReconnect,
	)
	return nil
}

// synthesizePlaceholderLocked fills in working-area dimensions so drawings
// stay viewable while no video is attached.
func (s *ProjectSession) synthesizePlaceholderLocked() {
	v := &s.settings.Video
	if v.Width <= 0 {
		v.Width = DefaultCanvasWidth
	}
	if v.Height <= 0 {
		v.Height = DefaultCanvasHeight
	}
	if v.FrameCount <= 0 {
		v.FrameCount = DefaultFrameCount
	}
	if v.FPS <= 0 {
		v.FPS = DefaultFPS
	}
}

// NeedsVideoReconnect reports whether the session is blocked in the
// reconnect-pending sub-state.
func (s *ProjectSession) NeedsVideoReconnect() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.needsReconnect
}

// FullyLoaded reports whether the session is ready for editing: loaded and
// not awaiting video reconnection.
func (s *ProjectSession) FullyLoaded() bool {
	return !s.NeedsVideoReconnect()
}

// VideoSource returns the stored reference used for reconnect validation,
// or nil.
func (s *ProjectSession) VideoSource() *VideoSourceReference {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.videoSource
}

// ValidateCandidate compares a candidate video file against the stored
// reference. The result never aborts anything by itself; it gates the
// caller's decision to reconnect silently or ask the user.
func (s *ProjectSession) ValidateCandidate(candidate CandidateVideo) (ValidationResult, error) {
	s.mu.Lock()
	ref := s.videoSource
	s.mu.Unlock()

	if ref == nil {
		return ValidationResult{}, fmt.Errorf("project has no video source reference")
	}
	return ValidateVideoSource(candidate, *ref), nil
}

// AttachVideoSource accepts a candidate as the project's video source,
// leaving reconnect-pending and updating the stored reference for future
// saves.
func (s *ProjectSession) AttachVideoSource(candidate CandidateVideo) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.videoSource = &VideoSourceReference{
		Filename:           candidate.Filename,
		FileSizeBytes:      candidate.FileSizeBytes,
		DurationSeconds:    candidate.DurationSeconds,
		ExpectedFrameCount: s.settings.Video.FrameCount,
		ProjectFPS:         s.settings.Video.FPS,
	}
	s.needsReconnect = false
	s.markDirtyLocked()
	s.logger.Info("video source reconnected", "filename", candidate.Filename)
}

// ProceedWithoutVideo leaves reconnect-pending at the user's request; the
// placeholder working area remains in effect.
func (s *ProjectSession) ProceedWithoutVideo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.needsReconnect = false
}

// Reset returns the session to a pristine untitled state with no target,
// no checkpoints, and no reconnect state.
func (s *ProjectSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.name = "Untitled"
	s.format = FormatReference
	s.createdAt = s.clock.Now()
	s.settings = Settings{}
	s.frames.Clear()
	s.checkpoints.replaceAll(nil)
	s.dirty = false
	s.status = StatusNoHandle
	s.lastSaved = time.Time{}
	s.target = nil
	s.embeddedVideo = nil
	s.needsReconnect = false
	s.videoSource = nil
}
