package project_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"frameforge/internal/project"
	"frameforge/internal/target"
	"frameforge/internal/testutil"
)

// stubCodec produces a fixed blob on serialize and replays a canned document
// on deserialize, so session tests never touch the real archive layer.
type stubCodec struct {
	doc        *project.ArchiveDocument
	serialized []*project.ArchiveDocument
	failWith   error
}

func (c *stubCodec) Serialize(_ context.Context, doc *project.ArchiveDocument) ([]byte, error) {
	if c.failWith != nil {
		return nil, c.failWith
	}
	c.serialized = append(c.serialized, doc)
	return []byte("archive-blob"), nil
}

func (c *stubCodec) Deserialize(_ context.Context, _ []byte) (*project.ArchiveDocument, error) {
	if c.failWith != nil {
		return nil, c.failWith
	}
	return c.doc, nil
}

func newTestSession(t *testing.T) (*project.ProjectSession, *stubCodec) {
	t.Helper()
	codec := &stubCodec{}
	s := project.NewProjectSession(codec, testutil.FixedClock(), testutil.NewStubIDGenerator(), project.NewNopLogger())
	return s, codec
}

func TestProjectSession_New(t *testing.T) {
	s, _ := newTestSession(t)

	if s.Status() != project.StatusNoHandle {
		t.Errorf("Status() = %q, want %q", s.Status(), project.StatusNoHandle)
	}
	if s.Name() != "Untitled" {
		t.Errorf("Name() = %q, want %q", s.Name(), "Untitled")
	}
	if s.Format() != project.FormatReference {
		t.Errorf("Format() = %q, want %q", s.Format(), project.FormatReference)
	}
	if s.Dirty() {
		t.Error("Dirty() = true, want false")
	}
}

func TestProjectSession_DirtyTracking(t *testing.T) {
	t.Run("frame edits mark dirty", func(t *testing.T) {
		s, _ := newTestSession(t)
		s.PutFrame(0, "state", nil)
		if !s.Dirty() {
			t.Error("Dirty() = false after PutFrame, want true")
		}
	})

	t.Run("rename marks dirty, same name does not", func(t *testing.T) {
		s, _ := newTestSession(t)
		s.SetName("Untitled")
		if s.Dirty() {
			t.Error("Dirty() = true after no-op rename, want false")
		}
		s.SetName("Walk Cycle")
		if !s.Dirty() {
			t.Error("Dirty() = false after rename, want true")
		}
	})

	t.Run("dirty observer fires on every mutation", func(t *testing.T) {
		s, _ := newTestSession(t)
		fired := 0
		s.SetDirtyObserver(func() { fired++ })

		s.PutFrame(0, "a", nil)
		s.RemoveFrame(0)
		s.SetCurrentFrame(5)

		if fired != 3 {
			t.Errorf("observer fired %d times, want 3", fired)
		}
	})

	t.Run("mutation regresses saved to idle", func(t *testing.T) {
		s, _ := newTestSession(t)
		provider := target.NewMemoryProvider()

		if _, err := s.AcquireTarget(context.Background(), provider); err != nil {
			t.Fatalf("AcquireTarget() error = %v", err)
		}
		if s.Status() != project.StatusSaved {
			t.Fatalf("Status() = %q, want %q", s.Status(), project.StatusSaved)
		}

		s.PutFrame(0, "a", nil)
		if s.Status() != project.StatusIdle {
			t.Errorf("Status() = %q after mutation, want %q", s.Status(), project.StatusIdle)
		}
	})
}

func TestProjectSession_SetFormat(t *testing.T) {
	s, _ := newTestSession(t)
	s.SetFormat(project.FormatEmbedded)
	s.AttachEmbeddedVideo([]byte("mp4-bytes"))

	s.SetFormat(project.FormatReference)

	if s.EmbeddedVideo() != nil {
		t.Error("EmbeddedVideo() != nil after switching to reference format")
	}
	if !s.Dirty() {
		t.Error("Dirty() = false after format change, want true")
	}
}

func TestProjectSession_AcquireTarget(t *testing.T) {
	t.Run("grant saves immediately and adopts the target name", func(t *testing.T) {
		s, codec := newTestSession(t)
		s.SetName("Walk Cycle")
		provider := target.NewMemoryProvider()

		acquired, err := s.AcquireTarget(context.Background(), provider)
		if err != nil {
			t.Fatalf("AcquireTarget() error = %v", err)
		}
		if !acquired {
			t.Fatal("AcquireTarget() = false, want true")
		}

		tgt := provider.Target("Walk_Cycle.lucas")
		if tgt == nil {
			t.Fatal("provider has no target named Walk_Cycle.lucas")
		}
		if tgt.Writes() != 1 {
			t.Errorf("target writes = %d, want 1", tgt.Writes())
		}
		if s.Name() != "Walk_Cycle" {
			t.Errorf("Name() = %q, want %q", s.Name(), "Walk_Cycle")
		}
		if s.Status() != project.StatusSaved {
			t.Errorf("Status() = %q, want %q", s.Status(), project.StatusSaved)
		}
		if len(codec.serialized) != 1 {
			t.Errorf("serialized %d documents, want 1", len(codec.serialized))
		}
	})

	t.Run("declined grant stays in no-handle", func(t *testing.T) {
		s, _ := newTestSession(t)
		provider := target.NewMemoryProvider()
		provider.Decline(true)

		acquired, err := s.AcquireTarget(context.Background(), provider)
		if err != nil {
			t.Fatalf("AcquireTarget() error = %v", err)
		}
		if acquired {
			t.Error("AcquireTarget() = true, want false")
		}
		if s.Status() != project.StatusNoHandle {
			t.Errorf("Status() = %q, want %q", s.Status(), project.StatusNoHandle)
		}
	})
}

func TestProjectSession_Save(t *testing.T) {
	t.Run("without a target fails without entering the state machine", func(t *testing.T) {
		s, _ := newTestSession(t)
		if err := s.Save(context.Background()); err == nil {
			t.Fatal("Save() error = nil, want error")
		}
		if s.Status() != project.StatusNoHandle {
			t.Errorf("Status() = %q, want %q", s.Status(), project.StatusNoHandle)
		}
	})

	t.Run("success clears dirty and records last saved", func(t *testing.T) {
		s, _ := newTestSession(t)
		provider := target.NewMemoryProvider()
		s.AcquireTarget(context.Background(), provider)

		s.PutFrame(0, "a", nil)
		if err := s.Save(context.Background()); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		if s.Dirty() {
			t.Error("Dirty() = true after save, want false")
		}
		if s.LastSaved().IsZero() {
			t.Error("LastSaved() is zero after save")
		}
	})

	t.Run("transient write failure moves to error and keeps the target", func(t *testing.T) {
		s, _ := newTestSession(t)
		provider := target.NewMemoryProvider()
		s.AcquireTarget(context.Background(), provider)
		provider.Target("Untitled.lucas").Fail(true)

		if err := s.Save(context.Background()); err == nil {
			t.Fatal("Save() error = nil, want error")
		}
		if s.Status() != project.StatusError {
			t.Errorf("Status() = %q, want %q", s.Status(), project.StatusError)
		}
		if !s.HasTarget() {
			t.Error("HasTarget() = false after transient failure, want true")
		}

		// Recovery: the next save succeeds.
		provider.Target("Untitled.lucas").Fail(false)
		if err := s.Save(context.Background()); err != nil {
			t.Fatalf("Save() after recovery error = %v", err)
		}
		if s.Status() != project.StatusSaved {
			t.Errorf("Status() = %q, want %q", s.Status(), project.StatusSaved)
		}
	})

	t.Run("target loss drops the target and regresses to no-handle", func(t *testing.T) {
		s, _ := newTestSession(t)
		provider := target.NewMemoryProvider()
		s.AcquireTarget(context.Background(), provider)
		provider.Target("Untitled.lucas").Revoke()

		err := s.Save(context.Background())
		if err == nil {
			t.Fatal("Save() error = nil, want error")
		}
		if !errors.Is(err, project.ErrWriteTargetLost) {
			t.Errorf("Save() error = %v, want ErrWriteTargetLost", err)
		}
		if s.HasTarget() {
			t.Error("HasTarget() = true after target loss, want false")
		}
		if s.Status() != project.StatusNoHandle {
			t.Errorf("Status() = %q, want %q", s.Status(), project.StatusNoHandle)
		}
	})

	t.Run("serialize failure moves to error", func(t *testing.T) {
		s, codec := newTestSession(t)
		provider := target.NewMemoryProvider()
		s.AcquireTarget(context.Background(), provider)

		codec.failWith = fmt.Errorf("boom")
		if err := s.Save(context.Background()); err == nil {
			t.Fatal("Save() error = nil, want error")
		}
		if s.Status() != project.StatusError {
			t.Errorf("Status() = %q, want %q", s.Status(), project.StatusError)
		}
	})
}

// editDuringSaveCodec mutates the session from inside Serialize, modelling
// a drawing edit that lands while the archive bytes are being produced.
type editDuringSaveCodec struct {
	stubCodec
	onSerialize func()
}

func (c *editDuringSaveCodec) Serialize(ctx context.Context, doc *project.ArchiveDocument) ([]byte, error) {
	if c.onSerialize != nil {
		fn := c.onSerialize
		c.onSerialize = nil
		fn()
	}
	return c.stubCodec.Serialize(ctx, doc)
}

func TestProjectSession_SaveKeepsLateEditDirty(t *testing.T) {
	codec := &editDuringSaveCodec{}
	s := project.NewProjectSession(codec, testutil.FixedClock(), testutil.NewStubIDGenerator(), project.NewNopLogger())
	provider := target.NewMemoryProvider()
	if _, err := s.AcquireTarget(context.Background(), provider); err != nil {
		t.Fatalf("AcquireTarget() error = %v", err)
	}

	s.MarkDirty()
	codec.onSerialize = func() { s.PutFrame(7, "late", nil) }
	if err := s.Save(context.Background()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if !s.Dirty() {
		t.Error("Dirty() = false after an edit landed mid-save, want true")
	}
	if s.Status() != project.StatusIdle {
		t.Errorf("Status() = %q, want %q", s.Status(), project.StatusIdle)
	}

	// The next autosave writes the late edit and settles the session.
	s.AutoSave(context.Background())
	if s.Dirty() {
		t.Error("Dirty() = true after the follow-up save, want false")
	}
	if s.Status() != project.StatusSaved {
		t.Errorf("Status() = %q, want %q", s.Status(), project.StatusSaved)
	}
	last := codec.serialized[len(codec.serialized)-1]
	if last.Frames[7] == nil || last.Frames[7].DrawingState != "late" {
		t.Errorf("follow-up document Frames[7] = %+v, want the late edit", last.Frames[7])
	}
}

func TestProjectSession_SaveSnapshot(t *testing.T) {
	t.Run("document reflects state at save time", func(t *testing.T) {
		s, codec := newTestSession(t)
		s.SetName("Snap")
		s.PutFrame(1, "one", nil)
		s.CreateCheckpoint("cp")
		provider := target.NewMemoryProvider()

		if _, err := s.AcquireTarget(context.Background(), provider); err != nil {
			t.Fatalf("AcquireTarget() error = %v", err)
		}

		doc := codec.serialized[0]
		if doc.Manifest.DisplayName != "Snap" {
			t.Errorf("DisplayName = %q, want %q", doc.Manifest.DisplayName, "Snap")
		}
		if doc.Manifest.AppID != project.AppID {
			t.Errorf("AppID = %q, want %q", doc.Manifest.AppID, project.AppID)
		}
		if doc.Manifest.FormatVersion != project.FormatVersion {
			t.Errorf("FormatVersion = %q, want %q", doc.Manifest.FormatVersion, project.FormatVersion)
		}
		if len(doc.Frames) != 1 {
			t.Errorf("len(Frames) = %d, want 1", len(doc.Frames))
		}
		if len(doc.Checkpoints) != 1 {
			t.Errorf("len(Checkpoints) = %d, want 1", len(doc.Checkpoints))
		}

		// The snapshot is isolated: later edits do not leak into it.
		s.PutFrame(1, "mutated", nil)
		if got := doc.Frames[1].DrawingState; got != "one" {
			t.Errorf("snapshot DrawingState = %q after live edit, want %q", got, "one")
		}
	})

	t.Run("embedded video only ships in the embedded format", func(t *testing.T) {
		s, codec := newTestSession(t)
		s.AttachEmbeddedVideo([]byte("mp4"))
		provider := target.NewMemoryProvider()

		s.AcquireTarget(context.Background(), provider)
		if len(codec.serialized[0].EmbeddedVideo) != 0 {
			t.Error("reference document carries embedded video")
		}

		s.SetFormat(project.FormatEmbedded)
		s.AttachEmbeddedVideo([]byte("mp4"))
		if err := s.Save(context.Background()); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if string(codec.serialized[len(codec.serialized)-1].EmbeddedVideo) != "mp4" {
			t.Error("embedded document is missing video bytes")
		}
	})
}

func TestProjectSession_AutoSave(t *testing.T) {
	t.Run("skips when clean", func(t *testing.T) {
		s, codec := newTestSession(t)
		provider := target.NewMemoryProvider()
		s.AcquireTarget(context.Background(), provider)
		before := len(codec.serialized)

		s.AutoSave(context.Background())

		if len(codec.serialized) != before {
			t.Errorf("serialized %d documents, want %d", len(codec.serialized), before)
		}
	})

	t.Run("skips without a target", func(t *testing.T) {
		s, codec := newTestSession(t)
		s.PutFrame(0, "a", nil)

		s.AutoSave(context.Background())

		if len(codec.serialized) != 0 {
			t.Errorf("serialized %d documents, want 0", len(codec.serialized))
		}
		if s.Status() != project.StatusNoHandle {
			t.Errorf("Status() = %q, want %q", s.Status(), project.StatusNoHandle)
		}
	})

	t.Run("saves when dirty with a target", func(t *testing.T) {
		s, _ := newTestSession(t)
		provider := target.NewMemoryProvider()
		s.AcquireTarget(context.Background(), provider)
		s.PutFrame(0, "a", nil)

		s.AutoSave(context.Background())

		if s.Dirty() {
			t.Error("Dirty() = true after autosave, want false")
		}
		if got := provider.Target("Untitled.lucas").Writes(); got != 2 {
			t.Errorf("target writes = %d, want 2", got)
		}
	})
}

func TestProjectSession_Export(t *testing.T) {
	s, _ := newTestSession(t)
	s.PutFrame(0, "a", nil)

	var buf writerBuffer
	if err := s.Export(context.Background(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	if string(buf.data) != "archive-blob" {
		t.Errorf("exported bytes = %q, want %q", buf.data, "archive-blob")
	}
	if s.Dirty() {
		t.Error("Dirty() = true after export, want false")
	}
	if s.Status() != project.StatusNoHandle {
		t.Errorf("Status() = %q, want %q", s.Status(), project.StatusNoHandle)
	}
}

type writerBuffer struct{ data []byte }

func (w *writerBuffer) Write(p []byte) (int, error) {
	w.data = append(w.data, p...)
	return len(p), nil
}

func TestProjectSession_Load(t *testing.T) {
	baseDoc := func() *project.ArchiveDocument {
		return &project.ArchiveDocument{
			Manifest: project.Manifest{
				FormatVersion: project.FormatVersion,
				AppID:         project.AppID,
				CreatedAt:     time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
				ModifiedAt:    time.Date(2023, 6, 2, 0, 0, 0, 0, time.UTC),
				DisplayName:   "Loaded",
			},
			Settings: project.Settings{
				Video: project.VideoSettings{FPS: 24, FrameCount: 240, Width: 1920, Height: 1080},
			},
			Frames: project.FrameSet{
				0: {FrameIndex: 0, DrawingState: "zero"},
			},
		}
	}

	t.Run("replaces session state wholesale", func(t *testing.T) {
		s, codec := newTestSession(t)
		s.PutFrame(9, "stale", nil)
		s.CreateCheckpoint("stale")

		doc := baseDoc()
		doc.Settings.Video.IsEmpty = true
		codec.doc = doc

		if err := s.Load(context.Background(), []byte("blob")); err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if s.Name() != "Loaded" {
			t.Errorf("Name() = %q, want %q", s.Name(), "Loaded")
		}
		if s.FrameAt(9) != nil {
			t.Error("stale frame survived Load")
		}
		if s.FrameAt(0) == nil {
			t.Error("loaded frame missing")
		}
		if s.Checkpoints().Count() != 0 {
			t.Errorf("checkpoint count = %d, want 0", s.Checkpoints().Count())
		}
		if s.Dirty() {
			t.Error("Dirty() = true after load, want false")
		}
		if s.NeedsVideoReconnect() {
			t.Error("NeedsVideoReconnect() = true for empty project, want false")
		}
	})

	t.Run("with a held target lands on idle, not saved", func(t *testing.T) {
		s, codec := newTestSession(t)
		provider := target.NewMemoryProvider()
		if _, err := s.AcquireTarget(context.Background(), provider); err != nil {
			t.Fatalf("AcquireTarget() error = %v", err)
		}

		doc := baseDoc()
		doc.Settings.Video.IsEmpty = true
		codec.doc = doc
		if err := s.Load(context.Background(), []byte("blob")); err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		// The loaded state has never been written to the target.
		if s.Status() != project.StatusIdle {
			t.Errorf("Status() = %q, want %q", s.Status(), project.StatusIdle)
		}
	})

	t.Run("deserialize failure leaves prior state untouched", func(t *testing.T) {
		s, codec := newTestSession(t)
		s.SetName("Keep Me")
		s.PutFrame(3, "keep", nil)
		codec.failWith = fmt.Errorf("not a zip")

		if err := s.Load(context.Background(), []byte("garbage")); err == nil {
			t.Fatal("Load() error = nil, want error")
		}
		if s.Name() != "Keep Me" {
			t.Errorf("Name() = %q, want %q", s.Name(), "Keep Me")
		}
		if s.FrameAt(3) == nil {
			t.Error("prior frame lost after failed load")
		}
	})

	t.Run("embedded video loads ready for editing", func(t *testing.T) {
		s, codec := newTestSession(t)
		doc := baseDoc()
		doc.EmbeddedVideo = []byte("mp4")
		codec.doc = doc

		if err := s.Load(context.Background(), []byte("blob")); err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if s.Format() != project.FormatEmbedded {
			t.Errorf("Format() = %q, want %q", s.Format(), project.FormatEmbedded)
		}
		if s.NeedsVideoReconnect() {
			t.Error("NeedsVideoReconnect() = true, want false")
		}
		if !s.FullyLoaded() {
			t.Error("FullyLoaded() = false, want true")
		}
	})

	t.Run("reference with video source enters reconnect-pending", func(t *testing.T) {
		s, codec := newTestSession(t)
		doc := baseDoc()
		doc.Settings.Video.VideoSource = &project.VideoSourceReference{
			Filename:        "clip.mp4",
			DurationSeconds: 10,
		}
		codec.doc = doc

		if err := s.Load(context.Background(), []byte("blob")); err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if !s.NeedsVideoReconnect() {
			t.Error("NeedsVideoReconnect() = false, want true")
		}
		if s.FullyLoaded() {
			t.Error("FullyLoaded() = true, want false")
		}
	})

	t.Run("legacy archive without source gets a placeholder reference", func(t *testing.T) {
		s, codec := newTestSession(t)
		doc := baseDoc()
		// Not empty, no embedded video, no video source recorded.
		codec.doc = doc

		if err := s.Load(context.Background(), []byte("blob")); err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if !s.NeedsVideoReconnect() {
			t.Error("NeedsVideoReconnect() = false, want true")
		}
		src := s.VideoSource()
		if src == nil || src.Filename != "unknown" {
			t.Errorf("VideoSource() = %+v, want placeholder with filename unknown", src)
		}
	})

	t.Run("placeholder working area fills missing dimensions", func(t *testing.T) {
		s, codec := newTestSession(t)
		doc := baseDoc()
		doc.Settings.Video = project.VideoSettings{
			VideoSource: &project.VideoSourceReference{Filename: "clip.mp4"},
		}
		codec.doc = doc

		if err := s.Load(context.Background(), []byte("blob")); err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		v := s.Settings().Video
		if v.Width != project.DefaultCanvasWidth || v.Height != project.DefaultCanvasHeight {
			t.Errorf("canvas = %dx%d, want %dx%d", v.Width, v.Height, project.DefaultCanvasWidth, project.DefaultCanvasHeight)
		}
		if v.FrameCount != project.DefaultFrameCount {
			t.Errorf("FrameCount = %d, want %d", v.FrameCount, project.DefaultFrameCount)
		}
		if v.FPS != project.DefaultFPS {
			t.Errorf("FPS = %v, want %v", v.FPS, project.DefaultFPS)
		}
	})

	t.Run("saved dimensions survive the placeholder pass", func(t *testing.T) {
		s, codec := newTestSession(t)
		doc := baseDoc()
		doc.Settings.Video.VideoSource = &project.VideoSourceReference{Filename: "clip.mp4"}
		codec.doc = doc

		if err := s.Load(context.Background(), []byte("blob")); err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		v := s.Settings().Video
		if v.Width != 1920 || v.Height != 1080 {
			t.Errorf("canvas = %dx%d, want 1920x1080", v.Width, v.Height)
		}
	})
}

func TestProjectSession_VideoReconnect(t *testing.T) {
	loadPending := func(t *testing.T) (*project.ProjectSession, *stubCodec) {
		t.Helper()
		s, codec := newTestSession(t)
		codec.doc = &project.ArchiveDocument{
			Manifest: project.Manifest{DisplayName: "P"},
			Settings: project.Settings{
				Video: project.VideoSettings{
					FPS:        24,
					FrameCount: 240,
					Width:      640,
					Height:     480,
					VideoSource: &project.VideoSourceReference{
						Filename:           "clip.mp4",
						FileSizeBytes:      100,
						DurationSeconds:    10,
						ExpectedFrameCount: 240,
						ProjectFPS:         24,
					},
				},
			},
		}
		if err := s.Load(context.Background(), []byte("blob")); err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		return s, codec
	}

	t.Run("ValidateCandidate without a reference fails", func(t *testing.T) {
		s, _ := newTestSession(t)
		if _, err := s.ValidateCandidate(project.CandidateVideo{}); err == nil {
			t.Error("ValidateCandidate() error = nil, want error")
		}
	})

	t.Run("exact candidate validates cleanly", func(t *testing.T) {
		s, _ := loadPending(t)
		result, err := s.ValidateCandidate(project.CandidateVideo{
			Filename:        "clip.mp4",
			FileSizeBytes:   100,
			DurationSeconds: 10,
		})
		if err != nil {
			t.Fatalf("ValidateCandidate() error = %v", err)
		}
		if !result.IsExactMatch {
			t.Errorf("IsExactMatch = false, want true (diffs: %v)", result.Differences)
		}
	})

	t.Run("AttachVideoSource clears reconnect and updates the reference", func(t *testing.T) {
		s, _ := loadPending(t)
		s.AttachVideoSource(project.CandidateVideo{
			Filename:        "renamed.mp4",
			FileSizeBytes:   200,
			DurationSeconds: 10,
		})

		if s.NeedsVideoReconnect() {
			t.Error("NeedsVideoReconnect() = true after attach, want false")
		}
		src := s.VideoSource()
		if src.Filename != "renamed.mp4" {
			t.Errorf("Filename = %q, want %q", src.Filename, "renamed.mp4")
		}
		if src.ExpectedFrameCount != 240 || src.ProjectFPS != 24 {
			t.Errorf("reference = %+v, want frame count and fps carried from settings", src)
		}
		if !s.Dirty() {
			t.Error("Dirty() = false after attach, want true")
		}
	})

	t.Run("ProceedWithoutVideo leaves reconnect without touching the reference", func(t *testing.T) {
		s, _ := loadPending(t)
		s.ProceedWithoutVideo()

		if s.NeedsVideoReconnect() {
			t.Error("NeedsVideoReconnect() = true, want false")
		}
		if s.VideoSource() == nil {
			t.Error("VideoSource() = nil, want retained reference")
		}
	})
}

func TestProjectSession_Reset(t *testing.T) {
	s, _ := newTestSession(t)
	provider := target.NewMemoryProvider()
	s.SetName("Old")
	s.PutFrame(0, "a", nil)
	s.CreateCheckpoint("cp")
	s.AcquireTarget(context.Background(), provider)

	s.Reset()

	if s.Name() != "Untitled" {
		t.Errorf("Name() = %q, want %q", s.Name(), "Untitled")
	}
	if s.Frames().Len() != 0 {
		t.Errorf("frame count = %d, want 0", s.Frames().Len())
	}
	if s.Checkpoints().Count() != 0 {
		t.Errorf("checkpoint count = %d, want 0", s.Checkpoints().Count())
	}
	if s.HasTarget() {
		t.Error("HasTarget() = true after reset, want false")
	}
	if s.Status() != project.StatusNoHandle {
		t.Errorf("Status() = %q, want %q", s.Status(), project.StatusNoHandle)
	}
	if s.Dirty() {
		t.Error("Dirty() = true after reset, want false")
	}
}
