package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"frameforge/internal/archive"
	"frameforge/internal/catalog"
	"frameforge/internal/config"
	"frameforge/internal/project"
	"frameforge/internal/target"
)

// App is the application layer between the CLI and the project session.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw archive paths, and manages the catalog lifecycle on Close.
type App struct {
	cfg       *config.Config
	catalog   *catalog.Catalog
	provider  project.TargetProvider
	codec     *archive.Codec
	session   *project.ProjectSession
	scheduler *project.AutoSaveScheduler
	op        *ProjectOperation
	logFile   *os.File
}

// NewApp creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "SaveProject",
// "ConvertProject"). The caller must call Close when done.
func NewApp(ctx context.Context, cfg *config.Config, operation string) (*App, error) {
	opID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	plog := &slogAdapter{l: logger}

	cat, err := catalog.NewCatalogFromConfig(cfg.Catalog)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating catalog: %w", err)
	}

	codec, err := archive.NewCodec(plog)
	if err != nil {
		cat.Close()
		logFile.Close()
		return nil, fmt.Errorf("creating archive codec: %w", err)
	}

	provider, err := target.NewProviderFromConfig(ctx, cfg.Target)
	if err != nil {
		cat.Close()
		logFile.Close()
		return nil, fmt.Errorf("creating target provider: %w", err)
	}

	session := project.NewProjectSession(codec, project.RealClock{}, project.UUIDGenerator{}, plog)

	mode := project.SaveMode(cfg.AutoSave.Mode)
	if mode == "" {
		mode = project.SaveModeInterval
	}
	interval := project.DefaultSaveInterval
	if cfg.AutoSave.IntervalSeconds > 0 {
		interval = time.Duration(cfg.AutoSave.IntervalSeconds) * time.Second
	}
	debounce := project.DefaultSaveDebounce
	if cfg.AutoSave.DebounceMillis > 0 {
		debounce = time.Duration(cfg.AutoSave.DebounceMillis) * time.Millisecond
	}
	scheduler := project.NewAutoSaveScheduler(mode, interval, debounce, session, plog)
	session.SetDirtyObserver(func() { scheduler.Notify(context.Background()) })

	return &App{
		cfg:       cfg,
		catalog:   cat,
		provider:  provider,
		codec:     codec,
		session:   session,
		scheduler: scheduler,
		op:        NewProjectOperation(operation, ""),
		logFile:   logFile,
	}, nil
}

// Session exposes the project session for fine-grained edits
// (frames, checkpoints, settings).
func (a *App) Session() *project.ProjectSession {
	return a.session
}

// persistOperation saves the project operation to the catalog, giving it an
// auto-increment ID. This should only be called for archive-mutating commands.
func (a *App) persistOperation() error {
	if a.op.Persisted() {
		return nil // already persisted
	}
	id, err := a.catalog.CreateOperation(a.op.Operation, a.op.ArchivePath, time.Now())
	if err != nil {
		return fmt.Errorf("persisting project operation: %w", err)
	}
	a.op.ID = id
	return nil
}

// FailOperation marks the journaled operation as failed. Close records the
// final status.
func (a *App) FailOperation() {
	a.op.Status = "error"
}

// OpenProject reads an archive file from disk, loads it into the session,
// and records it in the recent projects list.
func (a *App) OpenProject(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading archive: %w", err)
	}

	if err := a.session.Load(ctx, data); err != nil {
		return fmt.Errorf("loading archive: %w", err)
	}
	a.op.ArchivePath = path

	if err := a.catalog.TouchRecentProject(path, a.session.Name(), string(a.session.Format()), time.Now()); err != nil {
		return fmt.Errorf("recording recent project: %w", err)
	}
	return nil
}

// SaveProject serializes the session to its write target, acquiring one from
// the provider first if needed. Returns the target name written to.
func (a *App) SaveProject(ctx context.Context) (string, error) {
	if err := a.persistOperation(); err != nil {
		return "", err
	}

	if !a.session.HasTarget() {
		acquired, err := a.session.AcquireTarget(ctx, a.provider)
		if err != nil {
			return "", fmt.Errorf("acquiring write target: %w", err)
		}
		if !acquired {
			return "", fmt.Errorf("no write target available")
		}
		return a.session.Name(), nil
	}

	if err := a.session.Save(ctx); err != nil {
		return "", err
	}
	return a.session.Name(), nil
}

// ExportProject serializes the session as a one-shot download to w without
// touching the write target.
func (a *App) ExportProject(ctx context.Context, w io.Writer) error {
	return a.session.Export(ctx, w)
}

// ConvertProject opens the archive at path, switches it to the requested
// format, and writes it through a fresh target. Returns the name written to.
func (a *App) ConvertProject(ctx context.Context, path string, to project.Format) (string, error) {
	a.op.ArchivePath = path
	if err := a.persistOperation(); err != nil {
		return "", err
	}

	if err := a.OpenProject(ctx, path); err != nil {
		return "", err
	}

	a.session.SetFormat(to)

	acquired, err := a.session.AcquireTarget(ctx, a.provider)
	if err != nil {
		return "", fmt.Errorf("acquiring write target: %w", err)
	}
	if !acquired {
		return "", fmt.Errorf("no write target available")
	}
	return a.session.Name() + to.Extension(), nil
}

// InspectArchive decodes the archive at path without loading it into the
// session.
func (a *App) InspectArchive(ctx context.Context, path string) (*project.ArchiveDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading archive: %w", err)
	}
	return a.codec.Deserialize(ctx, data)
}

// ValidateVideo checks a candidate video file against the loaded project's
// expected source.
func (a *App) ValidateVideo(candidate project.CandidateVideo) (project.ValidationResult, error) {
	return a.session.ValidateCandidate(candidate)
}

// RecentProjects returns the most recently opened archives.
func (a *App) RecentProjects(limit int) ([]*catalog.RecentProject, error) {
	return a.catalog.ListRecentProjects(limit)
}

// History returns the most recent journaled operations.
func (a *App) History(limit int) ([]*catalog.Operation, error) {
	return a.catalog.ListOperations(limit)
}

// Watch runs the auto-save scheduler until ctx is cancelled.
func (a *App) Watch(ctx context.Context) {
	a.scheduler.Start(ctx)
	<-ctx.Done()
	a.scheduler.Stop()
}

// Close finalizes the operation record and closes all resources.
func (a *App) Close() error {
	var firstErr error

	a.scheduler.Stop()

	if a.op.Persisted() {
		if err := a.catalog.FinishOperation(a.op.ID, a.op.Status, time.Now()); err != nil {
			firstErr = fmt.Errorf("finishing project operation: %w", err)
		}
	}

	if err := a.catalog.Close(); err != nil {
		if firstErr == nil {
			firstErr = fmt.Errorf("closing catalog: %w", err)
		}
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
