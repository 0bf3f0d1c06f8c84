// Package archive implements the .lucas / .fluf project container format:
// a deflate-compressed zip holding a manifest, a project-settings document,
// per-frame record pairs, and checkpoint snapshots.
package archive

import (
	"archive/zip"
	"bytes"
	"compress/flate"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gowebpki/jcs"

	"frameforge/internal/project"
)

// Archive entry paths. Two format variants share this layout; only the
// presence of videoEntry differs.
const (
	manifestEntry        = "manifest.json"
	settingsEntry        = "project.json"
	videoEntry           = "video.bin"
	framesDir            = "frames"
	checkpointsDir       = "checkpoints"
	checkpointIndexEntry = "checkpoints/index.json"
)

// compressionLevel is the whole-archive deflate level: a throughput/size
// tradeoff, not tunable by callers.
const compressionLevel = 6

// serializedFrame is the structured-data half of a frame record pair. The
// thumbnail travels as a sibling raw-bytes entry.
type serializedFrame struct {
	FrameIndex   int    `json:"frameIndex"`
	DrawingState string `json:"drawingState"`
}

// checkpointMeta is one row of the checkpoint index: metadata only, frames
// are stored under the checkpoint's own namespace.
type checkpointMeta struct {
	ID           string `json:"id"`
	Timestamp    string `json:"timestamp"`
	Name         string `json:"name"`
	FrameIndices []int  `json:"frameIndices"`
}

// Codec is the zip-based ArchiveCodec implementation. It is stateless
// aside from its compiled document schemas and safe for concurrent use.
type Codec struct {
	logger  project.Logger
	schemas *documentSchemas
}

// NewCodec creates a codec. The embedded document schemas are compiled
// once here.
func NewCodec(logger project.Logger) (*Codec, error) {
	schemas, err := compileSchemas()
	if err != nil {
		return nil, fmt.Errorf("compiling archive schemas: %w", err)
	}
	return &Codec{logger: logger, schemas: schemas}, nil
}

// Serialize packs the document into a single archive blob. Every frame
// record is fully written before the archive is finalized.
func (c *Codec) Serialize(_ context.Context, doc *project.ArchiveDocument) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, compressionLevel)
	})

	if err := writeJSONEntry(zw, manifestEntry, doc.Manifest); err != nil {
		return nil, err
	}
	if err := writeJSONEntry(zw, settingsEntry, doc.Settings); err != nil {
		return nil, err
	}

	if err := writeFrames(zw, framesDir, doc.Frames); err != nil {
		return nil, err
	}

	index := make([]checkpointMeta, 0, len(doc.Checkpoints))
	for _, cp := range doc.Checkpoints {
		index = append(index, checkpointMeta{
			ID:           cp.ID,
			Timestamp:    cp.CreatedAt.UTC().Format(time.RFC3339Nano),
			Name:         cp.Name,
			FrameIndices: cp.FrameIndices,
		})
	}
	if err := writeJSONEntry(zw, checkpointIndexEntry, index); err != nil {
		return nil, err
	}
	for _, cp := range doc.Checkpoints {
		if err := writeFrames(zw, path.Join(checkpointsDir, cp.ID), cp.Frames); err != nil {
			return nil, err
		}
	}

	if len(doc.EmbeddedVideo) > 0 {
		if err := writeRawEntry(zw, videoEntry, doc.EmbeddedVideo); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalizing archive: %w", err)
	}
	return buf.Bytes(), nil
}

// Deserialize unpacks an archive blob. It fails with ErrCorruptArchive when
// the manifest or settings entry is absent or undecodable, and with
// ErrUnsupportedVersion when the format version is missing or unparseable.
// An absent checkpoint namespace means zero checkpoints; an absent
// thumbnail means an empty thumbnail, never an error.
func (c *Codec) Deserialize(_ context.Context, data []byte) (*project.ArchiveDocument, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a zip archive: %v", project.ErrCorruptArchive, err)
	}

	entries := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		entries[f.Name] = f
	}

	var manifest project.Manifest
	if err := c.readJSONEntry(entries, manifestEntry, c.schemas.manifest, &manifest); err != nil {
		return nil, err
	}
	if err := checkFormatVersion(manifest.FormatVersion); err != nil {
		return nil, err
	}

	var settings project.Settings
	if err := c.readJSONEntry(entries, settingsEntry, c.schemas.settings, &settings); err != nil {
		return nil, err
	}
	clampCrop(&settings.Video)

	frames, err := c.readFrames(entries, framesDir)
	if err != nil {
		return nil, err
	}

	checkpoints, err := c.readCheckpoints(entries)
	if err != nil {
		return nil, err
	}

	doc := &project.ArchiveDocument{
		Manifest:    manifest,
		Settings:    settings,
		Frames:      frames,
		Checkpoints: checkpoints,
	}

	if f, ok := entries[videoEntry]; ok {
		video, err := readAll(f)
		if err != nil {
			return nil, fmt.Errorf("reading embedded video: %w", err)
		}
		doc.EmbeddedVideo = video
	}

	return doc, nil
}

// readJSONEntry reads, schema-checks, and decodes a mandatory document
// entry. Any failure maps to ErrCorruptArchive.
func (c *Codec) readJSONEntry(entries map[string]*zip.File, name string, schema *compiledSchema, v any) error {
	f, ok := entries[name]
	if !ok {
		return fmt.Errorf("%w: missing %s", project.ErrCorruptArchive, name)
	}
	data, err := readAll(f)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", project.ErrCorruptArchive, name, err)
	}
	if err := schema.validate(data); err != nil {
		return fmt.Errorf("%w: %s: %v", project.ErrCorruptArchive, name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: decoding %s: %v", project.ErrCorruptArchive, name, err)
	}
	return nil
}

// readFrames scans a namespace for structured-data entries, deriving frame
// indices from the numeric entry names. Names that do not parse as a
// non-negative integer are ignored. A frame whose structured entry cannot
// be decoded is logged and skipped; a missing or unreadable thumbnail
// yields an empty thumbnail.
func (c *Codec) readFrames(entries map[string]*zip.File, dir string) (project.FrameSet, error) {
	frames := make(project.FrameSet)
	prefix := dir + "/"

	for name, f := range entries {
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		rel := strings.TrimPrefix(name, prefix)
		if strings.Contains(rel, "/") {
			continue
		}
		index, err := strconv.Atoi(strings.TrimSuffix(rel, ".json"))
		if err != nil || index < 0 {
			continue
		}

		data, err := readAll(f)
		if err != nil {
			c.logger.Error("failed to read frame entry", "entry", name, "error", err)
			continue
		}
		var sf serializedFrame
		if err := json.Unmarshal(data, &sf); err != nil {
			c.logger.Error("failed to decode frame entry", "entry", name, "error", err)
			continue
		}

		var thumbnail []byte
		if pf, ok := entries[prefix+strconv.Itoa(index)+".png"]; ok {
			thumbnail, err = readAll(pf)
			if err != nil {
				// A broken thumbnail never aborts the load.
				c.logger.Error("failed to read thumbnail", "entry", pf.Name, "error", err)
				thumbnail = nil
			}
		}

		frames[index] = &project.FrameRecord{
			FrameIndex:   index,
			DrawingState: sf.DrawingState,
			Thumbnail:    thumbnail,
		}
	}

	return frames, nil
}

// readCheckpoints loads the checkpoint index and each checkpoint's frame
// namespace. A missing index means the archive has no checkpoints.
func (c *Codec) readCheckpoints(entries map[string]*zip.File) ([]*project.Checkpoint, error) {
	f, ok := entries[checkpointIndexEntry]
	if !ok {
		return nil, nil
	}
	data, err := readAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: reading checkpoint index: %v", project.ErrCorruptArchive, err)
	}
	var index []checkpointMeta
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("%w: decoding checkpoint index: %v", project.ErrCorruptArchive, err)
	}

	checkpoints := make([]*project.Checkpoint, 0, len(index))
	for _, meta := range index {
		frames, err := c.readFrames(entries, path.Join(checkpointsDir, meta.ID))
		if err != nil {
			return nil, err
		}
		createdAt, err := time.Parse(time.RFC3339, meta.Timestamp)
		if err != nil {
			c.logger.Warn("unparseable checkpoint timestamp", "id", meta.ID, "timestamp", meta.Timestamp)
		}
		checkpoints = append(checkpoints, &project.Checkpoint{
			ID:           meta.ID,
			CreatedAt:    createdAt,
			Name:         meta.Name,
			FrameIndices: meta.FrameIndices,
			Frames:       frames,
		})
	}
	return checkpoints, nil
}

// writeFrames writes one record pair per frame under dir, in ascending
// index order so archives of identical inputs are byte-identical.
func writeFrames(zw *zip.Writer, dir string, frames project.FrameSet) error {
	indices := make([]int, 0, len(frames))
	for idx := range frames {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	for _, idx := range indices {
		rec := frames[idx]
		name := path.Join(dir, strconv.Itoa(idx))
		sf := serializedFrame{FrameIndex: rec.FrameIndex, DrawingState: rec.DrawingState}
		if err := writeJSONEntry(zw, name+".json", sf); err != nil {
			return err
		}
		if len(rec.Thumbnail) > 0 {
			if err := writeRawEntry(zw, name+".png", rec.Thumbnail); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeJSONEntry marshals v, canonicalizes it (RFC 8785), and writes it as
// a compressed entry. Canonical form keeps saves idempotent: identical
// inputs produce identical entry bytes.
func writeJSONEntry(zw *zip.Writer, name string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return fmt.Errorf("canonicalizing %s: %w", name, err)
	}
	return writeRawEntry(zw, name, canonical)
}

func writeRawEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("creating entry %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing entry %s: %w", name, err)
	}
	return nil
}

func readAll(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// checkFormatVersion requires a MAJOR.MINOR[.PATCH] version of integer
// fields.
func checkFormatVersion(version string) error {
	if version == "" {
		return fmt.Errorf("%w: missing format version", project.ErrUnsupportedVersion)
	}
	parts := strings.Split(version, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return fmt.Errorf("%w: %q", project.ErrUnsupportedVersion, version)
	}
	for _, p := range parts {
		if n, err := strconv.Atoi(p); err != nil || n < 0 {
			return fmt.Errorf("%w: %q", project.ErrUnsupportedVersion, version)
		}
	}
	return nil
}

// clampCrop bounds each crop percentage to [0,49].
func clampCrop(v *project.VideoSettings) {
	clamp := func(f float64) float64 {
		if f < 0 {
			return 0
		}
		if f > 49 {
			return 49
		}
		return f
	}
	v.CropTop = clamp(v.CropTop)
	v.CropRight = clamp(v.CropRight)
	v.CropBottom = clamp(v.CropBottom)
	v.CropLeft = clamp(v.CropLeft)
}

// Compile-time check that Codec implements the core codec interface.
var _ project.ArchiveCodec = (*Codec)(nil)
