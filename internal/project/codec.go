package project

import "context"

// ArchiveDocument is the in-memory tuple an archive serializes to and from.
type ArchiveDocument struct {
	Manifest      Manifest
	Settings      Settings
	Frames        FrameSet
	Checkpoints   []*Checkpoint
	EmbeddedVideo []byte
}

// ArchiveCodec maps an ArchiveDocument to a portable archive blob and back.
// Serialize must fully write every frame record before finalizing the blob;
// Deserialize fails with ErrCorruptArchive or ErrUnsupportedVersion and
// must not return partially decoded state.
type ArchiveCodec interface {
	Serialize(ctx context.Context, doc *ArchiveDocument) ([]byte, error)
	Deserialize(ctx context.Context, data []byte) (*ArchiveDocument, error)
}
