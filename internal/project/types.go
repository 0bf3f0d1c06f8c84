package project

import (
	"regexp"
	"time"
)

// FormatVersion is the current project archive format version.
const FormatVersion = "1.2.0"

// AppID identifies the producing application in archive manifests.
const AppID = "FrameForge"

// Format selects the archive variant. The internal layout is identical;
// only the presence of embedded video bytes differs.
type Format string

const (
	// FormatReference (.lucas) stores a video source reference and expects
	// reconnection at load time.
	FormatReference Format = "lucas"

	// FormatEmbedded (.fluf) embeds the source video bytes in the archive.
	FormatEmbedded Format = "fluf"
)

// Extension returns the file extension for the format, including the dot.
func (f Format) Extension() string {
	if f == FormatEmbedded {
		return ".fluf"
	}
	return ".lucas"
}

// FormatForFilename derives the archive format from a filename extension.
func FormatForFilename(name string) Format {
	if len(name) > 5 && name[len(name)-5:] == ".fluf" {
		return FormatEmbedded
	}
	return FormatReference
}

// Manifest is the archive's identity document, written once per save with
// ModifiedAt refreshed each time.
type Manifest struct {
	FormatVersion string    `json:"version"`
	AppID         string    `json:"app"`
	CreatedAt     time.Time `json:"created"`
	ModifiedAt    time.Time `json:"modified"`
	DisplayName   string    `json:"name"`
}

// VideoSettings describes the project's working area and, for reference
// archives, the external video it was traced from. Crop values are
// percentages clamped to [0,49].
type VideoSettings struct {
	FPS         float64               `json:"fps"`
	FrameCount  int                   `json:"frameCount"`
	Width       int                   `json:"width"`
	Height      int                   `json:"height"`
	CropTop     float64               `json:"cropTop"`
	CropRight   float64               `json:"cropRight"`
	CropBottom  float64               `json:"cropBottom"`
	CropLeft    float64               `json:"cropLeft"`
	IsEmpty     bool                  `json:"isEmptyProject"`
	VideoSource *VideoSourceReference `json:"videoSource,omitempty"`
}

// CanvasSize is the drawing surface size with its display label.
type CanvasSize struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Label  string `json:"label"`
}

// ToolSettings is the drawing tool state carried through saves. The core
// never interprets it beyond serialization.
type ToolSettings struct {
	Tool      string  `json:"tool"`
	Color     string  `json:"color"`
	BrushSize int     `json:"brushSize"`
	Opacity   float64 `json:"opacity"`
}

// DrawingSettings groups the drawing surface state stored in project.json.
type DrawingSettings struct {
	CanvasSize   CanvasSize   `json:"canvasSize"`
	ToolSettings ToolSettings `json:"toolSettings"`
}

// Settings is the project-settings document (project.json), everything the
// archive stores outside the manifest and frame records.
type Settings struct {
	Video             VideoSettings   `json:"video"`
	Drawing           DrawingSettings `json:"drawing"`
	CurrentFrameIndex int             `json:"currentFrame"`
}

// Placeholder working-area defaults used when a loaded archive carries no
// usable dimensions.
const (
	DefaultCanvasWidth  = 512
	DefaultCanvasHeight = 512
	DefaultFrameCount   = 100
	DefaultFPS          = 24
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9_\-]`)

// SafeFileName replaces filesystem-hostile characters with underscores.
func SafeFileName(name string) string {
	return unsafeFilenameChars.ReplaceAllString(name, "_")
}
