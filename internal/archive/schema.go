package archive

import (
	"fmt"

	"github.com/kaptinlin/jsonschema"
)

// Document schemas for the two mandatory archive entries. Validation runs
// before decoding so a malformed document is rejected as corrupt rather
// than half-applied. The schemas are deliberately loose about optional
// fields: legacy archives omit videoSource entirely.

const manifestSchema = `{
  "type": "object",
  "required": ["version", "app", "created", "modified", "name"],
  "properties": {
    "version": {"type": "string"},
    "app": {"type": "string"},
    "created": {"type": "string"},
    "modified": {"type": "string"},
    "name": {"type": "string"}
  }
}`

const settingsSchema = `{
  "type": "object",
  "required": ["video", "drawing", "currentFrame"],
  "properties": {
    "video": {
      "type": "object",
      "properties": {
        "fps": {"type": "number", "minimum": 0},
        "frameCount": {"type": "integer", "minimum": 0},
        "width": {"type": "integer", "minimum": 0},
        "height": {"type": "integer", "minimum": 0},
        "cropTop": {"type": "number"},
        "cropRight": {"type": "number"},
        "cropBottom": {"type": "number"},
        "cropLeft": {"type": "number"},
        "isEmptyProject": {"type": "boolean"},
        "videoSource": {
          "type": "object",
          "required": ["filename"],
          "properties": {
            "filename": {"type": "string"},
            "fileSize": {"type": "integer", "minimum": 0},
            "duration": {"type": "number", "minimum": 0},
            "mimeType": {"type": "string"},
            "expectedFrameCount": {"type": "integer", "minimum": 0},
            "projectFps": {"type": "number", "minimum": 0}
          }
        }
      }
    },
    "drawing": {"type": "object"},
    "currentFrame": {"type": "integer", "minimum": 0}
  }
}`

type compiledSchema struct {
	schema *jsonschema.Schema
}

func (s *compiledSchema) validate(data []byte) error {
	result := s.schema.ValidateJSON(data)
	if result.IsValid() {
		return nil
	}
	return fmt.Errorf("schema validation failed: %v", result.Errors)
}

type documentSchemas struct {
	manifest *compiledSchema
	settings *compiledSchema
}

func compileSchemas() (*documentSchemas, error) {
	compiler := jsonschema.NewCompiler()

	manifest, err := compiler.Compile([]byte(manifestSchema))
	if err != nil {
		return nil, fmt.Errorf("compiling manifest schema: %w", err)
	}
	settings, err := compiler.Compile([]byte(settingsSchema))
	if err != nil {
		return nil, fmt.Errorf("compiling settings schema: %w", err)
	}

	return &documentSchemas{
		manifest: &compiledSchema{schema: manifest},
		settings: &compiledSchema{schema: settings},
	}, nil
}
