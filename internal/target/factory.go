package target

import (
	"context"
	"fmt"

	"frameforge/internal/config"
	"frameforge/internal/project"
)

// NewProviderFromConfig creates a TargetProvider based on the target
// config type.
func NewProviderFromConfig(ctx context.Context, cfg config.TargetConfig) (project.TargetProvider, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryProvider(), nil
	case "filesystem":
		if cfg.Dir == "" {
			return nil, fmt.Errorf("filesystem target requires dir to be set")
		}
		return NewFileSystemProvider(cfg.Dir)
	case "s3":
		return NewS3Provider(ctx, S3Options{
			Bucket:    cfg.S3Bucket,
			Prefix:    cfg.S3Prefix,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	default:
		return nil, fmt.Errorf("unknown target type: %s", cfg.Type)
	}
}
