package target

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"frameforge/internal/project"
)

// S3Provider grants write targets stored as objects in an S3 bucket,
// for users who keep their project archives in cloud storage.
type S3Provider struct {
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

// S3Options configures an S3Provider. AccessKey/SecretKey are optional;
// when empty the default AWS credential chain is used.
type S3Options struct {
	Bucket    string
	Prefix    string
	Region    string
	AccessKey string
	SecretKey string
}

// NewS3Provider creates a provider for the given bucket and prefix.
func NewS3Provider(ctx context.Context, opts S3Options) (*S3Provider, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 target requires a bucket")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return &S3Provider{
		uploader: manager.NewUploader(client),
		bucket:   opts.Bucket,
		prefix:   opts.Prefix,
	}, nil
}

// RequestTarget grants an object target keyed by the suggested name under
// the provider's prefix.
func (p *S3Provider) RequestTarget(_ context.Context, suggestedName string) (project.WriteTarget, error) {
	if suggestedName == "" {
		return nil, fmt.Errorf("empty target name")
	}
	return &S3Target{
		uploader: p.uploader,
		bucket:   p.bucket,
		key:      path.Join(p.prefix, suggestedName),
		name:     suggestedName,
	}, nil
}

// S3Target writes archives to a single S3 object. S3 puts are atomic per
// object, so a failed upload never corrupts the previous save.
type S3Target struct {
	uploader *manager.Uploader
	bucket   string
	key      string
	name     string
}

func (t *S3Target) Name() string { return t.name }

// WriteAll uploads the archive bytes. A missing bucket or denied access
// means the grant is gone and reports ErrWriteTargetLost.
func (t *S3Target) WriteAll(ctx context.Context, data []byte) error {
	_, err := t.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(t.bucket),
		Key:    aws.String(t.key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		if isS3TargetLost(err) {
			return fmt.Errorf("%w: s3://%s/%s: %v", project.ErrWriteTargetLost, t.bucket, t.key, err)
		}
		return fmt.Errorf("uploading to s3: %w", err)
	}
	return nil
}

// isS3TargetLost classifies API errors that mean the target cannot be
// written again without re-resolving it.
func isS3TargetLost(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "NoSuchBucket", "AccessDenied", "ExpiredToken", "InvalidAccessKeyId":
		return true
	}
	return false
}

// Compile-time checks against the core interfaces.
var (
	_ project.TargetProvider = (*S3Provider)(nil)
	_ project.WriteTarget    = (*S3Target)(nil)
)
