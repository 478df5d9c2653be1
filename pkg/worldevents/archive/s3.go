package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/randalmurphal/worldevents/pkg/worldevents/model"
)

// Uploader is the subset of *manager.Uploader the archiver uses.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Archiver writes each resolved event as JSON to
//
//	s3://<bucket>/<prefix>/events/YYYY/MM/DD/<id>.json
//
// where the date is the event's end time in UTC.
type S3Archiver struct {
	bucket   string
	prefix   string
	uploader Uploader
	closed   atomic.Bool
}

// NewS3Archiver creates an archiver over an existing uploader.
func NewS3Archiver(uploader Uploader, bucket, prefix string) (*S3Archiver, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 archive: bucket required")
	}
	return &S3Archiver{bucket: bucket, prefix: prefix, uploader: uploader}, nil
}

// NewS3ArchiverFromEnv loads AWS credentials and region the standard way
// (environment, shared config, instance role) and builds an archiver.
func NewS3ArchiverFromEnv(ctx context.Context, bucket, prefix string) (*S3Archiver, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewS3Archiver(manager.NewUploader(s3.NewFromConfig(cfg)), bucket, prefix)
}

// Key returns the object key for ev.
func (a *S3Archiver) Key(ev model.WorldEvent) string {
	ts := resolvedAt(ev)
	year, month, day := ts.Date()
	return path.Join(a.prefix, "events",
		fmt.Sprintf("%04d", year),
		fmt.Sprintf("%02d", int(month)),
		fmt.Sprintf("%02d", day),
		ev.ID+".json",
	)
}

// Archive implements Sink.
func (a *S3Archiver) Archive(ctx context.Context, ev model.WorldEvent) error {
	if a.closed.Load() {
		return ErrClosed
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", ev.ID, err)
	}

	_, err = a.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:               aws.String(a.bucket),
		Key:                  aws.String(a.Key(ev)),
		Body:                 bytes.NewReader(body),
		ContentType:          aws.String("application/json"),
		ServerSideEncryption: s3types.ServerSideEncryptionAes256,
	})
	if err != nil {
		return fmt.Errorf("s3 upload %s: %w", ev.ID, err)
	}
	return nil
}

// Close implements Sink.
func (a *S3Archiver) Close() error {
	a.closed.Store(true)
	return nil
}
