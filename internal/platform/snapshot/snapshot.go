// Package snapshot copies the collection files to an S3-compatible bucket.
// Each run writes under its own timestamped prefix, so earlier snapshots
// are never overwritten.
package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// keyLayout is used for the per-run prefix; it sorts lexically by time.
const keyLayout = "20060102T150405Z"

// Config describes the target bucket.
type Config struct {
	Bucket    string
	Region    string
	Endpoint  string // optional, e.g. a MinIO URL
	Prefix    string
	PathStyle bool
}

// PutObjectAPI is the part of *s3.Client the snapshotter needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewClient builds an S3 client from the default credential chain.
func NewClient(ctx context.Context, cfg Config) (*s3.Client, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("snapshot bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// Object is one uploaded file.
type Object struct {
	Key   string
	Bytes int
}

// Snapshotter uploads collection files.
type Snapshotter struct {
	client PutObjectAPI
	bucket string
	prefix string
	logger zerolog.Logger
	now    func() time.Time
}

// New returns a Snapshotter writing to bucket under prefix.
func New(client PutObjectAPI, bucket, prefix string, logger zerolog.Logger) *Snapshotter {
	return &Snapshotter{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger,
		now:    time.Now,
	}
}

// Upload reads every file and puts it concurrently. Each collection file is
// replaced atomically on disk, so every object is a complete document. The
// first failure cancels the remaining uploads.
func (s *Snapshotter) Upload(ctx context.Context, files []string) ([]Object, error) {
	run := path.Join(s.prefix, s.now().UTC().Format(keyLayout))

	var (
		mu      sync.Mutex
		objects = make([]Object, 0, len(files))
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, file := range files {
		file := file
		g.Go(func() error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}
			key := path.Join(run, filepath.Base(file))
			_, err = s.client.PutObject(gctx, &s3.PutObjectInput{
				Bucket:      aws.String(s.bucket),
				Key:         aws.String(key),
				Body:        bytes.NewReader(data),
				ContentType: aws.String("application/xml"),
			})
			if err != nil {
				return fmt.Errorf("put %s: %w", key, err)
			}
			s.logger.Debug().Str("key", key).Int("bytes", len(data)).Msg("snapshot object uploaded")

			mu.Lock()
			objects = append(objects, Object{Key: key, Bytes: len(data)})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("bucket", s.bucket).
		Str("prefix", run).
		Int("objects", len(objects)).
		Msg("snapshot complete")
	return objects, nil
}
