// Package publish uploads rendered images to S3-compatible storage.
package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"path"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/user/raycaster/internal/config"
)

// UploadTimeout bounds a single object upload.
const UploadTimeout = 10 * time.Second

// maxParallel limits concurrent uploads in UploadAll.
const maxParallel = 4

// ErrNotConfigured is returned by New when the S3 settings are incomplete.
var ErrNotConfigured = errors.New("s3 upload is not configured")

// Publisher puts rendered images into one bucket.
type Publisher struct {
	client s3iface.S3API
	bucket string
	prefix string
	run    string // groups the uploads of one process
}

// New creates an S3 session from cfg.
func New(cfg *config.Config) (*Publisher, error) {
	if !cfg.UploadEnabled() {
		return nil, ErrNotConfigured
	}
	s3Config := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Region:           aws.String(cfg.S3Region),
		S3ForcePathStyle: aws.Bool(true),
	}
	if cfg.S3Endpoint != "" {
		s3Config.Endpoint = aws.String(cfg.S3Endpoint)
	}
	sess, err := session.NewSession(s3Config)
	if err != nil {
		return nil, fmt.Errorf("create s3 session: %w", err)
	}
	return NewWithClient(s3.New(sess), cfg.S3Bucket, cfg.S3Prefix), nil
}

// NewWithClient wraps an existing S3 client.
func NewWithClient(client s3iface.S3API, bucket, prefix string) *Publisher {
	return &Publisher{
		client: client,
		bucket: bucket,
		prefix: prefix,
		run:    uuid.New().String(),
	}
}

// Key returns the object key for an image called name.
func (p *Publisher) Key(name string) string {
	return path.Join(p.prefix, p.run, name+".png")
}

// Upload encodes img as PNG and stores it under Key(name). It returns the key.
func (p *Publisher) Upload(ctx context.Context, name string, img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", fmt.Errorf("encode %s: %w", name, err)
	}

	ctx, cancel := context.WithTimeout(ctx, UploadTimeout)
	defer cancel()

	key := p.Key(name)
	size := int64(buf.Len())
	_, err := p.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(buf.Bytes()),
		ContentLength: aws.Int64(size),
		ContentType:   aws.String("image/png"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	log.Printf("publish: uploaded %s (%d bytes)", key, size)
	return key, nil
}

// UploadAll uploads every image concurrently and returns the keys in the
// order of names. The first failure cancels the remaining uploads.
func (p *Publisher) UploadAll(ctx context.Context, names []string, imgs []image.Image) ([]string, error) {
	if len(names) != len(imgs) {
		return nil, fmt.Errorf("upload: %d names for %d images", len(names), len(imgs))
	}
	keys := make([]string, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for i := range names {
		g.Go(func() error {
			key, err := p.Upload(ctx, names[i], imgs[i])
			if err != nil {
				return err
			}
			keys[i] = key
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return keys, nil
}
