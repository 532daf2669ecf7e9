package backup

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// SnapshotContentType is the content type of JSONL snapshots.
const SnapshotContentType = "application/x-ndjson"

// S3Destination writes data to an object in an S3-compatible bucket.
type S3Destination struct {
	client      *s3.Client
	bucket      string
	key         string
	contentType string
}

// IsS3URL reports whether target has the s3:// scheme.
func IsS3URL(target string) bool {
	return strings.HasPrefix(target, "s3://")
}

// ParseS3URL splits s3://bucket/key into its bucket and key.
func ParseS3URL(target string) (bucket, key string, err error) {
	if !IsS3URL(target) {
		return "", "", fmt.Errorf("not an s3 URL: %q", target)
	}
	bucket, key, _ = strings.Cut(strings.TrimPrefix(target, "s3://"), "/")
	if bucket == "" || key == "" || strings.HasSuffix(key, "/") {
		return "", "", fmt.Errorf("s3 URL %q: want s3://bucket/key", target)
	}
	return bucket, key, nil
}

// NewS3Destination creates an S3 destination. If endpoint is non-empty,
// path-style addressing is enabled (for MinIO and similar).
func NewS3Destination(ctx context.Context, bucket, key, region, endpoint string) (*S3Destination, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var s3opts []func(*s3.Options)
	if endpoint != "" {
		s3opts = append(s3opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
	}

	client := s3.NewFromConfig(cfg, s3opts...)
	return &S3Destination{
		client:      client,
		bucket:      bucket,
		key:         key,
		contentType: SnapshotContentType,
	}, nil
}

// NewS3DestinationFromURL is NewS3Destination for an s3://bucket/key target.
func NewS3DestinationFromURL(ctx context.Context, target, region, endpoint string) (*S3Destination, error) {
	bucket, key, err := ParseS3URL(target)
	if err != nil {
		return nil, err
	}
	return NewS3Destination(ctx, bucket, key, region, endpoint)
}

// WithContentType overrides the object content type.
func (d *S3Destination) WithContentType(contentType string) *S3Destination {
	d.contentType = contentType
	return d
}

// Write uploads data to S3 as the configured object key.
func (d *S3Destination) Write(ctx context.Context, data []byte) error {
	_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(d.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(d.contentType),
	})
	if err != nil {
		return fmt.Errorf("s3 put object: %w", err)
	}
	return nil
}

// Open downloads the configured object for restore. The caller closes it.
func (d *S3Destination) Open(ctx context.Context) (io.ReadCloser, error) {
	out, err := d.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(d.key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get object: %w", err)
	}
	return out.Body, nil
}

func (d *S3Destination) String() string {
	return "s3://" + d.bucket + "/" + d.key
}
