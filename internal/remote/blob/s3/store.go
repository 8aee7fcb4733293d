package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"portfolio-backend/internal/remote"
)

// Options configures the S3 blob store.
type Options struct {
	Region   string
	Bucket   string
	Prefix   string
	KMSKeyID string
	// PublicBaseURL overrides the path-style S3 URL, e.g. a CDN in front of the bucket.
	PublicBaseURL string
}

// API is the subset of *s3.Client the store calls.
type API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObjects(ctx context.Context, in *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Store implements remote.BlobStore using Amazon S3.
type Store struct {
	client     API
	bucket     string
	prefix     string
	kmsKeyID   string
	publicRoot string
}

// New creates a new S3-backed blob store.
func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return NewWithClient(s3.NewFromConfig(cfg), opts, cfg.Region), nil
}

// NewWithClient builds a store over an existing client. region only shapes
// public URLs when no PublicBaseURL is set.
func NewWithClient(client API, opts Options, region string) *Store {
	return &Store{
		client:     client,
		bucket:     opts.Bucket,
		prefix:     normalizePrefix(opts.Prefix),
		kmsKeyID:   strings.TrimSpace(opts.KMSKeyID),
		publicRoot: publicRoot(opts, region),
	}
}

// Upload puts the reader contents at path.
func (s *Store) Upload(ctx context.Context, path string, r io.Reader, contentType string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	objectKey := applyPrefix(s.prefix, path)
	counter := &countingReader{r: r}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
		Body:   counter,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if s.kmsKeyID != "" {
		input.ServerSideEncryption = s3types.ServerSideEncryptionAwsKms
		input.SSEKMSKeyId = aws.String(s.kmsKeyID)
	} else {
		input.ServerSideEncryption = s3types.ServerSideEncryptionAes256
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return 0, fmt.Errorf("s3 put object bucket=%s key=%s: %w", s.bucket, objectKey, err)
	}
	return counter.n, nil
}

// PublicURL returns the URL the object at path is served from.
func (s *Store) PublicURL(path string) string {
	return s.publicRoot + "/" + escapeKey(applyPrefix(s.prefix, path))
}

// PathFromURL reverses PublicURL and strips the configured prefix.
func (s *Store) PathFromURL(rawURL string) (string, bool) {
	var key string
	if rest, ok := strings.CutPrefix(rawURL, s.publicRoot+"/"); ok && rest != "" {
		unescaped, err := url.PathUnescape(rest)
		if err != nil {
			return "", false
		}
		key = unescaped
	} else {
		p, ok := remote.PathAfterBucket(rawURL, s.bucket)
		if !ok {
			return "", false
		}
		key = p
	}
	if s.prefix != "" {
		trimmed, ok := strings.CutPrefix(key, s.prefix+"/")
		if !ok {
			return "", false
		}
		key = trimmed
	}
	return key, key != ""
}

// Remove deletes the objects at paths in a single batch.
func (s *Store) Remove(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	ids := make([]s3types.ObjectIdentifier, 0, len(paths))
	for _, p := range paths {
		ids = append(ids, s3types.ObjectIdentifier{Key: aws.String(applyPrefix(s.prefix, p))})
	}
	out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.bucket),
		Delete: &s3types.Delete{Objects: ids, Quiet: aws.Bool(true)},
	})
	if err != nil {
		return fmt.Errorf("s3 delete objects bucket=%s: %w", s.bucket, err)
	}
	if len(out.Errors) > 0 {
		errs := make([]error, 0, len(out.Errors))
		for _, e := range out.Errors {
			errs = append(errs, fmt.Errorf("s3 delete key=%s: %s", aws.ToString(e.Key), aws.ToString(e.Message)))
		}
		return errors.Join(errs...)
	}
	return nil
}

// Open downloads a stored object for reading.
func (s *Store) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	objectKey := applyPrefix(s.prefix, path)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, remote.ErrNotFound
		}
		return nil, fmt.Errorf("s3 get object bucket=%s key=%s: %w", s.bucket, objectKey, err)
	}
	return out.Body, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func publicRoot(opts Options, region string) string {
	if base := strings.TrimSpace(opts.PublicBaseURL); base != "" {
		return strings.TrimRight(base, "/")
	}
	if region == "" {
		region = "us-east-1"
	}
	return fmt.Sprintf("https://s3.%s.amazonaws.com/%s", region, opts.Bucket)
}

func normalizePrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}

func applyPrefix(prefix, key string) string {
	cleanPrefix := strings.Trim(prefix, "/")
	cleanKey := strings.TrimLeft(key, "/")
	if cleanPrefix == "" {
		return cleanKey
	}
	if cleanKey == "" {
		return cleanPrefix
	}
	return cleanPrefix + "/" + cleanKey
}

func escapeKey(key string) string {
	segments := strings.Split(key, "/")
	for i := range segments {
		segments[i] = url.PathEscape(segments[i])
	}
	return strings.Join(segments, "/")
}

var _ remote.BlobStore = (*Store)(nil)
