package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	nanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

// Uploader stores binary objects and returns their public URL.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// Options controls how the S3-compatible uploader is initialised.
type Options struct {
	Bucket        string
	Region        string
	Endpoint      string
	PublicBaseURL string
	Logger        *logrus.Logger
}

// S3Uploader writes objects to an S3-compatible bucket. If Endpoint is
// non-empty, path-style addressing is enabled (for MinIO and similar).
type S3Uploader struct {
	client  *s3.Client
	bucket  string
	baseURL string
	logger  *logrus.Logger
}

// NewS3Uploader creates an uploader bound to the configured bucket.
func NewS3Uploader(ctx context.Context, opts Options) (*S3Uploader, error) {
	if opts.Bucket == "" {
		return nil, eris.New("storage bucket is required")
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(opts.Region))
	if err != nil {
		return nil, eris.Wrap(err, "loading AWS config")
	}

	var s3opts []func(*s3.Options)
	if opts.Endpoint != "" {
		s3opts = append(s3opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		})
	}

	return &S3Uploader{
		client:  s3.NewFromConfig(cfg, s3opts...),
		bucket:  opts.Bucket,
		baseURL: publicBaseURL(opts),
		logger:  opts.Logger,
	}, nil
}

var _ Uploader = (*S3Uploader)(nil)

// Upload writes the object under key and returns its public URL. The write is
// conditional on the key not existing yet, so a colliding key fails instead of
// silently clobbering the stored object.
func (u *S3Uploader) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if key == "" {
		return "", eris.New("object key is required")
	}

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		IfNoneMatch: aws.String("*"),
	})
	if err != nil {
		if u.logger != nil {
			u.logger.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Error("storing object")
		}
		return "", eris.Wrapf(err, "storing object %s", key)
	}

	return u.baseURL + "/" + key, nil
}

func publicBaseURL(opts Options) string {
	if opts.PublicBaseURL != "" {
		return strings.TrimRight(opts.PublicBaseURL, "/")
	}

	if opts.Endpoint != "" {
		return strings.TrimRight(opts.Endpoint, "/") + "/" + opts.Bucket
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, opts.Region)
}

const (
	keyAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	keyLength   = 16
)

// NewObjectKey derives a storage key as {folder}/{random id}.{ext}, taking the
// extension from the original filename and defaulting to jpg.
func NewObjectKey(folder, filename string) (string, error) {
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	if folder == "" {
		folder = "uploads"
	}

	ext := strings.TrimPrefix(strings.ToLower(path.Ext(filename)), ".")
	if ext == "" {
		ext = "jpg"
	}

	id, err := nanoid.Generate(keyAlphabet, keyLength)
	if err != nil {
		return "", eris.Wrap(err, "generating object id")
	}

	return fmt.Sprintf("%s/%s.%s", folder, id, ext), nil
}
