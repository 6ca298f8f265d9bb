/*
Package storage writes transfer records to S3-compatible object storage.
*/
package storage

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by NewObjectStore when any bucket setting is missing.
var ErrNotConfigured = errors.New("storage: object storage is not configured")

// ServiceConfig holds the S3 connection settings.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string

	// S3Region defaults to "auto", which S3-compatible providers accept.
	S3Region string
}

// Enabled reports whether every required setting is present.
func (c ServiceConfig) Enabled() bool {
	return c.S3BucketName != "" && c.S3Endpoint != "" && c.S3AccessKeyID != "" && c.S3SecretAccessKey != ""
}

// ObjectStore uploads objects.
type ObjectStore interface {
	// Put uploads body under key, replacing any existing object.
	Put(ctx context.Context, key, contentType string, body []byte) error
}

// NewObjectStore returns the S3 implementation or ErrNotConfigured.
func NewObjectStore(ctx context.Context, cfg ServiceConfig) (ObjectStore, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	c, err := newS3Client(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return c, nil
}
