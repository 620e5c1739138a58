// Package storage provides S3-compatible object storage for user uploads.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	cfg "github.com/journey-app/server/internal/shared/config"
)

// ImageStore stores profile and crew images in an S3-compatible bucket.
type ImageStore struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

// NewImageStore creates an image store from storage configuration.
func NewImageStore(c *cfg.StorageConfig) (*ImageStore, error) {
	if c.AccessKeyID == "" || c.SecretAccessKey == "" || c.Bucket == "" {
		return nil, errors.New("incomplete storage configuration")
	}

	creds := credentials.NewStaticCredentialsProvider(
		c.AccessKeyID,
		c.SecretAccessKey,
		"",
	)

	region := c.Region
	if region == "" {
		region = "auto"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithCredentialsProvider(creds),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &ImageStore{
		client:        client,
		bucket:        c.Bucket,
		publicBaseURL: strings.TrimSuffix(c.PublicBaseURL, "/"),
	}, nil
}

// Upload stores an image under a generated key and returns its public URL.
// The keyPrefix groups objects, e.g. "profiles" or "crews".
func (s *ImageStore) Upload(ctx context.Context, keyPrefix string, filename string, contentType string, body io.Reader) (string, error) {
	ext := path.Ext(filename)
	key := fmt.Sprintf("%s/%s%s", keyPrefix, uuid.New().String(), ext)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}

	return s.PublicURL(key), nil
}

// Delete removes an object by its public URL. URLs outside the store's
// base URL are ignored so external avatars are never touched.
func (s *ImageStore) Delete(ctx context.Context, publicURL string) error {
	key, ok := s.keyFromURL(publicURL)
	if !ok {
		return nil
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// PublicURL returns the public URL for an object key.
func (s *ImageStore) PublicURL(key string) string {
	return s.publicBaseURL + "/" + key
}

func (s *ImageStore) keyFromURL(publicURL string) (string, bool) {
	prefix := s.publicBaseURL + "/"
	if !strings.HasPrefix(publicURL, prefix) {
		return "", false
	}
	return strings.TrimPrefix(publicURL, prefix), true
}
