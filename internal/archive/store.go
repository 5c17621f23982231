// Package archive persists generated booking documents to S3 so the office
// has a durable copy of every contract sent to a customer.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/natashamaes/venue-concierge/pkg/logging"
)

// S3API is the subset of the S3 client used by Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Store writes documents to a bucket. Uploading the same folder/name pair
// again replaces the previous object, which is what contract regeneration
// wants.
type Store struct {
	bucket   string
	s3Client S3API
	logger   *logging.Logger
}

// NewStore creates a document Store. If bucket is empty, all operations are
// no-ops.
func NewStore(s3Client S3API, bucket string, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{bucket: bucket, s3Client: s3Client, logger: logger}
}

// Enabled returns true if archival is configured (bucket is set).
func (s *Store) Enabled() bool {
	return s != nil && s.bucket != "" && s.s3Client != nil
}

// UploadOrReplace stores a document under folder/name, overwriting any
// existing object at that key. Returns the object key.
func (s *Store) UploadOrReplace(ctx context.Context, folder, name string, data []byte, contentType string) (string, error) {
	if !s.Enabled() {
		return "", nil
	}

	key := fmt.Sprintf("%s/%s", strings.Trim(folder, "/"), sanitizeName(name))
	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("archive: s3 put %s: %w", key, err)
	}

	s.logger.Info("document archived",
		"s3_key", key,
		"bytes", len(data),
	)
	return key, nil
}

// sanitizeName keeps object names to a safe character set. Spaces are
// preserved since keys like "Sarah Johnson - Wedding - 2026-06-13.txt" read
// well in the console.
func sanitizeName(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '.', r == ',':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	return sb.String()
}
