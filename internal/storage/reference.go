package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"relieflink/pkg/types"
)

const maxSnapshotBytes = 16 << 20

var ErrSnapshotNotFound = errors.New("reference snapshot not found")

// ObjectAPI is the slice of the S3 client the snapshot store uses.
type ObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ReferenceSnapshot reads and writes the fallback reference pool as a
// single JSON object in S3.
type ReferenceSnapshot struct {
	client ObjectAPI
	bucket string
	key    string
}

func NewReferenceSnapshot(client ObjectAPI, bucket, key string) *ReferenceSnapshot {
	return &ReferenceSnapshot{
		client: client,
		bucket: bucket,
		key:    key,
	}
}

func (s *ReferenceSnapshot) Location() string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, s.key)
}

func (s *ReferenceSnapshot) Load(ctx context.Context) (types.ReferenceData, error) {
	var data types.ReferenceData

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return data, fmt.Errorf("%s: %w", s.Location(), ErrSnapshotNotFound)
		}
		return data, fmt.Errorf("failed to get reference snapshot: %w", err)
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(out.Body, maxSnapshotBytes))
	if err != nil {
		return data, fmt.Errorf("failed to read reference snapshot: %w", err)
	}

	if err := json.Unmarshal(raw, &data); err != nil {
		return data, fmt.Errorf("failed to decode reference snapshot: %w", err)
	}

	return data, nil
}

func (s *ReferenceSnapshot) Save(ctx context.Context, data types.ReferenceData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode reference snapshot: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(raw),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to put reference snapshot: %w", err)
	}

	return nil
}
