package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/corstar/site-intake/pkg/logging"
)

// ErrArchiveDisabled is returned when no export bucket is configured.
var ErrArchiveDisabled = errors.New("admin: export archive not configured")

// S3API is the subset of the S3 client used by Archiver.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// ManifestEntry is one line of the monthly exports manifest.
type ManifestEntry struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	Rows       int    `json:"rows"`
	ArchivedBy string `json:"archived_by,omitempty"`
	ArchivedAt string `json:"archived_at"`
}

// Archiver stores CSV exports in S3.
type Archiver struct {
	bucket string
	client S3API
	logger *logging.Logger
}

// NewArchiver returns an Archiver; with an empty bucket it reports disabled.
func NewArchiver(client S3API, bucket string, logger *logging.Logger) *Archiver {
	if logger == nil {
		logger = logging.Default()
	}
	return &Archiver{bucket: bucket, client: client, logger: logger}
}

// Enabled returns true if a bucket and client are configured.
func (a *Archiver) Enabled() bool {
	return a != nil && a.bucket != "" && a.client != nil
}

// Put uploads one export and records it in the manifest.
func (a *Archiver) Put(ctx context.Context, entry ManifestEntry, body []byte, now time.Time) (string, error) {
	if !a.Enabled() {
		return "", ErrArchiveDisabled
	}

	now = now.UTC()
	key := fmt.Sprintf("exports/%d/%02d/%s", now.Year(), now.Month(), ExportFilename(entry.Label, now))
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return "", fmt.Errorf("admin: s3 put %s: %w", key, err)
	}

	entry.Key = key
	entry.ArchivedAt = now.Format(time.RFC3339)
	if err := a.appendManifest(ctx, entry, now); err != nil {
		a.logger.Warn("failed to append export manifest", "error", err, "key", key)
	}
	return key, nil
}

// appendManifest does a read-modify-write of the monthly JSONL manifest.
func (a *Archiver) appendManifest(ctx context.Context, entry ManifestEntry, now time.Time) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("admin: marshal manifest entry: %w", err)
	}
	manifestKey := fmt.Sprintf("exports/manifests/%d-%02d.jsonl", now.Year(), now.Month())

	var existing []byte
	resp, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(manifestKey),
	})
	switch {
	case err == nil:
		existing, err = io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("admin: read manifest: %w", err)
		}
	case isNoSuchKey(err):
	default:
		return fmt.Errorf("admin: get manifest: %w", err)
	}

	var buf bytes.Buffer
	buf.Write(existing)
	if len(existing) > 0 && existing[len(existing)-1] != '\n' {
		buf.WriteByte('\n')
	}
	buf.Write(line)
	buf.WriteByte('\n')

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(manifestKey),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/x-ndjson"),
	})
	if err != nil {
		return fmt.Errorf("admin: s3 put manifest: %w", err)
	}
	return nil
}

func isNoSuchKey(err error) bool {
	var nsk *s3types.NoSuchKey
	return errors.As(err, &nsk)
}
