// Package archive uploads call transcripts to S3.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/wolfman30/marcel-receptionist/internal/callrecord"
	"github.com/wolfman30/marcel-receptionist/pkg/logging"
)

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store archives call transcripts. It is a callrecord.Sink.
type S3Store struct {
	bucket   string
	s3Client S3API
	logger   *logging.Logger
	now      func() time.Time
}

var _ callrecord.Sink = (*S3Store)(nil)

// NewS3Store creates an archive store. If bucket is empty, all operations
// are no-ops.
func NewS3Store(s3Client S3API, bucket string, logger *logging.Logger) *S3Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &S3Store{
		bucket:   bucket,
		s3Client: s3Client,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Enabled returns true if archival is configured.
func (s *S3Store) Enabled() bool {
	return s != nil && s.bucket != "" && s.s3Client != nil
}

func (s *S3Store) Name() string { return "s3" }

// Write stores the call transcript and appends it to the monthly manifest.
func (s *S3Store) Write(ctx context.Context, rec callrecord.Record) error {
	if !s.Enabled() {
		return nil
	}
	if rec.CallSid == "" {
		return errors.New("archive: call sid required")
	}

	tr := s.transcript(rec)
	data, err := json.Marshal(tr)
	if err != nil {
		return fmt.Errorf("archive: marshal transcript: %w", err)
	}

	key := TranscriptKey(tr.EndedAt, rec.CallSid)
	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("archive: s3 put %s: %w", key, err)
	}

	s.logger.Info("archived call transcript",
		"call_sid", rec.CallSid,
		"s3_key", key,
		"turns", tr.TurnCount,
		"outcome", tr.Outcome,
	)

	entry := ManifestEntry{
		CallSid:    rec.CallSid,
		S3Key:      key,
		Outcome:    tr.Outcome,
		Salon:      tr.Salon,
		ArchivedAt: tr.ArchivedAt.Format(time.RFC3339),
		TurnCount:  tr.TurnCount,
	}
	if err := s.AppendManifest(ctx, entry); err != nil {
		// The transcript itself is stored.
		s.logger.Warn("failed to append manifest", "error", err, "call_sid", rec.CallSid)
	}
	return nil
}

func (s *S3Store) transcript(rec callrecord.Record) Transcript {
	now := s.now()
	ended := rec.EndedAt
	if ended.IsZero() {
		ended = now
	}
	turns := make([]Turn, 0, len(rec.Turns))
	for _, t := range rec.Turns {
		turns = append(turns, Turn{Role: string(t.Role), Text: t.Text, At: t.At})
	}
	ScrubTurns(turns)
	return Transcript{
		Version:     transcriptVersion,
		CallSid:     rec.CallSid,
		PhoneHash:   HashPhone(rec.CallerPhone),
		KnownCaller: rec.CallerName != "",
		Outcome:     string(rec.Outcome),
		Salon:       rec.Salon,
		Booking: Booking{
			Service: rec.Known.Service,
			Price:   rec.Known.Price,
			Date:    rec.Known.Date,
			Time:    rec.Known.Time,
			Barber:  rec.Known.Barber,
		},
		StartedAt:       rec.StartedAt,
		EndedAt:         ended,
		ArchivedAt:      now,
		DurationSeconds: int(rec.Duration().Seconds()),
		TurnCount:       len(turns),
		Turns:           turns,
	}
}

// TranscriptKey is the object key for a call transcript.
func TranscriptKey(ended time.Time, callSid string) string {
	return fmt.Sprintf("calls/v1/by-date/%d/%02d/%02d/%s.json",
		ended.Year(), ended.Month(), ended.Day(), callSid)
}

// AppendManifest appends a JSONL line to the monthly manifest file.
// S3 has no append, so this is a read-modify-write.
func (s *S3Store) AppendManifest(ctx context.Context, entry ManifestEntry) error {
	if !s.Enabled() {
		return nil
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("archive: marshal manifest entry: %w", err)
	}

	now := s.now()
	manifestKey := fmt.Sprintf("calls/v1/manifests/%d-%02d.jsonl", now.Year(), now.Month())

	var existing []byte
	getResp, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(manifestKey),
	})
	if err != nil {
		if !isNotFound(err) {
			return fmt.Errorf("archive: s3 get manifest: %w", err)
		}
		s.logger.Debug("manifest not found, creating new", "key", manifestKey)
	} else {
		existing, _ = io.ReadAll(getResp.Body)
		getResp.Body.Close()
	}

	var buf bytes.Buffer
	if len(existing) > 0 {
		buf.Write(existing)
		if existing[len(existing)-1] != '\n' {
			buf.WriteByte('\n')
		}
	}
	buf.Write(line)
	buf.WriteByte('\n')

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(manifestKey),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/x-ndjson"),
	})
	if err != nil {
		return fmt.Errorf("archive: s3 put manifest: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	var nsk *s3types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "NoSuchKey") || strings.Contains(msg, "404") || strings.Contains(msg, "not found")
}
