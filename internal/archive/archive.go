// Package archive copies completed interview sessions and their reports to S3.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/spigell/hire-engine/internal/model"
)

const genericFolder = "generic"

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Record is the archived document.
type Record struct {
	Session *model.InterviewSession `json:"session"`
	Report  *model.AssessmentReport `json:"report,omitempty"`
}

type Archiver struct {
	client objectPutter
	bucket string
	prefix string
	logger *zap.Logger
}

// New loads the default AWS configuration for region and targets bucket.
func New(ctx context.Context, bucket, prefix, region string, logger *zap.Logger) (*Archiver, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, errors.New("archive bucket is required")
	}

	opts := []func(*config.LoadOptions) error{}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return newArchiver(s3.NewFromConfig(cfg), bucket, prefix, logger), nil
}

func newArchiver(client objectPutter, bucket, prefix string, logger *zap.Logger) *Archiver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Archiver{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/"), logger: logger}
}

// Key returns <prefix>/<job id or "generic">/<session id>.json.
func (a *Archiver) Key(session *model.InterviewSession) string {
	folder := genericFolder
	if !session.Generic() {
		folder = session.JobID.String()
	}
	return path.Join(a.prefix, folder, session.ID.String()+".json")
}

// Archive uploads a completed session together with its report.
func (a *Archiver) Archive(ctx context.Context, session *model.InterviewSession, report *model.AssessmentReport) error {
	if session == nil {
		return errors.New("session is required")
	}
	if !session.Closed() {
		return fmt.Errorf("session %s is %s, only completed sessions are archived", session.ID, session.State)
	}

	body, err := json.Marshal(Record{Session: session, Report: report})
	if err != nil {
		return fmt.Errorf("encode archive record: %w", err)
	}

	key := a.Key(session)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}

	a.logger.Info("session archived",
		zap.String("bucket", a.bucket),
		zap.String("key", key),
		zap.Int("bytes", len(body)),
	)
	return nil
}
