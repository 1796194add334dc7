package records

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/emogo-app/core/internal/models"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrNoVideo  = errors.New("no video stored for this record")
)

// ValidationError names the submitted field that failed and why.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string { return e.Field + " " + e.Reason }

type Service struct {
	store Store
	log   *zap.Logger
}

func NewService(store Store, log *zap.Logger) *Service {
	return &Service{store: store, log: log}
}

// Submit validates one submission, decodes the video payload exactly once,
// and persists the record. uploaded_at is stamped at the moment validation
// succeeds, not at request arrival. Nothing is stored on failure.
func (s *Service) Submit(ctx context.Context, dto *SubmitRecordDTO) (string, error) {
	recordedAt, err := time.Parse(time.RFC3339, dto.RecordedAt)
	if err != nil {
		return "", &ValidationError{Field: "recorded_at", Reason: "must be a valid RFC 3339 timestamp"}
	}

	var video []byte
	if dto.VideoData != "" {
		video, err = base64.StdEncoding.DecodeString(dto.VideoData)
		if err != nil {
			return "", &ValidationError{Field: "video_data", Reason: "must be valid base64"}
		}
	}

	rec := &models.RecordModel{
		MoodLabel:    dto.MoodLabel,
		MoodScore:    dto.MoodScore,
		Latitude:     dto.Latitude,
		Longitude:    dto.Longitude,
		RecordedAt:   recordedAt.UTC(),
		UploadedAt:   time.Now().UTC(),
		VideoData:    video,
		VideoPresent: len(video) > 0,
	}

	id, err := s.store.Insert(ctx, rec)
	if err != nil {
		return "", fmt.Errorf("insert record: %w", err)
	}

	s.log.Info("已寫入一筆心情紀錄",
		zap.String("id", id.Hex()),
		zap.String("mood", dto.MoodLabel),
		zap.Int("score", dto.MoodScore),
		zap.Bool("video", rec.VideoPresent),
	)
	return id.Hex(), nil
}

// Video loads one record and its stored bytes. A missing record and a
// record without video are distinct conditions.
func (s *Service) Video(ctx context.Context, id primitive.ObjectID) (*models.RecordModel, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load record %s: %w", id.Hex(), err)
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	if !rec.VideoPresent || len(rec.VideoData) == 0 {
		return nil, ErrNoVideo
	}
	return rec, nil
}
