package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"saxonmahar/yoga-ai/internal/detector"
	"saxonmahar/yoga-ai/internal/repository"
	"saxonmahar/yoga-ai/internal/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrSnapshotDisabled = errors.New("snapshot storage is not configured")
)

// Detection wraps the analyzer's verdict with the archived snapshot key
// (empty when archival is off or failed).
type Detection struct {
	Result      *detector.Result
	SnapshotKey string
}

// DetectionService orchestrates pose analysis: it delegates to the
// PoseAnalyzer port and archives the analyzed frame when object storage
// is configured.
type DetectionService interface {
	Detect(ctx context.Context, userID primitive.ObjectID, req detector.AnalyzeRequest) (*Detection, error)
	StartRealtime(ctx context.Context, pose string) (*detector.Result, error)
	SnapshotURL(ctx context.Context, userID, attemptID primitive.ObjectID) (string, error)
}

type detectionService struct {
	analyzer    detector.PoseAnalyzer
	yogaRepo    repository.YogaSessionRepository
	fileStorage storage.FileStorage // nil when archival is disabled
}

// NewDetectionService creates a new instance of detectionService.
// fileStorage may be nil; snapshots are then skipped entirely.
func NewDetectionService(analyzer detector.PoseAnalyzer, yogaRepo repository.YogaSessionRepository, fileStorage storage.FileStorage) DetectionService {
	return &detectionService{
		analyzer:    analyzer,
		yogaRepo:    yogaRepo,
		fileStorage: fileStorage,
	}
}

// Detect runs one frame through the analyzer. Snapshot archival is
// best-effort: a storage failure never fails the detection.
func (s *detectionService) Detect(ctx context.Context, userID primitive.ObjectID, req detector.AnalyzeRequest) (*Detection, error) {
	result, err := s.analyzer.AnalyzeImage(ctx, req)
	if err != nil {
		return nil, err
	}

	detection := &Detection{Result: result}

	if s.fileStorage != nil {
		imageBytes, decodeErr := detector.DecodeImageData(req.ImageData)
		if decodeErr == nil {
			key := fmt.Sprintf("snapshots/%s/%d.jpg", userID.Hex(), time.Now().UnixNano())
			if upErr := s.fileStorage.Upload(ctx, key, "image/jpeg", imageBytes); upErr != nil {
				log.Printf("WARN: failed to archive snapshot for user %s: %v", userID.Hex(), upErr)
			} else {
				detection.SnapshotKey = key
			}
		}
	}

	return detection, nil
}

// StartRealtime forwards the realtime command to the analyzer.
func (s *detectionService) StartRealtime(ctx context.Context, pose string) (*detector.Result, error) {
	return s.analyzer.StartRealtime(ctx, pose)
}

// SnapshotURL presigns a download link for an attempt's archived frame.
// Only the attempt's owner may fetch it.
func (s *detectionService) SnapshotURL(ctx context.Context, userID, attemptID primitive.ObjectID) (string, error) {
	if s.fileStorage == nil {
		return "", ErrSnapshotDisabled
	}

	attempt, err := s.yogaRepo.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrSnapshotNotFound
		}
		return "", err
	}
	// Hide existence from non-owners.
	if attempt.UserID != userID {
		return "", ErrSnapshotNotFound
	}
	if attempt.SnapshotKey == "" {
		return "", ErrSnapshotNotFound
	}

	return s.fileStorage.GeneratePresignedDownloadURL(ctx, attempt.SnapshotKey, storage.DefaultPresignedURLExpiry)
}
