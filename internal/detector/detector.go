package detector

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"saxonmahar/yoga-ai/internal/domain"
)

// --- Error Definitions ---
var (
	ErrBadImage   = errors.New("invalid or missing image data")
	ErrBusy       = errors.New("pose detector is at capacity")
	ErrUnparsable = errors.New("failed to parse detection result")
)

// ScriptError reports a detection subprocess that exited non-zero.
type ScriptError struct {
	ExitCode int
	Stderr   string
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("detection script exited with code %d: %s", e.ExitCode, strings.TrimSpace(e.Stderr))
}

// AnalyzeRequest is one image-analysis job handed to the analyzer.
type AnalyzeRequest struct {
	ImageData string // base64 data URI (or bare base64)
	Pose      string // optional pose-type hint
	TTS       bool   // ask the script to voice its corrections
}

// Result is the analyzer's verdict on one frame. Raw carries the full
// JSON object the script printed so handlers can merge it into the
// response envelope without losing fields this struct doesn't model.
type Result struct {
	Pose        string            `json:"pose"`
	Confidence  float64           `json:"confidence"`
	Score       float64           `json:"score"`
	Corrections []string          `json:"corrections,omitempty"`
	Landmarks   []domain.Landmark `json:"landmarks,omitempty"`
	Raw         map[string]any    `json:"-"`
}

// PoseAnalyzer is the port for pose classification. The production
// implementation shells out to a Python script; callers stay agnostic
// so an in-process or RPC-backed analyzer can be swapped in later.
type PoseAnalyzer interface {
	AnalyzeImage(ctx context.Context, req AnalyzeRequest) (*Result, error)
	StartRealtime(ctx context.Context, pose string) (*Result, error)
}

// DecodeImageData turns a data URI (or bare base64 string) into raw
// image bytes. Returns ErrBadImage for anything that does not decode.
func DecodeImageData(imageData string) ([]byte, error) {
	payload := imageData
	if strings.HasPrefix(payload, "data:") {
		idx := strings.Index(payload, ",")
		if idx < 0 {
			return nil, ErrBadImage
		}
		payload = payload[idx+1:]
	}
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, ErrBadImage
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		if data, err = base64.RawStdEncoding.DecodeString(payload); err != nil {
			return nil, ErrBadImage
		}
	}
	return data, nil
}
