package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"
	"time"
)

const defaultScriptTimeout = 30 * time.Second

// ScriptAnalyzer runs an external pose-detection script per request.
// Each analysis spawns one subprocess; a semaphore bounds how many run
// at once so an upload flood cannot exhaust file descriptors or temp
// disk.
type ScriptAnalyzer struct {
	interpreter string // e.g. "python3"
	script      string
	workDir     string // temp image directory; "" means the OS default
	timeout     time.Duration
	sem         chan struct{}
}

// NewScriptAnalyzer creates an analyzer shelling out to the given script.
func NewScriptAnalyzer(interpreter, script, workDir string, timeout time.Duration, maxConcurrent int) *ScriptAnalyzer {
	if interpreter == "" {
		interpreter = "python3"
	}
	if timeout <= 0 {
		timeout = defaultScriptTimeout
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	return &ScriptAnalyzer{
		interpreter: interpreter,
		script:      script,
		workDir:     workDir,
		timeout:     timeout,
		sem:         make(chan struct{}, maxConcurrent),
	}
}

// AnalyzeImage writes the image to a temp file, invokes the script with
// --image and translates its stdout JSON into a Result. The temp file is
// removed on every path; the subprocess is killed when ctx is cancelled
// or the configured timeout elapses.
func (a *ScriptAnalyzer) AnalyzeImage(ctx context.Context, req AnalyzeRequest) (*Result, error) {
	select {
	case a.sem <- struct{}{}:
		defer func() { <-a.sem }()
	default:
		return nil, ErrBusy
	}

	imageBytes, err := DecodeImageData(req.ImageData)
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(a.workDir, "pose-*.jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp image: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if rmErr := os.Remove(tmpPath); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Printf("WARN: failed to remove temp image %s: %v", tmpPath, rmErr)
		}
	}()

	if _, err = tmp.Write(imageBytes); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to write temp image: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to write temp image: %w", err)
	}

	args := []string{a.script, "--image", tmpPath}
	if req.Pose != "" {
		args = append(args, "--pose", req.Pose)
	}
	args = append(args, "--tts", strconv.FormatBool(req.TTS))

	return a.run(ctx, args)
}

// StartRealtime asks the script to begin a realtime capture loop. The
// script acknowledges with a single JSON object on stdout.
func (a *ScriptAnalyzer) StartRealtime(ctx context.Context, pose string) (*Result, error) {
	select {
	case a.sem <- struct{}{}:
		defer func() { <-a.sem }()
	default:
		return nil, ErrBusy
	}

	args := []string{a.script, "--realtime"}
	if pose != "" {
		args = append(args, "--pose", pose)
	}
	return a.run(ctx, args)
}

func (a *ScriptAnalyzer) run(ctx context.Context, args []string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, a.interpreter, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("detection script timed out after %s", a.timeout)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &ScriptError{ExitCode: exitErr.ExitCode(), Stderr: stderr.String()}
		}
		return nil, fmt.Errorf("failed to start detection script: %w", err)
	}

	return parseResult(stdout.Bytes())
}

// parseResult decodes the script's stdout. The script contract is a
// single JSON object; anything else is ErrUnparsable even on exit 0.
func parseResult(out []byte) (*Result, error) {
	var raw map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(out), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsable, err)
	}

	var result Result
	if err := json.Unmarshal(bytes.TrimSpace(out), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsable, err)
	}
	result.Raw = raw
	return &result, nil
}
