package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"
)

// Executor runs exporters as subprocesses with a hard deadline.
type Executor struct {
	timeout time.Duration
}

// NewExecutor creates an Executor that kills any exporter still running
// after the given timeout.
func NewExecutor(timeout time.Duration) *Executor {
	return &Executor{timeout: timeout}
}

// Execute runs one exporter against the given request. The request is
// marshaled to JSON and fed to the exporter on stdin; stdout must contain a
// single JSON Response. The process runs in the exporter's own directory.
func (e *Executor) Execute(exp *Exporter, req *Request) (*Response, error) {
	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, exp.Executable)
	cmd.Dir = exp.Path
	cmd.Stdin = bytes.NewReader(reqJSON)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("exporter timed out after %s", e.timeout)
	}
	if runErr != nil {
		if msg := stderr.String(); msg != "" {
			return nil, fmt.Errorf("exporter failed: %w, stderr: %s", runErr, msg)
		}
		return nil, fmt.Errorf("exporter failed: %w", runErr)
	}

	var response Response
	if err := json.Unmarshal(stdout.Bytes(), &response); err != nil {
		return nil, fmt.Errorf("parse exporter response: %w, stdout: %s", err, stdout.String())
	}

	return &response, nil
}
