package contract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
)

// CommandQualityRunner invokes an external quality-check command per
// dataset. The dataset name is appended as the final argument and the
// command must print a JSON object {"passed": bool, "score": float,
// "detail": string} on stdout. The monitor only aggregates the outcome;
// what the checks do is the external tool's concern.
type CommandQualityRunner struct {
	command []string
}

// NewCommandQualityRunner creates a runner for the given command line.
func NewCommandQualityRunner(command []string) (*CommandQualityRunner, error) {
	if len(command) == 0 {
		return nil, fmt.Errorf("quality command cannot be empty")
	}
	return &CommandQualityRunner{command: command}, nil
}

// RunCheck executes the command under the caller's context, so the
// monitor's query timeout bounds the invocation.
func (r *CommandQualityRunner) RunCheck(ctx context.Context, dataset string) (QualityResult, error) {
	args := append(append([]string(nil), r.command[1:]...), dataset)
	cmd := exec.CommandContext(ctx, r.command[0], args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// A non-zero exit with parseable output is still a result: the
		// tool reports failed checks that way.
		var result QualityResult
		if jsonErr := json.Unmarshal(stdout.Bytes(), &result); jsonErr == nil {
			return result, nil
		}
		return QualityResult{}, fmt.Errorf("quality command failed: %w (stderr: %s)", err, stderr.String())
	}

	var result QualityResult
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		return QualityResult{}, fmt.Errorf("quality command produced invalid output: %w", err)
	}
	return result, nil
}
