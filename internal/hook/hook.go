package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/sensiurl/sensiurl/internal/scan"
)

// findingJSON is the JSON payload sent to the hook command via stdin.
type findingJSON struct {
	URL           string `json:"url"`
	Category      string `json:"category"`
	Severity      string `json:"severity"`
	Status        string `json:"status"`
	HTTPStatus    int    `json:"http_status,omitempty"`
	ContentType   string `json:"content_type,omitempty"`
	ContentLength int64  `json:"content_length,omitempty"`
	Rule          string `json:"rule,omitempty"`
	Reason        string `json:"reason,omitempty"`
	Evidence      string `json:"evidence,omitempty"`
}

// Runner executes a shell command for each reported finding.
type Runner struct {
	cmd   string
	quiet bool
}

// NewRunner creates a hook runner. cmd is the shell command to execute.
func NewRunner(cmd string, quiet bool) *Runner {
	return &Runner{cmd: cmd, quiet: quiet}
}

// Run executes the hook command with the finding as JSON on stdin.
// The command runs with a 30-second timeout. Errors are logged but
// do not halt the scan.
func (r *Runner) Run(f *scan.Finding) {
	payload := findingJSON{
		URL:         f.URL,
		Category:    string(f.Category),
		Severity:    f.Severity.String(),
		Status:      f.Status,
		HTTPStatus:  f.StatusCode,
		ContentType: f.ContentType,
		Rule:        f.Rule,
		Reason:      f.Reason,
		Evidence:    f.Evidence,
	}
	if f.ContentLength >= 0 {
		payload.ContentLength = f.ContentLength
	}

	data, err := json.Marshal(payload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[hook] marshal error: %v\n", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	shell, args := shellCommand()
	// Replace {url}, {severity}, {category}, {status} placeholders.
	expanded := r.cmd
	expanded = strings.ReplaceAll(expanded, "{url}", f.URL)
	expanded = strings.ReplaceAll(expanded, "{severity}", f.Severity.String())
	expanded = strings.ReplaceAll(expanded, "{category}", string(f.Category))
	expanded = strings.ReplaceAll(expanded, "{status}", f.Status)
	expanded = strings.ReplaceAll(expanded, "{http_status}", fmt.Sprintf("%d", f.StatusCode))

	cmd := exec.CommandContext(ctx, shell, append(args, expanded)...)
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stderr = os.Stderr

	output, err := cmd.Output()
	if err != nil {
		if !r.quiet {
			fmt.Fprintf(os.Stderr, "[hook] error: %v\n", err)
		}
		return
	}

	if len(output) > 0 && !r.quiet {
		fmt.Fprintf(os.Stderr, "[hook] %s", output)
	}
}

func shellCommand() (string, []string) {
	if runtime.GOOS == "windows" {
		return "cmd", []string{"/C"}
	}
	return "sh", []string{"-c"}
}
