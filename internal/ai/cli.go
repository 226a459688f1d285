// # internal/ai/cli.go
package ai

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"docwatch/internal/shared/observability"
	"docwatch/internal/shared/util"
)

// DefaultTimeout bounds a single assistant subprocess call. On expiry the
// subprocess is killed and the call fails, which triggers the retry policy.
const DefaultTimeout = 30 * time.Second

// CLIAssistant runs an external assistant binary in non-interactive mode,
// feeding the prompt on stdin and reading the reply from stdout.
type CLIAssistant struct {
	command string
	args    []string
	timeout time.Duration
	limiter *util.Limiter
	cache   *ResponseCache
}

type Option func(*CLIAssistant)

func WithTimeout(d time.Duration) Option {
	return func(a *CLIAssistant) {
		if d > 0 {
			a.timeout = d
		}
	}
}

func WithRateLimit(perSecond float64, burst int) Option {
	return func(a *CLIAssistant) { a.limiter = util.NewLimiter(perSecond, burst) }
}

func WithCache(cache *ResponseCache) Option {
	return func(a *CLIAssistant) { a.cache = cache }
}

func NewCLIAssistant(command string, args []string, opts ...Option) *CLIAssistant {
	a := &CLIAssistant{
		command: command,
		args:    args,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Preflight verifies the binary resolves and answers a trivial invocation.
func (a *CLIAssistant) Preflight(ctx context.Context) error {
	if a.command == "" {
		return ErrUnavailable
	}
	if _, err := exec.LookPath(a.command); err != nil {
		return fmt.Errorf("%w: %s not installed", ErrUnavailable, a.command)
	}

	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := exec.CommandContext(probeCtx, a.command, "--version").Run(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (a *CLIAssistant) Ask(ctx context.Context, prompt string) (*Response, error) {
	if a.cache != nil {
		if resp, ok := a.cache.Get("ask", prompt); ok {
			observability.AssistantCacheHits.Inc()
			return resp, nil
		}
	}

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx, 1); err != nil {
			return nil, err
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	cmd := exec.CommandContext(callCtx, a.command, a.args...)
	cmd.Stdin = strings.NewReader(prompt)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		observability.AssistantCallsTotal.WithLabelValues("error").Inc()
		if callCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("assistant call timed out after %s", a.timeout)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("assistant call failed: %s", msg)
	}

	observability.AssistantCallsTotal.WithLabelValues("ok").Inc()
	resp := buildResponse(stdout.String())
	if a.cache != nil {
		a.cache.Put("ask", prompt, resp)
	}
	return resp, nil
}

// buildResponse extracts structured JSON from the raw reply. Absence of a
// parseable payload is not an error; the raw text is kept for the caller.
func buildResponse(raw string) *Response {
	resp := &Response{Raw: raw}
	payload := ExtractJSON(raw)
	if payload == "" {
		resp.ErrText = "no structured payload in assistant output"
		return resp
	}
	resp.Structured = []byte(payload)
	resp.Success = true
	return resp
}
