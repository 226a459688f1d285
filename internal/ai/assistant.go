// Package ai wraps the optional external reasoning assistant. The production
// implementation shells out to an assistant CLI; analysis never depends on it
// for correctness, so every failure path here is soft.
package ai

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrUnavailable is returned by Preflight when the assistant cannot be used
// for this run (missing binary, bad auth). The caller logs one warning and
// proceeds heuristic-only.
var ErrUnavailable = errors.New("assistant unavailable")

// Response carries the assistant's raw output plus any structured JSON that
// could be extracted from it. A malformed payload leaves Success false with
// the raw text preserved.
type Response struct {
	Raw        string
	Structured json.RawMessage
	Success    bool
	ErrText    string
}

// Decode unmarshals the structured payload into out. It fails when no
// structured data was extracted.
func (r *Response) Decode(out any) error {
	if !r.Success || len(r.Structured) == 0 {
		return errors.New("no structured payload")
	}
	return json.Unmarshal(r.Structured, out)
}

// Assistant is the single-operation reasoning collaborator interface.
type Assistant interface {
	// Preflight checks reachability once, before any analysis begins.
	Preflight(ctx context.Context) error
	// Ask sends one prompt and returns the assistant's response.
	Ask(ctx context.Context, prompt string) (*Response, error)
}
