// Package evallog models evaluation-run log files: the JSON documents an
// eval writer packs into one archive per run. Typed fields cover what the
// reader logic steers by; bulky subtrees ride as raw JSON so nothing the
// writer recorded gets dropped on the way through
package evallog

import (
	"bytes"
	"encoding/json"

	pstrings "evalview/internal/platform/strings"
)

// Run status values
const (
	StatusStarted   = "started"
	StatusSuccess   = "success"
	StatusCancelled = "cancelled"
	StatusError     = "error"
)

// Header is the top of a log: identity, plan, results, stats. Never samples
type Header struct {
	Version     int             `json:"version"`
	Status      string          `json:"status"`
	Eval        json.RawMessage `json:"eval,omitempty"`
	Plan        json.RawMessage `json:"plan,omitempty"`
	Results     json.RawMessage `json:"results,omitempty"`
	Stats       json.RawMessage `json:"stats,omitempty"`
	Error       json.RawMessage `json:"error,omitempty"`
	Invalidated bool            `json:"invalidated,omitempty"`
	Reductions  json.RawMessage `json:"reductions,omitempty"`
}

// SampleSummary is the thin per-sample record used for run listings and
// score tables. Field set mirrors what the eval writer emits; composites
// stay raw
type SampleSummary struct {
	ID           json.RawMessage `json:"id"`
	Epoch        int             `json:"epoch"`
	Input        json.RawMessage `json:"input,omitempty"`
	Choices      json.RawMessage `json:"choices,omitempty"`
	Target       json.RawMessage `json:"target,omitempty"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
	Scores       json.RawMessage `json:"scores,omitempty"`
	ModelUsage   json.RawMessage `json:"model_usage,omitempty"`
	StartedAt    string          `json:"started_at,omitempty"`
	CompletedAt  string          `json:"completed_at,omitempty"`
	TotalTime    float64         `json:"total_time,omitempty"`
	WorkingTime  float64         `json:"working_time,omitempty"`
	UUID         string          `json:"uuid,omitempty"`
	Error        string          `json:"error,omitempty"`
	Limit        string          `json:"limit,omitempty"`
	Retries      int             `json:"retries,omitempty"`
	Completed    bool            `json:"completed"`
	MessageCount int             `json:"message_count,omitempty"`
}

// Key identifies one sample run inside a log
func (s SampleSummary) Key() SampleKey {
	return SampleKey{ID: IDString(s.ID), Epoch: s.Epoch}
}

// Summary is a header plus every sample summary, the shape run listings want
type Summary struct {
	Header
	SampleSummaries []SampleSummary `json:"sampleSummaries"`
}

// Log is a fully assembled run: header fields plus every sample body in
// (epoch, id) order. Sample documents pass through untouched
type Log struct {
	Header
	Samples []json.RawMessage `json:"samples,omitempty"`
}

// SampleKey orders and addresses samples; ID is the entry-name rendering of
// the sample id
type SampleKey struct {
	ID    string `json:"id"`
	Epoch int    `json:"epoch"`
}

// idPad is wide enough for any numeric id an eval writer produces
const idPad = 20

// Less orders keys by epoch, then id with numeric ids compared numerically
// via zero padding
func (k SampleKey) Less(o SampleKey) bool {
	if k.Epoch != o.Epoch {
		return k.Epoch < o.Epoch
	}
	return padID(k.ID) < padID(o.ID)
}

func padID(id string) string {
	if len(id) >= idPad {
		return id
	}
	for _, c := range id {
		if c < '0' || c > '9' {
			return id
		}
	}
	return pstrings.PadLeft(id, idPad, '0')
}

// IDString renders a raw sample id the way entry names do: JSON strings
// bare, numbers as written
func IDString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}
