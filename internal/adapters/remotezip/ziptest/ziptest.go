// Package ziptest builds in-memory zip fixtures and fake transports so the
// remote reader can be exercised without a server
package ziptest

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"testing"

	"evalview/internal/adapters/remotezip"
	perr "evalview/internal/platform/errors"
)

// File is one entry to place in a built archive
type File struct {
	Name   string
	Body   []byte
	Stored bool // skip compression; default is deflate
}

// JSONFile marshals v into a File body
func JSONFile(t *testing.T, name string, v any) File {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("ziptest marshal %q: %v", name, err)
	}
	return File{Name: name, Body: b}
}

// Build returns a complete zip archive holding files in order
func Build(t *testing.T, files ...File) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, f := range files {
		method := zip.Deflate
		if f.Stored {
			method = zip.Store
		}
		fw, err := w.CreateHeader(&zip.FileHeader{Name: f.Name, Method: method})
		if err != nil {
			t.Fatalf("ziptest create %q: %v", f.Name, err)
		}
		if _, err := fw.Write(f.Body); err != nil {
			t.Fatalf("ziptest write %q: %v", f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("ziptest close: %v", err)
	}
	return buf.Bytes()
}

// Range records one FetchRange call, bounds inclusive
type Range struct {
	Start, End int64
}

// Len returns the number of bytes the range covers
func (r Range) Len() int64 { return r.End - r.Start + 1 }

// Transport serves a byte slice and records every call made against it.
// The error hooks fail specific calls for fault injection
type Transport struct {
	Data []byte
	ETag string

	// SizeErr fails every size probe when set
	SizeErr error
	// RangeErr may veto individual range calls; nil return lets them through
	RangeErr func(start, end int64) error

	mu     sync.Mutex
	ranges []Range
	sizes  int
}

// New returns a Transport serving data
func New(data []byte) *Transport { return &Transport{Data: data} }

// FetchSize reports the fixture length
func (tr *Transport) FetchSize(_ context.Context, _ string) (int64, error) {
	tr.mu.Lock()
	tr.sizes++
	tr.mu.Unlock()
	if tr.SizeErr != nil {
		return 0, tr.SizeErr
	}
	return int64(len(tr.Data)), nil
}

// Probe reports length plus the fixture ETag
func (tr *Transport) Probe(ctx context.Context, url string) (remotezip.SizeProbe, error) {
	n, err := tr.FetchSize(ctx, url)
	if err != nil {
		return remotezip.SizeProbe{}, err
	}
	return remotezip.SizeProbe{Size: n, ETag: tr.ETag}, nil
}

// FetchRange serves the inclusive range [start, end] out of Data
func (tr *Transport) FetchRange(_ context.Context, _ string, start, end int64) ([]byte, error) {
	tr.mu.Lock()
	tr.ranges = append(tr.ranges, Range{Start: start, End: end})
	tr.mu.Unlock()

	if tr.RangeErr != nil {
		if err := tr.RangeErr(start, end); err != nil {
			return nil, err
		}
	}
	if start < 0 || end < start || end >= int64(len(tr.Data)) {
		return nil, perr.Networkf("ziptest range %d-%d outside %d bytes", start, end, len(tr.Data))
	}
	out := make([]byte, end-start+1)
	copy(out, tr.Data[start:end+1])
	return out, nil
}

// Ranges returns a copy of every range requested so far
func (tr *Transport) Ranges() []Range {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	out := make([]Range, len(tr.ranges))
	copy(out, tr.ranges)
	return out
}

// SizeCalls returns how many size probes were made
func (tr *Transport) SizeCalls() int {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return tr.sizes
}

// MaxRangeLen returns the widest single range requested so far, 0 when none
func (tr *Transport) MaxRangeLen() int64 {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	var max int64
	for _, r := range tr.ranges {
		if n := r.Len(); n > max {
			max = n
		}
	}
	return max
}

// Reset clears the recorded call log, keeping the data and hooks
func (tr *Transport) Reset() {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.ranges = nil
	tr.sizes = 0
}
