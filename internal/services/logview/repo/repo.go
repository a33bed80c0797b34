// Package repo reads eval log documents out of one open archive handle
package repo

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"evalview/internal/adapters/remotezip"
	"evalview/internal/core/evallog"
	"evalview/internal/modkit/readkit"
	perr "evalview/internal/platform/errors"
)

// Repo defines the per-archive read surface logview workflows build on.
// Presence-style methods report (zero, false, nil) for a member that simply
// is not in the archive; an error means the member exists but could not be
// read or decoded
type Repo interface {
	Header(ctx context.Context) (evallog.Header, bool, error)
	JournalStart(ctx context.Context) (evallog.Header, bool, error)
	Summaries(ctx context.Context) ([]evallog.SampleSummary, bool, error)
	SummaryFragments() []string
	SummaryFragment(ctx context.Context, name string) ([]evallog.SampleSummary, error)
	SampleNames() []string
	Sample(ctx context.Context, id string, epoch int, maxBytes int64) (json.RawMessage, error)
	SampleByName(ctx context.Context, name string, maxBytes int64) (json.RawMessage, error)
	Entries() []remotezip.Entry
	ETag() string
	Size() int64
}

// Zip implements Repo over one archive handle
type Zip struct{ a *remotezip.Archive }

// NewZip returns a readkit.Binder that wraps archive handles in a Repo
func NewZip() readkit.Binder[Repo] {
	return readkit.BindFunc[Repo](func(a *remotezip.Archive) Repo {
		return &Zip{a: readkit.RequireArchive(a)}
	})
}

// Header reads header.json when present
func (z *Zip) Header(ctx context.Context) (evallog.Header, bool, error) {
	return z.readHeader(ctx, evallog.HeaderEntry)
}

// JournalStart reads the journal start record written when the run began
func (z *Zip) JournalStart(ctx context.Context) (evallog.Header, bool, error) {
	return z.readHeader(ctx, evallog.JournalStartEntry)
}

func (z *Zip) readHeader(ctx context.Context, name string) (evallog.Header, bool, error) {
	if _, ok := z.a.Stat(name); !ok {
		return evallog.Header{}, false, nil
	}
	var h evallog.Header
	if err := z.a.ReadJSON(ctx, name, 0, &h); err != nil {
		return evallog.Header{}, false, err
	}
	return h, true, nil
}

// Summaries reads the consolidated summaries member when present
func (z *Zip) Summaries(ctx context.Context) ([]evallog.SampleSummary, bool, error) {
	if _, ok := z.a.Stat(evallog.SummariesEntry); !ok {
		return nil, false, nil
	}
	var out []evallog.SampleSummary
	if err := z.a.ReadJSON(ctx, evallog.SummariesEntry, 0, &out); err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// SummaryFragments lists journal summary members in name order
func (z *Zip) SummaryFragments() []string {
	var out []string
	for _, n := range z.a.Names() {
		if evallog.IsJournalSummary(n) {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

// SummaryFragment reads one journal summary batch
func (z *Zip) SummaryFragment(ctx context.Context, name string) ([]evallog.SampleSummary, error) {
	var out []evallog.SampleSummary
	if err := z.a.ReadJSON(ctx, name, 0, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SampleNames lists members under the samples dir in directory order.
// Callers decide what to do with names that do not parse as sample entries
func (z *Zip) SampleNames() []string {
	var out []string
	for _, n := range z.a.Names() {
		if strings.HasPrefix(n, evallog.SamplesDir) && !strings.HasSuffix(n, "/") {
			out = append(out, n)
		}
	}
	return out
}

// Sample reads one sample body addressed by (id, epoch)
func (z *Zip) Sample(ctx context.Context, id string, epoch int, maxBytes int64) (json.RawMessage, error) {
	name := evallog.SampleEntryName(id, epoch)
	if _, ok := z.a.Stat(name); !ok {
		return nil, perr.NotFoundf("sample id %q epoch %d not found in %s", id, epoch, z.a.URL())
	}
	return z.SampleByName(ctx, name, maxBytes)
}

// SampleByName reads one sample body addressed by archive member name
func (z *Zip) SampleByName(ctx context.Context, name string, maxBytes int64) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := z.a.ReadJSON(ctx, name, maxBytes, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Entries returns every directory record in directory order
func (z *Zip) Entries() []remotezip.Entry {
	names := z.a.Names()
	out := make([]remotezip.Entry, 0, len(names))
	for _, n := range names {
		if e, ok := z.a.Stat(n); ok {
			out = append(out, e)
		}
	}
	return out
}

// ETag returns the validator the archive was opened against
func (z *Zip) ETag() string { return z.a.ETag() }

// Size returns the archive length in bytes
func (z *Zip) Size() int64 { return z.a.Size() }
