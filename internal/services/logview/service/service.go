// Package service contains logview workflows
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"evalview/internal/adapters/remotezip"
	"evalview/internal/core/evallog"
	"evalview/internal/modkit/readkit"
	"evalview/internal/platform/batch"
	perr "evalview/internal/platform/errors"
	"evalview/internal/platform/logger"
	"evalview/internal/services/logview/domain"
	"evalview/internal/services/logview/repo"
)

// Service defines the service contract for logview
type Service interface{ domain.ReaderPort }

const defaultConcurrency = 5

// Options tunes reader behavior
type Options struct {
	// MaxSampleBytes caps the on-wire bytes of a single sample read served
	// through ReadSample; zero disables the cap. Full log assembly is never
	// capped
	MaxSampleBytes int64

	// Concurrency bounds parallel entry reads during summary and full log
	// assembly; zero means 5
	Concurrency int

	// OpenTimeout bounds archive opens for callers whose context carries no
	// deadline; zero means no fallback
	OpenTimeout time.Duration
}

// Svc implements the Service interface
type Svc struct {
	opener readkit.Opener
	binder readkit.Binder[repo.Repo]
	opts   Options
}

// New creates a logview service over an archive opener
func New(opener readkit.Opener, binder readkit.Binder[repo.Repo], opts Options) *Svc {
	if opener == nil {
		panic("logview.Service requires a non nil Opener")
	}
	if binder == nil {
		panic("logview.Service requires a non nil Repo binder")
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	return &Svc{opener: opener, binder: binder, opts: opts}
}

func (s *Svc) repoFor(ctx context.Context, file string) (repo.Repo, error) {
	a, err := readkit.OpenWithin(ctx, s.opts.OpenTimeout, s.opener, file)
	if err != nil {
		return nil, err
	}
	return s.binder.Bind(a), nil
}

// ReadHeader returns the run header, synthesized from the journal when the
// run never wrote one
func (s *Svc) ReadHeader(ctx context.Context, file string) (evallog.Header, error) {
	r, err := s.repoFor(ctx, file)
	if err != nil {
		return evallog.Header{}, err
	}
	return s.header(ctx, r, file)
}

// header resolves the run header. Runs that stopped before finalization have
// no header member, but their journal start record carries the same identity
// fields, so it stands in with status forced to started
func (s *Svc) header(ctx context.Context, r repo.Repo, file string) (evallog.Header, error) {
	h, ok, err := r.Header(ctx)
	if err != nil {
		return evallog.Header{}, err
	}
	if ok {
		return h, nil
	}
	h, ok, err = r.JournalStart(ctx)
	if err != nil {
		return evallog.Header{}, err
	}
	if !ok {
		return evallog.Header{}, perr.NotFoundf("log %s has no header or journal start record", file)
	}
	h.Status = evallog.StatusStarted
	return h, nil
}

// ReadSummary returns the header plus every sample summary in (epoch, id)
// order
func (s *Svc) ReadSummary(ctx context.Context, file string) (evallog.Summary, error) {
	r, err := s.repoFor(ctx, file)
	if err != nil {
		return evallog.Summary{}, err
	}

	var (
		hdr  evallog.Header
		sums []evallog.SampleSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		h, err := s.header(gctx, r, file)
		if err != nil {
			return err
		}
		hdr = h
		return nil
	})
	g.Go(func() error {
		ss, err := s.summaries(gctx, r)
		if err != nil {
			return err
		}
		sums = ss
		return nil
	})
	if err := g.Wait(); err != nil {
		return evallog.Summary{}, err
	}
	return evallog.Summary{Header: hdr, SampleSummaries: sums}, nil
}

// summaries prefers the consolidated member and falls back to the union of
// journal fragments for runs that stopped before consolidation. A fragment
// that fails to read is logged and skipped; cancellations and deadlines
// still fail the whole call
func (s *Svc) summaries(ctx context.Context, r repo.Repo) ([]evallog.SampleSummary, error) {
	ss, ok, err := r.Summaries(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		return sortSummaries(ss), nil
	}

	frags := r.SummaryFragments()
	if len(frags) == 0 {
		return []evallog.SampleSummary{}, nil
	}

	res := batch.Map(ctx, s.opts.Concurrency, frags, func(ctx context.Context, name string) ([]evallog.SampleSummary, error) {
		return r.SummaryFragment(ctx, name)
	})

	// fragments are keyed so a sample that appears in more than one batch
	// resolves to the latest write
	byKey := make(map[evallog.SampleKey]evallog.SampleSummary)
	for i, rr := range res {
		if rr.Err != nil {
			if perr.IsCanceled(rr.Err) || perr.IsTimeout(rr.Err) {
				return nil, rr.Err
			}
			logger.C(ctx).Warn().
				Str("entry", frags[i]).
				Err(rr.Err).
				Msg("skipping unreadable summary fragment")
			continue
		}
		for _, sum := range rr.Value {
			byKey[sum.Key()] = sum
		}
	}

	out := make([]evallog.SampleSummary, 0, len(byKey))
	for _, sum := range byKey {
		out = append(out, sum)
	}
	return sortSummaries(out), nil
}

// ReadSample returns one sample body as recorded by the eval writer
func (s *Svc) ReadSample(ctx context.Context, file, id string, epoch int) (json.RawMessage, error) {
	r, err := s.repoFor(ctx, file)
	if err != nil {
		return nil, err
	}
	return r.Sample(ctx, id, epoch, s.opts.MaxSampleBytes)
}

type sampleRef struct {
	key  evallog.SampleKey
	name string
}

// ReadFullLog assembles the header and every sample body in (epoch, id)
// order. Entries under the samples dir whose names do not parse are logged
// and skipped; a sample that fails to read fails the whole call
func (s *Svc) ReadFullLog(ctx context.Context, file string) (evallog.Log, error) {
	r, err := s.repoFor(ctx, file)
	if err != nil {
		return evallog.Log{}, err
	}
	hdr, err := s.header(ctx, r, file)
	if err != nil {
		return evallog.Log{}, err
	}

	names := r.SampleNames()
	refs := make([]sampleRef, 0, len(names))
	for _, name := range names {
		k, ok := evallog.ParseSampleEntryName(name)
		if !ok {
			logger.C(ctx).Warn().
				Str("entry", name).
				Msg("skipping sample entry with unrecognized name")
			continue
		}
		refs = append(refs, sampleRef{key: k, name: name})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].key.Less(refs[j].key) })

	res := batch.Map(ctx, s.opts.Concurrency, refs, func(ctx context.Context, ref sampleRef) (json.RawMessage, error) {
		return r.SampleByName(ctx, ref.name, 0)
	})
	samples := make([]json.RawMessage, 0, len(res))
	for _, rr := range res {
		if rr.Err != nil {
			return evallog.Log{}, rr.Err
		}
		samples = append(samples, rr.Value)
	}
	return evallog.Log{Header: hdr, Samples: samples}, nil
}

// Entries lists archive members without fetching any payloads
func (s *Svc) Entries(ctx context.Context, file string) (domain.Listing, error) {
	r, err := s.repoFor(ctx, file)
	if err != nil {
		return domain.Listing{}, err
	}
	ents := r.Entries()
	out := make([]domain.Entry, 0, len(ents))
	for _, e := range ents {
		out = append(out, domain.Entry{
			Name:             e.Name,
			Method:           methodString(e.Method),
			CompressedSize:   uint64(e.CompressedSize),
			UncompressedSize: uint64(e.UncompressedSize),
		})
	}
	return domain.Listing{File: file, ETag: r.ETag(), Size: r.Size(), Entries: out}, nil
}

// Invalidate drops any cached handle for the URL. Openers without a cache
// have nothing to drop
func (s *Svc) Invalidate(file string) domain.InvalidateResult {
	dropped := false
	if c, ok := s.opener.(interface{ Invalidate(string) bool }); ok {
		dropped = c.Invalidate(file)
	}
	return domain.InvalidateResult{File: file, Dropped: dropped}
}

// Purge drops every cached handle
func (s *Svc) Purge() domain.PurgeResult {
	n := 0
	if c, ok := s.opener.(interface{ Purge() int }); ok {
		n = c.Purge()
	}
	return domain.PurgeResult{Dropped: n}
}

func sortSummaries(ss []evallog.SampleSummary) []evallog.SampleSummary {
	sort.SliceStable(ss, func(i, j int) bool { return ss[i].Key().Less(ss[j].Key()) })
	return ss
}

func methodString(m uint16) string {
	switch m {
	case remotezip.MethodStored:
		return "stored"
	case remotezip.MethodDeflate:
		return "deflate"
	default:
		return fmt.Sprintf("method-%d", m)
	}
}
