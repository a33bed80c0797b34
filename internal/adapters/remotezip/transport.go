package remotezip

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	perr "evalview/internal/platform/errors"
	"evalview/internal/platform/logger"
)

const (
	defaultTimeout = 30 * time.Second
	defaultUA      = "evalview-reader"
)

// Transport fetches byte ranges of a remote resource.
// Implementations classify failures with platform error codes and never
// retry; retry policy belongs to callers
type Transport interface {
	// FetchSize reports the total length of the resource in bytes
	FetchSize(ctx context.Context, url string) (int64, error)

	// FetchRange returns exactly the inclusive byte range [start, end]
	FetchRange(ctx context.Context, url string, start, end int64) ([]byte, error)
}

// SizeProbe is what a size check learns beyond the raw length
type SizeProbe struct {
	Size int64
	ETag string
}

// Prober is an optional Transport upgrade for implementations that can
// surface validators; Open uses it when present so handles carry the ETag
type Prober interface {
	Probe(ctx context.Context, url string) (SizeProbe, error)
}

// Options configures an HTTPTransport
type Options struct {
	// Client carries the timeout; nil gets a 30s default
	Client    *http.Client
	UserAgent string
}

// HTTPTransport fetches ranges with plain GET plus a Range header
type HTTPTransport struct {
	client *http.Client
	ua     string
	log    logger.Logger
	now    func() time.Time
}

// NewHTTPTransport creates an HTTPTransport with sane defaults
func NewHTTPTransport(o Options) *HTTPTransport {
	if o.Client == nil {
		o.Client = &http.Client{Timeout: defaultTimeout}
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	return &HTTPTransport{
		client: o.Client,
		ua:     o.UserAgent,
		log:    *logger.Named("remotezip"),
		now:    time.Now,
	}
}

// FetchSize reports the resource length; see Probe
func (t *HTTPTransport) FetchSize(ctx context.Context, url string) (int64, error) {
	p, err := t.Probe(ctx, url)
	if err != nil {
		return 0, err
	}
	return p.Size, nil
}

// Probe issues a HEAD and falls back to a one byte ranged GET for servers
// that refuse HEAD or withhold Content-Length
func (t *HTTPTransport) Probe(ctx context.Context, url string) (SizeProbe, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return SizeProbe{}, perr.Wrapf(err, perr.ErrorCodeNetwork, "remotezip head request for %s", url)
	}
	req.Header.Set("User-Agent", t.ua)

	start := t.now()
	resp, err := t.client.Do(req)
	if err != nil {
		return SizeProbe{}, perr.FromTransportf(err, "remotezip head %s", url)
	}
	_ = drainAndClose(resp.Body)

	t.log.Debug().
		Str("url", url).
		Int("status", resp.StatusCode).
		Int64("content_length", resp.ContentLength).
		Dur("latency", t.now().Sub(start)).
		Msg("remotezip size probe")

	if resp.StatusCode == http.StatusOK && resp.ContentLength >= 0 {
		return SizeProbe{Size: resp.ContentLength, ETag: etagOf(resp.Header)}, nil
	}

	// HEAD refused or length withheld; ask for the first byte instead and
	// read the total off Content-Range
	return t.probeByRange(ctx, url)
}

func (t *HTTPTransport) probeByRange(ctx context.Context, url string) (SizeProbe, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return SizeProbe{}, perr.Wrapf(err, perr.ErrorCodeNetwork, "remotezip probe request for %s", url)
	}
	req.Header.Set("User-Agent", t.ua)
	req.Header.Set("Range", "bytes=0-0")

	resp, err := t.client.Do(req)
	if err != nil {
		return SizeProbe{}, perr.FromTransportf(err, "remotezip probe %s", url)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusPartialContent:
		total, err := parseContentRangeTotal(resp.Header.Get("Content-Range"))
		if err != nil {
			return SizeProbe{}, perr.Wrapf(err, perr.ErrorCodeNetwork, "remotezip probe %s", url)
		}
		return SizeProbe{Size: total, ETag: etagOf(resp.Header)}, nil
	case http.StatusOK:
		// server ignored the range and sent the whole thing; its declared
		// length is the answer, the body gets dropped unread
		if resp.ContentLength < 0 {
			return SizeProbe{}, perr.Networkf("remotezip probe %s: no usable length", url)
		}
		return SizeProbe{Size: resp.ContentLength, ETag: etagOf(resp.Header)}, nil
	default:
		return SizeProbe{}, perr.Networkf("remotezip probe %s: unexpected status %d", url, resp.StatusCode)
	}
}

// FetchRange returns the inclusive range [start, end] or a network error;
// short and long bodies both count as failures
func (t *HTTPTransport) FetchRange(ctx context.Context, url string, start, end int64) ([]byte, error) {
	if start < 0 || end < start {
		return nil, perr.InvalidArgf("remotezip bad range %d-%d", start, end)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeNetwork, "remotezip range request for %s", url)
	}
	req.Header.Set("User-Agent", t.ua)
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", start, end))

	began := t.now()
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, perr.FromTransportf(err, "remotezip range %d-%d of %s", start, end, url)
	}
	defer func() { _ = resp.Body.Close() }()

	want := end - start + 1

	t.log.Debug().
		Str("url", url).
		Int64("start", start).
		Int64("end", end).
		Int("status", resp.StatusCode).
		Dur("latency", t.now().Sub(began)).
		Msg("remotezip range fetch")

	switch resp.StatusCode {
	case http.StatusPartialContent:
		if resp.ContentLength >= 0 && resp.ContentLength != want {
			return nil, perr.Networkf(
				"remotezip range %d-%d of %s: got %d bytes, want %d",
				start, end, url, resp.ContentLength, want,
			)
		}
	case http.StatusOK:
		// a server without range support replays the whole resource; only a
		// request that starts at byte zero can be salvaged from that
		if start != 0 {
			return nil, perr.Networkf("remotezip range %d-%d of %s: server ignored range", start, end, url)
		}
	default:
		return nil, perr.Networkf("remotezip range %d-%d of %s: unexpected status %d", start, end, url, resp.StatusCode)
	}

	buf := make([]byte, want)
	if _, err := io.ReadFull(resp.Body, buf); err != nil {
		return nil, perr.FromTransportf(err, "remotezip range %d-%d of %s: short body", start, end, url)
	}
	return buf, nil
}

// parseContentRangeTotal pulls the total length out of "bytes 0-0/12345"
func parseContentRangeTotal(v string) (int64, error) {
	i := strings.LastIndexByte(v, '/')
	if i < 0 {
		return 0, fmt.Errorf("malformed Content-Range %q", v)
	}
	tail := strings.TrimSpace(v[i+1:])
	if tail == "" || tail == "*" {
		return 0, fmt.Errorf("Content-Range %q has no total", v)
	}
	n, err := strconv.ParseInt(tail, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("malformed Content-Range total %q", v)
	}
	return n, nil
}

func etagOf(h http.Header) string {
	return strings.TrimSpace(h.Get("ETag"))
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 512))
	return rc.Close()
}
