package remotezip

import (
	"context"
	json "encoding/json/v2"

	perr "evalview/internal/platform/errors"
	"evalview/internal/platform/logger"
)

// Archive is an open handle on one remote ZIP file. Open builds it in full;
// afterward it never mutates and is safe for concurrent use
type Archive struct {
	url     string
	etag    string
	size    int64
	entries map[string]Entry
	names   []string
	t       Transport
	log     logger.Logger
}

// Open probes the resource size, locates and parses the central directory,
// and returns an immutable handle. Format trouble reports
// ErrorCodeArchiveFormat, transport trouble ErrorCodeNetwork; a failed open
// never leaves a partial handle behind
func Open(ctx context.Context, t Transport, url string) (*Archive, error) {
	probe, err := probeSize(ctx, t, url)
	if err != nil {
		return nil, err
	}
	if probe.Size < eocdLen {
		return nil, perr.ArchiveFormatf("remotezip %s: %d bytes is too small for a zip archive", url, probe.Size)
	}

	// comment-free archives end in exactly the 22-byte record, which is what
	// the eval writer produces, so try that window first
	tail, err := t.FetchRange(ctx, url, probe.Size-eocdLen, probe.Size-1)
	if err != nil {
		return nil, err
	}
	at := locateEOCD(tail)
	if at < 0 {
		win := int64(eocdLen + maxCommentLen)
		if win > probe.Size {
			win = probe.Size
		}
		tail, err = t.FetchRange(ctx, url, probe.Size-win, probe.Size-1)
		if err != nil {
			return nil, err
		}
		at = locateEOCD(tail)
	}
	if at < 0 {
		return nil, perr.ArchiveFormatf("remotezip %s: no end of central directory record", url)
	}

	eocd, err := parseEOCD(tail[at:])
	if err != nil {
		return nil, err
	}
	if eocd.dirOffset+eocd.dirSize > probe.Size {
		return nil, perr.ArchiveFormatf(
			"remotezip %s: central directory [%d, +%d) runs past end of file",
			url, eocd.dirOffset, eocd.dirSize,
		)
	}

	entries := map[string]Entry{}
	var names []string
	if eocd.dirSize > 0 {
		dir, err := t.FetchRange(ctx, url, eocd.dirOffset, eocd.dirOffset+eocd.dirSize-1)
		if err != nil {
			return nil, err
		}
		entries, names, err = parseDirectory(dir, eocd.entryCount)
		if err != nil {
			return nil, err
		}
	}

	a := &Archive{
		url:     url,
		etag:    probe.ETag,
		size:    probe.Size,
		entries: entries,
		names:   names,
		t:       t,
		log:     *logger.Named("remotezip"),
	}
	a.log.Debug().
		Str("url", url).
		Int64("size", probe.Size).
		Int("entries", len(names)).
		Str("etag", probe.ETag).
		Msg("remotezip archive open")
	return a, nil
}

func probeSize(ctx context.Context, t Transport, url string) (SizeProbe, error) {
	if p, ok := t.(Prober); ok {
		return p.Probe(ctx, url)
	}
	n, err := t.FetchSize(ctx, url)
	if err != nil {
		return SizeProbe{}, err
	}
	return SizeProbe{Size: n}, nil
}

// URL returns the resource this handle was opened on
func (a *Archive) URL() string { return a.url }

// ETag returns the validator captured at open time, empty when the server
// sent none
func (a *Archive) ETag() string { return a.etag }

// Size returns the total archive length in bytes
func (a *Archive) Size() int64 { return a.size }

// Len returns the number of distinct entry names
func (a *Archive) Len() int { return len(a.names) }

// Names returns entry names in directory order; the slice is the caller's
func (a *Archive) Names() []string {
	out := make([]string, len(a.names))
	copy(out, a.names)
	return out
}

// Stat returns the directory record for name
func (a *Archive) Stat(name string) (Entry, bool) {
	e, ok := a.entries[name]
	return e, ok
}

// ReadEntry fetches one entry and decodes it. maxBytes caps the on-wire
// footprint (local header + name + extra + compressed payload); zero or
// negative disables the cap. Budget refusals happen before the payload
// request is issued
func (a *Archive) ReadEntry(ctx context.Context, name string, maxBytes int64) ([]byte, error) {
	e, payload, err := a.fetchRaw(ctx, name, maxBytes)
	if err != nil {
		return nil, err
	}
	return decompress(e, payload)
}

// ReadJSON reads an entry and unmarshals it into v. Undecodable content is
// ErrorCodeParse, which callers treat as bad data in one entry rather than a
// broken archive
func (a *Archive) ReadJSON(ctx context.Context, name string, maxBytes int64, v any) error {
	b, err := a.ReadEntry(ctx, name, maxBytes)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeParse, "remotezip entry %q is not valid json", name)
	}
	return nil
}
