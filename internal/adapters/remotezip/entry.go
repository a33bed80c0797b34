package remotezip

import (
	"context"
	"encoding/binary"
	"fmt"

	perr "evalview/internal/platform/errors"
)

// SizeLimitError reports an entry whose on-wire footprint exceeds the byte
// budget a caller set. It rides inside an ErrorCodeSizeLimit platform error
// so HTTP and CLI layers can map it without string matching
type SizeLimitError struct {
	Name     string
	Need     int64
	MaxBytes int64
}

func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("entry %q needs %d bytes, budget is %d", e.Name, e.Need, e.MaxBytes)
}

// fetchRaw resolves name, validates the local header, and returns the still
// compressed payload. The budget check runs between the 30-byte header fetch
// and the payload fetch: an oversized entry costs one small request, never
// the big one
func (a *Archive) fetchRaw(ctx context.Context, name string, maxBytes int64) (Entry, []byte, error) {
	e, ok := a.entries[name]
	if !ok {
		return Entry{}, nil, perr.NotFoundf("remotezip entry %q not in %s", name, a.url)
	}

	head, err := a.t.FetchRange(ctx, a.url, e.Offset, e.Offset+localFixedLen-1)
	if err != nil {
		return Entry{}, nil, err
	}
	if len(head) < localFixedLen || binary.LittleEndian.Uint32(head) != localSig {
		return Entry{}, nil, perr.ArchiveFormatf("remotezip %s: bad local header for %q", a.url, name)
	}

	// lengths come from the local record itself; central directory copies
	// are allowed to disagree and some writers do
	nameLen := int64(binary.LittleEndian.Uint16(head[26:]))
	extraLen := int64(binary.LittleEndian.Uint16(head[28:]))

	total := localFixedLen + nameLen + extraLen + e.CompressedSize
	if maxBytes > 0 && total > maxBytes {
		lim := &SizeLimitError{Name: name, Need: total, MaxBytes: maxBytes}
		return Entry{}, nil, perr.Wrapf(lim, perr.ErrorCodeSizeLimit, "remotezip entry %q exceeds read budget", name)
	}
	if e.Offset+total > a.size {
		return Entry{}, nil, perr.ArchiveFormatf("remotezip %s: entry %q runs past end of file", a.url, name)
	}

	buf, err := a.t.FetchRange(ctx, a.url, e.Offset, e.Offset+total-1)
	if err != nil {
		return Entry{}, nil, err
	}
	// re-verify on the combined buffer; a server that ignored the range
	// offset would have replayed the start of the file here
	if binary.LittleEndian.Uint32(buf) != localSig {
		return Entry{}, nil, perr.ArchiveFormatf("remotezip %s: local header mismatch for %q", a.url, name)
	}

	return e, buf[localFixedLen+nameLen+extraLen:], nil
}
