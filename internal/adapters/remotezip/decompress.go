package remotezip

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/flate"

	perr "evalview/internal/platform/errors"
)

// Compression methods this reader decodes
const (
	MethodStored  uint16 = 0
	MethodDeflate uint16 = 8
)

// decompress turns an entry's wire payload into file bytes. Strict about
// declared sizes so truncation never masquerades as success
func decompress(e Entry, payload []byte) ([]byte, error) {
	if e.Flags&flagEncrypted != 0 {
		return nil, perr.UnsupportedCompressionf("remotezip entry %q is encrypted", e.Name)
	}

	switch e.Method {
	case MethodStored:
		if int64(len(payload)) != e.UncompressedSize {
			return nil, perr.ArchiveFormatf(
				"remotezip stored entry %q is %d bytes, directory says %d",
				e.Name, len(payload), e.UncompressedSize,
			)
		}
		return payload, nil

	case MethodDeflate:
		fr := flate.NewReader(bytes.NewReader(payload))
		defer func() { _ = fr.Close() }()

		out := make([]byte, e.UncompressedSize)
		if _, err := io.ReadFull(fr, out); err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeArchiveFormat, "remotezip inflate %q", e.Name)
		}
		// the stream must end exactly where the directory said it would
		var one [1]byte
		if _, err := io.ReadFull(fr, one[:]); err != io.EOF {
			return nil, perr.ArchiveFormatf(
				"remotezip entry %q inflates past its declared %d bytes",
				e.Name, e.UncompressedSize,
			)
		}
		return out, nil

	default:
		return nil, perr.UnsupportedCompressionf("remotezip entry %q uses compression method %d", e.Name, e.Method)
	}
}
