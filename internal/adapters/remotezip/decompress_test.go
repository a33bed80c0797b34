package remotezip

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/flate"

	perr "evalview/internal/platform/errors"
)

func deflateBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	fw, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		t.Fatalf("flate writer: %v", err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatalf("flate write: %v", err)
	}
	if err := fw.Close(); err != nil {
		t.Fatalf("flate close: %v", err)
	}
	return buf.Bytes()
}

func TestDecompress_Stored(t *testing.T) {
	body := []byte(`{"status":"success"}`)
	e := Entry{Name: "header.json", Method: MethodStored, UncompressedSize: int64(len(body))}

	got, err := decompress(e, body)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(got, body) {
		t.Fatalf("got %q", got)
	}
}

func TestDecompress_StoredSizeMismatch(t *testing.T) {
	e := Entry{Name: "header.json", Method: MethodStored, UncompressedSize: 99}
	_, err := decompress(e, []byte("short"))
	if !perr.IsCode(err, perr.ErrorCodeArchiveFormat) {
		t.Fatalf("err = %v, want archive format", err)
	}
}

func TestDecompress_Deflate(t *testing.T) {
	body := bytes.Repeat([]byte("eval sample payload "), 200)
	e := Entry{Name: "samples/1_epoch_1.json", Method: MethodDeflate, UncompressedSize: int64(len(body))}

	got, err := decompress(e, deflateBytes(t, body))
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(got, body) {
		t.Fatalf("inflated %d bytes, mismatch", len(got))
	}
}

func TestDecompress_DeflateEmpty(t *testing.T) {
	e := Entry{Name: "empty.json", Method: MethodDeflate, UncompressedSize: 0}
	got, err := decompress(e, deflateBytes(t, nil))
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d bytes, want 0", len(got))
	}
}

func TestDecompress_DeflateTruncated(t *testing.T) {
	body := bytes.Repeat([]byte("truncate me "), 500)
	comp := deflateBytes(t, body)
	e := Entry{Name: "samples/1_epoch_1.json", Method: MethodDeflate, UncompressedSize: int64(len(body))}

	_, err := decompress(e, comp[:len(comp)/2])
	if !perr.IsCode(err, perr.ErrorCodeArchiveFormat) {
		t.Fatalf("err = %v, want archive format", err)
	}
}

func TestDecompress_DeflateGarbage(t *testing.T) {
	e := Entry{Name: "samples/1_epoch_1.json", Method: MethodDeflate, UncompressedSize: 64}
	_, err := decompress(e, bytes.Repeat([]byte{0xC7, 0x11}, 40))
	if !perr.IsCode(err, perr.ErrorCodeArchiveFormat) {
		t.Fatalf("err = %v, want archive format", err)
	}
}

func TestDecompress_DeclaredSizeTooSmall(t *testing.T) {
	body := bytes.Repeat([]byte("x"), 100)
	e := Entry{Name: "a.json", Method: MethodDeflate, UncompressedSize: 50}

	_, err := decompress(e, deflateBytes(t, body))
	if !perr.IsCode(err, perr.ErrorCodeArchiveFormat) {
		t.Fatalf("err = %v, want archive format", err)
	}
}

func TestDecompress_DeclaredSizeTooLarge(t *testing.T) {
	body := bytes.Repeat([]byte("x"), 50)
	e := Entry{Name: "a.json", Method: MethodDeflate, UncompressedSize: 100}

	_, err := decompress(e, deflateBytes(t, body))
	if !perr.IsCode(err, perr.ErrorCodeArchiveFormat) {
		t.Fatalf("err = %v, want archive format", err)
	}
}

func TestDecompress_UnsupportedMethod(t *testing.T) {
	e := Entry{Name: "a.json", Method: 12, UncompressedSize: 10}
	_, err := decompress(e, []byte("0123456789"))
	if !perr.IsCode(err, perr.ErrorCodeUnsupportedCompression) {
		t.Fatalf("err = %v, want unsupported compression", err)
	}
}

func TestDecompress_EncryptedEntry(t *testing.T) {
	e := Entry{Name: "a.json", Method: MethodDeflate, Flags: flagEncrypted, UncompressedSize: 10}
	_, err := decompress(e, []byte("whatever"))
	if !perr.IsCode(err, perr.ErrorCodeUnsupportedCompression) {
		t.Fatalf("err = %v, want unsupported compression", err)
	}
}
