package remotezip

import (
	"encoding/binary"

	"golang.org/x/text/encoding/charmap"

	perr "evalview/internal/platform/errors"
)

// ZIP wire layout, little-endian throughout
const (
	eocdSig  = 0x06054b50
	cdirSig  = 0x02014b50
	localSig = 0x04034b50

	eocdLen       = 22
	cdirFixedLen  = 46
	localFixedLen = 30

	maxCommentLen = 0xFFFF
	zip64Sentinel = 0xFFFFFFFF

	flagEncrypted = 0x0001
	flagUTF8      = 0x0800
)

// Entry is one central directory record with sizes and offsets as stored
// on the wire. Local header name and extra lengths are not here on purpose:
// they get re-read from the local record at fetch time
type Entry struct {
	Name             string
	Method           uint16
	Flags            uint16
	CRC32            uint32
	CompressedSize   int64
	UncompressedSize int64
	Offset           int64
}

// endOfDirectory is the handful of EOCD fields the reader acts on
type endOfDirectory struct {
	entryCount int
	dirSize    int64
	dirOffset  int64
}

// locateEOCD finds the end-of-central-directory record inside tail, where
// tail ends at the last byte of the file. Scans backward so the real record
// wins over comment bytes that happen to spell the signature. Returns the
// record offset within tail or -1
func locateEOCD(tail []byte) int {
	for i := len(tail) - eocdLen; i >= 0; i-- {
		if binary.LittleEndian.Uint32(tail[i:]) != eocdSig {
			continue
		}
		// a genuine record's comment runs exactly to the end of the file
		commentLen := int(binary.LittleEndian.Uint16(tail[i+20:]))
		if i+eocdLen+commentLen == len(tail) {
			return i
		}
	}
	return -1
}

func parseEOCD(rec []byte) (endOfDirectory, error) {
	diskNum := binary.LittleEndian.Uint16(rec[4:])
	dirDisk := binary.LittleEndian.Uint16(rec[6:])
	if diskNum != 0 || dirDisk != 0 {
		return endOfDirectory{}, perr.ArchiveFormatf("remotezip multi-disk archive not supported")
	}

	count := int(binary.LittleEndian.Uint16(rec[10:]))
	size := binary.LittleEndian.Uint32(rec[12:])
	offset := binary.LittleEndian.Uint32(rec[16:])
	if size == zip64Sentinel || offset == zip64Sentinel {
		return endOfDirectory{}, perr.ArchiveFormatf("remotezip zip64 archive not supported")
	}

	return endOfDirectory{
		entryCount: count,
		dirSize:    int64(size),
		dirOffset:  int64(offset),
	}, nil
}

// parseDirectory walks the packed central directory and returns the name map
// plus names in first-seen directory order. Later duplicates win the map slot
// but keep the original enumeration position
func parseDirectory(dir []byte, hint int) (map[string]Entry, []string, error) {
	entries := make(map[string]Entry, hint)
	names := make([]string, 0, hint)

	for off := 0; off < len(dir); {
		rest := dir[off:]
		if len(rest) < cdirFixedLen {
			return nil, nil, perr.ArchiveFormatf("remotezip truncated central directory record at offset %d", off)
		}
		if binary.LittleEndian.Uint32(rest) != cdirSig {
			return nil, nil, perr.ArchiveFormatf("remotezip bad central directory signature at offset %d", off)
		}

		flags := binary.LittleEndian.Uint16(rest[8:])
		method := binary.LittleEndian.Uint16(rest[10:])
		crc := binary.LittleEndian.Uint32(rest[16:])
		compSize := binary.LittleEndian.Uint32(rest[20:])
		uncompSize := binary.LittleEndian.Uint32(rest[24:])
		nameLen := int(binary.LittleEndian.Uint16(rest[28:]))
		extraLen := int(binary.LittleEndian.Uint16(rest[30:]))
		commentLen := int(binary.LittleEndian.Uint16(rest[32:]))
		localOff := binary.LittleEndian.Uint32(rest[42:])

		total := cdirFixedLen + nameLen + extraLen + commentLen
		if len(rest) < total {
			return nil, nil, perr.ArchiveFormatf("remotezip central directory record at offset %d runs past the directory", off)
		}
		if compSize == zip64Sentinel || uncompSize == zip64Sentinel || localOff == zip64Sentinel {
			return nil, nil, perr.ArchiveFormatf("remotezip zip64 entry not supported")
		}

		name, err := decodeName(rest[cdirFixedLen:cdirFixedLen+nameLen], flags)
		if err != nil {
			return nil, nil, err
		}
		if _, dup := entries[name]; !dup {
			names = append(names, name)
		}
		entries[name] = Entry{
			Name:             name,
			Method:           method,
			Flags:            flags,
			CRC32:            crc,
			CompressedSize:   int64(compSize),
			UncompressedSize: int64(uncompSize),
			Offset:           int64(localOff),
		}

		off += total
	}

	return entries, names, nil
}

// decodeName maps raw name bytes to a string: UTF-8 when general purpose
// flag bit 11 says so, CP437 otherwise per the ZIP spec
func decodeName(raw []byte, flags uint16) (string, error) {
	if flags&flagUTF8 != 0 {
		return string(raw), nil
	}
	ascii := true
	for _, c := range raw {
		if c >= 0x80 {
			ascii = false
			break
		}
	}
	// plain ASCII decodes to itself under CP437, skip the table walk
	if ascii {
		return string(raw), nil
	}
	name, err := charmap.CodePage437.NewDecoder().Bytes(raw)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeArchiveFormat, "remotezip undecodable entry name")
	}
	return string(name), nil
}
