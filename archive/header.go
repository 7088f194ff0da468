package archive

import (
	"encoding/binary"
	"fmt"
	"io"
)

var (
	archiveMagic   = [4]byte{'B', 'C', 'Q', '1'}
	archiveVersion = uint16(1)
)

// headerFixedLen excludes the variable codec name bytes.
const headerFixedLen = 24

// Header describes an encoded archive.
//
// Layout (little endian):
//
//	magic[4] version u16 compression u8 codecLen u8
//	payloadLen u64 checksum u32 reserved[4] codec[codecLen]
//
// PayloadLen and Checksum (CRC32-C) refer to the uncompressed codec output.
type Header struct {
	Version     uint16
	Compression Compression
	Codec       string
	PayloadLen  uint64
	Checksum    uint32
}

func writeHeader(w io.Writer, h Header) error {
	if len(h.Codec) == 0 || len(h.Codec) > 255 {
		return fmt.Errorf("%w: codec name %q", ErrInvalidHeader, h.Codec)
	}

	buf := make([]byte, headerFixedLen, headerFixedLen+len(h.Codec))
	copy(buf[0:4], archiveMagic[:])
	binary.LittleEndian.PutUint16(buf[4:6], h.Version)
	buf[6] = uint8(h.Compression)
	buf[7] = uint8(len(h.Codec))
	binary.LittleEndian.PutUint64(buf[8:16], h.PayloadLen)
	binary.LittleEndian.PutUint32(buf[16:20], h.Checksum)
	// buf[20:24] reserved
	buf = append(buf, h.Codec...)

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("failed to write archive header: %w", err)
	}
	return nil
}

func readHeader(r io.Reader) (Header, error) {
	fixed := make([]byte, headerFixedLen)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return Header{}, fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}

	var magic [4]byte
	copy(magic[:], fixed[0:4])
	if magic != archiveMagic {
		return Header{}, fmt.Errorf("%w: got %q", ErrInvalidMagic, magic[:])
	}

	h := Header{
		Version:     binary.LittleEndian.Uint16(fixed[4:6]),
		Compression: Compression(fixed[6]),
		PayloadLen:  binary.LittleEndian.Uint64(fixed[8:16]),
		Checksum:    binary.LittleEndian.Uint32(fixed[16:20]),
	}
	if h.Version != archiveVersion {
		return Header{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}

	name := make([]byte, fixed[7])
	if _, err := io.ReadFull(r, name); err != nil {
		return Header{}, fmt.Errorf("%w: codec name: %w", ErrInvalidHeader, err)
	}
	h.Codec = string(name)
	return h, nil
}
