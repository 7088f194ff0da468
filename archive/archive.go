// Package archive stores search results as self-describing compressed files.
//
// An archive is a fixed binary header followed by the codec-encoded Record,
// optionally wrapped in an lz4 or zstd stream. The header names the codec
// and the compression, so Decode needs no out-of-band configuration.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"time"

	"github.com/hupe1980/biclique"
	"github.com/hupe1980/biclique/codec"
	"github.com/klauspost/compress/zstd"
)

var (
	// ErrInvalidMagic is returned when the input is not an archive.
	ErrInvalidMagic = errors.New("archive: invalid magic")
	// ErrUnsupportedVersion is returned for archives written by a newer format.
	ErrUnsupportedVersion = errors.New("archive: unsupported version")
	// ErrInvalidHeader is returned when the header is truncated or malformed.
	ErrInvalidHeader = errors.New("archive: invalid header")
	// ErrUnknownCodec is returned when the header names a codec that is not built in.
	ErrUnknownCodec = errors.New("archive: unknown codec")
	// ErrUnknownCompression is returned for unsupported compression ids or names.
	ErrUnknownCompression = errors.New("archive: unknown compression")
	// ErrChecksumMismatch is returned when the payload is corrupt.
	ErrChecksumMismatch = errors.New("archive: checksum mismatch")
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// Record is the unit stored in an archive: the results of one CLI or
// library run, one per searched window.
type Record struct {
	RunID     string             `json:"runId"`
	CreatedAt time.Time          `json:"createdAt"`
	Results   []*biclique.Result `json:"results"`
}

// MaxScore returns the best score across all results, or 0 if none found.
func (r *Record) MaxScore() int {
	best, found := 0, false
	for _, res := range r.Results {
		if res.Found() && (!found || res.MaxScore > best) {
			best, found = res.MaxScore, true
		}
	}
	return best
}

type options struct {
	codec       codec.Codec
	compression Compression
	level       zstd.EncoderLevel
}

// Option configures Encode.
type Option func(*options)

// WithCodec sets the payload codec. Default: codec.Default.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithCompression sets the payload compression. Default: CompressionZstd.
func WithCompression(c Compression) Option {
	return func(o *options) { o.compression = c }
}

// WithZstdLevel sets the zstd encoder level. Ignored for other compressions.
func WithZstdLevel(level zstd.EncoderLevel) Option {
	return func(o *options) { o.level = level }
}

// Encode writes rec to w and returns the header it wrote.
func Encode(w io.Writer, rec *Record, opts ...Option) (Header, error) {
	o := options{
		codec:       codec.Default,
		compression: CompressionZstd,
		level:       zstd.SpeedDefault,
	}
	for _, fn := range opts {
		fn(&o)
	}

	payload, err := o.codec.Marshal(rec)
	if err != nil {
		return Header{}, fmt.Errorf("archive: marshal: %w", err)
	}

	h := Header{
		Version:     archiveVersion,
		Compression: o.compression,
		Codec:       o.codec.Name(),
		PayloadLen:  uint64(len(payload)),
		Checksum:    crc32.Checksum(payload, castagnoli),
	}
	if err := writeHeader(w, h); err != nil {
		return Header{}, err
	}

	cw, err := compressor(w, o.compression, o.level)
	if err != nil {
		return Header{}, err
	}
	if _, err := cw.Write(payload); err != nil {
		_ = cw.Close()
		return Header{}, fmt.Errorf("archive: write payload: %w", err)
	}
	if err := cw.Close(); err != nil {
		return Header{}, fmt.Errorf("archive: flush payload: %w", err)
	}
	return h, nil
}

// Marshal is Encode into a byte slice.
func Marshal(rec *Record, opts ...Option) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := Encode(&buf, rec, opts...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads an archive written by Encode.
func Decode(r io.Reader) (*Record, Header, error) {
	h, err := readHeader(r)
	if err != nil {
		return nil, Header{}, err
	}

	c, ok := codec.ByName(h.Codec)
	if !ok {
		return nil, h, fmt.Errorf("%w: %q", ErrUnknownCodec, h.Codec)
	}

	dr, release, err := decompressor(r, h.Compression)
	if err != nil {
		return nil, h, err
	}
	defer release()

	payload, err := io.ReadAll(io.LimitReader(dr, int64(h.PayloadLen)+1))
	if err != nil {
		return nil, h, fmt.Errorf("archive: read payload: %w", err)
	}
	if uint64(len(payload)) != h.PayloadLen {
		return nil, h, fmt.Errorf("%w: payload is %d bytes, header says %d", ErrChecksumMismatch, len(payload), h.PayloadLen)
	}
	if sum := crc32.Checksum(payload, castagnoli); sum != h.Checksum {
		return nil, h, fmt.Errorf("%w: got %08x, want %08x", ErrChecksumMismatch, sum, h.Checksum)
	}

	var rec Record
	if err := c.Unmarshal(payload, &rec); err != nil {
		return nil, h, fmt.Errorf("archive: unmarshal: %w", err)
	}
	for _, res := range rec.Results {
		for _, b := range res.Bicliques {
			if err := b.Validate(); err != nil {
				return nil, h, fmt.Errorf("archive: %w", err)
			}
		}
	}
	return &rec, h, nil
}

// Unmarshal is Decode from a byte slice.
func Unmarshal(data []byte) (*Record, Header, error) {
	return Decode(bytes.NewReader(data))
}
