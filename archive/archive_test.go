package archive

import (
	"bytes"
	"testing"
	"time"

	"github.com/hupe1980/biclique"
	"github.com/hupe1980/biclique/cipher"
	"github.com/hupe1980/biclique/cipher/toy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchRecord(t *testing.T) *Record {
	t.Helper()

	c, err := toy.New(toy.DefaultConfig)
	require.NoError(t, err)
	b, err := toy.NewBuilder(toy.DefaultConfig)
	require.NoError(t, err)
	s, err := biclique.New(c, b, biclique.WithThreads(2), biclique.WithMemoryLimit(1<<20))
	require.NoError(t, err)

	res, err := s.Search(t.Context(), cipher.Window{FromRound: 1, ToRound: 2})
	require.NoError(t, err)
	require.True(t, res.Found())

	return &Record{
		RunID:     "run-1",
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Results:   []*biclique.Result{res},
	}
}

func TestEncodeDecode(t *testing.T) {
	rec := searchRecord(t)

	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		t.Run(c.String(), func(t *testing.T) {
			var buf bytes.Buffer
			h, err := Encode(&buf, rec, WithCompression(c))
			require.NoError(t, err)
			assert.Equal(t, "json", h.Codec)
			assert.Equal(t, c, h.Compression)

			out, got, err := Decode(&buf)
			require.NoError(t, err)
			assert.Equal(t, h, got)

			assert.Equal(t, rec.RunID, out.RunID)
			assert.True(t, rec.CreatedAt.Equal(out.CreatedAt))
			require.Len(t, out.Results, 1)

			want, res := rec.Results[0], out.Results[0]
			assert.Equal(t, want.CipherName, res.CipherName)
			assert.Equal(t, want.Window, res.Window)
			assert.Equal(t, want.MaxScore, res.MaxScore)
			assert.Equal(t, want.Plan, res.Plan)
			require.Len(t, res.Bicliques, len(want.Bicliques))
			for i, b := range res.Bicliques {
				assert.True(t, want.Bicliques[i].DeltaDifferential.KeyDifference.Equal(b.DeltaDifferential.KeyDifference))
				assert.True(t, want.Bicliques[i].NablaDifferential.KeyDifference.Equal(b.NablaDifferential.KeyDifference))
			}
			assert.Equal(t, want.MaxScore, out.MaxScore())
		})
	}
}

func TestEncode_CompressionShrinksPayload(t *testing.T) {
	rec := searchRecord(t)

	plain, err := Marshal(rec, WithCompression(CompressionNone))
	require.NoError(t, err)
	packed, err := Marshal(rec, WithCompression(CompressionZstd))
	require.NoError(t, err)

	assert.Less(t, len(packed), len(plain))
}

func TestDecode_Errors(t *testing.T) {
	rec := searchRecord(t)
	data, err := Marshal(rec, WithCompression(CompressionNone))
	require.NoError(t, err)

	_, _, err = Unmarshal(data[:10])
	assert.ErrorIs(t, err, ErrInvalidHeader)

	bad := bytes.Clone(data)
	bad[0] = 'X'
	_, _, err = Unmarshal(bad)
	assert.ErrorIs(t, err, ErrInvalidMagic)

	bad = bytes.Clone(data)
	bad[4] = 9
	_, _, err = Unmarshal(bad)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	bad = bytes.Clone(data)
	bad[6] = 7
	_, _, err = Unmarshal(bad)
	assert.ErrorIs(t, err, ErrUnknownCompression)

	bad = bytes.Clone(data)
	bad[headerFixedLen] = 'x' // "json" -> "xson"
	_, _, err = Unmarshal(bad)
	assert.ErrorIs(t, err, ErrUnknownCodec)

	bad = bytes.Clone(data)
	bad[len(bad)-2] ^= 0xff
	_, _, err = Unmarshal(bad)
	assert.ErrorIs(t, err, ErrChecksumMismatch)

	_, _, err = Unmarshal(data[:len(data)-5])
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestParseCompression(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		got, err := ParseCompression(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	_, err := ParseCompression("brotli")
	assert.ErrorIs(t, err, ErrUnknownCompression)
	assert.Equal(t, "Compression(9)", Compression(9).String())
}

func TestRecord_MaxScore(t *testing.T) {
	rec := &Record{Results: []*biclique.Result{{MaxScore: 0}}}
	assert.Zero(t, rec.MaxScore(), "results without bicliques do not count")
}
