package rating

import (
	"testing"

	"github.com/hupe1980/biclique/differential"
	"github.com/hupe1980/biclique/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rounds map[int][]byte

func trail(t *testing.T, from, to int, states, keys rounds) *differential.Differential {
	t.Helper()

	d, err := differential.New(from, to)
	require.NoError(t, err)
	for r, b := range states {
		require.NoError(t, d.SetStateDifference(r, differential.FromBytes(b)))
	}
	for r, b := range keys {
		require.NoError(t, d.SetKeyDifference(r, differential.FromBytes(b)))
	}
	return d
}

func biclique(t *testing.T, delta, nabla *differential.Differential) *model.Biclique {
	t.Helper()

	b, err := model.New("test", 1, delta, nabla)
	require.NoError(t, err)
	return b
}

func TestDefault(t *testing.T) {
	tests := []struct {
		name  string
		from  int
		to    int
		delta rounds
		nabla rounds
		want  int
	}{
		{
			name:  "plaintext side",
			from:  1,
			to:    2,
			delta: rounds{0: {0x00}, 2: {0xff}},
			nabla: rounds{0: {0x0f}, 2: {0x00}},
			want:  8 - 4,
		},
		{
			name:  "union counts overlapping bits once",
			from:  1,
			to:    2,
			delta: rounds{0: {0x03}},
			nabla: rounds{0: {0x01}},
			want:  8 - 2,
		},
		{
			name:  "ciphertext side",
			from:  2,
			to:    3,
			delta: rounds{1: {0x00, 0x00}, 3: {0xf0, 0x00}},
			nabla: rounds{1: {0xff, 0xff}, 3: {0x00, 0x01}},
			want:  16 - 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := biclique(t, trail(t, tt.from, tt.to, tt.delta, nil), trail(t, tt.from, tt.to, tt.nabla, nil))
			assert.Equal(t, tt.want, Default{}.Score(b))
		})
	}
}

func TestDefault_DoesNotMutate(t *testing.T) {
	delta := trail(t, 1, 1, rounds{0: {0x0f}}, nil)
	nabla := trail(t, 1, 1, rounds{0: {0xf0}}, nil)
	b := biclique(t, delta, nabla)

	_ = Default{}.Score(b)

	d0, _ := delta.StateDifference(0)
	assert.True(t, d0.EqualBytes([]byte{0x0f}))
}

func TestActiveBytePenalty(t *testing.T) {
	// 8-byte state as a 4x2 column-major matrix: bytes 0 and 4 form row 0.
	state := []byte{0x01, 0x00, 0x02, 0x00, 0x04, 0x08, 0x00, 0x00}
	delta := trail(t, 1, 1, rounds{0: make([]byte, 8), 1: state}, nil)
	nabla := trail(t, 1, 1, rounds{0: make([]byte, 8)}, nil)
	b := biclique(t, delta, nabla)

	base := Default{}.Score(b)
	assert.Equal(t, 64, base)

	rowPenalty := ActiveBytePenalty{NumRows: 4, Rows: []int{0}, Penalty: 3}
	assert.Equal(t, base-2*3, rowPenalty.Score(b))

	colPenalty := ActiveBytePenalty{NumRows: 4, Columns: []int{1}, Penalty: 1}
	assert.Equal(t, base-2, colPenalty.Score(b))

	both := ActiveBytePenalty{NumRows: 4, Rows: []int{0}, Columns: []int{1}, Penalty: 1}
	assert.Equal(t, base-3, both.Score(b), "byte 4 is counted once")
}

func TestSharedKeyNibblePenalty(t *testing.T) {
	delta := trail(t, 1, 2, rounds{0: {0x00, 0x00}}, rounds{0: {0x10, 0x00}, 1: {0x11, 0x00}, 2: {0x10, 0x00}})
	nabla := trail(t, 1, 2, rounds{0: {0x00, 0x00}}, rounds{1: {0x10, 0x01}, 2: {0x01, 0x00}})
	b := biclique(t, delta, nabla)

	p := SharedKeyNibblePenalty{Penalty: 2}
	assert.Equal(t, 16-2, p.Score(b))
}

func TestChain(t *testing.T) {
	delta := trail(t, 1, 1, rounds{0: {0x00}, 1: {0x10}}, rounds{1: {0x10}})
	nabla := trail(t, 1, 1, rounds{0: {0x00}}, rounds{1: {0x30}})
	b := biclique(t, delta, nabla)

	r := Chain(
		ActiveBytePenalty{NumRows: 1, Rows: []int{0}, Penalty: 1},
		SharedKeyNibblePenalty{Penalty: 2},
	)
	assert.Equal(t, 8-1-2, r.Score(b))
	assert.Equal(t, 8, Chain().Score(b))
}

func TestByName(t *testing.T) {
	for _, name := range Names() {
		r, err := ByName(name)
		require.NoError(t, err, name)
		assert.NotNil(t, r)
	}

	_, err := ByName("nope")
	assert.ErrorIs(t, err, ErrUnknownRater)

	Register("constant", func() Rater { return Func(func(*model.Biclique) int { return 7 }) })
	r, err := ByName("constant")
	require.NoError(t, err)
	assert.Equal(t, 7, r.Score(nil))
	assert.Contains(t, Names(), "constant")
}
