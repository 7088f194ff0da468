package codec

import (
	"testing"

	"github.com/hupe1980/biclique/bitvector"
	"github.com/hupe1980/biclique/differential"
	"github.com/hupe1980/biclique/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByName(t *testing.T) {
	c, ok := ByName("json")
	require.True(t, ok)
	assert.Equal(t, "json", c.Name())

	_, ok = ByName("msgpack")
	assert.False(t, ok)

	assert.Equal(t, "json", Default.Name())
}

func TestJSON_Biclique(t *testing.T) {
	trail := func(state byte) *differential.Differential {
		d, err := differential.New(1, 2)
		require.NoError(t, err)
		require.NoError(t, d.SetStateDifference(0, differential.FromBytes([]byte{state})))
		require.NoError(t, d.SetIntermediateStateDifference(1, differential.FromBytes([]byte{0xf0})))
		require.NoError(t, d.SetKeyDifference(2, differential.FromBytes([]byte{0x40})))
		require.NoError(t, d.SetSecretKeys(bitvector.FromBytes([]byte{0x3c}), bitvector.FromBytes([]byte{0x7c})))
		return d
	}
	in, err := model.New("toy8", 1, trail(0x00), trail(0x0f))
	require.NoError(t, err)

	data := MustMarshal(nil, in)
	assert.Contains(t, string(data), `"cipherName":"toy8"`)
	assert.Contains(t, string(data), `"0":"0f"`)

	var out model.Biclique
	require.NoError(t, JSON{}.Unmarshal(data, &out))
	require.NoError(t, out.Validate())

	s0, ok := out.NablaDifferential.StateDifference(0)
	require.True(t, ok)
	assert.True(t, s0.EqualBytes([]byte{0x0f}))
	assert.True(t, out.DeltaDifferential.SecondSecretKey.EqualBytes([]byte{0x7c}))
}

func TestMustMarshal_Panics(t *testing.T) {
	assert.Panics(t, func() { MustMarshal(JSON{}, make(chan int)) })
}
