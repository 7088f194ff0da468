package cipher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindows(t *testing.T) {
	assert.Equal(t, []Window{{1, 2}, {2, 3}, {3, 4}}, Windows(4, 2))
	assert.Equal(t, []Window{{1, 4}}, Windows(4, 4))
	assert.Nil(t, Windows(4, 5))
	assert.Nil(t, Windows(4, 0))
	assert.Equal(t, 3, Window{FromRound: 2, ToRound: 4}.NumRounds())
	assert.Equal(t, "[2,4]", Window{FromRound: 2, ToRound: 4}.String())
}
