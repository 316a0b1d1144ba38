package bingo

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCard_Valid(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		card := GenerateCard(rng)
		require.NoError(t, card.Validate(), "card %d: %v", i, card)
		assert.Equal(t, FreeSpace, card[2][2])
		assert.Len(t, card.Numbers(), 24)
	}
}

func TestGenerateCard_Unseeded(t *testing.T) {
	for i := 0; i < 50; i++ {
		require.NoError(t, GenerateCard(nil).Validate())
	}
}

func TestGenerateCartela_Deterministic(t *testing.T) {
	const seed = int64(987654321)

	first := GenerateCartela(seed, 7)
	again := GenerateCartela(seed, 7)
	assert.Equal(t, first, again)
	require.NoError(t, first.Validate())

	other := GenerateCartela(seed, 12)
	assert.NotEqual(t, first, other)

	otherRoom := GenerateCartela(seed+1, 7)
	assert.NotEqual(t, first, otherRoom)
}

func TestGenerateCartela_AllIndicesValid(t *testing.T) {
	for index := 1; index <= 100; index++ {
		require.NoError(t, GenerateCartela(2024, index).Validate(), "cartela %d", index)
	}
}

func TestCard_Contains(t *testing.T) {
	card := GenerateCartela(1, 1)

	for _, v := range card.Numbers() {
		assert.True(t, card.Contains(v))
	}
	assert.False(t, card.Contains(FreeSpace))
	assert.False(t, card.Contains(76))
	assert.False(t, card.Contains(-3))

	onCard := NewMarks(card.Numbers()...)
	for v := 1; v <= MaxBallValue; v++ {
		assert.Equal(t, onCard[v], card.Contains(v), "value %d", v)
	}
}

func TestCard_ValidateRejects(t *testing.T) {
	card := GenerateCartela(5, 5)

	badCenter := card
	badCenter[2][2] = 40
	assert.Error(t, badCenter.Validate())

	outOfRange := card
	outOfRange[0][0] = 16
	assert.Error(t, outOfRange.Validate())

	duplicate := card
	duplicate[1][0] = duplicate[0][0]
	assert.Error(t, duplicate.Validate())
}

func TestColumnForAndLabel(t *testing.T) {
	assert.Equal(t, 0, ColumnFor(1))
	assert.Equal(t, 0, ColumnFor(15))
	assert.Equal(t, 1, ColumnFor(16))
	assert.Equal(t, 4, ColumnFor(75))
	assert.Equal(t, -1, ColumnFor(0))
	assert.Equal(t, -1, ColumnFor(76))

	assert.Equal(t, "B-1", Label(1))
	assert.Equal(t, "N-42", Label(42))
	assert.Equal(t, "O-75", Label(75))
}
