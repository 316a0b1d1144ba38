// Package bingo holds the card generator and win-pattern rules for 75-ball bingo.
package bingo

import (
	"fmt"
	"math/rand"
)

const (
	// Size is the width and height of a card
	Size = 5

	// ColumnRange is how many ball values belong to each column
	ColumnRange = 15

	// MaxBallValue is the highest ball that can be drawn
	MaxBallValue = Size * ColumnRange

	// FreeSpace is the value stored in the center cell. It counts as marked on every card.
	FreeSpace = 0
)

var columnLetters = [Size]string{"B", "I", "N", "G", "O"}

// Card is a 5x5 grid indexed [row][col]. Column c holds values 15c+1 .. 15c+15.
type Card [Size][Size]int

// GenerateCard builds a card from the given random source.
// A nil source draws from the shared math/rand generator.
func GenerateCard(rng *rand.Rand) Card {
	perm := rand.Perm
	if rng != nil {
		perm = rng.Perm
	}

	var card Card
	for col := 0; col < Size; col++ {
		low := col*ColumnRange + 1
		picks := perm(ColumnRange)[:Size]
		for row := 0; row < Size; row++ {
			card[row][col] = low + picks[row]
		}
	}
	card[Size/2][Size/2] = FreeSpace
	return card
}

// GenerateCartela returns the card for a cartela index within one room.
// The same seed and index always produce the same card.
func GenerateCartela(seed int64, index int) Card {
	source := rand.NewSource(seed ^ (int64(index) * 0x5DEECE66D))
	return GenerateCard(rand.New(source))
}

// ColumnFor returns the column a ball value belongs to, or -1 when it is out of range
func ColumnFor(value int) int {
	if value < 1 || value > MaxBallValue {
		return -1
	}
	return (value - 1) / ColumnRange
}

// Label formats a ball with its column letter, e.g. "N-42"
func Label(value int) string {
	col := ColumnFor(value)
	if col < 0 {
		return fmt.Sprintf("%d", value)
	}
	return fmt.Sprintf("%s-%d", columnLetters[col], value)
}

// Contains reports whether value appears on the card. The free space is never matched.
func (c Card) Contains(value int) bool {
	if value == FreeSpace {
		return false
	}
	col := ColumnFor(value)
	if col < 0 {
		return false
	}
	for row := 0; row < Size; row++ {
		if c[row][col] == value {
			return true
		}
	}
	return false
}

// Numbers returns every non-free value on the card in row-major order
func (c Card) Numbers() []int {
	numbers := make([]int, 0, Size*Size-1)
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if c[row][col] != FreeSpace {
				numbers = append(numbers, c[row][col])
			}
		}
	}
	return numbers
}

// Validate checks the column ranges, the per-column uniqueness and the free center
func (c Card) Validate() error {
	if c[Size/2][Size/2] != FreeSpace {
		return fmt.Errorf("center cell is %d, expected free space", c[Size/2][Size/2])
	}
	for col := 0; col < Size; col++ {
		low, high := col*ColumnRange+1, (col+1)*ColumnRange
		seen := make(map[int]bool, Size)
		for row := 0; row < Size; row++ {
			if row == Size/2 && col == Size/2 {
				continue
			}
			v := c[row][col]
			if v < low || v > high {
				return fmt.Errorf("cell [%d][%d]=%d outside column range %d-%d", row, col, v, low, high)
			}
			if seen[v] {
				return fmt.Errorf("value %d repeated in column %s", v, columnLetters[col])
			}
			seen[v] = true
		}
	}
	return nil
}
