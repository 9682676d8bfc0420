package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCardMatches(t *testing.T) {
	top := NewCard(Blue, Five)

	assert.True(t, NewCard(Blue, One).Matches(top), "same colour")
	assert.True(t, NewCard(Red, Five).Matches(top), "same value")
	assert.True(t, NewCard(Blue, Five).Matches(top), "identical card")
	assert.False(t, NewCard(Green, Seven).Matches(top), "neither")
}

func TestCardEquality(t *testing.T) {
	assert.Equal(t, NewCard(Red, Zero), Card{Color: Red, Value: Zero})
	assert.NotEqual(t, NewCard(Red, Zero), NewCard(Yellow, Zero))
}

func TestCardString(t *testing.T) {
	assert.Equal(t, "yellow 9", NewCard(Yellow, Nine).String())
}

func TestCardValid(t *testing.T) {
	assert.True(t, NewCard(Green, Three).Valid())
	assert.False(t, Card{Color: "purple", Value: Three}.Valid())
	assert.False(t, Card{Color: Green, Value: "10"}.Valid())
}

func TestPlayerRemoveCard(t *testing.T) {
	p := NewPlayer(0)
	p.Hand = []Card{NewCard(Red, One), NewCard(Blue, Two), NewCard(Green, Three)}

	removed := p.RemoveCard(1)

	assert.Equal(t, NewCard(Blue, Two), removed)
	assert.Equal(t, []Card{NewCard(Red, One), NewCard(Green, Three)}, p.Hand)
	assert.Equal(t, 2, p.HandSize())
}
