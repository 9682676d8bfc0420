// internal/models/card.go
package models

// Color is one of the four card colours.
type Color string

const (
	Red    Color = "red"
	Blue   Color = "blue"
	Green  Color = "green"
	Yellow Color = "yellow"
)

// Colors lists every colour in deck-building order.
var Colors = []Color{Red, Blue, Green, Yellow}

// Value is the digit printed on a card.
type Value string

const (
	Zero  Value = "0"
	One   Value = "1"
	Two   Value = "2"
	Three Value = "3"
	Four  Value = "4"
	Five  Value = "5"
	Six   Value = "6"
	Seven Value = "7"
	Eight Value = "8"
	Nine  Value = "9"
)

// Values lists every value in ascending order.
var Values = []Value{Zero, One, Two, Three, Four, Five, Six, Seven, Eight, Nine}

// DeckSize is the number of cards in a full deck: one zero per colour plus two
// of every other value per colour.
const DeckSize = 76

// Card is an immutable (colour, value) pair. Cards with the same colour and
// value are indistinguishable.
type Card struct {
	Color Color `json:"color"`
	Value Value `json:"value"`
}

// NewCard is a convenience constructor.
func NewCard(c Color, v Value) Card {
	return Card{Color: c, Value: v}
}

// Matches reports whether c may be played on top of top.
func (c Card) Matches(top Card) bool {
	return c.Color == top.Color || c.Value == top.Value
}

func (c Card) String() string {
	return string(c.Color) + " " + string(c.Value)
}

// Valid reports whether both attributes belong to the fixed enumerations.
func (c Card) Valid() bool {
	colorOK, valueOK := false, false
	for _, col := range Colors {
		if c.Color == col {
			colorOK = true
			break
		}
	}
	for _, v := range Values {
		if c.Value == v {
			valueOK = true
			break
		}
	}
	return colorOK && valueOK
}
