package engine

import "errors"

// ErrEmptyPile is returned by DrawTop when the pile has no cards.
var ErrEmptyPile = errors.New("engine: pile is empty")

// Pile is an ordered card container with top-of-stack semantics. The last
// element of the slice is the top. Pile does no rule checking; callers
// enforce game legality.
type Pile struct {
	Cards []Card `json:"cards"`
}

// NewPile returns a pile holding the given cards, bottom first.
func NewPile(cards []Card) Pile {
	p := Pile{Cards: make([]Card, len(cards))}
	copy(p.Cards, cards)
	return p
}

// AddToTop places a card on top of the pile.
func (p *Pile) AddToTop(c Card) {
	p.Cards = append(p.Cards, c)
}

// DrawTop removes and returns the top card, or ErrEmptyPile.
func (p *Pile) DrawTop() (Card, error) {
	if len(p.Cards) == 0 {
		return Card{}, ErrEmptyPile
	}
	c := p.Cards[len(p.Cards)-1]
	p.Cards = p.Cards[:len(p.Cards)-1]
	return c, nil
}

// PeekTop returns the top card without removing it.
func (p *Pile) PeekTop() (Card, bool) {
	if len(p.Cards) == 0 {
		return Card{}, false
	}
	return p.Cards[len(p.Cards)-1], true
}

// PeekAt returns the card at index i (0 = bottom) without removing it.
func (p *Pile) PeekAt(i int) (Card, bool) {
	if i < 0 || i >= len(p.Cards) {
		return Card{}, false
	}
	return p.Cards[i], true
}

// Len returns the number of cards in the pile.
func (p *Pile) Len() int { return len(p.Cards) }

// IsEmpty reports whether the pile has no cards.
func (p *Pile) IsEmpty() bool { return len(p.Cards) == 0 }

// clone returns a deep copy of the pile.
func (p Pile) clone() Pile {
	out := Pile{Cards: make([]Card, len(p.Cards))}
	copy(out.Cards, p.Cards)
	return out
}
