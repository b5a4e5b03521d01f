// Package engine implements the Vinto card game rules.
//
// The package is a pure, deterministic state-machine core: every game
// transition goes through Reduce, which takes a GameState value and an
// Action and returns a fresh GameState value. Nothing in this package
// performs I/O, sleeps, or touches shared mutable state.
package engine

import "fmt"

// Rank identifies one of the 13 card ranks or the Joker.
type Rank string

const (
	RankAce   Rank = "A"
	RankTwo   Rank = "2"
	RankThree Rank = "3"
	RankFour  Rank = "4"
	RankFive  Rank = "5"
	RankSix   Rank = "6"
	RankSeven Rank = "7"
	RankEight Rank = "8"
	RankNine  Rank = "9"
	RankTen   Rank = "10"
	RankJack  Rank = "J"
	RankQueen Rank = "Q"
	RankKing  Rank = "K"
	RankJoker Rank = "Joker"
)

// Ranks lists every rank in deck order. Four copies of each non-Joker rank
// plus two Jokers make up the 54-card deck.
var Ranks = [14]Rank{
	RankAce, RankTwo, RankThree, RankFour, RankFive, RankSix, RankSeven,
	RankEight, RankNine, RankTen, RankJack, RankQueen, RankKing, RankJoker,
}

// DeckSize is the fixed number of cards in play: 4 suits x 13 ranks + 2 Jokers.
const DeckSize = 54

// Value returns the point value of the rank.
//   - Two through Ten → face value
//   - Jack, Queen → 10
//   - King → 0
//   - Ace → 1
//   - Joker → -1
func (r Rank) Value() int {
	switch r {
	case RankAce:
		return 1
	case RankTwo:
		return 2
	case RankThree:
		return 3
	case RankFour:
		return 4
	case RankFive:
		return 5
	case RankSix:
		return 6
	case RankSeven:
		return 7
	case RankEight:
		return 8
	case RankNine:
		return 9
	case RankTen, RankJack, RankQueen:
		return 10
	case RankKing:
		return 0
	case RankJoker:
		return -1
	}
	panic(fmt.Sprintf("engine: unknown rank %q", string(r)))
}

// ActionKind classifies the special effect a rank grants when played.
type ActionKind string

const (
	ActionNone         ActionKind = ""
	ActionPeekOwn      ActionKind = "peek-own"       // 7, 8
	ActionPeekOpponent ActionKind = "peek-opponent"  // 9, 10
	ActionSwapCards    ActionKind = "swap-cards"     // J (blind)
	ActionPeekThenSwap ActionKind = "peek-then-swap" // Q
	ActionDeclare      ActionKind = "declare-action" // K (wildcard)
	ActionForceDraw    ActionKind = "force-draw"     // A
)

// Action returns the action kind associated with playing this rank, or
// ActionNone for ranks 2-6 and the Joker.
func (r Rank) Action() ActionKind {
	switch r {
	case RankSeven, RankEight:
		return ActionPeekOwn
	case RankNine, RankTen:
		return ActionPeekOpponent
	case RankJack:
		return ActionSwapCards
	case RankQueen:
		return ActionPeekThenSwap
	case RankKing:
		return ActionDeclare
	case RankAce:
		return ActionForceDraw
	default:
		return ActionNone
	}
}

// HasAction reports whether playing this rank triggers a card action.
func (r Rank) HasAction() bool { return r.Action() != ActionNone }

// IsValid reports whether r names one of the 14 recognized ranks.
func (r Rank) IsValid() bool {
	for _, k := range Ranks {
		if r == k {
			return true
		}
	}
	return false
}

// Card is a single card. Identity (ID) is stable for the whole game as the
// card moves between piles and hands. Rank never changes; Played is set when
// the card's action has been consumed so bots stop counting it as a threat.
type Card struct {
	ID     string `json:"id"`
	Rank   Rank   `json:"rank"`
	Played bool   `json:"played,omitempty"`
}

// Value returns the card's point value.
func (c Card) Value() int { return c.Rank.Value() }

// NewDeck builds the full ordered 54-card deck. IDs are assigned
// sequentially ("c1".."c54") before any shuffle so that a deck is fully
// determined by the shuffle seed.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	id := 1
	for copies := 0; copies < 4; copies++ {
		for _, r := range Ranks[:13] {
			deck = append(deck, Card{ID: fmt.Sprintf("c%d", id), Rank: r})
			id++
		}
	}
	for j := 0; j < 2; j++ {
		deck = append(deck, Card{ID: fmt.Sprintf("c%d", id), Rank: RankJoker})
		id++
	}
	return deck
}
