package engine

// CardsPerPlayer is the number of cards dealt to each seat.
const CardsPerPlayer = 4

// SetupPeekLimit is how many of their own cards a player may memorize
// during setup.
const SetupPeekLimit = 2

// Seat describes one player joining a new game.
type Seat struct {
	ID    string
	Name  string
	IsBot bool
}

// NewGame builds the initial GameState: full deck in the draw pile, seats
// assigned, phase "setup". The deck is not yet shuffled or dealt.
func NewGame(seed uint64, seats []Seat, difficulty Difficulty) GameState {
	g := GameState{
		Phase:      PhaseSetup,
		SubPhase:   SubPhaseIdle,
		Difficulty: difficulty,
		RNG:        seed,
	}
	if g.RNG == 0 {
		g.RNG = 1 // xorshift can't start at 0
	}
	if difficulty == "" {
		g.Difficulty = DifficultyModerate
	}

	g.Players = make([]PlayerState, len(seats))
	for i, s := range seats {
		g.Players[i] = PlayerState{
			ID:    s.ID,
			Name:  s.Name,
			IsBot: s.IsBot,
			Hand:  make([]Card, 0, CardsPerPlayer+2),
		}
	}

	g.DrawPile = NewPile(NewDeck())
	return g
}

// Deal shuffles the draw pile and deals CardsPerPlayer cards to each seat,
// one at a time around the table, then flips the top card to start the
// discard pile.
func (g *GameState) Deal() {
	g.shufflePile(&g.DrawPile)

	for c := 0; c < CardsPerPlayer; c++ {
		for p := range g.Players {
			card, err := g.DrawPile.DrawTop()
			if err != nil {
				panic("engine: deck exhausted during deal")
			}
			g.Players[p].Hand = append(g.Players[p].Hand, card)
		}
	}

	top, err := g.DrawPile.DrawTop()
	if err != nil {
		panic("engine: deck exhausted during deal")
	}
	g.DiscardPile.AddToTop(top)

	g.CurrentPlayerIndex = 0
	g.TurnCount = 1
	g.RoundNumber = 1
}

// shufflePile runs a seeded Fisher-Yates shuffle over the pile in place.
func (g *GameState) shufflePile(p *Pile) {
	for i := p.Len() - 1; i > 0; i-- {
		j := int(g.randN(uint64(i + 1)))
		p.Cards[i], p.Cards[j] = p.Cards[j], p.Cards[i]
	}
}

// attemptReshuffle moves every discard card except the top back into the
// draw pile and shuffles. No-op unless the discard holds at least 2 cards.
func (g *GameState) attemptReshuffle() {
	if g.DiscardPile.Len() <= 1 {
		return
	}

	top := g.DiscardPile.Cards[g.DiscardPile.Len()-1]
	rest := g.DiscardPile.Cards[:g.DiscardPile.Len()-1]

	g.DrawPile.Cards = append(g.DrawPile.Cards, rest...)
	g.DiscardPile = NewPile([]Card{top})

	g.shufflePile(&g.DrawPile)
}

// drawPenalty moves one card from the draw pile into the player's hand,
// face down (the player gains no knowledge of it). Reshuffles first if the
// draw pile is out. If no card can be produced the penalty is skipped.
func (g *GameState) drawPenalty(idx int) {
	if g.DrawPile.IsEmpty() {
		g.attemptReshuffle()
	}
	card, err := g.DrawPile.DrawTop()
	if err != nil {
		return
	}
	g.Players[idx].Hand = append(g.Players[idx].Hand, card)
}
