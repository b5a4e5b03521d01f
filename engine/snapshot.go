package engine

import "encoding/json"

// Snapshot serializes the complete game state, hidden information included,
// as flat JSON. Restoring a snapshot and re-dispatching a recorded action
// sequence reproduces the final state exactly: every source of randomness
// lives in the serialized RNG field.
func (g *GameState) Snapshot() ([]byte, error) {
	return json.Marshal(g)
}

// RestoreSnapshot rebuilds a GameState from Snapshot output.
func RestoreSnapshot(data []byte) (GameState, error) {
	var g GameState
	if err := json.Unmarshal(data, &g); err != nil {
		return GameState{}, err
	}
	return g, nil
}

// CardCount returns the multiset size of all cards in the state: both
// piles, every hand, and the card in flight inside a pending action (unless
// it already sits on the discard pile). For every reachable state this
// equals DeckSize.
func (g *GameState) CardCount() int {
	n := g.DrawPile.Len() + g.DiscardPile.Len()
	for i := range g.Players {
		n += len(g.Players[i].Hand)
	}
	if g.Pending != nil && !g.Pending.FromQueue {
		n++
	}
	return n
}
