package engine

import "encoding/json"

// Scores returns each player's hand total, indexed by seat.
func (g *GameState) Scores() []int {
	out := make([]int, len(g.Players))
	for i := range g.Players {
		for _, c := range g.Players[i].Hand {
			out[i] += c.Value()
		}
	}
	return out
}

// Result is the terminal outcome of a game.
type Result struct {
	Scores      map[string]int `json:"scores"`
	WinnerIDs   []string       `json:"winnerIds"`
	CallerWon   bool           `json:"callerWon"`
	VintoCaller string         `json:"vintoCaller,omitempty"`
}

// ScoresJSON returns the score map serialized for storage.
func (r Result) ScoresJSON() ([]byte, error) {
	return json.Marshal(r.Scores)
}

// Outcome computes the final result. The Vinto caller wins if no coalition
// member beats their score; the caller also wins ties, since they staked
// the round on the call. If the caller loses, the coalition members with
// the lowest score share the win.
func (g *GameState) Outcome() Result {
	scores := g.Scores()
	res := Result{
		Scores:      make(map[string]int, len(g.Players)),
		VintoCaller: g.VintoCallerID,
	}
	for i := range g.Players {
		res.Scores[g.Players[i].ID] = scores[i]
	}

	callerIdx := -1
	if g.VintoCallerID != "" {
		callerIdx = g.playerIndex(g.VintoCallerID)
	}

	if callerIdx >= 0 {
		callerScore := scores[callerIdx]
		beaten := false
		for i := range g.Players {
			if i != callerIdx && scores[i] < callerScore {
				beaten = true
			}
		}
		if !beaten {
			res.CallerWon = true
			res.WinnerIDs = []string{g.VintoCallerID}
			return res
		}
		best := 0
		for i := range g.Players {
			if i == callerIdx {
				continue
			}
			if len(res.WinnerIDs) == 0 || scores[i] < best {
				best = scores[i]
				res.WinnerIDs = []string{g.Players[i].ID}
			} else if scores[i] == best {
				res.WinnerIDs = append(res.WinnerIDs, g.Players[i].ID)
			}
		}
		return res
	}

	// No caller (game ended another way): plain lowest score wins.
	best := 0
	for i := range g.Players {
		if len(res.WinnerIDs) == 0 || scores[i] < best {
			best = scores[i]
			res.WinnerIDs = []string{g.Players[i].ID}
		} else if scores[i] == best {
			res.WinnerIDs = append(res.WinnerIDs, g.Players[i].ID)
		}
	}
	return res
}
