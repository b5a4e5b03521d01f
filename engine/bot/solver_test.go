package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vintolabs/vinto/engine"
)

func knownHand(cards ...engine.Card) map[int]engine.Card {
	out := make(map[int]engine.Card, len(cards))
	for i, c := range cards {
		out[i] = c
	}
	return out
}

func TestVintoCallSafeWithFullKnowledge(t *testing.T) {
	caller := []engine.Card{
		{ID: "c3", Rank: engine.RankThree},
		{ID: "c5", Rank: engine.RankFive},
	}
	opponents := []OpponentProfile{
		{
			PlayerID: "p2",
			HandSize: 2,
			Known: knownHand(
				engine.Card{ID: "c7", Rank: engine.RankSeven},
				engine.Card{ID: "c8", Rank: engine.RankEight},
			),
		},
		{
			PlayerID: "p3",
			HandSize: 2,
			Known: knownHand(
				engine.Card{ID: "c9", Rank: engine.RankNine},
				engine.Card{ID: "c22", Rank: engine.RankNine},
			),
		},
	}

	res := ValidateVintoCall(caller, opponents, nil)

	require.True(t, res.ShouldCallVinto, "8 against a fully known 15 is a safe call: %s", res.Reason)
	assert.Equal(t, 8, res.CallerScore)
	assert.Equal(t, 15, res.WorstCaseOpponent)
	assert.InDelta(t, 0.95, res.Confidence, 1e-9, "full coverage should pin confidence at the ceiling")
}

func TestVintoCallRejectedWhenTied(t *testing.T) {
	caller := []engine.Card{{ID: "c5", Rank: engine.RankFive}}
	opponents := []OpponentProfile{
		{
			PlayerID: "p2",
			HandSize: 1,
			Known:    knownHand(engine.Card{ID: "c18", Rank: engine.RankFive}),
		},
	}

	res := ValidateVintoCall(caller, opponents, nil)
	assert.False(t, res.ShouldCallVinto, "a tie is not strictly below the bound")
}

func TestVintoThreatCardsTightenTheBound(t *testing.T) {
	caller := []engine.Card{{ID: "c2", Rank: engine.RankTwo}}
	plain := []OpponentProfile{
		{
			PlayerID: "p2",
			HandSize: 1,
			Known:    knownHand(engine.Card{ID: "c6", Rank: engine.RankSix}),
		},
	}
	threat := []OpponentProfile{
		{
			PlayerID: "p2",
			HandSize: 2,
			Known: knownHand(
				engine.Card{ID: "c6", Rank: engine.RankSix},
				engine.Card{ID: "c13", Rank: engine.RankKing},
			),
		},
	}

	base := ValidateVintoCall(caller, plain, nil)
	withKing := ValidateVintoCall(caller, threat, nil)

	// The King is worth 0 but its wildcard ability still costs the discount.
	assert.Equal(t, 6, base.WorstCaseOpponent)
	assert.Equal(t, 3, withKing.WorstCaseOpponent)

	played := threat
	played[0].Known[1] = engine.Card{ID: "c13", Rank: engine.RankKing, Played: true}
	spent := ValidateVintoCall(caller, played, nil)
	assert.Equal(t, 6, spent.WorstCaseOpponent, "a played King is no longer a threat")
}

func TestVintoConfidenceGrowsWithCoverage(t *testing.T) {
	caller := []engine.Card{{ID: "c1", Rank: engine.RankAce}}
	hidden := []engine.Card{
		{ID: "c4", Rank: engine.RankFour},
		{ID: "c17", Rank: engine.RankFour},
		{ID: "c30", Rank: engine.RankFour},
		{ID: "c43", Rank: engine.RankFour},
	}

	prev := -1.0
	for revealed := 0; revealed <= len(hidden); revealed++ {
		opp := OpponentProfile{
			PlayerID: "p2",
			HandSize: len(hidden),
			Known:    knownHand(hidden[:revealed]...),
		}
		res := ValidateVintoCall(caller, []OpponentProfile{opp}, nil)
		require.Greater(t, res.Confidence, prev,
			"confidence must strictly grow as coverage goes from %d to %d known cards", revealed-1, revealed)
		prev = res.Confidence
	}
	assert.InDelta(t, 0.95, prev, 1e-9)
}

func TestVintoUnknownCardsPricedOptimistically(t *testing.T) {
	caller := []engine.Card{{ID: "c5", Rank: engine.RankFive}}
	opp := OpponentProfile{PlayerID: "p2", HandSize: 4}

	res := ValidateVintoCall(caller, []OpponentProfile{opp}, nil)

	// Four unknown cards priced at the low end of a nearly full deck: the
	// lowest 30% is dominated by Jokers, Kings, Aces and twos, so the bound
	// must sit well under the all-cards mean of ~5.4 per card.
	assert.Less(t, res.WorstCaseOpponent, 12)
	assert.False(t, res.ShouldCallVinto, "5 does not beat four optimistically priced unknowns")
}

func TestVintoNoOpponents(t *testing.T) {
	res := ValidateVintoCall([]engine.Card{{ID: "c13", Rank: engine.RankKing}}, nil, nil)
	assert.True(t, res.ShouldCallVinto)
	assert.Equal(t, 0, res.WorstCaseOpponent, "no scan sentinel may leak when there is nobody to bound")
}
