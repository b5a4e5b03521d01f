package bot

import (
	"fmt"
	"math"
	"sort"

	"github.com/vintolabs/vinto/engine"
)

// swapThreatDiscount is subtracted from an opponent's worst-case score for
// each known, unplayed swap-capable or wildcard action card they hold,
// modeling the hand improvement that card could still buy them before the
// round ends.
const swapThreatDiscount = 3

// lowPercentile is the slice of the remaining-card value distribution used
// to price unknown opponent cards: the mean of the lowest ~30%.
const lowPercentile = 0.30

// OpponentProfile is the solver's view of one opponent: how many cards they
// hold and which of those are known.
type OpponentProfile struct {
	PlayerID string
	HandSize int
	Known    map[int]engine.Card
}

// VintoAnalysis is the solver's verdict on ending the game now.
type VintoAnalysis struct {
	ShouldCallVinto   bool
	CallerScore       int
	WorstCaseOpponent int
	Confidence        float64
	Reason            string
}

// ValidateVintoCall decides whether calling Vinto is safe for a caller
// holding callerCards. For each opponent it computes a pessimistic bound on
// the score they could still reach: known card values, plus unknown slots
// priced at the optimistic end of the remaining-card distribution, minus a
// flat discount per known unplayed threat card. The call is judged safe iff
// the caller's score is strictly below the minimum of those bounds.
//
// Confidence reflects information coverage, not verdict strength:
// 0.3 + 0.65 * (known opponent cards / total opponent cards), so a verdict
// from full knowledge lands at the ~0.95 ceiling.
func ValidateVintoCall(callerCards []engine.Card, opponents []OpponentProfile, discardPile []engine.Card) VintoAnalysis {
	callerScore := 0
	for _, c := range callerCards {
		callerScore += c.Value()
	}

	lowMean := bestRemainingEstimate(callerCards, opponents, discardPile)

	totalCards, knownCards := 0, 0
	worst := math.MaxInt
	worstID := ""
	for _, opp := range opponents {
		totalCards += opp.HandSize
		knownCards += len(opp.Known)

		score := 0.0
		threats := 0
		for _, c := range opp.Known {
			score += float64(c.Value())
			if !c.Played && isThreatCard(c.Rank) {
				threats++
			}
		}
		unknown := opp.HandSize - len(opp.Known)
		if unknown < 0 {
			unknown = 0
		}
		score += float64(unknown) * lowMean
		score -= float64(threats * swapThreatDiscount)

		bound := int(math.Floor(score))
		if bound < worst {
			worst = bound
			worstID = opp.PlayerID
		}
	}

	coverage := 1.0
	if totalCards > 0 {
		coverage = float64(knownCards) / float64(totalCards)
	}
	confidence := 0.3 + 0.65*coverage

	res := VintoAnalysis{
		CallerScore: callerScore,
		Confidence:  confidence,
	}
	if len(opponents) == 0 {
		// No bound to report; leave WorstCaseOpponent at zero rather than
		// the MaxInt scan sentinel.
		res.ShouldCallVinto = true
		res.Reason = "no opponents remain"
		return res
	}
	res.WorstCaseOpponent = worst
	if callerScore < worst {
		res.ShouldCallVinto = true
		res.Reason = fmt.Sprintf("caller %d beats every worst case (min %d via %s)", callerScore, worst, worstID)
	} else {
		res.Reason = fmt.Sprintf("opponent %s could reach %d, caller has %d", worstID, worst, callerScore)
	}
	return res
}

// isThreatCard reports whether a rank can still rearrange hands (swap
// ability) or stand in for one (King wildcard).
func isThreatCard(r engine.Rank) bool {
	switch r.Action() {
	case engine.ActionSwapCards, engine.ActionPeekThenSwap, engine.ActionDeclare:
		return true
	}
	return false
}

// bestRemainingEstimate prices an unknown opponent card: the mean of the
// lowest lowPercentile slice of card values not yet accounted for by the
// caller's hand, the known opponent cards, or the discard pile.
func bestRemainingEstimate(callerCards []engine.Card, opponents []OpponentProfile, discardPile []engine.Card) float64 {
	seen := make(map[string]bool)
	for _, c := range callerCards {
		seen[c.ID] = true
	}
	for _, c := range discardPile {
		seen[c.ID] = true
	}
	for _, opp := range opponents {
		for _, c := range opp.Known {
			seen[c.ID] = true
		}
	}

	var values []int
	for _, c := range engine.NewDeck() {
		if !seen[c.ID] {
			values = append(values, c.Rank.Value())
		}
	}
	if len(values) == 0 {
		return 0
	}
	sort.Ints(values)

	n := int(math.Ceil(float64(len(values)) * lowPercentile))
	if n < 1 {
		n = 1
	}
	sum := 0
	for _, v := range values[:n] {
		sum += v
	}
	return float64(sum) / float64(n)
}
