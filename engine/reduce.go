package engine

import "fmt"

// Reduce applies one action to the state and returns the successor state.
// The input value is never mutated: valid actions are applied to a deep
// clone, and invalid actions return the input unchanged along with the
// diagnostic. Reduce never panics on illegal play; a panic here means a
// programming error, not a player or bot mistake.
func Reduce(g GameState, a Action) (GameState, error) {
	if v := Validate(&g, a); !v.Valid {
		return g, fmt.Errorf("invalid %s: %s", a.Kind(), v.Reason)
	}

	next := g.Clone()
	switch act := a.(type) {
	case PeekSetupCard:
		next.handlePeekSetupCard(act)
	case FinishSetup:
		next.handleFinishSetup(act)
	case DrawCard:
		next.handleDrawCard(act)
	case TakeDiscard:
		next.handleTakeDiscard(act)
	case SwapCard:
		next.handleSwapCard(act)
	case DiscardCard:
		next.handleDiscardCard(act)
	case UseCardAction:
		next.handleUseCardAction(act)
	case SelectActionTarget:
		next.handleSelectActionTarget(act)
	case ConfirmPeek:
		next.handleConfirmPeek(act)
	case ExecuteQueenSwap:
		next.handleQueenDecision(act.PlayerID, true)
	case SkipQueenSwap:
		next.handleQueenDecision(act.PlayerID, false)
	case SelectKingCardTarget:
		next.handleSelectKingCardTarget(act)
	case DeclareKingAction:
		next.handleDeclareKingAction(act)
	case ParticipateInTossIn:
		next.handleParticipateInTossIn(act)
	case PlayerTossInFinished:
		next.handlePlayerTossInFinished(act)
	case FinishTossInPeriod:
		next.handleFinishTossInPeriod(act)
	case AdvanceTurn:
		next.handleAdvanceTurn(act)
	case CallVinto:
		next.handleCallVinto(act)
	default:
		panic(fmt.Sprintf("engine: unhandled action kind %q", a.Kind()))
	}
	return next, nil
}

// ---------------------------------------------------------------------------
// Setup phase
// ---------------------------------------------------------------------------

func (g *GameState) handlePeekSetupCard(a PeekSetupCard) {
	p := g.PlayerByID(a.PlayerID)
	seen := false
	for _, pos := range p.SetupPeeksUsed {
		if pos == a.Position {
			seen = true
		}
	}
	if !seen {
		p.SetupPeeksUsed = append(p.SetupPeeksUsed, a.Position)
	}
	p.markKnown(a.Position)
	g.recordHistory(HistoryEntry{Kind: "peek-setup-card", PlayerID: a.PlayerID, Position: a.Position})
}

func (g *GameState) handleFinishSetup(a FinishSetup) {
	g.PlayerByID(a.PlayerID).SetupReady = true
	g.recordHistory(HistoryEntry{Kind: "finish-setup", PlayerID: a.PlayerID})

	for i := range g.Players {
		if !g.Players[i].SetupReady {
			return
		}
	}
	g.Phase = PhasePlaying
	g.SubPhase = g.idleSubPhaseFor(g.CurrentPlayerIndex)
}

// ---------------------------------------------------------------------------
// Turn openers
// ---------------------------------------------------------------------------

func (g *GameState) handleDrawCard(a DrawCard) {
	if g.DrawPile.IsEmpty() {
		g.attemptReshuffle()
	}
	card, err := g.DrawPile.DrawTop()
	if err != nil {
		// Validator admitted the draw, so a reshuffle must have produced a card.
		panic("engine: draw pile empty after reshuffle")
	}
	g.Pending = &PendingAction{
		Card:        card,
		PlayerID:    a.PlayerID,
		ActionPhase: ActionPhaseChoosing,
	}
	g.SubPhase = SubPhaseChoosing
	g.recordHistory(HistoryEntry{Kind: "draw-card", PlayerID: a.PlayerID})
}

func (g *GameState) handleTakeDiscard(a TakeDiscard) {
	card, err := g.DiscardPile.DrawTop()
	if err != nil {
		panic("engine: discard pile empty after validation")
	}
	g.Pending = &PendingAction{
		Card:        card,
		PlayerID:    a.PlayerID,
		ActionPhase: ActionPhaseChoosing,
		FromDiscard: true,
	}
	g.SubPhase = SubPhaseChoosing
	// The discard top is public; the take is fully observable.
	c := card
	g.recordHistory(HistoryEntry{Kind: "take-discard", PlayerID: a.PlayerID, Rank: card.Rank, Card: &c})
}

func (g *GameState) handleSwapCard(a SwapCard) {
	p := g.PlayerByID(a.PlayerID)
	displaced := p.Hand[a.Position]
	p.Hand[a.Position] = g.Pending.Card

	// The actor saw the incoming card when they drew it.
	p.markKnown(a.Position)

	g.Pending.Card = displaced
	g.Pending.CanUseAction = false
	g.SubPhase = SubPhaseSelecting

	entry := HistoryEntry{Kind: "swap-card", PlayerID: a.PlayerID, Position: a.Position, Rank: a.DeclaredRank}
	if a.DeclaredRank != "" {
		if a.DeclaredRank == displaced.Rank {
			g.Pending.CanUseAction = displaced.Rank.HasAction()
		} else {
			// Wrong declaration: one face-down penalty card.
			entry.Kind = "swap-card-penalty"
			g.drawPenalty(g.playerIndex(a.PlayerID))
		}
	}
	g.recordHistory(entry)
}

func (g *GameState) handleDiscardCard(a DiscardCard) {
	card := g.discardPendingCard(false)
	c := card
	g.recordHistory(HistoryEntry{Kind: "discard-card", PlayerID: a.PlayerID, Rank: card.Rank, Card: &c})
	g.closePendingIntoTossIn(card.Rank, a.PlayerID)
}

// ---------------------------------------------------------------------------
// Turn close and Vinto call
// ---------------------------------------------------------------------------

func (g *GameState) handleAdvanceTurn(a AdvanceTurn) {
	g.recordHistory(HistoryEntry{Kind: "advance-turn", PlayerID: a.PlayerID})
	g.advanceTurnFrom(g.CurrentPlayerIndex)
}

// advanceTurnFrom rotates play to the seat after origin, bumping the wrap
// counters. If play would return to the Vinto caller during the final round
// the game goes to scoring instead.
func (g *GameState) advanceTurnFrom(origin int) {
	idx := (origin + 1) % g.NumPlayers()
	if idx == 0 {
		g.TurnCount++
		g.RoundNumber++
	}
	if g.FinalTurnTriggered && g.Phase == PhaseFinal && g.Players[idx].ID == g.VintoCallerID {
		g.Phase = PhaseScoring
		g.SubPhase = SubPhaseIdle
		return
	}
	g.CurrentPlayerIndex = idx
	g.SubPhase = g.idleSubPhaseFor(idx)
}

func (g *GameState) handleCallVinto(a CallVinto) {
	if g.VintoCallerID != "" {
		return // idempotent: the first caller stands
	}
	g.VintoCallerID = a.PlayerID
	g.FinalTurnTriggered = true
	g.Phase = PhaseFinal

	caller := g.PlayerByID(a.PlayerID)
	caller.HasCalledVinto = true

	// Everyone else forms the coalition. The leader is the member with the
	// lowest self-known score, ties to the earliest seat.
	leaderIdx := -1
	leaderScore := 0
	for i := range g.Players {
		if g.Players[i].ID == a.PlayerID {
			continue
		}
		g.Players[i].InCoalition = true
		score := 0
		for _, pos := range g.Players[i].KnownCardPositions {
			if pos >= 0 && pos < len(g.Players[i].Hand) {
				score += g.Players[i].Hand[pos].Value()
			}
		}
		if leaderIdx == -1 || score < leaderScore {
			leaderIdx = i
			leaderScore = score
		}
	}
	if leaderIdx >= 0 {
		g.CoalitionLeaderID = g.Players[leaderIdx].ID
	}

	g.recordHistory(HistoryEntry{Kind: "call-vinto", PlayerID: a.PlayerID})
}

// ---------------------------------------------------------------------------
// Pending-card plumbing shared by the ability handlers
// ---------------------------------------------------------------------------

// discardPendingCard moves the pending card to the discard pile and returns
// it. A card dequeued from a toss-in chain is already on the pile; in that
// case only its played flag is updated in place.
func (g *GameState) discardPendingCard(used bool) Card {
	card := g.Pending.Card
	card.Played = used
	if g.Pending.FromQueue {
		for i := range g.DiscardPile.Cards {
			if g.DiscardPile.Cards[i].ID == card.ID {
				g.DiscardPile.Cards[i].Played = used
				break
			}
		}
		return card
	}
	g.DiscardPile.AddToTop(card)
	return card
}

// closePendingIntoTossIn clears the pending action and opens the follow-up
// toss-in window for the given rank. A chained (queued) action carries the
// remainder of its queue and the original seat index into the new window so
// turn order resumes correctly once the whole chain drains.
func (g *GameState) closePendingIntoTossIn(rank Rank, initiatorID string) {
	queue := g.Pending.ResumeQueue
	origin := g.Pending.ResumeOriginalIndex
	if !g.Pending.FromQueue {
		queue = nil
		origin = g.CurrentPlayerIndex
	}
	g.Pending = nil
	g.openTossIn(rank, initiatorID, queue, origin)
}
