package engine

// handleUseCardAction commits the pending card to its action and moves to
// target selection. Kings take a separate path: their "target" is the card
// the declaration will be made for.
func (g *GameState) handleUseCardAction(a UseCardAction) {
	g.Pending.ActionPhase = ActionPhaseTargeting
	g.Pending.TargetKind = g.Pending.Card.Rank.Action()
	g.Pending.Targets = nil
	g.SubPhase = SubPhaseAwaiting
	g.recordHistory(HistoryEntry{Kind: "use-card-action", PlayerID: a.PlayerID, Rank: g.Pending.Card.Rank})
}

// handleSelectActionTarget appends one target and resolves the action once
// it has enough of them. Peeks wait for an explicit confirm; the Queen waits
// for an explicit swap decision.
func (g *GameState) handleSelectActionTarget(a SelectActionTarget) {
	target := g.PlayerByID(a.TargetPlayerID)
	sel := TargetSelection{PlayerID: a.TargetPlayerID, Position: a.Position}

	switch g.Pending.TargetKind {
	case ActionPeekOwn:
		c := target.Hand[a.Position]
		sel.Card = &c
		g.Pending.Targets = append(g.Pending.Targets, sel)
		target.markKnown(a.Position)
		g.recordHistory(HistoryEntry{Kind: "peek-target", PlayerID: a.PlayerID,
			TargetPlayerID: a.TargetPlayerID, Position: a.Position})

	case ActionPeekOpponent:
		c := target.Hand[a.Position]
		sel.Card = &c
		g.Pending.Targets = append(g.Pending.Targets, sel)
		g.recordHistory(HistoryEntry{Kind: "peek-target", PlayerID: a.PlayerID,
			TargetPlayerID: a.TargetPlayerID, Position: a.Position})

	case ActionSwapCards:
		g.Pending.Targets = append(g.Pending.Targets, sel)
		g.recordHistory(HistoryEntry{Kind: "swap-target", PlayerID: a.PlayerID,
			TargetPlayerID: a.TargetPlayerID, Position: a.Position})
		if len(g.Pending.Targets) == 2 {
			t0, t1 := g.Pending.Targets[0], g.Pending.Targets[1]
			g.swapBetweenHands(t0, t1)
			g.recordHistory(HistoryEntry{Kind: "swap-cards", PlayerID: a.PlayerID,
				TargetPlayerID: t0.PlayerID, Position: t0.Position,
				TargetPlayer2: t1.PlayerID, Position2: t1.Position})
			g.discardPendingCard(true)
			g.closePendingIntoTossIn(RankJack, a.PlayerID)
		}

	case ActionPeekThenSwap:
		c := target.Hand[a.Position]
		sel.Card = &c
		g.Pending.Targets = append(g.Pending.Targets, sel)
		g.recordHistory(HistoryEntry{Kind: "peek-swap-target", PlayerID: a.PlayerID,
			TargetPlayerID: a.TargetPlayerID, Position: a.Position})
		// Both cards peeked: stay awaiting the execute/skip decision.

	case ActionForceDraw:
		g.Pending.Targets = append(g.Pending.Targets, sel)
		if g.DrawPile.IsEmpty() {
			g.attemptReshuffle()
		}
		if card, err := g.DrawPile.DrawTop(); err == nil {
			target.Hand = append(target.Hand, card)
		}
		g.recordHistory(HistoryEntry{Kind: "force-draw", PlayerID: a.PlayerID,
			TargetPlayerID: a.TargetPlayerID})
		g.discardPendingCard(true)
		g.closePendingIntoTossIn(RankAce, a.PlayerID)

	default:
		panic("engine: select-action-target on rank without targets")
	}
}

// handleConfirmPeek closes a 7/8/9/10 peek: the action card goes to the
// discard pile and its toss-in window opens.
func (g *GameState) handleConfirmPeek(a ConfirmPeek) {
	rank := g.Pending.Card.Rank
	g.recordHistory(HistoryEntry{Kind: "confirm-peek", PlayerID: a.PlayerID, Rank: rank})
	g.discardPendingCard(true)
	g.closePendingIntoTossIn(rank, a.PlayerID)
}

// handleQueenDecision executes or skips the Queen's swap of the two peeked
// cards, then discards the Queen.
func (g *GameState) handleQueenDecision(playerID string, execute bool) {
	if execute {
		t0, t1 := g.Pending.Targets[0], g.Pending.Targets[1]
		g.swapBetweenHands(t0, t1)
		// Unlike the blind Jack swap, the actor peeked both cards, so they
		// still know any of their own positions the swap touched.
		for _, t := range []TargetSelection{t0, t1} {
			if t.PlayerID == playerID {
				g.PlayerByID(playerID).markKnown(t.Position)
			}
		}
		g.recordHistory(HistoryEntry{Kind: "queen-swap", PlayerID: playerID,
			TargetPlayerID: t0.PlayerID, Position: t0.Position,
			TargetPlayer2: t1.PlayerID, Position2: t1.Position})
	} else {
		g.recordHistory(HistoryEntry{Kind: "queen-skip", PlayerID: playerID})
	}
	g.discardPendingCard(true)
	g.closePendingIntoTossIn(RankQueen, playerID)
}

// handleSelectKingCardTarget records the card the King will declare for.
// The card is not revealed to anyone.
func (g *GameState) handleSelectKingCardTarget(a SelectKingCardTarget) {
	g.Pending.KingCard = &TargetSelection{PlayerID: a.TargetPlayerID, Position: a.Position}
	g.Pending.ActionPhase = ActionPhaseDeclaring
	g.SubPhase = SubPhaseDeclaringRank
	g.recordHistory(HistoryEntry{Kind: "king-card-target", PlayerID: a.PlayerID,
		TargetPlayerID: a.TargetPlayerID, Position: a.Position})
}

// handleDeclareKingAction discards the King and opens a wildcard toss-in
// for the declared rank. The declaration is an instruction, not a claim; it
// is never checked against the selected card.
func (g *GameState) handleDeclareKingAction(a DeclareKingAction) {
	g.recordHistory(HistoryEntry{Kind: "declare-king", PlayerID: a.PlayerID, Rank: a.DeclaredRank})
	g.discardPendingCard(true)
	g.closePendingIntoTossIn(a.DeclaredRank, a.PlayerID)
}

// swapBetweenHands exchanges the cards at the two selections. Neither owner
// learns the incoming card, so own-card knowledge at both positions is
// dropped.
func (g *GameState) swapBetweenHands(t0, t1 TargetSelection) {
	p0 := g.PlayerByID(t0.PlayerID)
	p1 := g.PlayerByID(t1.PlayerID)
	p0.Hand[t0.Position], p1.Hand[t1.Position] = p1.Hand[t1.Position], p0.Hand[t0.Position]
	p0.unmarkKnown(t0.Position)
	p1.unmarkKnown(t1.Position)
}

// canPlayAction reports whether the given action kind has at least one
// legal target from the actor's seat right now. Used to fizzle unplayable
// actions instead of stranding the state machine.
func (g *GameState) canPlayAction(actorID string, kind ActionKind) bool {
	actor := g.PlayerByID(actorID)
	switch kind {
	case ActionPeekOwn:
		return len(actor.Hand) > 0
	case ActionPeekOpponent, ActionForceDraw:
		for i := range g.Players {
			if g.Players[i].ID != actorID && (kind == ActionForceDraw || len(g.Players[i].Hand) > 0) {
				return true
			}
		}
		return false
	case ActionSwapCards, ActionPeekThenSwap:
		withCards := 0
		for i := range g.Players {
			if len(g.Players[i].Hand) > 0 {
				withCards++
			}
		}
		return withCards >= 2
	case ActionDeclare:
		for i := range g.Players {
			if len(g.Players[i].Hand) > 0 {
				return true
			}
		}
		return false
	}
	return false
}
