package engine

// openTossIn starts a toss-in window for the given rank. A window opened by
// a chained (queued) action inherits the remaining queue and the original
// seat index so that when the whole chain drains, play resumes from where
// the chain started.
func (g *GameState) openTossIn(rank Rank, initiatorID string, queue []QueuedAction, originalIndex int) {
	g.TossIn = &ActiveTossIn{
		Rank:                rank,
		InitiatorID:         initiatorID,
		OriginalPlayerIndex: originalIndex,
		QueuedActions:       queue,
		WaitingForInput:     true,
	}
	g.SubPhase = SubPhaseTossQueue
}

// handleParticipateInTossIn throws the actor's card at Position into the
// window. A matching rank sheds the card onto the discard pile; an action
// card additionally enqueues its effect for execution after the window. A
// mismatched rank costs the actor one face-down penalty draw and the card
// stays put.
func (g *GameState) handleParticipateInTossIn(a ParticipateInTossIn) {
	idx := g.playerIndex(a.PlayerID)
	p := &g.Players[idx]
	card := p.Hand[a.Position]

	if card.Rank != g.TossIn.Rank {
		g.drawPenalty(idx)
		g.recordHistory(HistoryEntry{Kind: "toss-in-penalty", PlayerID: a.PlayerID, Position: a.Position})
		return
	}

	p.Hand = append(p.Hand[:a.Position], p.Hand[a.Position+1:]...)
	p.forgetPosition(a.Position)
	g.DiscardPile.AddToTop(card)

	joined := false
	for _, id := range g.TossIn.Participants {
		if id == a.PlayerID {
			joined = true
		}
	}
	if !joined {
		g.TossIn.Participants = append(g.TossIn.Participants, a.PlayerID)
	}

	if card.Rank.HasAction() {
		g.TossIn.QueuedActions = append(g.TossIn.QueuedActions, QueuedAction{Card: card, PlayerID: a.PlayerID})
	}

	c := card
	g.recordHistory(HistoryEntry{Kind: "toss-in", PlayerID: a.PlayerID,
		Position: a.Position, Rank: card.Rank, Card: &c})
}

// handlePlayerTossInFinished marks the actor done. Once every seat is done:
// queued action-card effects run one at a time, strictly FIFO, each as a
// fresh pending action that reopens the window when it resolves; with the
// queue drained the window closes and play advances from the original seat.
func (g *GameState) handlePlayerTossInFinished(a PlayerTossInFinished) {
	g.TossIn.ReadyPlayers = append(g.TossIn.ReadyPlayers, a.PlayerID)
	g.recordHistory(HistoryEntry{Kind: "toss-in-finished", PlayerID: a.PlayerID})

	for i := range g.Players {
		if !g.TossIn.IsReady(g.Players[i].ID) {
			return
		}
	}
	g.resolveTossInQueue()
}

// resolveTossInQueue pops the next playable queued action into a pending
// action, or closes the window if nothing remains. Queued actions whose
// targets have disappeared (hands emptied during the window) fizzle and are
// skipped.
func (g *GameState) resolveTossInQueue() {
	queue := g.TossIn.QueuedActions
	origin := g.TossIn.OriginalPlayerIndex

	for len(queue) > 0 {
		qa := queue[0]
		queue = queue[1:]
		if !g.canPlayAction(qa.PlayerID, qa.Card.Rank.Action()) {
			g.recordHistory(HistoryEntry{Kind: "action-fizzled", PlayerID: qa.PlayerID, Rank: qa.Card.Rank})
			continue
		}

		g.TossIn = nil
		g.Pending = &PendingAction{
			Card:                qa.Card,
			PlayerID:            qa.PlayerID,
			ActionPhase:         ActionPhaseTargeting,
			TargetKind:          qa.Card.Rank.Action(),
			FromQueue:           true,
			ResumeQueue:         queue,
			ResumeOriginalIndex: origin,
		}
		g.SubPhase = SubPhaseAwaiting
		g.recordHistory(HistoryEntry{Kind: "toss-in-action", PlayerID: qa.PlayerID, Rank: qa.Card.Rank})
		return
	}

	g.TossIn = nil
	g.advanceTurnFrom(origin)
}

// handleFinishTossInPeriod closes the window without advancing the turn.
// Turn advance, when wanted, is its own later action.
func (g *GameState) handleFinishTossInPeriod(a FinishTossInPeriod) {
	g.recordHistory(HistoryEntry{Kind: "finish-toss-in-period", PlayerID: a.PlayerID})
	g.TossIn = nil
	g.SubPhase = g.idleSubPhaseFor(g.CurrentPlayerIndex)
}
