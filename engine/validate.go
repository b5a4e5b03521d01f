package engine

import "fmt"

// Verdict is the validator's answer for one (state, action) pair.
type Verdict struct {
	Valid  bool
	Reason string
}

func ok() Verdict { return Verdict{Valid: true} }

func reject(format string, args ...any) Verdict {
	return Verdict{Valid: false, Reason: fmt.Sprintf(format, args...)}
}

// Validate decides whether an action may be applied to the state. It is the
// sole admission-control point: stale, duplicate, and out-of-order actions
// (normal occurrences around the toss-in window) are rejected here so the
// reducer never has to crash on them.
func Validate(g *GameState, a Action) Verdict {
	if g.Phase == PhaseScoring {
		return reject("game is over")
	}
	if g.PlayerByID(a.Actor()) == nil {
		return reject("unknown player %q", a.Actor())
	}

	switch act := a.(type) {
	case PeekSetupCard:
		return g.validatePeekSetupCard(act)
	case FinishSetup:
		return g.validateFinishSetup(act)
	case DrawCard:
		return g.validateDraw(act.PlayerID, true)
	case TakeDiscard:
		return g.validateDraw(act.PlayerID, false)
	case SwapCard:
		return g.validateSwapCard(act)
	case DiscardCard:
		return g.validateDiscardCard(act)
	case UseCardAction:
		return g.validateUseCardAction(act)
	case SelectActionTarget:
		return g.validateSelectActionTarget(act)
	case ConfirmPeek:
		return g.validateConfirmPeek(act)
	case ExecuteQueenSwap:
		return g.validateQueenDecision(act.PlayerID)
	case SkipQueenSwap:
		return g.validateQueenDecision(act.PlayerID)
	case SelectKingCardTarget:
		return g.validateSelectKingCardTarget(act)
	case DeclareKingAction:
		return g.validateDeclareKingAction(act)
	case ParticipateInTossIn:
		return g.validateParticipateInTossIn(act)
	case PlayerTossInFinished:
		return g.validatePlayerTossInFinished(act)
	case FinishTossInPeriod:
		return g.validateFinishTossInPeriod(act)
	case AdvanceTurn:
		return g.validateAdvanceTurn(act)
	case CallVinto:
		return g.validateCallVinto(act)
	}
	return reject("unrecognized action kind %q", a.Kind())
}

func (g *GameState) validatePeekSetupCard(a PeekSetupCard) Verdict {
	if g.Phase != PhaseSetup {
		return reject("setup peeks are only allowed during setup")
	}
	p := g.PlayerByID(a.PlayerID)
	if p.SetupReady {
		return reject("player %s already finished setup", a.PlayerID)
	}
	if a.Position < 0 || a.Position >= len(p.Hand) {
		return reject("position %d out of range (hand size %d)", a.Position, len(p.Hand))
	}
	already := false
	for _, pos := range p.SetupPeeksUsed {
		if pos == a.Position {
			already = true
		}
	}
	if !already && len(p.SetupPeeksUsed) >= SetupPeekLimit {
		return reject("player %s has no setup peeks left", a.PlayerID)
	}
	return ok()
}

func (g *GameState) validateFinishSetup(a FinishSetup) Verdict {
	if g.Phase != PhaseSetup {
		return reject("setup is already finished")
	}
	if g.PlayerByID(a.PlayerID).SetupReady {
		return reject("player %s is already ready", a.PlayerID)
	}
	return ok()
}

func (g *GameState) validateDraw(playerID string, fromDrawPile bool) Verdict {
	if v := g.requireIdleTurn(playerID); !v.Valid {
		return v
	}
	if fromDrawPile {
		// A draw is possible if the pile has a card or a reshuffle can
		// produce one.
		if g.DrawPile.IsEmpty() && g.DiscardPile.Len() <= 1 {
			return reject("draw pile is empty and cannot be reshuffled")
		}
		return ok()
	}
	if g.DiscardPile.IsEmpty() {
		return reject("discard pile is empty")
	}
	return ok()
}

func (g *GameState) validateSwapCard(a SwapCard) Verdict {
	if v := g.requirePendingOwner(a.PlayerID); !v.Valid {
		return v
	}
	if g.SubPhase != SubPhaseChoosing {
		return reject("swap-card requires subphase %q, not %q", SubPhaseChoosing, g.SubPhase)
	}
	hand := g.PlayerByID(a.PlayerID).Hand
	if a.Position < 0 || a.Position >= len(hand) {
		return reject("position %d out of range (hand size %d)", a.Position, len(hand))
	}
	if a.DeclaredRank != "" && !a.DeclaredRank.IsValid() {
		return reject("unknown declared rank %q", string(a.DeclaredRank))
	}
	return ok()
}

func (g *GameState) validateDiscardCard(a DiscardCard) Verdict {
	if v := g.requirePendingOwner(a.PlayerID); !v.Valid {
		return v
	}
	if g.SubPhase != SubPhaseChoosing && g.SubPhase != SubPhaseSelecting {
		return reject("discard-card is not allowed in subphase %q", g.SubPhase)
	}
	return ok()
}

func (g *GameState) validateUseCardAction(a UseCardAction) Verdict {
	if v := g.requirePendingOwner(a.PlayerID); !v.Valid {
		return v
	}
	if !g.Pending.Card.Rank.HasAction() {
		return reject("rank %s has no action", string(g.Pending.Card.Rank))
	}
	if !g.canPlayAction(a.PlayerID, g.Pending.Card.Rank.Action()) {
		return reject("rank %s's action has no valid target", string(g.Pending.Card.Rank))
	}
	switch g.SubPhase {
	case SubPhaseChoosing:
		return ok()
	case SubPhaseSelecting:
		if !g.Pending.CanUseAction {
			return reject("swapped-out card's action is locked (rank was not declared correctly)")
		}
		return ok()
	}
	return reject("use-card-action is not allowed in subphase %q", g.SubPhase)
}

func (g *GameState) validateSelectActionTarget(a SelectActionTarget) Verdict {
	if v := g.requirePendingOwner(a.PlayerID); !v.Valid {
		return v
	}
	if g.Pending.ActionPhase != ActionPhaseTargeting || g.SubPhase != SubPhaseAwaiting {
		return reject("no card action is awaiting a target")
	}
	target := g.PlayerByID(a.TargetPlayerID)
	if target == nil {
		return reject("unknown target player %q", a.TargetPlayerID)
	}
	// Force-draw targets a player, not a card, so an empty hand is fine.
	if g.Pending.TargetKind != ActionForceDraw {
		if a.Position < 0 || a.Position >= len(target.Hand) {
			return reject("position %d out of range (hand size %d)", a.Position, len(target.Hand))
		}
	}

	switch g.Pending.TargetKind {
	case ActionPeekOwn:
		if len(g.Pending.Targets) >= 1 {
			return reject("peek already has its target")
		}
		if a.TargetPlayerID != a.PlayerID {
			return reject("rank %s peeks your own cards", string(g.Pending.Card.Rank))
		}
	case ActionPeekOpponent:
		if len(g.Pending.Targets) >= 1 {
			return reject("peek already has its target")
		}
		if a.TargetPlayerID == a.PlayerID {
			return reject("rank %s peeks an opponent's card", string(g.Pending.Card.Rank))
		}
	case ActionSwapCards, ActionPeekThenSwap:
		if len(g.Pending.Targets) >= 2 {
			return reject("swap already has both targets")
		}
		if len(g.Pending.Targets) == 1 && g.Pending.Targets[0].PlayerID == a.TargetPlayerID {
			return reject("swap targets must belong to two different players")
		}
	case ActionForceDraw:
		if len(g.Pending.Targets) >= 1 {
			return reject("force-draw already has its target")
		}
		if a.TargetPlayerID == a.PlayerID {
			return reject("force-draw targets an opponent")
		}
	case ActionDeclare:
		return reject("king targets are chosen with select-king-card-target")
	default:
		return reject("rank %s takes no targets", string(g.Pending.Card.Rank))
	}
	return ok()
}

func (g *GameState) validateConfirmPeek(a ConfirmPeek) Verdict {
	if v := g.requirePendingOwner(a.PlayerID); !v.Valid {
		return v
	}
	if g.Pending.TargetKind != ActionPeekOwn && g.Pending.TargetKind != ActionPeekOpponent {
		return reject("pending action is not a peek")
	}
	if len(g.Pending.Targets) != 1 {
		return reject("peek has no target to confirm")
	}
	return ok()
}

func (g *GameState) validateQueenDecision(playerID string) Verdict {
	if v := g.requirePendingOwner(playerID); !v.Valid {
		return v
	}
	if g.Pending.TargetKind != ActionPeekThenSwap {
		return reject("pending action is not a queen peek-then-swap")
	}
	if len(g.Pending.Targets) != 2 {
		return reject("queen needs both targets before the swap decision")
	}
	return ok()
}

func (g *GameState) validateSelectKingCardTarget(a SelectKingCardTarget) Verdict {
	if v := g.requirePendingOwner(a.PlayerID); !v.Valid {
		return v
	}
	if g.Pending.Card.Rank != RankKing || g.Pending.ActionPhase != ActionPhaseTargeting {
		return reject("no king is awaiting a card target")
	}
	target := g.PlayerByID(a.TargetPlayerID)
	if target == nil {
		return reject("unknown target player %q", a.TargetPlayerID)
	}
	if a.Position < 0 || a.Position >= len(target.Hand) {
		return reject("position %d out of range (hand size %d)", a.Position, len(target.Hand))
	}
	return ok()
}

func (g *GameState) validateDeclareKingAction(a DeclareKingAction) Verdict {
	if v := g.requirePendingOwner(a.PlayerID); !v.Valid {
		return v
	}
	if g.Pending.Card.Rank != RankKing || g.Pending.ActionPhase != ActionPhaseDeclaring {
		return reject("no king is awaiting a rank declaration")
	}
	if !a.DeclaredRank.IsValid() {
		return reject("unknown declared rank %q", string(a.DeclaredRank))
	}
	return ok()
}

func (g *GameState) validateParticipateInTossIn(a ParticipateInTossIn) Verdict {
	if g.TossIn == nil || !g.TossIn.WaitingForInput {
		return reject("no toss-in window is open")
	}
	p := g.PlayerByID(a.PlayerID)
	if a.Position < 0 || a.Position >= len(p.Hand) {
		return reject("position %d out of range (hand size %d)", a.Position, len(p.Hand))
	}
	return ok()
}

func (g *GameState) validatePlayerTossInFinished(a PlayerTossInFinished) Verdict {
	if g.TossIn == nil || !g.TossIn.WaitingForInput {
		return reject("no toss-in window is open")
	}
	if g.TossIn.IsReady(a.PlayerID) {
		return reject("player %s already finished the toss-in", a.PlayerID)
	}
	return ok()
}

func (g *GameState) validateFinishTossInPeriod(a FinishTossInPeriod) Verdict {
	if g.TossIn == nil {
		return reject("no toss-in window is open")
	}
	if len(g.TossIn.QueuedActions) > 0 {
		return reject("queued toss-in actions must resolve before the window closes")
	}
	return ok()
}

func (g *GameState) validateAdvanceTurn(a AdvanceTurn) Verdict {
	if g.Phase != PhasePlaying && g.Phase != PhaseFinal {
		return reject("cannot advance turn during %q", g.Phase)
	}
	if g.Pending != nil {
		return reject("cannot advance turn with a pending action")
	}
	if g.TossIn != nil {
		return reject("cannot advance turn with an open toss-in")
	}
	if g.CurrentPlayer().ID != a.PlayerID {
		return reject("it is not player %s's turn", a.PlayerID)
	}
	return ok()
}

func (g *GameState) validateCallVinto(a CallVinto) Verdict {
	// A second call is a valid no-op, whoever issues it.
	if g.VintoCallerID != "" {
		return ok()
	}
	return g.requireIdleTurn(a.PlayerID)
}

// requireIdleTurn checks that the game is in play, nothing is pending, and
// it is playerID's turn to open a move.
func (g *GameState) requireIdleTurn(playerID string) Verdict {
	if g.Phase != PhasePlaying && g.Phase != PhaseFinal {
		return reject("game is not in play (phase %q)", g.Phase)
	}
	if g.SubPhase != SubPhaseIdle && g.SubPhase != SubPhaseAIThinking {
		return reject("a move is already in progress (subphase %q)", g.SubPhase)
	}
	if g.Pending != nil {
		return reject("a pending action is unresolved")
	}
	if g.TossIn != nil {
		return reject("a toss-in window is open")
	}
	if g.CurrentPlayer().ID != playerID {
		return reject("it is not player %s's turn", playerID)
	}
	return ok()
}

// requirePendingOwner checks that a pending action exists and belongs to
// playerID.
func (g *GameState) requirePendingOwner(playerID string) Verdict {
	if g.Pending == nil {
		return reject("no pending action")
	}
	if g.Pending.PlayerID != playerID {
		return reject("pending action belongs to player %s", g.Pending.PlayerID)
	}
	return ok()
}
