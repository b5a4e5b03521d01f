package engine

import (
	"encoding/json"
	"fmt"
)

// ActionType tags each member of the closed GameAction union.
type ActionType string

const (
	TypePeekSetupCard        ActionType = "peek-setup-card"
	TypeFinishSetup          ActionType = "finish-setup"
	TypeDrawCard             ActionType = "draw-card"
	TypeTakeDiscard          ActionType = "take-discard"
	TypeSwapCard             ActionType = "swap-card"
	TypeDiscardCard          ActionType = "discard-card"
	TypeUseCardAction        ActionType = "use-card-action"
	TypeSelectActionTarget   ActionType = "select-action-target"
	TypeConfirmPeek          ActionType = "confirm-peek"
	TypeExecuteQueenSwap     ActionType = "execute-queen-swap"
	TypeSkipQueenSwap        ActionType = "skip-queen-swap"
	TypeSelectKingCardTarget ActionType = "select-king-card-target"
	TypeDeclareKingAction    ActionType = "declare-king-action"
	TypeParticipateInTossIn  ActionType = "participate-in-toss-in"
	TypePlayerTossInFinished ActionType = "player-toss-in-finished"
	TypeFinishTossInPeriod   ActionType = "finish-toss-in-period"
	TypeAdvanceTurn          ActionType = "advance-turn"
	TypeCallVinto            ActionType = "call-vinto"
)

// Action is the closed, tagged union dispatched through Reduce. Every
// member carries the acting player's id. The set of implementations in this
// file is the complete public surface of the core.
type Action interface {
	Kind() ActionType
	Actor() string
}

// PeekSetupCard reveals one of the actor's own cards during setup.
// Exempt from turn exclusivity; at most two distinct positions per player.
type PeekSetupCard struct {
	PlayerID string `json:"playerId"`
	Position int    `json:"position"`
}

// FinishSetup marks the actor ready; play starts once every seat is ready.
type FinishSetup struct {
	PlayerID string `json:"playerId"`
}

// DrawCard takes the top of the draw pile into a pending action.
type DrawCard struct {
	PlayerID string `json:"playerId"`
}

// TakeDiscard takes the top of the discard pile into a pending action.
type TakeDiscard struct {
	PlayerID string `json:"playerId"`
}

// SwapCard swaps the pending card into the hand at Position; the displaced
// card becomes the new pending card. A non-empty DeclaredRank is the bluff:
// naming the displaced card's rank correctly unlocks playing its action.
type SwapCard struct {
	PlayerID     string `json:"playerId"`
	Position     int    `json:"position"`
	DeclaredRank Rank   `json:"declaredRank,omitempty"`
}

// DiscardCard discards the pending card without using it, opening a toss-in
// window for its rank.
type DiscardCard struct {
	PlayerID string `json:"playerId"`
}

// UseCardAction commits to playing the pending card's action.
type UseCardAction struct {
	PlayerID string `json:"playerId"`
}

// SelectActionTarget appends one target to the pending card action.
type SelectActionTarget struct {
	PlayerID       string `json:"playerId"`
	TargetPlayerID string `json:"targetPlayerId"`
	Position       int    `json:"position"`
}

// ConfirmPeek closes a 7/8/9/10 peek, discarding the action card.
type ConfirmPeek struct {
	PlayerID string `json:"playerId"`
}

// ExecuteQueenSwap swaps the two cards peeked by a Queen.
type ExecuteQueenSwap struct {
	PlayerID string `json:"playerId"`
}

// SkipQueenSwap declines the Queen swap, leaving both cards in place.
type SkipQueenSwap struct {
	PlayerID string `json:"playerId"`
}

// SelectKingCardTarget records the card a King will declare for, without
// revealing it.
type SelectKingCardTarget struct {
	PlayerID       string `json:"playerId"`
	TargetPlayerID string `json:"targetPlayerId"`
	Position       int    `json:"position"`
}

// DeclareKingAction discards the King and opens a wildcard toss-in for the
// declared rank.
type DeclareKingAction struct {
	PlayerID     string `json:"playerId"`
	DeclaredRank Rank   `json:"declaredRank"`
}

// ParticipateInTossIn throws the card at Position into the open toss-in.
// Any player may participate, whether or not it is their turn.
type ParticipateInTossIn struct {
	PlayerID string `json:"playerId"`
	Position int    `json:"position"`
}

// PlayerTossInFinished marks the actor done with the open toss-in window.
type PlayerTossInFinished struct {
	PlayerID string `json:"playerId"`
}

// FinishTossInPeriod closes the toss-in window without advancing the turn.
type FinishTossInPeriod struct {
	PlayerID string `json:"playerId"`
}

// AdvanceTurn passes play to the next seat.
type AdvanceTurn struct {
	PlayerID string `json:"playerId"`
}

// CallVinto declares the actor believes they have the lowest hand,
// triggering the final round. Idempotent once a caller exists.
type CallVinto struct {
	PlayerID string `json:"playerId"`
}

func (a PeekSetupCard) Kind() ActionType        { return TypePeekSetupCard }
func (a FinishSetup) Kind() ActionType          { return TypeFinishSetup }
func (a DrawCard) Kind() ActionType             { return TypeDrawCard }
func (a TakeDiscard) Kind() ActionType          { return TypeTakeDiscard }
func (a SwapCard) Kind() ActionType             { return TypeSwapCard }
func (a DiscardCard) Kind() ActionType          { return TypeDiscardCard }
func (a UseCardAction) Kind() ActionType        { return TypeUseCardAction }
func (a SelectActionTarget) Kind() ActionType   { return TypeSelectActionTarget }
func (a ConfirmPeek) Kind() ActionType          { return TypeConfirmPeek }
func (a ExecuteQueenSwap) Kind() ActionType     { return TypeExecuteQueenSwap }
func (a SkipQueenSwap) Kind() ActionType        { return TypeSkipQueenSwap }
func (a SelectKingCardTarget) Kind() ActionType { return TypeSelectKingCardTarget }
func (a DeclareKingAction) Kind() ActionType    { return TypeDeclareKingAction }
func (a ParticipateInTossIn) Kind() ActionType  { return TypeParticipateInTossIn }
func (a PlayerTossInFinished) Kind() ActionType { return TypePlayerTossInFinished }
func (a FinishTossInPeriod) Kind() ActionType   { return TypeFinishTossInPeriod }
func (a AdvanceTurn) Kind() ActionType          { return TypeAdvanceTurn }
func (a CallVinto) Kind() ActionType            { return TypeCallVinto }

func (a PeekSetupCard) Actor() string        { return a.PlayerID }
func (a FinishSetup) Actor() string          { return a.PlayerID }
func (a DrawCard) Actor() string             { return a.PlayerID }
func (a TakeDiscard) Actor() string          { return a.PlayerID }
func (a SwapCard) Actor() string             { return a.PlayerID }
func (a DiscardCard) Actor() string          { return a.PlayerID }
func (a UseCardAction) Actor() string        { return a.PlayerID }
func (a SelectActionTarget) Actor() string   { return a.PlayerID }
func (a ConfirmPeek) Actor() string          { return a.PlayerID }
func (a ExecuteQueenSwap) Actor() string     { return a.PlayerID }
func (a SkipQueenSwap) Actor() string        { return a.PlayerID }
func (a SelectKingCardTarget) Actor() string { return a.PlayerID }
func (a DeclareKingAction) Actor() string    { return a.PlayerID }
func (a ParticipateInTossIn) Actor() string  { return a.PlayerID }
func (a PlayerTossInFinished) Actor() string { return a.PlayerID }
func (a FinishTossInPeriod) Actor() string   { return a.PlayerID }
func (a AdvanceTurn) Actor() string          { return a.PlayerID }
func (a CallVinto) Actor() string            { return a.PlayerID }

// ---------------------------------------------------------------------------
// Action JSON codec — kind envelope + flat payload, so a recorded action log
// replays a game from (seed, actions).
// ---------------------------------------------------------------------------

type actionEnvelope struct {
	Kind    ActionType      `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// EncodeAction serializes an action with its kind tag.
func EncodeAction(a Action) ([]byte, error) {
	payload, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return json.Marshal(actionEnvelope{Kind: a.Kind(), Payload: payload})
}

// DecodeAction deserializes an action encoded by EncodeAction.
func DecodeAction(data []byte) (Action, error) {
	var env actionEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	decode := func(dst Action) (Action, error) {
		if err := json.Unmarshal(env.Payload, dst); err != nil {
			return nil, err
		}
		return dst, nil
	}
	switch env.Kind {
	case TypePeekSetupCard:
		a, err := decode(&PeekSetupCard{})
		return deref(a), err
	case TypeFinishSetup:
		a, err := decode(&FinishSetup{})
		return deref(a), err
	case TypeDrawCard:
		a, err := decode(&DrawCard{})
		return deref(a), err
	case TypeTakeDiscard:
		a, err := decode(&TakeDiscard{})
		return deref(a), err
	case TypeSwapCard:
		a, err := decode(&SwapCard{})
		return deref(a), err
	case TypeDiscardCard:
		a, err := decode(&DiscardCard{})
		return deref(a), err
	case TypeUseCardAction:
		a, err := decode(&UseCardAction{})
		return deref(a), err
	case TypeSelectActionTarget:
		a, err := decode(&SelectActionTarget{})
		return deref(a), err
	case TypeConfirmPeek:
		a, err := decode(&ConfirmPeek{})
		return deref(a), err
	case TypeExecuteQueenSwap:
		a, err := decode(&ExecuteQueenSwap{})
		return deref(a), err
	case TypeSkipQueenSwap:
		a, err := decode(&SkipQueenSwap{})
		return deref(a), err
	case TypeSelectKingCardTarget:
		a, err := decode(&SelectKingCardTarget{})
		return deref(a), err
	case TypeDeclareKingAction:
		a, err := decode(&DeclareKingAction{})
		return deref(a), err
	case TypeParticipateInTossIn:
		a, err := decode(&ParticipateInTossIn{})
		return deref(a), err
	case TypePlayerTossInFinished:
		a, err := decode(&PlayerTossInFinished{})
		return deref(a), err
	case TypeFinishTossInPeriod:
		a, err := decode(&FinishTossInPeriod{})
		return deref(a), err
	case TypeAdvanceTurn:
		a, err := decode(&AdvanceTurn{})
		return deref(a), err
	case TypeCallVinto:
		a, err := decode(&CallVinto{})
		return deref(a), err
	default:
		return nil, fmt.Errorf("engine: unknown action kind %q", env.Kind)
	}
}

// deref converts the pointer the decoder filled into the value form the
// union uses everywhere else.
func deref(a Action) Action {
	switch v := a.(type) {
	case *PeekSetupCard:
		return *v
	case *FinishSetup:
		return *v
	case *DrawCard:
		return *v
	case *TakeDiscard:
		return *v
	case *SwapCard:
		return *v
	case *DiscardCard:
		return *v
	case *UseCardAction:
		return *v
	case *SelectActionTarget:
		return *v
	case *ConfirmPeek:
		return *v
	case *ExecuteQueenSwap:
		return *v
	case *SkipQueenSwap:
		return *v
	case *SelectKingCardTarget:
		return *v
	case *DeclareKingAction:
		return *v
	case *ParticipateInTossIn:
		return *v
	case *PlayerTossInFinished:
		return *v
	case *FinishTossInPeriod:
		return *v
	case *AdvanceTurn:
		return *v
	case *CallVinto:
		return *v
	}
	return a
}
