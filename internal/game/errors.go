package game

import "errors"

// Action validation errors. These are all recoverable: the action is rejected
// with no state mutation and the acting participant may retry with a
// different action.
var (
	// ErrWrongPhase rejects an action issued outside the phase it belongs to.
	ErrWrongPhase = errors.New("action not valid in current phase")

	// ErrNotYourTurn rejects an action from a player who does not hold the turn.
	ErrNotYourTurn = errors.New("not your turn")

	// ErrUnknownPlayer rejects an action from an identity not seated in the room.
	ErrUnknownPlayer = errors.New("player not in room")

	// ErrNotPlaying rejects an action from a spectator.
	ErrNotPlaying = errors.New("player is not active in this round")

	// ErrInvalidAmount rejects a bet that is neither a table denomination nor
	// the player's full balance.
	ErrInvalidAmount = errors.New("bet amount not allowed")

	// ErrInsufficientFunds rejects a bet or call the balance cannot cover.
	// The actor should go all-in instead.
	ErrInsufficientFunds = errors.New("insufficient funds, go all-in instead")

	// ErrNothingToCommit rejects an all-in from a player with zero balance.
	ErrNothingToCommit = errors.New("no balance left to commit")

	// ErrNoPriorAction rejects a finalize from a player who has not acted
	// this round.
	ErrNoPriorAction = errors.New("finalize requires a prior betting action")

	// ErrBelowMinimum rejects a finalize while the committed bet is under the
	// table minimum and the player still has balance to bet with.
	ErrBelowMinimum = errors.New("committed bet below table minimum")

	// ErrAlreadyFinalized rejects any betting action from a player whose bet
	// is locked in. Replayed finalize submissions land here.
	ErrAlreadyFinalized = errors.New("already finalized this round")

	// ErrCardNotInHand rejects playing a card the player does not hold.
	ErrCardNotInHand = errors.New("card not in hand")

	// ErrNoChoicePending rejects a position choice when none is awaited.
	ErrNoChoicePending = errors.New("no position choice pending")

	// ErrNotChooser rejects a position choice from anyone but the round's
	// highest bettor.
	ErrNotChooser = errors.New("position choice belongs to the highest bettor")

	// ErrRoomFull rejects a join when all seats are taken.
	ErrRoomFull = errors.New("room is full")

	// ErrSeatTaken rejects a join at an occupied seat.
	ErrSeatTaken = errors.New("seat already taken")
)

// IsValidation reports whether err is a rejected-action error: recoverable,
// surfaced to the acting participant, with no state mutated.
func IsValidation(err error) bool {
	for _, v := range []error{
		ErrWrongPhase, ErrNotYourTurn, ErrUnknownPlayer, ErrNotPlaying,
		ErrInvalidAmount, ErrInsufficientFunds, ErrNothingToCommit,
		ErrNoPriorAction, ErrBelowMinimum, ErrAlreadyFinalized,
		ErrCardNotInHand, ErrNoChoicePending, ErrNotChooser,
	} {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}
