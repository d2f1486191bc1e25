// Package legality is the two-case outcome of anything game rules may
// reject: Legal with a value, or Illegal with a stable reason code.
package legality

// Reason identifies why an action was rejected. IDs are stable strings
// meant for programmatic branching; do not change them.
type Reason struct {
	ID string
}

func (r Reason) String() string { return r.ID }

var (
	OutOfBounds           = Reason{"OUT_OF_BOUNDS"}
	SpaceOccupied         = Reason{"SPACE_OCCUPIED"}
	NoOneToTarget         = Reason{"NO_ONE_TO_TARGET"}
	NotEnoughMovementLeft = Reason{"NOT_ENOUGH_MOVEMENT_LEFT"}
	CannotUseMode         = Reason{"CANNOT_USE_MODE"}
	NoActionsLeftInTurn   = Reason{"NO_ACTIONS_LEFT_IN_TURN"}
	CannotMoveThere       = Reason{"CANNOT_MOVE_THERE"}
	CannotFit             = Reason{"CANNOT_FIT"}
	OutOfRange            = Reason{"OUT_OF_RANGE"}
	Incapacitated         = Reason{"INCAPACITATED"}
	NotYourTurn           = Reason{"NOT_YOUR_TURN"}
)

// Unit is the value of a Legality that carries nothing.
type Unit = struct{}

// Legality holds either a legal value or the reason it is illegal.
// The zero value is Legal with the zero T.
type Legality[T any] struct {
	value   T
	reason  Reason
	illegal bool
}

// Legal wraps v.
func Legal[T any](v T) Legality[T] {
	return Legality[T]{value: v}
}

// Illegal rejects with r.
func Illegal[T any](r Reason) Legality[T] {
	return Legality[T]{reason: r, illegal: true}
}

// Ok is Legal(Unit{}).
func Ok() Legality[Unit] {
	return Legality[Unit]{}
}

// Check is Ok when cond holds and Illegal(r) otherwise.
func Check(cond bool, r Reason) Legality[Unit] {
	if cond {
		return Ok()
	}
	return Illegal[Unit](r)
}

func (l Legality[T]) IsLegal() bool { return !l.illegal }

// Value returns the legal value and true, or the zero T and false.
func (l Legality[T]) Value() (T, bool) {
	if l.illegal {
		var zero T
		return zero, false
	}
	return l.value, true
}

// Reason returns the rejection reason, the zero Reason when legal.
func (l Legality[T]) Reason() Reason {
	return l.reason
}

func (l Legality[T]) String() string {
	if l.illegal {
		return "Illegal(" + l.reason.ID + ")"
	}
	return "Legal"
}

// Recast carries an illegal reason over to another value type. Calling it
// on a legal value yields Legal with the zero U.
func Recast[U, T any](l Legality[T]) Legality[U] {
	if l.illegal {
		return Illegal[U](l.reason)
	}
	var zero U
	return Legal(zero)
}

// Map transforms a legal value, passing illegal reasons through.
func Map[T, U any](l Legality[T], fn func(T) U) Legality[U] {
	if l.illegal {
		return Illegal[U](l.reason)
	}
	return Legal(fn(l.value))
}
