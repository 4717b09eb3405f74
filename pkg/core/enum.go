package core

import (
	"fmt"
	"strings"
)

// =============================================================================
// CallType
// =============================================================================

// CallType classifies a logged call.
type CallType string

// The only call types a Call may carry.
const (
	CallIncoming CallType = "incoming"
	CallOutgoing CallType = "outgoing"
	CallMissed   CallType = "missed"
)

// CallTypes returns every valid call type in menu order.
func CallTypes() []CallType {
	return []CallType{CallIncoming, CallOutgoing, CallMissed}
}

// Valid reports whether t is one of the enumerated call types.
func (t CallType) Valid() bool {
	switch t {
	case CallIncoming, CallOutgoing, CallMissed:
		return true
	default:
		return false
	}
}

// String returns the string representation of the call type.
func (t CallType) String() string {
	return string(t)
}

// ParseCallType converts user input to a CallType.
// Matching ignores case and surrounding whitespace.
func ParseCallType(s string) (CallType, error) {
	t := CallType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", &ValidationError{
			Field:  "call_type",
			Reason: fmt.Sprintf("must be one of incoming, outgoing, missed (got %q)", s),
		}
	}
	return t, nil
}

// =============================================================================
// Direction
// =============================================================================

// Direction tells whether a message was sent or received.
type Direction string

// Message directions.
const (
	DirectionSent     Direction = "sent"
	DirectionReceived Direction = "received"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionSent || d == DirectionReceived
}

// String returns the string representation of the direction.
func (d Direction) String() string {
	return string(d)
}

// DirectionFromSent maps the stored is_sent flag to a Direction.
func DirectionFromSent(isSent bool) Direction {
	if isSent {
		return DirectionSent
	}
	return DirectionReceived
}

// ParseDirection converts user input to a Direction.
// Accepts "s"/"sent" and "r"/"received", ignoring case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "s", "sent":
		return DirectionSent, nil
	case "r", "received":
		return DirectionReceived, nil
	default:
		return "", &ValidationError{
			Field:  "direction",
			Reason: fmt.Sprintf("use 's' for sent or 'r' for received (got %q)", s),
		}
	}
}
