package orders

import (
	"github.com/angelmondragon/homeservices-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/homeservices-backend/pkg/errors"
)

// validNext maps an action to the statuses it may start from and the status
// it leads to. Stored legacy values are normalized before lookup, so only
// pending appears as a source for the unassigned variants.
var validNext = map[enums.BookingAction]map[enums.BookingStatus]enums.BookingStatus{
	enums.BookingActionAssign: {
		enums.BookingStatusPending:   enums.BookingStatusAssigned,
		enums.BookingStatusConfirmed: enums.BookingStatusConfirmed,
		enums.BookingStatusAssigned:  enums.BookingStatusAssigned,
	},
	enums.BookingActionAccept: {
		enums.BookingStatusPending: enums.BookingStatusConfirmed,
	},
	enums.BookingActionReject: {
		enums.BookingStatusPending: enums.BookingStatusRejected,
	},
	enums.BookingActionComplete: {
		enums.BookingStatusPending:   enums.BookingStatusCompleted,
		enums.BookingStatusConfirmed: enums.BookingStatusCompleted,
		enums.BookingStatusAssigned:  enums.BookingStatusCompleted,
	},
	enums.BookingActionMarkIncomplete: {
		enums.BookingStatusPending:   enums.BookingStatusNotCompleted,
		enums.BookingStatusConfirmed: enums.BookingStatusNotCompleted,
		enums.BookingStatusAssigned:  enums.BookingStatusNotCompleted,
	},
}

// CanTransition reports whether action is legal from the stored status.
func CanTransition(from enums.BookingStatus, action enums.BookingAction) bool {
	_, ok := validNext[action][from.Normalize()]
	return ok
}

// NextStatus resolves the status action leads to from the stored status, or
// an INVALID_TRANSITION error carrying the action and source status.
func NextStatus(from enums.BookingStatus, action enums.BookingAction) (enums.BookingStatus, error) {
	normalized := from.Normalize()
	if !normalized.IsTerminal() {
		if next, ok := validNext[action][normalized]; ok {
			return next, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeInvalidTransition, "status transition not allowed").
		WithDetails(map[string]any{
			"action": action.String(),
			"from":   normalized.String(),
		})
}
