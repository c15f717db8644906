package enums

// BookingAction names an operation that moves a booking through its lifecycle.
type BookingAction string

const (
	BookingActionAssign         BookingAction = "assign"
	BookingActionAccept         BookingAction = "accept"
	BookingActionReject         BookingAction = "reject"
	BookingActionComplete       BookingAction = "complete"
	BookingActionMarkIncomplete BookingAction = "mark_incomplete"
)

// String implements fmt.Stringer.
func (a BookingAction) String() string {
	return string(a)
}
