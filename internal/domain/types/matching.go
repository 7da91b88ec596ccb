package types

// BookingStatus is the lifecycle state of a booking as seen by the
// matching core. Only the Assignment Transactor may move a booking out
// of Pending into Accepted; Cancelled may be reached from Pending by the
// Coordinator or the per-booking timer.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingAccepted  BookingStatus = "ACCEPTED"
	BookingRejected  BookingStatus = "REJECTED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingCompleted BookingStatus = "COMPLETED"
)

// NotificationOutcome is the terminal (or pending) state of a single
// per-(booking, driver) offer.
type NotificationOutcome string

const (
	NotificationPending    NotificationOutcome = "PENDING"
	NotificationAccepted   NotificationOutcome = "ACCEPTED"
	NotificationRejected   NotificationOutcome = "REJECTED"
	NotificationTimeout    NotificationOutcome = "TIMEOUT"
	NotificationSuperseded NotificationOutcome = "SUPERSEDED"
)

// IsTerminal reports whether the outcome no longer accepts further
// transitions.
func (o NotificationOutcome) IsTerminal() bool {
	return o != NotificationPending
}

// MetricStatus is the finalStatus column of a MatchingMetric row.
type MetricStatus string

const (
	MetricActive    MetricStatus = "ACTIVE"
	MetricMatched   MetricStatus = "MATCHED"
	MetricTimeout   MetricStatus = "TIMEOUT"
	MetricCancelled MetricStatus = "CANCELLED"
)

// PriorityMode selects the Driver Selector's ordering strategy.
type PriorityMode string

const (
	PriorityRecentActivity PriorityMode = "RECENT_ACTIVITY"
	PriorityDistance       PriorityMode = "DISTANCE"
)

// DriverResponseType is the kind of reply a driver sent to an offer.
type DriverResponseType string

const (
	ResponseAccept DriverResponseType = "ACCEPT"
	ResponseReject DriverResponseType = "REJECT"
)

// MatchingAction is the outcome HandleDriverResponse reports to its caller.
type MatchingAction string

const (
	ActionAssigned          MatchingAction = "ASSIGNED"
	ActionRejected          MatchingAction = "REJECTED"
	ActionAlreadyTaken      MatchingAction = "ALREADY_TAKEN"
	ActionBookingCancelled  MatchingAction = "BOOKING_CANCELLED"
)
