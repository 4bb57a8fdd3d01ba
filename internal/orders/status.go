package orders

// Status is the order lifecycle state persisted on the header. The commit
// unit always creates orders in AwaitingPayment; everything after is driven
// by payment confirmation, fulfilment and review.
type Status int16

const (
	StatusAwaitingPayment  Status = 1
	StatusAwaitingShipment Status = 2
	StatusShipped          Status = 3
	StatusAwaitingReview   Status = 4
	StatusCompleted        Status = 5
)

var statusNames = map[Status]string{
	StatusAwaitingPayment:  "awaiting_payment",
	StatusAwaitingShipment: "awaiting_shipment",
	StatusShipped:          "shipped",
	StatusAwaitingReview:   "awaiting_review",
	StatusCompleted:        "completed",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "unknown"
}

var validNext = map[Status]map[Status]bool{
	// online payment confirmation skips straight to awaiting review
	StatusAwaitingPayment:  {StatusAwaitingShipment: true, StatusAwaitingReview: true},
	StatusAwaitingShipment: {StatusShipped: true},
	StatusShipped:          {StatusAwaitingReview: true},
	StatusAwaitingReview:   {StatusCompleted: true},
	StatusCompleted:        {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}
