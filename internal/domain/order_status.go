package domain

type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusAccepted OrderStatus = "accepted"
	OrderStatusRejected OrderStatus = "rejected"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusAccepted, OrderStatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether the order can no longer change status.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusRejected
}

// CanTransitionTo reports whether an admin may move an order from s to next.
// Pending is never a target; rejected orders stay rejected.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch next {
	case OrderStatusAccepted:
		return s == OrderStatusPending || s == OrderStatusAccepted
	case OrderStatusRejected:
		return s.IsValid()
	}
	return false
}

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}
