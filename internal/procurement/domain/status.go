package domain

// OrderStatus is the lifecycle state of an order.
//
//	Pending    order placed, awaiting partner acceptance
//	Processing partner is preparing the order
//	Shipped    dispatched, in transit
//	Delivered  arrived, stock booked into the fridge (terminal)
//	Cancelled  cancelled by user or partner (terminal)
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// ActorRole scopes which transitions a caller may perform.
type ActorRole string

const (
	RoleUser    ActorRole = "user"
	RolePartner ActorRole = "partner"
	RoleAdmin   ActorRole = "admin"
)

var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  nil,
	OrderStatusCancelled:  nil,
}

// Users only cancel pending orders or confirm an arrived shipment; the
// partner drives the rest of the lifecycle. Admins may take any valid
// transition.
var roleTransitions = map[ActorRole]map[OrderStatus][]OrderStatus{
	RoleUser: {
		OrderStatusPending: {OrderStatusCancelled},
		OrderStatusShipped: {OrderStatusDelivered},
	},
	RolePartner: {
		OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
		OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
		OrderStatusShipped:    {OrderStatusDelivered},
	},
	RoleAdmin: transitions,
}

func (s OrderStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether no further transition is allowed.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// PendingDelivery reports whether the order can still arrive, which is
// what makes it a supply event for the availability projection.
func (s OrderStatus) PendingDelivery() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped:
		return true
	}
	return false
}

// CanTransition reports whether the state machine permits s -> to at all,
// regardless of role.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// AllowedFor reports whether the given role may perform s -> to.
func (s OrderStatus) AllowedFor(to OrderStatus, role ActorRole) bool {
	allowed, ok := roleTransitions[role]
	if !ok {
		return false
	}
	for _, next := range allowed[s] {
		if next == to {
			return true
		}
	}
	return false
}
