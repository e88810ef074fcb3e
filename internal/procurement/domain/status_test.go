package domain

import "testing"

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		allowed  bool
	}{
		{OrderStatusPending, OrderStatusProcessing, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusPending, OrderStatusDelivered, false},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusProcessing, OrderStatusCancelled, true},
		{OrderStatusProcessing, OrderStatusDelivered, false},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusShipped, OrderStatusCancelled, false},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransition(tc.to); got != tc.allowed {
			t.Fatalf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.allowed, got)
		}
	}
}

func TestOrderStatusRoleGating(t *testing.T) {
	// Users may only cancel pending orders or confirm arrival.
	if !OrderStatusPending.AllowedFor(OrderStatusCancelled, RoleUser) {
		t.Fatalf("user should cancel a pending order")
	}
	if OrderStatusPending.AllowedFor(OrderStatusProcessing, RoleUser) {
		t.Fatalf("user must not accept an order")
	}
	if !OrderStatusShipped.AllowedFor(OrderStatusDelivered, RoleUser) {
		t.Fatalf("user should confirm delivery")
	}

	if !OrderStatusPending.AllowedFor(OrderStatusProcessing, RolePartner) {
		t.Fatalf("partner should accept a pending order")
	}
	if !OrderStatusProcessing.AllowedFor(OrderStatusShipped, RolePartner) {
		t.Fatalf("partner should ship a processing order")
	}

	if !OrderStatusPending.AllowedFor(OrderStatusCancelled, RoleAdmin) {
		t.Fatalf("admin should perform any valid transition")
	}
}

func TestOrderStatusPredicates(t *testing.T) {
	for _, s := range []OrderStatus{OrderStatusPending, OrderStatusProcessing, OrderStatusShipped} {
		if !s.PendingDelivery() {
			t.Fatalf("%s should count as pending delivery", s)
		}
		if s.Terminal() {
			t.Fatalf("%s should not be terminal", s)
		}
	}
	for _, s := range []OrderStatus{OrderStatusDelivered, OrderStatusCancelled} {
		if s.PendingDelivery() {
			t.Fatalf("%s should not count as pending delivery", s)
		}
		if !s.Terminal() {
			t.Fatalf("%s should be terminal", s)
		}
	}
	if OrderStatus("Unknown").Valid() {
		t.Fatalf("unknown status should be invalid")
	}
}
