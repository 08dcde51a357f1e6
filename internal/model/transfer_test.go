package model

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		current  string
		next     string
		expected bool
	}{
		{TransferOpen, TransferRequested, true},
		{TransferRequested, TransferSent, true},
		{TransferSent, TransferComplete, true},
		{TransferOpen, TransferClosed, true},
		{TransferRequested, TransferClosed, true},
		{TransferSent, TransferClosed, true},
		{TransferComplete, TransferClosed, true},
		// Skipping states is not allowed.
		{TransferOpen, TransferSent, false},
		{TransferOpen, TransferComplete, false},
		{TransferRequested, TransferComplete, false},
		// No going backwards.
		{TransferRequested, TransferOpen, false},
		{TransferSent, TransferRequested, false},
		{TransferComplete, TransferRequested, false},
		{TransferComplete, TransferSent, false},
		// Closed is terminal.
		{TransferClosed, TransferOpen, false},
		{TransferClosed, TransferRequested, false},
		{TransferClosed, TransferClosed, false},
		// No self-transitions.
		{TransferOpen, TransferOpen, false},
		{TransferSent, TransferSent, false},
	}

	for _, tt := range tests {
		got := CanTransition(tt.current, tt.next)
		if got != tt.expected {
			t.Errorf("CanTransition(%q, %q) = %v, want %v", tt.current, tt.next, got, tt.expected)
		}
	}
}

func TestAllowedTransition(t *testing.T) {
	const from, to = "store-a", "store-b"

	partner := Actor{ID: "u1", Role: RolePartner}
	fromMgr := Actor{ID: "u2", Role: RoleManager, StoreIDs: []string{from}}
	toMgr := Actor{ID: "u3", Role: RoleManager, StoreIDs: []string{to}}
	otherMgr := Actor{ID: "u4", Role: RoleManager, StoreIDs: []string{"store-c"}}
	employee := Actor{ID: "u5", Role: RoleEmployee, StoreIDs: []string{from, to}}

	tests := []struct {
		name     string
		next     string
		actor    Actor
		expected bool
	}{
		{"partner may request", TransferRequested, partner, true},
		{"partner may send", TransferSent, partner, true},
		{"partner may complete", TransferComplete, partner, true},
		{"partner may close", TransferClosed, partner, true},

		{"destination manager may request", TransferRequested, toMgr, true},
		{"source manager may not request", TransferRequested, fromMgr, false},
		{"source manager may send", TransferSent, fromMgr, true},
		{"destination manager may not send", TransferSent, toMgr, false},
		{"destination manager may complete", TransferComplete, toMgr, true},
		{"source manager may not complete", TransferComplete, fromMgr, false},

		{"unrelated manager may not request", TransferRequested, otherMgr, false},
		{"manager may not close", TransferClosed, fromMgr, false},
		{"manager may not close even at destination", TransferClosed, toMgr, false},

		{"employee may not request", TransferRequested, employee, false},
		{"employee may not send", TransferSent, employee, false},
		{"employee may not close", TransferClosed, employee, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AllowedTransition(tt.next, from, to, tt.actor)
			if got != tt.expected {
				t.Errorf("AllowedTransition(%q, actor %s) = %v, want %v", tt.next, tt.actor.Role, got, tt.expected)
			}
		})
	}
}

func TestAllowedCreateTransfer(t *testing.T) {
	const from, to = "store-a", "store-b"

	tests := []struct {
		name     string
		actor    Actor
		expected bool
	}{
		{"partner", Actor{Role: RolePartner}, true},
		{"source manager", Actor{Role: RoleManager, StoreIDs: []string{from}}, true},
		{"destination manager", Actor{Role: RoleManager, StoreIDs: []string{to}}, true},
		{"unrelated manager", Actor{Role: RoleManager, StoreIDs: []string{"store-c"}}, false},
		{"employee", Actor{Role: RoleEmployee, StoreIDs: []string{from, to}}, false},
	}

	for _, tt := range tests {
		got := AllowedCreateTransfer(from, to, tt.actor)
		if got != tt.expected {
			t.Errorf("%s: AllowedCreateTransfer = %v, want %v", tt.name, got, tt.expected)
		}
	}
}
