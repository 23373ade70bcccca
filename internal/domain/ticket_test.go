package domain

import "testing"

func TestValidTransition(t *testing.T) {
	cases := []struct {
		name string
		from TicketStatus
		to   TicketStatus
		want bool
	}{
		{"waiting to called", TicketStatusWaiting, TicketStatusCalled, true},
		{"waiting to cancelled", TicketStatusWaiting, TicketStatusCancelled, true},
		{"waiting to served", TicketStatusWaiting, TicketStatusServed, false},
		{"called to served", TicketStatusCalled, TicketStatusServed, true},
		{"called to cancelled", TicketStatusCalled, TicketStatusCancelled, true},
		{"called to waiting", TicketStatusCalled, TicketStatusWaiting, false},
		{"cancelled is terminal", TicketStatusCancelled, TicketStatusWaiting, false},
		{"cancelled to served", TicketStatusCancelled, TicketStatusServed, false},
		{"served is terminal", TicketStatusServed, TicketStatusCancelled, false},
		{"no self transition", TicketStatusWaiting, TicketStatusWaiting, false},
		{"unknown status", TicketStatus("unknown"), TicketStatusCalled, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidTransition(tc.from, tc.to); got != tc.want {
				t.Errorf("ValidTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestTerminal(t *testing.T) {
	for status, terminal := range map[TicketStatus]bool{
		TicketStatusWaiting:   false,
		TicketStatusCalled:    false,
		TicketStatusCancelled: true,
		TicketStatusServed:    true,
	} {
		if got := status.Terminal(); got != terminal {
			t.Errorf("%s.Terminal() = %v, want %v", status, got, terminal)
		}
	}
}

func TestCanResolve(t *testing.T) {
	attendantID := "u002"
	ticket := &Ticket{ID: "t001", Status: TicketStatusCalled, AttendantID: &attendantID}

	admin := &User{ID: "u001", Role: RoleAdmin}
	assigned := &User{ID: "u002", Role: RoleAttendant}
	other := &User{ID: "u003", Role: RoleAttendant}

	if !ticket.CanResolve(admin) {
		t.Error("admin should resolve any ticket")
	}
	if !ticket.CanResolve(assigned) {
		t.Error("assigned attendant should resolve own ticket")
	}
	if ticket.CanResolve(other) {
		t.Error("unassigned attendant must not resolve")
	}
	if ticket.CanResolve(nil) {
		t.Error("nil user must not resolve")
	}

	unassigned := &Ticket{ID: "t002", Status: TicketStatusWaiting}
	if unassigned.CanResolve(assigned) {
		t.Error("waiting ticket has no assigned attendant")
	}
	if !unassigned.CanResolve(admin) {
		t.Error("admin should resolve unassigned ticket")
	}
}

func TestTallyStatuses(t *testing.T) {
	tickets := []Ticket{
		{Status: TicketStatusWaiting},
		{Status: TicketStatusWaiting},
		{Status: TicketStatusCalled},
		{Status: TicketStatusCancelled},
		{Status: TicketStatusServed},
		{Status: TicketStatusServed},
	}

	tally := TallyStatuses(tickets)
	want := StatusTally{Total: 6, Waiting: 2, Called: 1, Cancelled: 1, Served: 2}
	if tally != want {
		t.Fatalf("TallyStatuses = %+v, want %+v", tally, want)
	}
	if sum := tally.Waiting + tally.Called + tally.Cancelled + tally.Served; sum != tally.Total {
		t.Fatalf("buckets sum to %d, total is %d", sum, tally.Total)
	}

	if empty := TallyStatuses(nil); empty != (StatusTally{}) {
		t.Fatalf("empty tally = %+v", empty)
	}
}
