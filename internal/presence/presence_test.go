package presence

import "testing"

func TestJoinAndSnapshot(t *testing.T) {
	r := NewRegistry()

	r.Join("conn-1", "Alice")
	r.Join("conn-2", "Bob")

	users := r.Snapshot()
	if len(users) != 2 {
		t.Fatalf("Expected 2 online users, got %d", len(users))
	}
	if users[0].Name != "Alice" || users[1].Name != "Bob" {
		t.Errorf("Expected join-order snapshot [Alice Bob], got [%s %s]", users[0].Name, users[1].Name)
	}
	if users[0].ID != "conn-1" {
		t.Errorf("Expected connection id conn-1, got %s", users[0].ID)
	}
	if users[0].JoinedAt.IsZero() {
		t.Error("JoinedAt should be set on join")
	}
}

func TestJoinOverwritesSameConnection(t *testing.T) {
	r := NewRegistry()

	r.Join("conn-1", "Alice")
	r.Join("conn-2", "Bob")
	r.Join("conn-1", "Alicia")

	users := r.Snapshot()
	if len(users) != 2 {
		t.Fatalf("Rejoin must not grow the roster: got %d entries", len(users))
	}
	// Overwrite keeps the original position
	if users[0].Name != "Alicia" {
		t.Errorf("Expected rejoined entry to stay first with new name, got %s", users[0].Name)
	}
}

func TestLeave(t *testing.T) {
	r := NewRegistry()

	r.Join("conn-1", "Alice")
	entry, ok := r.Leave("conn-1")
	if !ok {
		t.Fatal("Expected Leave to return the stored entry")
	}
	if entry.Name != "Alice" {
		t.Errorf("Expected Alice, got %s", entry.Name)
	}
	if r.Count() != 0 {
		t.Errorf("Expected empty registry after leave, got %d entries", r.Count())
	}
}

func TestLeaveUnknownConnectionIsNoOp(t *testing.T) {
	r := NewRegistry()

	if _, ok := r.Leave("never-joined"); ok {
		t.Error("Leave of an unknown connection must report not-found")
	}
	if r.Count() != 0 {
		t.Errorf("Expected 0 entries, got %d", r.Count())
	}
}

func TestJoinLeaveRestoresCount(t *testing.T) {
	r := NewRegistry()

	r.Join("conn-1", "Alice")
	before := r.Count()

	r.Join("conn-2", "Bob")
	r.Leave("conn-2")

	if r.Count() != before {
		t.Errorf("Expected roster count %d after join+leave, got %d", before, r.Count())
	}
}
