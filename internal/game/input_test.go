package game

import "testing"

type recordingSink struct {
	sent   []Direction
	reject bool
}

func (s *recordingSink) TrySend(d Direction) bool {
	if s.reject {
		return false
	}
	s.sent = append(s.sent, d)
	return true
}

func TestJoystickMapping(t *testing.T) {
	tests := []struct {
		in   JoystickDir
		want Direction
		ok   bool
	}{
		{N, Up, true},
		{NE, Up, true},
		{S, Down, true},
		{SW, Down, true},
		{E, Right, true},
		{SE, Right, true},
		{W, Left, true},
		{NW, Left, true},
		{Center, 0, false},
	}

	for _, tt := range tests {
		got, ok := tt.in.Direction()
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("%v.Direction() = %v, %v; expected %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFilterRejectsReversal(t *testing.T) {
	pairs := []struct {
		last, reverse JoystickDir
	}{
		{N, S},
		{S, N},
		{W, E},
		{E, W},
	}

	for _, p := range pairs {
		f := NewDirectionFilter()
		sink := &recordingSink{}

		// establish last accepted via a perpendicular turn first when needed
		lastDir, _ := p.last.Direction()
		if lastDir == Left {
			f.Offer(N, true, sink)
		}
		if lastDir != Right {
			f.Offer(p.last, true, sink)
		}
		if f.Last() != lastDir {
			t.Fatalf("setup: Last() = %v, expected %v", f.Last(), lastDir)
		}

		before := len(sink.sent)
		if f.Offer(p.reverse, true, sink) {
			t.Errorf("reversal %v -> %v was forwarded", lastDir, p.reverse)
		}
		if len(sink.sent) != before {
			t.Errorf("reversal %v -> %v reached the sink", lastDir, p.reverse)
		}
	}
}

func TestFilterForwardsOnlyChanges(t *testing.T) {
	f := NewDirectionFilter()
	sink := &recordingSink{}

	if f.Offer(E, true, sink) {
		t.Error("Right is already the last heading and must not be resent")
	}
	if !f.Offer(N, true, sink) {
		t.Error("Expected Up to be forwarded")
	}
	if f.Offer(NE, true, sink) {
		t.Error("NE maps to Up again and must not be resent")
	}
	if f.Offer(Center, true, sink) {
		t.Error("Center keeps the candidate and sends nothing new")
	}
	if len(sink.sent) != 1 || sink.sent[0] != Up {
		t.Errorf("sent = %v, expected [up]", sink.sent)
	}
}

func TestFilterIgnoresWhilePaused(t *testing.T) {
	f := NewDirectionFilter()
	sink := &recordingSink{}

	if f.Offer(N, false, sink) {
		t.Error("Expected nothing forwarded while not running")
	}
	if f.Last() != Right {
		t.Errorf("Last() = %v, expected right", f.Last())
	}
	// the candidate survives and goes out once running again
	if !f.Offer(Center, true, sink) {
		t.Error("Expected the held candidate to be forwarded after resuming")
	}
}

func TestFilterRetriesDroppedSend(t *testing.T) {
	f := NewDirectionFilter()
	sink := &recordingSink{reject: true}

	if f.Offer(S, true, sink) {
		t.Error("Expected the send to fail")
	}
	if f.Last() != Right {
		t.Errorf("Last() = %v, a dropped send must not update it", f.Last())
	}

	sink.reject = false
	if !f.Offer(Center, true, sink) {
		t.Error("Expected the same candidate to be retried on the next sample")
	}
	if f.Last() != Down {
		t.Errorf("Last() = %v, expected down", f.Last())
	}
}

func TestFilterReset(t *testing.T) {
	f := NewDirectionFilter()
	sink := &recordingSink{}
	f.Offer(N, true, sink)

	f.Reset()

	if f.Last() != Right || f.Candidate() != Right {
		t.Errorf("after Reset() last/candidate = %v/%v, expected right/right", f.Last(), f.Candidate())
	}
}
