package killring

import "testing"

func TestConsecutiveForwardKillsAppend(t *testing.T) {
	r := New()
	r.Kill([]byte("hello "), Forward)
	r.Kill([]byte("world"), Forward)

	if got := string(r.Current()); got != "hello world" {
		t.Fatalf("got %q, want \"hello world\"", got)
	}
}

func TestNonConsecutiveKillsAdvanceSlot(t *testing.T) {
	r := New()
	r.Kill([]byte("first"), Forward)
	r.EndKillSequence()
	r.Kill([]byte("second"), Forward)

	if got := string(r.Current()); got != "second" {
		t.Fatalf("got %q, want \"second\"", got)
	}
}

func TestYankPopCyclesBackThroughHistory(t *testing.T) {
	r := New()
	r.Kill([]byte("a"), Forward)
	r.EndKillSequence()
	r.Kill([]byte("b"), Forward)
	r.EndKillSequence()
	r.Kill([]byte("c"), Forward)

	r.ResetYank()
	if got := string(r.Yank()); got != "c" {
		t.Fatalf("yank = %q, want c", got)
	}
	if got := string(r.YankPop()); got != "b" {
		t.Fatalf("yank-pop 1 = %q, want b", got)
	}
	if got := string(r.YankPop()); got != "a" {
		t.Fatalf("yank-pop 2 = %q, want a", got)
	}
}

func TestBackwardKillPrepends(t *testing.T) {
	r := New()
	r.Kill([]byte("world"), Backward)
	r.Kill([]byte("hello "), Backward)

	if got := string(r.Current()); got != "hello world" {
		t.Fatalf("got %q, want \"hello world\"", got)
	}
}
