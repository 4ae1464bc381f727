package search

import "testing"

func TestForwardReverseCaseInsensitive(t *testing.T) {
	text := []byte("Hello world, HELLO WORLD")

	fwd, err := Compile([]byte("HELLO"), true)
	if err != nil {
		t.Fatal(err)
	}
	if hit := fwd.Forward(text, 0); hit != 0 {
		t.Fatalf("forward hit = %d, want 0", hit)
	}

	rev, err := Compile([]byte("hello"), true)
	if err != nil {
		t.Fatal(err)
	}
	if hit := rev.Reverse(text, 23); hit != 13 {
		t.Fatalf("reverse hit = %d, want 13", hit)
	}

	miss, err := Compile([]byte("xyz"), true)
	if err != nil {
		t.Fatal(err)
	}
	if hit := miss.Forward(text, 0); hit != NotFound {
		t.Fatalf("forward hit = %d, want NotFound", hit)
	}
}

func TestCaseInsensitiveMatchesPrefoldedCaseSensitive(t *testing.T) {
	text := []byte("AbCaBc")
	folded := []byte("abcabc")

	ci, _ := Compile([]byte("aBc"), true)
	cs, _ := Compile([]byte("abc"), false)

	ciHits := ci.ForwardAll(text, 0)
	csHits := cs.ForwardAll(folded, 0)

	if len(ciHits) != len(csHits) {
		t.Fatalf("hit count mismatch: %v vs %v", ciHits, csHits)
	}
	for i := range ciHits {
		if ciHits[i] != csHits[i] {
			t.Fatalf("hit %d mismatch: %d vs %d", i, ciHits[i], csHits[i])
		}
	}
}

func TestForwardFromHitPlusOneFindsNextHit(t *testing.T) {
	text := []byte("abababab")
	p, _ := Compile([]byte("aba"), false)

	hit1 := p.Forward(text, 0)
	if hit1 != 0 {
		t.Fatalf("hit1 = %d, want 0", hit1)
	}
	hit2 := p.Forward(text, hit1+1)
	if hit2 != 2 {
		t.Fatalf("hit2 = %d, want 2", hit2)
	}
}

func TestPatternTooLong(t *testing.T) {
	p := make([]byte, MaxPatternLength+1)
	if _, err := Compile(p, false); err != ErrPatternTooLong {
		t.Fatalf("err = %v, want ErrPatternTooLong", err)
	}
}
