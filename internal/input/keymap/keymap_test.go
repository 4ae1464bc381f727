package keymap

import "testing"

func TestBindLookupUnbindInheritance(t *testing.T) {
	parent := New("parent", nil)
	child := New("child", parent)

	called := false
	fn := func(prefixFlag bool, repeatCount int) error {
		called = true
		return nil
	}

	parent.Bind(Code('a'), fn)

	entry, ok := child.Lookup(Code('a'))
	if !ok {
		t.Fatalf("expected inherited lookup to succeed")
	}
	if entry.IsPrefix {
		t.Fatalf("expected a non-prefix entry")
	}
	entry.Command(false, 1)
	if !called {
		t.Fatalf("command was not invoked")
	}

	if _, ok := child.LookupLocal(Code('a')); ok {
		t.Fatalf("expected LookupLocal to miss on the child map")
	}
}

func TestBindUnbindLocal(t *testing.T) {
	k := New("k", nil)
	fn := func(prefixFlag bool, repeatCount int) error { return nil }

	k.Bind(Code('x'), fn)
	if _, ok := k.Lookup(Code('x')); !ok {
		t.Fatalf("expected lookup to succeed after bind")
	}

	if !k.Unbind(Code('x')) {
		t.Fatalf("unbind reported no binding removed")
	}
	if _, ok := k.Lookup(Code('x')); ok {
		t.Fatalf("expected lookup to miss after unbind with no parent")
	}
}

func TestPrefixChildRouting(t *testing.T) {
	roots := NewRoots()

	entry, ok := roots.Global().Lookup(CodeControl | Code('X'))
	if !ok || !entry.IsPrefix {
		t.Fatalf("expected Control-X to be a prefix entry in global")
	}
	if entry.Child != roots.CtlX() {
		t.Fatalf("Control-X prefix does not route to the C-x root")
	}
}

func TestCollisionCounter(t *testing.T) {
	k := New("k", nil)
	fn := func(prefixFlag bool, repeatCount int) error { return nil }

	// Two distinct codes that hash to the same bucket will increment the
	// collision counter: probe codes until one lands in a bucket an
	// earlier code already hashed to, then bind both, bounded to keep the
	// test fast.
	seen := map[int]Code{}
	collided := false
	for c := Code(1); c < Code(5000) && !collided; c++ {
		b := hash(c)
		if prev, ok := seen[b]; ok {
			k.Bind(prev, fn)
			k.Bind(c, fn)
			collided = true
			break
		}
		seen[b] = c
	}
	if !collided {
		t.Skip("no collision found in probed range")
	}
	if k.Collisions() == 0 {
		t.Fatalf("expected at least one recorded collision")
	}
}

func TestLegacyImportRouting(t *testing.T) {
	roots := NewRoots()
	resolve := func(name string) (CommandFunc, bool) {
		return func(prefixFlag bool, repeatCount int) error { return nil }, true
	}
	Import(DefaultLegacyTable, roots, resolve)

	if _, ok := roots.Global().Lookup(Code('F') | CodeControl); !ok {
		t.Fatalf("expected forward-char bound in global")
	}
	if _, ok := roots.Meta().Lookup(Code('_') | CodeControl | CodeMeta); !ok {
		t.Fatalf("expected redo bound in Meta")
	}
}
