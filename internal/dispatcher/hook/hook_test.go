package hook

import "testing"

func TestPriorityOrderingAndTargetFilter(t *testing.T) {
	m := New()
	var order []string

	m.Register(Pre, "low", 1, "", func(ctx *Context) Outcome {
		order = append(order, "low")
		return Continue
	})
	m.Register(Pre, "high", 10, "", func(ctx *Context) Outcome {
		order = append(order, "high")
		return Continue
	})
	m.Register(Pre, "filtered", 5, "other-command", func(ctx *Context) Outcome {
		order = append(order, "filtered")
		return Continue
	})

	ran := false
	err := m.Execute("my-command", false, 1, func() error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !ran {
		t.Fatalf("command did not execute")
	}
	if len(order) != 2 || order[0] != "high" || order[1] != "low" {
		t.Fatalf("hook order = %v, want [high low]", order)
	}
}

func TestAbortSkipsCommand(t *testing.T) {
	m := New()
	m.Register(Pre, "blocker", 0, "", func(ctx *Context) Outcome {
		return Abort
	})

	ran := false
	err := m.Execute("cmd", false, 1, func() error {
		ran = true
		return nil
	})
	if ran {
		t.Fatalf("command should not have executed")
	}
	if err == nil {
		t.Fatalf("expected an error from abort")
	}
}

func TestHandledSkipsCommandWithoutError(t *testing.T) {
	m := New()
	m.Register(Pre, "handler", 0, "", func(ctx *Context) Outcome {
		return Handled
	})

	ran := false
	err := m.Execute("cmd", false, 1, func() error {
		ran = true
		return nil
	})
	if ran {
		t.Fatalf("command should not have executed")
	}
	if err != nil {
		t.Fatalf("handled should not report an error, got %v", err)
	}
}

func TestCountersAreAtomic(t *testing.T) {
	m := New()
	for i := 0; i < 5; i++ {
		m.Execute("cmd", false, 1, func() error { return nil })
	}
	execs, aborts, _ := m.Stats()
	if execs != 5 {
		t.Fatalf("executions = %d, want 5", execs)
	}
	if aborts != 0 {
		t.Fatalf("aborts = %d, want 0", aborts)
	}
}

func TestPostHookRunsAfterCommand(t *testing.T) {
	m := New()
	var sawEnd bool
	m.Register(Post, "observer", 0, "", func(ctx *Context) Outcome {
		sawEnd = !ctx.End.IsZero()
		return Continue
	})
	m.Execute("cmd", false, 1, func() error { return nil })
	if !sawEnd {
		t.Fatalf("post hook did not observe end timestamp")
	}
}
