package keymap

// LegacyEntry is one row of the static name->code->function import table
// walked at startup to populate the default bindings. Name resolves
// against a caller-supplied command table; Code carries the modifier
// bits that route the binding into global, C-x, Meta, or C-h.
type LegacyEntry struct {
	Name string
	Code Code
}

// DefaultLegacyTable reproduces a representative subset of a legacy
// name->code table covering cursor motion, delete, kill, undo/redo,
// search, and buffer switch — enough to exercise the import path
// end-to-end.
var DefaultLegacyTable = []LegacyEntry{
	{"forward-char", Code('F') | CodeControl},
	{"backward-char", Code('B') | CodeControl},
	{"next-line", Code('N') | CodeControl},
	{"previous-line", Code('P') | CodeControl},
	{"delete-char", Code('D') | CodeControl},
	{"kill-line", Code('K') | CodeControl},
	{"undo", Code('_') | CodeControl},
	{"redo", Code('_') | CodeControl | CodeMeta},
	{"search-forward", Code('S') | CodeControl},
	{"search-reverse", Code('R') | CodeControl},
	{"switch-buffer", Code('B') | CodeControl},
	{"save-buffer", Code('S') | CodeControl},
	{"quit", Code('C') | CodeControl},
}

// Import routes each legacy entry into global, C-x, Meta, or C-h by
// inspecting its modifier bits, resolving command names against
// resolve. Entries whose name is unknown to resolve are skipped.
func Import(table []LegacyEntry, roots *Roots, resolve func(name string) (CommandFunc, bool)) {
	for _, e := range table {
		fn, ok := resolve(e.Name)
		if !ok {
			continue
		}
		target := routeTarget(e.Code, roots)
		target.Bind(e.Code, fn)
	}
}

// routeTarget picks which root keymap owns a legacy entry based on its
// modifier bits: Control|'X'-style prefixes go to C-x, Meta-flagged
// entries go to Meta, Control|'H' goes to C-h, everything else is global.
func routeTarget(code Code, roots *Roots) *Keymap {
	switch {
	case code&CodeMeta != 0:
		return roots.Meta()
	case code&CodeControl != 0 && code&codeMask == Code('H'):
		return roots.CtlH()
	case code&CodeControl != 0 && code&codeMask == Code('X'):
		return roots.CtlX()
	default:
		return roots.Global()
	}
}
