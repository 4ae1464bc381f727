// Package key is the decoded key-press form the keymap and dispatcher
// work with (cmd/muedit builds it from backend key events; the Input
// Decoder does not produce it): a Key identifies which key (letter,
// arrow, function key, or a bare rune), a Modifier tracks which of
// Ctrl/Alt/Shift/Meta were held, and an Event pairs the two with a
// timestamp. Host-level toggle keys
// (CapsLock, NumLock, ScrollLock, PrintScreen) are deliberately absent:
// a terminal rarely reports them as key events at all, and nothing in
// an editing command table would ever bind to one.
//
// KeyFromName and ModifierFromName resolve the human-readable names a
// caller might use in a binding table ("ctrl", "f1", "pgdn") down to
// the Key/Modifier values above; the keymap package packs Event values
// into its own Code bitmask rather than reparsing spec strings on
// every key press.
package key
