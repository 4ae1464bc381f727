// Package decoder implements the stateful input token assembler: a
// byte-at-a-time reader that recognises UTF-8 sequences, the bracketed
// paste envelope, and CSI arrow-key escapes, producing one logical token
// per call while keeping callers at byte granularity for ordinary
// content.
package decoder

import "errors"

// ErrEOF signals end of input; ReadByte implementations return this in
// place of a sentinel byte value.
var ErrEOF = errors.New("input: eof")

// ReadByte is the byte-at-a-time source the decoder pulls from.
type ReadByte func() (byte, error)

// Special identifies a decoded non-content key.
type Special int

const (
	SpecialNone Special = iota
	SpecialUp
	SpecialDown
	SpecialRight
	SpecialLeft
)

// TokenKind distinguishes a plain content byte from a decoded special
// key.
type TokenKind int

const (
	TokenByte TokenKind = iota
	TokenSpecial
)

// Token is the decoder's single unit of output.
type Token struct {
	Kind    TokenKind
	Byte    byte
	Special Special
}

var pasteStart = []byte{0x1B, '[', '2', '0', '0', '~'}
var pasteEnd = []byte{0x1B, '[', '2', '0', '1', '~'}

// csiArrows maps the final CSI byte to its decoded special key, for
// sequences of the form ESC [ <final>.
var csiArrows = map[byte]Special{
	'A': SpecialUp,
	'B': SpecialDown,
	'C': SpecialRight,
	'D': SpecialLeft,
}

// Decoder holds the replay queue and paste-mode state across calls to
// Next.
type Decoder struct {
	pending   []byte
	pasteMode bool
}

// New returns a decoder with no pending lookahead, outside paste mode.
func New() *Decoder {
	return &Decoder{}
}

func (d *Decoder) queue(bs ...byte) {
	d.pending = append(d.pending, bs...)
}

// popPending removes and returns the first queued byte.
func (d *Decoder) popPending() byte {
	b := d.pending[0]
	d.pending = d.pending[1:]
	return b
}

// Next produces the next logical token, reading from read as needed.
// Replays any queued lookahead bytes first.
func (d *Decoder) Next(read ReadByte) (Token, error) {
	if len(d.pending) > 0 {
		return Token{Kind: TokenByte, Byte: d.popPending()}, nil
	}

	if d.pasteMode {
		return d.nextPasteByte(read)
	}

	b, err := read()
	if err != nil {
		return Token{}, err
	}

	if b == 0x1B {
		return d.decodeEscape(read)
	}

	return d.decodeUTF8(b, read)
}

// nextPasteByte streams bytes through a rolling matcher against the
// paste-end sequence; on full match it exits paste mode and discards the
// sequence (returning the next real token instead); on a mismatch after a
// partial match it replays the matched prefix as content.
func (d *Decoder) nextPasteByte(read ReadByte) (Token, error) {
	matched := 0
	var buf []byte
	for matched < len(pasteEnd) {
		b, err := read()
		if err != nil {
			// End of input mid-match: replay what was consumed as
			// ordinary content and surface EOF on the next call.
			d.queue(buf...)
			if len(buf) > 0 {
				return Token{Kind: TokenByte, Byte: d.popPending()}, nil
			}
			return Token{}, err
		}
		buf = append(buf, b)
		if b == pasteEnd[matched] {
			matched++
			continue
		}
		// Mismatch: replay everything collected so far (it is paste
		// content, not part of the end sequence) except reset the
		// match from scratch against this byte in case it restarts
		// the sequence (e.g. repeated ESC bytes).
		if b == pasteEnd[0] {
			d.queue(buf[:len(buf)-1]...)
			buf = []byte{b}
			matched = 1
			continue
		}
		d.queue(buf...)
		return Token{Kind: TokenByte, Byte: d.popPending()}, nil
	}

	// Full match: exit paste mode, discard the sequence entirely.
	d.pasteMode = false
	return d.Next(read)
}

// decodeEscape handles an ESC byte outside paste mode: it attempts to
// match the paste-start sequence or a CSI arrow sequence, replaying any
// non-matching partial prefix as content.
func (d *Decoder) decodeEscape(read ReadByte) (Token, error) {
	b1, err := read()
	if err != nil {
		return Token{Kind: TokenByte, Byte: 0x1B}, nil
	}
	if b1 != '[' {
		d.queue(b1)
		return Token{Kind: TokenByte, Byte: 0x1B}, nil
	}

	// Try the bracketed-paste start sequence ESC [ 2 0 0 ~ first, since
	// it shares the ESC [ prefix with arrow keys.
	rest := pasteStart[2:]
	var consumed []byte
	for i, want := range rest {
		b, err := read()
		if err != nil {
			d.queue(append([]byte{'['}, consumed...)...)
			return Token{Kind: TokenByte, Byte: 0x1B}, nil
		}
		if i == 0 {
			if arrow, ok := csiArrows[b]; ok {
				return Token{Kind: TokenSpecial, Special: arrow}, nil
			}
		}
		if b != want {
			d.queue(append(append([]byte{'['}, consumed...), b)...)
			return Token{Kind: TokenByte, Byte: 0x1B}, nil
		}
		consumed = append(consumed, b)
	}

	d.pasteMode = true
	return d.Next(read)
}

// decodeUTF8 accumulates a complete UTF-8 sequence starting with b,
// yielding its first byte and enqueuing the remaining bytes so that
// callers operating at byte granularity still receive every byte, in
// order. On a malformed continuation the partial sequence truncates and
// the offending byte is queued for the next call.
func (d *Decoder) decodeUTF8(b byte, read ReadByte) (Token, error) {
	length := utf8SeqLength(b)
	if length <= 1 {
		return Token{Kind: TokenByte, Byte: b}, nil
	}

	cont := make([]byte, 0, length-1)
	for i := 1; i < length; i++ {
		nb, err := read()
		if err != nil {
			d.queue(cont...)
			return Token{Kind: TokenByte, Byte: b}, nil
		}
		if nb&0xC0 != 0x80 {
			// Not a continuation byte: truncate here and requeue the
			// offending byte for the next call.
			d.queue(nb)
			break
		}
		cont = append(cont, nb)
	}

	d.queue(cont...)
	return Token{Kind: TokenByte, Byte: b}, nil
}

// utf8SeqLength returns the number of bytes a UTF-8 sequence starting
// with the given leading byte should occupy (1-4), based on its high
// bits.
func utf8SeqLength(b byte) int {
	switch {
	case b&0x80 == 0x00:
		return 1
	case b&0xE0 == 0xC0:
		return 2
	case b&0xF0 == 0xE0:
		return 3
	case b&0xF8 == 0xF0:
		return 4
	default:
		return 1
	}
}
