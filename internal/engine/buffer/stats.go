package buffer

import "strings"

// Stats is a snapshot of a buffer's cached statistics.
type Stats struct {
	LineCount int64
	ByteCount int64
	WordCount int64
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= '0' && b <= '9') ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z')
}

// Stats returns the buffer's cached statistics, recomputing them first
// if an edit has left them stale. Insert and Delete keep line and byte
// counts exact incrementally and only leave the word count stale, since
// a word can be split or merged by an edit far from either endpoint of
// the edited range; Replace and undo/redo replay only flag the cache,
// so a stale cache is rebuilt whole.
func (b *Buffer) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stats.dirty.Load() {
		b.recomputeStatsLocked()
	}
	return Stats{
		LineCount: b.stats.lineCount.Load(),
		ByteCount: b.stats.byteCount.Load(),
		WordCount: b.stats.wordCount.Load(),
	}
}

// recomputeStatsLocked rebuilds every cached statistic from scratch.
// Called at construction and by Stats when the cache is stale; between
// those, the incremental path in applyStatsDeltaLocked keeps line/byte
// counts exact for Insert/Delete and only flags the word count dirty.
func (b *Buffer) recomputeStatsLocked() {
	b.stats.byteCount.Store(b.gb.Len())
	b.stats.lineCount.Store(int64(b.gb.LineCount()))
	b.recomputeWordCountLocked()
}

func (b *Buffer) recomputeWordCountLocked() {
	text := b.gb.String()
	b.stats.wordCount.Store(int64(countWords(text)))
	b.stats.dirty.Store(false)
}

func countWords(s string) int {
	n := 0
	inWord := false
	for i := 0; i < len(s); i++ {
		w := isWordByte(s[i])
		if w && !inWord {
			n++
		}
		inWord = w
	}
	return n
}

// applyStatsDeltaLocked updates line/byte counts incrementally for an
// edit of the given text (sign +1 for insert, -1 for delete) and flags
// the word count stale. A single-byte edit is the common case (typing,
// backspacing) and never needs more than this: the byte/line delta is
// exact and the word boundary it might have crossed is resolved by the
// next rescan.
func (b *Buffer) applyStatsDeltaLocked(text string, sign int64) {
	b.stats.byteCount.Add(sign * int64(len(text)))
	b.stats.lineCount.Add(sign * int64(strings.Count(text, "\n")))
	b.stats.dirty.Store(true)
}
