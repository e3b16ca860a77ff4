package chunker

import (
	"strings"
	"unicode/utf8"
)

// Separators tried in priority order: paragraph break, line break,
// sentence end, comma, space, hard character split as the last resort.
var separators = []string{"\n\n", "\n", ". ", ", ", " ", ""}

// Chunk is one bounded, zero-indexed segment of a document.
type Chunk struct {
	Index  int
	Text   string
	Length int
}

// Split cuts text into chunks of at most size characters. Consecutive
// chunks share an overlapping region of up to overlap characters so that
// each chunk carries trailing context from the previous one.
//
// Splitting is deterministic and never drops content: a whitespace-only
// input yields no chunks, an input that fits into one chunk is returned
// as-is, and a single word longer than size is cut at character
// boundaries.
func Split(text string, size, overlap int) []Chunk {
	if size <= 0 {
		return nil
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size - 1
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	if utf8.RuneCountInString(trimmed) <= size {
		return []Chunk{{
			Index:  0,
			Text:   trimmed,
			Length: utf8.RuneCountInString(trimmed),
		}}
	}

	pieces := splitBySeparators(trimmed, separators, size)

	var chunks []Chunk
	for _, merged := range mergePieces(pieces, size, overlap) {
		merged = strings.TrimSpace(merged)
		if merged == "" {
			continue
		}

		chunks = append(chunks, Chunk{
			Index:  len(chunks),
			Text:   merged,
			Length: utf8.RuneCountInString(merged),
		})
	}

	return chunks
}

// splitBySeparators cuts text into ordered pieces of at most size
// characters, preferring the earliest separator that occurs in the text
// and descending to finer separators only for pieces that are still too
// large. Separators stay attached to the preceding piece, so the
// concatenation of all pieces equals the input.
func splitBySeparators(text string, seps []string, size int) []string {
	if utf8.RuneCountInString(text) <= size {
		return []string{text}
	}

	sep := ""
	var rest []string
	for i, s := range seps {
		if s == "" {
			break
		}
		if strings.Contains(text, s) {
			sep = s
			rest = seps[i+1:]
			break
		}
	}

	if sep == "" {
		return hardSplit(text, size)
	}

	var pieces []string
	for _, part := range strings.SplitAfter(text, sep) {
		if part == "" {
			continue
		}

		if utf8.RuneCountInString(part) <= size {
			pieces = append(pieces, part)
			continue
		}

		pieces = append(pieces, splitBySeparators(part, rest, size)...)
	}

	return pieces
}

// mergePieces packs consecutive pieces into chunks of at most size
// characters. Whenever a chunk is closed, the next one starts with its
// trailing overlap characters (shrunk if the next piece would not fit
// otherwise).
func mergePieces(pieces []string, size, overlap int) []string {
	var merged []string
	var current string

	for _, piece := range pieces {
		pieceLen := utf8.RuneCountInString(piece)

		if current != "" && utf8.RuneCountInString(current)+pieceLen > size {
			merged = append(merged, current)
			current = tailRunes(current, min(overlap, size-pieceLen))
		}

		current += piece
	}

	if strings.TrimSpace(current) != "" {
		merged = append(merged, current)
	}

	return merged
}

func hardSplit(text string, size int) []string {
	runes := []rune(text)

	pieces := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		pieces = append(pieces, string(runes[start:end]))
	}

	return pieces
}

func tailRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}

	runes := []rune(s)
	if len(runes) <= n {
		return s
	}

	return string(runes[len(runes)-n:])
}
