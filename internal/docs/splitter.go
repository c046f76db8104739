package docs

import (
	"strings"
	"unicode/utf8"
)

var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter cuts text into chunks of at most ChunkSize characters, trying
// paragraph, line and word boundaries in that order. Consecutive chunks
// share up to Overlap characters.
type Splitter struct {
	ChunkSize  int
	Overlap    int
	Separators []string
}

func NewSplitter(size, overlap int) Splitter {
	return Splitter{ChunkSize: size, Overlap: overlap, Separators: defaultSeparators}
}

func (s Splitter) Split(text string) []string {
	seps := s.Separators
	if len(seps) == 0 {
		seps = defaultSeparators
	}
	return s.split(text, seps)
}

func (s Splitter) split(text string, seps []string) []string {
	sep := seps[len(seps)-1]
	var rest []string
	for i, c := range seps {
		if c == "" || strings.Contains(text, c) {
			sep = c
			rest = seps[i+1:]
			break
		}
	}

	var out, fits []string
	for _, piece := range splitOn(text, sep) {
		if runeLen(piece) <= s.ChunkSize {
			fits = append(fits, piece)
			continue
		}
		if len(fits) > 0 {
			out = append(out, s.merge(fits, sep)...)
			fits = nil
		}
		if len(rest) == 0 {
			out = append(out, piece)
		} else {
			out = append(out, s.split(piece, rest)...)
		}
	}
	if len(fits) > 0 {
		out = append(out, s.merge(fits, sep)...)
	}
	return out
}

// merge packs pieces greedily into chunks, carrying the tail of each chunk
// into the next one while it stays within Overlap.
func (s Splitter) merge(pieces []string, sep string) []string {
	sepLen := runeLen(sep)
	var chunks, current []string
	total := 0

	joinedLen := func(extra int) int {
		if len(current) > 0 {
			return total + extra + sepLen
		}
		return total + extra
	}

	for _, p := range pieces {
		n := runeLen(p)
		if joinedLen(n) > s.ChunkSize && len(current) > 0 {
			chunks = appendChunk(chunks, strings.Join(current, sep))
			for total > s.Overlap || (joinedLen(n) > s.ChunkSize && total > 0) {
				total -= runeLen(current[0])
				if len(current) > 1 {
					total -= sepLen
				}
				current = current[1:]
			}
		}
		total = joinedLen(n)
		current = append(current, p)
	}
	return appendChunk(chunks, strings.Join(current, sep))
}

func appendChunk(chunks []string, c string) []string {
	c = strings.TrimSpace(c)
	if c == "" {
		return chunks
	}
	return append(chunks, c)
}

func splitOn(text, sep string) []string {
	if sep != "" {
		return strings.Split(text, sep)
	}
	out := make([]string, 0, len(text))
	for _, r := range text {
		out = append(out, string(r))
	}
	return out
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
