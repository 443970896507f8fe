package parser

import "strings"

// headerKeywords are the words that mark a line as part of the table header.
var headerKeywords = []string{
	"nombre", "presentación", "cantidad", "unidad", "medida", "precio",
	"calidad", "extra", "primera", "variación", "día", "anterior",
}

// requiredHeaderWords must reach headerQuorum across the accumulated header lines.
var requiredHeaderWords = []string{"nombre", "presentación", "cantidad", "precio"}

const headerQuorum = 3

// HeaderLocator accumulates candidate header lines until enough required
// header words have been seen. The zero value is ready to use.
type HeaderLocator struct {
	buffer []string
	found  bool
}

// Feed offers the next trimmed line and reports whether it completed the
// header. Once the header is found, Feed keeps returning false.
func (h *HeaderLocator) Feed(line string) bool {
	if h.found {
		return false
	}
	if !hasHeaderKeyword(line) {
		h.buffer = h.buffer[:0]
		return false
	}

	h.buffer = append(h.buffer, strings.ToLower(line))
	if countRequired(strings.Join(h.buffer, " ")) >= headerQuorum {
		h.found = true
		h.buffer = nil
		return true
	}
	return false
}

// Found reports whether the header quorum has been reached.
func (h *HeaderLocator) Found() bool {
	return h.found
}

// LocateHeader returns the index of the first line after the header, or -1.
func LocateHeader(lines []string) int {
	var h HeaderLocator
	for i, line := range lines {
		if h.Feed(line) {
			return i + 1
		}
	}
	return -1
}

func hasHeaderKeyword(line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range headerKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func countRequired(text string) int {
	n := 0
	for _, word := range requiredHeaderWords {
		if strings.Contains(text, word) {
			n++
		}
	}
	return n
}
