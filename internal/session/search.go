package session

import (
	"regexp"
	"strings"

	xunicode "golang.org/x/text/encoding/unicode"
)

// Match is one regex match over the decoded accumulator. Start and End are
// byte offsets into the decoded text, End exclusive.
type Match struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// Search decodes the accumulator as UTF-8, replacing invalid sequences with
// U+FFFD, and returns every non-overlapping match of pattern in order.
// When nothing matches, the result is a single zero Match so callers
// always receive at least one row.
func (s *State) Search(pattern string) ([]Match, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &PatternError{Pattern: pattern, Err: err}
	}

	s.bufMu.RLock()
	text := decodeLossy(s.readBuf)
	s.bufMu.RUnlock()

	locs := re.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []Match{{}}, nil
	}

	matches := make([]Match, 0, len(locs))
	for _, loc := range locs {
		matches = append(matches, Match{
			Start: loc[0],
			End:   loc[1],
			Text:  text[loc[0]:loc[1]],
		})
	}
	return matches, nil
}

// decodeLossy returns a copy of b as valid UTF-8.
func decodeLossy(b []byte) string {
	out, err := xunicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "\uFFFD")
	}
	return string(out)
}
