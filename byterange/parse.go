package byterange

import (
	"net/textproto"
	"regexp"
	"strconv"
	"strings"
)

var (
	// boundedPattern matches "first-last" and the open-ended "first-".
	boundedPattern = regexp.MustCompile(`^(\d+)-(\d*)$`)

	// suffixPattern matches "-length", a request for the last bytes.
	suffixPattern = regexp.MustCompile(`^-(\d+)$`)
)

// Parse resolves specifier against content of length clen.
//
// An empty specifier means no range was requested, and so does a specifier
// whose range set holds no tokens at all; both return a nil slice and a nil
// error. Range tokens that are malformed or fall outside the content are
// skipped individually. A *NotSatisfiableError is returned when the unit is
// missing or is not "bytes", or when tokens were given but none survived.
//
// The ranges are returned in the order they were requested. Overlapping and
// adjacent ranges are not merged.
func Parse(specifier string, clen int64) ([]Range, error) {
	if specifier == "" {
		return nil, nil
	}

	unit, set, ok := strings.Cut(specifier, "=")
	if !ok || !strings.EqualFold(strings.TrimSpace(unit), Unit) {
		return nil, &NotSatisfiableError{Specifier: specifier}
	}

	var tokens []string
	for _, token := range strings.Split(set, ",") {
		if token = textproto.TrimString(token); token != "" {
			tokens = append(tokens, token)
		}
	}

	if len(tokens) == 0 {
		return nil, nil
	}

	var ranges []Range
	for _, token := range tokens {
		if r, ok := parseToken(token, clen); ok {
			ranges = append(ranges, r)
		}
	}

	if len(ranges) == 0 {
		return nil, &NotSatisfiableError{Specifier: specifier}
	}

	return ranges, nil
}

// parseToken resolves a single range token. It returns false if the token is
// malformed or can not be satisfied by content of length clen.
func parseToken(token string, clen int64) (Range, bool) {
	if m := suffixPattern.FindStringSubmatch(token); m != nil {
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil || n == 0 || clen == 0 {
			return Range{}, false
		}

		// A suffix longer than the content selects all of it.
		return Range{Start: max(0, clen-n), End: clen}, true
	}

	m := boundedPattern.FindStringSubmatch(token)
	if m == nil {
		return Range{}, false
	}

	first, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || first >= clen {
		return Range{}, false
	}

	if m[2] == "" {
		return Range{Start: first, End: clen}, true
	}

	last, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil || first > last {
		return Range{}, false
	}

	// A last byte beyond the content is clipped to the final byte.
	end := clen
	if last < clen-1 {
		end = last + 1
	}

	return Range{Start: first, End: end}, true
}
