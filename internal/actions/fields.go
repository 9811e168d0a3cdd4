package actions

import (
	"fmt"
	"strings"
)

// field is one colon-separated element of a directive payload.
type field struct {
	value  string
	quoted bool
	object bool
}

// splitFields tokenises a payload into fields separated by ':'. A quoted field runs to the
// first '"' that is followed by ':' or the end of the payload, so quoted text may itself
// contain colons. A field starting with '{' runs to its balanced closing brace. Anything
// else is a bare token up to the next ':'.
func splitFields(payload string) ([]field, error) {
	payload = strings.TrimSpace(payload)
	var out []field
	if payload == "" {
		return out, nil
	}
	i := 0
	for {
		var (
			f   field
			end int
		)
		switch {
		case i < len(payload) && payload[i] == '"':
			j := closingQuote(payload, i+1)
			if j < 0 {
				return nil, fmt.Errorf("%w: unterminated string at offset %d", ErrMalformedPayload, i)
			}
			f = field{value: payload[i+1 : j], quoted: true}
			end = j + 1
		case i < len(payload) && payload[i] == '{':
			j := closingBrace(payload, i)
			if j < 0 {
				return nil, fmt.Errorf("%w: unbalanced object at offset %d", ErrMalformedPayload, i)
			}
			f = field{value: payload[i : j+1], object: true}
			end = j + 1
		default:
			end = strings.IndexByte(payload[i:], ':')
			if end < 0 {
				end = len(payload)
			} else {
				end += i
			}
			f = field{value: payload[i:end]}
		}
		out = append(out, f)

		if end == len(payload) {
			return out, nil
		}
		if payload[end] != ':' {
			return nil, fmt.Errorf("%w: expected ':' at offset %d", ErrMalformedPayload, end)
		}
		i = end + 1
	}
}

func closingQuote(s string, from int) int {
	for j := from; j < len(s); j++ {
		if s[j] == '"' && (j+1 == len(s) || s[j+1] == ':') {
			return j
		}
	}
	return -1
}

// closingBrace returns the index of the brace closing the object opened at s[open],
// skipping braces inside JSON strings.
func closingBrace(s string, open int) int {
	depth := 0
	inString, escaped := false, false
	for j := open; j < len(s); j++ {
		c := s[j]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}
