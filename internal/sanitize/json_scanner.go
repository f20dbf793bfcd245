package sanitize

// findJSONCandidates scans the input string for top-level JSON value
// candidates: objects and arrays. It returns a slice of substrings, each
// representing a potential JSON value, in the order they appear.
//
// The scanner is a byte-level state machine that skips over string
// literals (including escapes) and surrounding prose, which is considerably
// more robust than regex extraction on chatty model output.
//
// Note: iterating bytes is safe for the ASCII delimiters ({, }, [, ], ", \)
// because UTF-8 guarantees ASCII bytes never occur inside a multi-byte
// sequence.
func findJSONCandidates(s string) []string {
	var candidates []string
	var stack []byte
	var start int = -1
	var inString bool
	var escape bool

	for i := 0; i < len(s); i++ {
		b := s[i]

		if escape {
			escape = false
			continue
		}

		if inString {
			if b == '\\' {
				escape = true
			} else if b == '"' {
				inString = false
			}
			continue
		}

		switch b {
		case '"':
			// Quotes outside any candidate are prose, not JSON strings.
			if len(stack) > 0 {
				inString = true
			}
		case '{', '[':
			if len(stack) == 0 {
				start = i
			}
			stack = append(stack, b)
		case '}', ']':
			if len(stack) == 0 {
				continue
			}
			open := stack[len(stack)-1]
			if (b == '}' && open != '{') || (b == ']' && open != '[') {
				// Mismatched closer: discard the current candidate.
				stack = stack[:0]
				start = -1
				continue
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 && start != -1 {
				candidates = append(candidates, s[start:i+1])
				start = -1
			}
		}
	}

	return candidates
}
