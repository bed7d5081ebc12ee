package extract

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// unescapeJS decodes the escape sequences of a JavaScript string body. It
// reports false for malformed escapes, which the parser already rejects in
// well-formed input.
func unescapeJS(body string) (string, bool) {
	if !strings.ContainsRune(body, '\\') {
		return body, true
	}

	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(body) {
			return "", false
		}

		switch c = body[i]; c {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case '\r':
			// Line continuation; \r\n counts as one terminator.
			if i+1 < len(body) && body[i+1] == '\n' {
				i++
			}
		case '\n':
		case 'x':
			if i+2 >= len(body) {
				return "", false
			}
			n, err := strconv.ParseUint(body[i+1:i+3], 16, 8)
			if err != nil {
				return "", false
			}
			b.WriteRune(rune(n))
			i += 2
		case 'u':
			r, width, ok := unicodeEscape(body[i+1:])
			if !ok {
				return "", false
			}
			b.WriteRune(r)
			i += width
		default:
			// \' \" \\ \` and any other character stand for themselves.
			r, size := utf8.DecodeRuneInString(body[i:])
			b.WriteRune(r)
			i += size - 1
		}
	}
	return b.String(), true
}

// unicodeEscape reads the digits after \u in either the \uXXXX or the
// \u{X...} form and returns the rune and the bytes consumed.
func unicodeEscape(s string) (rune, int, bool) {
	digits, width := "", 0
	if strings.HasPrefix(s, "{") {
		end := strings.IndexByte(s, '}')
		if end < 2 {
			return 0, 0, false
		}
		digits, width = s[1:end], end+1
	} else {
		if len(s) < 4 {
			return 0, 0, false
		}
		digits, width = s[:4], 4
	}

	n, err := strconv.ParseUint(digits, 16, 32)
	if err != nil || n > utf8.MaxRune {
		return 0, 0, false
	}
	return rune(n), width, true
}
