// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package catalog

import (
	"bytes"
	"errors"
	"fmt"
)

var errUnterminatedString = errors.New("unterminated string literal")

// pythonLiteralToJSON rewrites a Python literal made of lists, dicts, strings,
// numbers, None, True and False into JSON. Input that is already JSON passes
// through unchanged. The output is not validated; decoding it reports any
// remaining syntax errors.
func pythonLiteralToJSON(s string) ([]byte, error) {
	var out bytes.Buffer
	out.Grow(len(s) + len(s)/8)

	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '\'' || c == '"':
			n, err := writeJSONString(&out, s[i:])
			if err != nil {
				return nil, err
			}
			i += n

		case isNumberStart(c):
			j := i + 1
			for j < len(s) && isNumberPart(s[j]) {
				j++
			}
			out.WriteString(s[i:j])
			i = j

		case isIdentStart(c):
			j := i + 1
			for j < len(s) && isIdentPart(s[j]) {
				j++
			}
			switch word := s[i:j]; word {
			case "None":
				out.WriteString("null")
			case "True":
				out.WriteString("true")
			case "False":
				out.WriteString("false")
			default:
				return nil, fmt.Errorf("unsupported identifier %q at offset %d", word, i)
			}
			i = j

		case c == ',':
			// Python allows a trailing comma before a closing bracket.
			j := i + 1
			for j < len(s) && isSpace(s[j]) {
				j++
			}
			if j < len(s) && (s[j] == ']' || s[j] == '}') {
				i++
				continue
			}
			out.WriteByte(c)
			i++

		case c == '(' || c == ')':
			return nil, fmt.Errorf("tuples are not supported (offset %d)", i)

		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.Bytes(), nil
}

// writeJSONString converts the quoted literal at the start of s and returns
// how many input bytes it consumed.
func writeJSONString(out *bytes.Buffer, s string) (int, error) {
	quote := s[0]
	out.WriteByte('"')

	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case c == quote:
			out.WriteByte('"')
			return i + 1, nil

		case c == '\\':
			if i+1 >= len(s) {
				return 0, errUnterminatedString
			}
			i++
			switch e := s[i]; e {
			case '\'':
				out.WriteByte('\'')
			case '"':
				out.WriteString(`\"`)
			case '\\', '/', 'b', 'f', 'n', 'r', 't':
				out.WriteByte('\\')
				out.WriteByte(e)
			case 'x':
				if i+2 >= len(s) || !isHex(s[i+1]) || !isHex(s[i+2]) {
					return 0, fmt.Errorf("invalid \\x escape at offset %d", i)
				}
				out.WriteString(`\u00`)
				out.WriteString(s[i+1 : i+3])
				i += 2
			case 'u':
				if i+4 >= len(s) || !isHex(s[i+1]) || !isHex(s[i+2]) || !isHex(s[i+3]) || !isHex(s[i+4]) {
					return 0, fmt.Errorf("invalid \\u escape at offset %d", i)
				}
				out.WriteString(`\u`)
				out.WriteString(s[i+1 : i+5])
				i += 4
			default:
				// Unknown escapes keep their backslash.
				out.WriteString(`\\`)
				out.WriteByte(e)
			}

		case c == '"':
			out.WriteString(`\"`)

		case c < 0x20:
			fmt.Fprintf(out, `\u%04x`, c)

		default:
			out.WriteByte(c)
		}
	}
	return 0, errUnterminatedString
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isNumberStart(c byte) bool {
	return (c >= '0' && c <= '9') || c == '-' || c == '.'
}

func isNumberPart(c byte) bool {
	return (c >= '0' && c <= '9') || c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
