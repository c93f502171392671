// Copyright 2021 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package csharp

import (
	"go/constant"
	"go/token"
	"strconv"
	"strings"
	"unicode/utf8"
)

func literalValue(kind, text string) (constant.Value, bool) {
	switch kind {
	case "boolean_literal", "true", "false":
		switch text {
		case "true":
			return constant.MakeBool(true), true
		case "false":
			return constant.MakeBool(false), true
		}
	case "integer_literal":
		return integerValue(text)
	case "real_literal":
		s := strings.TrimRight(strings.ReplaceAll(text, "_", ""), "fFdDmM")
		v := constant.MakeFromLiteral(s, token.FLOAT, 0)
		return v, v.Kind() != constant.Unknown
	case "string_literal":
		s := strings.TrimSuffix(strings.TrimSuffix(text, "u8"), "U8")
		if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
			return nil, false
		}
		return constant.MakeString(unescape(s[1 : len(s)-1])), true
	case "verbatim_string_literal":
		s := strings.TrimPrefix(text, "@")
		if len(s) < 2 {
			return nil, false
		}
		return constant.MakeString(strings.ReplaceAll(s[1:len(s)-1], `""`, `"`)), true
	case "raw_string_literal":
		s := strings.Trim(text, `"`)
		return constant.MakeString(strings.TrimSpace(s)), true
	case "character_literal":
		if len(text) < 2 {
			return nil, false
		}
		return constant.MakeString(unescape(text[1 : len(text)-1])), true
	}
	return nil, false
}

func integerValue(text string) (constant.Value, bool) {
	s := strings.ToLower(strings.ReplaceAll(text, "_", ""))
	s = strings.TrimRight(s, "ul")
	switch {
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0b"):
	default:
		// C# has no octal literals.
		s = strings.TrimLeft(s, "0")
		if s == "" {
			s = "0"
		}
	}
	if i, err := strconv.ParseInt(s, 0, 64); err == nil {
		return constant.MakeInt64(i), true
	}
	if u, err := strconv.ParseUint(s, 0, 64); err == nil {
		return constant.MakeUint64(u), true
	}
	return nil, false
}

// unescape interprets the simple, hexadecimal and unicode escape
// sequences of regular string and character literals.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '0':
			b.WriteByte(0)
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case 'e':
			b.WriteByte(0x1b)
		case 'u', 'U', 'x':
			width := 4
			if s[i] == 'U' {
				width = 8
			}
			j := i + 1
			for j < len(s) && j-i-1 < width && isHex(s[j]) {
				j++
			}
			r, err := strconv.ParseUint(s[i+1:j], 16, 32)
			if err != nil || j == i+1 {
				b.WriteByte('\\')
				b.WriteByte(s[i])
				continue
			}
			var buf [utf8.UTFMax]byte
			n := utf8.EncodeRune(buf[:], rune(r))
			b.Write(buf[:n])
			i = j - 1
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}
