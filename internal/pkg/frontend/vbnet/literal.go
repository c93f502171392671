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

package vbnet

import (
	"go/constant"
	"go/token"
	"strconv"
	"strings"
)

func literalValue(kind, text string) (constant.Value, bool) {
	switch kind {
	case "TrueLiteralExpression":
		return constant.MakeBool(true), true
	case "FalseLiteralExpression":
		return constant.MakeBool(false), true
	case "StringLiteralExpression":
		s, ok := unquote(text)
		if !ok {
			return nil, false
		}
		return constant.MakeString(s), true
	case "CharacterLiteralExpression":
		s, ok := unquote(strings.TrimRight(text, "cC"))
		if !ok {
			return nil, false
		}
		return constant.MakeString(s), true
	case "NumericLiteralExpression":
		return numericValue(text)
	}
	return nil, false
}

func isQuote(r rune) bool {
	return r == '"' || r == '\u201c' || r == '\u201d'
}

// unquote strips the quotes of a string literal and collapses its doubled
// quotes.
func unquote(text string) (string, bool) {
	rs := []rune(text)
	if len(rs) < 2 || !isQuote(rs[0]) || !isQuote(rs[len(rs)-1]) {
		return "", false
	}
	rs = rs[1 : len(rs)-1]
	var b strings.Builder
	for i := 0; i < len(rs); i++ {
		b.WriteRune(rs[i])
		if isQuote(rs[i]) && i+1 < len(rs) && isQuote(rs[i+1]) {
			i++
		}
	}
	return b.String(), true
}

// integerSuffixes are the type characters and suffixes of integral literals.
var integerSuffixes = []string{"us", "ui", "ul", "s", "i", "l", "%", "&"}

// floatSuffixes are those of floating point and decimal literals.
var floatSuffixes = []string{"d", "f", "r", "@", "!", "#"}

func numericValue(text string) (constant.Value, bool) {
	s := strings.ToLower(text)
	if strings.HasPrefix(s, "&") && len(s) > 2 {
		base := map[byte]int{'h': 16, 'o': 8, 'b': 2}[s[1]]
		if base == 0 {
			return nil, false
		}
		digits := trimSuffixes(s[2:], integerSuffixes)
		u, err := strconv.ParseUint(strings.ReplaceAll(digits, "_", ""), base, 64)
		if err != nil {
			return nil, false
		}
		return constant.MakeUint64(u), true
	}
	s = strings.ReplaceAll(s, "_", "")
	if digits := trimSuffixes(s, integerSuffixes); digits != s || !strings.ContainsAny(s, ".e") && trimSuffixes(s, floatSuffixes) == s {
		if i, err := strconv.ParseInt(digits, 10, 64); err == nil {
			return constant.MakeInt64(i), true
		}
		if u, err := strconv.ParseUint(digits, 10, 64); err == nil {
			return constant.MakeUint64(u), true
		}
		return nil, false
	}
	v := constant.MakeFromLiteral(trimSuffixes(s, floatSuffixes), token.FLOAT, 0)
	return v, v.Kind() != constant.Unknown
}

func trimSuffixes(s string, suffixes []string) string {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) && len(s) > len(suf) {
			return s[:len(s)-len(suf)]
		}
	}
	return s
}
