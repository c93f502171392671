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

// Package regexp wraps the standard regexp package so that patterns can be
// read directly from configuration.
package regexp

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// Regexp delegates to a compiled regexp.
// The zero value matches every string.
type Regexp struct {
	r *regexp.Regexp
}

// New compiles s.
func New(s string) (*Regexp, error) {
	r, err := regexp.Compile(s)
	if err != nil {
		return nil, err
	}
	return &Regexp{r}, nil
}

// MatchString reports whether s contains any match of the pattern.
func (mr *Regexp) MatchString(s string) bool {
	if mr == nil || mr.r == nil {
		return true
	}
	return mr.r.MatchString(s)
}

func (mr *Regexp) String() string {
	if mr == nil || mr.r == nil {
		return ""
	}
	return mr.r.String()
}

// UnmarshalJSON compiles a pattern given as a JSON string.
func (mr *Regexp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		return fmt.Errorf("empty regexp")
	}
	r, err := regexp.Compile(s)
	if err != nil {
		return fmt.Errorf("compiling %q: %w", s, err)
	}
	mr.r = r
	return nil
}
