// Copyright 2020 Google LLC
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

package regexp

import (
	"encoding/json"
	"testing"
)

func TestUnmarshalJSON(t *testing.T) {
	for _, tt := range []struct {
		desc     string
		in       string
		match    []string
		mismatch []string
		wantErr  bool
	}{
		{
			desc:     "anchored alternation",
			in:       `"^Http(Response|Context)$"`,
			match:    []string{"HttpResponse", "HttpContext"},
			mismatch: []string{"HttpResponseBase", "httpresponse"},
		},
		{
			desc:     "unanchored",
			in:       `"Encode"`,
			match:    []string{"HtmlEncode", "Encode"},
			mismatch: []string{"Decode"},
		},
		{
			desc:    "empty pattern",
			in:      `""`,
			wantErr: true,
		},
		{
			desc:    "invalid pattern",
			in:      `"("`,
			wantErr: true,
		},
		{
			desc:    "not a string",
			in:      `42`,
			wantErr: true,
		},
	} {
		t.Run(tt.desc, func(t *testing.T) {
			var got Regexp
			err := json.Unmarshal([]byte(tt.in), &got)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Unmarshal(%s) succeeded, want error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal(%s) = %v", tt.in, err)
			}
			for _, s := range tt.match {
				if !got.MatchString(s) {
					t.Errorf("%v.MatchString(%q) = false", got.String(), s)
				}
			}
			for _, s := range tt.mismatch {
				if got.MatchString(s) {
					t.Errorf("%v.MatchString(%q) = true", got.String(), s)
				}
			}
		})
	}
}

func TestZeroValueMatchesEverything(t *testing.T) {
	var nilRegexp *Regexp
	for _, r := range []*Regexp{nilRegexp, {}} {
		if !r.MatchString("anything") {
			t.Errorf("MatchString() on %#v = false", r)
		}
		if r.String() != "" {
			t.Errorf("String() on %#v = %q", r, r.String())
		}
	}
}

func TestNew(t *testing.T) {
	r, err := New(`^Write(Async)?$`)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	if !r.MatchString("WriteAsync") || r.MatchString("WriteLine") {
		t.Errorf("%s matched the wrong names", r)
	}
	if _, err := New("["); err == nil {
		t.Error("New(\"[\") succeeded")
	}
}
