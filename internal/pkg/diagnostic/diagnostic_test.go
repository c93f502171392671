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

package diagnostic

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/google/netlevee/internal/pkg/config"
)

func TestFormat(t *testing.T) {
	for _, tt := range []struct {
		desc   string
		f      Finding
		suffix string
		want   string
	}{
		{
			desc: "plain",
			f:    Finding{Rule: XSS},
			want: "SCS0029: " + XSS.Message,
		},
		{
			desc: "args",
			f:    Finding{Rule: WeakCertificateValidation, Args: []string{"ServicePointManager.ServerCertificateValidationCallback"}},
			want: "SCS0004: " + WeakCertificateValidation.Message + " (ServicePointManager.ServerCertificateValidationCallback)",
		},
		{
			desc:   "suffix",
			f:      Finding{Rule: UnsafeDeserialization},
			suffix: "see go/deser",
			want:   "SCS0028: " + UnsafeDeserialization.Message + " see go/deser",
		},
	} {
		t.Run(tt.desc, func(t *testing.T) {
			if got := Format(tt.f, tt.suffix); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDescriptors(t *testing.T) {
	var got []string
	for _, d := range Descriptors() {
		got = append(got, d.ID)
		if l, ok := Lookup(d.ID); !ok || l != d {
			t.Errorf("Lookup(%q) = %v, %v", d.ID, l, ok)
		}
	}
	want := []string{"SCS0004", "SCS0028", "SCS0029"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Descriptors() diff (-want +got):\n%s", diff)
	}
	if _, ok := Lookup("SCS9999"); ok {
		t.Error("Lookup(SCS9999) succeeded")
	}
}

func TestEffectiveSeverity(t *testing.T) {
	conf := &config.Config{Rules: map[string]config.RuleConfig{
		"SCS0029": {Severity: "Error"},
	}}
	if got := EffectiveSeverity(XSS, conf); got != Error {
		t.Errorf("EffectiveSeverity(XSS) = %v, want Error", got)
	}
	if got := EffectiveSeverity(UnsafeDeserialization, conf); got != Warning {
		t.Errorf("EffectiveSeverity(UnsafeDeserialization) = %v, want Warning", got)
	}
	if got := EffectiveSeverity(XSS, nil); got != Warning {
		t.Errorf("EffectiveSeverity(XSS, nil) = %v, want Warning", got)
	}
}

func TestParseSeverity(t *testing.T) {
	for _, tt := range []struct {
		in      string
		want    Severity
		wantErr bool
	}{
		{in: "error", want: Error},
		{in: "WARNING", want: Warning},
		{in: "Info", want: Info},
		{in: "hidden", want: Hidden},
		{in: "fatal", wantErr: true},
	} {
		got, err := ParseSeverity(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSeverity(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseSeverity(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if !(Error.Rank() > Warning.Rank() && Warning.Rank() > Info.Rank() && Info.Rank() > Hidden.Rank()) {
		t.Error("severities are not ordered")
	}
	if Severity("bogus").Rank() >= Hidden.Rank() {
		t.Error("unknown severity ranks at or above Hidden")
	}
}
