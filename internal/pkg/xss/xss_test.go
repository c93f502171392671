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

package xss

import (
	"flag"
	"testing"

	"github.com/google/netlevee/internal/pkg/analysistest"
	"github.com/google/netlevee/internal/pkg/config"
	"github.com/google/netlevee/internal/pkg/debug"
	"github.com/google/netlevee/internal/pkg/semantic"
)

var debugging *bool = flag.Bool("debug", false, "run the debug analyzer")

func TestXSS(t *testing.T) {
	dataDir := analysistest.TestData()
	if *debugging {
		Analyzer.Requires = append(Analyzer.Requires, debug.Analyzer)
	}
	testCases := []struct {
		desc     string
		config   string
		patterns []string
	}{
		{
			desc:     "detections and safe uses",
			config:   "empty-config.yaml",
			patterns: []string{"detect", "safe", "entrypoints"},
		},
		{
			desc:     "configured sinks and sanitizers",
			config:   "custom-config.yaml",
			patterns: []string{"custom"},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.desc, func(t *testing.T) {
			if err := Analyzer.Flags.Set("config", dataDir+"/"+tt.config); err != nil {
				t.Fatal(err)
			}
			analysistest.Run(t, dataDir, Analyzer, tt.patterns...)
		})
	}
}

func TestDisabledRuleReportsNothing(t *testing.T) {
	dataDir := analysistest.TestData()
	if err := Analyzer.Flags.Set("config", dataDir+"/disabled-config.yaml"); err != nil {
		t.Fatal(err)
	}
	for _, r := range analysistest.Run(discard{}, dataDir, Analyzer, "detect") {
		if len(r.Diagnostics) != 0 {
			t.Errorf("got %d diagnostics with the rule disabled, want 0", len(r.Diagnostics))
		}
	}
}

func TestEntryPointsCanBeDisabled(t *testing.T) {
	dataDir := analysistest.TestData()
	if err := Analyzer.Flags.Set("config", dataDir+"/no-entrypoints-config.yaml"); err != nil {
		t.Fatal(err)
	}
	for _, r := range analysistest.Run(discard{}, dataDir, Analyzer, "entrypoints") {
		if len(r.Diagnostics) != 0 {
			t.Errorf("got %d diagnostics with entry points disabled, want 0", len(r.Diagnostics))
		}
	}
}

// discard ignores unmet expectations.
type discard struct{}

func (discard) Errorf(string, ...interface{}) {}

func TestMembers(t *testing.T) {
	web := &semantic.Symbol{Kind: semantic.Namespace, Name: "Web", Container: &semantic.Symbol{Kind: semantic.Namespace, Name: "System"}}
	response := &semantic.Symbol{Kind: semantic.Type, Name: "HttpResponse", Container: web}
	utility := &semantic.Symbol{Kind: semantic.Type, Name: "HttpUtility", Container: web}
	conf := &config.Config{}

	testCases := []struct {
		desc          string
		sym           *semantic.Symbol
		wantSink      bool
		wantSanitizer bool
	}{
		{
			desc:     "response write",
			sym:      &semantic.Symbol{Kind: semantic.Method, Name: "Write", Container: response},
			wantSink: true,
		},
		{
			desc: "response redirect",
			sym:  &semantic.Symbol{Kind: semantic.Method, Name: "Redirect", Container: response},
		},
		{
			desc:          "html encode",
			sym:           &semantic.Symbol{Kind: semantic.Method, Name: "HtmlEncode", Container: utility},
			wantSanitizer: true,
		},
		{
			desc: "property named like a sink",
			sym:  &semantic.Symbol{Kind: semantic.Property, Name: "Write", Container: response},
		},
		{
			desc: "unresolved",
		},
	}

	for _, tt := range testCases {
		t.Run(tt.desc, func(t *testing.T) {
			if got := IsSink(conf, tt.sym); got != tt.wantSink {
				t.Errorf("IsSink() = %v, want %v", got, tt.wantSink)
			}
			if got := IsSanitizer(conf, tt.sym); got != tt.wantSanitizer {
				t.Errorf("IsSanitizer() = %v, want %v", got, tt.wantSanitizer)
			}
		})
	}
}
