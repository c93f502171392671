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

// Package diagnostic holds the rule descriptors and turns findings into
// analysis diagnostics.
package diagnostic

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/tools/go/analysis"

	"github.com/google/netlevee/internal/pkg/config"
	"github.com/google/netlevee/internal/pkg/syntax"
)

// Severity is the default level of a rule.
type Severity string

const (
	Error   Severity = "Error"
	Warning Severity = "Warning"
	Info    Severity = "Info"
	Hidden  Severity = "Hidden"
)

var ranks = map[Severity]int{Hidden: 0, Info: 1, Warning: 2, Error: 3}

// Rank orders severities from Hidden (0) to Error (3). Unknown severities
// rank below Hidden.
func (s Severity) Rank() int {
	r, ok := ranks[s]
	if !ok {
		return -1
	}
	return r
}

// ParseSeverity returns the severity named by s, ignoring case.
func ParseSeverity(s string) (Severity, error) {
	for sev := range ranks {
		if strings.EqualFold(string(sev), s) {
			return sev, nil
		}
	}
	return "", fmt.Errorf("unknown severity %q", s)
}

// Descriptor describes a rule. Identifiers are never reused for a
// different check.
type Descriptor struct {
	ID          string
	Title       string
	Message     string
	Description string
	Severity    Severity
	HelpURI     string
	CWE         int
}

var (
	WeakCertificateValidation = &Descriptor{
		ID:          "SCS0004",
		Title:       "Certificate Validation has been disabled",
		Message:     "Certificate Validation has been disabled. The communication could be intercepted.",
		Description: "Overriding the server certificate validation callback or policy typically accepts every certificate, which allows man-in-the-middle attacks.",
		Severity:    Warning,
		HelpURI:     "https://security-code-scan.github.io/#SCS0004",
		CWE:         295,
	}
	UnsafeDeserialization = &Descriptor{
		ID:          "SCS0028",
		Title:       "Potential usage of unsafe deserializer",
		Message:     "TypeNameHandling is set to a value other than None, or a type resolver is supplied. The deserializer may instantiate attacker-chosen types.",
		Description: "Deserializers that embed type information in the payload can be used to run arbitrary code when the input is untrusted.",
		Severity:    Warning,
		HelpURI:     "https://security-code-scan.github.io/#SCS0028",
		CWE:         502,
	}
	XSS = &Descriptor{
		ID:          "SCS0029",
		Title:       "Potential XSS vulnerability",
		Message:     "Potential XSS vulnerability. The user input reaches the response without being encoded.",
		Description: "Request data written to the response or returned from an action must be encoded for the context it is rendered in.",
		Severity:    Warning,
		HelpURI:     "https://security-code-scan.github.io/#SCS0029",
		CWE:         79,
	}
)

var descriptors = map[string]*Descriptor{
	WeakCertificateValidation.ID: WeakCertificateValidation,
	UnsafeDeserialization.ID:     UnsafeDeserialization,
	XSS.ID:                       XSS,
}

// Lookup returns the descriptor with the given identifier.
func Lookup(id string) (*Descriptor, bool) {
	d, ok := descriptors[id]
	return d, ok
}

// Descriptors returns every rule, ordered by identifier.
func Descriptors() []*Descriptor {
	out := make([]*Descriptor, 0, len(descriptors))
	for _, d := range descriptors {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// EffectiveSeverity is the severity of d after configuration overrides.
func EffectiveSeverity(d *Descriptor, conf *config.Config) Severity {
	return Severity(conf.Severity(d.ID, string(d.Severity)))
}

// A Finding is a rule violation at a node.
type Finding struct {
	Rule *Descriptor
	Node *syntax.Node
	Args []string
	// Related marks where the offending value came from, if known.
	Related *syntax.Node
}

// Format renders the message of a finding as "ID: message".
func Format(f Finding, suffix string) string {
	msg := f.Rule.Message
	if len(f.Args) > 0 {
		msg = fmt.Sprintf("%s (%s)", msg, strings.Join(f.Args, ", "))
	}
	if suffix != "" {
		msg = msg + " " + suffix
	}
	return f.Rule.ID + ": " + msg
}

// Suppressor reports whether findings at a node have been silenced.
type Suppressor interface {
	IsSuppressed(n *syntax.Node) bool
}

// Emitter reports findings to an analysis pass.
type Emitter struct {
	pass     *analysis.Pass
	conf     *config.Config
	suppress Suppressor
}

// NewEmitter returns an Emitter for pass. suppress may be nil.
func NewEmitter(pass *analysis.Pass, conf *config.Config, suppress Suppressor) *Emitter {
	return &Emitter{pass: pass, conf: conf, suppress: suppress}
}

// Enabled reports whether findings of rule d are reported at all.
func (e *Emitter) Enabled(d *Descriptor) bool {
	return e.conf.Enabled(d.ID)
}

// Report emits f unless its rule is disabled or its location suppressed.
func (e *Emitter) Report(f Finding) {
	if f.Node == nil || !e.Enabled(f.Rule) {
		return
	}
	if e.suppress != nil && e.suppress.IsSuppressed(f.Node) {
		return
	}
	d := analysis.Diagnostic{
		Pos:      f.Node.Pos(),
		End:      f.Node.End(),
		Category: f.Rule.ID,
		Message:  Format(f, e.conf.ReportMessage),
		URL:      f.Rule.HelpURI,
	}
	if f.Related != nil {
		d.Related = []analysis.RelatedInformation{{
			Pos:     f.Related.Pos(),
			End:     f.Related.End(),
			Message: "source: " + f.Related.Text(),
		}}
	}
	e.pass.Report(d)
}
