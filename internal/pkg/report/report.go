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

// Package report renders analysis results as text, JSON or SARIF.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/google/netlevee/internal/pkg/config"
	"github.com/google/netlevee/internal/pkg/diagnostic"
	"github.com/google/netlevee/internal/pkg/driver"
	"github.com/google/netlevee/internal/pkg/observability"
)

// Formats lists the supported output formats.
var Formats = []string{"text", "json", "sarif"}

// A Location is a position in a source file. Lines and columns are 1-based.
type Location struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Message string `json:"message,omitempty"`
}

// A Finding is a diagnostic ready to be rendered.
type Finding struct {
	RuleID    string              `json:"ruleId"`
	Analyzer  string              `json:"analyzer"`
	Severity  diagnostic.Severity `json:"severity"`
	Message   string              `json:"message"`
	File      string              `json:"file"`
	Line      int                 `json:"line"`
	Column    int                 `json:"column"`
	EndLine   int                 `json:"endLine,omitempty"`
	EndColumn int                 `json:"endColumn,omitempty"`
	HelpURI   string              `json:"helpUri,omitempty"`
	// Source is where the offending value came from, if known.
	Source *Location `json:"source,omitempty"`
}

// Findings converts the diagnostics of res. Rule severities follow conf;
// findings of Hidden rules are dropped. Diagnostics that do not belong to a
// rule are reported at Info under the name of their analyzer.
func Findings(res *driver.Result, conf *config.Config) []Finding {
	var out []Finding
	for _, d := range res.Diagnostics {
		f := Finding{
			RuleID:   d.Analyzer.Name,
			Analyzer: d.Analyzer.Name,
			Severity: diagnostic.Info,
			Message:  d.Message,
			File:     d.Position.Filename,
			Line:     d.Position.Line,
			Column:   d.Position.Column,
			HelpURI:  d.URL,
		}
		if desc, ok := diagnostic.Lookup(d.Category); ok {
			f.RuleID = desc.ID
			f.Severity = diagnostic.EffectiveSeverity(desc, conf)
			if f.Severity == diagnostic.Hidden {
				continue
			}
		}
		if d.End.IsValid() && res.Fset != nil {
			end := res.Fset.Position(d.End)
			f.EndLine, f.EndColumn = end.Line, end.Column
		}
		if len(d.Related) > 0 && res.Fset != nil {
			r := d.Related[0]
			p := res.Fset.Position(r.Pos)
			f.Source = &Location{File: p.Filename, Line: p.Line, Column: p.Column, Message: r.Message}
		}
		out = append(out, f)
	}
	return out
}

// Exceeds reports whether any rule finding has at least the given severity.
func Exceeds(fs []Finding, threshold diagnostic.Severity) bool {
	for _, f := range fs {
		if _, ok := diagnostic.Lookup(f.RuleID); !ok {
			continue
		}
		if f.Severity.Rank() >= threshold.Rank() {
			return true
		}
	}
	return false
}

// Options configures a Reporter.
type Options struct {
	// ToolVersion is recorded in SARIF output.
	ToolVersion string
	// BaseDir, when set, makes file paths relative to it.
	BaseDir string
	Logger  *zap.Logger
}

// Reporter writes findings to an output.
type Reporter interface {
	// Write adds findings to the report.
	Write(fs []Finding) error
	// Close finalizes the report and closes the output.
	Close() error
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// New returns a Reporter for format writing to path. An empty path or
// "stdout" means standard output.
func New(format, path string, opts Options) (Reporter, error) {
	var w io.WriteCloser
	if path == "" || path == "stdout" {
		w = nopWriteCloser{os.Stdout}
	} else {
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("creating output file %s: %w", path, err)
		}
		w = f
	}
	r, err := NewWriter(format, w, opts)
	if err != nil {
		w.Close()
		return nil, err
	}
	return r, nil
}

// NewWriter returns a Reporter for format that takes ownership of w.
func NewWriter(format string, w io.WriteCloser, opts Options) (Reporter, error) {
	opts.Logger = observability.Nop(opts.Logger).Named("report")
	switch strings.ToLower(format) {
	case "text", "":
		return &textReporter{w: w, opts: opts}, nil
	case "json":
		return &jsonReporter{w: w, opts: opts, findings: []Finding{}}, nil
	case "sarif":
		return newSARIFReporter(w, opts), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// relative rewrites path relative to base when path lies below it.
func relative(base, path string) string {
	if base == "" || path == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
