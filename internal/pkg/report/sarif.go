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

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/google/netlevee/internal/pkg/diagnostic"
	"github.com/google/netlevee/internal/pkg/report/sarif"
)

const (
	toolName    = "netlevee"
	toolInfoURI = "https://github.com/google/netlevee"
)

type sarifReporter struct {
	w    io.WriteCloser
	opts Options
	log  *sarif.Log
	// rules maps a rule identifier to its index in the driver's rules.
	rules map[string]int
}

func newSARIFReporter(w io.WriteCloser, opts Options) *sarifReporter {
	tool := &sarif.ToolComponent{
		Name:           toolName,
		InformationURI: sarif.String(toolInfoURI),
		Rules:          []*sarif.ReportingDescriptor{},
	}
	if opts.ToolVersion != "" {
		tool.Version = sarif.String(opts.ToolVersion)
	}
	r := &sarifReporter{
		w:    w,
		opts: opts,
		log: &sarif.Log{
			Version: sarif.Version,
			Schema:  sarif.Schema,
			Runs: []*sarif.Run{{
				Tool:              &sarif.Tool{Driver: tool},
				AutomationDetails: &sarif.AutomationDetails{GUID: uuid.NewString()},
				Results:           []*sarif.Result{},
			}},
		},
		rules: map[string]int{},
	}
	for _, d := range diagnostic.Descriptors() {
		r.addRule(d.ID, descriptor(d))
	}
	return r
}

func descriptor(d *diagnostic.Descriptor) *sarif.ReportingDescriptor {
	return &sarif.ReportingDescriptor{
		ID:                   d.ID,
		Name:                 sarif.String(d.Title),
		ShortDescription:     &sarif.MultiformatMessageString{Text: sarif.String(d.Title)},
		FullDescription:      &sarif.MultiformatMessageString{Text: sarif.String(d.Description)},
		HelpURI:              sarif.String(d.HelpURI),
		DefaultConfiguration: &sarif.Configuration{Level: level(d.Severity)},
		Properties: sarif.PropertyBag{
			"tags": []string{"security", fmt.Sprintf("external/cwe/cwe-%d", d.CWE)},
		},
	}
}

func (r *sarifReporter) addRule(id string, d *sarif.ReportingDescriptor) int {
	if i, ok := r.rules[id]; ok {
		return i
	}
	driver := r.log.Runs[0].Tool.Driver
	driver.Rules = append(driver.Rules, d)
	r.rules[id] = len(driver.Rules) - 1
	return r.rules[id]
}

func level(s diagnostic.Severity) sarif.Level {
	switch s {
	case diagnostic.Error:
		return sarif.LevelError
	case diagnostic.Warning:
		return sarif.LevelWarning
	case diagnostic.Hidden:
		return sarif.LevelNone
	default:
		return sarif.LevelNote
	}
}

func (r *sarifReporter) location(file string, line, col, endLine, endCol int) *sarif.PhysicalLocation {
	return &sarif.PhysicalLocation{
		ArtifactLocation: &sarif.ArtifactLocation{URI: sarif.String(relative(r.opts.BaseDir, file))},
		Region: &sarif.Region{
			StartLine:   line,
			StartColumn: col,
			EndLine:     endLine,
			EndColumn:   endCol,
		},
	}
}

func (r *sarifReporter) Write(fs []Finding) error {
	run := r.log.Runs[0]
	for _, f := range fs {
		idx := r.addRule(f.RuleID, &sarif.ReportingDescriptor{
			ID:               f.RuleID,
			ShortDescription: &sarif.MultiformatMessageString{Text: sarif.String("findings of the " + f.Analyzer + " analyzer")},
		})
		res := &sarif.Result{
			RuleID:    f.RuleID,
			RuleIndex: idx,
			Message:   &sarif.Message{Text: sarif.String(strings.TrimPrefix(f.Message, f.RuleID+": "))},
			Level:     level(f.Severity),
			Locations: []*sarif.Location{{
				PhysicalLocation: r.location(f.File, f.Line, f.Column, f.EndLine, f.EndColumn),
			}},
		}
		if f.Source != nil {
			id := 1
			res.RelatedLocations = []*sarif.Location{{
				ID:               &id,
				PhysicalLocation: r.location(f.Source.File, f.Source.Line, f.Source.Column, 0, 0),
				Message:          &sarif.Message{Text: sarif.String(f.Source.Message)},
			}}
		}
		run.Results = append(run.Results, res)
	}
	return nil
}

func (r *sarifReporter) Close() error {
	run := r.log.Runs[0]
	r.opts.Logger.Debug("writing SARIF report",
		zap.Int("results", len(run.Results)),
		zap.Int("rules", len(run.Tool.Driver.Rules)),
	)
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	encodeErr := enc.Encode(r.log)
	closeErr := r.w.Close()
	if encodeErr != nil {
		return fmt.Errorf("encoding SARIF report: %w", encodeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("closing output: %w", closeErr)
	}
	return nil
}
