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

	jsoniter "github.com/json-iterator/go"
)

type textReporter struct {
	w    io.WriteCloser
	opts Options
	err  error
}

func (r *textReporter) Write(fs []Finding) error {
	for _, f := range fs {
		if r.err != nil {
			return r.err
		}
		_, r.err = fmt.Fprintf(r.w, "%s:%d:%d: %s\n", relative(r.opts.BaseDir, f.File), f.Line, f.Column, f.Message)
		if r.err == nil && f.Source != nil {
			_, r.err = fmt.Fprintf(r.w, "\t%s:%d:%d: %s\n", relative(r.opts.BaseDir, f.Source.File), f.Source.Line, f.Source.Column, f.Source.Message)
		}
	}
	return r.err
}

func (r *textReporter) Close() error {
	if err := r.w.Close(); err != nil {
		return fmt.Errorf("closing output: %w", err)
	}
	return r.err
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type jsonReport struct {
	Version  string    `json:"version,omitempty"`
	Findings []Finding `json:"findings"`
}

type jsonReporter struct {
	w        io.WriteCloser
	opts     Options
	findings []Finding
}

func (r *jsonReporter) Write(fs []Finding) error {
	for _, f := range fs {
		f.File = relative(r.opts.BaseDir, f.File)
		if f.Source != nil {
			src := *f.Source
			src.File = relative(r.opts.BaseDir, src.File)
			f.Source = &src
		}
		r.findings = append(r.findings, f)
	}
	return nil
}

func (r *jsonReporter) Close() error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	encodeErr := enc.Encode(jsonReport{Version: r.opts.ToolVersion, Findings: r.findings})
	closeErr := r.w.Close()
	if encodeErr != nil {
		return fmt.Errorf("encoding JSON report: %w", encodeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("closing output: %w", closeErr)
	}
	return nil
}
