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
	"bytes"
	"go/token"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/analysis"

	"github.com/google/netlevee/internal/pkg/config"
	"github.com/google/netlevee/internal/pkg/diagnostic"
	"github.com/google/netlevee/internal/pkg/driver"
	"github.com/google/netlevee/internal/pkg/report/sarif"
)

type buffer struct {
	bytes.Buffer
	closed bool
}

func (b *buffer) Close() error {
	b.closed = true
	return nil
}

var base = filepath.Join(string(filepath.Separator), "src", "app")

// result returns a run with an XSS finding whose source is on line 2, and a
// finding of a non-rule analyzer.
func result() *driver.Result {
	fset := token.NewFileSet()
	name := filepath.Join(base, "Controllers", "Home.cs")
	f := fset.AddFile(name, -1, 60)
	f.SetLines([]int{0, 20, 40})
	xss := &analysis.Analyzer{Name: "xss"}
	calls := &analysis.Analyzer{Name: "funccalls"}
	return &driver.Result{
		Fset: fset,
		Diagnostics: []driver.Diagnostic{
			{
				Diagnostic: analysis.Diagnostic{
					Pos:      f.Pos(44),
					End:      f.Pos(50),
					Category: "SCS0029",
					Message:  "SCS0029: " + diagnostic.XSS.Message,
					URL:      diagnostic.XSS.HelpURI,
					Related: []analysis.RelatedInformation{{
						Pos:     f.Pos(25),
						Message: "source: input",
					}},
				},
				Analyzer: xss,
				Position: fset.Position(f.Pos(44)),
			},
			{
				Diagnostic: analysis.Diagnostic{
					Pos:     f.Pos(3),
					Message: "call to sink method System.Web.HttpResponse.Write",
				},
				Analyzer: calls,
				Position: fset.Position(f.Pos(3)),
			},
		},
	}
}

func TestFindings(t *testing.T) {
	fs := Findings(result(), nil)
	require.Len(t, fs, 2)

	x := fs[0]
	assert.Equal(t, "SCS0029", x.RuleID)
	assert.Equal(t, "xss", x.Analyzer)
	assert.Equal(t, diagnostic.Warning, x.Severity)
	assert.Equal(t, 3, x.Line)
	assert.Equal(t, 5, x.Column)
	assert.Equal(t, 3, x.EndLine)
	assert.Equal(t, 11, x.EndColumn)
	require.NotNil(t, x.Source)
	assert.Equal(t, 2, x.Source.Line)
	assert.Equal(t, "source: input", x.Source.Message)

	c := fs[1]
	assert.Equal(t, "funccalls", c.RuleID)
	assert.Equal(t, diagnostic.Info, c.Severity)
	assert.Nil(t, c.Source)
}

func TestFindingsSeverityOverrides(t *testing.T) {
	for _, tt := range []struct {
		desc     string
		severity string
		want     []diagnostic.Severity
	}{
		{desc: "default", want: []diagnostic.Severity{diagnostic.Warning, diagnostic.Info}},
		{desc: "raised", severity: "Error", want: []diagnostic.Severity{diagnostic.Error, diagnostic.Info}},
		{desc: "hidden", severity: "Hidden", want: []diagnostic.Severity{diagnostic.Info}},
	} {
		t.Run(tt.desc, func(t *testing.T) {
			conf := &config.Config{Rules: map[string]config.RuleConfig{"SCS0029": {Severity: tt.severity}}}
			var got []diagnostic.Severity
			for _, f := range Findings(result(), conf) {
				got = append(got, f.Severity)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExceeds(t *testing.T) {
	fs := Findings(result(), nil)
	assert.True(t, Exceeds(fs, diagnostic.Warning))
	assert.False(t, Exceeds(fs, diagnostic.Error))
	// Non-rule findings never count.
	assert.False(t, Exceeds(fs[1:], diagnostic.Hidden))
	assert.False(t, Exceeds(nil, diagnostic.Hidden))
}

func TestText(t *testing.T) {
	var b buffer
	r, err := NewWriter("text", &b, Options{BaseDir: base})
	require.NoError(t, err)
	require.NoError(t, r.Write(Findings(result(), nil)))
	require.NoError(t, r.Close())

	want := "Controllers/Home.cs:3:5: SCS0029: " + diagnostic.XSS.Message + "\n" +
		"\tControllers/Home.cs:2:6: source: input\n" +
		"Controllers/Home.cs:1:4: call to sink method System.Web.HttpResponse.Write\n"
	assert.Equal(t, want, b.String())
	assert.True(t, b.closed)
}

func TestJSON(t *testing.T) {
	var b buffer
	r, err := NewWriter("JSON", &b, Options{ToolVersion: "v1", BaseDir: base})
	require.NoError(t, err)
	require.NoError(t, r.Write(Findings(result(), nil)))
	require.NoError(t, r.Close())

	var got jsonReport
	require.NoError(t, json.Unmarshal(b.Bytes(), &got))
	assert.Equal(t, "v1", got.Version)
	require.Len(t, got.Findings, 2)
	assert.Equal(t, "Controllers/Home.cs", got.Findings[0].File)
	assert.Equal(t, "Controllers/Home.cs", got.Findings[0].Source.File)
	assert.Equal(t, diagnostic.Warning, got.Findings[0].Severity)
}

func TestJSONWithoutFindings(t *testing.T) {
	var b buffer
	r, err := NewWriter("json", &b, Options{})
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Contains(t, b.String(), `"findings": []`)
}

func TestSARIF(t *testing.T) {
	var b buffer
	r, err := NewWriter("sarif", &b, Options{ToolVersion: "v1", BaseDir: base})
	require.NoError(t, err)
	require.NoError(t, r.Write(Findings(result(), nil)))
	require.NoError(t, r.Close())

	var log sarif.Log
	require.NoError(t, json.Unmarshal(b.Bytes(), &log))
	assert.Equal(t, sarif.Version, log.Version)
	require.Len(t, log.Runs, 1)
	run := log.Runs[0]
	require.NotNil(t, run.AutomationDetails)
	assert.NotEmpty(t, run.AutomationDetails.GUID)
	assert.Equal(t, "v1", *run.Tool.Driver.Version)

	var ids []string
	for _, d := range run.Tool.Driver.Rules {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"SCS0004", "SCS0028", "SCS0029", "funccalls"}, ids)

	require.Len(t, run.Results, 2)
	x := run.Results[0]
	assert.Equal(t, "SCS0029", x.RuleID)
	assert.Equal(t, 2, x.RuleIndex)
	assert.Equal(t, sarif.LevelWarning, x.Level)
	assert.Equal(t, diagnostic.XSS.Message, *x.Message.Text)
	loc := x.Locations[0].PhysicalLocation
	assert.Equal(t, "Controllers/Home.cs", *loc.ArtifactLocation.URI)
	assert.Equal(t, sarif.Region{StartLine: 3, StartColumn: 5, EndLine: 3, EndColumn: 11}, *loc.Region)
	require.Len(t, x.RelatedLocations, 1)
	assert.Equal(t, 2, x.RelatedLocations[0].PhysicalLocation.Region.StartLine)

	c := run.Results[1]
	assert.Equal(t, 3, c.RuleIndex)
	assert.Equal(t, sarif.LevelNote, c.Level)
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, err := New("xml", filepath.Join(t.TempDir(), "out.xml"), Options{})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "xml"))
}

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	r, err := New("text", path, Options{})
	require.NoError(t, err)
	require.NoError(t, r.Write(Findings(result(), nil)))
	require.NoError(t, r.Close())
	assert.FileExists(t, path)
}

func TestRelative(t *testing.T) {
	for _, tt := range []struct {
		desc string
		base string
		path string
		want string
	}{
		{desc: "no base", path: filepath.Join(base, "a.cs"), want: filepath.ToSlash(filepath.Join(base, "a.cs"))},
		{desc: "below base", base: base, path: filepath.Join(base, "x", "a.cs"), want: "x/a.cs"},
		{desc: "outside base", base: filepath.Join(base, "x"), path: filepath.Join(base, "y", "a.cs"), want: filepath.ToSlash(filepath.Join(base, "y", "a.cs"))},
	} {
		t.Run(tt.desc, func(t *testing.T) {
			assert.Equal(t, tt.want, relative(tt.base, tt.path))
		})
	}
}
