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

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vulnerable = `using Microsoft.AspNetCore.Mvc;

public class HomeController : Controller
{
    public string Echo(string input)
    {
        return input;
    }
}
`

// invoke runs the command line args and returns its exit code and output.
func invoke(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func project(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "HomeController.cs"), []byte(vulnerable), 0o644))
	return dir
}

func TestVersion(t *testing.T) {
	code, out, _ := invoke(t, "--version")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, Version+"\n", out)
}

func TestRules(t *testing.T) {
	code, out, _ := invoke(t, "rules")
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "SCS0004")
	assert.Contains(t, out, "SCS0028")
	assert.Contains(t, out, "SCS0029")
	assert.Contains(t, out, "CWE-79")
}

func TestRulesHonoursConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Rules:\n  SCS0029:\n    Disabled: true\n    Severity: Error\n"), 0o644))
	code, out, _ := invoke(t, "rules", "--config", path)
	require.Equal(t, exitOK, code)
	assert.Regexp(t, `SCS0029\s+Error\s+false`, out)
	assert.Regexp(t, `SCS0004\s+Warning\s+true`, out)
}

func TestScan(t *testing.T) {
	dir := project(t)
	for _, tt := range []struct {
		desc     string
		args     []string
		wantCode int
	}{
		{desc: "default threshold", wantCode: exitFindings},
		{desc: "threshold above finding", args: []string{"--fail-on", "error"}, wantCode: exitOK},
		{desc: "gate disabled", args: []string{"--fail-on", "none"}, wantCode: exitOK},
		{desc: "bad threshold", args: []string{"--fail-on", "fatal"}, wantCode: exitError},
		{desc: "bad format", args: []string{"--format", "xml"}, wantCode: exitError},
	} {
		t.Run(tt.desc, func(t *testing.T) {
			code, out, stderr := invoke(t, append([]string{"scan", dir}, tt.args...)...)
			assert.Equal(t, tt.wantCode, code, "stderr: %s", stderr)
			if tt.wantCode != exitError {
				assert.Contains(t, out, "HomeController.cs:7:16: SCS0029: ")
			}
		})
	}
}

func TestScanFailOnFromEnvironment(t *testing.T) {
	t.Setenv("NETLEVEE_FAIL_ON", "none")
	code, _, _ := invoke(t, "scan", project(t))
	assert.Equal(t, exitOK, code)
}

func TestScanSARIFToFile(t *testing.T) {
	dir := project(t)
	out := filepath.Join(t.TempDir(), "report.sarif")
	code, stdout, _ := invoke(t, "scan", dir, "-f", "sarif", "-o", out)
	assert.Equal(t, exitFindings, code)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var log struct {
		Version string
		Runs    []struct {
			Results []struct {
				RuleID string
			}
		}
	}
	require.NoError(t, json.Unmarshal(data, &log))
	assert.Equal(t, "2.1.0", log.Version)
	require.Len(t, log.Runs, 1)
	require.Len(t, log.Runs[0].Results, 1)
	assert.Equal(t, "SCS0029", log.Runs[0].Results[0].RuleID)
}

func TestScanDisabledRule(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Rules:\n  SCS0029:\n    Disabled: true\n"), 0o644))
	code, out, _ := invoke(t, "scan", project(t), "--config", path)
	assert.Equal(t, exitOK, code)
	assert.Empty(t, out)
}

func TestScanMissingConfig(t *testing.T) {
	code, _, stderr := invoke(t, "scan", project(t), "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "missing.yaml")
}

func TestCalls(t *testing.T) {
	dir := t.TempDir()
	src := `Imports System.Web

Public Class Page
    Public Sub Render(response As HttpResponse, s As String)
        response.Write(HttpUtility.HtmlEncode(s))
    End Sub
End Class
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Page.vb"), []byte(src), 0o644))
	code, out, _ := invoke(t, "calls", dir)
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "call to sink method System.Web.HttpResponse.Write")
	assert.Contains(t, out, "call to sanitizer method System.Web.HttpUtility.HtmlEncode")
}

func TestDefs(t *testing.T) {
	code, out, _ := invoke(t, "defs", project(t))
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "HomeController.cs:5:19: Echo is an action")
}

func TestDump(t *testing.T) {
	dir := project(t)
	file := filepath.Join(dir, "HomeController.cs")

	code, out, _ := invoke(t, "dump", file)
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "Echo")

	outDir := filepath.Join(t.TempDir(), "trees")
	code, out, _ = invoke(t, "dump", "--format", "dot", "--out", outDir, file)
	require.Equal(t, exitOK, code)
	assert.Equal(t, filepath.Join(outDir, "HomeController_cs.dot")+"\n", out)
	assert.FileExists(t, filepath.Join(outDir, "HomeController_cs.dot"))
}

func TestDumpRejectsOtherFiles(t *testing.T) {
	code, _, stderr := invoke(t, "dump", "README.md")
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "not a C# or Visual Basic file")
}
