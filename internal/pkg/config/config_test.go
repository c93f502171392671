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

package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConfigFromFlag(t *testing.T) {
	require.NoError(t, FlagSet.Set("config", filepath.Join("testdata", "test-config.yaml")))
	t.Cleanup(func() { FlagSet.Set("config", "") })

	c, err := ReadConfig()
	require.NoError(t, err)

	assert.False(t, c.Enabled("SCS0004"))
	assert.True(t, c.Enabled("SCS0028"))
	assert.Equal(t, "Error", c.Severity("SCS0029", "Warning"))
	assert.Equal(t, "Warning", c.Severity("SCS0028", "Warning"))
	assert.False(t, c.TaintEntryPoints())
	assert.Equal(t, []string{"extra-catalog.yaml"}, c.References)
	assert.Equal(t, "see go/xss", c.ReportMessage)

	assert.True(t, c.IsSourceType("Acme.Web", "PublicEndpoint"))
	assert.False(t, c.IsSourceType("Acme.Admin", "PublicEndpoint"))
	assert.True(t, c.IsSink("Acme.Web.Output", "Writer", "WriteRaw"))
	assert.False(t, c.IsSink("Acme.Web.Output", "Writer", "Flush"))
	assert.True(t, c.IsSanitizer("Acme.Text", "Html", "Escape"))
	assert.False(t, c.IsSanitizer("Other.Text", "Html", "Escape"))
}

func TestDefaults(t *testing.T) {
	require.NoError(t, FlagSet.Set("config", ""))

	c, err := ReadConfig()
	require.NoError(t, err)
	assert.True(t, c.Enabled("SCS0029"))
	assert.True(t, c.TaintEntryPoints())
	assert.False(t, c.IsExcluded("src/Home.cs"))

	var nilConfig *Config
	assert.True(t, nilConfig.Enabled("SCS0004"))
	assert.Equal(t, "Info", nilConfig.Severity("SCS0004", "Info"))
}

func TestMissingFile(t *testing.T) {
	require.NoError(t, FlagSet.Set("config", filepath.Join("testdata", "does-not-exist.yaml")))
	t.Cleanup(func() { FlagSet.Set("config", "") })

	_, err := ReadConfig()
	assert.Error(t, err)
}

func TestExclude(t *testing.T) {
	c, err := Load(filepath.Join("testdata", "test-config.yaml"))
	require.NoError(t, err)

	testCases := []struct {
		desc string
		path string
		want bool
	}{
		{
			desc: "build output",
			path: "src/App/obj/Debug/Temp.cs",
			want: true,
		},
		{
			desc: "designer file",
			path: "src/App/Forms/Main.Designer.cs",
			want: true,
		},
		{
			desc: "controller",
			path: "src/App/Controllers/HomeController.cs",
			want: false,
		},
		{
			desc: "single star does not cross directories",
			path: "objects/Home.vb",
			want: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			if got := c.IsExcluded(tc.path); got != tc.want {
				t.Errorf("IsExcluded(%q) = %v, want %v", tc.path, got, tc.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		desc, yaml string
	}{
		{
			desc: "unknown key",
			yaml: `Sinkz: []`,
		},
		{
			desc: "unknown severity",
			yaml: `
Rules:
  SCS0029:
    Severity: Critical`,
		},
		{
			desc: "invalid regexp",
			yaml: `
Sinks:
- MemberRE: "("`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			if _, err := Parse([]byte(tc.yaml)); err == nil {
				t.Errorf("Parse(%q) succeeded, want error", tc.yaml)
			}
		})
	}
}
