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
	"fmt"
	"go/token"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/google/netlevee/internal/pkg/compilation"
	"github.com/google/netlevee/internal/pkg/debug/dump"
	"github.com/google/netlevee/internal/pkg/diagnostic"
	"github.com/google/netlevee/internal/pkg/syntax"
)

func newDumpCmd(a *app) *cobra.Command {
	var formats []string
	for f := range dump.Formats {
		formats = append(formats, f)
	}
	sort.Strings(formats)

	cmd := &cobra.Command{
		Use:   "dump file...",
		Short: "Print the normalized syntax tree of source files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.dump(cmd, args)
		},
	}
	cmd.Flags().StringP("format", "f", "text", "tree format: "+strings.Join(formats, ", "))
	cmd.Flags().String("out", "", "write one file per input to this directory instead of standard output")
	return cmd
}

func (a *app) dump(cmd *cobra.Command, files []string) error {
	format, out := a.v.GetString("format"), a.v.GetString("out")
	if _, ok := dump.Formats[format]; !ok {
		return fmt.Errorf("unknown dump format %q", format)
	}
	fset := token.NewFileSet()
	for _, name := range files {
		lang, ok := syntax.LanguageOf(name)
		if !ok {
			return fmt.Errorf("%s: not a C# or Visual Basic file", name)
		}
		src, err := os.ReadFile(name)
		if err != nil {
			return err
		}
		t, err := compilation.Parse(cmd.Context(), fset, lang, name, src)
		if err != nil {
			return err
		}
		h := compilation.HelperFor(lang)
		if out != "" {
			path, err := dump.Save(out, format, t, h)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			continue
		}
		s, err := dump.Render(format, t, h)
		if err != nil {
			return err
		}
		if len(files) > 1 {
			fmt.Fprintf(cmd.OutOrStdout(), "== %s\n", name)
		}
		io.WriteString(cmd.OutOrStdout(), s)
	}
	return nil
}

func newRulesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the rules and their effective severity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := a.analysisConfig()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSEVERITY\tENABLED\tCWE\tTITLE")
			for _, d := range diagnostic.Descriptors() {
				fmt.Fprintf(w, "%s\t%s\t%t\tCWE-%d\t%s\n", d.ID, diagnostic.EffectiveSeverity(d, conf), conf.Enabled(d.ID), d.CWE, d.Title)
			}
			return w.Flush()
		},
	}
}
