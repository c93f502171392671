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
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/tools/go/analysis"

	"github.com/google/netlevee/internal/pkg/diagnostic"
	"github.com/google/netlevee/internal/pkg/driver"
	"github.com/google/netlevee/internal/pkg/report"
	"github.com/google/netlevee/pkg/netlevee"
)

func newScanCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [paths...]",
		Short: "Scan files and directories, reporting rule violations",
		Long: `Scan analyzes every .cs and .vb file under the given paths (default: the
current directory). Files are grouped into compilations by their nearest
.csproj or .vbproj file.

The exit code is 3 when a finding at or above --fail-on is reported.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.scan(cmd, args, netlevee.Suite, true)
		},
	}
	addReportFlags(cmd)
	cmd.Flags().String("fail-on", "warning", "lowest severity that makes the scan fail: error, warning, info, hidden or none")
	return cmd
}

func newCallsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calls [paths...]",
		Short: "List the calls to XSS sink and sanitizer methods",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.scan(cmd, args, []*analysis.Analyzer{netlevee.Calls}, false)
		},
	}
	addReportFlags(cmd)
	return cmd
}

func newDefsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "defs [paths...]",
		Short: "List actions, entry points and the declared sink and sanitizer methods",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.scan(cmd, args, []*analysis.Analyzer{netlevee.Defs}, false)
		},
	}
	addReportFlags(cmd)
	return cmd
}

func addReportFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("format", "f", "text", "output format: "+strings.Join(report.Formats, ", "))
	f.StringP("output", "o", "", "write the report to this file instead of standard output")
	f.IntP("concurrency", "j", 0, "number of compilations analyzed at once (0: one per CPU)")
}

func (a *app) scan(cmd *cobra.Command, paths []string, analyzers []*analysis.Analyzer, gate bool) error {
	if len(paths) == 0 {
		paths = []string{"."}
	}
	conf, err := a.analysisConfig()
	if err != nil {
		return err
	}
	var threshold diagnostic.Severity
	failOn := a.v.GetString("fail-on")
	if gate && !strings.EqualFold(failOn, "none") {
		if threshold, err = diagnostic.ParseSeverity(failOn); err != nil {
			return fmt.Errorf("--fail-on: %w", err)
		}
	}

	start := time.Now()
	res, err := driver.Run(cmd.Context(), paths, analyzers, driver.Options{
		Concurrency: a.v.GetInt("concurrency"),
		Logger:      a.logger,
		Config:      conf,
	})
	if err != nil {
		return err
	}
	for _, e := range res.Errors {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", e)
	}

	findings := report.Findings(res, conf)
	if err := a.write(cmd.OutOrStdout(), findings); err != nil {
		return err
	}
	a.logger.Info("scan finished",
		zap.Int("files", len(res.Files)),
		zap.Int("findings", len(findings)),
		zap.Duration("duration", time.Since(start)))

	if threshold != "" && report.Exceeds(findings, threshold) {
		return errFindings
	}
	return nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// write renders findings in the selected format to the --output file or
// to stdout.
func (a *app) write(stdout io.Writer, findings []report.Finding) error {
	opts := report.Options{ToolVersion: Version, Logger: a.logger}
	if wd, err := os.Getwd(); err == nil {
		opts.BaseDir = wd
	}
	format, output := a.v.GetString("format"), a.v.GetString("output")
	var (
		r   report.Reporter
		err error
	)
	if output == "" {
		r, err = report.NewWriter(format, nopCloser{stdout}, opts)
	} else {
		r, err = report.New(format, output, opts)
	}
	if err != nil {
		return err
	}
	if err := r.Write(findings); err != nil {
		r.Close()
		return err
	}
	return r.Close()
}
