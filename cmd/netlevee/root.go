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
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/google/netlevee/internal/pkg/config"
	"github.com/google/netlevee/internal/pkg/observability"
)

// Version is set at build time with
// -ldflags "-X main.Version=v1.2.3".
var Version = "devel"

// Exit codes.
const (
	exitOK       = 0
	exitError    = 1
	exitFindings = 3
)

// errFindings is returned by a command that completed but found issues at
// or above the --fail-on severity.
var errFindings = errors.New("findings reported")

// app holds the state shared by the commands of one invocation.
type app struct {
	v      *viper.Viper
	logger *zap.Logger
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errFindings):
		return exitFindings
	default:
		fmt.Fprintf(stderr, "netlevee: %v\n", err)
		return exitError
	}
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), logger: zap.NewNop()}
	root := &cobra.Command{
		Use:           "netlevee",
		Short:         "netlevee finds XSS, unsafe deserialization and disabled certificate validation in C# and Visual Basic code.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	root.SetVersionTemplate("{{printf \"%s\\n\" .Version}}")

	pf := root.PersistentFlags()
	pf.String("log-level", "warn", "log level: debug, info, warn or error")
	pf.String("log-format", "console", "log format: console or json")
	pf.String("log-file", "", "also write JSON logs to this file, rotated by size")
	pf.String("config", "", "analysis configuration file (YAML)")

	root.AddCommand(newScanCmd(a), newCallsCmd(a), newDefsCmd(a), newDumpCmd(a), newRulesCmd(a))
	return root
}

// init binds the flags of cmd into viper, with NETLEVEE_ environment
// variables as fallbacks, and builds the logger.
func (a *app) init(cmd *cobra.Command) error {
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	a.v.SetEnvPrefix("NETLEVEE")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	a.v.AutomaticEnv()

	logger, err := observability.NewWithWriter(observability.Config{
		Level:  a.v.GetString("log-level"),
		Format: a.v.GetString("log-format"),
		File:   a.v.GetString("log-file"),
	}, zapcore.AddSync(cmd.ErrOrStderr()))
	if err != nil {
		return fmt.Errorf("configuring logging: %w", err)
	}
	a.logger = logger.With(zap.String("command", cmd.Name()))
	return nil
}

// analysisConfig loads the file named by --config, or returns the empty
// configuration.
func (a *app) analysisConfig() (*config.Config, error) {
	path := a.v.GetString("config")
	if path == "" {
		return &config.Config{}, nil
	}
	conf, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	a.logger.Debug("loaded analysis configuration", zap.String("path", path))
	return conf, nil
}
