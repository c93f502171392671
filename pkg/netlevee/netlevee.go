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

// Package netlevee exposes the netlevee analyzers and a driver that runs
// them over C# and Visual Basic sources.
package netlevee

import (
	"context"

	"golang.org/x/tools/go/analysis"

	"github.com/google/netlevee/internal/pkg/certvalidation"
	"github.com/google/netlevee/internal/pkg/deserialization"
	"github.com/google/netlevee/internal/pkg/driver"
	"github.com/google/netlevee/internal/pkg/funccalls"
	"github.com/google/netlevee/internal/pkg/funcdefs"
	"github.com/google/netlevee/internal/pkg/xss"
)

var (
	// CertValidation reports disabled server certificate validation (SCS0004).
	CertValidation = certvalidation.Analyzer
	// Deserialization reports unsafe deserializer settings (SCS0028).
	Deserialization = deserialization.Analyzer
	// XSS reports request data written to a response unencoded (SCS0029).
	XSS = xss.Analyzer
	// Calls lists the calls to XSS sinks and sanitizers.
	Calls = funccalls.Analyzer
	// Defs lists actions, entry points and the declared sink and
	// sanitizer methods.
	Defs = funcdefs.Analyzer
)

// Suite holds the rule analyzers.
var Suite = []*analysis.Analyzer{CertValidation, Deserialization, XSS}

type (
	Options    = driver.Options
	Result     = driver.Result
	Diagnostic = driver.Diagnostic
)

// Run analyzes the files found under paths with the rule analyzers.
func Run(ctx context.Context, paths []string, opts Options) (*Result, error) {
	return driver.Run(ctx, paths, Suite, opts)
}
