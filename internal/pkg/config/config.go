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

// Package config holds the user-facing analysis configuration shared by
// every netlevee analyzer.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/gobwas/glob"
	"sigs.k8s.io/yaml"

	"github.com/google/netlevee/internal/pkg/config/regexp"
)

// FlagSet should be used by analyzers to reuse -config flag.
var FlagSet flag.FlagSet

var configFile = &pathFlag{}

func init() {
	FlagSet.Var(configFile, "config", "path to analysis configuration file (built-in defaults when empty)")
}

// Severities accepted in the Rules section.
var Severities = []string{"Error", "Warning", "Info", "Hidden"}

// Config contains matchers and analysis scope information.
type Config struct {
	// Rules overrides the default state of individual rules, keyed by
	// rule identifier.
	Rules map[string]RuleConfig
	// Sources names additional controller base types and attributes.
	Sources []TypeMatcher
	// Sinks and Sanitizers extend the built-in XSS tables.
	Sinks      []MemberMatcher
	Sanitizers []MemberMatcher
	// Exclude lists file glob patterns that are never analyzed.
	Exclude []Glob
	// References lists extra metadata catalog files.
	References []string
	// ReportMessage is appended to every diagnostic message.
	ReportMessage string
	// TaintEntryPointParameters controls whether parameters of public
	// non-action methods are treated as sources for direct-output sinks.
	TaintEntryPointParameters *bool
}

// RuleConfig is the per-rule section of the configuration.
type RuleConfig struct {
	Disabled bool
	Severity string
}

// Enabled reports whether the rule with the given identifier should run.
func (c *Config) Enabled(id string) bool {
	if c == nil {
		return true
	}
	return !c.Rules[id].Disabled
}

// Severity returns the configured severity of a rule, or def.
func (c *Config) Severity(id, def string) string {
	if c == nil || c.Rules[id].Severity == "" {
		return def
	}
	return c.Rules[id].Severity
}

// TaintEntryPoints reports whether public non-action methods are analyzed.
func (c *Config) TaintEntryPoints() bool {
	if c == nil || c.TaintEntryPointParameters == nil {
		return true
	}
	return *c.TaintEntryPointParameters
}

// IsExcluded determines if a file matches one of the exclusion patterns.
func (c *Config) IsExcluded(path string) bool {
	if c == nil {
		return false
	}
	for _, g := range c.Exclude {
		if g.Match(path) {
			return true
		}
	}
	return false
}

func (c *Config) IsSink(namespace, typ, member string) bool {
	if c == nil {
		return false
	}
	for _, m := range c.Sinks {
		if m.MatchMember(namespace, typ, member) {
			return true
		}
	}
	return false
}

func (c *Config) IsSanitizer(namespace, typ, member string) bool {
	if c == nil {
		return false
	}
	for _, m := range c.Sanitizers {
		if m.MatchMember(namespace, typ, member) {
			return true
		}
	}
	return false
}

func (c *Config) IsSourceType(namespace, typ string) bool {
	if c == nil {
		return false
	}
	for _, m := range c.Sources {
		if m.MatchType(namespace, typ) {
			return true
		}
	}
	return false
}

func (c *Config) validate() error {
	ids := make([]string, 0, len(c.Rules))
	for id := range c.Rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		s := c.Rules[id].Severity
		if s == "" {
			continue
		}
		ok := false
		for _, known := range Severities {
			ok = ok || s == known
		}
		if !ok {
			return fmt.Errorf("rule %s: unknown severity %q", id, s)
		}
	}
	return nil
}

type stringMatcher interface {
	MatchString(string) bool
}

type literalMatcher string

func (lm literalMatcher) MatchString(s string) bool {
	return string(lm) == s
}

type vacuousMatcher struct{}

func (vacuousMatcher) MatchString(s string) bool {
	return true
}

// Returns the first non-nil matcher.  If all are nil, returns a vacuousMatcher.
func matcherFrom(lm *literalMatcher, r *regexp.Regexp) stringMatcher {
	switch {
	case lm != nil:
		return lm
	case r != nil:
		return r
	default:
		return vacuousMatcher{}
	}
}

// A TypeMatcher matches by namespace and type name.
// Matching may be done against string literals Namespace, Type,
// or against regexp NamespaceRE, TypeRE.
type TypeMatcher struct {
	Namespace stringMatcher
	Type      stringMatcher
}

// this type uses the default unmarshaler and mirrors configuration key-value pairs
type rawTypeMatcher struct {
	Namespace   *literalMatcher
	Type        *literalMatcher
	NamespaceRE *regexp.Regexp
	TypeRE      *regexp.Regexp
}

func (tm *TypeMatcher) UnmarshalJSON(bytes []byte) error {
	raw := rawTypeMatcher{}
	if err := json.Unmarshal(bytes, &raw); err != nil {
		return err
	}

	// validation: do not double-specify any attribute with literal and regexp
	if raw.Namespace != nil && raw.NamespaceRE != nil {
		return fmt.Errorf("expected only one of Namespace, NamespaceRE to be configured")
	}
	if raw.Type != nil && raw.TypeRE != nil {
		return fmt.Errorf("expected only one of Type, TypeRE to be configured")
	}

	*tm = TypeMatcher{
		Namespace: matcherFrom(raw.Namespace, raw.NamespaceRE),
		Type:      matcherFrom(raw.Type, raw.TypeRE),
	}
	return nil
}

func (tm TypeMatcher) MatchType(namespace, typ string) bool {
	return tm.Namespace.MatchString(namespace) && tm.Type.MatchString(typ)
}

// A MemberMatcher matches a method or property by namespace, declaring
// type and member name.
type MemberMatcher struct {
	Namespace stringMatcher
	Type      stringMatcher
	Member    stringMatcher
}

// this type uses the default unmarshaler and mirrors configuration key-value pairs
type rawMemberMatcher struct {
	Namespace   *literalMatcher
	Type        *literalMatcher
	Member      *literalMatcher
	NamespaceRE *regexp.Regexp
	TypeRE      *regexp.Regexp
	MemberRE    *regexp.Regexp
}

func (mm *MemberMatcher) UnmarshalJSON(bytes []byte) error {
	raw := rawMemberMatcher{}
	if err := json.Unmarshal(bytes, &raw); err != nil {
		return err
	}

	// validation: do not double-specify any attribute with literal and regexp
	if raw.Namespace != nil && raw.NamespaceRE != nil {
		return fmt.Errorf("expected at most one of Namespace, NamespaceRE to be configured")
	}
	if raw.Type != nil && raw.TypeRE != nil {
		return fmt.Errorf("expected at most one of Type, TypeRE to be configured")
	}
	if raw.Member != nil && raw.MemberRE != nil {
		return fmt.Errorf("expected at most one of Member, MemberRE to be configured")
	}

	*mm = MemberMatcher{
		Namespace: matcherFrom(raw.Namespace, raw.NamespaceRE),
		Type:      matcherFrom(raw.Type, raw.TypeRE),
		Member:    matcherFrom(raw.Member, raw.MemberRE),
	}
	return nil
}

func (mm MemberMatcher) MatchMember(namespace, typ, member string) bool {
	return mm.Namespace.MatchString(namespace) && mm.Type.MatchString(typ) && mm.Member.MatchString(member)
}

// Glob is a compiled file pattern. "**" crosses directory separators.
type Glob struct {
	Pattern string
	glob.Glob
}

func (g *Glob) UnmarshalJSON(bytes []byte) error {
	var s string
	if err := json.Unmarshal(bytes, &s); err != nil {
		return err
	}
	compiled, err := glob.Compile(s, '/')
	if err != nil {
		return fmt.Errorf("compiling exclude pattern %q: %w", s, err)
	}
	*g = Glob{Pattern: s, Glob: compiled}
	return nil
}

// Parse decodes a YAML configuration.
func Parse(data []byte) (*Config, error) {
	c := new(Config)
	if err := yaml.UnmarshalStrict(data, c); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads and decodes the configuration file at path.
func Load(path string) (*Config, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading analysis config: %v", err)
	}
	return Parse(bytes)
}

var (
	mu                  sync.Mutex
	readFileOnce        sync.Once
	readConfigCached    *Config
	readConfigCachedErr error
)

// pathFlag resets the cached configuration whenever -config is set.
type pathFlag struct {
	path string
}

func (f *pathFlag) String() string { return f.path }

func (f *pathFlag) Set(s string) error {
	mu.Lock()
	defer mu.Unlock()
	f.path = s
	readFileOnce = sync.Once{}
	return nil
}

// ReadConfig returns the configuration selected by -config, reading it
// at most once.
func ReadConfig() (*Config, error) {
	mu.Lock()
	defer mu.Unlock()
	readFileOnce.Do(func() {
		if configFile.path == "" {
			readConfigCached, readConfigCachedErr = new(Config), nil
			return
		}
		readConfigCached, readConfigCachedErr = Load(configFile.path)
	})
	return readConfigCached, readConfigCachedErr
}

// SetBytes replaces the configuration with the result of parsing bytes.
func SetBytes(bytes []byte) {
	mu.Lock()
	defer mu.Unlock()
	readFileOnce = sync.Once{}
	readFileOnce.Do(func() {
		readConfigCached, readConfigCachedErr = Parse(bytes)
	})
}

// SetConfig replaces the configuration.
func SetConfig(c *Config) {
	mu.Lock()
	defer mu.Unlock()
	readFileOnce = sync.Once{}
	readFileOnce.Do(func() {
		readConfigCached, readConfigCachedErr = c, nil
	})
}
