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
	"testing"

	"sigs.k8s.io/yaml"

	"github.com/google/netlevee/internal/pkg/config/regexp"
)

func TestMemberMatcherUnmarshaling(t *testing.T) {
	testCases := []struct {
		desc, yaml        string
		shouldErrorOnLoad bool
	}{
		{
			desc: "Unknown keys inside a matcher are ignored",
			yaml: `
Blahblah: foo
NamespaceRE: bar`,
			shouldErrorOnLoad: false,
		},
		{
			desc: "Do not permit both Namespace and NamespaceRE",
			yaml: `
Namespace: foo
NamespaceRE: bar`,
			shouldErrorOnLoad: true,
		},
		{
			desc: "Do not permit both Type and TypeRE",
			yaml: `
Type: foo
TypeRE: bar`,
			shouldErrorOnLoad: true,
		},
		{
			desc: "Do not permit both Member and MemberRE",
			yaml: `
Member: foo
MemberRE: bar`,
			shouldErrorOnLoad: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			mm := MemberMatcher{}
			err := yaml.UnmarshalStrict([]byte(tc.yaml), &mm)

			if (err != nil) != tc.shouldErrorOnLoad {
				t.Errorf("error expectation = %v, but got err=%v", tc.shouldErrorOnLoad, err)
			}
		})
	}
}

func TestMemberMatcherMatching(t *testing.T) {
	testCases := []struct {
		desc, yaml             string
		namespace, typ, member string
		shouldMatch            bool
	}{
		{
			desc: "Literal namespace and member match any type",
			yaml: `
Namespace: System.Web
Member: Write`,
			namespace:   "System.Web",
			typ:         "HttpResponse",
			member:      "Write",
			shouldMatch: true,
		},
		{
			desc: "Literal namespace does not match a nested namespace",
			yaml: `
Namespace: System.Web
Member: Write`,
			namespace:   "System.Web.Mvc",
			typ:         "HttpResponse",
			member:      "Write",
			shouldMatch: false,
		},
		{
			desc: "Mixed regexp and literal matchers are permitted - positive case",
			yaml: `
NamespaceRE: ^System\.Web
Type: HttpResponseBase
Member: Write`,
			namespace:   "System.Web.Abstractions",
			typ:         "HttpResponseBase",
			member:      "Write",
			shouldMatch: true,
		},
		{
			desc: "Mixed regexp and literal matchers are permitted - negative case",
			yaml: `
NamespaceRE: ^System\.Web
Type: HttpResponseBase
Member: Write`,
			namespace:   "System.Web",
			typ:         "HttpResponse",
			member:      "Write",
			shouldMatch: false,
		},
		{
			desc: "Member regexp",
			yaml: `
Type: Encoder
MemberRE: Encode$`,
			namespace:   "Microsoft.Security.Application",
			typ:         "Encoder",
			member:      "HtmlEncode",
			shouldMatch: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			mm := MemberMatcher{}
			if err := yaml.UnmarshalStrict([]byte(tc.yaml), &mm); err != nil {
				t.Errorf("Unexpected error unmarshalling MemberMatcher: %v", err)
			}

			if tc.shouldMatch != mm.MatchMember(tc.namespace, tc.typ, tc.member) {
				t.Errorf("MatchMember(%q, %q, %q) = %v; want %v", tc.namespace, tc.typ, tc.member, !tc.shouldMatch, tc.shouldMatch)
			}
		})
	}
}

func TestTypeMatcherUnmarshaling(t *testing.T) {
	testCases := []struct {
		desc, yaml        string
		shouldErrorOnLoad bool
	}{
		{
			desc: "Do not permit both Namespace and NamespaceRE",
			yaml: `
Namespace: foo
NamespaceRE: bar`,
			shouldErrorOnLoad: true,
		},
		{
			desc: "Do not permit both Type and TypeRE",
			yaml: `
Type: foo
TypeRE: bar`,
			shouldErrorOnLoad: true,
		},
		{
			desc: "Type alone",
			yaml: `
Type: ApiControllerBase`,
			shouldErrorOnLoad: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			tm := TypeMatcher{}
			err := yaml.UnmarshalStrict([]byte(tc.yaml), &tm)

			if (err != nil) != tc.shouldErrorOnLoad {
				t.Errorf("error expectation = %v, but got err=%v", tc.shouldErrorOnLoad, err)
			}
		})
	}
}

func TestTypeMatcherMatching(t *testing.T) {
	testCases := []struct {
		desc, yaml     string
		namespace, typ string
		shouldMatch    bool
	}{
		{
			desc: "Literal type in any namespace",
			yaml: `
Type: BaseController`,
			namespace:   "Acme.Web",
			typ:         "BaseController",
			shouldMatch: true,
		},
		{
			desc: "Regexp namespace",
			yaml: `
NamespaceRE: ^Acme\.
TypeRE: Controller$`,
			namespace:   "Acme.Web.Admin",
			typ:         "SecureController",
			shouldMatch: true,
		},
		{
			desc: "Regexp namespace - negative case",
			yaml: `
NamespaceRE: ^Acme\.
TypeRE: Controller$`,
			namespace:   "Contoso.Web",
			typ:         "SecureController",
			shouldMatch: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			tm := TypeMatcher{}
			if err := yaml.UnmarshalStrict([]byte(tc.yaml), &tm); err != nil {
				t.Errorf("Unexpected error unmarshalling TypeMatcher: %v", err)
			}

			if tc.shouldMatch != tm.MatchType(tc.namespace, tc.typ) {
				t.Errorf("MatchType(%q, %q) = %v; want %v", tc.namespace, tc.typ, !tc.shouldMatch, tc.shouldMatch)
			}
		})
	}
}

func mustRegexp(t *testing.T, s string) *regexp.Regexp {
	t.Helper()
	r, err := regexp.New(s)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestMatcherTypes(t *testing.T) {
	testCases := []struct {
		desc        string
		matcher     stringMatcher
		s           string
		shouldMatch bool
	}{
		{
			desc:        "literal matcher foo == foo",
			matcher:     literalMatcher("foo"),
			s:           "foo",
			shouldMatch: true,
		},
		{
			desc:        "literal matcher foo != food",
			matcher:     literalMatcher("foo"),
			s:           "food",
			shouldMatch: false,
		},
		{
			desc:        "regexp matcher /foo/ matches food",
			matcher:     mustRegexp(t, "foo"),
			s:           "food",
			shouldMatch: true,
		},
		{
			desc:        "regexp matcher /foo/ does not match bar",
			matcher:     mustRegexp(t, "foo"),
			s:           "bar",
			shouldMatch: false,
		},
		{
			desc:        "vacuous matcher matches bar",
			matcher:     vacuousMatcher{},
			s:           "bar",
			shouldMatch: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			if tc.matcher.MatchString(tc.s) != tc.shouldMatch {
				t.Errorf("Expected matcher (%T) %v to return MatchString(%q) == %v, got %v", tc.matcher, tc.matcher, tc.s, tc.shouldMatch, !tc.shouldMatch)
			}
		})
	}
}
