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

package xss

import (
	"github.com/google/netlevee/internal/pkg/semantic"
)

type member struct {
	typ, name string
}

// sinks write their arguments to the response body.
var sinks = []member{
	{"System.Web.HttpResponse", "Write"},
	{"System.Web.HttpResponseBase", "Write"},
	{"Microsoft.AspNetCore.Http.HttpResponse", "WriteAsync"},
	{"Microsoft.AspNetCore.Http.HttpResponseWritingExtensions", "WriteAsync"},
}

// sanitizers encode their argument for an HTML or script context.
var sanitizers = []member{
	{"System.Text.Encodings.Web.HtmlEncoder", "Encode"},
	{"System.Text.Encodings.Web.JavaScriptEncoder", "Encode"},
	{"System.Web.HttpUtility", "HtmlEncode"},
	{"System.Web.HttpUtility", "HtmlAttributeEncode"},
	{"System.Web.HttpUtility", "JavaScriptStringEncode"},
	{"System.Web.HttpServerUtility", "HtmlEncode"},
	{"System.Web.HttpServerUtilityBase", "HtmlEncode"},
	{"System.Net.WebUtility", "HtmlEncode"},
	{"System.Web.Security.AntiXss.AntiXssEncoder", "HtmlEncode"},
	{"Microsoft.Security.Application.Encoder", "HtmlEncode"},
	{"Microsoft.Security.Application.Encoder", "HtmlAttributeEncode"},
	{"Microsoft.Security.Application.Encoder", "JavaScriptEncode"},
}

type memberMatcher interface {
	IsSink(namespace, typ, member string) bool
	IsSanitizer(namespace, typ, member string) bool
}

// IsSink reports whether the method sym writes to the response, either
// because it is a known sink or because conf names it as one.
func IsSink(conf memberMatcher, sym *semantic.Symbol) bool {
	if !isMethod(sym) {
		return false
	}
	if matchAny(sinks, sym) {
		return true
	}
	ns, typ := split(sym)
	return conf.IsSink(ns, typ, sym.Name)
}

// IsSanitizer reports whether the method sym encodes its input.
func IsSanitizer(conf memberMatcher, sym *semantic.Symbol) bool {
	if !isMethod(sym) {
		return false
	}
	if matchAny(sanitizers, sym) {
		return true
	}
	ns, typ := split(sym)
	return conf.IsSanitizer(ns, typ, sym.Name)
}

func isMethod(sym *semantic.Symbol) bool {
	return sym != nil && sym.Kind == semantic.Method && semantic.ContainingType(sym) != ""
}

func matchAny(ms []member, sym *semantic.Symbol) bool {
	for _, m := range ms {
		if semantic.MatchMember(sym, m.typ, m.name) {
			return true
		}
	}
	return false
}

// split returns the namespace and the name of the type declaring sym.
func split(sym *semantic.Symbol) (namespace, typ string) {
	t := sym.Container
	if t.Container != nil {
		namespace = t.Container.FullName()
	}
	return namespace, t.Name
}
