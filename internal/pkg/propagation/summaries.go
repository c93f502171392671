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

package propagation

import "github.com/google/netlevee/internal/pkg/semantic"

// A summary captures the behavior of a library member with respect to
// taint propagation: given that at least one of the operands in ifTainted
// is tainted, does the result, or the receiver, become tainted?
//
// As an example, consider StringBuilder.Append:
//   public StringBuilder Append(string value)
// Its summary is:
//   "System.Text.StringBuilder.Append": {
//   	ifTainted:       receiverBit | allArgs,
//   	taintsReceiver:  true,
//   	taintsResult:    true,
//   	returnsReceiver: true,
//   },
// In English, this says that appending a tainted value taints the builder,
// and that the builder returned is tainted if either was.
type summary struct {
	// ifTainted is a bitset of the operands that carry taint. The least
	// significant bit is the receiver; bit i is the i-th argument,
	// counting from 1. Arguments past the last bit share it.
	ifTainted uint64
	// taintsReceiver is set when a tainted operand taints the receiver.
	taintsReceiver bool
	// taintsResult is set when a tainted operand taints the result.
	taintsResult bool
	// returnsReceiver is set for members that return their receiver.
	returnsReceiver bool
}

const (
	receiverBit uint64 = 1
	allArgs            = ^receiverBit
)

// reads reports whether argument i, counting from 0, is one of the
// operands of s.
func (s summary) reads(i int) bool {
	if i+1 >= 64 {
		i = 62
	}
	return s.ifTainted&(1<<uint(i+1)) != 0
}

var fromReceiverToResult = summary{
	ifTainted:    receiverBit,
	taintsResult: true,
}

var fromAnyArgToResult = summary{
	ifTainted:    allArgs,
	taintsResult: true,
}

var intoBuilder = summary{
	ifTainted:       receiverBit | allArgs,
	taintsReceiver:  true,
	taintsResult:    true,
	returnsReceiver: true,
}

// neverTainted describes members whose results cannot carry markup.
var neverTainted = summary{}

// memberSummaries is keyed by the full name of the declaring type and the
// member name.
var memberSummaries = map[string]summary{
	// public static string Concat(params object[] args)
	"System.String.Concat": fromAnyArgToResult,
	// public static string Format(string format, params object[] args)
	"System.String.Format": fromAnyArgToResult,
	// public static string Join(string separator, params object[] values)
	"System.String.Join": fromAnyArgToResult,
	// public string Replace(string oldValue, string newValue)
	"System.String.Replace": {
		ifTainted:    receiverBit | 0b100,
		taintsResult: true,
	},
	// public string Insert(int startIndex, string value)
	"System.String.Insert": {
		ifTainted:    receiverBit | 0b100,
		taintsResult: true,
	},
	"System.String.Substring":        fromReceiverToResult,
	"System.String.Trim":             fromReceiverToResult,
	"System.String.TrimStart":        fromReceiverToResult,
	"System.String.TrimEnd":          fromReceiverToResult,
	"System.String.PadLeft":          fromReceiverToResult,
	"System.String.PadRight":         fromReceiverToResult,
	"System.String.ToLower":          fromReceiverToResult,
	"System.String.ToUpper":          fromReceiverToResult,
	"System.String.ToLowerInvariant": fromReceiverToResult,
	"System.String.ToUpperInvariant": fromReceiverToResult,
	"System.String.Split":            fromReceiverToResult,
	"System.String.ToString":         fromReceiverToResult,
	"System.String.IndexOf":          neverTainted,
	"System.String.LastIndexOf":      neverTainted,
	"System.Object.ToString":         fromReceiverToResult,
	"System.Object.GetHashCode":      neverTainted,
	"System.Object.GetType":          neverTainted,

	// public StringBuilder Append(string value)
	"System.Text.StringBuilder.Append":       intoBuilder,
	"System.Text.StringBuilder.AppendLine":   intoBuilder,
	"System.Text.StringBuilder.AppendFormat": intoBuilder,
	// public StringBuilder Insert(int index, string value)
	"System.Text.StringBuilder.Insert": {
		ifTainted:       receiverBit | 0b100,
		taintsReceiver:  true,
		taintsResult:    true,
		returnsReceiver: true,
	},
	"System.Text.StringBuilder.ToString": fromReceiverToResult,

	// public virtual void Write(string value)
	"System.IO.TextWriter.Write": {
		ifTainted:      allArgs,
		taintsReceiver: true,
	},
	"System.IO.TextWriter.WriteLine": {
		ifTainted:      allArgs,
		taintsReceiver: true,
	},
}

func summaryOf(sym *semantic.Symbol) (summary, bool) {
	if sym == nil || sym.Kind != semantic.Method {
		return summary{}, false
	}
	s, ok := memberSummaries[semantic.ContainingType(sym)+"."+sym.Name]
	return s, ok
}
