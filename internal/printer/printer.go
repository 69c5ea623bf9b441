// Copyright 2025 EngFlow Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package printer renders Values back to their textual form. Parse-tree
// display and eval-result display differ only in whether Str values are
// quoted, so both are expressed as one writer parameterized on that single
// difference rather than as two near-duplicate tree walks.
package printer

import (
	"io"
	"strconv"
	"strings"

	"github.com/go-scm/goscm/internal/value"
)

// Print writes v's eval-result representation (bare strings) to w.
func Print(w io.Writer, v *value.Value) error {
	_, err := io.WriteString(w, Sprint(v))
	return err
}

// Sprint renders v the way a top-level evaluation result is displayed:
// Str contents appear bare, without surrounding quotes.
func Sprint(v *value.Value) string {
	var b strings.Builder
	write(&b, v, false)
	return b.String()
}

// SprintQuoted renders v the way a parsed tree is displayed: Str contents
// appear surrounded by quotes and with embedded quotes/backslashes escaped,
// so the output can be read back as the same literal.
func SprintQuoted(v *value.Value) string {
	var b strings.Builder
	write(&b, v, true)
	return b.String()
}

// write is the one tree-printing routine both display modes share. Void
// renders as the empty string: it carries no printable result. Cons chains
// render as space-separated elements inside parentheses, with a " . " tail
// for improper lists. Closures and primitives render as an opaque
// #procedure tag, never their captured environment or body.
func write(b *strings.Builder, v *value.Value, quoteStrings bool) {
	switch v.Tag {
	case value.Int:
		b.WriteString(strconv.FormatInt(v.Int64, 10))
	case value.Double:
		b.WriteString(formatDouble(v.Float64))
	case value.Str:
		if quoteStrings {
			writeQuotedString(b, v.Text)
		} else {
			b.WriteString(v.Text)
		}
	case value.Symbol:
		b.WriteString(v.Text)
	case value.Bool:
		if v.Bool {
			b.WriteString("#t")
		} else {
			b.WriteString("#f")
		}
	case value.Null:
		b.WriteString("()")
	case value.Void:
		// no output
	case value.Cons:
		writeCons(b, v, quoteStrings)
	case value.Closure, value.Primitive:
		b.WriteString("#procedure")
	default:
		b.WriteString(v.Text)
	}
}

func writeCons(b *strings.Builder, v *value.Value, quoteStrings bool) {
	b.WriteByte('(')
	first := true
	for v.Tag == value.Cons {
		if !first {
			b.WriteByte(' ')
		}
		first = false
		write(b, v.Car, quoteStrings)
		v = v.Cdr
	}
	if v.Tag != value.Null {
		b.WriteString(" . ")
		write(b, v, quoteStrings)
	}
	b.WriteByte(')')
}

func writeQuotedString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
}

// formatDouble prints a float with %f-style formatting (a fixed number of
// fractional digits), so 3.0 prints as "3.000000" rather than "3": a
// Double value is never confused for an Int in its own output.
func formatDouble(d float64) string {
	return strconv.FormatFloat(d, 'f', 6, 64)
}
