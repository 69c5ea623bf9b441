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

package eval

import (
	"io"

	"github.com/go-scm/goscm/internal/arena"
	"github.com/go-scm/goscm/internal/printer"
	"github.com/go-scm/goscm/internal/value"
)

// Interpret evaluates each of forms in global, writing each non-Void result
// to w followed by a newline. After every form, it runs a mark-sweep pass
// over a with roots {the remaining forms, global}, so unreachable
// allocations from an already-evaluated form are reclaimed before the next
// one runs - one cycle per top-level form, not one batch pass at the end.
//
// Interpret stops and returns the first error encountered, leaving any
// later forms unevaluated; the caller (the driver, per the error handling
// contract) is responsible for reporting it and terminating the arena.
func Interpret(a *arena.Arena, global *value.Frame, forms []*value.Value, w io.Writer) error {
	for i, form := range forms {
		result, err := Eval(a, form, global)
		if err != nil {
			return err
		}
		if result.Tag != value.Void {
			if err := printer.Print(w, result); err != nil {
				return err
			}
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		a.Sweep(global, forms[i+1:]...)
	}
	return nil
}
