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
	"fmt"

	"github.com/go-scm/goscm/internal/arena"
	"github.com/go-scm/goscm/internal/value"
)

// Apply invokes proc on args, a proper list of already-evaluated values.
func Apply(a *arena.Arena, proc *value.Value, args *value.Value) (*value.Value, error) {
	switch proc.Tag {
	case value.Primitive:
		return proc.Prim.Fn(args)

	case value.Closure:
		return applyClosure(a, proc, args)

	default:
		return nil, fmt.Errorf("attempt to apply a non-procedure")
	}
}

func applyClosure(a *arena.Arena, proc *value.Value, args *value.Value) (*value.Value, error) {
	clo := proc.Clo
	child := a.NewFrame(clo.Env)

	if clo.Params.Tag == value.Symbol {
		child.Define(clo.Params.Text, args)
	} else {
		params := clo.Params
		rest := args
		for params.Tag == value.Cons {
			if rest.Tag != value.Cons {
				return nil, fmt.Errorf("argument-parameter mismatch")
			}
			child.Define(params.Car.Text, rest.Car)
			params = params.Cdr
			rest = rest.Cdr
		}
		if rest.Tag != value.Null {
			return nil, fmt.Errorf("argument-parameter mismatch")
		}
	}

	return evalBody(a, clo.Body, child, context{})
}
