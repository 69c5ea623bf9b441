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

// Package eval implements the tree-walking evaluator: expression dispatch
// by value tag, the special forms, and procedure application.
//
// The global frame is seeded with every special-form name bound to its own
// Symbol value (see NewGlobal in builtins.go), so a Cons combination can
// recognize a special form by evaluating its head the same way it would
// evaluate any other symbol and checking whether the result names one.
// This keeps dispatch a single switch in Eval rather than a separate
// keyword table, at the cost of allowing a program to shadow a form by
// redefining its name - an accepted, documented tradeoff rather than a bug.
package eval

import (
	"fmt"

	"github.com/go-scm/goscm/internal/arena"
	"github.com/go-scm/goscm/internal/value"
)

// context carries evaluation state that must be visible to nested calls
// without polluting every function signature with ad hoc booleans: today
// just whether we are currently expanding a cond's clauses, which is what
// makes a bare `else` symbol legal.
type context struct {
	inCond bool
}

// Eval evaluates expr in frame and returns its value or an error.
func Eval(a *arena.Arena, expr *value.Value, frame *value.Frame) (*value.Value, error) {
	return eval(a, expr, frame, context{})
}

func eval(a *arena.Arena, expr *value.Value, frame *value.Frame, ctx context) (*value.Value, error) {
	switch expr.Tag {
	case value.Int, value.Double, value.Str, value.Bool, value.Null, value.Void, value.Closure, value.Primitive:
		return expr, nil

	case value.Symbol:
		if expr.Text == "else" && !ctx.inCond {
			return nil, fmt.Errorf("else is not valid outside cond")
		}
		return frame.Lookup(expr.Text)

	case value.Cons:
		return evalCombination(a, expr, frame, ctx)

	default:
		return nil, fmt.Errorf("cannot evaluate %s: a malformed tree reached the evaluator", expr.Tag)
	}
}

func evalCombination(a *arena.Arena, expr *value.Value, frame *value.Frame, ctx context) (*value.Value, error) {
	head := expr.Car
	args := expr.Cdr

	proc, err := eval(a, head, frame, ctx)
	if err != nil {
		return nil, err
	}

	// A special form is recognized after evaluating the head, not
	// syntactically: the global frame binds each form's name to its own
	// Symbol value, so an unshadowed occurrence evaluates right back to
	// itself and is caught here. A program that redefines e.g. `if` shadows
	// the form, by design (see the package doc comment).
	if head.Tag == value.Symbol && proc.Tag == value.Symbol && proc.Text == head.Text {
		if form, ok := specialForms[head.Text]; ok {
			return form(a, args, frame, ctx)
		}
	}

	evaledArgs, err := evalArgs(a, args, frame, ctx)
	if err != nil {
		return nil, err
	}
	return Apply(a, proc, evaledArgs)
}

// evalArgs evaluates each element of a proper-list argument tail
// left-to-right, building a fresh proper list of the results.
func evalArgs(a *arena.Arena, args *value.Value, frame *value.Frame, ctx context) (*value.Value, error) {
	if args.Tag == value.Null {
		return a.NewNull(), nil
	}
	if args.Tag != value.Cons {
		return nil, fmt.Errorf("malformed argument list")
	}
	head, err := eval(a, args.Car, frame, ctx)
	if err != nil {
		return nil, err
	}
	rest, err := evalArgs(a, args.Cdr, frame, ctx)
	if err != nil {
		return nil, err
	}
	return a.NewCons(head, rest), nil
}

// listToSlice collects a proper list's elements into a slice, erroring on
// an improper tail.
func listToSlice(v *value.Value) ([]*value.Value, error) {
	var out []*value.Value
	for v.Tag == value.Cons {
		out = append(out, v.Car)
		v = v.Cdr
	}
	if v.Tag != value.Null {
		return nil, fmt.Errorf("expected a proper list")
	}
	return out, nil
}
