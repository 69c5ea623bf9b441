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
	"github.com/go-scm/goscm/internal/collections"
	"github.com/go-scm/goscm/internal/value"
)

// specialFormFunc handles one special form: it receives the combination's
// unevaluated tail, the frame the form is evaluated in, and the enclosing
// evaluation context.
type specialFormFunc func(a *arena.Arena, args *value.Value, frame *value.Frame, ctx context) (*value.Value, error)

// specialForms maps each self-bound special-form name to its handler.
// NewGlobal (builtins.go) binds every key of this map to its own Symbol.
var specialForms map[string]specialFormFunc

func init() {
	specialForms = map[string]specialFormFunc{
		"if":     evalIf,
		"quote":  evalQuote,
		"lambda": evalLambda,
		"let":    evalLet,
		"let*":   evalLetStar,
		"letrec": evalLetrec,
		"define": evalDefine,
		"set!":   evalSet,
		"and":    evalAnd,
		"or":     evalOr,
		"begin":  evalBegin,
		"cond":   evalCond,
	}
}

func evalIf(a *arena.Arena, args *value.Value, frame *value.Frame, ctx context) (*value.Value, error) {
	parts, err := listToSlice(args)
	if err != nil || len(parts) < 2 || len(parts) > 3 {
		return nil, fmt.Errorf("if requires (test then else?)")
	}
	test, err := eval(a, parts[0], frame, ctx)
	if err != nil {
		return nil, err
	}
	if test.Truthy() {
		return eval(a, parts[1], frame, ctx)
	}
	if len(parts) == 3 {
		return eval(a, parts[2], frame, ctx)
	}
	return a.NewVoid(), nil
}

func evalQuote(a *arena.Arena, args *value.Value, frame *value.Frame, ctx context) (*value.Value, error) {
	parts, err := listToSlice(args)
	if err != nil || len(parts) != 1 {
		return nil, fmt.Errorf("quote requires exactly one argument")
	}
	return parts[0], nil
}

func evalLambda(a *arena.Arena, args *value.Value, frame *value.Frame, ctx context) (*value.Value, error) {
	if args.Tag != value.Cons {
		return nil, fmt.Errorf("lambda requires (params body...)")
	}
	params := args.Car
	body := args.Cdr
	if body.Tag != value.Cons {
		return nil, fmt.Errorf("lambda requires at least one body form")
	}
	if err := validateParams(params); err != nil {
		return nil, err
	}
	return a.NewClosure(params, body, frame), nil
}

// validateParams enforces the Closure.Params invariant: Null, a proper list
// of distinct Symbols, or a single Symbol.
func validateParams(params *value.Value) error {
	if params.Tag == value.Symbol || params.Tag == value.Null {
		return nil
	}
	elems, err := listToSlice(params)
	if err != nil {
		return fmt.Errorf("lambda parameter list must be a proper list or a single symbol")
	}
	for _, p := range elems {
		if p.Tag != value.Symbol {
			return fmt.Errorf("lambda parameter list must contain only symbols")
		}
	}
	names := collections.MapSlice(elems, func(p *value.Value) string { return p.Text })
	if dups := collections.FindDuplicates(names); len(dups) > 0 {
		return fmt.Errorf("duplicate parameter name %q", dups[0])
	}
	return nil
}

// bindingPair parses one (name expr) entry of a let/let*/letrec binding
// list.
func bindingPair(entry *value.Value) (name string, expr *value.Value, err error) {
	parts, err := listToSlice(entry)
	if err != nil || len(parts) != 2 || parts[0].Tag != value.Symbol {
		return "", nil, fmt.Errorf("malformed binding in let/let*/letrec")
	}
	return parts[0].Text, parts[1], nil
}

func evalBody(a *arena.Arena, body *value.Value, frame *value.Frame, ctx context) (*value.Value, error) {
	forms, err := listToSlice(body)
	if err != nil || len(forms) == 0 {
		return nil, fmt.Errorf("expected at least one body form")
	}
	var result *value.Value
	for _, form := range forms {
		result, err = eval(a, form, frame, ctx)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// bindingNamesAndExprs parses a let/let*/letrec binding list into parallel
// name/expression slices, erroring on a malformed entry or on any name that
// appears more than once (collections.FindDuplicates drives the latter
// check, the same pattern gazelle_cc's index validation uses for duplicate
// target/header names).
func bindingNamesAndExprs(bindings []*value.Value, formName string) (names []string, exprs []*value.Value, err error) {
	names = make([]string, len(bindings))
	exprs = make([]*value.Value, len(bindings))
	for i, entry := range bindings {
		name, expr, err := bindingPair(entry)
		if err != nil {
			return nil, nil, err
		}
		names[i], exprs[i] = name, expr
	}
	if dups := collections.FindDuplicates(names); len(dups) > 0 {
		return nil, nil, fmt.Errorf("duplicate binding name %q in %s", dups[0], formName)
	}
	return names, exprs, nil
}

func evalLet(a *arena.Arena, args *value.Value, frame *value.Frame, ctx context) (*value.Value, error) {
	if args.Tag != value.Cons {
		return nil, fmt.Errorf("let requires (bindings body...)")
	}
	bindings, err := listToSlice(args.Car)
	if err != nil {
		return nil, fmt.Errorf("let bindings must be a proper list")
	}
	names, exprs, err := bindingNamesAndExprs(bindings, "let")
	if err != nil {
		return nil, err
	}
	child := a.NewFrame(frame)
	for i, name := range names {
		v, err := eval(a, exprs[i], frame, ctx)
		if err != nil {
			return nil, err
		}
		child.Define(name, v)
	}
	return evalBody(a, args.Cdr, child, ctx)
}

func evalLetStar(a *arena.Arena, args *value.Value, frame *value.Frame, ctx context) (*value.Value, error) {
	if args.Tag != value.Cons {
		return nil, fmt.Errorf("let* requires (bindings body...)")
	}
	bindings, err := listToSlice(args.Car)
	if err != nil {
		return nil, fmt.Errorf("let* bindings must be a proper list")
	}
	names, exprs, err := bindingNamesAndExprs(bindings, "let*")
	if err != nil {
		return nil, err
	}
	child := a.NewFrame(frame)
	for i, name := range names {
		v, err := eval(a, exprs[i], child, ctx)
		if err != nil {
			return nil, err
		}
		child.Define(name, v)
	}
	return evalBody(a, args.Cdr, child, ctx)
}

func evalLetrec(a *arena.Arena, args *value.Value, frame *value.Frame, ctx context) (*value.Value, error) {
	if args.Tag != value.Cons {
		return nil, fmt.Errorf("letrec requires (bindings body...)")
	}
	bindings, err := listToSlice(args.Car)
	if err != nil {
		return nil, fmt.Errorf("letrec bindings must be a proper list")
	}
	names, exprs, err := bindingNamesAndExprs(bindings, "letrec")
	if err != nil {
		return nil, err
	}
	child := a.NewFrame(frame)
	for _, name := range names {
		child.Define(name, a.NewVoid()) // uninitialized placeholder
	}
	for i := range names {
		v, err := eval(a, exprs[i], child, ctx)
		if err != nil {
			return nil, err
		}
		b, _ := child.LookupBinding(names[i])
		b.Value = v
	}
	return evalBody(a, args.Cdr, child, ctx)
}

// evalDefine implements both (define sym expr) and the procedure shorthand
// (define (name params...) body...), which desugars to binding name to a
// lambda over params and body. Both the evaluation of expr and the new
// binding happen in the global frame, no matter where the define appears.
func evalDefine(a *arena.Arena, args *value.Value, frame *value.Frame, ctx context) (*value.Value, error) {
	if args.Tag != value.Cons {
		return nil, fmt.Errorf("define requires (sym expr) or ((name params...) body...)")
	}
	global := frame
	for global.Parent != nil {
		global = global.Parent
	}

	switch head := args.Car; head.Tag {
	case value.Symbol:
		parts, err := listToSlice(args)
		if err != nil || len(parts) != 2 {
			return nil, fmt.Errorf("define requires (sym expr)")
		}
		v, err := eval(a, parts[1], global, ctx)
		if err != nil {
			return nil, err
		}
		global.Define(parts[0].Text, v)
		return a.NewVoid(), nil

	case value.Cons:
		if head.Car.Tag != value.Symbol {
			return nil, fmt.Errorf("define requires a procedure name in (name params...)")
		}
		if args.Cdr.Tag != value.Cons {
			return nil, fmt.Errorf("define requires at least one body form")
		}
		params := head.Cdr
		if err := validateParams(params); err != nil {
			return nil, err
		}
		global.Define(head.Car.Text, a.NewClosure(params, args.Cdr, global))
		return a.NewVoid(), nil

	default:
		return nil, fmt.Errorf("define requires (sym expr) or ((name params...) body...)")
	}
}

func evalSet(a *arena.Arena, args *value.Value, frame *value.Frame, ctx context) (*value.Value, error) {
	parts, err := listToSlice(args)
	if err != nil || len(parts) != 2 || parts[0].Tag != value.Symbol {
		return nil, fmt.Errorf("set! requires (sym expr)")
	}
	b, ok := frame.LookupBinding(parts[0].Text)
	if !ok {
		return nil, fmt.Errorf("Undefined symbol '%s'", parts[0].Text)
	}
	v, err := eval(a, parts[1], frame, ctx)
	if err != nil {
		return nil, err
	}
	b.Value = v
	return a.NewVoid(), nil
}

func evalAnd(a *arena.Arena, args *value.Value, frame *value.Frame, ctx context) (*value.Value, error) {
	parts, err := listToSlice(args)
	if err != nil || len(parts) != 2 {
		return nil, fmt.Errorf("and requires exactly two arguments")
	}
	first, err := eval(a, parts[0], frame, ctx)
	if err != nil {
		return nil, err
	}
	if !first.Truthy() {
		return first, nil
	}
	return eval(a, parts[1], frame, ctx)
}

func evalOr(a *arena.Arena, args *value.Value, frame *value.Frame, ctx context) (*value.Value, error) {
	parts, err := listToSlice(args)
	if err != nil || len(parts) != 2 {
		return nil, fmt.Errorf("or requires exactly two arguments")
	}
	first, err := eval(a, parts[0], frame, ctx)
	if err != nil {
		return nil, err
	}
	if first.Truthy() {
		return first, nil
	}
	return eval(a, parts[1], frame, ctx)
}

func evalBegin(a *arena.Arena, args *value.Value, frame *value.Frame, ctx context) (*value.Value, error) {
	forms, err := listToSlice(args)
	if err != nil {
		return nil, fmt.Errorf("begin requires a proper list of forms")
	}
	if len(forms) == 0 {
		return a.NewNull(), nil
	}
	var result *value.Value
	for _, form := range forms {
		result, err = eval(a, form, frame, ctx)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func evalCond(a *arena.Arena, args *value.Value, frame *value.Frame, ctx context) (*value.Value, error) {
	clauses, err := listToSlice(args)
	if err != nil {
		return nil, fmt.Errorf("cond requires a proper list of clauses")
	}
	inClause := ctx
	inClause.inCond = true
	for _, clause := range clauses {
		elems, err := listToSlice(clause)
		if err != nil || len(elems) == 0 || len(elems) > 2 {
			return nil, fmt.Errorf("malformed cond clause")
		}
		// A one-element clause's value is the result the moment the walk
		// reaches it, truthy or not.
		if len(elems) == 1 {
			return eval(a, elems[0], frame, inClause)
		}
		test, err := eval(a, elems[0], frame, inClause)
		if err != nil {
			return nil, err
		}
		if test.Truthy() {
			return eval(a, elems[1], frame, inClause)
		}
	}
	return a.NewVoid(), nil
}
