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

// Package value defines the tagged-union runtime value representation shared
// by the lexer, parser and evaluator, along with the lexical environment
// (Frame) that closures capture.
//
// Value is modeled as a single struct carrying a Tag plus every payload field
// a variant might need, rather than as an interface hierarchy: dispatch is an
// exhaustive switch over Tag, which keeps self-evaluation and equality rules
// local to one file instead of scattered across per-type methods.
package value

import "fmt"

// Tag identifies which payload fields of a Value are meaningful.
type Tag int

const (
	Int       Tag = iota // Int64 holds the literal
	Double               // Float64 holds the literal
	Str                  // Text holds the string contents
	Symbol               // Text holds the identifier
	Bool                 // Bool holds #t/#f
	Null                 // the empty list; no payload
	Cons                 // Car/Cdr hold the pair
	Closure              // Params/Body/Env hold the procedure
	Primitive            // Prim holds the native function
	Void                 // no printable result; no payload
)

func (t Tag) String() string {
	switch t {
	case Int:
		return "Int"
	case Double:
		return "Double"
	case Str:
		return "Str"
	case Symbol:
		return "Symbol"
	case Bool:
		return "Bool"
	case Null:
		return "Null"
	case Cons:
		return "Cons"
	case Closure:
		return "Closure"
	case Primitive:
		return "Primitive"
	case Void:
		return "Void"
	default:
		return fmt.Sprintf("Tag(%d)", int(t))
	}
}

// PrimitiveFunc is the signature of a native procedure: it receives the
// already-evaluated argument list as a proper Cons/Null list and returns a
// result value or an error.
type PrimitiveFunc func(args *Value) (*Value, error)

// PrimitiveValue is the payload of a Primitive-tagged Value: a named native
// procedure.
type PrimitiveValue struct {
	Name string
	Fn   PrimitiveFunc
}

// ClosureValue is the payload of a Closure-tagged Value: a user-defined
// procedure's formal parameters, its body and the frame in which it was
// created.
//
// Params is Null (no parameters), a proper list of distinct Symbols (fixed
// arity), or a single Symbol (variadic, receiving the whole argument list).
type ClosureValue struct {
	Params *Value
	Body   *Value
	Env    *Frame
}

// Value is the tagged runtime representation of every piece of interpreter
// data: literals, pairs, closures and primitives. Only the fields relevant to
// Tag are populated; the allocator is responsible for constructing Values
// and the eval/printer packages are responsible for only reading the fields
// that correspond to a Value's Tag.
type Value struct {
	Tag Tag

	Int64   int64
	Float64 float64
	Text    string // Str contents or Symbol name
	Bool    bool

	Car, Cdr *Value // Cons

	Prim *PrimitiveValue // Primitive
	Clo  *ClosureValue   // Closure
}

// IsList reports whether v is a proper list: Null, or a Cons chain whose
// final Cdr is Null.
func (v *Value) IsList() bool {
	for v.Tag == Cons {
		v = v.Cdr
	}
	return v.Tag == Null
}

// Truthy implements Scheme's strict falsity rule: everything except the
// literal #f is true, including 0, "", and the empty list.
func (v *Value) Truthy() bool {
	return !(v.Tag == Bool && !v.Bool)
}

// Binding is a single (symbol . value) pair in a Frame's binding list. It is
// a pointer so set! and letrec back-patching can mutate Value in place
// without disturbing the Frame's slice of bindings.
type Binding struct {
	Name  string
	Value *Value
}

// Frame is a single link in the lexical environment: a parent pointer (nil
// only for the global frame) plus a binding list that Define appends to and
// LookupBinding scans back-to-front, so the most recently defined entry
// shadows any earlier one in the same frame.
type Frame struct {
	Parent   *Frame
	Bindings []*Binding
}

// Lookup resolves name in f or an enclosing frame, returning an
// "Undefined symbol 'X'" error if no frame in the chain binds it.
func (f *Frame) Lookup(name string) (*Value, error) {
	b, ok := f.LookupBinding(name)
	if !ok {
		return nil, fmt.Errorf("Undefined symbol '%s'", name)
	}
	return b.Value, nil
}

// LookupBinding scans f and its ancestors for a binding named name, returning
// it (still owned by whichever frame holds it) so callers such as set! can
// mutate it in place.
func (f *Frame) LookupBinding(name string) (*Binding, bool) {
	for frame := f; frame != nil; frame = frame.Parent {
		for i := len(frame.Bindings) - 1; i >= 0; i-- {
			// Bindings are appended in insertion order; scanning from the
			// end yields the most-recently-defined entry first, matching
			// the "prepend to bindings" shadowing rule.
			if frame.Bindings[i].Name == name {
				return frame.Bindings[i], true
			}
		}
	}
	return nil, false
}

// Define appends a new binding for name in f, shadowing any existing
// binding of the same name within f (LookupBinding scans back-to-front, so
// the most recent one wins). It does not check enclosing frames.
func (f *Frame) Define(name string, v *Value) {
	f.Bindings = append(f.Bindings, &Binding{Name: name, Value: v})
}

// DefinesLocally reports whether f itself (not an ancestor) already binds
// name.
func (f *Frame) DefinesLocally(name string) bool {
	for _, b := range f.Bindings {
		if b.Name == name {
			return true
		}
	}
	return false
}
