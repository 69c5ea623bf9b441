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

// Package arena implements the process-wide allocator and mark-sweep
// lifecycle manager for interpreter values.
//
// Every Value and Frame the interpreter creates is constructed through an
// Arena method, which registers it in the arena's active set. Between
// top-level forms, Sweep walks the set of roots (the remaining program tree
// plus the global frame), marks everything transitively reachable from them,
// and drops anything else from the active set so it becomes eligible for the
// host runtime's own garbage collector. This mirrors the registry-of-all-
// allocations design of a mark-sweep collector keyed on a flat registry,
// re-expressed with Go's map-based Set instead of a hand-rolled linked list.
package arena

import (
	"github.com/go-scm/goscm/internal/collections"
	"github.com/go-scm/goscm/internal/value"
)

// Stats summarizes the outcome of the most recent Sweep, exposed so callers
// (and tests) can observe reclamation behavior without inspecting internals.
type Stats struct {
	LiveValues  int
	LiveFrames  int
	FreedValues int
	FreedFrames int
}

// Arena is the process-wide registry of allocated Values and Frames.
type Arena struct {
	values collections.Set[*value.Value]
	frames collections.Set[*value.Frame]
	last   Stats
}

// New returns an empty Arena with two empty registry maps, which grow as
// its New* methods allocate Values and Frames.
func New() *Arena {
	return &Arena{values: make(collections.Set[*value.Value]), frames: make(collections.Set[*value.Frame])}
}

func (a *Arena) register(v *value.Value) *value.Value {
	a.values.Add(v)
	return v
}

// NewInt allocates an Int value.
func (a *Arena) NewInt(n int64) *value.Value { return a.register(&value.Value{Tag: value.Int, Int64: n}) }

// NewDouble allocates a Double value.
func (a *Arena) NewDouble(d float64) *value.Value {
	return a.register(&value.Value{Tag: value.Double, Float64: d})
}

// NewStr allocates a Str value.
func (a *Arena) NewStr(s string) *value.Value { return a.register(&value.Value{Tag: value.Str, Text: s}) }

// NewSymbol allocates a Symbol value.
func (a *Arena) NewSymbol(s string) *value.Value {
	return a.register(&value.Value{Tag: value.Symbol, Text: s})
}

// NewBool allocates a Bool value.
func (a *Arena) NewBool(b bool) *value.Value { return a.register(&value.Value{Tag: value.Bool, Bool: b}) }

// NewNull allocates a Null (empty list) value.
func (a *Arena) NewNull() *value.Value { return a.register(&value.Value{Tag: value.Null}) }

// NewVoid allocates a Void value.
func (a *Arena) NewVoid() *value.Value { return a.register(&value.Value{Tag: value.Void}) }

// NewCons allocates a Cons pair.
func (a *Arena) NewCons(car, cdr *value.Value) *value.Value {
	return a.register(&value.Value{Tag: value.Cons, Car: car, Cdr: cdr})
}

// NewClosure allocates a Closure value capturing env.
func (a *Arena) NewClosure(params, body *value.Value, env *value.Frame) *value.Value {
	return a.register(&value.Value{Tag: value.Closure, Clo: &value.ClosureValue{Params: params, Body: body, Env: env}})
}

// NewPrimitive allocates a Primitive value wrapping fn.
func (a *Arena) NewPrimitive(name string, fn value.PrimitiveFunc) *value.Value {
	return a.register(&value.Value{Tag: value.Primitive, Prim: &value.PrimitiveValue{Name: name, Fn: fn}})
}

// NewFrame allocates a child Frame of parent (nil for the global frame).
func (a *Arena) NewFrame(parent *value.Frame) *value.Frame {
	f := &value.Frame{Parent: parent}
	a.frames.Add(f)
	return f
}

// List builds a proper list from elems, allocating the spine conses.
func (a *Arena) List(elems ...*value.Value) *value.Value {
	result := a.NewNull()
	for i := len(elems) - 1; i >= 0; i-- {
		result = a.NewCons(elems[i], result)
	}
	return result
}

// Stats returns the outcome of the most recent Sweep (or a zero Stats before
// the first Sweep).
func (a *Arena) Stats() Stats { return a.last }

// Sweep runs one mark-sweep pass, keeping only the Values and Frames
// reachable from roots (typically the remaining top-level forms) and from
// global (the global frame, always a root). Anything else is dropped from
// the arena's active set, making it eligible for collection by the host
// runtime's garbage collector.
func (a *Arena) Sweep(global *value.Frame, roots ...*value.Value) Stats {
	markedValues := make(collections.Set[*value.Value])
	markedFrames := make(collections.Set[*value.Frame])

	var markValue func(v *value.Value)
	var markFrame func(f *value.Frame)

	markValue = func(v *value.Value) {
		if v == nil || markedValues.Contains(v) {
			return
		}
		markedValues.Add(v)
		switch v.Tag {
		case value.Cons:
			markValue(v.Car)
			markValue(v.Cdr)
		case value.Closure:
			markValue(v.Clo.Params)
			markValue(v.Clo.Body)
			markFrame(v.Clo.Env)
		}
	}
	markFrame = func(f *value.Frame) {
		if f == nil || markedFrames.Contains(f) {
			return
		}
		markedFrames.Add(f)
		for _, b := range f.Bindings {
			markValue(b.Value)
		}
		markFrame(f.Parent)
	}

	for _, root := range roots {
		markValue(root)
	}
	markFrame(global)

	stats := Stats{LiveValues: len(markedValues), LiveFrames: len(markedFrames)}
	for v := range a.values {
		if !markedValues.Contains(v) {
			delete(a.values, v)
			stats.FreedValues++
		}
	}
	for f := range a.frames {
		if !markedFrames.Contains(f) {
			delete(a.frames, f)
			stats.FreedFrames++
		}
	}
	a.last = stats
	return stats
}

// Terminate frees all registered allocations. It is the last thing a driver
// calls before exiting after a fatal error, and at the normal end of a
// batch run.
func (a *Arena) Terminate() {
	a.values = make(collections.Set[*value.Value])
	a.frames = make(collections.Set[*value.Frame])
}
