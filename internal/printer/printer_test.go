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

package printer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-scm/goscm/internal/arena"
	"github.com/go-scm/goscm/internal/printer"
	"github.com/go-scm/goscm/internal/value"
)

func TestSprint_EvalResultDisplay(t *testing.T) {
	a := arena.New()

	assert.Equal(t, "42", printer.Sprint(a.NewInt(42)))
	assert.Equal(t, "-7", printer.Sprint(a.NewInt(-7)))
	assert.Equal(t, "3.140000", printer.Sprint(a.NewDouble(3.14)))
	assert.Equal(t, "3.000000", printer.Sprint(a.NewDouble(3)))
	assert.Equal(t, "hello", printer.Sprint(a.NewStr("hello")))
	assert.Equal(t, "sym", printer.Sprint(a.NewSymbol("sym")))
	assert.Equal(t, "#t", printer.Sprint(a.NewBool(true)))
	assert.Equal(t, "#f", printer.Sprint(a.NewBool(false)))
	assert.Equal(t, "()", printer.Sprint(a.NewNull()))
	assert.Equal(t, "", printer.Sprint(a.NewVoid()))
}

func TestSprint_Procedures(t *testing.T) {
	a := arena.New()
	prim := a.NewPrimitive("car", func(args *value.Value) (*value.Value, error) { return args, nil })
	assert.Equal(t, "#procedure", printer.Sprint(prim))

	clo := a.NewClosure(a.NewNull(), a.NewNull(), nil)
	assert.Equal(t, "#procedure", printer.Sprint(clo))
}

func TestSprint_Lists(t *testing.T) {
	a := arena.New()
	list := a.List(a.NewInt(1), a.NewInt(2), a.NewInt(3))
	assert.Equal(t, "(1 2 3)", printer.Sprint(list))

	improper := a.NewCons(a.NewInt(1), a.NewCons(a.NewInt(2), a.NewInt(3)))
	assert.Equal(t, "(1 2 . 3)", printer.Sprint(improper))
}

func TestSprintQuoted_StringsAreQuotedAndEscaped(t *testing.T) {
	a := arena.New()
	assert.Equal(t, `"hello"`, printer.SprintQuoted(a.NewStr("hello")))
	assert.Equal(t, `"a\"b\\c"`, printer.SprintQuoted(a.NewStr(`a"b\c`)))

	list := a.List(a.NewStr("x"), a.NewSymbol("y"))
	assert.Equal(t, `("x" y)`, printer.SprintQuoted(list))
}
