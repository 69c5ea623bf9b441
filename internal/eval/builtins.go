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

// NewGlobal builds the global frame: every special-form name bound to its
// own Symbol value, plus every primitive procedure bound to a Primitive
// value wrapping it.
func NewGlobal(a *arena.Arena) *value.Frame {
	global := a.NewFrame(nil)
	for name := range specialForms {
		global.Define(name, a.NewSymbol(name))
	}
	global.Define("else", a.NewSymbol("else"))

	for name, fn := range primitives(a) {
		global.Define(name, a.NewPrimitive(name, fn))
	}
	return global
}

func primitives(a *arena.Arena) map[string]value.PrimitiveFunc {
	return map[string]value.PrimitiveFunc{
		"+":         primAdd(a),
		"*":         primMul(a),
		"-":         primSub(a),
		"/":         primDiv(a),
		"modulo":    primModulo(a),
		"=":         primNumEq(a),
		"<=":        primLe(a),
		"zero?":     primZero(a),
		"equal?":    primEqual(a),
		"eq?":       primEq(a),
		"null?":     primNullP(a),
		"pair?":     primPairP(a),
		"cons":      primCons(a),
		"car":       primCar(a),
		"cdr":       primCdr(a),
		"list":      primList(a),
		"append":    primAppend(a),
		"apply":     primApply(a),
		"error":     primError(a),
		"length":    primLength(a),
		"reverse":   primReverse(a),
		"make-null": primMakeNull(a),
	}
}

func numbers(args *value.Value, min int, who string) ([]*value.Value, error) {
	nums, err := listToSlice(args)
	if err != nil {
		return nil, fmt.Errorf("%s: malformed argument list", who)
	}
	if len(nums) < min {
		return nil, fmt.Errorf("%s: expected at least %d argument(s), got %d", who, min, len(nums))
	}
	for _, n := range nums {
		if n.Tag != value.Int && n.Tag != value.Double {
			return nil, fmt.Errorf("%s: expected a number, got %s", who, n.Tag)
		}
	}
	return nums, nil
}

func allInt(nums []*value.Value) bool {
	for _, n := range nums {
		if n.Tag != value.Int {
			return false
		}
	}
	return true
}

func asFloat(v *value.Value) float64 {
	if v.Tag == value.Int {
		return float64(v.Int64)
	}
	return v.Float64
}

func primAdd(a *arena.Arena) value.PrimitiveFunc {
	return func(args *value.Value) (*value.Value, error) {
		nums, err := numbers(args, 0, "+")
		if err != nil {
			return nil, err
		}
		if allInt(nums) {
			var sum int64
			for _, n := range nums {
				sum += n.Int64
			}
			return a.NewInt(sum), nil
		}
		var sum float64
		for _, n := range nums {
			sum += asFloat(n)
		}
		return a.NewDouble(sum), nil
	}
}

func primMul(a *arena.Arena) value.PrimitiveFunc {
	return func(args *value.Value) (*value.Value, error) {
		nums, err := numbers(args, 0, "*")
		if err != nil {
			return nil, err
		}
		if allInt(nums) {
			product := int64(1)
			for _, n := range nums {
				product *= n.Int64
			}
			return a.NewInt(product), nil
		}
		product := 1.0
		for _, n := range nums {
			product *= asFloat(n)
		}
		return a.NewDouble(product), nil
	}
}

func primSub(a *arena.Arena) value.PrimitiveFunc {
	return func(args *value.Value) (*value.Value, error) {
		nums, err := numbers(args, 1, "-")
		if err != nil {
			return nil, err
		}
		if len(nums) == 1 {
			if nums[0].Tag == value.Int {
				return a.NewInt(-nums[0].Int64), nil
			}
			return a.NewDouble(-nums[0].Float64), nil
		}
		// n-ary subtraction follows the same promotion rule as + and *: Int
		// when every argument is an Int, Double otherwise.
		if allInt(nums) {
			result := nums[0].Int64
			for _, n := range nums[1:] {
				result -= n.Int64
			}
			return a.NewInt(result), nil
		}
		result := asFloat(nums[0])
		for _, n := range nums[1:] {
			result -= asFloat(n)
		}
		return a.NewDouble(result), nil
	}
}

func primDiv(a *arena.Arena) value.PrimitiveFunc {
	return func(args *value.Value) (*value.Value, error) {
		nums, err := numbers(args, 1, "/")
		if err != nil {
			return nil, err
		}
		if len(nums) == 1 {
			if asFloat(nums[0]) == 0 {
				return nil, fmt.Errorf("/: division by zero")
			}
			return a.NewDouble(1 / asFloat(nums[0])), nil
		}
		result := asFloat(nums[0])
		for _, n := range nums[1:] {
			d := asFloat(n)
			if d == 0 {
				return nil, fmt.Errorf("/: division by zero")
			}
			result /= d
		}
		return a.NewDouble(result), nil
	}
}

func primModulo(a *arena.Arena) value.PrimitiveFunc {
	return func(args *value.Value) (*value.Value, error) {
		parts, err := listToSlice(args)
		if err != nil || len(parts) != 2 {
			return nil, fmt.Errorf("modulo: expected exactly 2 arguments")
		}
		if parts[0].Tag != value.Int || parts[1].Tag != value.Int {
			return nil, fmt.Errorf("modulo: expected integer arguments")
		}
		divisor := parts[1].Int64
		if divisor == 0 {
			return nil, fmt.Errorf("modulo: division by zero")
		}
		r := parts[0].Int64 % divisor
		if r < 0 && divisor > 0 {
			r += divisor
		}
		return a.NewInt(r), nil
	}
}

func primNumEq(a *arena.Arena) value.PrimitiveFunc {
	return func(args *value.Value) (*value.Value, error) {
		nums, err := numbers(args, 2, "=")
		if err != nil {
			return nil, err
		}
		for i := 1; i < len(nums); i++ {
			if asFloat(nums[i-1]) != asFloat(nums[i]) {
				return a.NewBool(false), nil
			}
		}
		return a.NewBool(true), nil
	}
}

func primLe(a *arena.Arena) value.PrimitiveFunc {
	return func(args *value.Value) (*value.Value, error) {
		nums, err := numbers(args, 2, "<=")
		if err != nil {
			return nil, err
		}
		for i := 1; i < len(nums); i++ {
			if asFloat(nums[i-1]) > asFloat(nums[i]) {
				return a.NewBool(false), nil
			}
		}
		return a.NewBool(true), nil
	}
}

func primZero(a *arena.Arena) value.PrimitiveFunc {
	return func(args *value.Value) (*value.Value, error) {
		nums, err := numbers(args, 1, "zero?")
		if err != nil || len(nums) != 1 {
			return nil, fmt.Errorf("zero?: expected exactly 1 argument")
		}
		return a.NewBool(asFloat(nums[0]) == 0), nil
	}
}

// structurallyEqual implements equal?'s recursive structural comparison.
func structurallyEqual(x, y *value.Value) bool {
	if x.Tag != y.Tag {
		return false
	}
	switch x.Tag {
	case value.Int:
		return x.Int64 == y.Int64
	case value.Double:
		return x.Float64 == y.Float64
	case value.Str, value.Symbol:
		return x.Text == y.Text
	case value.Bool:
		return x.Bool == y.Bool
	case value.Null, value.Void:
		return true
	case value.Cons:
		return structurallyEqual(x.Car, y.Car) && structurallyEqual(x.Cdr, y.Cdr)
	default:
		return x == y
	}
}

func primEqual(a *arena.Arena) value.PrimitiveFunc {
	return func(args *value.Value) (*value.Value, error) {
		parts, err := listToSlice(args)
		if err != nil || len(parts) != 2 {
			return nil, fmt.Errorf("equal?: expected exactly 2 arguments")
		}
		return a.NewBool(structurallyEqual(parts[0], parts[1])), nil
	}
}

// identical implements eq?: value equality on atomic scalar tags, pointer
// identity on Cons/Closure/Primitive.
func identical(x, y *value.Value) bool {
	if x.Tag != y.Tag {
		return false
	}
	switch x.Tag {
	case value.Int:
		return x.Int64 == y.Int64
	case value.Double:
		return x.Float64 == y.Float64
	case value.Str, value.Symbol:
		return x.Text == y.Text
	case value.Bool:
		return x.Bool == y.Bool
	case value.Null, value.Void:
		return true
	case value.Cons, value.Closure, value.Primitive:
		return x == y
	default:
		return x == y
	}
}

func primEq(a *arena.Arena) value.PrimitiveFunc {
	return func(args *value.Value) (*value.Value, error) {
		parts, err := listToSlice(args)
		if err != nil || len(parts) != 2 {
			return nil, fmt.Errorf("eq?: expected exactly 2 arguments")
		}
		return a.NewBool(identical(parts[0], parts[1])), nil
	}
}

func primNullP(a *arena.Arena) value.PrimitiveFunc {
	return func(args *value.Value) (*value.Value, error) {
		parts, err := listToSlice(args)
		if err != nil || len(parts) != 1 {
			return nil, fmt.Errorf("null?: expected exactly 1 argument")
		}
		return a.NewBool(parts[0].Tag == value.Null), nil
	}
}

// primPairP follows standard Scheme semantics: true for any Cons, regardless
// of what its cdr holds.
func primPairP(a *arena.Arena) value.PrimitiveFunc {
	return func(args *value.Value) (*value.Value, error) {
		parts, err := listToSlice(args)
		if err != nil || len(parts) != 1 {
			return nil, fmt.Errorf("pair?: expected exactly 1 argument")
		}
		return a.NewBool(parts[0].Tag == value.Cons), nil
	}
}

func primCons(a *arena.Arena) value.PrimitiveFunc {
	return func(args *value.Value) (*value.Value, error) {
		parts, err := listToSlice(args)
		if err != nil || len(parts) != 2 {
			return nil, fmt.Errorf("cons: expected exactly 2 arguments")
		}
		return a.NewCons(parts[0], parts[1]), nil
	}
}

func primCar(a *arena.Arena) value.PrimitiveFunc {
	return func(args *value.Value) (*value.Value, error) {
		parts, err := listToSlice(args)
		if err != nil || len(parts) != 1 {
			return nil, fmt.Errorf("car: expected exactly 1 argument")
		}
		if parts[0].Tag != value.Cons {
			return nil, fmt.Errorf("car: expected a pair")
		}
		return parts[0].Car, nil
	}
}

func primCdr(a *arena.Arena) value.PrimitiveFunc {
	return func(args *value.Value) (*value.Value, error) {
		parts, err := listToSlice(args)
		if err != nil || len(parts) != 1 {
			return nil, fmt.Errorf("cdr: expected exactly 1 argument")
		}
		if parts[0].Tag != value.Cons {
			return nil, fmt.Errorf("cdr: expected a pair")
		}
		return parts[0].Cdr, nil
	}
}

func primList(a *arena.Arena) value.PrimitiveFunc {
	return func(args *value.Value) (*value.Value, error) {
		return args, nil
	}
}

func primAppend(a *arena.Arena) value.PrimitiveFunc {
	return func(args *value.Value) (*value.Value, error) {
		lists, err := listToSlice(args)
		if err != nil {
			return nil, fmt.Errorf("append: malformed argument list")
		}
		if len(lists) == 0 {
			return a.NewNull(), nil
		}
		var elems []*value.Value
		for _, l := range lists[:len(lists)-1] {
			if !l.IsList() {
				return nil, fmt.Errorf("append: non-final argument must be a proper list")
			}
			for v := l; v.Tag == value.Cons; v = v.Cdr {
				elems = append(elems, v.Car)
			}
		}
		result := lists[len(lists)-1]
		for i := len(elems) - 1; i >= 0; i-- {
			result = a.NewCons(elems[i], result)
		}
		return result, nil
	}
}

func primApply(a *arena.Arena) value.PrimitiveFunc {
	return func(args *value.Value) (*value.Value, error) {
		parts, err := listToSlice(args)
		if err != nil || len(parts) != 2 {
			return nil, fmt.Errorf("apply: expected exactly 2 arguments")
		}
		return Apply(a, parts[0], parts[1])
	}
}

func primError(a *arena.Arena) value.PrimitiveFunc {
	return func(args *value.Value) (*value.Value, error) {
		parts, err := listToSlice(args)
		if err != nil || len(parts) != 1 || parts[0].Tag != value.Str {
			return nil, fmt.Errorf("error: expected exactly 1 string argument")
		}
		return nil, fmt.Errorf("%s", parts[0].Text)
	}
}

func primLength(a *arena.Arena) value.PrimitiveFunc {
	return func(args *value.Value) (*value.Value, error) {
		parts, err := listToSlice(args)
		if err != nil || len(parts) != 1 {
			return nil, fmt.Errorf("length: expected exactly 1 argument")
		}
		items, err := listToSlice(parts[0])
		if err != nil {
			return nil, fmt.Errorf("length: expected a proper list")
		}
		return a.NewInt(int64(len(items))), nil
	}
}

func primMakeNull(a *arena.Arena) value.PrimitiveFunc {
	return func(args *value.Value) (*value.Value, error) {
		parts, err := listToSlice(args)
		if err != nil || len(parts) != 0 {
			return nil, fmt.Errorf("make-null: expected no arguments")
		}
		return a.NewNull(), nil
	}
}

func primReverse(a *arena.Arena) value.PrimitiveFunc {
	return func(args *value.Value) (*value.Value, error) {
		parts, err := listToSlice(args)
		if err != nil || len(parts) != 1 {
			return nil, fmt.Errorf("reverse: expected exactly 1 argument")
		}
		items, err := listToSlice(parts[0])
		if err != nil {
			return nil, fmt.Errorf("reverse: expected a proper list")
		}
		result := a.NewNull()
		for _, item := range items {
			result = a.NewCons(item, result)
		}
		return result, nil
	}
}
