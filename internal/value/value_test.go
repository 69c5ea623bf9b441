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

package value_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scm/goscm/internal/value"
)

func TestIsList(t *testing.T) {
	null := &value.Value{Tag: value.Null}
	one := &value.Value{Tag: value.Int, Int64: 1}

	assert.True(t, null.IsList())
	assert.True(t, (&value.Value{Tag: value.Cons, Car: one, Cdr: null}).IsList())
	assert.False(t, one.IsList())
	assert.False(t, (&value.Value{Tag: value.Cons, Car: one, Cdr: one}).IsList(), "improper list")
}

func TestTruthy(t *testing.T) {
	assert.False(t, (&value.Value{Tag: value.Bool, Bool: false}).Truthy())
	assert.True(t, (&value.Value{Tag: value.Bool, Bool: true}).Truthy())
	// only #f is false
	assert.True(t, (&value.Value{Tag: value.Int, Int64: 0}).Truthy())
	assert.True(t, (&value.Value{Tag: value.Str}).Truthy())
	assert.True(t, (&value.Value{Tag: value.Null}).Truthy())
}

func TestFrameLookupWalksParentChain(t *testing.T) {
	global := &value.Frame{}
	global.Define("x", &value.Value{Tag: value.Int, Int64: 1})
	child := &value.Frame{Parent: global}

	v, err := child.Lookup("x")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.Int64)

	_, err = child.Lookup("y")
	assert.EqualError(t, err, "Undefined symbol 'y'")
}

func TestFrameShadowing(t *testing.T) {
	global := &value.Frame{}
	global.Define("x", &value.Value{Tag: value.Int, Int64: 1})
	global.Define("x", &value.Value{Tag: value.Int, Int64: 2})

	v, err := global.Lookup("x")
	require.NoError(t, err)
	assert.Equal(t, int64(2), v.Int64, "the most recent binding wins within a frame")

	child := &value.Frame{Parent: global}
	child.Define("x", &value.Value{Tag: value.Int, Int64: 3})
	v, err = child.Lookup("x")
	require.NoError(t, err)
	assert.Equal(t, int64(3), v.Int64, "an inner frame shadows an outer one")
}

func TestDefinesLocally(t *testing.T) {
	global := &value.Frame{}
	global.Define("x", &value.Value{Tag: value.Int, Int64: 1})
	child := &value.Frame{Parent: global}

	assert.True(t, global.DefinesLocally("x"))
	assert.False(t, child.DefinesLocally("x"), "ancestor bindings are not local")
}
