// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package orderedmap_test

import (
	"testing"

	"carvel.dev/tempita/pkg/orderedmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapKeepsInsertionOrder(t *testing.T) {
	m := orderedmap.NewMap()
	m.Set("b", 1)
	m.Set("a", 2)
	m.Set(3, "three")
	m.Set("b", 4)

	assert.Equal(t, []interface{}{"b", "a", 3}, m.Keys())

	val, found := m.Get("b")
	assert.True(t, found)
	assert.Equal(t, 4, val)

	assert.True(t, m.Delete("a"))
	assert.False(t, m.Delete("a"))
	assert.Equal(t, []interface{}{"b", 3}, m.Keys())

	val, found = m.Get(3)
	assert.True(t, found)
	assert.Equal(t, "three", val)
}

func TestMapNonComparableKeys(t *testing.T) {
	m := &orderedmap.Map{}
	m.Set([]interface{}{"x"}, 1)
	m.Set([]interface{}{"x"}, 2)

	require.Equal(t, 1, m.Len())
	val, found := m.Get([]interface{}{"x"})
	assert.True(t, found)
	assert.Equal(t, 2, val)
}

func TestMapSetPathAndMerge(t *testing.T) {
	m := orderedmap.NewMap()
	require.NoError(t, m.SetPath([]string{"db", "host"}, "localhost"))
	require.NoError(t, m.SetPath([]string{"db", "port"}, 5432))
	require.NoError(t, m.SetPath([]string{"name"}, "app"))

	other := orderedmap.NewMap()
	require.NoError(t, other.SetPath([]string{"db", "port"}, 6543))
	require.NoError(t, other.SetPath([]string{"debug"}, true))

	m.Merge(other)

	result, err := orderedmap.Conversion{Object: m}.AsUnorderedStringMaps()
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"db":    map[string]interface{}{"host": "localhost", "port": 6543},
		"name":  "app",
		"debug": true,
	}, result)

	assert.Error(t, m.SetPath(nil, 1))
	assert.Error(t, m.SetPath([]string{"", "a"}, 1))
}

func TestFromUnorderedMapsDoesNotModifyInput(t *testing.T) {
	inputA := map[string]interface{}{
		"key": []interface{}{map[string]interface{}{"nestedKey": "nestedValue"}},
	}
	inputB := map[string]interface{}{
		"key": []interface{}{map[string]interface{}{"nestedKey": "nestedValue"}},
	}

	result := orderedmap.Conversion{Object: inputA}.FromUnorderedMaps()

	assert.Equal(t, inputB, inputA)

	m, ok := result.(*orderedmap.Map)
	require.True(t, ok)
	list, _ := m.Get("key")
	_, isMap := list.([]interface{})[0].(*orderedmap.Map)
	assert.True(t, isMap)
}

func TestFromUnorderedMapsSortsKeys(t *testing.T) {
	result := orderedmap.Conversion{Object: map[string]interface{}{"c": 1, "a": 2, "b": 3}}.FromUnorderedMaps()
	assert.Equal(t, []interface{}{"a", "b", "c"}, result.(*orderedmap.Map).Keys())
}

func TestAsUnorderedStringMapsRejectsNonStringKeys(t *testing.T) {
	m := orderedmap.NewMap()
	m.Set(1, "one")

	_, err := orderedmap.Conversion{Object: m}.AsUnorderedStringMaps()
	require.EqualError(t, err, "Expected map key to be a string, but was int")
}

func TestYAMLKeepsKeyOrder(t *testing.T) {
	val, err := orderedmap.FromYAML([]byte("zeta: 1\nalpha:\n  - b\n  - nested: true\nbeta: ~\n"))
	require.NoError(t, err)

	m, ok := val.(*orderedmap.Map)
	require.True(t, ok)
	assert.Equal(t, []interface{}{"zeta", "alpha", "beta"}, m.Keys())

	zeta, _ := m.Get("zeta")
	assert.Equal(t, int64(1), zeta)

	out, err := orderedmap.ToYAML(m, 2)
	require.NoError(t, err)
	assert.Equal(t, "zeta: 1\nalpha:\n  - b\n  - nested: true\nbeta: null\n", string(out))
}

func TestYAMLEmptyDocument(t *testing.T) {
	val, err := orderedmap.FromYAML([]byte(""))
	require.NoError(t, err)
	assert.Nil(t, val)
}
