// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package orderedmap

import (
	"encoding/json"
	"fmt"
	"reflect"
)

type Map struct {
	items []MapItem
	// positions of comparable keys; other keys are found by scanning
	index map[interface{}]int
}

type MapItem struct {
	Key   interface{}
	Value interface{}
}

func NewMap() *Map {
	return &Map{index: map[interface{}]int{}}
}

func NewMapWithItems(items []MapItem) *Map {
	m := NewMap()
	for _, item := range items {
		m.Set(item.Key, item.Value)
	}
	return m
}

func (m *Map) Set(key, value interface{}) {
	if i, found := m.find(key); found {
		m.items[i].Value = value
		return
	}
	m.items = append(m.items, MapItem{key, value})
	if isComparable(key) {
		m.lazyIndex()[key] = len(m.items) - 1
	}
}

func (m *Map) Get(key interface{}) (interface{}, bool) {
	if i, found := m.find(key); found {
		return m.items[i].Value, true
	}
	return nil, false
}

func (m *Map) Delete(key interface{}) bool {
	i, found := m.find(key)
	if !found {
		return false
	}
	m.items = append(m.items[:i], m.items[i+1:]...)
	m.reindex()
	return true
}

func (m *Map) Keys() (keys []interface{}) {
	m.Iterate(func(k, _ interface{}) {
		keys = append(keys, k)
	})
	return
}

func (m *Map) Iterate(iterFunc func(k, v interface{})) {
	for _, item := range m.items {
		iterFunc(item.Key, item.Value)
	}
}

func (m *Map) IterateErr(iterFunc func(k, v interface{}) error) error {
	for _, item := range m.items {
		err := iterFunc(item.Key, item.Value)
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *Map) Len() int { return len(m.items) }

// SetPath sets value under a chain of nested maps, creating (or
// replacing non-map values with) intermediate maps as needed.
func (m *Map) SetPath(keys []string, value interface{}) error {
	if len(keys) == 0 {
		return fmt.Errorf("Expected at least one key")
	}
	curr := m
	for _, key := range keys[:len(keys)-1] {
		if len(key) == 0 {
			return fmt.Errorf("Expected key to be non-empty")
		}
		next, found := curr.Get(key)
		nextMap, isMap := next.(*Map)
		if !found || !isMap {
			nextMap = NewMap()
			curr.Set(key, nextMap)
		}
		curr = nextMap
	}
	curr.Set(keys[len(keys)-1], value)
	return nil
}

// Merge copies items of other into m. Nested maps present in both are
// merged recursively; any other value in other wins.
func (m *Map) Merge(other *Map) {
	other.Iterate(func(k, v interface{}) {
		if otherMap, ok := v.(*Map); ok {
			if existing, found := m.Get(k); found {
				if existingMap, ok := existing.(*Map); ok {
					existingMap.Merge(otherMap)
					return
				}
			}
		}
		m.Set(k, v)
	})
}

func (m *Map) find(key interface{}) (int, bool) {
	if isComparable(key) {
		i, found := m.lazyIndex()[key]
		return i, found
	}
	for i, item := range m.items {
		if reflect.DeepEqual(item.Key, key) {
			return i, true
		}
	}
	return 0, false
}

// zero value Map is usable
func (m *Map) lazyIndex() map[interface{}]int {
	if m.index == nil {
		m.index = map[interface{}]int{}
	}
	return m.index
}

func (m *Map) reindex() {
	m.index = map[interface{}]int{}
	for i, item := range m.items {
		if isComparable(item.Key) {
			m.index[item.Key] = i
		}
	}
}

func isComparable(key interface{}) bool {
	return key == nil || reflect.TypeOf(key).Comparable()
}

// Below methods disallow marshaling of Map directly;
// convert with Conversion first
var _ []json.Marshaler = []json.Marshaler{&Map{}}

func (*Map) MarshalYAML() (interface{}, error) { panic("Unexpected marshaling of *orderedmap.Map") }
func (*Map) MarshalJSON() ([]byte, error)      { panic("Unexpected marshaling of *orderedmap.Map") }
