// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package starlarkeval

import (
	"fmt"

	"carvel.dev/tempita/pkg/orderedmap"
	"github.com/k14s/starlark-go/starlark"
	"github.com/k14s/starlark-go/starlarkstruct"
)

type StarlarkValueToGoValueConversion interface {
	AsGoValue() (interface{}, error)
}

// StarlarkValue converts Starlark values back to plain Go data. Dicts
// become *orderedmap.Map so key order survives the round trip.
type StarlarkValue struct {
	val starlark.Value
}

func NewStarlarkValue(val starlark.Value) StarlarkValue {
	return StarlarkValue{val}
}

func (e StarlarkValue) AsGoValue() (interface{}, error) {
	return e.asInterface(e.val)
}

func (e StarlarkValue) AsString() (string, error) {
	if typedVal, ok := e.val.(starlark.String); ok {
		return string(typedVal), nil
	}
	return "", fmt.Errorf("expected starlark.String, but was %s", e.typeName())
}

func (e StarlarkValue) AsBool() (bool, error) {
	if typedVal, ok := e.val.(starlark.Bool); ok {
		return bool(typedVal), nil
	}
	return false, fmt.Errorf("expected starlark.Bool, but was %s", e.typeName())
}

func (e StarlarkValue) AsInt64() (int64, error) {
	if typedVal, ok := e.val.(starlark.Int); ok {
		i1, ok := typedVal.Int64()
		if ok {
			return i1, nil
		}
		return 0, fmt.Errorf("expected int64 value")
	}
	return 0, fmt.Errorf("expected starlark.Int, but was %s", e.typeName())
}

func (e StarlarkValue) typeName() string {
	if e.val == nil {
		return "nil"
	}
	return e.val.Type()
}

func (e StarlarkValue) asInterface(val starlark.Value) (interface{}, error) {
	if obj, ok := val.(StarlarkValueToGoValueConversion); ok {
		return obj.AsGoValue()
	}

	switch typedVal := val.(type) {
	case nil, starlark.NoneType:
		return nil, nil

	case starlark.Bool:
		return bool(typedVal), nil

	case starlark.String:
		return string(typedVal), nil

	case starlark.Int:
		i1, ok := typedVal.Int64()
		if ok {
			return i1, nil
		}
		i2, ok := typedVal.Uint64()
		if ok {
			return i2, nil
		}
		return nil, fmt.Errorf("integer %s is too large", typedVal)

	case starlark.Float:
		return float64(typedVal), nil

	case *starlark.Dict:
		return e.dictAsInterface(typedVal)

	case *starlark.List:
		return e.iterableAsInterface(typedVal)

	case starlark.Tuple:
		return e.iterableAsInterface(typedVal)

	case *starlark.Set:
		return e.iterableAsInterface(typedVal)

	case *starlarkstruct.Struct:
		return e.attrsAsInterface(typedVal)

	case *starlarkstruct.Module:
		return e.attrsAsInterface(typedVal)

	default:
		return nil, fmt.Errorf("unknown type %s for conversion to go value", val.Type())
	}
}

func (e StarlarkValue) dictAsInterface(val *starlark.Dict) (interface{}, error) {
	result := orderedmap.NewMap()
	for _, item := range val.Items() {
		if item.Len() != 2 {
			return nil, fmt.Errorf("dict item is not KV")
		}
		k, err := e.asInterface(item.Index(0))
		if err != nil {
			return nil, err
		}
		v, err := e.asInterface(item.Index(1))
		if err != nil {
			return nil, err
		}
		result.Set(k, v)
	}
	return result, nil
}

func (e StarlarkValue) attrsAsInterface(val starlark.HasAttrs) (interface{}, error) {
	result := orderedmap.NewMap()
	for _, key := range val.AttrNames() {
		attr, err := val.Attr(key)
		if err != nil {
			return nil, err
		}
		v, err := e.asInterface(attr)
		if err != nil {
			return nil, err
		}
		result.Set(key, v)
	}
	return result, nil
}

func (e StarlarkValue) iterableAsInterface(iterable starlark.Iterable) (interface{}, error) {
	iter := iterable.Iterate()
	defer iter.Done()

	result := []interface{}{}
	var x starlark.Value
	for iter.Next(&x) {
		v, err := e.asInterface(x)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, nil
}
