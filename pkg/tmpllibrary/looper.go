// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package tmpllibrary

import (
	"fmt"
	"strings"

	"carvel.dev/tempita/pkg/starlarkeval"
	"github.com/k14s/starlark-go/starlark"
)

type looperModule struct{}

// Looper turns a sequence into (loop, item) pairs so that templates can
// write {{for loop, item in looper(seq)}} and ask loop about position.
func (b looperModule) Looper(thread *starlark.Thread, f *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if args.Len() != 1 || len(kwargs) != 0 {
		return starlark.None, fmt.Errorf("expected exactly one argument")
	}

	items, err := looperItems(args.Index(0))
	if err != nil {
		return starlark.None, err
	}

	var result []starlark.Value
	for i, item := range items {
		result = append(result, starlark.Tuple{&LoopPos{items: items, index: i}, item})
	}
	return starlark.NewList(result), nil
}

func looperItems(val starlark.Value) ([]starlark.Value, error) {
	if str, ok := val.(starlark.String); ok {
		var result []starlark.Value
		for _, ch := range string(str) {
			result = append(result, starlark.String(string(ch)))
		}
		return result, nil
	}

	iterable, ok := val.(starlark.Iterable)
	if !ok {
		return nil, fmt.Errorf("expected iterable, but was %s", val.Type())
	}

	iter := iterable.Iterate()
	defer iter.Done()

	var result []starlark.Value
	var x starlark.Value
	for iter.Next(&x) {
		result = append(result, x)
	}
	return result, nil
}

// LoopPos describes one position within a looped sequence.
type LoopPos struct {
	items []starlark.Value
	index int
}

var _ starlark.HasAttrs = &LoopPos{}

var loopPosAttrs = []string{
	"even", "first", "first_group", "index", "item", "last",
	"last_group", "length", "next", "number", "odd", "previous",
}

func (p *LoopPos) String() string {
	return fmt.Sprintf("<loop pos=%d at %s>", p.index, p.item().String())
}
func (p *LoopPos) Type() string          { return "loop_pos" }
func (p *LoopPos) Freeze()               {}
func (p *LoopPos) Truth() starlark.Bool  { return true }
func (p *LoopPos) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: loop_pos") }
func (p *LoopPos) AttrNames() []string   { return loopPosAttrs }

func (p *LoopPos) Attr(name string) (starlark.Value, error) {
	switch name {
	case "index":
		return starlark.MakeInt(p.index), nil
	case "number":
		return starlark.MakeInt(p.index + 1), nil
	case "item":
		return p.item(), nil
	case "length":
		return starlark.MakeInt(len(p.items)), nil
	case "first":
		return starlark.Bool(p.index == 0), nil
	case "last":
		return starlark.Bool(p.index == len(p.items)-1), nil
	case "odd":
		return starlark.Bool((p.index+1)%2 == 1), nil
	case "even":
		return starlark.Bool((p.index+1)%2 == 0), nil
	case "next":
		if p.index+1 >= len(p.items) {
			return starlark.None, nil
		}
		return p.items[p.index+1], nil
	case "previous":
		if p.index == 0 {
			return starlark.None, nil
		}
		return p.items[p.index-1], nil
	case "first_group":
		return starlark.NewBuiltin("first_group", starlarkeval.ErrWrapper(p.firstGroup)), nil
	case "last_group":
		return starlark.NewBuiltin("last_group", starlarkeval.ErrWrapper(p.lastGroup)), nil
	}
	return nil, nil
}

func (p *LoopPos) item() starlark.Value { return p.items[p.index] }

// firstGroup is true when the item starts a new run of equal group
// keys, i.e. it is first or its key differs from the previous item's.
func (p *LoopPos) firstGroup(thread *starlark.Thread, f *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	getter, err := groupGetterArg(args, kwargs)
	if err != nil {
		return starlark.None, err
	}
	if p.index == 0 {
		return starlark.True, nil
	}
	diff, err := p.groupDiffers(thread, getter, p.items[p.index-1])
	return starlark.Bool(diff), err
}

func (p *LoopPos) lastGroup(thread *starlark.Thread, f *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	getter, err := groupGetterArg(args, kwargs)
	if err != nil {
		return starlark.None, err
	}
	if p.index == len(p.items)-1 {
		return starlark.True, nil
	}
	diff, err := p.groupDiffers(thread, getter, p.items[p.index+1])
	return starlark.Bool(diff), err
}

func groupGetterArg(args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if len(kwargs) != 0 {
		return nil, fmt.Errorf("unexpected keyword arguments")
	}
	switch args.Len() {
	case 0:
		return starlark.None, nil
	case 1:
		return args.Index(0), nil
	default:
		return nil, fmt.Errorf("expected at most one argument")
	}
}

func (p *LoopPos) groupDiffers(thread *starlark.Thread, getter, other starlark.Value) (bool, error) {
	current, err := groupKey(thread, getter, p.item())
	if err != nil {
		return false, err
	}
	otherKey, err := groupKey(thread, getter, other)
	if err != nil {
		return false, err
	}
	equal, err := starlark.Equal(current, otherKey)
	if err != nil {
		return false, err
	}
	return !equal, nil
}

// groupKey supports four getter forms: None compares items themselves,
// ".name" reads (and calls, if callable) an attribute, a callable is
// applied to the item, and anything else indexes into the item.
func groupKey(thread *starlark.Thread, getter, item starlark.Value) (starlark.Value, error) {
	if getter == starlark.None {
		return item, nil
	}

	if str, ok := getter.(starlark.String); ok && strings.HasPrefix(string(str), ".") {
		attrName := strings.TrimPrefix(string(str), ".")
		hasAttrs, ok := item.(starlark.HasAttrs)
		if !ok {
			return nil, fmt.Errorf("%s value has no attribute '%s'", item.Type(), attrName)
		}
		val, err := hasAttrs.Attr(attrName)
		if err != nil {
			return nil, err
		}
		if val == nil {
			return nil, fmt.Errorf("%s value has no attribute '%s'", item.Type(), attrName)
		}
		if callable, ok := val.(starlark.Callable); ok {
			return starlark.Call(thread, callable, nil, nil)
		}
		return val, nil
	}

	if callable, ok := getter.(starlark.Callable); ok {
		return starlark.Call(thread, callable, starlark.Tuple{item}, nil)
	}

	switch typedItem := item.(type) {
	case starlark.Mapping:
		val, found, err := typedItem.Get(getter)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("key %s not in %s", getter.String(), item.Type())
		}
		return val, nil

	case starlark.Indexable:
		idx, err := starlark.AsInt32(getter)
		if err != nil {
			return nil, fmt.Errorf("%s index: %s", item.Type(), err)
		}
		if idx < 0 {
			idx += typedItem.Len()
		}
		if idx < 0 || idx >= typedItem.Len() {
			return nil, fmt.Errorf("%s index %d out of range", item.Type(), idx)
		}
		return typedItem.Index(idx), nil

	default:
		return nil, fmt.Errorf("%s value cannot be grouped by %s", item.Type(), getter.String())
	}
}
