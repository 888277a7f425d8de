package datamodel

import "fmt"

func (v Value) requireList(op string) error {
	if v.kind != KindList {
		return fmt.Errorf("datamodel: %s called on %s value", op, v.kind)
	}
	return nil
}

// Len returns the number of elements in a list Value.
func (v Value) Len() (int, error) {
	if err := v.requireList("Len"); err != nil {
		return 0, err
	}
	return len(v.heap.list), nil
}

// Get returns the element at index i of a list Value.
func (v Value) Get(i int) (Value, error) {
	if err := v.requireList("Get"); err != nil {
		return Value{}, err
	}
	if i < 0 || i >= len(v.heap.list) {
		return Value{}, fmt.Errorf("datamodel: Get: index %d out of range [0,%d)", i, len(v.heap.list))
	}
	return v.heap.list[i], nil
}

// Append adds elem to the end of a list Value, incrementing elem's refcount.
func (v Value) Append(elem Value) error {
	if err := v.requireList("Append"); err != nil {
		return err
	}
	elem.Ref()
	v.heap.list = append(v.heap.list, elem)
	return nil
}

// Insert inserts elem at index i of a list Value, incrementing elem's
// refcount.
func (v Value) Insert(i int, elem Value) error {
	if err := v.requireList("Insert"); err != nil {
		return err
	}
	if i < 0 || i > len(v.heap.list) {
		return fmt.Errorf("datamodel: Insert: index %d out of range [0,%d]", i, len(v.heap.list))
	}
	elem.Ref()
	v.heap.list = append(v.heap.list, Value{})
	copy(v.heap.list[i+1:], v.heap.list[i:])
	v.heap.list[i] = elem
	return nil
}

// Remove removes and returns the element at index i of a list Value,
// decrementing its refcount.
func (v Value) Remove(i int) (Value, error) {
	if err := v.requireList("Remove"); err != nil {
		return Value{}, err
	}
	if i < 0 || i >= len(v.heap.list) {
		return Value{}, fmt.Errorf("datamodel: Remove: index %d out of range [0,%d)", i, len(v.heap.list))
	}
	elem := v.heap.list[i]
	v.heap.list = append(v.heap.list[:i], v.heap.list[i+1:]...)
	elem.Unref()
	return elem, nil
}

// Pop removes and returns the last element of a list Value, decrementing its
// refcount.
func (v Value) Pop() (Value, error) {
	if err := v.requireList("Pop"); err != nil {
		return Value{}, err
	}
	n := len(v.heap.list)
	if n == 0 {
		return Value{}, fmt.Errorf("datamodel: Pop: list is empty")
	}
	return v.Remove(n - 1)
}

// ListIterator yields each element of a list Value in order via yield. If
// yield returns false, iteration stops early.
func (v Value) ListIterator(yield func(index int, elem Value) bool) error {
	if err := v.requireList("ListIterator"); err != nil {
		return err
	}
	for i, e := range v.heap.list {
		if !yield(i, e) {
			break
		}
	}
	return nil
}
