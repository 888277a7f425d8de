package datamodel

import "fmt"

// orderedMap is a string-keyed map that preserves insertion order for
// iteration while allowing O(1) lookup, matching spec.md §3 "Map preserves
// insertion order for iteration". Canonical codec ordering is not applied by
// this type: the codecs emit maps through a sorted copy of the keys.
type orderedMap struct {
	keys []string
	vals []Value
	idx  map[string]int
}

func newOrderedMap() *orderedMap {
	return &orderedMap{idx: make(map[string]int)}
}

func (m *orderedMap) get(key string) (Value, bool) {
	i, ok := m.idx[key]
	if !ok {
		return Value{}, false
	}
	return m.vals[i], true
}

// set inserts or overwrites key, taking a ref on v and unref'ing any prior
// value, per spec.md §4.1.
func (m *orderedMap) set(key string, v Value) {
	if i, ok := m.idx[key]; ok {
		old := m.vals[i]
		old.Unref()
		v.Ref()
		m.vals[i] = v
		return
	}
	v.Ref()
	m.idx[key] = len(m.keys)
	m.keys = append(m.keys, key)
	m.vals = append(m.vals, v)
}

func (m *orderedMap) delete(key string) bool {
	i, ok := m.idx[key]
	if !ok {
		return false
	}
	old := m.vals[i]
	old.Unref()
	m.keys = append(m.keys[:i], m.keys[i+1:]...)
	m.vals = append(m.vals[:i], m.vals[i+1:]...)
	delete(m.idx, key)
	for k, j := range m.idx {
		if j > i {
			m.idx[k] = j - 1
		}
	}
	return true
}

func (m *orderedMap) each(fn func(key string, v Value)) {
	for i, k := range m.keys {
		fn(k, m.vals[i])
	}
}

// sort reorders entries in place by the given less function, operating on
// keys only. It is not required to be stable.
func (m *orderedMap) sort(less func(a, b string) bool) {
	// Simple insertion sort paired across both slices; maps are typically
	// small enough that this is not a hot spot, and it keeps keys/vals/idx
	// trivially in sync.
	n := len(m.keys)
	for i := 1; i < n; i++ {
		for j := i; j > 0 && less(m.keys[j], m.keys[j-1]); j-- {
			m.keys[j], m.keys[j-1] = m.keys[j-1], m.keys[j]
			m.vals[j], m.vals[j-1] = m.vals[j-1], m.vals[j]
		}
	}
	for i, k := range m.keys {
		m.idx[k] = i
	}
}

func (v Value) requireMap(op string) error {
	if v.kind != KindMap {
		return fmt.Errorf("datamodel: %s called on %s value", op, v.kind)
	}
	return nil
}

// MapLen returns the number of entries in a map Value.
func (v Value) MapLen() (int, error) {
	if err := v.requireMap("MapLen"); err != nil {
		return 0, err
	}
	return len(v.heap.mp.keys), nil
}

// MapGet looks up key in a map Value.
func (v Value) MapGet(key string) (Value, bool, error) {
	if err := v.requireMap("MapGet"); err != nil {
		return Value{}, false, err
	}
	val, ok := v.heap.mp.get(key)
	return val, ok, nil
}

// MapSet inserts or overwrites key in a map Value, per spec.md §4.1.
func (v Value) MapSet(key string, val Value) error {
	if err := v.requireMap("MapSet"); err != nil {
		return err
	}
	v.heap.mp.set(key, val)
	return nil
}

// MapDelete removes key from a map Value, reporting whether it was present.
func (v Value) MapDelete(key string) (bool, error) {
	if err := v.requireMap("MapDelete"); err != nil {
		return false, err
	}
	return v.heap.mp.delete(key), nil
}

// MapIterator yields each (key, value) pair of a map Value in insertion
// order via yield. If yield returns false, iteration stops early.
func (v Value) MapIterator(yield func(key string, val Value) bool) error {
	if err := v.requireMap("MapIterator"); err != nil {
		return err
	}
	for i, k := range v.heap.mp.keys {
		if !yield(k, v.heap.mp.vals[i]) {
			break
		}
	}
	return nil
}

// MapSort reorders a map Value's entries in place by the given key
// comparator. The dagcbor and dagjson encoders do not call it; they emit
// through a sorted copy of MapKeys and leave the map's order unchanged.
func (v Value) MapSort(less func(a, b string) bool) error {
	if err := v.requireMap("MapSort"); err != nil {
		return err
	}
	v.heap.mp.sort(less)
	return nil
}

// MapKeys returns a copy of the map's keys in current iteration order.
// Useful for codecs that prefer to compute a sorted projection (spec.md §5)
// rather than mutate the source map.
func (v Value) MapKeys() ([]string, error) {
	if err := v.requireMap("MapKeys"); err != nil {
		return nil, err
	}
	out := make([]string, len(v.heap.mp.keys))
	copy(out, v.heap.mp.keys)
	return out, nil
}
