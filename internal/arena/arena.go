// Package arena implements the "result container for static decode"
// described in spec.md §4.4: a static decode call may allocate nested heap
// data and then fail partway, so the decoded value and its allocations are
// handed back together, and releasing the container releases everything it
// transitively owns.
//
// This is not a bump allocator; it is grounded directly on datamodel's own
// reference-counted heap nodes (datamodel/value.go), since that is the
// allocation mechanism the schema package's dynamic-decode step already
// produces. An Arena simply tracks the root Values it is responsible for and
// unrefs them on Release, which (per datamodel.Value.Unref) recursively
// unrefs every list/map child down to zero.
package arena

import "github.com/distribution/dagcodec/datamodel"

// Arena owns a set of datamodel.Value roots allocated during one static
// decode call.
type Arena struct {
	owned []datamodel.Value
}

// New returns an empty Arena.
func New() *Arena {
	return &Arena{}
}

// Track registers v as owned by the arena and returns it unchanged, to allow
// call sites like `root := a.Track(decodeDynamic(...))`.
func (a *Arena) Track(v datamodel.Value) datamodel.Value {
	a.owned = append(a.owned, v)
	return v
}

// Release unrefs every Value the arena owns. It is safe to call once; a
// second call is a no-op since the owned list is cleared after release.
func (a *Arena) Release() {
	for _, v := range a.owned {
		v.Unref()
	}
	a.owned = nil
}
