package resources

// cell is the shared backing store behind every Ref handed out for one
// resource. The count tracks live handles including the manager's own.
type cell[T any] struct {
	value T
	refs  int32
}

// Ref is a counted handle to a stored resource. Handles are capability
// tokens: cloning one bumps the count, releasing drops it, and the manager
// reclaims the resource once its own handle is the only one left.
type Ref[T any] struct {
	cell *cell[T]
}

func newRef[T any](value T) Ref[T] {
	return Ref[T]{cell: &cell[T]{value: value, refs: 1}}
}

// Clone returns a new counted handle to the same resource.
func (r Ref[T]) Clone() Ref[T] {
	r.cell.refs++
	return r
}

// Release drops this handle. Using the handle after Release is a programmer
// error; the backing resource may be reclaimed on the next collection.
func (r Ref[T]) Release() {
	r.cell.refs--
}

// With resolves the handle for the duration of the closure only.
func (r Ref[T]) With(fn func(*T)) {
	fn(&r.cell.value)
}

// Valid reports whether the handle points at a stored resource.
func (r Ref[T]) Valid() bool {
	return r.cell != nil
}

// Equal reports whether two handles refer to the same resource.
func (r Ref[T]) Equal(other Ref[T]) bool {
	return r.cell == other.cell
}

func (r Ref[T]) count() int32 {
	return r.cell.refs
}
