//go:build go1.23

package xunsafe

import "unsafe"

// Addr is the address of a value of type T.
//
// Unlike a *T, an Addr[T] is not visible to the garbage collector: it keeps
// nothing alive, and the GC never updates it. This makes it the right shape
// for links stored inside memory the Go runtime does not manage, such as
// regions obtained directly from the host.
//
// The zero Addr plays the role of a nil pointer.
type Addr[T any] uintptr

// AddrOf returns the address of p.
func AddrOf[T any](p *T) Addr[T] {
	return Addr[T](uintptr(unsafe.Pointer(p)))
}

// AssertValid asserts that this address points to a live value of type T and
// converts it into a real pointer.
//
// The caller is responsible for the assertion actually holding; for the zero
// Addr this returns nil.
func (a Addr[T]) AssertValid() *T {
	return (*T)(unsafe.Pointer(a)) //nolint:govet // deliberate uintptr round-trip
}

// Add returns the address n elements past a, scaled by the size of T.
func (a Addr[T]) Add(n int) Addr[T] {
	return a + Addr[T](n*Size[T]())
}

// Size returns T's size in bytes.
//
// This is a convenience re-export so that Addr arithmetic does not force an
// import of the layout package on every caller.
func Size[T any]() int {
	var z T
	return int(unsafe.Sizeof(z))
}
