//go:build !hardened

package zmalloc

import "unsafe"

// The baseline build tolerates caller bugs the way the C contract does:
// freeing a foreign pointer, or freeing twice, is silently ignored. Build
// with the hardened tag to abort on them instead.

func registerPtr(unsafe.Pointer) {}
func forgetPtr(unsafe.Pointer)   {}
func badPointer(unsafe.Pointer)  {}
