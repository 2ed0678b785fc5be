// Package alloc
// Author: momentics <momentics@gmail.com>
//
// Allocator backends for hioload-buf buffer groups.
// Heap regions come from a byte pool, mmap regions from anonymous private
// mappings and memfd regions from sealed-size shared mappings whose
// descriptor can be passed to devices or other processes.
// Platform-specific backends live in *_linux.go; other platforms get stubs
// that report ErrNotSupported.
package alloc
