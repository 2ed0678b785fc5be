// File: pool/callsite.go
// Author: momentics <momentics@gmail.com>

package pool

import (
	"runtime"
	"strings"
)

// callerPC returns the program counter of the function skip frames above
// its caller. Resolving it to a name is deferred to funcName, which is only
// paid for when a buffer or group is actually created.
func callerPC(skip int) uintptr {
	var pcs [1]uintptr
	if runtime.Callers(skip+2, pcs[:]) == 0 {
		return 0
	}
	return pcs[0]
}

// funcName returns the package qualified function name for pc, e.g.
// "pipeline.(*decoder).run".
func funcName(pc uintptr) string {
	if pc == 0 {
		return "unknown"
	}
	frame, _ := runtime.CallersFrames([]uintptr{pc}).Next()
	name := frame.Function
	if name == "" {
		return "unknown"
	}
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// callsite names the function skip frames above its caller.
func callsite(skip int) string {
	return funcName(callerPC(skip + 1))
}
