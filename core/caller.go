package core

import (
	"path/filepath"
	"runtime"
)

// CallerInfo contains information about a call site.
type CallerInfo struct {
	File     string
	Line     int
	Function string
}

// Caller retrieves the source location skip frames above the caller of
// this function. The file is reduced to its base name. When the stack
// cannot be resolved, placeholder values are returned so that the three
// fields are never empty on the wire.
func Caller(skip int) CallerInfo {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return CallerInfo{File: "<unknown>", Line: 0, Function: "<unknown>"}
	}

	funcName := "<unknown>"
	if fn := runtime.FuncForPC(pc); fn != nil {
		funcName = fn.Name()
	}

	return CallerInfo{
		File:     filepath.Base(file),
		Line:     line,
		Function: funcName,
	}
}
