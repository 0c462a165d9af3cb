package diag

import (
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

// Kind classifies an Error by the stage that raised it.
type Kind int

const (
	KindInternal Kind = iota
	KindLexical
	KindSyntax
	KindOption
	KindConfig
	KindBudget
)

func (k Kind) String() string {
	switch k {
	case KindLexical:
		return "lexical"
	case KindSyntax:
		return "syntax"
	case KindOption:
		return "option"
	case KindConfig:
		return "config"
	case KindBudget:
		return "budget"
	default:
		return "internal"
	}
}

// Error is the single error shape reported to callers.
type Error struct {
	Kind     Kind   `json:"-"`
	Code     int    `json:"errorCode"`
	Message  string `json:"message"`
	Location string `json:"location,omitempty"`
	Stack    string `json:"stack,omitempty"`

	// Offset is the rune offset of Location in the scanned input, or -1.
	Offset int `json:"-"`
}

func (e *Error) Error() string {
	if e.Location == "" {
		return fmt.Sprintf("%s error %d: %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error %d at %s: %s", e.Kind, e.Code, e.Location, e.Message)
}

// New builds an Error for code, filling the registered message template
// with args. Offset is -1 when there is no source position.
func New(kind Kind, code int, offset int, args ...any) *Error {
	e := &Error{
		Kind:    kind,
		Code:    code,
		Message: Message(code, args...),
		Offset:  offset,
		Stack:   callers(3),
	}
	if offset >= 0 {
		e.Location = strconv.Itoa(offset + 1)
	}
	return e
}

// Fail raises an Error by panicking. It is recovered by Catch at the
// public boundary.
func Fail(kind Kind, code int, offset int, args ...any) {
	panic(New(kind, code, offset, args...))
}

// Assert raises an Error when cond is false.
func Assert(cond bool, kind Kind, code int, offset int, args ...any) {
	if !cond {
		panic(New(kind, code, offset, args...))
	}
}

// Raise re-panics err as an *Error so that a nested stage can rejoin the
// outer unwinding. Foreign errors become internal errors.
func Raise(err error) {
	if err == nil {
		return
	}
	var de *Error
	if errors.As(err, &de) {
		panic(de)
	}
	panic(New(KindInternal, CodeInternal, -1, err.Error()))
}

// Catch converts a raised Error back into an ordinary return value.
// It must be deferred directly:
//
//	defer diag.Catch(&err)
//
// Runtime panics are reported as internal errors; nothing escapes.
func Catch(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	switch v := r.(type) {
	case *Error:
		*errp = v
	case error:
		*errp = New(KindInternal, CodeInternal, -1, v.Error())
	default:
		*errp = New(KindInternal, CodeInternal, -1, fmt.Sprint(v))
	}
}

// As reports err as an *Error, wrapping foreign errors as internal ones.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return New(KindInternal, CodeInternal, -1, err.Error())
}

func callers(skip int) string {
	pc := make([]uintptr, 16)
	n := runtime.Callers(skip+1, pc)
	if n == 0 {
		return ""
	}
	frames := runtime.CallersFrames(pc[:n])
	var sb strings.Builder
	for {
		f, more := frames.Next()
		if strings.HasPrefix(f.Function, "runtime.") {
			if !more {
				break
			}
			continue
		}
		fmt.Fprintf(&sb, "%s\n\t%s:%d\n", f.Function, f.File, f.Line)
		if !more {
			break
		}
	}
	return sb.String()
}
