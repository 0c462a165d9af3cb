package diag

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Lexical errors.
const (
	CodeInvalidChar        = 1001
	CodeMisplacedSeparator = 1002
	CodeUnterminated       = 1003
	CodeInvalidNumber      = 1004
)

// Syntax errors.
const (
	CodeExpected           = 1101
	CodeAdjacentNumbers    = 1102
	CodeExtraInput         = 1103
	CodeMismatchedBrackets = 1104
	CodeUnknownEnvironment = 1105
	CodeMissingOperand     = 1106
)

// Option errors.
const (
	CodeUnknownOption = 2001
	CodeInvalidOption = 2002
)

// Configuration errors.
const (
	CodeMalformedRule    = 3001
	CodeUnknownType      = 3002
	CodeUnknownKey       = 3003
	CodeConflictingFlag  = 3004
	CodeUnknownFlag      = 3005
	CodeMalformedType    = 3006
	CodeDirectiveFailed  = 3007
	CodeUnknownDirective = 3008
)

// Budget errors.
const (
	CodeStuck    = 4001
	CodeDeadline = 4002
)

// Internal errors.
const (
	CodeInternal       = 9001
	CodeNoCategory     = 9002
	CodeStackUnderflow = 9003
)

// firstUserCode is the lowest code available to Register.
const firstUserCode = 10000

var (
	mu       sync.RWMutex
	messages = map[int]string{
		CodeInvalidChar:        "invalid character %1",
		CodeMisplacedSeparator: "misplaced thousands separator",
		CodeUnterminated:       "unterminated %1",
		CodeInvalidNumber:      "invalid number %1",

		CodeExpected:           "expected %1, found %2",
		CodeAdjacentNumbers:    "expecting an operator between numbers",
		CodeExtraInput:         "unexpected %1 after expression",
		CodeMismatchedBrackets: "mismatched brackets %1 and %2",
		CodeUnknownEnvironment: "unknown environment %1",
		CodeMissingOperand:     "missing operand before %1",

		CodeUnknownOption: "unknown option %1",
		CodeInvalidOption: "invalid value for option %1: %2",

		CodeMalformedRule:    "malformed rule %1: %2",
		CodeUnknownType:      "unknown type %1",
		CodeUnknownKey:       "unknown template key %1",
		CodeConflictingFlag:  "conflicting context flag %1",
		CodeUnknownFlag:      "unknown context flag %1",
		CodeMalformedType:    "malformed type %1: %2",
		CodeDirectiveFailed:  "directive %1 failed: %2",
		CodeUnknownDirective: "unknown directive %1",

		CodeStuck:    "stuck in loop",
		CodeDeadline: "translation deadline exceeded",

		CodeInternal:       "internal error: %1",
		CodeNoCategory:     "no category for operator %1",
		CodeStackUnderflow: "environment stack underflow",
	}
)

// Register adds a message template for an embedder-defined code.
// Codes below 10000 are reserved.
func Register(code int, template string) error {
	if code < firstUserCode {
		return fmt.Errorf("error code %d is reserved", code)
	}
	mu.Lock()
	defer mu.Unlock()
	if _, ok := messages[code]; ok {
		return fmt.Errorf("error code %d already registered", code)
	}
	messages[code] = template
	return nil
}

// Message renders the template registered for code. Each %N is replaced by
// the N-th argument; missing arguments render as empty.
func Message(code int, args ...any) string {
	mu.RLock()
	tmpl, ok := messages[code]
	mu.RUnlock()
	if !ok {
		return fmt.Sprintf("error %d", code)
	}

	var sb strings.Builder
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		if c != '%' || i+1 >= len(tmpl) || tmpl[i+1] < '1' || tmpl[i+1] > '9' {
			sb.WriteByte(c)
			continue
		}
		n, _ := strconv.Atoi(tmpl[i+1 : i+2])
		if n <= len(args) {
			fmt.Fprint(&sb, args[n-1])
		}
		i++
	}
	return sb.String()
}
