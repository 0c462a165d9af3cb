package mtrans

import (
	"fmt"
	"strings"

	"github.com/gnolang/mtrans/internal/parser"
)

// expandTabs replaces tab characters with spaces, considering a tab width of 8
func expandTabs(line string) string {
	var expanded strings.Builder
	column := 0
	for _, ch := range line {
		if ch == '\t' {
			spaceCount := 8 - (column % 8)
			expanded.WriteString(strings.Repeat(" ", spaceCount))
			column += spaceCount
		} else {
			expanded.WriteRune(ch)
			column++
		}
	}
	return expanded.String()
}

// FormatErrorsWithArrows renders errs against the source they came from,
// pointing at the failing position when there is one. For multi-line
// sources only the line holding that position is shown.
func FormatErrorsWithArrows(src string, errs []*Error) string {
	var builder strings.Builder
	for _, e := range errs {
		line, column, text := parser.Locate(src, e.Offset)
		builder.WriteString(fmt.Sprintf("error[%d]: %s\n", e.Code, e.Kind))
		if e.Offset >= 0 {
			builder.WriteString(fmt.Sprintf(" --> %d:%d\n", line, column))
		}
		builder.WriteString("  |\n")
		builder.WriteString(fmt.Sprintf("  | %s\n", expandTabs(text)))

		builder.WriteString("  | ")
		if e.Offset >= 0 {
			builder.WriteString(strings.Repeat(" ", calculateVisualColumn(text, column)))
		}
		builder.WriteString("^ ")
		builder.WriteString(e.Message)
		builder.WriteString("\n\n")
	}
	return builder.String()
}

// calculateVisualColumn returns the display width of line before the
// 1-based rune column.
func calculateVisualColumn(line string, column int) int {
	visualColumn := 0
	i := 1
	for _, ch := range line {
		if i >= column {
			break
		}
		if ch == '\t' {
			visualColumn += 8 - (visualColumn % 8)
		} else {
			visualColumn++
		}
		i++
	}
	return visualColumn
}
