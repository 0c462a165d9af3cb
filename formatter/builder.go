// Package formatter renders translation errors against the expression
// that raised them.
package formatter

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/fatih/color"

	"github.com/gnolang/mtrans/internal/diag"
	"github.com/gnolang/mtrans/internal/parser"
)

const tabWidth = 8

var (
	errorStyle   = color.New(color.FgRed, color.Bold)
	kindStyle    = color.New(color.FgYellow, color.Bold)
	fileStyle    = color.New(color.FgCyan, color.Bold)
	lineStyle    = color.New(color.FgHiBlue, color.Bold)
	messageStyle = color.New(color.FgRed, color.Bold)
	noteStyle    = color.New(color.FgGreen, color.Bold)
)

// errorFormatter supplies the text template for one kind of error.
type errorFormatter interface {
	ErrorTemplate() string
}

// getErrorFormatter picks the formatter for kind. Errors without a
// dedicated formatter render with GeneralErrorFormatter.
func getErrorFormatter(kind diag.Kind) errorFormatter {
	switch kind {
	case diag.KindLexical, diag.KindSyntax:
		return &SourceErrorFormatter{}
	case diag.KindBudget:
		return &BudgetErrorFormatter{}
	default:
		return &GeneralErrorFormatter{}
	}
}

// Expression locates one translated expression.
type Expression struct {
	Filename string
	Line     int
	Source   string
}

// GenerateFormattedErrors renders every error raised by expr.
func GenerateFormattedErrors(expr Expression, errs []*diag.Error) string {
	var builder strings.Builder
	for _, e := range errs {
		builder.WriteString(buildError(expr, e, getErrorFormatter(e.Kind)))
	}
	return builder.String()
}

/***** Error Formatter Builder *****/

type ErrorData struct {
	Kind            string
	Code            int
	Filename        string
	Line            int
	Column          int
	HasColumn       bool
	MaxLineNumWidth int
	Padding         string
	Source          string
	Message         string
	Note            string
}

func buildError(expr Expression, e *diag.Error, formatter errorFormatter) string {
	line := expr.Line
	if line < 1 {
		line = 1
	}
	at, column, source := parser.Locate(expr.Source, e.Offset)
	line += at - 1
	maxLineNumWidth := len(fmt.Sprintf("%d", line))

	data := ErrorData{
		Kind:            e.Kind.String(),
		Code:            e.Code,
		Filename:        expr.Filename,
		Line:            line,
		Column:          column,
		HasColumn:       e.Offset >= 0,
		MaxLineNumWidth: maxLineNumWidth,
		Padding:         strings.Repeat(" ", maxLineNumWidth+1),
		Source:          source,
		Message:         e.Message,
	}

	funcMap := template.FuncMap{
		"header":              header,
		"snippet":             snippet,
		"underlineAndMessage": underlineAndMessage,
		"message":             message,
		"note":                note,
	}

	tmpl := template.Must(template.New("error").Funcs(funcMap).Parse(formatter.ErrorTemplate()))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Error formatting error: %v", err)
	}
	return buf.String()
}

// utils functions used in the text templates

func header(kind string, code int, maxLineNumWidth int, filename string, line int, column int, hasColumn bool) string {
	endString := errorStyle.Sprintf("error[%d]: ", code)
	endString += kindStyle.Sprintf("%s\n", kind)

	if filename == "" {
		filename = "<expr>"
	}
	endString += lineStyle.Sprintf("%s--> ", strings.Repeat(" ", maxLineNumWidth))
	if hasColumn {
		endString += fileStyle.Sprintf("%s:%d:%d\n", filename, line, column)
	} else {
		endString += fileStyle.Sprintf("%s:%d\n", filename, line)
	}
	return endString
}

func snippet(source string, line int, maxLineNumWidth int, padding string) string {
	endString := lineStyle.Sprintf("%s|\n", padding)
	endString += lineStyle.Sprintf("%*d | ", maxLineNumWidth, line)
	endString += fmt.Sprintf("%s\n", expandTabs(source))
	return endString
}

func underlineAndMessage(msg string, padding string, source string, column int) string {
	endString := lineStyle.Sprintf("%s| ", padding)
	endString += strings.Repeat(" ", calculateVisualColumn(source, column))
	endString += messageStyle.Sprint("^\n")
	endString += lineStyle.Sprintf("%s= ", padding)
	endString += messageStyle.Sprintf("%s\n", msg)
	return endString
}

func message(msg string, padding string) string {
	return lineStyle.Sprintf("%s= ", padding) + messageStyle.Sprintf("%s\n", msg)
}

func note(text string) string {
	if text == "" {
		return ""
	}
	return noteStyle.Sprint("Note: ") + lineStyle.Sprintf("%s\n", text)
}

// expandTabs replaces tabs with spaces up to the next tab stop.
func expandTabs(line string) string {
	var expanded strings.Builder
	column := 0
	for _, ch := range line {
		if ch == '\t' {
			spaceCount := tabWidth - (column % tabWidth)
			expanded.WriteString(strings.Repeat(" ", spaceCount))
			column += spaceCount
		} else {
			expanded.WriteRune(ch)
			column++
		}
	}
	return expanded.String()
}

// calculateVisualColumn returns the display width of line before the
// 1-based rune column, taking tabs into account.
func calculateVisualColumn(line string, column int) int {
	if column < 1 {
		return 0
	}
	visualColumn := 0
	i := 1
	for _, ch := range line {
		if i == column {
			break
		}
		if ch == '\t' {
			visualColumn += tabWidth - (visualColumn % tabWidth)
		} else {
			visualColumn++
		}
		i++
	}
	return visualColumn
}
