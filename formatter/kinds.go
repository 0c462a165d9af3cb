package formatter

// SourceErrorFormatter points at the offending column of the expression.
type SourceErrorFormatter struct{}

func (f *SourceErrorFormatter) ErrorTemplate() string {
	return `{{header .Kind .Code .MaxLineNumWidth .Filename .Line .Column .HasColumn -}}
{{snippet .Source .Line .MaxLineNumWidth .Padding -}}
{{if .HasColumn}}{{underlineAndMessage .Message .Padding .Source .Column}}{{else}}{{message .Message .Padding}}{{end}}
`
}

// BudgetErrorFormatter adds a hint on how to raise the limit.
type BudgetErrorFormatter struct{}

func (f *BudgetErrorFormatter) ErrorTemplate() string {
	return `{{header .Kind .Code .MaxLineNumWidth .Filename .Line .Column .HasColumn -}}
{{snippet .Source .Line .MaxLineNumWidth .Padding -}}
{{message .Message .Padding -}}
{{note "raise the maxSteps option or the --timeout flag"}}
`
}

// GeneralErrorFormatter is used for option, config and internal errors,
// which have no position in the expression.
type GeneralErrorFormatter struct{}

func (f *GeneralErrorFormatter) ErrorTemplate() string {
	return `{{header .Kind .Code .MaxLineNumWidth .Filename .Line .Column .HasColumn -}}
{{message .Message .Padding}}
`
}
