package ui

import (
	"fmt"
	"io"
	"os"
)

const (
	infoLineTemplateConstant    = "ℹ %s\n"
	warningLineTemplateConstant = "⚠ %s\n"
	successLineTemplateConstant = "✔ %s\n"
	failureLineTemplateConstant = "✗ %s\n"
	plainLineTemplateConstant   = "%s\n"
)

// Reporter emits icon-prefixed console lines describing migration progress.
type Reporter interface {
	Info(format string, arguments ...any)
	Warning(format string, arguments ...any)
	Success(format string, arguments ...any)
	Failure(format string, arguments ...any)
	Plain(format string, arguments ...any)
}

type writerReporter struct {
	writer io.Writer
}

// NewWriterReporter constructs a Reporter that writes to the provided io.Writer.
func NewWriterReporter(writer io.Writer) Reporter {
	if writer == nil || writer == io.Discard {
		writer = os.Stdout
	}
	return writerReporter{writer: writer}
}

func (reporter writerReporter) Info(format string, arguments ...any) {
	reporter.printLine(infoLineTemplateConstant, format, arguments...)
}

func (reporter writerReporter) Warning(format string, arguments ...any) {
	reporter.printLine(warningLineTemplateConstant, format, arguments...)
}

func (reporter writerReporter) Success(format string, arguments ...any) {
	reporter.printLine(successLineTemplateConstant, format, arguments...)
}

func (reporter writerReporter) Failure(format string, arguments ...any) {
	reporter.printLine(failureLineTemplateConstant, format, arguments...)
}

func (reporter writerReporter) Plain(format string, arguments ...any) {
	reporter.printLine(plainLineTemplateConstant, format, arguments...)
}

func (reporter writerReporter) printLine(lineTemplate string, format string, arguments ...any) {
	if reporter.writer == nil {
		return
	}
	fmt.Fprintf(reporter.writer, lineTemplate, fmt.Sprintf(format, arguments...))
}
