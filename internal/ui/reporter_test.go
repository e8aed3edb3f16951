package ui_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mathiasbynens/github-default-branch/internal/ui"
)

func TestWriterReporterLineMarkers(testInstance *testing.T) {
	testCases := []struct {
		name         string
		emit         func(reporter ui.Reporter)
		expectedLine string
	}{
		{
			name:         "info_lines_carry_information_marker",
			emit:         func(reporter ui.Reporter) { reporter.Info("resolving %s", "acme/widgets") },
			expectedLine: "ℹ resolving acme/widgets\n",
		},
		{
			name:         "warning_lines_carry_warning_marker",
			emit:         func(reporter ui.Reporter) { reporter.Warning("skipping %s", "acme/widgets") },
			expectedLine: "⚠ skipping acme/widgets\n",
		},
		{
			name:         "success_lines_carry_check_marker",
			emit:         func(reporter ui.Reporter) { reporter.Success("done") },
			expectedLine: "✔ done\n",
		},
		{
			name:         "failure_lines_carry_cross_marker",
			emit:         func(reporter ui.Reporter) { reporter.Failure("aborted") },
			expectedLine: "✗ aborted\n",
		},
		{
			name:         "plain_lines_carry_no_marker",
			emit:         func(reporter ui.Reporter) { reporter.Plain("acme/widgets") },
			expectedLine: "acme/widgets\n",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			outputBuffer := &bytes.Buffer{}
			reporter := ui.NewWriterReporter(outputBuffer)

			testCase.emit(reporter)

			require.Equal(subtestInstance, testCase.expectedLine, outputBuffer.String())
		})
	}
}
