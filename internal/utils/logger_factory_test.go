package utils_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/scrub/internal/utils"
)

const (
	loggerFactorySubtestNameTemplateConstant = "%d_%s"
	loggerTestMessageConstant                = "history scrub message"
	structuredCaseNameConstant               = "structured_format_emits_json"
	consoleCaseNameConstant                  = "console_format_emits_plain_text"
	unsupportedLevelCaseNameConstant         = "unsupported_level_returns_error"
	unsupportedFormatCaseNameConstant        = "unsupported_format_returns_error"
	unsupportedLevelValueConstant            = "loud"
	unsupportedFormatValueConstant           = "xml"
)

func TestLoggerFactoryCreateLogger(testInstance *testing.T) {
	testCases := []struct {
		name          string
		logLevel      utils.LogLevel
		logFormat     utils.LogFormat
		expectJSON    bool
		expectedError bool
	}{
		{
			name:       structuredCaseNameConstant,
			logLevel:   utils.LogLevelInfo,
			logFormat:  utils.LogFormatStructured,
			expectJSON: true,
		},
		{
			name:       consoleCaseNameConstant,
			logLevel:   utils.LogLevelInfo,
			logFormat:  utils.LogFormatConsole,
			expectJSON: false,
		},
		{
			name:          unsupportedLevelCaseNameConstant,
			logLevel:      utils.LogLevel(unsupportedLevelValueConstant),
			logFormat:     utils.LogFormatStructured,
			expectedError: true,
		},
		{
			name:          unsupportedFormatCaseNameConstant,
			logLevel:      utils.LogLevelInfo,
			logFormat:     utils.LogFormat(unsupportedFormatValueConstant),
			expectedError: true,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(loggerFactorySubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			loggerFactory := utils.NewLoggerFactory()

			if testCase.expectedError {
				createdLogger, creationError := loggerFactory.CreateLogger(testCase.logLevel, testCase.logFormat)
				require.Error(testInstance, creationError)
				require.Nil(testInstance, createdLogger)
				return
			}

			originalStandardError := os.Stderr
			pipeReader, pipeWriter, pipeError := os.Pipe()
			require.NoError(testInstance, pipeError)
			os.Stderr = pipeWriter
			defer func() {
				os.Stderr = originalStandardError
			}()

			createdLogger, creationError := loggerFactory.CreateLogger(testCase.logLevel, testCase.logFormat)
			require.NoError(testInstance, creationError)

			createdLogger.Info(loggerTestMessageConstant)
			syncError := createdLogger.Sync()
			if syncError != nil && !errors.Is(syncError, syscall.ENOTSUP) && !errors.Is(syncError, syscall.EINVAL) {
				require.NoError(testInstance, syncError)
			}

			closeError := pipeWriter.Close()
			require.NoError(testInstance, closeError)

			capturedOutput, readError := io.ReadAll(pipeReader)
			require.NoError(testInstance, readError)

			outputLine := strings.TrimSpace(string(capturedOutput))
			require.Contains(testInstance, outputLine, loggerTestMessageConstant)
			require.Equal(testInstance, testCase.expectJSON, json.Valid([]byte(outputLine)))
		})
	}
}
