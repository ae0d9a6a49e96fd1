// internal/common/errors/errors_test.go
package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertToBPMNError(t *testing.T) {
	stdErr := NewCatalogQueryFailedError(fmt.Errorf("connection reset"))

	bpmnErr := ConvertToBPMNError(stdErr)

	assert.Equal(t, string(ErrCodeCatalogQueryFailed), bpmnErr.Code)
	assert.True(t, bpmnErr.Retryable)
	assert.Equal(t, 2, bpmnErr.Retries)
	assert.Contains(t, bpmnErr.ToErrorVariables(), "errorCode")
	assert.Contains(t, bpmnErr.ToErrorVariables(), "timestamp")
}

func TestGetRetryCount(t *testing.T) {
	tests := []struct {
		code    ErrorCode
		retries int
	}{
		{ErrCodeProfileFetchFailed, 2},
		{ErrCodeCatalogQueryFailed, 2},
		{ErrCodeCatalogTimeout, 1},
		// Provider failures already fell back; retrying the job would not help.
		{ErrCodeProviderTimeout, 0},
		{ErrCodeProviderMalformed, 0},
		{ErrCodeInvalidLimit, 0},
		{ErrCodeInvalidActivity, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.retries, GetRetryCount(tt.code))
		})
	}
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "input", GetErrorCategory(ErrCodeInvalidLimit))
	assert.Equal(t, "provider", GetErrorCategory(ErrCodeProviderMalformed))
	assert.Equal(t, "store", GetErrorCategory(ErrCodeCatalogTimeout))
	assert.Equal(t, "internal", GetErrorCategory("SOMETHING_ELSE"))
}

func TestAsStandardError(t *testing.T) {
	se, ok := AsStandardError(NewInvalidLimitError(-1))
	assert.True(t, ok)
	assert.Equal(t, ErrCodeInvalidLimit, se.Code)
	assert.False(t, se.Retryable)

	_, ok = AsStandardError(fmt.Errorf("plain"))
	assert.False(t, ok)
}
