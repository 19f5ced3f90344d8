package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetErrorMessage(t *testing.T) {
	assert.Equal(t, "Invalid data", GetErrorMessage(1001))
	assert.Equal(t, "At least one course is required", GetErrorMessage(ErrLastCourse.Code))
	assert.Equal(t, "Unknown error", GetErrorMessage(42))
	assert.EqualError(t, ErrAdviceInFlight, ErrAdviceInFlight.Message)
}
