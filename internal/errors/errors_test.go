package errors

import (
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsInnerCode(t *testing.T) {
	base := InvalidInput("bad column")
	err := Wrap(base, "select role")

	assert.Equal(t, CodeInvalidInput, GetCode(err))
	assert.Equal(t, "select role: bad column", err.Error())
	assert.True(t, Is(err, base))
}

func TestWrapPlainError(t *testing.T) {
	err := Wrapf(io.EOF, "read %s", "table")
	assert.Equal(t, CodeInternalError, GetCode(err))
	assert.True(t, Is(err, io.EOF))
	assert.Nil(t, Wrap(nil, "x"))
}

func TestGetCodeThroughFmtWrap(t *testing.T) {
	err := fmt.Errorf("outer: %w", ExternalServiceError("cdn", io.ErrUnexpectedEOF))
	assert.Equal(t, CodeExternalService, GetCode(err))
	assert.Equal(t, "UNKNOWN", GetCode(io.EOF))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeNotFound, io.EOF)
	assert.Equal(t, CodeNotFound, GetCode(err))
	assert.Nil(t, WithCode(CodeNotFound, nil))
}
