package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dealgraph/dealgraph/pkg/errors"
)

func TestNotFoundError(t *testing.T) {
	err := errors.NewNotFoundError("entity", "msft")

	assert.EqualError(t, err, "entity with ID msft not found")
	assert.True(t, errors.IsNotFound(err))
	assert.True(t, stderrors.Is(err, errors.ErrNotFound))
	assert.False(t, errors.IsValidationError(err))
}

func TestValidationError(t *testing.T) {
	err := errors.NewValidationError("fuzzy_match_threshold", 1.5, "must be in [0, 1]")

	assert.EqualError(t, err, "validation failed for field fuzzy_match_threshold: must be in [0, 1]")
	assert.True(t, errors.IsValidationError(err))
	assert.False(t, errors.IsNotFound(err))

	bare := &errors.ValidationError{Message: "self-pair"}
	assert.EqualError(t, bare, "validation failed: self-pair")
}

func TestParseError(t *testing.T) {
	err := errors.NewParseError("deal_value", "$banana", "no currency amount found")

	assert.EqualError(t, err, `parse error for deal_value ("$banana"): no currency amount found`)
	assert.True(t, errors.IsUnparsed(err))
	assert.False(t, errors.IsNotFound(err))

	var parseErr *errors.ParseError
	assert.True(t, stderrors.As(err, &parseErr))
	assert.Equal(t, "$banana", parseErr.Raw)
}

func TestConfigErrorUnwrap(t *testing.T) {
	cause := errors.New("yaml: line 3: mapping values are not allowed")
	err := errors.NewConfigError("reliability table", "failed to parse", cause)

	assert.EqualError(t, err, "configuration error in reliability table: failed to parse")
	assert.True(t, stderrors.Is(err, cause))
}

func TestIOErrorUnwrap(t *testing.T) {
	cause := errors.New("database is locked")
	err := errors.NewIOError("write", "dealgraph.db", cause)

	assert.EqualError(t, err, "IO error during write of dealgraph.db: database is locked")
	assert.True(t, stderrors.Is(err, cause))
}

func TestWrapIO(t *testing.T) {
	assert.NoError(t, errors.WrapIO("read", "events.json", nil))

	cause := errors.New("permission denied")
	wrapped := errors.WrapIO("read", "events.json", cause)
	assert.True(t, stderrors.Is(wrapped, cause))

	var ioErr *errors.IOError
	assert.True(t, stderrors.As(wrapped, &ioErr))
	assert.Equal(t, "read", ioErr.Operation)
}
