package cmperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMalformedIsSentinel(t *testing.T) {
	err := Malformed("missing %s", "[Content_Types].xml")
	assert.True(t, errors.Is(err, ErrMalformedPackage))
	assert.False(t, errors.Is(err, ErrConfigurationError))

	kind, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, MalformedPackage, kind)
}

func TestWrappedKindSurvives(t *testing.T) {
	inner := Serialization("writing zip: %v", fmt.Errorf("disk full"))
	wrapped := fmt.Errorf("save failed: %w", inner)

	assert.True(t, errors.Is(wrapped, ErrSerializationError))
	kind, ok := KindOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, SerializationError, kind)
}

func TestKindOfNonCompareError(t *testing.T) {
	_, ok := KindOf(fmt.Errorf("plain error"))
	assert.False(t, ok)
}
