package fault

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIs(t *testing.T) {
	err := New(KindData, "Required data is missing: OrderId")

	assert.True(t, errors.Is(err, ErrData))
	assert.False(t, errors.Is(err, ErrConnection))
	assert.True(t, errors.Is(fmt.Errorf("call: %w", err), ErrData))
	assert.Equal(t, "Required data is missing: OrderId", err.Error())
}

func TestWrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Wrap(KindConnection, cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrConnection)
	assert.Equal(t, KindConnection, KindOf(fmt.Errorf("outer: %w", err)))
	assert.Equal(t, KindUnknown, KindOf(cause))
}

func TestConfiguration(t *testing.T) {
	assert.NoError(t, Configuration(nil))

	err := Configuration([]string{"Api host not specified", "Username not specified"})
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Equal(t, "Api host not specified; Username not specified", err.Error())
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{KindConfiguration, "configuration"},
		{KindData, "data"},
		{KindConnection, "connection"},
		{KindSignature, "signature"},
		{KindVersion, "version"},
		{Kind(42), "unknown"},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, test.kind.String())
	}
	assert.Equal(t, "signature fault", ErrSignature.Error())
}
