package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeAndFromCode_AreInverse(t *testing.T) {
	for _, e := range catalog {
		t.Run(e.code, func(t *testing.T) {
			wrapped := fmt.Errorf("layer: %w", e.err)
			assert.Equal(t, e.code, Code(wrapped))
			assert.Same(t, e.err, FromCode(e.code))
		})
	}
}

func TestCode_UnknownIsInternal(t *testing.T) {
	assert.Equal(t, "internal", Code(errors.New("boom")))
	assert.Nil(t, FromCode("no_such_code"))
}

func TestUserMessage_CodeNeverExistedMatchesExpired(t *testing.T) {
	// a consumed code and a code that never existed read the same to the user
	consumed := fmt.Errorf("mark used: %w", ErrInvalidOrExpiredCode)
	assert.Equal(t, UserMessage(ErrInvalidOrExpiredCode), UserMessage(consumed))
	assert.NotEmpty(t, UserMessage(ErrDispatchFailure))
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, "Something went wrong.", UserMessage(errors.New("pq: connection refused")))
}

func TestNormalize(t *testing.T) {
	assert.Nil(t, Normalize(nil, ErrStoreUnavailable))
	assert.Same(t, ErrDuplicateIdentity, Normalize(fmt.Errorf("x: %w", ErrDuplicateIdentity), ErrStoreUnavailable))

	raw := errors.New("dial tcp: refused")
	got := Normalize(raw, ErrStoreUnavailable)
	assert.ErrorIs(t, got, ErrStoreUnavailable)
	assert.ErrorIs(t, got, raw)
}
