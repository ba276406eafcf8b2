package quota

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemaining(t *testing.T) {
	assert.True(t, Remaining(true, 0).Unlimited)
	assert.True(t, Remaining(true, 1000).Unlimited)

	assert.Equal(t, 15, Remaining(false, 0).Plans)
	assert.Equal(t, 5, Remaining(false, 10).Plans)
	assert.Equal(t, 1, Remaining(false, 14).Plans)
	assert.Equal(t, 0, Remaining(false, 15).Plans)
	assert.Equal(t, 0, Remaining(false, 99).Plans)
}

func TestLimitReached(t *testing.T) {
	assert.False(t, LimitReached(false, 0))
	assert.False(t, LimitReached(false, 14))
	assert.True(t, LimitReached(false, 15))
	assert.True(t, LimitReached(false, 16))
	assert.False(t, LimitReached(true, 15))
	assert.False(t, LimitReached(true, 1000))
}

func TestAllowanceJSON(t *testing.T) {
	b, err := json.Marshal(Remaining(true, 3))
	require.NoError(t, err)
	assert.Equal(t, `"unlimited"`, string(b))

	b, err = json.Marshal(Remaining(false, 10))
	require.NoError(t, err)
	assert.Equal(t, `5`, string(b))
}
