package googleDriveApi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsExpired(t *testing.T) {
	cutoff := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	expired, err := isExpired("2024-05-31T23:59:59Z", cutoff)
	require.NoError(t, err)
	assert.True(t, expired)

	expired, err = isExpired("2024-06-01T00:00:01.000Z", cutoff)
	require.NoError(t, err)
	assert.False(t, expired)

	_, err = isExpired("yesterday", cutoff)
	assert.Error(t, err)
}

func TestMimeTypeOf(t *testing.T) {
	assert.Equal(t, xlsxMimeType, mimeTypeOf("portfolio_1.xlsx"))
}
