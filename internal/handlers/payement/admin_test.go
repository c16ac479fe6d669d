package pa

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePageSize(t *testing.T) {
	assert.Equal(t, defaultOrdersPageSize, parsePageSize(""))
	assert.Equal(t, defaultOrdersPageSize, parsePageSize("abc"))
	assert.Equal(t, defaultOrdersPageSize, parsePageSize("0"))
	assert.Equal(t, defaultOrdersPageSize, parsePageSize("-5"))
	assert.Equal(t, 25, parsePageSize("25"))
	assert.Equal(t, maxOrdersPageSize, parsePageSize("9999"))
}

func TestDecodePageToken(t *testing.T) {
	state, err := decodePageToken("")
	require.NoError(t, err)
	assert.Nil(t, state)

	token := base64.URLEncoding.EncodeToString([]byte{0x01, 0x02, 0x03})
	state, err = decodePageToken(token)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, state)

	_, err = decodePageToken("%%%pas-du-base64%%%")
	assert.Error(t, err)
}
