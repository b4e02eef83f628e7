package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type line struct {
	Line string
}

func TestDecodePayload(t *testing.T) {
	got, err := DecodePayload[line](map[string]any{"Line": "me LOGIN"})
	require.NoError(t, err)
	assert.Equal(t, line{Line: "me LOGIN"}, got)

	got, err = DecodePayload[line](line{Line: "as is"})
	require.NoError(t, err)
	assert.Equal(t, "as is", got.Line)

	_, err = DecodePayload[line](nil)
	require.Error(t, err)
	_, err = DecodePayload[line]("just a string")
	require.Error(t, err)
}
