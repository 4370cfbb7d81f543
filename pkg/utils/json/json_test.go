package json

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestMarshalUnmarshal(t *testing.T) {
	in := sample{Name: "物业公告", Count: 3}

	data, err := Marshal(in)
	require.NoError(t, err)

	var out sample
	require.NoError(t, Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestEncoderDecoder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewEncoder(&buf).Encode(sample{Name: "维修", Count: 1}))

	var out sample
	require.NoError(t, NewDecoder(&buf).Decode(&out))
	assert.Equal(t, "维修", out.Name)
	assert.Equal(t, 1, out.Count)
}
