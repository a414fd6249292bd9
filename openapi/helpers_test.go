package openapi

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vitalvas/oasdocs/value"
)

func parseObject(t *testing.T, data string) *value.Object {
	t.Helper()

	v, err := value.Parse([]byte(data))
	require.NoError(t, err)

	obj, ok := v.(*value.Object)
	require.True(t, ok, "not an object: %s", data)
	return obj
}

func toJSON(t *testing.T, v value.Value) string {
	t.Helper()

	data, err := value.Marshal(v)
	require.NoError(t, err)
	return string(data)
}
