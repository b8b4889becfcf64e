package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebamiro/trustly/fault"
)

const successBody = `{
	"version": "1.1",
	"result": {
		"signature": "R9+hjuMqbsH0Ku",
		"method": "Refund",
		"data": {"orderid": "1187741486", "result": "1"},
		"uuid": "258a2184-2842-b485-25ca-293525152425"
	}
}`

const errorBody = `{
	"version": "1.1",
	"error": {
		"name": "JSONRPCError",
		"code": 620,
		"message": "ERROR_UNKNOWN",
		"error": {
			"signature": "PNKRBvMNwXL",
			"uuid": "258a2184-2842-b485-25ca-293525152425",
			"method": "Refund",
			"data": {"code": 620, "message": "ERROR_UNKNOWN"}
		}
	}
}`

func TestParseResponse(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, err := ParseResponse(200, "OK", []byte(successBody))
		require.NoError(t, err)

		assert.True(t, r.IsSuccess())
		assert.False(t, r.IsError())
		assert.Equal(t, 200, r.Status())
		assert.Equal(t, "OK", r.Reason())
		assert.Equal(t, "Refund", r.Method())
		assert.Equal(t, "258a2184-2842-b485-25ca-293525152425", r.UUID())
		assert.Equal(t, "R9+hjuMqbsH0Ku", r.Signature())
		assert.Equal(t, "1187741486", r.DataAt("orderid").Text())
		assert.True(t, r.ErrorCode().IsNull())
		assert.Equal(t, "", r.ErrorMessage())
	})

	t.Run("Error", func(t *testing.T) {
		r, err := ParseResponse(200, "OK", []byte(errorBody))
		require.NoError(t, err)

		assert.False(t, r.IsSuccess())
		assert.True(t, r.IsError())
		assert.Equal(t, "620", r.ErrorCode().Text())
		assert.Equal(t, "ERROR_UNKNOWN", r.ErrorMessage())
		assert.Equal(t, "PNKRBvMNwXL", r.Signature())
		assert.Equal(t, "Refund", r.Method())
		assert.Equal(t, "ERROR_UNKNOWN", r.DataAt("message").Text())
	})

	t.Run("Neither result nor error", func(t *testing.T) {
		_, err := ParseResponse(200, "OK", []byte(`{"version":"1.1","other":{"x":1}}`))
		require.Error(t, err)

		assert.ErrorIs(t, err, fault.ErrData)
		assert.Equal(t, `No result or error in response {"other":{"x":1},"version":"1.1"}`, err.Error())
	})

	t.Run("Error without inner error branch", func(t *testing.T) {
		_, err := ParseResponse(200, "OK", []byte(`{"version":"1.1","error":{"code":1}}`))
		assert.ErrorIs(t, err, fault.ErrData)
	})

	t.Run("Unsupported version", func(t *testing.T) {
		for _, version := range []string{`"1.0"`, `"2.0"`, `1.1`, `null`} {
			body := `{"version":` + version + `,"result":{"uuid":"u"}}`
			_, err := ParseResponse(200, "OK", []byte(body))
			assert.ErrorIs(t, err, fault.ErrVersion, version)
		}
	})

	t.Run("Malformed body", func(t *testing.T) {
		_, err := ParseResponse(200, "OK", []byte(`<html>`))
		assert.ErrorIs(t, err, fault.ErrData)
	})
}
