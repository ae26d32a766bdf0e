package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCropTypes_ValueScan(t *testing.T) {
	v, err := CropTypes{"maize", "beans"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["maize","beans"]`, v)

	var got CropTypes
	require.NoError(t, got.Scan([]byte(`["maize","beans"]`)))
	assert.Equal(t, CropTypes{"maize", "beans"}, got)
}

func TestCropTypes_NilIsNull(t *testing.T) {
	v, err := CropTypes(nil).Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	got := CropTypes{"x"}
	require.NoError(t, got.Scan(nil))
	assert.Nil(t, got)
}

func TestCropTypes_ScanRejectsGarbage(t *testing.T) {
	var got CropTypes
	require.Error(t, got.Scan("not json"))
	require.Error(t, got.Scan(42))
}

func TestUser_DecodesServerPayload(t *testing.T) {
	raw := `{
		"id": "u1", "email": "a@b.com", "name": "A",
		"farm_size": 2.5, "crop_types": ["coffee"],
		"is_verified": true, "created_at": "2024-01-01T00:00:00Z"
	}`

	var u User
	require.NoError(t, json.Unmarshal([]byte(raw), &u))
	assert.Equal(t, "u1", u.ID)
	require.NotNil(t, u.FarmSize)
	assert.InDelta(t, 2.5, *u.FarmSize, 1e-9)
	assert.Equal(t, CropTypes{"coffee"}, u.CropTypes)
	assert.True(t, u.IsVerified)
	assert.Nil(t, u.Username)
}

func TestCredential_HasSession(t *testing.T) {
	assert.False(t, Credential{}.HasSession())
	assert.False(t, Credential{IsLoggedIn: true}.HasSession())
	assert.False(t, Credential{SessionToken: "t"}.HasSession())
	assert.True(t, Credential{IsLoggedIn: true, SessionToken: "t"}.HasSession())
}
