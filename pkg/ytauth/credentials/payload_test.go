package credentials

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalIndentedNullExpiry(t *testing.T) {
	payload := Payload{
		ClientID:     "abc",
		ClientSecret: "xyz",
		RefreshToken: "r1",
		AccessToken:  "a1",
	}

	content, err := payload.MarshalIndented()
	require.NoError(t, err)

	expected := `{
  "client_id": "abc",
  "client_secret": "xyz",
  "refresh_token": "r1",
  "access_token": "a1",
  "token_expiry": null
}
`
	assert.Equal(t, expected, string(content))
}

func TestMarshalIndentedWithExpiry(t *testing.T) {
	expiry := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	payload := Payload{ClientID: "abc", TokenExpiry: &expiry}

	content, err := payload.MarshalIndented()
	require.NoError(t, err)
	assert.Contains(t, string(content), `"token_expiry": "2026-01-02T03:04:05Z"`)
}

func TestWriteJSONFileRoundTrip(t *testing.T) {
	expiry := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	payload := Payload{
		ClientID:     "abc",
		ClientSecret: "xyz",
		RefreshToken: "r1",
		AccessToken:  "a1",
		TokenExpiry:  &expiry,
	}

	// nested path exercises parent directory creation
	path := filepath.Join(t.TempDir(), "out", "creds", "credentials.json")
	require.NoError(t, WriteJSONFile(path, payload))

	loaded, err := ReadJSONFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload.ClientID, loaded.ClientID)
	assert.Equal(t, payload.ClientSecret, loaded.ClientSecret)
	assert.Equal(t, payload.RefreshToken, loaded.RefreshToken)
	assert.Equal(t, payload.AccessToken, loaded.AccessToken)
	require.NotNil(t, loaded.TokenExpiry)
	assert.True(t, expiry.Equal(*loaded.TokenExpiry))
}

func TestWriteJSONFileOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o600))

	require.NoError(t, WriteJSONFile(path, Payload{ClientID: "abc"}))

	loaded, err := ReadJSONFile(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", loaded.ClientID)
}

func TestWriteEnvFile(t *testing.T) {
	payload := Payload{ClientID: "abc", ClientSecret: "xyz", RefreshToken: "r1"}

	path := filepath.Join(t.TempDir(), "env", "youtube.env")
	require.NoError(t, WriteEnvFile(path, payload))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	expected := "YOUTUBE_CLIENT_ID=\"abc\"\nYOUTUBE_CLIENT_SECRET=\"xyz\"\nYOUTUBE_REFRESH_TOKEN=\"r1\"\n"
	assert.Equal(t, expected, string(content))
}

func TestReadJSONFileErrors(t *testing.T) {
	_, err := ReadJSONFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read credentials file")

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{bad"), 0o600))
	_, err = ReadJSONFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse credentials file")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	payload := Payload{ClientID: "abc", ClientSecret: "xyz", RefreshToken: "r1", AccessToken: "a1"}

	require.NoError(t, PrintBanner(&buf, payload))
	out := buf.String()
	assert.Contains(t, out, "Copy these values into your environment (store securely):")
	assert.Contains(t, out, `"refresh_token": "r1"`)
	assert.Contains(t, out, "Export the YOUTUBE_CLIENT_ID, YOUTUBE_CLIENT_SECRET, and YOUTUBE_REFRESH_TOKEN env vars")
}

func TestValidate(t *testing.T) {
	require.NoError(t, Payload{ClientID: "abc", ClientSecret: "xyz"}.Validate())
	// missing refresh token is allowed
	require.NoError(t, Payload{ClientID: "abc", ClientSecret: "xyz", RefreshToken: ""}.Validate())
	require.Error(t, Payload{ClientID: "abc"}.Validate())
	require.Error(t, Payload{}.Validate())
}
