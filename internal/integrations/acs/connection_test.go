package acs

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"acs-messenger/internal/config"
)

const testAccessKey = "c2VjcmV0LWtleS1mb3ItdGVzdHM=" // base64("secret-key-for-tests")

func testConnectionString(t *testing.T, endpoint string) ConnectionString {
	t.Helper()
	conn, err := ParseConnectionString(config.Secret("endpoint=" + endpoint + ";accesskey=" + testAccessKey))
	require.NoError(t, err)
	return conn
}

// ---------------------------------------------------------------------------
// ParseConnectionString
// ---------------------------------------------------------------------------

func TestParseConnectionString_Valid(t *testing.T) {
	conn := testConnectionString(t, "https://acs.example.com")
	require.Equal(t, "acs.example.com", conn.Endpoint().Host)
}

func TestParseConnectionString_CaseInsensitiveNames(t *testing.T) {
	conn, err := ParseConnectionString(config.Secret("Endpoint=https://acs.example.com/;AccessKey=" + testAccessKey))
	require.NoError(t, err)
	require.Equal(t, "acs.example.com", conn.Endpoint().Host)
}

func TestParseConnectionString_KeyWithPadding(t *testing.T) {
	// base64 values carry '='; only the first '=' separates name from value.
	conn, err := ParseConnectionString(config.Secret("endpoint=https://acs.example.com;accesskey=c2VjcmV0a2V5MQ=="))
	require.NoError(t, err)
	require.Equal(t, []byte("secretkey1"), conn.decodedKey)
}

func TestParseConnectionString_Invalid(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"missing endpoint", "accesskey=" + testAccessKey},
		{"missing accesskey", "endpoint=https://acs.example.com"},
		{"bad base64", "endpoint=https://acs.example.com;accesskey=%%%"},
		{"bad url", "endpoint=:not-a-url;accesskey=" + testAccessKey},
		{"no separator", "garbage"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseConnectionString(config.Secret(tc.raw))
			require.Error(t, err)
		})
	}
}

func TestConnectionString_StringHidesKey(t *testing.T) {
	conn := testConnectionString(t, "https://acs.example.com")
	require.NotContains(t, fmt.Sprintf("%v %s %#v", conn, conn, conn), testAccessKey)
}

// ---------------------------------------------------------------------------
// Request signing
// ---------------------------------------------------------------------------

func TestNewSignedRequest_Headers(t *testing.T) {
	conn := testConnectionString(t, "https://acs.example.com")
	u := buildEndpointURL(conn.Endpoint(), "2021-03-07", "sms")

	req, err := conn.newSignedRequest(context.Background(), http.MethodPost, u, []byte(`{"a":1}`))
	require.NoError(t, err)

	require.Equal(t, "application/json", req.Header.Get("Content-Type"))
	require.NotEmpty(t, req.Header.Get(msDateHeader))
	require.Equal(t, computeContentHash([]byte(`{"a":1}`)), req.Header.Get(msContentHashHeader))

	auth := req.Header.Get("Authorization")
	require.True(t, strings.HasPrefix(auth, "HMAC-SHA256 SignedHeaders=x-ms-date;host;x-ms-content-sha256&Signature="), auth)
}

func TestNewSignedRequest_SignatureVerifies(t *testing.T) {
	conn := testConnectionString(t, "https://acs.example.com")
	u := buildEndpointURL(conn.Endpoint(), "2023-03-31", "emails:send")
	body := []byte(`{"senderAddress":"a@b.c"}`)

	req, err := conn.newSignedRequest(context.Background(), http.MethodPost, u, body)
	require.NoError(t, err)

	// Recompute the signature the way the service would.
	key, err := base64.StdEncoding.DecodeString(testAccessKey)
	require.NoError(t, err)
	stringToSign := fmt.Sprintf("POST\n%s?%s\n%s;%s;%s",
		u.EscapedPath(), u.RawQuery,
		req.Header.Get(msDateHeader), u.Host, req.Header.Get(msContentHashHeader))
	mac := hmac.New(sha256.New, key)
	_, _ = mac.Write([]byte(stringToSign))
	want := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	require.Equal(t,
		"HMAC-SHA256 SignedHeaders=x-ms-date;host;x-ms-content-sha256&Signature="+want,
		req.Header.Get("Authorization"))
}

func TestBuildEndpointURL_SetsAPIVersion(t *testing.T) {
	conn := testConnectionString(t, "https://acs.example.com")
	u := buildEndpointURL(conn.Endpoint(), "2021-03-07", "sms")
	require.Equal(t, "/sms", u.Path)
	require.Equal(t, "2021-03-07", u.Query().Get("api-version"))
}
