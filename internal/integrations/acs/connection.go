// Package acs is a client for the Azure Communication Services email and SMS
// REST endpoints, authenticated with the HMAC-SHA256 scheme derived from an
// ACS connection string.
package acs

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"acs-messenger/internal/config"
)

// ConnectionString is the parsed form of an ACS connection string
// ("endpoint=https://...;accesskey=<base64>"). The decoded access key is kept
// private so the credential cannot leak through formatting.
type ConnectionString struct {
	endpoint   *url.URL
	decodedKey []byte
}

// ParseConnectionString splits and validates a raw connection string.
// Property names are matched case-insensitively; the access key must be
// valid base64.
func ParseConnectionString(raw config.Secret) (ConnectionString, error) {
	var endpoint, accessKey string
	for _, part := range strings.Split(raw.Reveal(), ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, found := strings.Cut(part, "=")
		if !found {
			return ConnectionString{}, errors.New("acs: connection string segment is not name=value")
		}
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "endpoint":
			endpoint = strings.TrimSpace(value)
		case "accesskey":
			accessKey = strings.TrimSpace(value)
		}
	}
	if endpoint == "" {
		return ConnectionString{}, errors.New("acs: connection string is missing endpoint")
	}
	if accessKey == "" {
		return ConnectionString{}, errors.New("acs: connection string is missing accesskey")
	}

	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ConnectionString{}, fmt.Errorf("acs: connection string endpoint is not a valid URL")
	}

	key, err := decodeAccessKey(accessKey)
	if err != nil {
		return ConnectionString{}, err
	}
	return ConnectionString{endpoint: u, decodedKey: key}, nil
}

// Endpoint returns a copy of the parsed service endpoint.
func (cs ConnectionString) Endpoint() *url.URL {
	u := *cs.endpoint
	return &u
}

func (cs ConnectionString) String() string {
	if cs.endpoint == nil {
		return "acs.ConnectionString{}"
	}
	return "acs.ConnectionString{" + cs.endpoint.Host + "}"
}

func (cs ConnectionString) GoString() string { return cs.String() }
