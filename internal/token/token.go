// internal/token/token.go
//
// Signed state tokens for the stateless quiz session.
// A token is base64(json(value)) + "." + base64(hmac_sha256(json(value), secret)).
// The server keeps no copy of the state; the token is the only storage for a
// session between requests, so nothing decoded here may be trusted unless the
// MAC checks out.

package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// tokens use standard base64, so "." can never appear inside either half.
const delimiter = "."

// Sign serializes v and appends a keyed MAC over the serialized bytes.
func Sign(v any, secret []byte) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal state: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data) +
		delimiter +
		base64.StdEncoding.EncodeToString(mac(data, secret)), nil
}

// Verify checks tok against secret and, on success, unmarshals the payload
// into out and returns true.
//
// A malformed or forged token (missing half, bad base64, MAC mismatch) is an
// expected condition and returns (false, nil): the caller treats it as
// "session invalid, restart". A payload that authenticates but fails to
// unmarshal is a programming error, never a client one, and is reported as
// (false, err).
func Verify(tok string, secret []byte, out any) (bool, error) {
	dataB64, macB64, found := strings.Cut(tok, delimiter)
	if !found || dataB64 == "" || macB64 == "" {
		return false, nil
	}
	data, err := base64.StdEncoding.DecodeString(dataB64)
	if err != nil {
		return false, nil
	}
	sum, err := base64.StdEncoding.DecodeString(macB64)
	if err != nil {
		return false, nil
	}
	if !hmac.Equal(sum, mac(data, secret)) {
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("authentic token with undecodable payload: %w", err)
	}
	return true, nil
}

func mac(data, secret []byte) []byte {
	h := hmac.New(sha256.New, secret)
	h.Write(data)
	return h.Sum(nil)
}
