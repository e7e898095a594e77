package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/JakobStaudinger/cinnabar/internal/cinnaerr"
	"github.com/JakobStaudinger/cinnabar/internal/shared/secret"
)

// VerifiedBody is a capability-style newtype: the only way to obtain one is
// through Verify, so downstream parsing can never be called on an
// unauthenticated body.
type VerifiedBody struct {
	body []byte
}

// Bytes exposes the underlying authenticated payload.
func (v VerifiedBody) Bytes() []byte {
	return v.body
}

// Verify checks the x-hub-signature-256 header against an HMAC-SHA256 of
// body computed with secret, returning a VerifiedBody on success. Every
// failure mode returns one of a fixed set of stable, short reason strings.
func Verify(headers http.Header, body []byte, secret secret.String) (VerifiedBody, error) {
	raw := headers.Values("x-hub-signature-256")
	if len(raw) == 0 || raw[0] == "" {
		return VerifiedBody{}, cinnaerr.New(cinnaerr.Authenticity, "Missing header x-hub-signature-256")
	}
	header := raw[0]

	if !isASCII(header) {
		return VerifiedBody{}, cinnaerr.New(cinnaerr.Authenticity, "Failed to parse x-hub-signature-256 header")
	}

	hexSignature, ok := strings.CutPrefix(header, "sha256=")
	if !ok {
		return VerifiedBody{}, cinnaerr.New(cinnaerr.Authenticity, "Malformed sha256 header")
	}

	expectedSignature, err := hex.DecodeString(hexSignature)
	if err != nil {
		return VerifiedBody{}, cinnaerr.New(cinnaerr.Authenticity, "Failed to parse sha256 signature")
	}

	mac := hmac.New(sha256.New, []byte(secret.Expose()))
	mac.Write(body)
	actualSignature := mac.Sum(nil)

	if !hmac.Equal(expectedSignature, actualSignature) {
		return VerifiedBody{}, cinnaerr.New(cinnaerr.Authenticity, "Failed to verify sha256 checksum")
	}

	return VerifiedBody{body: body}, nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 127 {
			return false
		}
	}
	return true
}
