// Package signature checks that a webhook body was sent by someone holding
// the shared secret.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
)

var ErrUnauthorized = errors.New("bad signature")

// Headers are checked in order, the first non-empty one is used.
var Headers = []string{"X-Signature", "X-Sign"}

type Verifier interface {
	Verify(body []byte, signature string) error
}

// NewVerifier returns an HMAC verifier when a secret is configured and a
// verifier that accepts everything otherwise.
func NewVerifier(secret string) Verifier {
	if secret == "" {
		return Noop{}
	}
	return &HMAC{secret: []byte(secret)}
}

type Noop struct{}

func (Noop) Verify([]byte, string) error {
	return nil
}

type HMAC struct {
	secret []byte
}

func (v *HMAC) Sign(body []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (v *HMAC) Verify(body []byte, signature string) error {
	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil || len(got) == 0 {
		return ErrUnauthorized
	}
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return ErrUnauthorized
	}
	return nil
}

func FromRequest(r *http.Request) string {
	for _, h := range Headers {
		if v := r.Header.Get(h); v != "" {
			return v
		}
	}
	return ""
}
