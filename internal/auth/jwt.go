package auth

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

// Payload decodes the (unverified) payload of a JWT. ok is false for
// opaque tokens.
func Payload(token string) (payload string, ok bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", false
	}
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return "", false
	}
	return string(b), true
}

func jwtExpiry(token string) *time.Time {
	p, ok := Payload(token)
	if !ok {
		return nil
	}
	var claims struct {
		Exp int64 `json:"exp"`
	}
	if json.Unmarshal([]byte(p), &claims) != nil || claims.Exp == 0 {
		return nil
	}
	t := time.Unix(claims.Exp, 0)
	return &t
}
