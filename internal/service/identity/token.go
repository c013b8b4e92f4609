package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
)

// serverToken builds the HS256 JWT the provider expects for server-side
// calls. The claim set is fixed ({"server": true}), so the token is computed
// once at client construction.
func serverToken(secret string) (string, error) {
	header, err := json.Marshal(map[string]string{"alg": "HS256", "typ": "JWT"})
	if err != nil {
		return "", err
	}
	claims, err := json.Marshal(map[string]bool{"server": true})
	if err != nil {
		return "", err
	}

	enc := base64.RawURLEncoding
	signingInput := enc.EncodeToString(header) + "." + enc.EncodeToString(claims)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signingInput))
	signature := enc.EncodeToString(mac.Sum(nil))

	return signingInput + "." + signature, nil
}
