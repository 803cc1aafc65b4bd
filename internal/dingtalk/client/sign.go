package client

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// Sign computes the request signature for the code exchange endpoint:
// base64(HMAC-SHA256(key=appSecret, message=timestamp)).
func Sign(timestamp, appSecret string) string {
	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write([]byte(timestamp))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
