package voice

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// ValidateSignature checks X-Twilio-Signature: base64 HMAC-SHA1 of the
// public URL followed by the sorted POST parameters, keyed by the account
// auth token. It parses the form as a side effect.
func ValidateSignature(r *http.Request, authToken, publicURL string) bool {
	signature := r.Header.Get("X-Twilio-Signature")
	if signature == "" || authToken == "" {
		return false
	}
	if err := r.ParseForm(); err != nil {
		return false
	}
	expected := ComputeSignature(authToken, publicURL, r.PostForm)
	return hmac.Equal([]byte(signature), []byte(expected))
}

// ComputeSignature returns the signature Twilio sends for a request to
// publicURL with params.
func ComputeSignature(authToken, publicURL string, params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var payload strings.Builder
	payload.WriteString(publicURL)
	for _, key := range keys {
		for _, value := range params[key] {
			payload.WriteString(key)
			payload.WriteString(value)
		}
	}

	h := hmac.New(sha1.New, []byte(authToken))
	h.Write([]byte(payload.String()))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
