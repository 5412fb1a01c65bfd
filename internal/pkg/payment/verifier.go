package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// VerifyIPNSecret compares the secret delivered in the IPN request header
// against the configured secret. Both must be non-empty; the compare is
// constant time.
func VerifyIPNSecret(headerValue, configuredSecret string) bool {
	got := strings.TrimSpace(headerValue)
	want := strings.TrimSpace(configuredSecret)
	if got == "" || want == "" {
		return false
	}
	if len(got) != len(want) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// VerifyWebhookSignature checks a card gateway signature header of the form
// "t=<unix>,v1=<hex>" against an HMAC-SHA256 over "<t>.<payload>". The
// signature covers the raw body bytes; callers must not re-serialize the
// payload before verifying. A non-zero tolerance additionally bounds the age
// of the signed timestamp.
func VerifyWebhookSignature(payload []byte, signatureHeader, signingSecret string, tolerance time.Duration, now time.Time) bool {
	secret := strings.TrimSpace(signingSecret)
	if secret == "" {
		return false
	}

	timestamp, signatures := parseSignatureHeader(signatureHeader)
	if timestamp == "" || len(signatures) == 0 {
		return false
	}

	if tolerance > 0 {
		ts, err := strconv.ParseInt(timestamp, 10, 64)
		if err != nil {
			return false
		}
		age := now.Sub(time.Unix(ts, 0))
		if age < -tolerance || age > tolerance {
			return false
		}
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := mac.Sum(nil)

	for _, sig := range signatures {
		decoded, err := hex.DecodeString(strings.ToLower(sig))
		if err != nil {
			continue
		}
		if hmac.Equal(expected, decoded) {
			return true
		}
	}
	return false
}

// parseSignatureHeader splits "t=...,v1=...,v1=..." into the timestamp and
// candidate signatures. Unknown schemes are skipped.
func parseSignatureHeader(header string) (string, []string) {
	timestamp := ""
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			timestamp = v
		case "v1":
			if v != "" {
				signatures = append(signatures, v)
			}
		}
	}
	return timestamp, signatures
}
