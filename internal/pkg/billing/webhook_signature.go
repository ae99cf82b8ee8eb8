package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// SignatureTolerance bounds how far a webhook timestamp may drift from the
// local clock in either direction before the payload is rejected as a
// possible replay.
const SignatureTolerance = 300 * time.Second

// VerifyStripeWebhookSignature authenticates a raw Stripe webhook payload
// against the Stripe-Signature header. The header carries comma-separated
// key=value pairs; a timestamp under "t" and an HMAC-SHA256 hex digest under
// "v1" must both be present. The digest is computed over "{t}.{payload}".
func VerifyStripeWebhookSignature(payload []byte, signatureHeader, secret string, now time.Time) bool {
	sig := strings.TrimSpace(signatureHeader)
	if sig == "" || secret == "" {
		return false
	}

	var timestamp, digest string
	for _, part := range strings.Split(sig, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || value == "" {
			continue
		}
		switch key {
		case "t":
			timestamp = value
		case "v1":
			digest = value
		}
	}
	if timestamp == "" || digest == "" {
		return false
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}
	skew := now.Unix() - ts
	if skew < 0 {
		skew = -skew
	}
	if skew > int64(SignatureTolerance/time.Second) {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	computed := hex.EncodeToString(mac.Sum(nil))

	// hmac.Equal compares the full digest without early exit; only the
	// length mismatch short-circuits.
	if len(computed) != len(digest) {
		return false
	}
	return hmac.Equal([]byte(computed), []byte(digest))
}
