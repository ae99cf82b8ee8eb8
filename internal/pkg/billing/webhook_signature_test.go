package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"
)

const testWebhookSecret = "whsec_test_secret"

func signPayload(t *testing.T, payload []byte, timestamp int64, secret string) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", timestamp, payload)
	return fmt.Sprintf("t=%d,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifyStripeWebhookSignature(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	payload := []byte(`{"id":"evt_1","type":"customer.subscription.updated"}`)

	header := signPayload(t, payload, now.Unix(), testWebhookSecret)
	if !VerifyStripeWebhookSignature(payload, header, testWebhookSecret, now) {
		t.Fatalf("expected valid signature to verify")
	}

	if VerifyStripeWebhookSignature([]byte(`{"id":"evt_2"}`), header, testWebhookSecret, now) {
		t.Fatalf("expected signature over different payload to fail")
	}
	if VerifyStripeWebhookSignature(payload, header, "whsec_other", now) {
		t.Fatalf("expected signature with wrong secret to fail")
	}
	if VerifyStripeWebhookSignature(payload, "", testWebhookSecret, now) {
		t.Fatalf("expected empty header to fail")
	}
	if VerifyStripeWebhookSignature(payload, header, "", now) {
		t.Fatalf("expected empty secret to fail")
	}
}

func TestVerifyStripeWebhookSignatureTolerance(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	payload := []byte(`{"id":"evt_1"}`)

	tests := []struct {
		name   string
		offset time.Duration
		want   bool
	}{
		{name: "exactly 300s old", offset: -300 * time.Second, want: true},
		{name: "301s old", offset: -301 * time.Second, want: false},
		{name: "exactly 300s in the future", offset: 300 * time.Second, want: true},
		{name: "301s in the future", offset: 301 * time.Second, want: false},
	}

	for _, tt := range tests {
		header := signPayload(t, payload, now.Add(tt.offset).Unix(), testWebhookSecret)
		if got := VerifyStripeWebhookSignature(payload, header, testWebhookSecret, now); got != tt.want {
			t.Fatalf("%s: verify = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestVerifyStripeWebhookSignatureMalformedHeader(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	payload := []byte(`{"id":"evt_1"}`)
	valid := signPayload(t, payload, now.Unix(), testWebhookSecret)

	headers := []string{
		"t=,v1=abc",
		fmt.Sprintf("t=%d", now.Unix()),
		"v1=deadbeef",
		"t=notanumber,v1=deadbeef",
		"garbage",
	}
	for _, header := range headers {
		if VerifyStripeWebhookSignature(payload, header, testWebhookSecret, now) {
			t.Fatalf("expected header %q to fail verification", header)
		}
	}

	// Single flipped digest character must fail even with equal length.
	flipped := []byte(valid)
	last := flipped[len(flipped)-1]
	if last == '0' {
		flipped[len(flipped)-1] = '1'
	} else {
		flipped[len(flipped)-1] = '0'
	}
	if VerifyStripeWebhookSignature(payload, string(flipped), testWebhookSecret, now) {
		t.Fatalf("expected tampered digest to fail verification")
	}
}
