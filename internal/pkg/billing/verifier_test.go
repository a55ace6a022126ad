package billing

import (
	"strings"
	"testing"
)

func TestVerifyRoundTrip(t *testing.T) {
	v := NewVerifier("test-secret")

	sig := v.Sign("order_abc", "pay_123")
	if !v.Verify("order_abc", "pay_123", sig) {
		t.Fatalf("expected signature to verify")
	}

	// Uppercase hex and surrounding whitespace are tolerated.
	if !v.Verify("order_abc", "pay_123", "  "+strings.ToUpper(sig)+" ") {
		t.Fatalf("expected normalized signature to verify")
	}
}

func TestVerifyRejectsTamperedInput(t *testing.T) {
	v := NewVerifier("test-secret")
	sig := v.Sign("order_abc", "pay_123")

	// Flip one hex digit.
	flipped := []byte(sig)
	if flipped[0] == 'a' {
		flipped[0] = 'b'
	} else {
		flipped[0] = 'a'
	}

	tests := []struct {
		name       string
		orderID    string
		paymentRef string
		signature  string
	}{
		{name: "flipped signature", orderID: "order_abc", paymentRef: "pay_123", signature: string(flipped)},
		{name: "wrong order", orderID: "order_xyz", paymentRef: "pay_123", signature: sig},
		{name: "wrong payment", orderID: "order_abc", paymentRef: "pay_999", signature: sig},
		{name: "empty signature", orderID: "order_abc", paymentRef: "pay_123", signature: ""},
		{name: "non-hex signature", orderID: "order_abc", paymentRef: "pay_123", signature: "zz" + sig[2:]},
		{name: "truncated signature", orderID: "order_abc", paymentRef: "pay_123", signature: sig[:16]},
		{name: "empty order", orderID: "", paymentRef: "pay_123", signature: sig},
		{name: "empty payment", orderID: "order_abc", paymentRef: "", signature: sig},
	}

	for _, tt := range tests {
		if v.Verify(tt.orderID, tt.paymentRef, tt.signature) {
			t.Fatalf("%s: expected verification to fail", tt.name)
		}
	}
}

func TestVerifyDifferentSecrets(t *testing.T) {
	a := NewVerifier("secret-a")
	b := NewVerifier("secret-b")

	sig := a.Sign("order_abc", "pay_123")
	if b.Verify("order_abc", "pay_123", sig) {
		t.Fatalf("expected signature from a different secret to fail")
	}
}

func TestVerifyEmptySecret(t *testing.T) {
	v := NewVerifier("")
	if v.Verify("order_abc", "pay_123", v.Sign("order_abc", "pay_123")) {
		t.Fatalf("expected verification with empty secret to always fail")
	}
}
