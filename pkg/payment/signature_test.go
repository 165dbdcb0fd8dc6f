package payment

import (
	"encoding/hex"
	"testing"
)

func TestSignatureDeterministic(t *testing.T) {
	first := Signature("order_abc", "pay_xyz", "secret")
	second := Signature("order_abc", "pay_xyz", "secret")

	if first != second {
		t.Fatalf("same inputs produced different signatures: %s vs %s", first, second)
	}

	if _, err := hex.DecodeString(first); err != nil {
		t.Fatalf("signature is not hex encoded: %v", err)
	}
	if len(first) != 64 {
		t.Fatalf("expected 64 hex chars for SHA-256, got %d", len(first))
	}
}

func TestSignatureInputsMatter(t *testing.T) {
	base := Signature("order_abc", "pay_xyz", "secret")

	cases := map[string]string{
		"different order":   Signature("order_abd", "pay_xyz", "secret"),
		"different payment": Signature("order_abc", "pay_xyw", "secret"),
		"different secret":  Signature("order_abc", "pay_xyz", "secret2"),
		"swapped fields":    Signature("pay_xyz", "order_abc", "secret"),
	}

	for name, sig := range cases {
		if sig == base {
			t.Errorf("%s: expected a different signature", name)
		}
	}
}

func TestVerifySignature(t *testing.T) {
	sig := Signature("order_abc", "pay_xyz", "secret")

	if !VerifySignature("order_abc", "pay_xyz", sig, "secret") {
		t.Fatal("valid signature rejected")
	}

	// A single flipped character must fail.
	tampered := []byte(sig)
	if tampered[0] == 'a' {
		tampered[0] = 'b'
	} else {
		tampered[0] = 'a'
	}
	if VerifySignature("order_abc", "pay_xyz", string(tampered), "secret") {
		t.Fatal("tampered signature accepted")
	}

	if VerifySignature("order_abc", "pay_xyz", "", "secret") {
		t.Fatal("empty signature accepted")
	}
}
