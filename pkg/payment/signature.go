package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Signature computes the hex HMAC-SHA256 of "orderID|paymentID" under the
// gateway's shared secret. This is the value the provider sends back with
// a completed payment.
func Signature(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature compares the received signature against the recomputed
// one in constant time. A mismatch is fatal for the verification flow.
func VerifySignature(orderID, paymentID, receivedSignature, secret string) bool {
	expected := Signature(orderID, paymentID, secret)
	return hmac.Equal([]byte(expected), []byte(receivedSignature))
}
