package pay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func sign(orderID, paymentID string) string {
	h := hmac.New(sha256.New, gatewaySecret())
	h.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(h.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	orderID := "order_abc123"
	paymentID := "pay_xyz789"

	if !VerifySignature(orderID, paymentID, sign(orderID, paymentID)) {
		t.Fatal("valid signature rejected")
	}
	if VerifySignature(orderID, paymentID, sign(orderID, "pay_other")) {
		t.Fatal("signature for a different payment accepted")
	}
	if VerifySignature(orderID, paymentID, "") {
		t.Fatal("empty signature accepted")
	}
	if VerifySignature(orderID, paymentID, "not-hex") {
		t.Fatal("garbage signature accepted")
	}
}
