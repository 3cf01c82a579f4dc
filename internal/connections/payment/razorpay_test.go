package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"restaurant-ordering/internal/config"
)

func TestToMinor(t *testing.T) {
	tests := []struct {
		in   float64
		want int64
	}{
		{170, 17000},
		{0.1 + 0.2, 30},
		{0, 0},
	}
	for _, tt := range tests {
		if got := ToMinor(tt.in); got != tt.want {
			t.Errorf("ToMinor(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestVerifySignature(t *testing.T) {
	rp := NewRazorpay(config.RazorpayConfig{KeyID: "rzp_test_key", KeySecret: "s3cret"})

	mac := hmac.New(sha256.New, []byte("s3cret"))
	mac.Write([]byte("order_ABC|pay_XYZ"))
	good := hex.EncodeToString(mac.Sum(nil))

	if !rp.VerifySignature("order_ABC", "pay_XYZ", good) {
		t.Fatal("valid signature rejected")
	}
	if rp.VerifySignature("order_ABC", "pay_OTHER", good) {
		t.Fatal("signature for a different payment accepted")
	}
}
