package utils

import "crypto/rand"

const referralAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateReferralCode bikin kode unik gaya "PRISM" + 6 karakter acak.
func GenerateReferralCode() string {
	b := make([]byte, 6)
	rand.Read(b)
	for i := range b {
		b[i] = referralAlphabet[int(b[i])%len(referralAlphabet)]
	}
	return "PRISM" + string(b)
}
