package service

import (
	"crypto/rand"
	"fmt"
)

// codeAlphabet excludes visually ambiguous characters (0/O, 1/I) so
// codes survive being read aloud or retyped from a screenshot.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	codeLength      = 8
	maxCodeAttempts = 5
)

// generateCode returns n characters drawn uniformly from codeAlphabet.
// len(codeAlphabet) is 32, so a random byte modulo the length is unbiased.
func generateCode(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}
