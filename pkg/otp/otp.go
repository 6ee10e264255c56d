package otp

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strconv"
)

// Digits is the length of every generated code.
const Digits = 6

var ErrFailedToGenerate = errors.New("otp: failed to read random source")

// Generate produces a 6-digit numeric one-time code from a
// cryptographically secure random source. Three random bytes are
// interpreted as an integer (0..16777215) and rendered in decimal,
// truncated or left-padded to exactly six digits.
func Generate() (string, error) {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Join(ErrFailedToGenerate, err)
	}

	n, err := strconv.ParseInt(hex.EncodeToString(buf), 16, 64)
	if err != nil {
		return "", errors.Join(ErrFailedToGenerate, err)
	}

	code := strconv.FormatInt(n, 10)
	if len(code) > Digits {
		return code[:Digits], nil
	}
	for len(code) < Digits {
		code = "0" + code
	}
	return code, nil
}
