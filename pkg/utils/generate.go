package utils

import (
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
)

// ErrEntropyUnavailable is returned when the system CSPRNG cannot be read.
var ErrEntropyUnavailable = errors.New("secure random source unavailable")

// opaqueTokenBytes gives 160 bits of entropy per session token.
const opaqueTokenBytes = 20

// randReader is swapped in tests to simulate a failing entropy source.
var randReader io.Reader = rand.Reader

var tokenEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// ==================== TOKEN ====================

// NewOpaqueToken returns a lower-case, unpadded base32 token safe for cookies and URLs.
func NewOpaqueToken() (string, error) {
	b := make([]byte, opaqueTokenBytes)
	if _, err := io.ReadFull(randReader, b); err != nil {
		return "", fmt.Errorf("%w: %v", ErrEntropyUnavailable, err)
	}

	return strings.ToLower(tokenEncoding.EncodeToString(b)), nil
}

// ==================== OTP ====================

// NewNumericCode returns a uniformly distributed decimal code of exactly digits characters.
// Leading zeros are kept.
func NewNumericCode(digits int) (string, error) {
	if digits <= 0 {
		return "", fmt.Errorf("invalid code length %d", digits)
	}

	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(randReader, max)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEntropyUnavailable, err)
	}

	return fmt.Sprintf("%0*s", digits, n.String()), nil
}
