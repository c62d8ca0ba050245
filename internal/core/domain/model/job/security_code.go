package job

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"dispatch/internal/pkg/errs"
)

const (
	minSecurityCode = 1000
	maxSecurityCode = 9999

	// SecurityCodeReuseWindow is how long an issued code stays reserved.
	SecurityCodeReuseWindow = 24 * time.Hour
)

var (
	// ErrSecurityCodeMismatch is returned when the code given at delivery is
	// not the one issued for the job.
	ErrSecurityCodeMismatch = errors.New("security code does not match")
	// ErrSecurityCodeAlreadyIssued is returned when a job is given a second code.
	ErrSecurityCodeAlreadyIssued = errors.New("security code was already issued")
)

// SecurityCode is the four digit code the recipient hands to the courier.
// The courier must present it to mark the job delivered.
type SecurityCode string

// ParseSecurityCode accepts exactly four digits from 1000 to 9999.
func ParseSecurityCode(s string) (SecurityCode, error) {
	n, err := strconv.Atoi(s)
	if err != nil || len(s) != 4 || n < minSecurityCode || n > maxSecurityCode {
		return "", errs.NewValueIsInvalidErrorWithCause("security code", fmt.Errorf("%q is not a four digit code", s))
	}
	return SecurityCode(s), nil
}

// RandomSecurityCode draws a code uniformly from 1000..9999. Uniqueness is the
// caller's concern.
func RandomSecurityCode() SecurityCode {
	return SecurityCode(strconv.Itoa(minSecurityCode + rand.IntN(maxSecurityCode-minSecurityCode+1)))
}

// Matches compares in constant time.
func (c SecurityCode) Matches(other SecurityCode) bool {
	if c == "" || other == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(c), []byte(other)) == 1
}

func (c SecurityCode) String() string {
	return string(c)
}
