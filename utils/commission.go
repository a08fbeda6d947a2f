package utils

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// CommissionDenominator is the on-chain representation of a commission of 1 (100%).
var CommissionDenominator = big.NewInt(OneEtherInWei)

var ErrInvalidCommission = errors.New("commission must be a number between 0 and 1")

// GetCommission converts a fraction in [0, 1] to its on-chain value.
func GetCommission(fraction float64) (string, error) {
	if fraction < 0 || fraction > 1 {
		return "", fmt.Errorf("%w: %v", ErrInvalidCommission, fraction)
	}

	r, ok := new(big.Rat).SetString(strconv.FormatFloat(fraction, 'f', -1, 64))
	if !ok {
		return "", fmt.Errorf("%w: %v", ErrInvalidCommission, fraction)
	}

	r.Mul(r, new(big.Rat).SetInt(CommissionDenominator))
	return new(big.Int).Quo(r.Num(), r.Denom()).String(), nil
}

// FromCommission converts an on-chain commission back to a fraction, without trailing zeros.
func FromCommission(val string) (string, error) {
	v, err := ParseBigInt(val)
	if err != nil {
		return "", err
	}

	s := new(big.Rat).SetFrac(v, CommissionDenominator).FloatString(18)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")

	return s, nil
}
