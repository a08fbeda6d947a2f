package utils

import (
	"fmt"
	"math/big"
	"strings"
)

var (
	OneEtherInWei = int64(1_000_000_000_000_000_000)
	OneGweiInWei  = int64(1_000_000_000)
)

// ParseBigInt parses a decimal or 0x prefixed hex integer.
func ParseBigInt(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty integer")
	}

	v, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return nil, fmt.Errorf("invalid integer %s", s)
	}

	return v, nil
}

func FloatToWei(value float64) *big.Int {
	bigval := new(big.Float)
	bigval.SetFloat64(value)

	bigval = bigval.Mul(bigval, new(big.Float).SetInt(big.NewInt(OneEtherInWei)))

	result := new(big.Int)
	bigval.Int(result)
	return result
}

// WeiToEther formats a wei amount in ether rounded to precision decimals.
func WeiToEther(wei *big.Int, precision int) string {
	return new(big.Rat).SetFrac(wei, big.NewInt(OneEtherInWei)).FloatString(precision)
}
