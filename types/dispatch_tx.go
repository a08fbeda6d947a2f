package types

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrMissingFrom      = errors.New("tx options: from address is required")
	ErrNegativeValue    = errors.New("tx options: value cannot be negative")
	ErrNonPositiveGasPx = errors.New("tx options: gas price must be positive")
)

// TxOpts enumerates the transaction options recognized by the submitter. Zero values mean "let the
// wallet decide": a nil Value sends no ether, a nil GasPrice and a zero Gas are filled in by the
// wallet (or by gas estimation when it is enabled).
type TxOpts struct {
	From     common.Address `json:"from"`
	Value    *big.Int       `json:"value,omitempty"`
	GasPrice *big.Int       `json:"gasPrice,omitempty"`
	Gas      uint64         `json:"gas,omitempty"`
}

func (o TxOpts) Validate() error {
	if o.From == (common.Address{}) {
		return ErrMissingFrom
	}

	if o.Value != nil && o.Value.Sign() < 0 {
		return fmt.Errorf("%w: %s", ErrNegativeValue, o.Value)
	}

	if o.GasPrice != nil && o.GasPrice.Sign() <= 0 {
		return fmt.Errorf("%w: %s", ErrNonPositiveGasPx, o.GasPrice)
	}

	return nil
}

// Merge returns a copy of o with every non-zero field of other applied on top of it.
func (o TxOpts) Merge(other *TxOpts) TxOpts {
	if other == nil {
		return o
	}

	if other.From != (common.Address{}) {
		o.From = other.From
	}
	if other.Value != nil {
		o.Value = new(big.Int).Set(other.Value)
	}
	if other.GasPrice != nil {
		o.GasPrice = new(big.Int).Set(other.GasPrice)
	}
	if other.Gas != 0 {
		o.Gas = other.Gas
	}

	return o
}

// ParseTxOpts builds options from the string values returned by the marketplace backend (e.g.
// `{"from": "0x..", "value": "1000"}`).
func ParseTxOpts(from, value string) (TxOpts, error) {
	opts := TxOpts{}
	if from != "" {
		if !common.IsHexAddress(from) {
			return opts, fmt.Errorf("invalid from address %s", from)
		}
		opts.From = common.HexToAddress(from)
	}

	if value != "" {
		v, ok := new(big.Int).SetString(value, 0)
		if !ok {
			return opts, fmt.Errorf("invalid value %s", value)
		}
		opts.Value = v
	}

	return opts, nil
}
