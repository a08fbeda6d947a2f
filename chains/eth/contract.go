package eth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cargo-build/cargo-sdk-go/types"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Contract is a marketplace contract bound to its deployed address.
type Contract struct {
	Name    types.ContractName
	Address common.Address
	Abi     abi.ABI

	client EthClient
}

func NewContract(name types.ContractName, address common.Address, abiJson string, client EthClient) (*Contract, error) {
	parsed, err := abi.JSON(strings.NewReader(abiJson))
	if err != nil {
		return nil, fmt.Errorf("invalid abi for contract %s: %w", name, err)
	}

	return &Contract{
		Name:    name,
		Address: address,
		Abi:     parsed,
		client:  client,
	}, nil
}

// At returns a copy of the contract bound to another address (e.g. a collection using a shared ABI).
func (c *Contract) At(address common.Address) *Contract {
	ret := *c
	ret.Address = address

	return &ret
}

// Request packs a call to method into a transaction request.
func (c *Contract) Request(opts types.TxOpts, method string, args ...interface{}) (*types.TxRequest, error) {
	data, err := c.Abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s.%s: %w", c.Name, method, err)
	}

	to := c.Address
	return &types.TxRequest{
		To:   &to,
		Data: data,
		Opts: opts,
	}, nil
}

// RequestJSON is like Request with arguments in the JSON form returned by the marketplace backend.
func (c *Contract) RequestJSON(opts types.TxOpts, method string, raw []json.RawMessage) (*types.TxRequest, error) {
	m, ok := c.Abi.Methods[method]
	if !ok {
		return nil, fmt.Errorf("contract %s has no method %s", c.Name, method)
	}

	args, err := ConvertArgs(m, raw)
	if err != nil {
		return nil, err
	}

	return c.Request(opts, method, args...)
}

// Call executes a read-only method and returns its unpacked outputs.
func (c *Contract) Call(ctx context.Context, from common.Address, method string, args ...interface{}) ([]interface{}, error) {
	data, err := c.Abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s.%s: %w", c.Name, method, err)
	}

	to := c.Address
	ctx, cancel := context.WithTimeout(ctx, RpcTimeOut)
	defer cancel()

	out, err := c.client.CallContract(ctx, ethereum.CallMsg{From: from, To: &to, Data: data}, nil)
	if err != nil {
		return nil, err
	}

	return c.Abi.Unpack(method, out)
}
