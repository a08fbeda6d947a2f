package core

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/cargo-build/cargo-sdk-go/chains/eth"
	"github.com/cargo-build/cargo-sdk-go/client"
	"github.com/cargo-build/cargo-sdk-go/types"
	"github.com/cargo-build/cargo-sdk-go/utils"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sisu-network/lib/log"
)

// backendOpts parses the tx options returned by the backend and applies overrides on top of them.
func (c *Cargo) backendOpts(values *types.TxValues, overrides *types.TxOpts) (types.TxOpts, error) {
	opts := c.txOpts(nil)
	if values != nil {
		parsed, err := types.ParseTxOpts(values.From, values.Value)
		if err != nil {
			return opts, err
		}
		opts = opts.Merge(&parsed)
	}

	return opts.Merge(overrides), nil
}

// Purchase buys a listing through the order executor.
func (c *Cargo) Purchase(ctx context.Context, saleId string, chain types.Chain, overrides *types.TxOpts) (common.Hash, error) {
	if err := c.requireProvider(ctx); err != nil {
		return common.Hash{}, err
	}

	res, err := c.api.Purchase(ctx, saleId)
	if err != nil {
		return common.Hash{}, err
	}

	contract, err := c.contractInstance(ctx, types.ContractOrderExecutorV1, chain)
	if err != nil {
		return common.Hash{}, err
	}

	opts, err := c.backendOpts(res.Web3Params, overrides)
	if err != nil {
		return common.Hash{}, err
	}

	return c.callJSON(ctx, contract, "purchase", res.Args, opts)
}

func (c *Cargo) PurchaseErc1155(ctx context.Context, resaleItemId string, overrides *types.TxOpts) (common.Hash, error) {
	if err := c.requireProvider(ctx); err != nil {
		return common.Hash{}, err
	}

	res, err := c.api.PurchaseErc1155(ctx, resaleItemId, c.account().Hex())
	if err != nil {
		return common.Hash{}, err
	}

	contract, err := c.contractInstance(ctx, types.ContractCargoSell, types.ChainEth)
	if err != nil {
		return common.Hash{}, err
	}

	opts, err := c.backendOpts(res.Values, overrides)
	if err != nil {
		return common.Hash{}, err
	}

	return c.callJSON(ctx, contract, "erc1155Purchase", res.Args, opts)
}

// Sell lists a token. The order executor is approved for the collection first if needed, in which
// case onUnapproved is called before the approval is sent and the listing waits until the approval
// is final.
func (c *Cargo) Sell(ctx context.Context, req *types.SellRequest, onUnapproved func()) (json.RawMessage, error) {
	if err := c.requireProvider(ctx); err != nil {
		return nil, err
	}

	token, err := c.requireToken()
	if err != nil {
		return nil, err
	}

	collection, err := parseAddress(req.ContractAddress)
	if err != nil {
		return nil, err
	}

	sender := c.account()
	req.Sender = sender.Hex()

	nft, err := c.contractInstance(ctx, types.ContractCargoNft, req.Chain)
	if err != nil {
		return nil, err
	}
	nft = nft.At(collection)

	executor, err := c.api.GetContractAbi(ctx, types.ContractOrderExecutorV1, req.Chain)
	if err != nil {
		return nil, err
	}
	operator, err := parseAddress(executor.Address)
	if err != nil {
		return nil, fmt.Errorf("order executor: %w", err)
	}

	out, err := nft.Call(ctx, sender, "isApprovedForAll", sender, operator)
	if err != nil {
		return nil, err
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("isApprovedForAll returned nothing")
	}

	approved, _ := out[0].(bool)
	if !approved {
		log.Infof("Approving %s for collection %s", operator.Hex(), collection.Hex())
		if onUnapproved != nil {
			onUnapproved()
		}

		if _, err := c.callAndWait(ctx, nft, "setApprovalForAll", c.txOpts(nil), operator, true); err != nil {
			return nil, fmt.Errorf("approve %s: %w", operator.Hex(), err)
		}
	}

	return c.api.Sell(ctx, token, req)
}

// CancelSale cancels a listing. The zero hash is returned when the backend cancelled it without an
// on-chain transaction.
func (c *Cargo) CancelSale(ctx context.Context, resaleItemId string, overrides *types.TxOpts) (common.Hash, error) {
	if err := c.requireProvider(ctx); err != nil {
		return common.Hash{}, err
	}

	req := &client.CancelSaleRequest{ResaleItemId: resaleItemId}
	token := c.Token()
	if token == "" {
		sig, err := c.GetSignature(ctx)
		if err != nil {
			return common.Hash{}, err
		}
		req.Signature = sig
		req.Sender = c.account().Hex()
	}

	res, err := c.api.CancelSale(ctx, token, req)
	if err != nil {
		return common.Hash{}, err
	}

	if !res.SignatureGenerated {
		return common.Hash{}, nil
	}

	contract, err := c.contractInstance(ctx, types.ContractCargoSell, types.ChainEth)
	if err != nil {
		return common.Hash{}, err
	}

	return c.callJSON(ctx, contract, "cancelSale", res.Args, c.txOpts(overrides))
}

func (c *Cargo) AddVendor(ctx context.Context, vendorAddress, crateId string, overrides *types.TxOpts) (common.Hash, error) {
	token, err := c.requireAuth(ctx)
	if err != nil {
		return common.Hash{}, err
	}

	res, err := c.api.AddVendor(ctx, token, vendorAddress, crateId)
	if err != nil {
		return common.Hash{}, err
	}

	return c.callVendor(ctx, "addVendor", res, overrides)
}

// AddBeneficiary adds a beneficiary to a crate. commission is a fraction in [0, 1].
func (c *Cargo) AddBeneficiary(ctx context.Context, crateId, beneficiaryAddress string, commission float64, overrides *types.TxOpts) (common.Hash, error) {
	token, err := c.requireAuth(ctx)
	if err != nil {
		return common.Hash{}, err
	}

	value, err := utils.GetCommission(commission)
	if err != nil {
		return common.Hash{}, err
	}

	res, err := c.api.AddBeneficiary(ctx, token, crateId, beneficiaryAddress, value)
	if err != nil {
		return common.Hash{}, err
	}

	return c.callVendor(ctx, "addBeneficiary", res, overrides)
}

func (c *Cargo) RemoveBeneficiary(ctx context.Context, beneficiaryAddress, crateId string, overrides *types.TxOpts) (common.Hash, error) {
	token, err := c.requireAuth(ctx)
	if err != nil {
		return common.Hash{}, err
	}

	res, err := c.api.RemoveBeneficiary(ctx, token, beneficiaryAddress, crateId)
	if err != nil {
		return common.Hash{}, err
	}

	return c.callVendor(ctx, "removeBeneficiary", res, overrides)
}

func (c *Cargo) UpdateBeneficiaryCommission(ctx context.Context, beneficiaryAddress string, commission float64, crateId string, overrides *types.TxOpts) (common.Hash, error) {
	token, err := c.requireAuth(ctx)
	if err != nil {
		return common.Hash{}, err
	}

	value, err := utils.GetCommission(commission)
	if err != nil {
		return common.Hash{}, err
	}

	res, err := c.api.UpdateBeneficiaryCommission(ctx, token, beneficiaryAddress, value, crateId)
	if err != nil {
		return common.Hash{}, err
	}

	return c.callVendor(ctx, "updateBeneficiaryCommission", res, overrides)
}

func (c *Cargo) requireAuth(ctx context.Context) (string, error) {
	if err := c.requireProvider(ctx); err != nil {
		return "", err
	}

	return c.requireToken()
}

func (c *Cargo) callVendor(ctx context.Context, method string, res *types.ArgsResponse, overrides *types.TxOpts) (common.Hash, error) {
	contract, err := c.contractInstance(ctx, types.ContractCargoVendor, types.ChainEth)
	if err != nil {
		return common.Hash{}, err
	}

	return c.callJSON(ctx, contract, method, res.Args, c.txOpts(overrides))
}

// PurchaseCreditPack buys a minting credit pack. price is in wei.
func (c *Cargo) PurchaseCreditPack(ctx context.Context, pack, price string, overrides *types.TxOpts) (common.Hash, error) {
	if err := c.requireProvider(ctx); err != nil {
		return common.Hash{}, err
	}

	packId, err := utils.ParseBigInt(pack)
	if err != nil {
		return common.Hash{}, err
	}
	value, err := utils.ParseBigInt(price)
	if err != nil {
		return common.Hash{}, err
	}

	contract, err := c.contractInstance(ctx, types.ContractMintingCredits, types.ChainEth)
	if err != nil {
		return common.Hash{}, err
	}

	opts := c.txOpts(&types.TxOpts{Value: value}).Merge(overrides)
	return c.call(ctx, contract, "purchaseBalance", opts, packId)
}

// GetMintingCreditBalance returns the credit balance of the current account with 4 decimals.
func (c *Cargo) GetMintingCreditBalance(ctx context.Context) (string, error) {
	if err := c.requireProvider(ctx); err != nil {
		return "", err
	}

	contract, err := c.contractInstance(ctx, types.ContractMintingCredits, types.ChainEth)
	if err != nil {
		return "", err
	}

	account := c.account()
	out, err := contract.Call(ctx, account, "balanceOf", account)
	if err != nil {
		return "", err
	}

	if len(out) == 0 {
		return "", fmt.Errorf("balanceOf returned nothing")
	}

	balance, ok := out[0].(*big.Int)
	if !ok {
		return "", fmt.Errorf("unexpected balance type %T", out[0])
	}

	return utils.WeiToEther(balance, 4), nil
}

// TransferCollectible transfers an ERC-721 token from the current account.
func (c *Cargo) TransferCollectible(ctx context.Context, contractAddress, tokenId, to string, overrides *types.TxOpts) (common.Hash, error) {
	if err := c.requireProvider(ctx); err != nil {
		return common.Hash{}, err
	}

	recipient, err := parseAddress(to)
	if err != nil {
		return common.Hash{}, err
	}

	nft, id, err := c.collectible(ctx, contractAddress, tokenId)
	if err != nil {
		return common.Hash{}, err
	}

	return c.call(ctx, nft, "safeTransferFrom", c.txOpts(overrides), c.account(), recipient, id)
}

func (c *Cargo) BurnCollectible(ctx context.Context, contractAddress, tokenId string, overrides *types.TxOpts) (common.Hash, error) {
	if err := c.requireProvider(ctx); err != nil {
		return common.Hash{}, err
	}

	nft, id, err := c.collectible(ctx, contractAddress, tokenId)
	if err != nil {
		return common.Hash{}, err
	}

	return c.call(ctx, nft, "burn", c.txOpts(overrides), id)
}

func (c *Cargo) collectible(ctx context.Context, contractAddress, tokenId string) (*eth.Contract, *big.Int, error) {
	collection, err := parseAddress(contractAddress)
	if err != nil {
		return nil, nil, err
	}

	id, err := utils.ParseBigInt(tokenId)
	if err != nil {
		return nil, nil, err
	}

	nft, err := c.contractInstance(ctx, types.ContractCargoNft, types.ChainEth)
	if err != nil {
		return nil, nil, err
	}

	return nft.At(collection), id, nil
}
