package core

import (
	"context"
	"fmt"

	"github.com/cargo-build/cargo-sdk-go/types"
	"github.com/cargo-build/cargo-sdk-go/utils"
	"github.com/ethereum/go-ethereum/common"
)

// ApproveErc20 lets operator spend amount of the ERC-20 token at address.
func (c *Cargo) ApproveErc20(ctx context.Context, amount, address, operator string, overrides *types.TxOpts) (common.Hash, error) {
	if err := c.requireProvider(ctx); err != nil {
		return common.Hash{}, err
	}

	token, err := parseAddress(address)
	if err != nil {
		return common.Hash{}, err
	}
	spender, err := parseAddress(operator)
	if err != nil {
		return common.Hash{}, err
	}
	value, err := utils.ParseBigInt(amount)
	if err != nil {
		return common.Hash{}, err
	}

	erc20, err := c.contractInstance(ctx, types.ContractErc20, types.ChainEth)
	if err != nil {
		return common.Hash{}, err
	}

	return c.call(ctx, erc20.At(token), "approve", c.txOpts(overrides), spender, value)
}

// ApproveGems lets the staking contract spend amount of gems.
func (c *Cargo) ApproveGems(ctx context.Context, amount string, overrides *types.TxOpts) (common.Hash, error) {
	if err := c.requireProvider(ctx); err != nil {
		return common.Hash{}, err
	}

	value, err := utils.ParseBigInt(amount)
	if err != nil {
		return common.Hash{}, err
	}

	staking, err := c.contractInstance(ctx, types.ContractGemsStaking, types.ChainEth)
	if err != nil {
		return common.Hash{}, err
	}
	if staking.Address == (common.Address{}) {
		return common.Hash{}, fmt.Errorf("%s has no address", types.ContractGemsStaking)
	}

	gems, err := c.contractInstance(ctx, types.ContractCargoGems, types.ChainEth)
	if err != nil {
		return common.Hash{}, err
	}

	return c.call(ctx, gems, "approve", c.txOpts(overrides), staking.Address, value)
}

func (c *Cargo) StakeGems(ctx context.Context, contractAddress, tokenId, amount string, overrides *types.TxOpts) (common.Hash, error) {
	if err := c.requireProvider(ctx); err != nil {
		return common.Hash{}, err
	}

	collection, err := parseAddress(contractAddress)
	if err != nil {
		return common.Hash{}, err
	}
	id, err := utils.ParseBigInt(tokenId)
	if err != nil {
		return common.Hash{}, err
	}
	value, err := utils.ParseBigInt(amount)
	if err != nil {
		return common.Hash{}, err
	}

	staking, err := c.contractInstance(ctx, types.ContractGemsStaking, types.ChainEth)
	if err != nil {
		return common.Hash{}, err
	}

	return c.call(ctx, staking, "stake", c.txOpts(overrides), collection, id, value)
}

// ClaimAndStakeRewards claims the rewards of a staked token and stakes them again.
func (c *Cargo) ClaimAndStakeRewards(ctx context.Context, address, tokenId string, overrides *types.TxOpts) (common.Hash, error) {
	return c.claim(ctx, address, tokenId, "", overrides)
}

// Withdraw withdraws amount of gems staked on a token.
func (c *Cargo) Withdraw(ctx context.Context, address, tokenId, amount string, overrides *types.TxOpts) (common.Hash, error) {
	if amount == "" {
		return common.Hash{}, fmt.Errorf("withdraw amount is required")
	}

	return c.claim(ctx, address, tokenId, amount, overrides)
}

func (c *Cargo) claim(ctx context.Context, address, tokenId, amount string, overrides *types.TxOpts) (common.Hash, error) {
	if err := c.requireProvider(ctx); err != nil {
		return common.Hash{}, err
	}

	res, err := c.api.GetClaimArgs(ctx, address, tokenId, amount)
	if err != nil {
		return common.Hash{}, err
	}

	staking, err := c.contractInstance(ctx, types.ContractGemsStaking, types.ChainEth)
	if err != nil {
		return common.Hash{}, err
	}

	return c.callJSON(ctx, staking, "claim", res.Args, c.txOpts(overrides))
}

func (c *Cargo) GetStakedTokens(ctx context.Context, address string) (*types.StakedTokensResponse, error) {
	return c.api.GetStakedTokens(ctx, address)
}

func (c *Cargo) GetTokenStake(ctx context.Context, address, tokenId string) (string, error) {
	return c.api.GetTokenStake(ctx, address, tokenId)
}
