package client

import (
	"context"
	"encoding/json"

	"github.com/cargo-build/cargo-sdk-go/types"
)

type MockClient struct {
	GetContractAbiFunc              func(ctx context.Context, name types.ContractName, chain types.Chain) (*types.ContractData, error)
	AuthenticateFunc                func(ctx context.Context, address, signature string) (*types.AuthResponse, error)
	RegisterFunc                    func(ctx context.Context, address, signature, email, username string) (*types.AuthResponse, error)
	CancelSaleFunc                  func(ctx context.Context, token string, req *CancelSaleRequest) (*types.ArgsResponse, error)
	AddVendorFunc                   func(ctx context.Context, token, vendorAddress, crateId string) (*types.ArgsResponse, error)
	AddBeneficiaryFunc              func(ctx context.Context, token, crateId, address, commission string) (*types.ArgsResponse, error)
	RemoveBeneficiaryFunc           func(ctx context.Context, token, beneficiaryAddress, crateId string) (*types.ArgsResponse, error)
	UpdateBeneficiaryCommissionFunc func(ctx context.Context, token, address, commission, crateId string) (*types.ArgsResponse, error)
	PurchaseFunc                    func(ctx context.Context, saleId string) (*types.PurchaseResponse, error)
	PurchaseErc1155Func             func(ctx context.Context, resaleItemId, sender string) (*types.PurchaseResponse, error)
	SellFunc                        func(ctx context.Context, token string, req *types.SellRequest) (json.RawMessage, error)
	GetClaimArgsFunc                func(ctx context.Context, address, tokenId, amount string) (*types.ArgsResponse, error)
	GetStakedTokensFunc             func(ctx context.Context, address string) (*types.StakedTokensResponse, error)
	GetTokenStakeFunc               func(ctx context.Context, address, tokenId string) (string, error)
}

func (m *MockClient) GetContractAbi(ctx context.Context, name types.ContractName, chain types.Chain) (*types.ContractData, error) {
	if m.GetContractAbiFunc != nil {
		return m.GetContractAbiFunc(ctx, name, chain)
	}

	return &types.ContractData{}, nil
}

func (m *MockClient) Authenticate(ctx context.Context, address, signature string) (*types.AuthResponse, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, address, signature)
	}

	return &types.AuthResponse{}, nil
}

func (m *MockClient) Register(ctx context.Context, address, signature, email, username string) (*types.AuthResponse, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, address, signature, email, username)
	}

	return &types.AuthResponse{}, nil
}

func (m *MockClient) CancelSale(ctx context.Context, token string, req *CancelSaleRequest) (*types.ArgsResponse, error) {
	if m.CancelSaleFunc != nil {
		return m.CancelSaleFunc(ctx, token, req)
	}

	return &types.ArgsResponse{}, nil
}

func (m *MockClient) AddVendor(ctx context.Context, token, vendorAddress, crateId string) (*types.ArgsResponse, error) {
	if m.AddVendorFunc != nil {
		return m.AddVendorFunc(ctx, token, vendorAddress, crateId)
	}

	return &types.ArgsResponse{}, nil
}

func (m *MockClient) AddBeneficiary(ctx context.Context, token, crateId, address, commission string) (*types.ArgsResponse, error) {
	if m.AddBeneficiaryFunc != nil {
		return m.AddBeneficiaryFunc(ctx, token, crateId, address, commission)
	}

	return &types.ArgsResponse{}, nil
}

func (m *MockClient) RemoveBeneficiary(ctx context.Context, token, beneficiaryAddress, crateId string) (*types.ArgsResponse, error) {
	if m.RemoveBeneficiaryFunc != nil {
		return m.RemoveBeneficiaryFunc(ctx, token, beneficiaryAddress, crateId)
	}

	return &types.ArgsResponse{}, nil
}

func (m *MockClient) UpdateBeneficiaryCommission(ctx context.Context, token, address, commission, crateId string) (*types.ArgsResponse, error) {
	if m.UpdateBeneficiaryCommissionFunc != nil {
		return m.UpdateBeneficiaryCommissionFunc(ctx, token, address, commission, crateId)
	}

	return &types.ArgsResponse{}, nil
}

func (m *MockClient) Purchase(ctx context.Context, saleId string) (*types.PurchaseResponse, error) {
	if m.PurchaseFunc != nil {
		return m.PurchaseFunc(ctx, saleId)
	}

	return &types.PurchaseResponse{}, nil
}

func (m *MockClient) PurchaseErc1155(ctx context.Context, resaleItemId, sender string) (*types.PurchaseResponse, error) {
	if m.PurchaseErc1155Func != nil {
		return m.PurchaseErc1155Func(ctx, resaleItemId, sender)
	}

	return &types.PurchaseResponse{}, nil
}

func (m *MockClient) Sell(ctx context.Context, token string, req *types.SellRequest) (json.RawMessage, error) {
	if m.SellFunc != nil {
		return m.SellFunc(ctx, token, req)
	}

	return nil, nil
}

func (m *MockClient) GetClaimArgs(ctx context.Context, address, tokenId, amount string) (*types.ArgsResponse, error) {
	if m.GetClaimArgsFunc != nil {
		return m.GetClaimArgsFunc(ctx, address, tokenId, amount)
	}

	return &types.ArgsResponse{}, nil
}

func (m *MockClient) GetStakedTokens(ctx context.Context, address string) (*types.StakedTokensResponse, error) {
	if m.GetStakedTokensFunc != nil {
		return m.GetStakedTokensFunc(ctx, address)
	}

	return &types.StakedTokensResponse{}, nil
}

func (m *MockClient) GetTokenStake(ctx context.Context, address, tokenId string) (string, error) {
	if m.GetTokenStakeFunc != nil {
		return m.GetTokenStakeFunc(ctx, address, tokenId)
	}

	return "0", nil
}
