package types

import "encoding/json"

type Chain string

const (
	ChainEth   Chain = "eth"
	ChainXdai  Chain = "xdai"
	ChainMatic Chain = "matic"
)

type ContractName string

const (
	ContractOrderExecutor1155V1 ContractName = "orderExecutor1155V1"
	ContractCargoNft            ContractName = "cargoNft"
	ContractOrderExecutorV1     ContractName = "orderExecutorV1"
	ContractOrderExecutorV2     ContractName = "orderExecutorV2"
	ContractMagicMintUtil       ContractName = "magicMintUtil"
	ContractErc1155             ContractName = "erc1155"
	ContractNftCreator          ContractName = "nftCreator"
	ContractCargoData           ContractName = "cargoData"
	ContractCargoAsset          ContractName = "cargoAsset"
	ContractCargoSell           ContractName = "cargoSell"
	ContractMintingCredits      ContractName = "cargoMintingCredits"
	ContractSuper721            ContractName = "super721"
	ContractGemsStaking         ContractName = "cargoGemsStaking"
	ContractErc20               ContractName = "erc20"
	ContractCargoGems           ContractName = "cargoGems"
	ContractCargoVendor         ContractName = "cargoVendor"
	ContractNftFarm             ContractName = "nftFarm"
)

var contractNames = map[ContractName]bool{
	ContractOrderExecutor1155V1: true,
	ContractCargoNft:            true,
	ContractOrderExecutorV1:     true,
	ContractOrderExecutorV2:     true,
	ContractMagicMintUtil:       true,
	ContractErc1155:             true,
	ContractNftCreator:          true,
	ContractCargoData:           true,
	ContractCargoAsset:          true,
	ContractCargoSell:           true,
	ContractMintingCredits:      true,
	ContractSuper721:            true,
	ContractGemsStaking:         true,
	ContractErc20:               true,
	ContractCargoGems:           true,
	ContractCargoVendor:         true,
	ContractNftFarm:             true,
}

func (n ContractName) Valid() bool {
	return contractNames[n]
}

// ContractData is the ABI (as a JSON string) and optional deployed address of a marketplace contract.
type ContractData struct {
	Abi     string `json:"abi"`
	Address string `json:"address,omitempty"`
}

// ArgsResponse carries the contract call arguments prepared (and usually signed) by the backend.
type ArgsResponse struct {
	Args               []json.RawMessage `json:"args"`
	SignatureGenerated bool              `json:"signatureGenerated,omitempty"`
}

// PurchaseResponse is returned by the purchase endpoints. Values holds the tx options the backend
// wants the purchase to be sent with.
type PurchaseResponse struct {
	Args       []json.RawMessage `json:"args"`
	Values     *TxValues         `json:"values,omitempty"`
	Web3Params *TxValues         `json:"web3Params,omitempty"`
}

type TxValues struct {
	From  string `json:"from,omitempty"`
	Value string `json:"value,omitempty"`
}

type AuthResponse struct {
	Token string `json:"token"`
}

type SellRequest struct {
	Chain           Chain    `json:"-"`
	Sender          string   `json:"sender"`
	ContractAddress string   `json:"contractAddress"`
	TokenId         string   `json:"tokenId"`
	Price           string   `json:"price"`
	CurrencyId      string   `json:"currencyId,omitempty"`
	Payees          []string `json:"payees,omitempty"`
	Commissions     []int64  `json:"commissions,omitempty"`
}

type ResaleItem struct {
	SellerAddress string                 `json:"sellerAddress"`
	TokenAddress  string                 `json:"tokenAddress"`
	TokenId       string                 `json:"tokenId"`
	ResaleItemId  string                 `json:"resaleItemId"`
	Price         string                 `json:"price"`
	FromVendor    bool                   `json:"fromVendor"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

type StakedToken struct {
	Contract     string `json:"contract"`
	Owner        string `json:"owner"`
	TokenId      string `json:"tokenId"`
	StakedAmount string `json:"stakedAmount"`
}

type StakedTokensResponse struct {
	TotalStakedAmount     string        `json:"totalStakedAmount"`
	TotalAvailableRewards string        `json:"totalAvailableRewards"`
	Tokens                []StakedToken `json:"tokens"`
}

type TokenStakeResponse struct {
	Balance string `json:"balance"`
}
