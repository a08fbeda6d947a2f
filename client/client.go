package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/cargo-build/cargo-sdk-go/config"
	"github.com/cargo-build/cargo-sdk-go/database"
	"github.com/cargo-build/cargo-sdk-go/network"
	"github.com/cargo-build/cargo-sdk-go/types"
	"github.com/golang/groupcache/lru"
	"github.com/sisu-network/lib/log"
)

const AbiCacheSize = 64

// CancelSaleRequest is signed with either the session token or, when there is none, a login signature.
type CancelSaleRequest struct {
	ResaleItemId string `json:"resaleItemId"`
	Signature    string `json:"signature,omitempty"`
	Sender       string `json:"sender,omitempty"`
}

// Client talks to the marketplace backend.
type Client interface {
	GetContractAbi(ctx context.Context, name types.ContractName, chain types.Chain) (*types.ContractData, error)

	Authenticate(ctx context.Context, address, signature string) (*types.AuthResponse, error)
	Register(ctx context.Context, address, signature, email, username string) (*types.AuthResponse, error)

	CancelSale(ctx context.Context, token string, req *CancelSaleRequest) (*types.ArgsResponse, error)
	AddVendor(ctx context.Context, token, vendorAddress, crateId string) (*types.ArgsResponse, error)
	AddBeneficiary(ctx context.Context, token, crateId, address, commission string) (*types.ArgsResponse, error)
	RemoveBeneficiary(ctx context.Context, token, beneficiaryAddress, crateId string) (*types.ArgsResponse, error)
	UpdateBeneficiaryCommission(ctx context.Context, token, address, commission, crateId string) (*types.ArgsResponse, error)

	Purchase(ctx context.Context, saleId string) (*types.PurchaseResponse, error)
	PurchaseErc1155(ctx context.Context, resaleItemId, sender string) (*types.PurchaseResponse, error)
	Sell(ctx context.Context, token string, req *types.SellRequest) (json.RawMessage, error)

	GetClaimArgs(ctx context.Context, address, tokenId, amount string) (*types.ArgsResponse, error)
	GetStakedTokens(ctx context.Context, address string) (*types.StakedTokensResponse, error)
	GetTokenStake(ctx context.Context, address, tokenId string) (string, error)
}

type DefaultClient struct {
	url  string
	http network.Http
	db   database.Database

	abiCache *lru.Cache
	lock     *sync.Mutex
}

func NewClient(url string, http network.Http, db database.Database) Client {
	return &DefaultClient{
		url:      strings.TrimSuffix(url, "/"),
		http:     http,
		db:       db,
		abiCache: lru.New(AbiCacheSize),
		lock:     &sync.Mutex{},
	}
}

func (c *DefaultClient) abiCacheKey(name types.ContractName, chain types.Chain) string {
	return fmt.Sprintf("%s:%s:%s:%s", config.SdkVersion, c.url, chain, name)
}

// GetContractAbi returns the ABI and address of a whitelisted contract. Results are cached in
// memory and in the session store.
func (c *DefaultClient) GetContractAbi(ctx context.Context, name types.ContractName, chain types.Chain) (*types.ContractData, error) {
	if !name.Valid() {
		return nil, fmt.Errorf("%s is not a valid contract", name)
	}
	if chain == "" {
		chain = types.ChainEth
	}

	key := c.abiCacheKey(name, chain)

	c.lock.Lock()
	cached, ok := c.abiCache.Get(key)
	c.lock.Unlock()
	if ok {
		return cached.(*types.ContractData), nil
	}

	if c.db != nil {
		abi, address, err := c.db.LoadAbi(key)
		if err != nil {
			log.Warnf("Failed to load abi of %s from db, err = %v", name, err)
		} else if abi != "" {
			data := &types.ContractData{Abi: abi, Address: address}
			c.cacheAbi(key, data)
			return data, nil
		}
	}

	path := "/v3/get-contract-abi/" + url.PathEscape(string(name))
	if chain != types.ChainEth {
		path += "?chain=" + url.QueryEscape(string(chain))
	}

	data := &types.ContractData{}
	if err := c.get(ctx, path, data); err != nil {
		return nil, fmt.Errorf("could not fetch contract %s: %w", name, err)
	}

	c.cacheAbi(key, data)
	if c.db != nil {
		if err := c.db.SaveAbi(key, data.Abi, data.Address); err != nil {
			log.Warnf("Failed to save abi of %s, err = %v", name, err)
		}
	}

	return data, nil
}

func (c *DefaultClient) cacheAbi(key string, data *types.ContractData) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.abiCache.Add(key, data)
}

func (c *DefaultClient) Authenticate(ctx context.Context, address, signature string) (*types.AuthResponse, error) {
	ret := &types.AuthResponse{}
	err := c.post(ctx, "/v3/authenticate", "", map[string]string{
		"address":   address,
		"signature": signature,
	}, ret)

	return ret, err
}

func (c *DefaultClient) Register(ctx context.Context, address, signature, email, username string) (*types.AuthResponse, error) {
	body := map[string]string{
		"address":   address,
		"signature": signature,
	}
	if email != "" {
		body["email"] = email
	}
	if username != "" {
		body["username"] = username
	}

	ret := &types.AuthResponse{}
	err := c.post(ctx, "/v3/register", "", body, ret)

	return ret, err
}

func (c *DefaultClient) CancelSale(ctx context.Context, token string, req *CancelSaleRequest) (*types.ArgsResponse, error) {
	ret := &types.ArgsResponse{}
	err := c.post(ctx, "/v3/cancel-sale", token, req, ret)

	return ret, err
}

func (c *DefaultClient) AddVendor(ctx context.Context, token, vendorAddress, crateId string) (*types.ArgsResponse, error) {
	ret := &types.ArgsResponse{}
	err := c.post(ctx, "/v3/add-vendor", token, map[string]string{
		"vendorAddress": vendorAddress,
		"crateId":       crateId,
	}, ret)

	return ret, err
}

func (c *DefaultClient) AddBeneficiary(ctx context.Context, token, crateId, address, commission string) (*types.ArgsResponse, error) {
	ret := &types.ArgsResponse{}
	err := c.post(ctx, "/v3/add-beneficiary", token, map[string]string{
		"crateId":    crateId,
		"address":    address,
		"commission": commission,
	}, ret)

	return ret, err
}

func (c *DefaultClient) RemoveBeneficiary(ctx context.Context, token, beneficiaryAddress, crateId string) (*types.ArgsResponse, error) {
	ret := &types.ArgsResponse{}
	err := c.post(ctx, "/v3/remove-beneficiary", token, map[string]string{
		"beneficiaryAddress": beneficiaryAddress,
		"crateId":            crateId,
	}, ret)

	return ret, err
}

func (c *DefaultClient) UpdateBeneficiaryCommission(ctx context.Context, token, address, commission, crateId string) (*types.ArgsResponse, error) {
	ret := &types.ArgsResponse{}
	err := c.post(ctx, "/v3/update-beneficiary-commission", token, map[string]string{
		"address":    address,
		"commission": commission,
		"crateId":    crateId,
	}, ret)

	return ret, err
}

func (c *DefaultClient) Purchase(ctx context.Context, saleId string) (*types.PurchaseResponse, error) {
	ret := &types.PurchaseResponse{}
	err := c.post(ctx, "/v4/purchase", "", map[string]string{"saleId": saleId}, ret)

	return ret, err
}

func (c *DefaultClient) PurchaseErc1155(ctx context.Context, resaleItemId, sender string) (*types.PurchaseResponse, error) {
	ret := &types.PurchaseResponse{}
	err := c.post(ctx, "/v3/1155/purchase", "", map[string]string{
		"resaleItemId": resaleItemId,
		"sender":       sender,
	}, ret)

	return ret, err
}

func (c *DefaultClient) Sell(ctx context.Context, token string, req *types.SellRequest) (json.RawMessage, error) {
	var ret json.RawMessage
	err := c.post(ctx, "/v4/sell", token, req, &ret)

	return ret, err
}

// GetClaimArgs returns the args of a staking claim. A non empty amount withdraws that amount.
func (c *DefaultClient) GetClaimArgs(ctx context.Context, address, tokenId, amount string) (*types.ArgsResponse, error) {
	path := fmt.Sprintf("/v3/claim/%s/%s", url.PathEscape(address), url.PathEscape(tokenId))
	if amount != "" {
		path += "?amount=" + url.QueryEscape(amount)
	}

	ret := &types.ArgsResponse{}
	err := c.get(ctx, path, ret)

	return ret, err
}

func (c *DefaultClient) GetStakedTokens(ctx context.Context, address string) (*types.StakedTokensResponse, error) {
	ret := &types.StakedTokensResponse{}
	err := c.get(ctx, "/v3/staked-tokens/"+url.PathEscape(address), ret)

	return ret, err
}

func (c *DefaultClient) GetTokenStake(ctx context.Context, address, tokenId string) (string, error) {
	ret := &types.TokenStakeResponse{}
	err := c.get(ctx, fmt.Sprintf("/v3/stake/%s/%s", url.PathEscape(address), url.PathEscape(tokenId)), ret)

	return ret.Balance, err
}

func (c *DefaultClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Cache-Control", "no-cache")

	return c.do(req, out)
}

func (c *DefaultClient) post(ctx context.Context, path, token string, body, out interface{}) error {
	bz, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+path, bytes.NewReader(bz))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.do(req, out)
}

func (c *DefaultClient) do(req *http.Request, out interface{}) error {
	bz, err := c.http.Get(req)
	if err != nil {
		return err
	}

	if out == nil || len(bz) == 0 {
		return nil
	}

	return json.Unmarshal(bz, out)
}
