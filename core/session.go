package core

import (
	"context"

	"github.com/cargo-build/cargo-sdk-go/chains/eth"
	"github.com/cargo-build/cargo-sdk-go/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/sisu-network/lib/log"
)

const SigningMessage = "Welcome. By signing this message you are verifying your digital identity. This is completely secure and doesn't cost anything!"

func (c *Cargo) loadToken(account common.Address) {
	token, err := c.db.LoadToken(account.Hex())
	if err != nil {
		log.Warnf("Failed to load session token of %s, err = %v", account.Hex(), err)
		return
	}

	c.lock.Lock()
	c.token = token
	c.lock.Unlock()
}

func (c *Cargo) Token() string {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.token
}

func (c *Cargo) IsAuthenticated() bool {
	return c.Token() != ""
}

// requireToken returns ErrAuthenticationRequired if there is no session token.
func (c *Cargo) requireToken() (string, error) {
	token := c.Token()
	if token == "" {
		return "", types.ErrAuthenticationRequired
	}

	return token, nil
}

// GetSignature returns the login signature of the current account. The wallet is only asked once per
// account.
func (c *Cargo) GetSignature(ctx context.Context) (string, error) {
	if err := c.requireProvider(ctx); err != nil {
		return "", err
	}

	account := c.account()
	sig, err := c.db.LoadSignature(account.Hex())
	if err != nil {
		log.Warnf("Failed to load signature of %s, err = %v", account.Hex(), err)
	}
	if sig != "" {
		return sig, nil
	}

	c.lock.RLock()
	wallet := c.wallet
	c.lock.RUnlock()

	bz, err := eth.Await(ctx, func(cb eth.Callback[[]byte]) {
		wallet.Sign(ctx, account, []byte(SigningMessage), cb)
	})
	if err != nil {
		return "", err
	}

	sig = hexutil.Encode(bz)
	if err := c.db.SaveSignature(account.Hex(), sig); err != nil {
		log.Warnf("Failed to save signature of %s, err = %v", account.Hex(), err)
	}

	return sig, nil
}

// Authenticate signs in with the login signature and keeps the session token.
func (c *Cargo) Authenticate(ctx context.Context) (string, error) {
	sig, err := c.GetSignature(ctx)
	if err != nil {
		return "", err
	}

	account := c.account()
	res, err := c.api.Authenticate(ctx, account.Hex(), sig)
	if err != nil {
		return "", err
	}

	c.setToken(account, res.Token)
	return res.Token, nil
}

func (c *Cargo) Register(ctx context.Context, email, username string) (string, error) {
	sig, err := c.GetSignature(ctx)
	if err != nil {
		return "", err
	}

	account := c.account()
	res, err := c.api.Register(ctx, account.Hex(), sig, email, username)
	if err != nil {
		return "", err
	}

	c.setToken(account, res.Token)
	return res.Token, nil
}

func (c *Cargo) setToken(account common.Address, token string) {
	c.lock.Lock()
	c.token = token
	c.lock.Unlock()

	if err := c.db.SaveToken(account.Hex(), token); err != nil {
		log.Warnf("Failed to save session token of %s, err = %v", account.Hex(), err)
	}
}

// Clear drops the session token and the login signature of the current account.
func (c *Cargo) Clear() error {
	c.lock.Lock()
	c.token = ""
	c.lock.Unlock()

	return c.db.ClearSession(c.account().Hex())
}
