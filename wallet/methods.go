package wallet

import (
	"encoding/json"
	"fmt"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// GetBalance returns the spendable balance of the wallet.
func (c *Client) GetBalance() (btcutil.Amount, error) {
	balance, err := Call[float64](c, "getbalance")
	if err != nil {
		return 0, err
	}
	amount, err := btcutil.NewAmount(balance)
	if err != nil {
		return 0, makeError(ErrDeserialization,
			fmt.Sprintf("invalid balance %v from wallet server", balance), err)
	}
	return amount, nil
}

// GetNewAddress returns a fresh payment address from the wallet, decoded
// against the configured network.
func (c *Client) GetNewAddress() (btcutil.Address, error) {
	addrStr, err := Call[string](c, "getnewaddress")
	if err != nil {
		return nil, err
	}
	addr, err := btcutil.DecodeAddress(addrStr, c.chainParams)
	if err != nil {
		return nil, makeError(ErrDeserialization,
			fmt.Sprintf("invalid address %q from wallet server", addrStr), err)
	}
	return addr, nil
}

// SendToAddress sends the passed amount to the passed address and returns
// the hash of the resulting transaction.
func (c *Client) SendToAddress(address string, amount btcutil.Amount) (*chainhash.Hash, error) {
	txid, err := Call[string](c, "sendtoaddress", address, amount.ToBTC())
	if err != nil {
		return nil, err
	}
	hash, err := chainhash.NewHashFromStr(txid)
	if err != nil {
		return nil, makeError(ErrDeserialization,
			fmt.Sprintf("invalid txid %q from wallet server", txid), err)
	}
	return hash, nil
}

// ListUnspent returns all unspent transaction outputs known to the wallet.
func (c *Client) ListUnspent() ([]btcjson.ListUnspentResult, error) {
	return Call[[]btcjson.ListUnspentResult](c, "listunspent")
}

// GetBestBlockHash returns the hash of the best block in the chain the
// wallet is synced to.
func (c *Client) GetBestBlockHash() (*chainhash.Hash, error) {
	hashStr, err := Call[string](c, "getbestblockhash")
	if err != nil {
		return nil, err
	}
	hash, err := chainhash.NewHashFromStr(hashStr)
	if err != nil {
		return nil, makeError(ErrDeserialization,
			fmt.Sprintf("invalid block hash %q from wallet server", hashStr), err)
	}
	return hash, nil
}

// WalletPassphrase unlocks the wallet with the passed passphrase for
// timeoutSecs seconds.
func (c *Client) WalletPassphrase(passphrase string, timeoutSecs int64) error {
	_, err := Call[json.RawMessage](c, "walletpassphrase", passphrase, timeoutSecs)
	return err
}
