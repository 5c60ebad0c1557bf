package wallet

import (
	"encoding/json"
	"net/http"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btclog"
	"github.com/davecgh/go-spew/spew"
)

// Client is a JSON-RPC client for the wallet server.  It handles the
// conversion of request/response types to the underlying JSON envelopes
// expected by the server.
//
// A Client is safe for concurrent use: the only shared state is the
// read-only config and the stateless http client, and every call opens its
// own connection.
type Client struct {
	config *Config
	// chainParams hold metadata related to the bitcoin network in use
	chainParams *chaincfg.Params
	httpClient  *http.Client
}

// New creates an RPC client based on the config.
func New(config *Config) (*Client, error) {
	chainParams, err := config.netParams()
	if err != nil {
		return nil, err
	}
	return &Client{
		config:      config,
		chainParams: chainParams,
		httpClient:  newHTTPClient(config),
	}, nil
}

// ChainParams returns the parameters of the bitcoin network the client is
// configured for.
func (c *Client) ChainParams() *chaincfg.Params {
	return c.chainParams
}

// Call invokes the passed method on the wallet server with the passed
// positional arguments and decodes the result field of the response into T.
//
// The call is atomic from the caller's point of view: it either yields a
// fully decoded result or exactly one classified *Error.  A response whose
// error field is set is never treated as a success, regardless of what the
// result field holds.  No retries are performed at this layer.
func Call[T any](c *Client, method string, args ...any) (T, error) {
	var noResult T
	req, err := newRequest(method, args)
	if err != nil {
		return noResult, err
	}
	marshalledJSON, err := json.Marshal(req)
	if err != nil {
		return noResult, makeError(ErrUnknownTransport,
			"failed to marshal request for "+method, err)
	}
	log.Tracef("Sending command [%s] to %s", method, c.config.ServerURI)
	respBytes, err := c.sendPostRequest(marshalledJSON)
	if err != nil {
		return noResult, err
	}
	resp, err := decodeResponse[T](respBytes)
	if err != nil {
		return noResult, err
	}
	// a populated error attribute always wins over the result
	if resp.Error != nil {
		log.Debugf("Command [%s] rejected by server: %v", method, resp.Error)
		return noResult, makeError(ErrRPC,
			"wallet server returned an error for "+method, resp.Error)
	}
	if log.Level() <= btclog.LevelTrace {
		log.Tracef("Received response for [%s]: %s", method,
			spew.Sdump(resp.Result))
	}
	return resp.Result, nil
}
