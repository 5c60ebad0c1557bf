package wallet

import (
	"encoding/json"
	"fmt"

	"github.com/btcsuite/btcd/btcjson"
)

// requestID is the id attached to every outgoing request.  The client never
// has more than one request in flight per connection, so responses need no
// correlation and a constant id suffices.
const requestID = 1

// rpcRequest is the JSON-RPC request envelope sent to the wallet server.
// Params are positional and their order is preserved exactly as supplied by
// the caller, since it is semantically significant to the remote method.
type rpcRequest struct {
	ID     uint64 `json:"id"`
	Method string `json:"method"`
	Params []any  `json:"params"`
}

// newRequest builds a request envelope for the passed method and positional
// arguments.  It fails with ErrInvalidMethod before any I/O takes place when
// the method name is empty.
func newRequest(method string, params []any) (*rpcRequest, error) {
	if method == "" {
		return nil, makeError(ErrInvalidMethod,
			"request method may not be empty", nil)
	}
	if params == nil {
		params = []any{}
	}
	return &rpcRequest{
		ID:     requestID,
		Method: method,
		Params: params,
	}, nil
}

// response is a partially-typed JSON-RPC response envelope.  The result
// field is decoded directly into the type the caller asked for; the error
// field, when non-null, is authoritative regardless of what result holds.
type response[T any] struct {
	ID     uint64            `json:"id"`
	Result T                 `json:"result"`
	Error  *btcjson.RPCError `json:"error"`
}

// decodeResponse deserializes the raw response body into a response
// envelope with a result of type T.  A body that is not well-formed JSON or
// does not match the envelope shape fails with ErrDeserialization carrying
// both the parse error and the offending text.
func decodeResponse[T any](body []byte) (*response[T], error) {
	var resp response[T]
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, makeError(ErrDeserialization,
			fmt.Sprintf("malformed response from wallet server: %q", body),
			err)
	}
	return &resp, nil
}
