package wallet

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient returns a client pointed at an httptest server running the
// passed handler.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	config := NewConfig(strings.TrimPrefix(server.URL, "http://"), "pooluser", "poolpass")
	config.DisableTLS = true
	c, err := New(config)
	require.NoError(t, err)
	return c
}

// walletResponse returns a handler that answers every request with a
// well-formed envelope carrying the passed result JSON.
func walletResponse(result string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"id":1,"result":`+result+`,"error":null}`)
	}
}

func TestCallTypedResult(t *testing.T) {
	var gotBody []byte
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json-rpc", r.Header.Get("Content-Type"))
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "pooluser", user)
		assert.Equal(t, "poolpass", pass)
		gotBody, _ = io.ReadAll(r.Body)
		io.WriteString(w, `{"id":1,"result":42,"error":null}`)
	})

	balance, err := Call[int64](c, "getbalance")
	require.NoError(t, err)
	assert.Equal(t, int64(42), balance)
	assert.JSONEq(t, `{"id":1,"method":"getbalance","params":[]}`, string(gotBody))
}

// Positional arguments must reach the wire in the order they were given.
func TestCallParamOrder(t *testing.T) {
	var gotBody []byte
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		io.WriteString(w, `{"id":1,"result":null,"error":null}`)
	})

	_, err := Call[json.RawMessage](c, "sendmany", "default", 2, "comment")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"method":"sendmany","params":["default",2,"comment"]}`,
		string(gotBody))
}

// An empty method fails before any request is made.
func TestCallEmptyMethodNoIO(t *testing.T) {
	requests := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		io.WriteString(w, `{"id":1,"result":null,"error":null}`)
	})

	_, err := Call[json.RawMessage](c, "")
	assert.ErrorIs(t, err, ErrInvalidMethod)
	assert.Zero(t, requests)
}

func TestCallServerExecutionFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "wallet exploded", http.StatusInternalServerError)
	})

	_, err := Call[json.RawMessage](c, "getbalance")
	assert.ErrorIs(t, err, ErrServerExecution)
	assert.NotErrorIs(t, err, ErrUnknownTransport)
	// the server body is part of the cause
	assert.Contains(t, err.Error(), "wallet exploded")
}

func TestCallUnknownTransportStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := Call[json.RawMessage](c, "getbalance")
	assert.ErrorIs(t, err, ErrUnknownTransport)
	assert.Contains(t, err.Error(), "404")
}

func TestCallDeserializationFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "truncated gibberish")
	})

	_, err := Call[json.RawMessage](c, "getbalance")
	assert.ErrorIs(t, err, ErrDeserialization)
	assert.Contains(t, err.Error(), "truncated gibberish")
}

// A populated error attribute wins even when a result is present.
func TestCallRPCError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w,
			`{"id":1,"result":null,"error":{"code":-1,"message":"insufficient funds"}}`)
	})

	_, err := Call[json.RawMessage](c, "sendtoaddress")
	assert.ErrorIs(t, err, ErrRPC)

	var rpcErr *btcjson.RPCError
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, btcjson.RPCErrorCode(-1), rpcErr.Code)
	assert.Equal(t, "insufficient funds", rpcErr.Message)
}

// The error attribute is authoritative even when the envelope also carries
// a result.
func TestCallRPCErrorWinsOverResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w,
			`{"id":1,"result":42,"error":{"code":-32601,"message":"method not found"}}`)
	})

	result, err := Call[int64](c, "frobnicate")
	assert.ErrorIs(t, err, ErrRPC)
	assert.Zero(t, result)
}

// A stalled server surfaces as ErrConnectionFailed within the timeout
// instead of hanging.
func TestCallTimeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		io.WriteString(w, `{"id":1,"result":null,"error":null}`)
	})
	c.httpClient.Timeout = 50 * time.Millisecond

	start := time.Now()
	_, err := Call[json.RawMessage](c, "getbalance")
	assert.ErrorIs(t, err, ErrConnectionFailed)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestCallConnectionRefused(t *testing.T) {
	server := httptest.NewServer(walletResponse("null"))
	config := NewConfig(strings.TrimPrefix(server.URL, "http://"), "u", "p")
	config.DisableTLS = true
	c, err := New(config)
	require.NoError(t, err)
	server.Close()

	_, err = Call[json.RawMessage](c, "getbalance")
	assert.ErrorIs(t, err, ErrConnectionFailed)
}

// The same read-only call against unchanged remote state yields the same
// result both times.
func TestCallIdempotent(t *testing.T) {
	c := newTestClient(t, walletResponse("1.25"))

	first, err := Call[float64](c, "getbalance")
	require.NoError(t, err)
	second, err := Call[float64](c, "getbalance")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNewUnknownNetwork(t *testing.T) {
	config := NewConfig("127.0.0.1:18332", "u", "p")
	config.Params = "lunarnet"
	c, err := New(config)
	assert.Nil(t, c)
	assert.Error(t, err)
}
