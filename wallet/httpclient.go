package wallet

// * THANKS TO THE AUTHORS OF BTCSUITE - SPECIFIC INSPIRATION FOR THIS FILE FROM btcd/cmd/btcctl
import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// requestTimeout bounds the full round trip of a single RPC call: connect,
// write and read.  A call that exceeds it surfaces as ErrConnectionFailed.
const requestTimeout = 2000 * time.Millisecond

// newHTTPClient returns an http client configured for one-shot POST
// requests to the wallet server based on the passed config.
func newHTTPClient(config *Config) *http.Client {
	// configure tls
	var tlsConfig *tls.Config
	if !config.DisableTLS && len(config.Certificates) > 0 {
		pool := x509.NewCertPool()
		pool.AppendCertsFromPEM(config.Certificates)
		tlsConfig = &tls.Config{
			RootCAs: pool,
		}
	}
	// no connection reuse: every call owns its connection end to end
	return &http.Client{
		Timeout: requestTimeout,
		Transport: &http.Transport{
			DisableKeepAlives: true,
			TLSClientConfig:   tlsConfig,
		},
	}
}

// sendPostRequest sends the marshalled JSON-RPC request to the wallet
// server and returns the raw response body.  Every failure path is
// classified here: errors completing the exchange map to
// ErrConnectionFailed, an internal server error status maps to
// ErrServerExecution, and any other non-2xx status or read fault maps to
// ErrUnknownTransport.  The original cause is always kept.
func (c *Client) sendPostRequest(marshalledJSON []byte) ([]byte, error) {
	url := c.config.walletURL()
	bodyReader := bytes.NewReader(marshalledJSON)
	httpRequest, err := http.NewRequest(http.MethodPost, url, bodyReader)
	if err != nil {
		return nil, makeError(ErrConnectionFailed,
			"failed to create request for "+url, err)
	}
	httpRequest.Close = true
	// set headers
	httpRequest.Header.Set("Content-Type", "application/json-rpc")
	user, pass, err := c.config.GetAuth()
	if err != nil {
		return nil, makeError(ErrConnectionFailed,
			"failed to load rpc credentials", err)
	}
	httpRequest.SetBasicAuth(user, pass)

	// send the request
	httpResponse, err := c.httpClient.Do(httpRequest)
	if err != nil {
		return nil, makeError(ErrConnectionFailed,
			"failed to complete request to "+url, err)
	}
	// finalize request reading and handling
	respBytes, err := io.ReadAll(httpResponse.Body)
	httpResponse.Body.Close()
	if err != nil {
		return nil, makeError(ErrUnknownTransport,
			"failed to read response from "+url, err)
	}
	// check for error codes
	if httpResponse.StatusCode < 200 || httpResponse.StatusCode >= 300 {
		statusErr := fmt.Errorf("%d %s", httpResponse.StatusCode,
			http.StatusText(httpResponse.StatusCode))
		desc := "wallet server returned " + statusErr.Error()
		// the server may have written a textual reason into the body
		if len(respBytes) > 0 {
			statusErr = errors.New(string(respBytes))
			desc = desc + ": " + string(respBytes)
		}
		if httpResponse.StatusCode == http.StatusInternalServerError {
			return nil, makeError(ErrServerExecution, desc, statusErr)
		}
		return nil, makeError(ErrUnknownTransport, desc, statusErr)
	}
	return respBytes, nil
}
