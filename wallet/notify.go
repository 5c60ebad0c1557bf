package wallet

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/websocket"
)

var (
	// ErrInvalidAuth is an error to describe the condition where the
	// notifier is either unable to authenticate or the specified endpoint
	// is incorrect.
	ErrInvalidAuth = errors.New("authentication failure")

	// ErrInvalidEndpoint is an error to describe the condition where the
	// websocket handshake failed with the specified endpoint.
	ErrInvalidEndpoint = errors.New("the endpoint either does not support " +
		"websockets or does not exist")
)

// NotificationHandlers holds the callbacks invoked when the wallet server
// pushes a notification.  Any callback may be nil, in which case the
// notification is dropped.  Callbacks run on the notifier's read goroutine
// and must not block.
type NotificationHandlers struct {
	// OnBlockConnected is invoked when a block is connected to the chain
	// the wallet follows.
	OnBlockConnected func(hash string, height int32)

	// OnTxAccepted is invoked when a transaction is accepted into the
	// memory pool.
	OnTxAccepted func(txid string, amount btcutil.Amount)

	// OnUnknownNotification is invoked for any notification method not
	// handled above.
	OnUnknownNotification func(method string, params []json.RawMessage)
}

// rawNotification is a partially-unmarshaled JSON-RPC notification.
// Notifications are requests with no id.
type rawNotification struct {
	ID     *float64          `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// Notifier maintains a websocket connection to the wallet server and
// dispatches incoming notifications to the registered handlers.  It does
// not reconnect: when the connection drops the read loop ends and the
// caller decides whether to start a new notifier.
type Notifier struct {
	config   *Config
	handlers NotificationHandlers
	wsConn   *websocket.Conn

	shutdown  chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// dial opens a websocket connection to the wallet server based on the
// config, passing the HTTP Basic credentials with the handshake.
func dial(config *Config) (*websocket.Conn, error) {
	// configure tls
	var tlsConfig *tls.Config
	scheme := "wss"
	if config.DisableTLS {
		scheme = "ws"
	} else if len(config.Certificates) > 0 {
		pool := x509.NewCertPool()
		pool.AppendCertsFromPEM(config.Certificates)
		tlsConfig = &tls.Config{RootCAs: pool}
	}
	dialer := websocket.Dialer{TLSClientConfig: tlsConfig}
	// rpc auth
	user, pass, err := config.GetAuth()
	if err != nil {
		return nil, err
	}
	login := user + ":" + pass
	auth := "Basic " + base64.StdEncoding.EncodeToString([]byte(login))
	requestHeader := make(http.Header)
	requestHeader.Add("Authorization", auth)

	// dial
	url := fmt.Sprintf("%s://%s/%s", scheme, config.ServerURI, config.WsEndpoint)
	wsConn, resp, err := dialer.Dial(url, requestHeader)
	if err != nil {
		// check error details
		if err != websocket.ErrBadHandshake || resp == nil {
			return nil, err
		}
		// check for error codes
		if resp.StatusCode == http.StatusUnauthorized ||
			resp.StatusCode == http.StatusForbidden {
			return nil, ErrInvalidAuth
		}
		// (a) connection was authenticated
		// (b) websocket handshake still failed...
		// something is wrong with the server websocket endpoint.
		if resp.StatusCode == http.StatusOK {
			return nil, ErrInvalidEndpoint
		}
		// unknown error
		return nil, errors.New(resp.Status)
	}
	return wsConn, nil
}

// NewNotifier connects to the wallet server websocket endpoint and starts
// dispatching notifications to the passed handlers.
func NewNotifier(config *Config, handlers *NotificationHandlers) (*Notifier, error) {
	wsConn, err := dial(config)
	if err != nil {
		return nil, err
	}
	n := &Notifier{
		config:   config,
		wsConn:   wsConn,
		shutdown: make(chan struct{}),
	}
	if handlers != nil {
		n.handlers = *handlers
	}
	log.Infof("Established notification connection to %s", config.ServerURI)
	n.wg.Add(1)
	go n.wsInHandler()
	return n, nil
}

// Shutdown closes the websocket connection and stops the dispatch loop.  It
// blocks until the loop has drained.
func (n *Notifier) Shutdown() {
	n.closeOnce.Do(func() {
		log.Tracef("Shutting down notifier for %s", n.config.ServerURI)
		close(n.shutdown)
		n.wsConn.Close()
	})
	n.wg.Wait()
}

// WaitForShutdown blocks until the dispatch loop has ended, either by
// Shutdown or by the server closing the connection.
func (n *Notifier) WaitForShutdown() {
	n.wg.Wait()
}

// wsInHandler handles all incoming messages for the websocket connection
// associated with the notifier.
// NOTE this must be run as a goroutine
func (n *Notifier) wsInHandler() {
out:
	for {
		// break out of the loop once the shutdown channel has been
		// closed.  Use a non-blocking select here so we fall through
		// otherwise.
		select {
		case <-n.shutdown:
			break out
		default:
		}
		// read the message
		_, msg, err := n.wsConn.ReadMessage()
		if err != nil {
			// log the error if its not due to disconnection
			if n.shouldLogReadError(err) {
				log.Errorf("Websocket receive error from %s: %v",
					n.config.ServerURI, err)
			}
			break out
		}
		// handle the message
		n.handleMessage(msg)
	}
	// ensure the connection is closed
	n.wsConn.Close()
	n.wg.Done()
	log.Tracef("Notification handler for %s done", n.config.ServerURI)
}

// handleMessage is the main handler for incoming notifications.  Replies
// with an id are unexpected on this connection and are dropped.
func (n *Notifier) handleMessage(msg []byte) {
	var ntfn rawNotification
	if err := json.Unmarshal(msg, &ntfn); err != nil {
		log.Errorf("Remote server sent invalid message: %v", err)
		return
	}
	// JSON-RPC 1.0 notifications are requests with no ID
	if ntfn.ID != nil {
		log.Warnf("Received unexpected reply for id %v", *ntfn.ID)
		return
	}
	if ntfn.Method == "" {
		log.Errorf("Malformed notification: missing method")
		return
	}
	// params are not optional: nil isn't valid (but len == 0 is)
	if ntfn.Params == nil {
		log.Warnf("Malformed notification: missing parameters")
		return
	}
	log.Tracef("Received notification [%s]", ntfn.Method)

	switch ntfn.Method {
	case "blockconnected":
		if n.handlers.OnBlockConnected == nil {
			return
		}
		var hash string
		var height int32
		if len(ntfn.Params) < 2 ||
			json.Unmarshal(ntfn.Params[0], &hash) != nil ||
			json.Unmarshal(ntfn.Params[1], &height) != nil {
			log.Warnf("Malformed blockconnected notification")
			return
		}
		n.handlers.OnBlockConnected(hash, height)

	case "txaccepted":
		if n.handlers.OnTxAccepted == nil {
			return
		}
		var txid string
		var btc float64
		if len(ntfn.Params) < 2 ||
			json.Unmarshal(ntfn.Params[0], &txid) != nil ||
			json.Unmarshal(ntfn.Params[1], &btc) != nil {
			log.Warnf("Malformed txaccepted notification")
			return
		}
		amount, err := btcutil.NewAmount(btc)
		if err != nil {
			log.Warnf("Malformed txaccepted notification: %v", err)
			return
		}
		n.handlers.OnTxAccepted(txid, amount)

	default:
		if n.handlers.OnUnknownNotification != nil {
			n.handlers.OnUnknownNotification(ntfn.Method, ntfn.Params)
			return
		}
		log.Debugf("Ignoring notification [%s]", ntfn.Method)
	}
}

// shouldLogReadError returns whether or not the passed error from the
// websocket should be logged.  This is used to prevent spamming the logs in
// the case of a shutdown or disconnect.
func (n *Notifier) shouldLogReadError(err error) bool {
	// no logging when the connection is being forcibly disconnected
	select {
	case <-n.shutdown:
		return false
	default:
	}
	// no logging when the connection has been disconnected
	if err == io.EOF {
		return false
	}
	if opErr, ok := err.(*net.OpError); ok && !opErr.Temporary() {
		return false
	}

	return true
}
