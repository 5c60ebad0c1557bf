package wallet

import (
	"fmt"
	"path/filepath"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
)

const (
	// DefaultDir is the application directory the default TLS certificate
	// is looked up in.
	DefaultDir = "coinium"

	// DefaultRPCCert is the file name of the wallet server TLS
	// certificate inside the application directory.
	DefaultRPCCert = "rpc.cert"

	// DefaultEndpoint is the wallet server address used when none is
	// configured.
	DefaultEndpoint = "127.0.0.1:18332"
)

// Config holds the connection details for the wallet server.  It is built
// once, shared read-only by every call made through a client, and must not
// be modified after it has been handed to New.
type Config struct {
	// ServerURI is the host[:port] of the wallet server.  The scheme is
	// derived from DisableTLS.
	ServerURI string

	// RpcUser and RpcPass are the HTTP Basic credentials sent with every
	// request.
	RpcUser string
	RpcPass string

	// Params names the bitcoin network the wallet server is running on,
	// i.e. mainnet, testnet3, regtest or simnet.
	Params string

	// DisableTLS specifies the connection uses plain HTTP.
	DisableTLS bool

	// Certificates holds the PEM encoded cert chain used for the TLS
	// connection.  No effect if the DisableTLS param is true.
	Certificates []byte

	// CertPath is where the server certificate is expected on disk when
	// Certificates is not populated directly.
	CertPath string

	// WsEndpoint is the path of the wallet server websocket endpoint
	// used for notifications.
	WsEndpoint string
}

// NewConfig returns a Config pointed at the passed wallet server with the
// passed credentials and defaults for everything else.
func NewConfig(serverURI, rpcUser, rpcPass string) *Config {
	if serverURI == "" {
		serverURI = DefaultEndpoint
	}
	certPath := filepath.Join(btcutil.AppDataDir(DefaultDir, false), DefaultRPCCert)
	return &Config{
		ServerURI:  serverURI,
		RpcUser:    rpcUser,
		RpcPass:    rpcPass,
		Params:     chaincfg.TestNet3Params.Name,
		CertPath:   certPath,
		WsEndpoint: "ws",
	}
}

// GetAuth returns the values that are required for JSON-RPC authentication.
func (config *Config) GetAuth() (username string, passphrase string, err error) {
	// TODO cookie auth not yet implemented, these are required
	return config.RpcUser, config.RpcPass, nil
}

// walletURL returns the full URL RPC requests are posted to.
func (config *Config) walletURL() string {
	protocol := "https"
	if config.DisableTLS {
		protocol = "http"
	}
	return protocol + "://" + config.ServerURI
}

// netParams resolves the configured network name to its chain parameters.
// The default network is mainnet.
func (config *Config) netParams() (*chaincfg.Params, error) {
	switch config.Params {
	case "":
		fallthrough
	case chaincfg.MainNetParams.Name:
		return &chaincfg.MainNetParams, nil
	case chaincfg.TestNet3Params.Name:
		return &chaincfg.TestNet3Params, nil
	case chaincfg.RegressionNetParams.Name:
		return &chaincfg.RegressionNetParams, nil
	case chaincfg.SimNetParams.Name:
		return &chaincfg.SimNetParams, nil
	default:
		return nil, fmt.Errorf("wallet.New: unknown chain %s", config.Params)
	}
}
