package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/btcsuite/btclog"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/w1r2p1/coinium/wallet"
)

func main() {
	listenAddr := flag.String("listen", ":8080", "coordinator listen address")
	walletURI := flag.String("wallet", wallet.DefaultEndpoint, "wallet server host[:port]")
	rpcUser := flag.String("rpcuser", os.Getenv("COINIUM_RPCUSER"), "wallet rpc username")
	rpcPass := flag.String("rpcpass", os.Getenv("COINIUM_RPCPASS"), "wallet rpc password")
	netName := flag.String("net", "testnet3", "bitcoin network (mainnet, testnet3, regtest, simnet)")
	noTLS := flag.Bool("notls", false, "connect to the wallet server without TLS")
	debugLevel := flag.String("debuglevel", "info", "wallet client log level")
	flag.Parse()

	// wire the wallet package logger
	backend := btclog.NewBackend(os.Stdout)
	logger := backend.Logger("WLLT")
	if level, ok := btclog.LevelFromString(*debugLevel); ok {
		logger.SetLevel(level)
	}
	wallet.UseLogger(logger)

	// build the immutable wallet client config
	config := wallet.NewConfig(*walletURI, *rpcUser, *rpcPass)
	config.Params = *netName
	config.DisableTLS = *noTLS
	if !*noTLS {
		pem, err := os.ReadFile(config.CertPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read wallet server TLS certificate %s: %v\n",
				config.CertPath, err)
			os.Exit(1)
		}
		config.Certificates = pem
	}

	client, err := wallet.New(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create wallet client: %v\n", err)
		os.Exit(1)
	}
	logger.Infof("Using wallet server %s on %s", config.ServerURI, config.Params)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	api := &coordinatorAPI{wallet: client}
	api.register(e)
	e.Logger.Fatal(e.Start(*listenAddr))
}
