package main

import (
	"errors"
	"net/http"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/labstack/echo/v4"

	"github.com/w1r2p1/coinium/wallet"
)

// coordinatorAPI exposes the pool wallet operations over HTTP for the rest
// of the coordinator.  It is a thin layer: every handler is one wallet call
// plus a status mapping for classified failures.
type coordinatorAPI struct {
	wallet *wallet.Client
}

func (api *coordinatorAPI) register(e *echo.Echo) {
	e.GET("/health", api.health)
	e.GET("/wallet/balance", api.balance)
	e.GET("/wallet/address", api.newAddress)
	e.GET("/wallet/unspent", api.unspent)
	e.POST("/wallet/payout", api.payout)
}

type payoutRequest struct {
	Address string  `json:"address"`
	Amount  float64 `json:"amount"`
}

type payoutResponse struct {
	TxID string `json:"txid"`
}

func (api *coordinatorAPI) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (api *coordinatorAPI) balance(c echo.Context) error {
	balance, err := api.wallet.GetBalance()
	if err != nil {
		return walletErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]float64{"balance": balance.ToBTC()})
}

func (api *coordinatorAPI) newAddress(c echo.Context) error {
	addr, err := api.wallet.GetNewAddress()
	if err != nil {
		return walletErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"address": addr.EncodeAddress()})
}

func (api *coordinatorAPI) unspent(c echo.Context) error {
	unspent, err := api.wallet.ListUnspent()
	if err != nil {
		return walletErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, unspent)
}

func (api *coordinatorAPI) payout(c echo.Context) error {
	var req payoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	amount, err := btcutil.NewAmount(req.Amount)
	if err != nil || amount <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payout amount")
	}
	hash, err := api.wallet.SendToAddress(req.Address, amount)
	if err != nil {
		return walletErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, payoutResponse{TxID: hash.String()})
}

// walletErrorResponse maps a classified wallet failure to an HTTP status
// for the coordinator's own callers.  Transport problems read as gateway
// failures; a wallet-level rejection carries the server's error code
// through.
func walletErrorResponse(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, wallet.ErrConnectionFailed):
		status = http.StatusGatewayTimeout
	case errors.Is(err, wallet.ErrServerExecution),
		errors.Is(err, wallet.ErrUnknownTransport),
		errors.Is(err, wallet.ErrDeserialization),
		errors.Is(err, wallet.ErrRPC):
		status = http.StatusBadGateway
	}
	body := map[string]any{"error": err.Error()}
	var rpcErr *btcjson.RPCError
	if errors.As(err, &rpcErr) {
		body["code"] = int(rpcErr.Code)
	}
	return c.JSON(status, body)
}
