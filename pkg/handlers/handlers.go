package handlers

import (
	"github.com/chris/escrow-wallet/pkg/api"
	"github.com/chris/escrow-wallet/pkg/handlers/contracts"
	"github.com/chris/escrow-wallet/pkg/handlers/ledger"
	"github.com/chris/escrow-wallet/pkg/handlers/transactions"
	"github.com/chris/escrow-wallet/pkg/handlers/wallets"
)

// ApiHandler implements the generated server interface by composing the
// resource handlers.
type ApiHandler struct {
	*wallets.WalletsHandler
	*transactions.TransactionsHandler
	*ledger.LedgerHandler
	*contracts.ContractsHandler
}

// NewApiHandler creates a new ApiHandler.
func NewApiHandler(w *wallets.WalletsHandler, t *transactions.TransactionsHandler, l *ledger.LedgerHandler, c *contracts.ContractsHandler) *ApiHandler {
	return &ApiHandler{
		WalletsHandler:      w,
		TransactionsHandler: t,
		LedgerHandler:       l,
		ContractsHandler:    c,
	}
}

// Make sure we conform to the interface
var _ api.ServerInterface = (*ApiHandler)(nil)
