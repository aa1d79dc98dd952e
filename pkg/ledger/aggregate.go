package ledger

import (
	"context"
	"fmt"
	"sort"

	"github.com/chris/escrow-wallet/pkg/models"
	"github.com/chris/escrow-wallet/pkg/storage"
)

// GroupBy is the transaction field an aggregate is grouped by.
type GroupBy string

const (
	GroupByStatus   GroupBy = "status"
	GroupByType     GroupBy = "type"
	GroupByProvider GroupBy = "provider"
	GroupByCurrency GroupBy = "currency"
)

func (g GroupBy) Valid() bool {
	switch g {
	case GroupByStatus, GroupByType, GroupByProvider, GroupByCurrency:
		return true
	}
	return false
}

// Group is one row of an aggregate.
type Group struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
	Total int64  `json:"total"`
}

// Aggregate sums and counts the transactions matching filter per group. Every
// known value of the grouping field is reported, with zeros when empty. An
// empty filter aggregates the whole ledger.
func (s *Service) Aggregate(ctx context.Context, groupBy GroupBy, filter storage.TransactionFilter) ([]Group, error) {
	if !groupBy.Valid() {
		return nil, fmt.Errorf("%w: cannot group by %q", models.ErrValidation, groupBy)
	}

	var txs []models.Transaction
	var err error
	if filter.Empty() {
		txs, err = s.Store.ScanTransactions(ctx)
	} else {
		txs, err = s.Store.ListTransactions(ctx, filter)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	keys := s.groupKeys(groupBy)
	rows := make(map[string]*Group, len(keys))
	for _, k := range keys {
		rows[k] = &Group{Key: k}
	}

	var extra []string
	for i := range txs {
		k := groupKey(groupBy, &txs[i])
		row, ok := rows[k]
		if !ok {
			row = &Group{Key: k}
			rows[k] = row
			extra = append(extra, k)
		}
		row.Count++
		row.Total += txs[i].Amount
	}
	sort.Strings(extra)

	out := make([]Group, 0, len(rows))
	for _, k := range append(keys, extra...) {
		out = append(out, *rows[k])
	}
	return out, nil
}

func (s *Service) groupKeys(groupBy GroupBy) []string {
	var keys []string
	switch groupBy {
	case GroupByStatus:
		for _, v := range models.TransactionStatuses {
			keys = append(keys, string(v))
		}
	case GroupByType:
		for _, v := range models.TransactionTypes {
			keys = append(keys, string(v))
		}
	case GroupByProvider:
		for _, v := range models.Providers {
			keys = append(keys, string(v))
		}
	case GroupByCurrency:
		if s.Wallets != nil && s.Wallets.Currency != "" {
			keys = append(keys, s.Wallets.Currency)
		}
	}
	return keys
}

func groupKey(groupBy GroupBy, tx *models.Transaction) string {
	switch groupBy {
	case GroupByStatus:
		return string(tx.Status)
	case GroupByType:
		return string(tx.Type)
	case GroupByProvider:
		return string(tx.Provider)
	case GroupByCurrency:
		return tx.Currency
	}
	return ""
}
