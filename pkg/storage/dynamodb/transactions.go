package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/escrow-wallet/pkg/models"
	"github.com/chris/escrow-wallet/pkg/storage"
)

// GetTransaction retrieves a single transaction by its ID.
func (s *Store) GetTransaction(ctx context.Context, txID string) (*models.Transaction, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(s.TransactionsTableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: txID},
		},
		ConsistentRead: aws.Bool(true),
	}

	result, err := s.Client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("transaction %s: %w", txID, models.ErrNotFound)
	}

	var tx models.Transaction
	if err := attributevalue.UnmarshalMap(result.Item, &tx); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transaction: %w", err)
	}

	return &tx, nil
}

// GetTransactionByProviderPaymentID looks a deposit up by its gateway payment id.
func (s *Store) GetTransactionByProviderPaymentID(ctx context.Context, providerPaymentID string) (*models.Transaction, error) {
	txs, err := s.query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.TransactionsTableName),
		IndexName:              aws.String(providerPaymentIDIndex),
		KeyConditionExpression: aws.String("provider_payment_id = :pid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pid": &types.AttributeValueMemberS{Value: providerPaymentID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions by payment id: %w", err)
	}
	if len(txs) == 0 {
		return nil, fmt.Errorf("transaction for payment %s: %w", providerPaymentID, models.ErrNotFound)
	}

	// The index is eventually consistent; re-read the item for its current status.
	return s.GetTransaction(ctx, txs[0].Id)
}

// ListTransactions queries the index matching the first key set on the filter
// and applies the remaining keys in memory. Results are newest first.
func (s *Store) ListTransactions(ctx context.Context, filter storage.TransactionFilter) ([]models.Transaction, error) {
	index, attr, value := "", "", ""
	switch {
	case filter.WalletID != "":
		index, attr, value = walletIDIndex, "wallet_id", filter.WalletID
	case filter.UserID != "":
		index, attr, value = userIDIndex, "user_id", filter.UserID
	case filter.ContractID != "":
		index, attr, value = contractIndex, "related_contract", filter.ContractID
	case filter.MilestoneID != "":
		index, attr, value = milestoneIndex, "related_milestone", filter.MilestoneID
	default:
		return nil, fmt.Errorf("%w: transaction filter requires a key", models.ErrValidation)
	}

	txs, err := s.query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.TransactionsTableName),
		IndexName:              aws.String(index),
		KeyConditionExpression: aws.String("#key = :value"),
		ExpressionAttributeNames: map[string]string{
			"#key": attr,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":value": &types.AttributeValueMemberS{Value: value},
		},
		ScanIndexForward: aws.Bool(false), // Sort by created_at in descending order
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions by %s: %w", attr, err)
	}

	filtered := txs[:0]
	for i := range txs {
		if filter.Matches(&txs[i]) {
			filtered = append(filtered, txs[i])
		}
	}
	return filtered, nil
}

// GetStaleTransactions returns the transactions that have sat in status for longer than maxAge.
func (s *Store) GetStaleTransactions(ctx context.Context, status models.TransactionStatus, maxAge time.Duration) ([]models.Transaction, error) {
	cutoffAV := timestampAV(time.Now().Add(-maxAge))

	txs, err := s.query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.TransactionsTableName),
		IndexName:              aws.String(statusIndex),
		KeyConditionExpression: aws.String("#status = :status AND created_at <= :cutoff"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(status)},
			":cutoff": cutoffAV,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query for stale transactions: %w", err)
	}
	return txs, nil
}

// ScanTransactions reads the whole transactions table.
func (s *Store) ScanTransactions(ctx context.Context) ([]models.Transaction, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(s.TransactionsTableName),
	}

	var txs []models.Transaction
	for {
		result, err := s.Client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transactions table: %w", err)
		}

		var page []models.Transaction
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal transactions: %w", err)
		}
		txs = append(txs, page...)

		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}
	return txs, nil
}

// query runs input to exhaustion, following LastEvaluatedKey.
func (s *Store) query(ctx context.Context, input *dynamodb.QueryInput) ([]models.Transaction, error) {
	var txs []models.Transaction
	for {
		result, err := s.Client.Query(ctx, input)
		if err != nil {
			return nil, err
		}

		var page []models.Transaction
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal transactions: %w", err)
		}
		txs = append(txs, page...)

		if len(result.LastEvaluatedKey) == 0 {
			return txs, nil
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}
}

// marshalTransaction stores the timestamps in a fixed-width layout. They are
// index sort keys and must order as strings the way they order in time.
func marshalTransaction(tx models.Transaction) (map[string]types.AttributeValue, error) {
	av, err := attributevalue.MarshalMap(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transaction: %w", err)
	}
	av["created_at"] = timestampAV(tx.CreatedAt)
	av["updated_at"] = timestampAV(tx.UpdatedAt)
	return av, nil
}

// timestampLayout is RFC 3339 in UTC with all nine fractional digits kept.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func timestampAV(t time.Time) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: t.UTC().Format(timestampLayout)}
}
