package dynamodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/escrow-wallet/pkg/models"
	"github.com/chris/escrow-wallet/pkg/storage"
	"github.com/chris/escrow-wallet/pkg/storage/dynamodb/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGetTransaction(t *testing.T) {
	txID := uuid.New().String()
	tx := models.Transaction{
		Id:       txID,
		WalletId: "w1",
		UserId:   "user1",
		Amount:   500,
		Currency: "inr",
		Type:     models.TransactionCredit,
		Provider: models.ProviderGateway,
		Status:   models.TransactionInitiated,
	}

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		txAV, _ := attributevalue.MarshalMap(tx)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.GetItemOutput{Item: txAV}, nil)

		store := New(mockClient, testTables)
		got, err := store.GetTransaction(context.Background(), txID)

		assert.NoError(t, err)
		assert.Equal(t, models.TransactionCredit, got.Type)
		assert.Equal(t, int64(500), got.Amount)
		mockClient.AssertExpectations(t)
	})

	t.Run("Not Found", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.GetItemOutput{}, nil)

		store := New(mockClient, testTables)
		_, err := store.GetTransaction(context.Background(), txID)

		assert.ErrorIs(t, err, models.ErrNotFound)
		mockClient.AssertExpectations(t)
	})

	t.Run("By Provider Payment ID", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		txAV, _ := attributevalue.MarshalMap(tx)
		mockClient.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
			return *in.IndexName == providerPaymentIDIndex
		})).Once().Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{txAV}}, nil)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.GetItemOutput{Item: txAV}, nil)

		store := New(mockClient, testTables)
		got, err := store.GetTransactionByProviderPaymentID(context.Background(), "pi_123")

		assert.NoError(t, err)
		assert.Equal(t, txID, got.Id)
		mockClient.AssertExpectations(t)
	})

	t.Run("By Provider Payment ID Not Found", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("Query", mock.Anything, mock.Anything).Once().Return(&dynamodb.QueryOutput{}, nil)

		store := New(mockClient, testTables)
		_, err := store.GetTransactionByProviderPaymentID(context.Background(), "pi_123")

		assert.ErrorIs(t, err, models.ErrNotFound)
		mockClient.AssertExpectations(t)
	})
}

func TestListTransactions(t *testing.T) {
	t.Run("Uses Wallet Index Newest First", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		a, _ := attributevalue.MarshalMap(models.Transaction{Id: "a", WalletId: "w1", RelatedContract: "c1"})
		b, _ := attributevalue.MarshalMap(models.Transaction{Id: "b", WalletId: "w1"})

		mockClient.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
			return *in.IndexName == walletIDIndex && !*in.ScanIndexForward && in.ExpressionAttributeNames["#key"] == "wallet_id"
		})).Once().Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{a, b}}, nil)

		store := New(mockClient, testTables)
		txs, err := store.ListTransactions(context.Background(), storage.TransactionFilter{WalletID: "w1", ContractID: "c1"})

		require.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Equal(t, "a", txs[0].Id)
		mockClient.AssertExpectations(t)
	})

	t.Run("Requires A Key", func(t *testing.T) {
		store := New(new(mocks.DynamoDBAPI), testTables)
		_, err := store.ListTransactions(context.Background(), storage.TransactionFilter{})
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("Query Fails", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("Query", mock.Anything, mock.Anything).Return(nil, errors.New("query failed"))

		store := New(mockClient, testTables)
		_, err := store.ListTransactions(context.Background(), storage.TransactionFilter{UserID: "user1"})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to query transactions by user_id")
	})
}

func TestGetStaleTransactions(t *testing.T) {
	mockClient := new(mocks.DynamoDBAPI)
	stale, _ := attributevalue.MarshalMap(models.Transaction{Id: "t1", Status: models.TransactionInitiated, CreatedAt: time.Now().Add(-time.Hour)})

	mockClient.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		status, ok := in.ExpressionAttributeValues[":status"].(*types.AttributeValueMemberS)
		return *in.IndexName == statusIndex && ok && status.Value == "initiated"
	})).Once().Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{stale}}, nil)

	store := New(mockClient, testTables)
	txs, err := store.GetStaleTransactions(context.Background(), models.TransactionInitiated, 30*time.Minute)

	assert.NoError(t, err)
	assert.Len(t, txs, 1)
	mockClient.AssertExpectations(t)
}

func TestTransactionTimestampsSortAsStrings(t *testing.T) {
	whole := time.Date(2024, 3, 1, 12, 0, 5, 0, time.UTC)
	half := whole.Add(500 * time.Millisecond)

	a, err := marshalTransaction(models.Transaction{Id: "t1", CreatedAt: whole, UpdatedAt: whole})
	require.NoError(t, err)
	b, err := marshalTransaction(models.Transaction{Id: "t2", CreatedAt: half, UpdatedAt: half})
	require.NoError(t, err)

	first := a["created_at"].(*types.AttributeValueMemberS).Value
	second := b["created_at"].(*types.AttributeValueMemberS).Value
	assert.Equal(t, "2024-03-01T12:00:05.000000000Z", first)
	assert.Less(t, first, second)

	var decoded models.Transaction
	require.NoError(t, attributevalue.UnmarshalMap(b, &decoded))
	assert.True(t, half.Equal(decoded.CreatedAt))
}
