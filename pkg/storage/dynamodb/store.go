package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/chris/escrow-wallet/pkg/storage"
)

// DynamoDBAPI is the subset of the DynamoDB client the store uses.
type DynamoDBAPI interface {
	BatchGetItem(ctx context.Context, params *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// Tables names the DynamoDB tables the store reads and writes.
type Tables struct {
	Wallets      string
	Transactions string
	Contracts    string
	Milestones   string
}

// Store implements the Storage interface using AWS DynamoDB.
type Store struct {
	Client                DynamoDBAPI
	WalletsTableName      string
	TransactionsTableName string
	ContractsTableName    string
	MilestonesTableName   string
}

// New creates a new Store.
func New(client DynamoDBAPI, tables Tables) *Store {
	return &Store{
		Client:                client,
		WalletsTableName:      tables.Wallets,
		TransactionsTableName: tables.Transactions,
		ContractsTableName:    tables.Contracts,
		MilestonesTableName:   tables.Milestones,
	}
}

// Make sure we conform to the interface
var _ storage.Storage = (*Store)(nil)

// Secondary indexes on the transactions and contracts tables. Every
// transaction index is sorted by created_at.
const (
	userIDIndex             = "user_id-created_at-index"
	walletIDIndex           = "wallet_id-created_at-index"
	contractIndex           = "related_contract-created_at-index"
	milestoneIndex          = "related_milestone-created_at-index"
	providerPaymentIDIndex  = "provider_payment_id-index"
	statusIndex             = "status-created_at-index"
	contractClientIndex     = "client_id-index"
	contractFreelancerIndex = "freelancer_id-index"
)

const (
	maxBatchGetKeys     = 100
	maxBatchGetAttempts = 5
)
