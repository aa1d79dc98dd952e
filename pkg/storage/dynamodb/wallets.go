package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/escrow-wallet/pkg/models"
)

// GetWallet retrieves a user's wallet from DynamoDB by their user ID.
// The read is strongly consistent so the version used for the next write is current.
func (s *Store) GetWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal wallet user ID: %w", err)
	}

	input := &dynamodb.GetItemInput{
		TableName:      aws.String(s.WalletsTableName),
		Key:            key,
		ConsistentRead: aws.Bool(true),
	}

	result, err := s.Client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("wallet for user ID %s: %w", userID, models.ErrNotFound)
	}

	var wallet models.Wallet
	if err := attributevalue.UnmarshalMap(result.Item, &wallet); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wallet: %w", err)
	}

	return &wallet, nil
}

// ListWallets retrieves all wallets from DynamoDB.
func (s *Store) ListWallets(ctx context.Context) ([]models.Wallet, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(s.WalletsTableName),
	}

	var wallets []models.Wallet
	for {
		result, err := s.Client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wallets table: %w", err)
		}

		var page []models.Wallet
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal wallets: %w", err)
		}
		wallets = append(wallets, page...)

		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}

	return wallets, nil
}

// walletPut builds the conditional write of a wallet staged at version.
func (s *Store) walletPut(w *models.Wallet, item map[string]types.AttributeValue) *types.Put {
	put := &types.Put{
		TableName: aws.String(s.WalletsTableName),
		Item:      item,
	}
	if w.Version == 0 {
		put.ConditionExpression = aws.String("attribute_not_exists(user_id)")
		return put
	}
	put.ConditionExpression = aws.String("version = :version")
	put.ExpressionAttributeValues = map[string]types.AttributeValue{
		":version": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", w.Version)},
	}
	return put
}
