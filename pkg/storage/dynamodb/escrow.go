package dynamodb

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/escrow-wallet/pkg/models"
)

// GetContract retrieves a contract by its ID.
func (s *Store) GetContract(ctx context.Context, contractID string) (*models.Contract, error) {
	var contract models.Contract
	if err := s.getByID(ctx, s.ContractsTableName, contractID, &contract); err != nil {
		return nil, fmt.Errorf("contract %s: %w", contractID, err)
	}
	return &contract, nil
}

// GetMilestone retrieves a milestone by its ID.
func (s *Store) GetMilestone(ctx context.Context, milestoneID string) (*models.Milestone, error) {
	var milestone models.Milestone
	if err := s.getByID(ctx, s.MilestonesTableName, milestoneID, &milestone); err != nil {
		return nil, fmt.Errorf("milestone %s: %w", milestoneID, err)
	}
	return &milestone, nil
}

// ListMilestones returns the milestones of a contract ordered as the contract
// lists them. They are read by key with strongly consistent reads; the
// coordinator decides payouts from their statuses.
func (s *Store) ListMilestones(ctx context.Context, contractID string) ([]models.Milestone, error) {
	contract, err := s.GetContract(ctx, contractID)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.Milestone, len(contract.MilestoneIds))
	for start := 0; start < len(contract.MilestoneIds); start += maxBatchGetKeys {
		end := min(start+maxBatchGetKeys, len(contract.MilestoneIds))
		keys := make([]map[string]types.AttributeValue, 0, end-start)
		for _, id := range contract.MilestoneIds[start:end] {
			keys = append(keys, map[string]types.AttributeValue{
				"id": &types.AttributeValueMemberS{Value: id},
			})
		}

		request := map[string]types.KeysAndAttributes{
			s.MilestonesTableName: {Keys: keys, ConsistentRead: aws.Bool(true)},
		}
		for attempt := 0; len(request) > 0; attempt++ {
			if attempt == maxBatchGetAttempts {
				return nil, fmt.Errorf("milestones of contract %s: unprocessed keys after %d attempts", contractID, attempt)
			}
			result, err := s.Client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{RequestItems: request})
			if err != nil {
				return nil, fmt.Errorf("failed to get milestones: %w", err)
			}

			var page []models.Milestone
			if err := attributevalue.UnmarshalListOfMaps(result.Responses[s.MilestonesTableName], &page); err != nil {
				return nil, fmt.Errorf("failed to unmarshal milestones: %w", err)
			}
			for _, m := range page {
				byID[m.Id] = m
			}
			request = result.UnprocessedKeys
		}
	}

	milestones := make([]models.Milestone, 0, len(byID))
	for _, id := range contract.MilestoneIds {
		m, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("milestone %s of contract %s: %w", id, contractID, models.ErrNotFound)
		}
		milestones = append(milestones, m)
	}
	return milestones, nil
}

// ListContracts merges the contracts userID is a client on with the ones they
// are the freelancer on. With no userID the table is scanned. The indexes are
// eventually consistent, so a contract opened a moment ago may be missing.
func (s *Store) ListContracts(ctx context.Context, userID string) ([]models.Contract, error) {
	var contracts []models.Contract
	if userID == "" {
		all, err := s.scanContracts(ctx)
		if err != nil {
			return nil, err
		}
		contracts = all
	} else {
		seen := make(map[string]bool)
		for _, idx := range []struct{ index, attr string }{
			{contractClientIndex, "client_id"},
			{contractFreelancerIndex, "freelancer_id"},
		} {
			page, err := s.queryContracts(ctx, &dynamodb.QueryInput{
				TableName:              aws.String(s.ContractsTableName),
				IndexName:              aws.String(idx.index),
				KeyConditionExpression: aws.String("#key = :value"),
				ExpressionAttributeNames: map[string]string{
					"#key": idx.attr,
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":value": &types.AttributeValueMemberS{Value: userID},
				},
			})
			if err != nil {
				return nil, fmt.Errorf("failed to query contracts by %s: %w", idx.attr, err)
			}
			for _, c := range page {
				if !seen[c.Id] {
					seen[c.Id] = true
					contracts = append(contracts, c)
				}
			}
		}
	}

	sort.SliceStable(contracts, func(i, j int) bool {
		return contracts[i].CreatedAt.After(contracts[j].CreatedAt)
	})
	return contracts, nil
}

func (s *Store) queryContracts(ctx context.Context, input *dynamodb.QueryInput) ([]models.Contract, error) {
	var contracts []models.Contract
	for {
		result, err := s.Client.Query(ctx, input)
		if err != nil {
			return nil, err
		}
		var page []models.Contract
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal contracts: %w", err)
		}
		contracts = append(contracts, page...)

		if len(result.LastEvaluatedKey) == 0 {
			return contracts, nil
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}
}

func (s *Store) scanContracts(ctx context.Context) ([]models.Contract, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(s.ContractsTableName),
	}

	var contracts []models.Contract
	for {
		result, err := s.Client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contracts table: %w", err)
		}
		var page []models.Contract
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal contracts: %w", err)
		}
		contracts = append(contracts, page...)

		if len(result.LastEvaluatedKey) == 0 {
			return contracts, nil
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}
}

func (s *Store) getByID(ctx context.Context, table, id string, out interface{}) error {
	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to get item from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return models.ErrNotFound
	}
	if err := attributevalue.UnmarshalMap(result.Item, out); err != nil {
		return fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return nil
}

// versionedPut builds a conditional write of an id-keyed entity staged at version.
func versionedPut(table string, version int64, item map[string]types.AttributeValue) *types.Put {
	put := &types.Put{
		TableName: aws.String(table),
		Item:      item,
	}
	if version == 0 {
		put.ConditionExpression = aws.String("attribute_not_exists(id)")
		return put
	}
	put.ConditionExpression = aws.String("version = :version")
	put.ExpressionAttributeValues = map[string]types.AttributeValue{
		":version": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", version)},
	}
	return put
}
