package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/escrow-wallet/pkg/models"
	"github.com/chris/escrow-wallet/pkg/storage"
)

// Commit writes the whole unit of work with a single TransactWriteItems call.
// Every entity write is conditioned on the version it was read at, so a
// concurrent writer makes the whole call fail with storage.ErrConflict.
func (s *Store) Commit(ctx context.Context, uow *storage.UnitOfWork) error {
	if uow.Len() == 0 {
		return nil
	}
	if uow.Len() > storage.MaxUnitOfWorkItems {
		return fmt.Errorf("%w: %d", storage.ErrTooManyItems, uow.Len())
	}

	items, err := s.buildItems(uow)
	if err != nil {
		return err
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	}
	if uow.Token != "" {
		input.ClientRequestToken = aws.String(uow.Token)
	}

	_, err = s.Client.TransactWriteItems(ctx, input)
	if err != nil {
		return mapTransactError(err)
	}

	uow.Committed()
	return nil
}

func (s *Store) buildItems(uow *storage.UnitOfWork) ([]types.TransactWriteItem, error) {
	items := make([]types.TransactWriteItem, 0, uow.Len())

	for _, w := range uow.Wallets {
		if w.Balance < 0 && !w.Frozen {
			return nil, fmt.Errorf("%w: wallet %s would go negative", models.ErrInvariantViolation, w.UserId)
		}
		next := w.Clone()
		if next.Version == 0 {
			next.CreatedAt = uow.Now
		}
		next.Version = w.Version + 1
		next.UpdatedAt = uow.Now
		av, err := attributevalue.MarshalMap(next)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal wallet: %w", err)
		}
		items = append(items, types.TransactWriteItem{Put: s.walletPut(w, av)})
	}

	for _, c := range uow.Contracts {
		next := c.Clone()
		if next.Version == 0 {
			next.CreatedAt = uow.Now
		}
		next.Version = c.Version + 1
		next.UpdatedAt = uow.Now
		av, err := attributevalue.MarshalMap(next)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal contract: %w", err)
		}
		items = append(items, types.TransactWriteItem{Put: versionedPut(s.ContractsTableName, c.Version, av)})
	}

	for _, m := range uow.Milestones {
		next := m.Clone()
		if next.Version == 0 {
			next.CreatedAt = uow.Now
		}
		next.Version = m.Version + 1
		next.UpdatedAt = uow.Now
		av, err := attributevalue.MarshalMap(next)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal milestone: %w", err)
		}
		items = append(items, types.TransactWriteItem{Put: versionedPut(s.MilestonesTableName, m.Version, av)})
	}

	for _, tx := range uow.NewTransactions {
		av, err := marshalTransaction(tx)
		if err != nil {
			return nil, err
		}
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName:           aws.String(s.TransactionsTableName),
				Item:                av,
				ConditionExpression: aws.String("attribute_not_exists(id)"),
			},
		})
	}

	nowAV := timestampAV(uow.Now)
	for _, sc := range uow.StatusChanges {
		items = append(items, types.TransactWriteItem{
			Update: &types.Update{
				TableName: aws.String(s.TransactionsTableName),
				Key: map[string]types.AttributeValue{
					"id": &types.AttributeValueMemberS{Value: sc.TransactionID},
				},
				UpdateExpression:    aws.String("SET #status = :to, updated_at = :now"),
				ConditionExpression: aws.String("#status = :from"),
				ExpressionAttributeNames: map[string]string{
					"#status": "status",
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":to":   &types.AttributeValueMemberS{Value: string(sc.To)},
					":from": &types.AttributeValueMemberS{Value: string(sc.From)},
					":now":  nowAV,
				},
			},
		})
	}

	return items, nil
}

// mapTransactError turns a cancelled transaction into the storage sentinels.
func mapTransactError(err error) error {
	var tce *types.TransactionCanceledException
	if errors.As(err, &tce) {
		for _, reason := range tce.CancellationReasons {
			if reason.Code == nil {
				continue
			}
			switch *reason.Code {
			case "ConditionalCheckFailed", "TransactionConflict":
				return fmt.Errorf("%w: %s", storage.ErrConflict, aws.ToString(tce.Message))
			}
		}
		return fmt.Errorf("failed to execute transaction: %w", err)
	}

	var inProgress *types.TransactionInProgressException
	if errors.As(err, &inProgress) {
		return fmt.Errorf("%w: %s", storage.ErrConflict, inProgress.ErrorMessage())
	}

	var mismatch *types.IdempotentParameterMismatchException
	if errors.As(err, &mismatch) {
		return fmt.Errorf("%w: %s", models.ErrIdempotencyConflict, mismatch.ErrorMessage())
	}

	return fmt.Errorf("failed to execute transaction: %w", err)
}
