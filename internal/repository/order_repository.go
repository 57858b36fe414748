package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/12344-munna/order-handler/internal/domain"
)

// ErrTransactionAborted signals that the store cancelled the confirmation
// transaction, e.g. because stock changed between read and write. The
// transaction leaves no partial writes behind.
var ErrTransactionAborted = errors.New("confirmation transaction aborted")

const customerIndexName = "customer_fb_id-created_at-index"

// StockUpdate carries the full post-decrement stock state for one product.
// PrevAvailableAmount pins the value read during validation; the write is
// conditioned on it so a concurrent decrement cancels the transaction.
type StockUpdate struct {
	ProductCode         string
	Sizes               map[string]int
	AvailableAmount     int
	PrevAvailableAmount int
}

type OrderRepository struct {
	client       DynamoDBAPI
	tableName    string
	productTable string
	nowFunc      func() time.Time
}

func NewOrderRepository(client DynamoDBAPI, tableName, productTable string) *OrderRepository {
	return &OrderRepository{
		client:       client,
		tableName:    tableName,
		productTable: productTable,
		nowFunc:      time.Now,
	}
}

// ConfirmOrder atomically applies every stock decrement and inserts the
// pending order in one TransactWriteItems call. Either all updates and the
// insert land, or none do.
func (r *OrderRepository) ConfirmOrder(ctx context.Context, order *domain.PendingOrder, updates []StockUpdate) error {
	now := r.nowFunc()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now

	orderItem, err := attributevalue.MarshalMap(order)
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}

	transactItems := make([]types.TransactWriteItem, 0, len(updates)+1)
	for _, u := range updates {
		sizesAV, err := attributevalue.Marshal(u.Sizes)
		if err != nil {
			return fmt.Errorf("failed to marshal sizes for %s: %w", u.ProductCode, err)
		}

		transactItems = append(transactItems, types.TransactWriteItem{
			Update: &types.Update{
				TableName: aws.String(r.productTable),
				Key: map[string]types.AttributeValue{
					"product_code": &types.AttributeValueMemberS{Value: u.ProductCode},
				},
				UpdateExpression:    aws.String("SET sizes = :s, available_amount = :a, updated_at = :ua"),
				ConditionExpression: aws.String("available_amount = :prev"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":s":    sizesAV,
					":a":    &types.AttributeValueMemberN{Value: strconv.Itoa(u.AvailableAmount)},
					":prev": &types.AttributeValueMemberN{Value: strconv.Itoa(u.PrevAvailableAmount)},
					":ua":   &types.AttributeValueMemberS{Value: now.UTC().Format(time.RFC3339)},
				},
			},
		})
	}

	transactItems = append(transactItems, types.TransactWriteItem{
		Put: &types.Put{
			TableName: aws.String(r.tableName),
			Item:      orderItem,
		},
	})

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: transactItems,
	})
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			return ErrTransactionAborted
		}
		return fmt.Errorf("transact write: %w", err)
	}

	return nil
}

// LatestTrackedOrder returns the customer's most recent order whose status is
// shipped or delivered, or (nil, nil) when there is none. DynamoDB applies
// Limit to index items before the status filter runs, so a page can come back
// empty while older shipped orders still exist; the query follows
// LastEvaluatedKey until a match surfaces or the index is exhausted.
func (r *OrderRepository) LatestTrackedOrder(ctx context.Context, customerFbID string) (*domain.PendingOrder, error) {
	keyCond := expression.Key("customer_fb_id").Equal(expression.Value(customerFbID))
	filter := expression.Name("status").In(
		expression.Value(domain.StatusShipped),
		expression.Value(domain.StatusDelivered),
	)

	expr, err := expression.NewBuilder().
		WithKeyCondition(keyCond).
		WithFilter(filter).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(customerIndexName),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
		Limit:                     aws.Int32(25),
	}

	for {
		result, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query orders: %w", err)
		}

		if len(result.Items) > 0 {
			var order domain.PendingOrder
			if err := attributevalue.UnmarshalMap(result.Items[0], &order); err != nil {
				return nil, fmt.Errorf("failed to unmarshal order: %w", err)
			}
			return &order, nil
		}

		if len(result.LastEvaluatedKey) == 0 {
			return nil, nil
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}
}
