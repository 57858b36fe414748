package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"github.com/12344-munna/order-handler/internal/domain"
)

const (
	productsTable = "products"
	ordersTable   = "orders"
)

// mockDynamo stores items per table keyed by primary key. It supports the
// calls ConfirmOrder and the lookups issue: GetItem, TransactWriteItems with
// conditioned updates, and the customer GSI query.
type mockDynamo struct {
	tables map[string]map[string]map[string]types.AttributeValue
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{
		tables: map[string]map[string]map[string]types.AttributeValue{
			productsTable: {},
			ordersTable:   {},
		},
	}
}

func (m *mockDynamo) seedProduct(t *testing.T, product domain.Product) {
	t.Helper()
	item, err := attributevalue.MarshalMap(product)
	require.NoError(t, err)
	m.tables[productsTable][product.ProductCode] = item
}

func (m *mockDynamo) product(t *testing.T, code string) domain.Product {
	t.Helper()
	item, ok := m.tables[productsTable][code]
	require.True(t, ok, "product %s missing", code)
	var product domain.Product
	require.NoError(t, attributevalue.UnmarshalMap(item, &product))
	return product
}

func (m *mockDynamo) orders(t *testing.T) []domain.PendingOrder {
	t.Helper()
	var out []domain.PendingOrder
	for _, item := range m.tables[ordersTable] {
		var order domain.PendingOrder
		require.NoError(t, attributevalue.UnmarshalMap(item, &order))
		out = append(out, order)
	}
	return out
}

func itemPK(item map[string]types.AttributeValue) (string, error) {
	if v, ok := item["product_code"]; ok {
		return v.(*types.AttributeValueMemberS).Value, nil
	}
	if v, ok := item["order_id"]; ok {
		return v.(*types.AttributeValueMemberS).Value, nil
	}
	return "", errors.New("no primary key in item")
}

func (m *mockDynamo) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	pk, err := itemPK(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.tables[*params.TableName][pk]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: item}, nil
}

func (m *mockDynamo) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	pk, err := itemPK(params.Item)
	if err != nil {
		return nil, err
	}
	if params.ConditionExpression != nil && strings.HasPrefix(*params.ConditionExpression, "attribute_not_exists") {
		if _, exists := m.tables[*params.TableName][pk]; exists {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	m.tables[*params.TableName][pk] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

// Query is only exercised by the no-result tracking path here; the full
// index emulation lives with the repository tests.
func (m *mockDynamo) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	return &dynamodb.QueryOutput{}, nil
}

func (m *mockDynamo) TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	for _, it := range params.TransactItems {
		if u := it.Update; u != nil {
			pk, err := itemPK(u.Key)
			if err != nil {
				return nil, err
			}
			item, exists := m.tables[*u.TableName][pk]
			if !exists {
				return nil, &types.TransactionCanceledException{}
			}
			if u.ConditionExpression != nil && *u.ConditionExpression == "available_amount = :prev" {
				current, ok := item["available_amount"].(*types.AttributeValueMemberN)
				expected := u.ExpressionAttributeValues[":prev"].(*types.AttributeValueMemberN)
				if !ok || current.Value != expected.Value {
					return nil, &types.TransactionCanceledException{}
				}
			}
		}
	}

	for _, it := range params.TransactItems {
		if u := it.Update; u != nil {
			pk, _ := itemPK(u.Key)
			item := m.tables[*u.TableName][pk]
			if v, ok := u.ExpressionAttributeValues[":s"]; ok {
				item["sizes"] = v
			}
			if v, ok := u.ExpressionAttributeValues[":a"]; ok {
				item["available_amount"] = v
			}
			if v, ok := u.ExpressionAttributeValues[":ua"]; ok {
				item["updated_at"] = v
			}
		}
		if p := it.Put; p != nil {
			pk, err := itemPK(p.Item)
			if err != nil {
				return nil, err
			}
			m.tables[*p.TableName][pk] = p.Item
		}
	}

	return &dynamodb.TransactWriteItemsOutput{}, nil
}
