package repository

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// mockDynamo is a small in-memory stand-in for DynamoDB used in unit tests.
// Items are stored per table keyed by primary key value. It understands only
// the expressions this package actually issues.
type mockDynamo struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]types.AttributeValue

	transactCalls int
	queryCalls    int
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{
		tables: map[string]map[string]map[string]types.AttributeValue{},
	}
}

func (m *mockDynamo) ensureTable(tbl string) {
	if _, ok := m.tables[tbl]; !ok {
		m.tables[tbl] = map[string]map[string]types.AttributeValue{}
	}
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

func (m *mockDynamo) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	table := *params.TableName
	m.ensureTable(table)

	pk, err := itemPK(params.Item)
	if err != nil {
		return nil, err
	}

	if params.ConditionExpression != nil && strings.HasPrefix(*params.ConditionExpression, "attribute_not_exists") {
		if _, exists := m.tables[table][pk]; exists {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}

	m.tables[table][pk] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDynamo) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	table := *params.TableName
	m.ensureTable(table)

	pk, err := itemPK(params.Key)
	if err != nil {
		return nil, err
	}

	item, ok := m.tables[table][pk]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: item}, nil
}

// Query emulates the customer GSI: it resolves the key condition "#x = :y"
// and optional "#a IN (:b, :c)" filter through the expression name/value
// maps, then sorts matches by created_at descending.
func (m *mockDynamo) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryCalls++

	table := *params.TableName
	m.ensureTable(table)

	parts := strings.Split(*params.KeyConditionExpression, " = ")
	if len(parts) != 2 {
		return nil, errors.New("unsupported key condition")
	}
	keyName := params.ExpressionAttributeNames[strings.TrimSpace(parts[0])]
	keyValue := params.ExpressionAttributeValues[strings.TrimSpace(parts[1])].(*types.AttributeValueMemberS).Value

	var allowedStatuses []string
	var statusAttr string
	if params.FilterExpression != nil {
		expr := *params.FilterExpression
		inIdx := strings.Index(expr, " IN (")
		if inIdx < 0 {
			return nil, errors.New("unsupported filter expression")
		}
		statusAttr = params.ExpressionAttributeNames[strings.TrimSpace(expr[:inIdx])]
		for _, ph := range strings.Split(strings.TrimSuffix(expr[inIdx+len(" IN ("):], ")"), ",") {
			v := params.ExpressionAttributeValues[strings.TrimSpace(ph)]
			allowedStatuses = append(allowedStatuses, v.(*types.AttributeValueMemberS).Value)
		}
	}

	var matches []map[string]types.AttributeValue
	for _, item := range m.tables[table] {
		attr, ok := item[keyName]
		if !ok || attr.(*types.AttributeValueMemberS).Value != keyValue {
			continue
		}
		matches = append(matches, item)
	}

	sort.Slice(matches, func(i, j int) bool {
		a := matches[i]["created_at"].(*types.AttributeValueMemberS).Value
		b := matches[j]["created_at"].(*types.AttributeValueMemberS).Value
		return a > b
	})

	// resume after the key of the previous page
	if startKey := params.ExclusiveStartKey; len(startKey) > 0 {
		startID := startKey["order_id"].(*types.AttributeValueMemberS).Value
		for i, item := range matches {
			if item["order_id"].(*types.AttributeValueMemberS).Value == startID {
				matches = matches[i+1:]
				break
			}
		}
	}

	// DynamoDB applies Limit to index items read BEFORE the filter expression
	// runs, and reports LastEvaluatedKey when the index has more items.
	page := matches
	var lastEvaluatedKey map[string]types.AttributeValue
	if params.Limit != nil && len(matches) > int(*params.Limit) {
		page = matches[:int(*params.Limit)]
		last := page[len(page)-1]
		lastEvaluatedKey = map[string]types.AttributeValue{
			"order_id":       last["order_id"],
			"customer_fb_id": last["customer_fb_id"],
			"created_at":     last["created_at"],
		}
	}

	var filtered []map[string]types.AttributeValue
	for _, item := range page {
		if statusAttr != "" {
			status, ok := item[statusAttr].(*types.AttributeValueMemberS)
			if !ok {
				continue
			}
			allowed := false
			for _, s := range allowedStatuses {
				if status.Value == s {
					allowed = true
					break
				}
			}
			if !allowed {
				continue
			}
		}
		filtered = append(filtered, item)
	}

	return &dynamodb.QueryOutput{Items: filtered, LastEvaluatedKey: lastEvaluatedKey}, nil
}

// TransactWriteItems validates every condition before applying anything so
// the mock keeps DynamoDB's all-or-nothing contract.
func (m *mockDynamo) TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactCalls++

	for _, it := range params.TransactItems {
		if u := it.Update; u != nil {
			table := *u.TableName
			m.ensureTable(table)

			pk, err := itemPK(u.Key)
			if err != nil {
				return nil, err
			}
			item, exists := m.tables[table][pk]
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
			table := *u.TableName
			pk, _ := itemPK(u.Key)
			item := m.tables[table][pk]
			if v, ok := u.ExpressionAttributeValues[":s"]; ok {
				item["sizes"] = v
			}
			if v, ok := u.ExpressionAttributeValues[":a"]; ok {
				item["available_amount"] = v
			}
			if v, ok := u.ExpressionAttributeValues[":ua"]; ok {
				item["updated_at"] = v
			}
			m.tables[table][pk] = item
		}
		if p := it.Put; p != nil {
			table := *p.TableName
			m.ensureTable(table)
			pk, err := itemPK(p.Item)
			if err != nil {
				return nil, err
			}
			m.tables[table][pk] = p.Item
		}
	}

	return &dynamodb.TransactWriteItemsOutput{}, nil
}
