package ddb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Raghvendrath3/conceptForge/internal/domain"
	"github.com/Raghvendrath3/conceptForge/internal/repository"
)

// stubAPI answers every call with the configured error and records inputs.
type stubAPI struct {
	err      error
	getItem  map[string]types.AttributeValue
	puts     []*dynamodb.PutItemInput
	transact []*dynamodb.TransactWriteItemsInput
}

func (s *stubAPI) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return &dynamodb.GetItemOutput{Item: s.getItem}, s.err
}

func (s *stubAPI) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	s.puts = append(s.puts, in)
	return &dynamodb.PutItemOutput{}, s.err
}

func (s *stubAPI) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	return &dynamodb.DeleteItemOutput{}, s.err
}

func (s *stubAPI) Query(ctx context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	return &dynamodb.QueryOutput{}, s.err
}

func (s *stubAPI) TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	s.transact = append(s.transact, in)
	return &dynamodb.TransactWriteItemsOutput{}, s.err
}

func (s *stubAPI) DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	return &dynamodb.DescribeTableOutput{}, s.err
}

var ts = time.Date(2025, 2, 3, 4, 5, 6, 7000, time.UTC)

func TestNodeCodec(t *testing.T) {
	n := &domain.Node{
		ID: "n1", OwnerID: "u1", Title: "Promises", Body: "then/catch",
		Type: domain.NodeTypeConcept, Tags: []string{"js", "async"}, Version: 3,
		CreatedAt: ts, UpdatedAt: ts.Add(time.Hour),
	}

	item := toDDBNode(n)
	assert.Equal(t, "USER#u1", item.PK)
	assert.Equal(t, "NODE#n1", item.SK)
	assert.Equal(t, n, item.toDomain())
}

func TestCardCodec(t *testing.T) {
	c := &domain.Flashcard{
		ID: "c1", NodeID: "n1", OwnerID: "u1", Question: "Q", Answer: "A",
		Ease: 2.36, Interval: 15, DueAt: ts, Revision: 4, CreatedAt: ts, UpdatedAt: ts,
	}

	item := toDDBCard(c)
	assert.Equal(t, "CARD#c1", item.SK)
	assert.Equal(t, c, item.toDomain())
}

func TestEdgeCodec(t *testing.T) {
	e := &domain.Edge{ID: "e1", OwnerID: "u1", From: "a", To: "b", Label: domain.EdgeLabelPartOf, CreatedAt: ts}

	item := toDDBEdge(e)
	assert.Equal(t, "EDGE#e1", item.SK)
	assert.Equal(t, e, item.toDomain())
	assert.Equal(t, "PAIR#a#b", pairSK("a", "b"))
}

func TestIsConditionFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"conditional check", &types.ConditionalCheckFailedException{}, true},
		{"wrapped", errors.Join(errors.New("ctx"), &types.ConditionalCheckFailedException{}), true},
		{"transaction with condition", &types.TransactionCanceledException{
			CancellationReasons: []types.CancellationReason{{Code: aws.String("None")}, {Code: aws.String("ConditionalCheckFailed")}},
		}, true},
		{"transaction throttled", &types.TransactionCanceledException{
			CancellationReasons: []types.CancellationReason{{Code: aws.String("ThrottlingError")}},
		}, false},
		{"other", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isConditionFailure(tt.err))
		})
	}
}

func TestUpdateNode_ConditionFailures(t *testing.T) {
	ctx := context.Background()
	n := &domain.Node{ID: "n1", OwnerID: "u1", Title: "T", Type: domain.NodeTypeNote, Version: 3}

	t.Run("missing item is not found", func(t *testing.T) {
		s := New(&stubAPI{err: &types.ConditionalCheckFailedException{}}, "table")
		err := s.UpdateNode(ctx, n, 2)
		assert.True(t, repository.IsNotFound(err))
	})

	t.Run("stale version is a conflict", func(t *testing.T) {
		api := &stubAPI{err: &types.ConditionalCheckFailedException{
			Item: map[string]types.AttributeValue{"Version": &types.AttributeValueMemberN{Value: "5"}},
		}}
		s := New(api, "table")
		err := s.UpdateNode(ctx, n, 2)
		require.True(t, repository.IsConflict(err))
		assert.Contains(t, err.Error(), "expected version 2, found 5")

		require.Len(t, api.puts, 1)
		assert.Contains(t, aws.ToString(api.puts[0].ConditionExpression), "attribute_exists")
	})
}

func TestCreateEdge_DuplicatePair(t *testing.T) {
	api := &stubAPI{err: &types.TransactionCanceledException{
		CancellationReasons: []types.CancellationReason{{Code: aws.String("None")}, {Code: aws.String("ConditionalCheckFailed")}},
	}}
	s := New(api, "table")
	e := &domain.Edge{ID: "e1", OwnerID: "u1", From: "a", To: "b", Label: domain.EdgeLabelRelated, CreatedAt: ts}

	err := s.CreateEdge(context.Background(), e)

	assert.True(t, repository.IsConflict(err))
	require.Len(t, api.transact, 1)
	assert.Len(t, api.transact[0].TransactItems, 2)
}

func TestFindNodeByID_Missing(t *testing.T) {
	s := New(&stubAPI{}, "table")
	_, err := s.FindNodeByID(context.Background(), "u1", "nope")
	assert.True(t, repository.IsNotFound(err))
}
