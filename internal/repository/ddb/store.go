// Package ddb implements the repository on a single DynamoDB table.
// This is the only layer that knows about DynamoDB specifics.
//
// Every item of an owner shares the partition key USER#<owner>; the sort key
// carries the entity: NODE#<id>, EDGE#<id>, CARD#<id> and PAIR#<from>#<to>
// for the one-edge-per-pair guard.
package ddb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/Raghvendrath3/conceptForge/internal/domain"
	"github.com/Raghvendrath3/conceptForge/internal/repository"
)

// API is the subset of the DynamoDB client the store uses.
type API interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, opts ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, opts ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, opts ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

const (
	skNode = "NODE#"
	skEdge = "EDGE#"
	skCard = "CARD#"
	skPair = "PAIR#"
)

func pk(ownerID string) string { return "USER#" + ownerID }

func pairSK(from, to string) string { return fmt.Sprintf("%s%s#%s", skPair, from, to) }

type ddbNode struct {
	PK        string   `dynamodbav:"PK"`
	SK        string   `dynamodbav:"SK"`
	NodeID    string   `dynamodbav:"NodeID"`
	OwnerID   string   `dynamodbav:"OwnerID"`
	Title     string   `dynamodbav:"Title"`
	Body      string   `dynamodbav:"Body"`
	Type      string   `dynamodbav:"Type"`
	Tags      []string `dynamodbav:"Tags"`
	Version   int      `dynamodbav:"Version"`
	CreatedAt string   `dynamodbav:"CreatedAt"`
	UpdatedAt string   `dynamodbav:"UpdatedAt"`
}

type ddbEdge struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	EdgeID    string `dynamodbav:"EdgeID"`
	OwnerID   string `dynamodbav:"OwnerID"`
	From      string `dynamodbav:"From"`
	To        string `dynamodbav:"To"`
	Label     string `dynamodbav:"Label"`
	CreatedAt string `dynamodbav:"CreatedAt"`
}

type ddbPair struct {
	PK     string `dynamodbav:"PK"`
	SK     string `dynamodbav:"SK"`
	EdgeID string `dynamodbav:"EdgeID"`
}

type ddbCard struct {
	PK        string  `dynamodbav:"PK"`
	SK        string  `dynamodbav:"SK"`
	CardID    string  `dynamodbav:"CardID"`
	NodeID    string  `dynamodbav:"NodeID"`
	OwnerID   string  `dynamodbav:"OwnerID"`
	Question  string  `dynamodbav:"Question"`
	Answer    string  `dynamodbav:"Answer"`
	Ease      float64 `dynamodbav:"Ease"`
	Interval  int     `dynamodbav:"Interval"`
	DueAt     string  `dynamodbav:"DueAt"`
	Revision  int     `dynamodbav:"Revision"`
	CreatedAt string  `dynamodbav:"CreatedAt"`
	UpdatedAt string  `dynamodbav:"UpdatedAt"`
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func toDDBNode(n *domain.Node) ddbNode {
	return ddbNode{
		PK: pk(n.OwnerID), SK: skNode + n.ID, NodeID: n.ID, OwnerID: n.OwnerID,
		Title: n.Title, Body: n.Body, Type: string(n.Type), Tags: n.Tags, Version: n.Version,
		CreatedAt: formatTime(n.CreatedAt), UpdatedAt: formatTime(n.UpdatedAt),
	}
}

func (d ddbNode) toDomain() *domain.Node {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return &domain.Node{
		ID: d.NodeID, OwnerID: d.OwnerID, Title: d.Title, Body: d.Body,
		Type: domain.NodeType(d.Type), Tags: tags, Version: d.Version,
		CreatedAt: parseTime(d.CreatedAt), UpdatedAt: parseTime(d.UpdatedAt),
	}
}

func toDDBEdge(e *domain.Edge) ddbEdge {
	return ddbEdge{
		PK: pk(e.OwnerID), SK: skEdge + e.ID, EdgeID: e.ID, OwnerID: e.OwnerID,
		From: e.From, To: e.To, Label: string(e.Label), CreatedAt: formatTime(e.CreatedAt),
	}
}

func (d ddbEdge) toDomain() *domain.Edge {
	return &domain.Edge{
		ID: d.EdgeID, OwnerID: d.OwnerID, From: d.From, To: d.To,
		Label: domain.EdgeLabel(d.Label), CreatedAt: parseTime(d.CreatedAt),
	}
}

func toDDBCard(c *domain.Flashcard) ddbCard {
	return ddbCard{
		PK: pk(c.OwnerID), SK: skCard + c.ID, CardID: c.ID, NodeID: c.NodeID, OwnerID: c.OwnerID,
		Question: c.Question, Answer: c.Answer, Ease: c.Ease, Interval: c.Interval,
		DueAt: formatTime(c.DueAt), Revision: c.Revision,
		CreatedAt: formatTime(c.CreatedAt), UpdatedAt: formatTime(c.UpdatedAt),
	}
}

func (d ddbCard) toDomain() *domain.Flashcard {
	return &domain.Flashcard{
		ID: d.CardID, NodeID: d.NodeID, OwnerID: d.OwnerID, Question: d.Question, Answer: d.Answer,
		Ease: d.Ease, Interval: d.Interval, DueAt: parseTime(d.DueAt), Revision: d.Revision,
		CreatedAt: parseTime(d.CreatedAt), UpdatedAt: parseTime(d.UpdatedAt),
	}
}

// Store is the DynamoDB repository.
type Store struct {
	client    API
	tableName string
}

var _ repository.Repository = (*Store)(nil)

// New creates a Store on tableName.
func New(client API, tableName string) *Store {
	return &Store{client: client, tableName: tableName}
}

func key(ownerID, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk(ownerID)},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}
}

// isConditionFailure reports whether err is a failed condition check, either
// from a single write or inside a cancelled transaction.
func isConditionFailure(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return true
	}
	var tce *types.TransactionCanceledException
	if errors.As(err, &tce) {
		for _, reason := range tce.CancellationReasons {
			if aws.ToString(reason.Code) == "ConditionalCheckFailed" {
				return true
			}
		}
		return false
	}
	var ae smithy.APIError
	if errors.As(err, &ae) {
		return ae.ErrorCode() == "ConditionalCheckFailedException"
	}
	return false
}

func (s *Store) putNew(ctx context.Context, item interface{}, resource, id string) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal %s item: %w", resource, err)
	}
	cond := expression.AttributeNotExists(expression.Name("PK"))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build condition: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(s.tableName),
		Item:                     av,
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		if isConditionFailure(err) {
			return repository.NewConflict(resource, id, "already exists")
		}
		return fmt.Errorf("failed to put %s: %w", resource, err)
	}
	return nil
}

// putVersioned overwrites an existing item only when versionAttr still
// holds expected.
func (s *Store) putVersioned(ctx context.Context, item interface{}, versionAttr string, expected int, resource, id, ownerID string) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal %s item: %w", resource, err)
	}
	cond := expression.AttributeExists(expression.Name("PK")).
		And(expression.Name(versionAttr).Equal(expression.Value(expected)))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build condition: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                           aws.String(s.tableName),
		Item:                                av,
		ConditionExpression:                 expr.Condition(),
		ExpressionAttributeNames:            expr.Names(),
		ExpressionAttributeValues:           expr.Values(),
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if err == nil {
		return nil
	}
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		if len(ccf.Item) == 0 {
			return repository.NewNotFound(resource, id, ownerID)
		}
		var actual int
		if v, ok := ccf.Item[versionAttr]; ok {
			_ = attributevalue.Unmarshal(v, &actual)
		}
		return repository.VersionMismatch(resource, id, expected, actual)
	}
	return fmt.Errorf("failed to update %s: %w", resource, err)
}

func (s *Store) getItem(ctx context.Context, ownerID, sk string, out interface{}) (bool, error) {
	res, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            key(ownerID, sk),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return false, err
	}
	if len(res.Item) == 0 {
		return false, nil
	}
	return true, attributevalue.UnmarshalMap(res.Item, out)
}

func (s *Store) deleteExisting(ctx context.Context, ownerID, sk, resource, id string) error {
	cond := expression.AttributeExists(expression.Name("PK"))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build condition: %w", err)
	}
	_, err = s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(s.tableName),
		Key:                      key(ownerID, sk),
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		if isConditionFailure(err) {
			return repository.NewNotFound(resource, id, ownerID)
		}
		return fmt.Errorf("failed to delete %s: %w", resource, err)
	}
	return nil
}

// queryPrefix returns every item of ownerID whose sort key starts with prefix.
func (s *Store) queryPrefix(ctx context.Context, ownerID, prefix string) ([]map[string]types.AttributeValue, error) {
	keyEx := expression.Key("PK").Equal(expression.Value(pk(ownerID))).
		And(expression.Key("SK").BeginsWith(prefix))
	expr, err := expression.NewBuilder().WithKeyCondition(keyEx).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build key condition: %w", err)
	}

	var items []map[string]types.AttributeValue
	paginator := dynamodb.NewQueryPaginator(s.client, &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query %s items: %w", strings.TrimSuffix(prefix, "#"), err)
		}
		items = append(items, page.Items...)
	}
	return items, nil
}

// Node operations

func (s *Store) CreateNode(ctx context.Context, node *domain.Node) error {
	return s.putNew(ctx, toDDBNode(node), "node", node.ID)
}

func (s *Store) FindNodeByID(ctx context.Context, ownerID, nodeID string) (*domain.Node, error) {
	var item ddbNode
	found, err := s.getItem(ctx, ownerID, skNode+nodeID, &item)
	if err != nil {
		return nil, fmt.Errorf("failed to get node: %w", err)
	}
	if !found {
		return nil, repository.NewNotFound("node", nodeID, ownerID)
	}
	return item.toDomain(), nil
}

func (s *Store) FindNodes(ctx context.Context, query repository.NodeQuery) ([]*domain.Node, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	items, err := s.queryPrefix(ctx, query.OwnerID, skNode)
	if err != nil {
		return nil, err
	}
	var records []ddbNode
	if err := attributevalue.UnmarshalListOfMaps(items, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal nodes: %w", err)
	}
	result := make([]*domain.Node, 0, len(records))
	for _, r := range records {
		n := r.toDomain()
		if query.Matches(*n) {
			result = append(result, n)
		}
	}
	repository.SortNodes(result)
	return repository.Limit(result, query.Limit), nil
}

func (s *Store) UpdateNode(ctx context.Context, node *domain.Node, expectedVersion int) error {
	return s.putVersioned(ctx, toDDBNode(node), "Version", expectedVersion, "node", node.ID, node.OwnerID)
}

func (s *Store) DeleteNode(ctx context.Context, ownerID, nodeID string) error {
	return s.deleteExisting(ctx, ownerID, skNode+nodeID, "node", nodeID)
}

// Edge operations

func (s *Store) CreateEdge(ctx context.Context, edge *domain.Edge) error {
	edgeItem, err := attributevalue.MarshalMap(toDDBEdge(edge))
	if err != nil {
		return fmt.Errorf("failed to marshal edge item: %w", err)
	}
	pairItem, err := attributevalue.MarshalMap(ddbPair{PK: pk(edge.OwnerID), SK: pairSK(edge.From, edge.To), EdgeID: edge.ID})
	if err != nil {
		return fmt.Errorf("failed to marshal edge pair item: %w", err)
	}
	notExists := aws.String("attribute_not_exists(PK)")

	_, err = s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{TableName: aws.String(s.tableName), Item: edgeItem, ConditionExpression: notExists}},
			{Put: &types.Put{TableName: aws.String(s.tableName), Item: pairItem, ConditionExpression: notExists}},
		},
	})
	if err != nil {
		if isConditionFailure(err) {
			return repository.NewConflict("edge", edge.ID, "an edge between these nodes already exists")
		}
		return fmt.Errorf("transaction to create edge failed: %w", err)
	}
	return nil
}

func (s *Store) FindEdgeByID(ctx context.Context, ownerID, edgeID string) (*domain.Edge, error) {
	var item ddbEdge
	found, err := s.getItem(ctx, ownerID, skEdge+edgeID, &item)
	if err != nil {
		return nil, fmt.Errorf("failed to get edge: %w", err)
	}
	if !found {
		return nil, repository.NewNotFound("edge", edgeID, ownerID)
	}
	return item.toDomain(), nil
}

func (s *Store) FindEdges(ctx context.Context, query repository.EdgeQuery) ([]*domain.Edge, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	items, err := s.queryPrefix(ctx, query.OwnerID, skEdge)
	if err != nil {
		return nil, err
	}
	var records []ddbEdge
	if err := attributevalue.UnmarshalListOfMaps(items, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal edges: %w", err)
	}
	result := make([]*domain.Edge, 0, len(records))
	for _, r := range records {
		e := r.toDomain()
		if query.Matches(*e) {
			result = append(result, e)
		}
	}
	repository.SortEdges(result)
	return result, nil
}

func (s *Store) deleteEdgeItems(ctx context.Context, e *domain.Edge) error {
	_, err := s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Delete: &types.Delete{TableName: aws.String(s.tableName), Key: key(e.OwnerID, skEdge+e.ID)}},
			{Delete: &types.Delete{TableName: aws.String(s.tableName), Key: key(e.OwnerID, pairSK(e.From, e.To))}},
		},
	})
	if err != nil {
		return fmt.Errorf("transaction to delete edge failed: %w", err)
	}
	return nil
}

func (s *Store) DeleteEdge(ctx context.Context, ownerID, edgeID string) error {
	e, err := s.FindEdgeByID(ctx, ownerID, edgeID)
	if err != nil {
		return err
	}
	return s.deleteEdgeItems(ctx, e)
}

func (s *Store) DeleteEdgesForNode(ctx context.Context, ownerID, nodeID string) (int, error) {
	edges, err := s.FindEdges(ctx, repository.EdgeQuery{OwnerID: ownerID, Touching: nodeID})
	if err != nil {
		return 0, err
	}
	for i, e := range edges {
		if err := s.deleteEdgeItems(ctx, e); err != nil {
			return i, err
		}
	}
	return len(edges), nil
}

// Flashcard operations

func (s *Store) CreateFlashcard(ctx context.Context, card *domain.Flashcard) error {
	return s.putNew(ctx, toDDBCard(card), "flashcard", card.ID)
}

func (s *Store) FindFlashcardByID(ctx context.Context, ownerID, cardID string) (*domain.Flashcard, error) {
	var item ddbCard
	found, err := s.getItem(ctx, ownerID, skCard+cardID, &item)
	if err != nil {
		return nil, fmt.Errorf("failed to get flashcard: %w", err)
	}
	if !found {
		return nil, repository.NewNotFound("flashcard", cardID, ownerID)
	}
	return item.toDomain(), nil
}

func (s *Store) FindFlashcards(ctx context.Context, query repository.FlashcardQuery) ([]*domain.Flashcard, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	items, err := s.queryPrefix(ctx, query.OwnerID, skCard)
	if err != nil {
		return nil, err
	}
	var records []ddbCard
	if err := attributevalue.UnmarshalListOfMaps(items, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal flashcards: %w", err)
	}
	result := make([]*domain.Flashcard, 0, len(records))
	for _, r := range records {
		c := r.toDomain()
		if query.Matches(*c) {
			result = append(result, c)
		}
	}
	repository.SortFlashcards(result)
	return result, nil
}

func (s *Store) UpdateFlashcard(ctx context.Context, card *domain.Flashcard, expectedRevision int) error {
	return s.putVersioned(ctx, toDDBCard(card), "Revision", expectedRevision, "flashcard", card.ID, card.OwnerID)
}

func (s *Store) DeleteFlashcard(ctx context.Context, ownerID, cardID string) error {
	return s.deleteExisting(ctx, ownerID, skCard+cardID, "flashcard", cardID)
}

func (s *Store) DeleteFlashcardsForNode(ctx context.Context, ownerID, nodeID string) (int, error) {
	cards, err := s.FindFlashcards(ctx, repository.FlashcardQuery{OwnerID: ownerID, NodeID: nodeID})
	if err != nil {
		return 0, err
	}
	for i, c := range cards {
		_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(s.tableName),
			Key:       key(ownerID, skCard+c.ID),
		})
		if err != nil {
			return i, fmt.Errorf("failed to delete flashcard: %w", err)
		}
	}
	return len(cards), nil
}

func (s *Store) CountFlashcards(ctx context.Context, ownerID string, dueAsOf time.Time) (domain.FlashcardStats, error) {
	cards, err := s.FindFlashcards(ctx, repository.FlashcardQuery{OwnerID: ownerID})
	if err != nil {
		return domain.FlashcardStats{}, err
	}
	stats := domain.FlashcardStats{Total: len(cards)}
	for _, c := range cards {
		if c.IsDue(dueAsOf) {
			stats.Due++
		}
	}
	return stats, nil
}

func (s *Store) Ping(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.tableName)})
	if err != nil {
		return fmt.Errorf("table %s unreachable: %w", s.tableName, err)
	}
	return nil
}

// Close is a no-op; the SDK client holds no resources that need releasing.
func (s *Store) Close() error { return nil }
