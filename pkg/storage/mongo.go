package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bountyhub/bountyhub/pkg/bounty"
)

const bountiesCollection = "bounties"

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	// URI is the MongoDB connection string (mongodb://...).
	URI string

	// Database is the database name. Defaults to "bountyhub".
	Database string
}

// MongoStore is a MongoDB-backed Store.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and prepares the bounties collection.
// A unique partial index on owner/repo/issue restricted to active
// statuses enforces the one-active-bounty-per-issue invariant at the
// database level, so concurrent server instances can't double-fund.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = "bountyhub"
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(bountiesCollection)

	_, err = coll.Indexes().CreateOne(connectCtx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "owner", Value: 1},
			{Key: "repo", Value: 1},
			{Key: "issue_number", Value: 1},
		},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{
				"status": bson.M{"$in": []string{string(bounty.StatusOpen), string(bounty.StatusMerged)}},
			}),
	})
	if err != nil {
		return nil, fmt.Errorf("create bounty index: %w", err)
	}

	return &MongoStore{client: client, coll: coll}, nil
}

func (s *MongoStore) Create(ctx context.Context, b *bounty.Bounty) error {
	if _, err := s.coll.InsertOne(ctx, b); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("issue %s already has an active bounty", b.IssueRef())
		}
		return fmt.Errorf("insert bounty: %w", err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*bounty.Bounty, error) {
	var b bounty.Bounty
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, bounty.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find bounty %s: %w", id, err)
	}
	return &b, nil
}

func (s *MongoStore) GetOpenByIssue(ctx context.Context, owner, repo string, issue int) (*bounty.Bounty, error) {
	filter := bson.M{
		"owner":        owner,
		"repo":         repo,
		"issue_number": issue,
		"status":       bson.M{"$in": []string{string(bounty.StatusOpen), string(bounty.StatusMerged)}},
	}

	var b bounty.Bounty
	err := s.coll.FindOne(ctx, filter).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, bounty.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find bounty for %s/%s#%d: %w", owner, repo, issue, err)
	}
	return &b, nil
}

func (s *MongoStore) Update(ctx context.Context, b *bounty.Bounty) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": b.ID}, b)
	if err != nil {
		return fmt.Errorf("update bounty %s: %w", b.ID, err)
	}
	if res.MatchedCount == 0 {
		return bounty.ErrNotFound
	}
	return nil
}

func (s *MongoStore) ListByRepo(ctx context.Context, owner, repo string) ([]*bounty.Bounty, error) {
	return s.list(ctx, bson.M{"owner": owner, "repo": repo})
}

func (s *MongoStore) ListByStatus(ctx context.Context, status bounty.Status) ([]*bounty.Bounty, error) {
	return s.list(ctx, bson.M{"status": string(status)})
}

func (s *MongoStore) list(ctx context.Context, filter bson.M) ([]*bounty.Bounty, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list bounties: %w", err)
	}
	defer cursor.Close(ctx)

	var out []*bounty.Bounty
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode bounties: %w", err)
	}
	return out, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
