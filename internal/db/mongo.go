package db

import (
	"context"
	"errors"
	"fmt"

	"foodshare/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo is a thin adapter over one MongoDB database.
type Mongo struct {
	client *mongodriver.Client
	db     *mongodriver.Database
}

// NewMongo builds the client. The driver connects lazily, so an unreachable
// server only shows up on Ping or on the first operation.
func NewMongo(ctx context.Context, uri, dbName string) (*Mongo, error) {
	const op = "db.NewMongo"

	serverAPI := options.ServerAPI(options.ServerAPIVersion1).
		SetStrict(true).
		SetDeprecationErrors(true)

	// Nested documents decode as maps so they encode back to JSON objects.
	opts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(serverAPI).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	cli, err := mongodriver.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Mongo{
		client: cli,
		db:     cli.Database(dbName),
	}, nil
}

func (m *Mongo) Collection(name string) Collection {
	return &mongoCollection{coll: m.db.Collection(name)}
}

// Ping runs the ping command against the admin database.
func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

type mongoCollection struct {
	coll *mongodriver.Collection
}

func (c *mongoCollection) Find(ctx context.Context, filter Filter) ([]models.Document, error) {
	const op = "db.mongo.Find"

	q := bson.M{}
	for k, v := range filter {
		q[k] = v
	}

	cur, err := c.coll.Find(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer cur.Close(ctx)

	docs := make([]models.Document, 0)
	for cur.Next(ctx) {
		var d bson.M
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("%s: decode: %w", op, err)
		}
		docs = append(docs, models.Document(d))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%s: cursor: %w", op, err)
	}

	return docs, nil
}

func (c *mongoCollection) EstimatedCount(ctx context.Context) (int64, error) {
	n, err := c.coll.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("db.mongo.EstimatedCount: %w", err)
	}
	return n, nil
}

func (c *mongoCollection) FindByID(ctx context.Context, id string) (models.Document, error) {
	const op = "db.mongo.FindByID"

	oid, err := parseID(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var d bson.M
	err = c.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&d)
	if errors.Is(err, mongodriver.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return models.Document(d), nil
}

func (c *mongoCollection) Insert(ctx context.Context, doc models.Document) (*models.InsertResult, error) {
	const op = "db.mongo.Insert"

	res, err := c.coll.InsertOne(ctx, bson.M(doc))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.InsertResult{Acknowledged: true, InsertedID: res.InsertedID}, nil
}

func (c *mongoCollection) UpsertByID(ctx context.Context, id string, fields models.Document) (*models.UpdateResult, error) {
	const op = "db.mongo.UpsertByID"

	oid, err := parseID(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	res, err := c.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M(fields)},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
		UpsertedID:    res.UpsertedID,
	}, nil
}

func (c *mongoCollection) DeleteByID(ctx context.Context, id string) (*models.DeleteResult, error) {
	const op = "db.mongo.DeleteByID"

	oid, err := parseID(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	res, err := c.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}, nil
}
