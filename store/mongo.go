package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

const countersCollection = "counters"

// Mongo keeps each dashboard collection in a MongoDB collection of the same
// name. Ids are int64 sequences drawn from a counters collection so they
// look the same as SQLite ids to the rest of the app.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
	now    func() time.Time
}

type mongoDoc struct {
	ID        int64     `bson:"_id"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
	Body      bson.Raw  `bson:"body"`
}

// OpenMongo connects to uri and pings the primary before returning.
func OpenMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	opts := options.Client().
		SetWriteConcern(writeconcern.Majority()).
		ApplyURI(uri)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("store: mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("store: mongo ping: %w", err)
	}
	return &Mongo{client: client, db: client.Database(database), now: time.Now}, nil
}

func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

func (m *Mongo) SelectAll(ctx context.Context, collection string, order OrderBy) ([]json.RawMessage, error) {
	field, err := orderColumn(order)
	if err != nil {
		return nil, err
	}
	if field == "id" {
		field = "_id"
	}
	dir := 1
	if order.Desc {
		dir = -1
	}
	opts := options.Find().SetSort(bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}})
	cur, err := m.db.Collection(collection).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("store: select %s: %w", collection, err)
	}
	defer cur.Close(ctx)

	docs := []json.RawMessage{}
	for cur.Next(ctx) {
		var d mongoDoc
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("store: select %s: %w", collection, err)
		}
		raw, err := d.json()
		if err != nil {
			return nil, fmt.Errorf("store: select %s: %w", collection, err)
		}
		docs = append(docs, raw)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("store: select %s: %w", collection, err)
	}
	return docs, nil
}

func (m *Mongo) SelectOne(ctx context.Context, collection string, id int64) (json.RawMessage, error) {
	var d mongoDoc
	err := m.db.Collection(collection).FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: select %s/%d: %w", collection, id, err)
	}
	raw, err := d.json()
	if err != nil {
		return nil, fmt.Errorf("store: select %s/%d: %w", collection, id, err)
	}
	return raw, nil
}

func (m *Mongo) Insert(ctx context.Context, collection string, doc json.RawMessage) (json.RawMessage, error) {
	body, err := bsonBody(doc)
	if err != nil {
		return nil, err
	}
	id, err := m.nextID(ctx, collection)
	if err != nil {
		return nil, err
	}
	now := m.now().UTC()
	_, err = m.db.Collection(collection).InsertOne(ctx, bson.D{
		{Key: "_id", Value: id},
		{Key: "created_at", Value: now},
		{Key: "updated_at", Value: now},
		{Key: "body", Value: body},
	})
	if err != nil {
		return nil, fmt.Errorf("store: insert %s: %w", collection, err)
	}
	return m.SelectOne(ctx, collection, id)
}

func (m *Mongo) Update(ctx context.Context, collection string, id int64, doc json.RawMessage) (json.RawMessage, error) {
	body, err := bsonBody(doc)
	if err != nil {
		return nil, err
	}
	res, err := m.db.Collection(collection).UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "body", Value: body},
			{Key: "updated_at", Value: m.now().UTC()},
		}}})
	if err != nil {
		return nil, fmt.Errorf("store: update %s/%d: %w", collection, id, err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return m.SelectOne(ctx, collection, id)
}

func (m *Mongo) Delete(ctx context.Context, collection string, id int64) error {
	res, err := m.db.Collection(collection).DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("store: delete %s/%d: %w", collection, id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) nextID(ctx context.Context, collection string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := m.db.Collection(countersCollection).FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: collection}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "seq", Value: int64(1)}}}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("store: next id %s: %w", collection, err)
	}
	return counter.Seq, nil
}

func (d mongoDoc) json() (json.RawMessage, error) {
	body, err := bson.MarshalExtJSON(d.Body, false, false)
	if err != nil {
		return nil, err
	}
	return mergeMeta(body, d.ID, d.CreatedAt, d.UpdatedAt)
}

func bsonBody(doc json.RawMessage) (bson.D, error) {
	body, err := stripMeta(doc)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("store: encode: %w", err)
	}
	var d bson.D
	if err := bson.UnmarshalExtJSON(b, false, &d); err != nil {
		return nil, fmt.Errorf("store: encode: %w", err)
	}
	return d, nil
}
