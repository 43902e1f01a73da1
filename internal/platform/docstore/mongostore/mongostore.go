// Package mongostore implements docstore.Store on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/clinic/clinic/internal/platform/docstore"
)

const (
	defaultPort    = "27017"
	countersName   = "counters"
	defaultTimeout = 5 * time.Second
)

// Config describes how to reach MongoDB. URI wins when set; otherwise Host,
// User and Pass are combined with SCRAM-SHA-256 against the admin database.
type Config struct {
	URI                    string
	Host                   string
	User                   string
	Pass                   string
	Database               string
	ServerSelectionTimeout time.Duration
}

func (c Config) clientOptions() (*options.ClientOptions, error) {
	timeout := c.ServerSelectionTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	opts := options.Client().SetServerSelectionTimeout(timeout)

	if c.URI != "" {
		return opts.ApplyURI(c.URI), nil
	}
	if c.Host == "" || c.User == "" || c.Pass == "" {
		return nil, errors.New("set MONGODB_URI or MONGODB_USER, MONGODB_PASS and MONGODB_HOST")
	}

	host := c.Host
	if _, _, err := net.SplitHostPort(host); err != nil {
		host = net.JoinHostPort(host, defaultPort)
	}
	return opts.SetHosts([]string{host}).SetAuth(options.Credential{
		Username:      c.User,
		Password:      c.Pass,
		AuthSource:    "admin",
		AuthMechanism: "SCRAM-SHA-256",
	}), nil
}

// Store is a MongoDB database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Open connects and pings the primary.
func Open(ctx context.Context, cfg Config, logger zerolog.Logger) (*Store, error) {
	opts, err := cfg.clientOptions()
	if err != nil {
		return nil, err
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := client.Database(cfg.Database)
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		logger.Warn().Err(err).Msg("could not list collections")
	} else if len(names) == 0 {
		logger.Warn().Str("database", cfg.Database).Msg("no collections found in the database")
	}
	logger.Info().Str("database", cfg.Database).Msg("connected to mongodb")

	return &Store{client: client, db: db}, nil
}

func (s *Store) Collection(name string) docstore.Collection {
	return &collection{
		name:     name,
		coll:     s.db.Collection(name),
		counters: s.db.Collection(countersName),
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) Driver() string { return "mongo" }

type collection struct {
	name     string
	coll     *mongo.Collection
	counters *mongo.Collection
}

func (c *collection) Find(ctx context.Context, filter docstore.Filter) ([]docstore.Document, error) {
	if err := docstore.ValidateFilter(filter); err != nil {
		return nil, err
	}
	query := bson.M{}
	for k, v := range filter {
		query[k] = v
	}

	cur, err := c.coll.Find(ctx, query, options.Find().SetSort(bson.D{{Key: docstore.IDField, Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", c.name, err)
	}
	var raw []bson.M
	if err := cur.All(ctx, &raw); err != nil {
		return nil, fmt.Errorf("read %s: %w", c.name, err)
	}

	docs := make([]docstore.Document, len(raw))
	for i, m := range raw {
		docs[i] = fromBSON(m)
	}
	return docs, nil
}

func (c *collection) Get(ctx context.Context, id int64) (docstore.Document, error) {
	var m bson.M
	err := c.coll.FindOne(ctx, bson.M{docstore.IDField: id}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, docstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %d: %w", c.name, id, err)
	}
	return fromBSON(m), nil
}

func (c *collection) Insert(ctx context.Context, doc docstore.Document) (int64, error) {
	stored, err := docstore.Encode(doc)
	if err != nil {
		return 0, err
	}
	if stored == nil {
		stored = docstore.Document{}
	}

	id, err := c.nextID(ctx)
	if err != nil {
		return 0, err
	}
	stored[docstore.IDField] = id

	if _, err := c.coll.InsertOne(ctx, bson.M(stored)); err != nil {
		return 0, fmt.Errorf("insert %s: %w", c.name, err)
	}
	return id, nil
}

// nextID increments the per-collection sequence in the counters collection.
func (c *collection) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := c.counters.FindOneAndUpdate(ctx,
		bson.M{docstore.IDField: c.name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("allocate %s id: %w", c.name, err)
	}
	return counter.Seq, nil
}

func (c *collection) Update(ctx context.Context, id int64, set docstore.Document) error {
	fields, err := docstore.Encode(set)
	if err != nil {
		return err
	}
	delete(fields, docstore.IDField)
	if len(fields) == 0 {
		_, err := c.Get(ctx, id)
		return err
	}

	res, err := c.coll.UpdateOne(ctx, bson.M{docstore.IDField: id}, bson.M{"$set": bson.M(fields)})
	if err != nil {
		return fmt.Errorf("update %s %d: %w", c.name, id, err)
	}
	if res.MatchedCount == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func (c *collection) Delete(ctx context.Context, id int64) error {
	res, err := c.coll.DeleteOne(ctx, bson.M{docstore.IDField: id})
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", c.name, id, err)
	}
	if res.DeletedCount == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

// fromBSON converts driver values to the plain JSON shapes the other drivers
// return: nested documents become maps and numbers become float64.
func fromBSON(m bson.M) docstore.Document {
	doc := make(docstore.Document, len(m))
	for k, v := range m {
		doc[k] = plain(v)
	}
	return doc
}

func plain(v any) any {
	switch x := v.(type) {
	case bson.M:
		return map[string]any(fromBSON(x))
	case bson.D:
		out := make(map[string]any, len(x))
		for _, e := range x {
			out[e.Key] = plain(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = plain(e)
		}
		return out
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case primitive.DateTime:
		return x.Time().UTC().Format(time.RFC3339)
	case primitive.ObjectID:
		return x.Hex()
	}
	return v
}
