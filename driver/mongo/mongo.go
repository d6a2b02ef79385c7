// Package mongo is the document-store driver. Every key is its own
// collection holding a single document {_id: key, value: text}.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/unkn0wn-root/botdb/driver"
)

const (
	DefaultDatabase = "UltroidDB"

	serverSelectionTimeout = 5 * time.Second
)

var ErrNilClient = errors.New("mongo driver: nil client")

type document struct {
	ID    string `bson:"_id"`
	Value string `bson:"value"`
}

type Mongo struct {
	client      *mongo.Client
	db          *mongo.Database
	closeClient bool
}

var (
	_ driver.Driver        = (*Mongo)(nil)
	_ driver.Pinger        = (*Mongo)(nil)
	_ driver.UsageReporter = (*Mongo)(nil)
)

type Config struct {
	Client      *mongo.Client
	Database    string // "" => DefaultDatabase
	CloseClient bool   // set true only if this driver exclusively owns the client
}

func New(cfg Config) (*Mongo, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	name := cfg.Database
	if name == "" {
		name = DefaultDatabase
	}
	return &Mongo{client: cfg.Client, db: cfg.Client.Database(name), closeClient: cfg.CloseClient}, nil
}

// Open connects to uri and owns the resulting client. The connection is
// lazy; callers should Ping before relying on it.
func Open(ctx context.Context, uri, database string) (*Mongo, error) {
	opts := options.Client().ApplyURI(uri).SetServerSelectionTimeout(serverSelectionTimeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	return New(Config{Client: client, Database: database, CloseClient: true})
}

func (p *Mongo) Name() string { return "Mongo" }

// validKey mirrors MongoDB's collection naming rules.
func validKey(key string) bool {
	return key != "" && !strings.ContainsAny(key, "$\x00") && !strings.HasPrefix(key, "system.")
}

func (p *Mongo) Get(ctx context.Context, key string) (string, bool, error) {
	if !validKey(key) {
		return "", false, nil
	}
	var doc document
	err := p.db.Collection(key).FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return doc.Value, true, nil
}

// Set upserts the single document of the key's collection.
func (p *Mongo) Set(ctx context.Context, key, value string) (bool, error) {
	if !validKey(key) {
		return false, fmt.Errorf("%w: %q is not a collection name", driver.ErrInvalidKey, key)
	}
	_, err := p.db.Collection(key).ReplaceOne(ctx,
		bson.M{"_id": key},
		document{ID: key, Value: value},
		options.Replace().SetUpsert(true))
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete drops the key's collection.
func (p *Mongo) Delete(ctx context.Context, key string) (bool, error) {
	if !validKey(key) {
		return false, nil
	}
	names, err := p.db.ListCollectionNames(ctx, bson.M{"name": key})
	if err != nil {
		return false, err
	}
	if len(names) == 0 {
		return false, nil
	}
	if err := p.db.Collection(key).Drop(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Mongo) Keys(ctx context.Context) ([]string, error) {
	return p.db.ListCollectionNames(ctx, bson.D{})
}

// FlushAll drops the whole database; the next write recreates it.
func (p *Mongo) FlushAll(ctx context.Context) (bool, error) {
	if err := p.db.Drop(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Usage is dbStats.dataSize in bytes.
func (p *Mongo) Usage(ctx context.Context) (int64, error) {
	var stats struct {
		DataSize float64 `bson:"dataSize"`
	}
	if err := p.db.RunCommand(ctx, bson.D{{Key: "dbStats", Value: 1}}).Decode(&stats); err != nil {
		return 0, err
	}
	return int64(stats.DataSize), nil
}

func (p *Mongo) Ping(ctx context.Context) (bool, error) {
	if err := p.client.Ping(ctx, readpref.Primary()); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Mongo) Close(ctx context.Context) error {
	if !p.closeClient {
		return nil
	}
	if err := p.client.Disconnect(ctx); err != nil && !errors.Is(err, mongo.ErrClientDisconnected) {
		return err
	}
	return nil
}
