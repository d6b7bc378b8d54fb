package docstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	transactionsCollection = "transactions"
	messagesCollection     = "messages"
)

// DataBase provides document storage for reconciled transactions and chat
// messages.
type DataBase struct {
	inner mongo.Database
}

// Connect opens a connection to the document store and verifies it with a
// ping before returning.
func Connect(ctx context.Context, conn, database string) (*DataBase, error) {
	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(conn))
	if err != nil {
		return nil, err
	}

	ctxx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()
	if err := cli.Ping(ctxx, readpref.Primary()); err != nil {
		return nil, err
	}

	return &DataBase{*cli.Database(database)}, nil
}

// Disconnect closes the underlying client.
func (db DataBase) Disconnect(ctx context.Context) error {
	return db.inner.Client().Disconnect(ctx)
}

// EnsureIndexes creates the lookup indexes the reconciliation and feed paths
// depend on. Safe to call on every startup.
func (db DataBase) EnsureIndexes(ctx context.Context) error {
	txIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "teamId", Value: 1}, {Key: "safe", Value: 1}}},
		{Keys: bson.D{{Key: "teamId", Value: 1}, {Key: "safeTxHash", Value: 1}}},
		{Keys: bson.D{{Key: "teamId", Value: 1}, {Key: "txHash", Value: 1}}},
	}
	if _, err := db.inner.Collection(transactionsCollection).Indexes().CreateMany(ctx, txIndexes); err != nil {
		return err
	}
	msgIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "teamId", Value: 1}, {Key: "createdAt", Value: 1}}},
	}
	_, err := db.inner.Collection(messagesCollection).Indexes().CreateMany(ctx, msgIndexes)
	return err
}
