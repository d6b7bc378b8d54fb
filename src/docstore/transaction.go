package docstore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Transaction documents are stored as free-form maps: the external service
// returns heterogeneous shapes and the schema is only imposed at the edges.
// "teamId" and "_id" are reserved bookkeeping keys and stripped on read.

// FindTransaction looks up one transaction by an identity field (safeTxHash,
// txHash or transactionHash) within a team. Returns nil without error when no
// document matches.
func (db DataBase) FindTransaction(ctx context.Context, teamID int64, key, value string) (map[string]any, error) {
	var doc bson.M
	err := db.inner.Collection(transactionsCollection).
		FindOne(ctx, bson.M{"teamId": teamID, key: value}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return plainTransaction(doc), nil
}

// InsertTransaction stores a new transaction document for a team.
func (db DataBase) InsertTransaction(ctx context.Context, teamID int64, tx map[string]any) error {
	doc := make(bson.M, len(tx)+1)
	for k, v := range tx {
		if isReserved(k) {
			continue
		}
		doc[k] = v
	}
	doc["teamId"] = teamID
	_, err := db.inner.Collection(transactionsCollection).InsertOne(ctx, doc)
	return err
}

// MergeTransaction overwrites the incoming fields of the stored transaction
// matched by the identity field. Keys present only in the stored copy (such
// as locally attached metadata) are left untouched; reserved keys are never
// written through a merge.
func (db DataBase) MergeTransaction(ctx context.Context, teamID int64, key, value string, tx map[string]any) error {
	set := make(bson.M, len(tx))
	for k, v := range tx {
		if isReserved(k) {
			continue
		}
		set[k] = v
	}
	_, err := db.inner.Collection(transactionsCollection).
		UpdateOne(ctx, bson.M{"teamId": teamID, key: value}, bson.M{"$set": set})
	return err
}

// ListTransactions reads all of a team's transactions, optionally restricted
// to one wallet address.
func (db DataBase) ListTransactions(ctx context.Context, teamID int64, safe string) ([]map[string]any, error) {
	filter := bson.M{"teamId": teamID}
	if safe != "" {
		filter["safe"] = safe
	}
	curs, err := db.inner.Collection(transactionsCollection).Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var docs []bson.M
	if err := curs.All(ctx, &docs); err != nil {
		return nil, err
	}
	result := make([]map[string]any, 0, len(docs))
	for _, doc := range docs {
		result = append(result, plainTransaction(doc))
	}
	return result, nil
}

// DeleteSafeTransactions removes every transaction of one wallet within a
// team. Used when a safe is removed from the team.
func (db DataBase) DeleteSafeTransactions(ctx context.Context, teamID int64, safe string) (int64, error) {
	res, err := db.inner.Collection(transactionsCollection).
		DeleteMany(ctx, bson.M{"teamId": teamID, "safe": safe})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func isReserved(k string) bool {
	return k == "_id" || k == "teamId"
}

// plainTransaction converts a decoded BSON document into plain Go maps and
// slices and drops the reserved bookkeeping keys, so change detection
// compares like with like.
func plainTransaction(doc bson.M) map[string]any {
	out := plainValue(map[string]any(doc)).(map[string]any)
	delete(out, "_id")
	delete(out, "teamId")
	return out
}

func plainValue(v any) any {
	switch val := v.(type) {
	case bson.M:
		return plainValue(map[string]any(val))
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = plainValue(elem)
		}
		return out
	case bson.A:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = plainValue(elem)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = plainValue(elem)
		}
		return out
	case primitive.DateTime:
		return val.Time()
	case primitive.ObjectID:
		return val.Hex()
	default:
		return v
	}
}
