package docstore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Message types.
const (
	MessageTypeText = "text"
	MessageTypeBot  = "satoshibot"
)

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrNotAuthor       = errors.New("not the message author")
)

// Message is one chat entry in a team's feed.
type Message struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TeamID    int64              `bson:"teamId" json:"teamId"`
	UID       string             `bson:"uid" json:"uid"`
	Type      string             `bson:"type" json:"type"`
	Message   string             `bson:"message" json:"message"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// InsertMessage stores a chat message and returns it with its assigned id.
func (db DataBase) InsertMessage(ctx context.Context, msg Message) (Message, error) {
	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	_, err := db.inner.Collection(messagesCollection).InsertOne(ctx, msg)
	return msg, err
}

// ListMessages reads a team's messages ascending by creation time.
func (db DataBase) ListMessages(ctx context.Context, teamID int64) ([]Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	curs, err := db.inner.Collection(messagesCollection).Find(ctx, bson.M{"teamId": teamID}, opts)
	if err != nil {
		return nil, err
	}
	var msgs []Message
	if err := curs.All(ctx, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// DeleteMessage removes one message. Only its author may delete it.
func (db DataBase) DeleteMessage(ctx context.Context, id string, uid string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrMessageNotFound
	}

	var msg Message
	err = db.inner.Collection(messagesCollection).FindOne(ctx, bson.M{"_id": oid}).Decode(&msg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrMessageNotFound
		}
		return err
	}
	if msg.UID != uid {
		return ErrNotAuthor
	}

	_, err = db.inner.Collection(messagesCollection).DeleteOne(ctx, bson.M{"_id": oid})
	return err
}
