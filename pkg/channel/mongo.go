package channel

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/driftwave/client/pkg/logger"
	"github.com/driftwave/client/pkg/record"
)

// MongoChannel keeps one collection per entity type and uses change
// streams for the push side, so a write from any client is echoed to all
// subscribed sessions including the originator.
type MongoChannel struct {
	db *mongo.Database
}

func NewMongo(uri string, dbName string) (*MongoChannel, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)
	client, err := mongo.Connect(context.TODO(), opts)
	if err != nil {
		return nil, err
	}
	var result bson.M
	if err := client.Database("admin").RunCommand(context.TODO(), bson.D{{Key: "ping", Value: 1}}).Decode(&result); err != nil {
		return nil, err
	}
	return &MongoChannel{db: client.Database(dbName)}, nil
}

func (m *MongoChannel) collection(entity record.EntityType) *mongo.Collection {
	return m.db.Collection(string(entity))
}

func (m *MongoChannel) FetchSnapshot(ctx context.Context, entity record.EntityType) ([]map[string]any, error) {
	cur, err := m.collection(entity).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(docs))
	for _, doc := range docs {
		out = append(out, plainMap(doc))
	}
	return out, nil
}

func (m *MongoChannel) Write(ctx context.Context, entity record.EntityType, op Op, id string, payload map[string]any) error {
	col := m.collection(entity)
	switch op {
	case OpDelete:
		_, err := col.DeleteOne(ctx, bson.M{"_id": id})
		return err
	case OpUpdate:
		_, err := col.UpdateByID(ctx, id, bson.M{"$set": bson.M(payload)})
		return err
	default:
		doc := bson.M{"_id": id, "id": id}
		for k, v := range payload {
			doc[k] = v
		}
		opts := options.Replace().SetUpsert(true)
		_, err := col.ReplaceOne(ctx, bson.M{"_id": id}, doc, opts)
		return err
	}
}

func (m *MongoChannel) Subscribe(ctx context.Context, entity record.EntityType) (Stream, error) {
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	cs, err := m.collection(entity).Watch(ctx, mongo.Pipeline{}, opts)
	if err != nil {
		return nil, err
	}
	stream := &mongoStream{cs: cs, events: make(chan Event, 64)}
	go stream.pump(ctx, entity)
	return stream, nil
}

type mongoStream struct {
	cs     *mongo.ChangeStream
	events chan Event
}

type changeDoc struct {
	OperationType string `bson:"operationType"`
	FullDocument  bson.M `bson:"fullDocument"`
	DocumentKey   struct {
		Id any `bson:"_id"`
	} `bson:"documentKey"`
}

func (s *mongoStream) pump(ctx context.Context, entity record.EntityType) {
	defer close(s.events)
	for s.cs.Next(ctx) {
		var change changeDoc
		if err := s.cs.Decode(&change); err != nil {
			logger.Warn("mongo channel: bad change event", zap.Error(err))
			continue
		}

		ev := Event{Entity: entity}
		if id, ok := change.DocumentKey.Id.(string); ok {
			ev.Id = id
		}
		switch change.OperationType {
		case "insert":
			ev.Op = OpInsert
			ev.Payload = plainMap(change.FullDocument)
		case "update", "replace":
			ev.Op = OpUpdate
			ev.Payload = plainMap(change.FullDocument)
		case "delete":
			ev.Op = OpDelete
		default:
			continue
		}
		s.events <- ev
	}
}

func (s *mongoStream) Events() <-chan Event { return s.events }
func (s *mongoStream) Close() error         { return s.cs.Close(context.Background()) }

// plainMap strips the bson-specific container types so payloads reach the
// normalizer as plain maps, slices and scalars.
func plainMap(doc bson.M) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = plain(v)
	}
	return out
}

func plain(v any) any {
	switch t := v.(type) {
	case bson.M:
		return plainMap(t)
	case bson.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = plain(e.Value)
		}
		return m
	case bson.A:
		out := make([]any, 0, len(t))
		for _, item := range t {
			out = append(out, plain(item))
		}
		return out
	case primitive.DateTime:
		return int64(t)
	case primitive.ObjectID:
		return t.Hex()
	default:
		return v
	}
}
