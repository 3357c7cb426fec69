package notes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps notes in the "notes" collection.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection("notes")}
}

// EnsureIndexes creates necessary indexes for the notes collection
func (r *MongoStore) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "title", Value: "text"}, {Key: "content", Value: "text"}},
		},
		{
			Keys: bson.D{
				{Key: "owner", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "owner", Value: 1},
				{Key: "reminder_date", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "reminder_date", Value: 1}},
			Options: options.Index().SetPartialFilterExpression(bson.M{
				"reminder_date": bson.M{"$type": "date"},
			}),
		},
		{
			Keys: bson.D{{Key: "deadline", Value: 1}},
			Options: options.Index().SetPartialFilterExpression(bson.M{
				"deadline": bson.M{"$type": "date"},
			}),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

// Insert creates a new note
func (r *MongoStore) Insert(ctx context.Context, n *Note) error {
	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now()
	n.UpdatedAt = n.CreatedAt

	_, err := r.coll.InsertOne(ctx, n)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

// FindByID retrieves a note by its ID
func (r *MongoStore) FindByID(ctx context.Context, id primitive.ObjectID) (*Note, error) {
	var note Note
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&note)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find note %s: %w", id.Hex(), err)
	}
	return &note, nil
}

// List retrieves the owner's notes, newest first
func (r *MongoStore) List(ctx context.Context, q ListQuery) ([]*Note, error) {
	opts := options.Find().
		SetLimit(int64(clampLimit(q.Limit, 50, 200))).
		SetSkip(int64(q.Offset)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	return r.find(ctx, bson.M{"owner": q.Owner}, opts, "list notes")
}

// Search performs full-text search over the owner's notes
func (r *MongoStore) Search(ctx context.Context, q SearchQuery) ([]*Note, error) {
	filter := bson.M{"owner": q.Owner}

	if q.Query != "" {
		filter["$text"] = bson.M{"$search": q.Query}
	}

	if q.Since != nil || q.Until != nil {
		dateFilter := bson.M{}
		if q.Since != nil {
			dateFilter["$gte"] = *q.Since
		}
		if q.Until != nil {
			dateFilter["$lte"] = *q.Until
		}
		filter["created_at"] = dateFilter
	}

	opts := options.Find().
		SetLimit(int64(clampLimit(q.Limit, 50, 200))).
		SetSkip(int64(q.Offset)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	// Add text score for relevance sorting when doing text search
	if q.Query != "" {
		opts.SetProjection(bson.M{"score": bson.M{"$meta": "textScore"}})
		opts.SetSort(bson.D{
			{Key: "score", Value: bson.M{"$meta": "textScore"}},
			{Key: "created_at", Value: -1},
		})
	}

	return r.find(ctx, filter, opts, "search notes")
}

// Delete removes one of the owner's notes
func (r *MongoStore) Delete(ctx context.Context, owner string, id primitive.ObjectID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "owner": owner})
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNoteNotFound
	}
	return nil
}

// Count returns the number of notes the owner has
func (r *MongoStore) Count(ctx context.Context, owner string) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"owner": owner})
	if err != nil {
		return 0, fmt.Errorf("count notes: %w", err)
	}
	return count, nil
}

// Save replaces the stored document
func (r *MongoStore) Save(ctx context.Context, n *Note) error {
	n.UpdatedAt = time.Now()
	result, err := r.coll.ReplaceOne(ctx, bson.M{"_id": n.ID}, n)
	if err != nil {
		return fmt.Errorf("save note %s: %w", n.ID.Hex(), err)
	}
	if result.MatchedCount == 0 {
		return ErrNoteNotFound
	}
	return nil
}

func (r *MongoStore) FindWithReminderOrDeadline(ctx context.Context) ([]*Note, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"reminder_date": bson.M{"$type": "date"}},
		bson.M{"deadline": bson.M{"$type": "date"}},
	}}
	return r.find(ctx, filter, options.Find(), "find reminder candidates")
}

func (r *MongoStore) FindUpcoming(ctx context.Context, owner string) ([]*Note, error) {
	filter := bson.M{
		"owner":         owner,
		"reminder_date": bson.M{"$type": "date"},
		"$or": bson.A{
			bson.M{"notification_sent": false},
			bson.M{"is_recurring": true},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "reminder_date", Value: 1}})
	return r.find(ctx, filter, opts, "find upcoming reminders")
}

func (r *MongoStore) FindOverdue(ctx context.Context, owner string, now time.Time) ([]*Note, error) {
	filter := bson.M{
		"owner":         owner,
		"is_overdue":    true,
		"reminder_date": bson.M{"$lt": now},
	}
	opts := options.Find().SetSort(bson.D{{Key: "reminder_date", Value: 1}})
	return r.find(ctx, filter, opts, "find overdue notes")
}

func (r *MongoStore) find(ctx context.Context, filter any, opts *options.FindOptions, op string) ([]*Note, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer cursor.Close(ctx)

	notes := []*Note{}
	if err := cursor.All(ctx, &notes); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}
	return notes, nil
}
