package blog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/blogtracker/internal/telemetry/tracing"
)

const blogsCollection = "blogs"

var _ postsRepo = (*MongoRepo)(nil)

// mongoPost mirrors the documents in the blogs collection
type mongoPost struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Content   string             `bson:"content"`
	AuthorID  string             `bson:"authorId"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt *time.Time         `bson:"updatedAt,omitempty"`
	IsPublic  *bool              `bson:"isPublic,omitempty"`
	Tags      []string           `bson:"tags,omitempty"`
}

func (p *mongoPost) record() *Record {
	rec := &Record{
		ID:        p.ID.Hex(),
		Title:     p.Title,
		Content:   p.Content,
		AuthorID:  p.AuthorID,
		CreatedAt: p.CreatedAt.UTC(),
		IsPublic:  p.IsPublic,
		Tags:      p.Tags,
	}
	if p.UpdatedAt != nil {
		updatedAt := p.UpdatedAt.UTC()
		rec.UpdatedAt = &updatedAt
	}
	return rec
}

// MongoRepo keeps blog posts as documents in the blogs collection
type MongoRepo struct {
	coll *mongo.Collection
}

func NewMongoRepo(client *mongo.Client, dbName string) *MongoRepo {
	return &MongoRepo{
		coll: client.Database(dbName).Collection(blogsCollection),
	}
}

func (r *MongoRepo) Add(ctx context.Context, rec *Record) (string, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogMongoRepo.Add")
	defer span.End()

	doc := mongoPost{
		Title:     rec.Title,
		Content:   rec.Content,
		AuthorID:  rec.AuthorID,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
		IsPublic:  rec.IsPublic,
		Tags:      rec.Tags,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return "", err
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type: %T", res.InsertedID)
	}

	return oid.Hex(), nil
}

func (r *MongoRepo) Get(ctx context.Context, id string) (*Record, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogMongoRepo.Get")
	span.SetAttributes(attribute.String("id", id))
	defer span.End()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrPostNotFound
	}

	var doc mongoPost
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	return doc.record(), nil
}

func (r *MongoRepo) List(ctx context.Context, filter ListFilter) ([]*Record, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogMongoRepo.List")
	span.SetAttributes(attribute.Bool("public_only", filter.PublicOnly))
	defer span.End()

	query := bson.M{}
	if filter.PublicOnly {
		// documents without isPublic count as public
		query["isPublic"] = bson.M{"$ne": false}
	}
	if filter.AuthorID != "" {
		query["authorId"] = filter.AuthorID
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var recs []*Record
	for cursor.Next(ctx) {
		var doc mongoPost
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		recs = append(recs, doc.record())
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return recs, nil
}

func (r *MongoRepo) Update(ctx context.Context, id string, patch PostPatch, updatedAt time.Time) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogMongoRepo.Update")
	span.SetAttributes(attribute.String("id", id))
	defer span.End()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrPostNotFound
	}

	set := bson.M{"updatedAt": updatedAt}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Content != nil {
		set["content"] = *patch.Content
	}
	if patch.IsPublic != nil {
		set["isPublic"] = *patch.IsPublic
	}
	if patch.Tags != nil {
		tags := *patch.Tags
		if tags == nil {
			tags = []string{}
		}
		set["tags"] = tags
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrPostNotFound
	}

	return nil
}

func (r *MongoRepo) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogMongoRepo.Delete")
	span.SetAttributes(attribute.String("id", id))
	defer span.End()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrPostNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrPostNotFound
	}

	return nil
}
