package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/annazecevic/catalog-service/domain"
	"github.com/annazecevic/catalog-service/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// foldCollation matches names by base letter and accent, ignoring case.
var foldCollation = &options.Collation{Locale: "en", Strength: 2}

type mongoCollection[T any] struct {
	col     *mongo.Collection
	timeout time.Duration
}

func newMongoCollection[T any](db *mongo.Database, name string, timeout time.Duration, extra ...mongo.IndexModel) *mongoCollection[T] {
	col := db.Collection(name)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := append([]mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}, extra...)
	if _, err := col.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Warn(logger.EventDBError, "Failed to create indexes", logger.Fields(
			"collection", name,
			"error", err.Error(),
		))
	}

	return &mongoCollection[T]{col: col, timeout: timeout}
}

// NewMongoCatalog opens one collection per kind in db.
func NewMongoCatalog(db *mongo.Database, opts Options) *Catalog {
	genreName := options.Index().SetCollation(foldCollation).SetUnique(opts.UniqueGenreNames)

	return &Catalog{
		Artists: newMongoCollection[domain.Artist](db, ArtistsCollection, opts.Timeout,
			mongo.IndexModel{Keys: bson.D{{Key: "name", Value: 1}}}),
		Genres: newMongoCollection[domain.Genre](db, GenresCollection, opts.Timeout,
			mongo.IndexModel{Keys: bson.D{{Key: "name", Value: 1}}, Options: genreName}),
		Releases: newMongoCollection[domain.Release](db, ReleasesCollection, opts.Timeout,
			mongo.IndexModel{Keys: bson.D{{Key: "artist", Value: 1}}},
			mongo.IndexModel{Keys: bson.D{{Key: "genres", Value: 1}}},
			mongo.IndexModel{Keys: bson.D{{Key: "title", Value: 1}}}),
		Copies: newMongoCollection[domain.Copy](db, CopiesCollection, opts.Timeout,
			mongo.IndexModel{Keys: bson.D{{Key: "release", Value: 1}}},
			mongo.IndexModel{Keys: bson.D{{Key: "status", Value: 1}}}),
		Styles: newMongoCollection[domain.Style](db, StylesCollection, opts.Timeout),
		Tracks: newMongoCollection[domain.Track](db, TracksCollection, opts.Timeout),
		Crates: newMongoCollection[domain.Crate](db, CratesCollection, opts.Timeout),
		Covers: newMongoCollection[domain.Cover](db, CoversCollection, opts.Timeout),
		Users: newMongoCollection[domain.User](db, UsersCollection, opts.Timeout,
			mongo.IndexModel{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)}),
	}
}

func (r *mongoCollection[T]) List(ctx context.Context, sortKey string) ([]*T, error) {
	return r.find(ctx, bson.M{}, sortKey)
}

func (r *mongoCollection[T]) Get(ctx context.Context, id string) (*T, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var doc T
	err := r.col.FindOne(ctx, bson.M{"id": id}).Decode(&doc)
	if err != nil {
		return nil, mapMongoErr(err)
	}
	return &doc, nil
}

func (r *mongoCollection[T]) Insert(ctx context.Context, doc *T) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, doc)
	return mapMongoErr(err)
}

func (r *mongoCollection[T]) Replace(ctx context.Context, id string, doc *T) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.col.ReplaceOne(ctx, bson.M{"id": id}, doc)
	if err != nil {
		return mapMongoErr(err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoCollection[T]) Delete(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.col.DeleteOne(ctx, bson.M{"id": id})
	return mapMongoErr(err)
}

func (r *mongoCollection[T]) Count(ctx context.Context, field, value string) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	filter := bson.M{}
	if field != "" {
		filter[field] = value
	}
	n, err := r.col.CountDocuments(ctx, filter)
	return n, mapMongoErr(err)
}

func (r *mongoCollection[T]) FindBy(ctx context.Context, field, value, sortKey string) ([]*T, error) {
	return r.find(ctx, bson.M{field: value}, sortKey)
}

func (r *mongoCollection[T]) FindOneFold(ctx context.Context, field, value string) (*T, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var doc T
	opts := options.FindOne().SetCollation(foldCollation).SetSort(bson.D{{Key: "_id", Value: 1}})
	err := r.col.FindOne(ctx, bson.M{field: value}, opts).Decode(&doc)
	if err != nil {
		return nil, mapMongoErr(err)
	}
	return &doc, nil
}

func (r *mongoCollection[T]) find(ctx context.Context, filter bson.M, sortKey string) ([]*T, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	// _id is an ObjectID assigned at insert, so it breaks ties in insertion order.
	sort := bson.D{{Key: "_id", Value: 1}}
	if sortKey != "" {
		sort = append(bson.D{{Key: sortKey, Value: 1}}, sort...)
	}
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, mapMongoErr(err)
	}
	defer cur.Close(ctx)

	out := make([]*T, 0)
	for cur.Next(ctx) {
		var doc T
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, &doc)
	}
	return out, mapMongoErr(cur.Err())
}

func mapMongoErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}
