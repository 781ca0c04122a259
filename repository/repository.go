package repository

import (
	"context"
	"errors"
	"time"

	"github.com/annazecevic/catalog-service/domain"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate document")
)

// Collection is the typed store contract shared by every kind. It enforces
// no referential constraints; callers consult dependents first.
type Collection[T any] interface {
	// List returns every document ordered by sortKey, ties in insertion order.
	List(ctx context.Context, sortKey string) ([]*T, error)
	Get(ctx context.Context, id string) (*T, error)
	Insert(ctx context.Context, doc *T) error
	// Replace overwrites the whole document stored under id.
	Replace(ctx context.Context, id string, doc *T) error
	Delete(ctx context.Context, id string) error
	// Count counts documents whose field equals value, or contains it when
	// the field is an array. An empty field counts everything.
	Count(ctx context.Context, field, value string) (int64, error)
	FindBy(ctx context.Context, field, value, sortKey string) ([]*T, error)
	// FindOneFold looks a document up by field ignoring case.
	FindOneFold(ctx context.Context, field, value string) (*T, error)
}

type Options struct {
	// Timeout bounds every store call. Zero leaves calls unbounded.
	Timeout time.Duration
	// UniqueGenreNames rejects a second genre whose name matches an existing
	// one ignoring case.
	UniqueGenreNames bool
}

// Catalog groups the collections of every stored kind.
type Catalog struct {
	Artists  Collection[domain.Artist]
	Genres   Collection[domain.Genre]
	Releases Collection[domain.Release]
	Copies   Collection[domain.Copy]
	Styles   Collection[domain.Style]
	Tracks   Collection[domain.Track]
	Crates   Collection[domain.Crate]
	Covers   Collection[domain.Cover]
	Users    Collection[domain.User]
}

const (
	ArtistsCollection  = "artists"
	GenresCollection   = "genres"
	ReleasesCollection = "releases"
	CopiesCollection   = "copies"
	StylesCollection   = "styles"
	TracksCollection   = "tracks"
	CratesCollection   = "crates"
	CoversCollection   = "covers"
	UsersCollection    = "users"
)

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
