package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/annazecevic/catalog-service/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// memoryCollection keeps documents as BSON maps in insertion order so that
// filters and sorts behave like the Mongo collection.
type memoryCollection[T any] struct {
	mu         sync.RWMutex
	docs       []bson.M
	uniqueFold []string
}

func newMemoryCollection[T any](uniqueFold ...string) *memoryCollection[T] {
	return &memoryCollection[T]{uniqueFold: uniqueFold}
}

// NewMemoryCatalog builds an in-process catalog for tests and local runs.
func NewMemoryCatalog(opts Options) *Catalog {
	var genreUnique []string
	if opts.UniqueGenreNames {
		genreUnique = []string{"name"}
	}
	return &Catalog{
		Artists:  newMemoryCollection[domain.Artist](),
		Genres:   newMemoryCollection[domain.Genre](genreUnique...),
		Releases: newMemoryCollection[domain.Release](),
		Copies:   newMemoryCollection[domain.Copy](),
		Styles:   newMemoryCollection[domain.Style](),
		Tracks:   newMemoryCollection[domain.Track](),
		Crates:   newMemoryCollection[domain.Crate](),
		Covers:   newMemoryCollection[domain.Cover](),
		Users:    newMemoryCollection[domain.User]("username"),
	}
}

func (r *memoryCollection[T]) List(ctx context.Context, sortKey string) ([]*T, error) {
	return r.find(ctx, func(bson.M) bool { return true }, sortKey)
}

func (r *memoryCollection[T]) Get(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	return decode[T](r.docs[i])
}

func (r *memoryCollection[T]) Insert(ctx context.Context, doc *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m, err := encode(doc)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	id, _ := m["id"].(string)
	if r.indexOf(id) >= 0 {
		return fmt.Errorf("%w: id %q", ErrDuplicate, id)
	}
	if err := r.checkUnique(m, id); err != nil {
		return err
	}
	r.docs = append(r.docs, m)
	return nil
}

func (r *memoryCollection[T]) Replace(ctx context.Context, id string, doc *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m, err := encode(doc)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	if err := r.checkUnique(m, id); err != nil {
		return err
	}
	m["id"] = id
	r.docs[i] = m
	return nil
}

func (r *memoryCollection[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if i := r.indexOf(id); i >= 0 {
		r.docs = append(r.docs[:i], r.docs[i+1:]...)
	}
	return nil
}

func (r *memoryCollection[T]) Count(ctx context.Context, field, value string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, m := range r.docs {
		if field == "" || matches(m[field], value) {
			n++
		}
	}
	return n, nil
}

func (r *memoryCollection[T]) FindBy(ctx context.Context, field, value, sortKey string) ([]*T, error) {
	return r.find(ctx, func(m bson.M) bool { return matches(m[field], value) }, sortKey)
}

func (r *memoryCollection[T]) FindOneFold(ctx context.Context, field, value string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	col := foldCollator()
	for _, m := range r.docs {
		if s, ok := m[field].(string); ok && col.CompareString(s, value) == 0 {
			return decode[T](m)
		}
	}
	return nil, ErrNotFound
}

func (r *memoryCollection[T]) find(ctx context.Context, keep func(bson.M) bool, sortKey string) ([]*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	selected := make([]bson.M, 0, len(r.docs))
	for _, m := range r.docs {
		if keep(m) {
			selected = append(selected, m)
		}
	}
	r.mu.RUnlock()

	if sortKey != "" {
		sort.SliceStable(selected, func(i, j int) bool {
			return compareValues(selected[i][sortKey], selected[j][sortKey]) < 0
		})
	}

	out := make([]*T, 0, len(selected))
	for _, m := range selected {
		doc, err := decode[T](m)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

func (r *memoryCollection[T]) indexOf(id string) int {
	for i, m := range r.docs {
		if m["id"] == id {
			return i
		}
	}
	return -1
}

func (r *memoryCollection[T]) checkUnique(m bson.M, id string) error {
	if len(r.uniqueFold) == 0 {
		return nil
	}
	col := foldCollator()
	for _, field := range r.uniqueFold {
		s, ok := m[field].(string)
		if !ok {
			continue
		}
		for _, other := range r.docs {
			if other["id"] == id {
				continue
			}
			if o, ok := other[field].(string); ok && col.CompareString(o, s) == 0 {
				return fmt.Errorf("%w: %s %q", ErrDuplicate, field, s)
			}
		}
	}
	return nil
}

// foldCollator compares base letters and accents, ignoring case. Collators
// are not safe for concurrent use, so each call gets its own.
func foldCollator() *collate.Collator {
	return collate.New(language.English, collate.IgnoreCase)
}

func encode(doc any) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func decode[T any](m bson.M) (*T, error) {
	raw, err := bson.Marshal(m)
	if err != nil {
		return nil, err
	}
	var doc T
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func matches(v any, want string) bool {
	switch t := v.(type) {
	case string:
		return t == want
	case primitive.A:
		for _, e := range t {
			if s, ok := e.(string); ok && s == want {
				return true
			}
		}
	}
	return false
}

// compareValues orders missing values first, then numbers, strings, booleans
// and dates, mirroring Mongo's cross-type sort order.
func compareValues(a, b any) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		return ra - rb
	}
	switch x := a.(type) {
	case string:
		return strings.Compare(x, b.(string))
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	case primitive.DateTime:
		return compareFloat(float64(x), float64(b.(primitive.DateTime)))
	}
	if fa, ok := toFloat(a); ok {
		fb, _ := toFloat(b)
		return compareFloat(fa, fb)
	}
	return 0
}

func typeRank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case int32, int64, float64:
		return 1
	case string:
		return 2
	case bool:
		return 4
	case primitive.DateTime:
		return 5
	default:
		return 3
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
