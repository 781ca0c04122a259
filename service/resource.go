package service

import (
	"context"
	"errors"
	"time"

	"github.com/annazecevic/catalog-service/domain"
	"github.com/annazecevic/catalog-service/logger"
	"github.com/annazecevic/catalog-service/repository"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Resource serves one stored kind E whose deletion is guarded by the
// documents of kind D referencing it through refField. A Resource without a
// dependent collection is deleted unconditionally.
type Resource[E any, D any] struct {
	Kind       string
	entities   repository.Collection[E]
	dependents repository.Collection[D]
	refField   string
	sortKey    string
	depSortKey string

	newID func() string
	now   func() time.Time
}

func NewResource[E any, D any](kind string, entities repository.Collection[E], sortKey string) *Resource[E, D] {
	return &Resource[E, D]{
		Kind:     kind,
		entities: entities,
		sortKey:  sortKey,
		newID:    func() string { return uuid.New().String() },
		now:      time.Now,
	}
}

// GuardedBy registers the dependent collection consulted before a delete.
func (r *Resource[E, D]) GuardedBy(dependents repository.Collection[D], refField, sortKey string) *Resource[E, D] {
	r.dependents = dependents
	r.refField = refField
	r.depSortKey = sortKey
	return r
}

// DeleteOutcome describes what a delete request found and did. A blocked
// outcome carries the same entity and dependents as the confirmation page.
type DeleteOutcome[E any, D any] struct {
	Entity     *E
	Dependents []*D
	Deleted    bool
	Missing    bool
}

func (o *DeleteOutcome[E, D]) Blocked() bool {
	return !o.Deleted && !o.Missing && len(o.Dependents) > 0
}

func (r *Resource[E, D]) List(ctx context.Context) ([]*E, error) {
	return r.entities.List(ctx, r.sortKey)
}

func (r *Resource[E, D]) Get(ctx context.Context, id string) (*E, error) {
	return r.entities.Get(ctx, id)
}

// Detail loads the entity and its dependents concurrently and waits for both.
func (r *Resource[E, D]) Detail(ctx context.Context, id string) (*E, []*D, error) {
	var (
		entity     *E
		dependents []*D
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entity, err = r.entities.Get(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		dependents, err = r.findDependents(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return entity, dependents, nil
}

func (r *Resource[E, D]) CountDependents(ctx context.Context, id string) (int64, error) {
	if r.dependents == nil {
		return 0, nil
	}
	return r.dependents.Count(ctx, r.refField, id)
}

// DeleteCheck backs the confirmation page. A missing entity is ErrNotFound.
func (r *Resource[E, D]) DeleteCheck(ctx context.Context, id string) (*DeleteOutcome[E, D], error) {
	entity, dependents, err := r.Detail(ctx, id)
	if err != nil {
		return nil, err
	}
	return &DeleteOutcome[E, D]{Entity: entity, Dependents: dependents}, nil
}

// Delete removes the entity when nothing references it. A missing entity is
// reported as already gone.
func (r *Resource[E, D]) Delete(ctx context.Context, id string) (*DeleteOutcome[E, D], error) {
	entity, dependents, err := r.Detail(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		guardDecisions.WithLabelValues(r.Kind, "missing").Inc()
		return &DeleteOutcome[E, D]{Missing: true}, nil
	}
	if err != nil {
		return nil, err
	}

	out := &DeleteOutcome[E, D]{Entity: entity, Dependents: dependents}
	if len(dependents) > 0 {
		guardDecisions.WithLabelValues(r.Kind, "blocked").Inc()
		logger.Warn(logger.EventDeleteRefused, "Delete refused, dependents exist", logger.Fields(
			"kind", r.Kind,
			"id", id,
			"dependents", len(dependents),
		))
		return out, nil
	}

	if err := r.entities.Delete(ctx, id); err != nil {
		return nil, err
	}
	out.Deleted = true
	guardDecisions.WithLabelValues(r.Kind, "deleted").Inc()
	logger.Info(logger.EventEntityDeleted, "Entity deleted", logger.Fields(
		"kind", r.Kind,
		"id", id,
	))
	return out, nil
}

func (r *Resource[E, D]) findDependents(ctx context.Context, id string) ([]*D, error) {
	if r.dependents == nil {
		return []*D{}, nil
	}
	return r.dependents.FindBy(ctx, r.refField, id, r.depSortKey)
}

// insert stamps a fresh identity on e and stores it.
func (r *Resource[E, D]) insert(ctx context.Context, e *E) error {
	doc := any(e).(domain.Entity).Doc()
	doc.Stamp(r.newID(), r.now())
	if err := r.entities.Insert(ctx, e); err != nil {
		return err
	}
	logger.Info(logger.EventEntityCreated, "Entity created", logger.Fields(
		"kind", r.Kind,
		"id", doc.ID,
	))
	return nil
}

// replace stores e as the next revision of the document under id. Fields
// left unset on e are cleared.
func (r *Resource[E, D]) replace(ctx context.Context, id string, e *E) error {
	prev, err := r.entities.Get(ctx, id)
	if err != nil {
		return err
	}
	doc := any(e).(domain.Entity).Doc()
	doc.Succeed(any(prev).(domain.Entity).Doc(), r.now())
	if err := r.entities.Replace(ctx, id, e); err != nil {
		return err
	}
	logger.Info(logger.EventEntityUpdated, "Entity updated", logger.Fields(
		"kind", r.Kind,
		"id", id,
		"revision", doc.Revision,
	))
	return nil
}
