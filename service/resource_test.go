package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/annazecevic/catalog-service/domain"
	"github.com/annazecevic/catalog-service/repository"
)

func str(s string) *string { return &s }

func seedRelease(t *testing.T, c *repository.Catalog, id, title, artist string, genres ...string) *domain.Release {
	t.Helper()
	r := &domain.Release{Title: title, ArtistID: artist, Genres: genres, Tracks: []string{}, Covers: []string{}, Styles: []string{}}
	r.Stamp(id, time.Now())
	if err := c.Releases.Insert(context.Background(), r); err != nil {
		t.Fatalf("seed release %s: %v", id, err)
	}
	return r
}

func seedArtist(t *testing.T, c *repository.Catalog, id, name string) *domain.Artist {
	t.Helper()
	a := &domain.Artist{Name: name, Releases: []string{}, Genres: []string{}}
	a.Stamp(id, time.Now())
	if err := c.Artists.Insert(context.Background(), a); err != nil {
		t.Fatalf("seed artist %s: %v", id, err)
	}
	return a
}

func TestDeleteWithoutDependentsRemovesEntity(t *testing.T) {
	ctx := context.Background()
	cat := repository.NewMemoryCatalog(repository.Options{})
	svc := NewCatalogService(cat)
	seedArtist(t, cat, "a1", "Miles Davis")

	out, err := svc.Artists.Delete(ctx, "a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Deleted || out.Blocked() || out.Missing {
		t.Fatalf("expected a completed delete, got %+v", out)
	}
	if _, err := svc.Artists.Get(ctx, "a1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestDeleteWithDependentsIsRefused(t *testing.T) {
	ctx := context.Background()
	cat := repository.NewMemoryCatalog(repository.Options{})
	svc := NewCatalogService(cat)
	seedArtist(t, cat, "a1", "John Coltrane")
	seedRelease(t, cat, "r1", "Giant Steps", "a1")
	seedRelease(t, cat, "r2", "Blue Train", "a1")

	out, err := svc.Artists.Delete(ctx, "a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Blocked() || out.Deleted {
		t.Fatalf("expected a blocked delete, got %+v", out)
	}
	if out.Entity == nil || out.Entity.ID != "a1" {
		t.Fatalf("expected the artist in the outcome, got %+v", out.Entity)
	}
	if len(out.Dependents) != 2 || out.Dependents[0].ID != "r2" || out.Dependents[1].ID != "r1" {
		t.Fatalf("expected both releases ordered by title, got %v", out.Dependents)
	}

	if _, err := svc.Artists.Get(ctx, "a1"); err != nil {
		t.Fatalf("artist should still exist: %v", err)
	}
	if n, _ := cat.Releases.Count(ctx, "artist", "a1"); n != 2 {
		t.Fatalf("expected releases untouched, got %d", n)
	}
}

func TestDeleteMissingEntityIsAlreadyGone(t *testing.T) {
	svc := NewCatalogService(repository.NewMemoryCatalog(repository.Options{}))

	out, err := svc.Genres.Delete(context.Background(), "nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Missing || out.Deleted || out.Blocked() {
		t.Fatalf("expected a missing outcome, got %+v", out)
	}
}

func TestDeleteCheckMissingEntityIsNotFound(t *testing.T) {
	svc := NewCatalogService(repository.NewMemoryCatalog(repository.Options{}))

	if _, err := svc.Genres.DeleteCheck(context.Background(), "nope"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteCheckListsDependentsWithoutDeleting(t *testing.T) {
	ctx := context.Background()
	cat := repository.NewMemoryCatalog(repository.Options{})
	svc := NewCatalogService(cat)
	seedArtist(t, cat, "a1", "Nina Simone")
	seedRelease(t, cat, "r1", "Pastel Blues", "a1")

	out, err := svc.Artists.DeleteCheck(ctx, "a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Dependents) != 1 || out.Deleted {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if n, _ := svc.Artists.CountDependents(ctx, "a1"); n != 1 {
		t.Fatalf("expected 1 dependent, got %d", n)
	}
}

func TestUnguardedKindDeletesUnconditionally(t *testing.T) {
	ctx := context.Background()
	cat := repository.NewMemoryCatalog(repository.Options{})
	svc := NewCatalogService(cat)
	c := &domain.Copy{ReleaseID: "r1", Imprint: "Blue Note", Status: domain.CopyAvailable, Crates: []string{}}
	c.Stamp("c1", time.Now())
	if err := cat.Copies.Insert(ctx, c); err != nil {
		t.Fatalf("seed copy: %v", err)
	}

	if n, _ := svc.Copies.CountDependents(ctx, "c1"); n != 0 {
		t.Fatalf("copies have no dependents, got %d", n)
	}
	out, err := svc.Copies.Delete(ctx, "c1")
	if err != nil || !out.Deleted {
		t.Fatalf("expected delete, got %+v, %v", out, err)
	}
}

type failingReleases struct {
	repository.Collection[domain.Release]
	err error
}

func (f *failingReleases) FindBy(ctx context.Context, field, value, sortKey string) ([]*domain.Release, error) {
	return nil, f.err
}

func TestDeleteSurfacesStoreErrors(t *testing.T) {
	ctx := context.Background()
	cat := repository.NewMemoryCatalog(repository.Options{})
	boom := errors.New("store unavailable")
	cat.Releases = &failingReleases{Collection: cat.Releases, err: boom}
	svc := NewCatalogService(cat)
	seedArtist(t, cat, "a1", "Sun Ra")

	if _, err := svc.Artists.Delete(ctx, "a1"); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
	if _, err := svc.Artists.Get(ctx, "a1"); err != nil {
		t.Fatalf("artist should survive a failed guard: %v", err)
	}
}
