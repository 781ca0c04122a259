package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/annazecevic/catalog-service/domain"
)

func genre(id, name string) *domain.Genre {
	g := &domain.Genre{Name: name}
	g.Stamp(id, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	return g
}

func TestListSortsByKeyKeepingInsertionOrderForTies(t *testing.T) {
	ctx := context.Background()
	col := NewMemoryCatalog(Options{}).Genres

	for _, g := range []*domain.Genre{genre("1", "Rock"), genre("2", "Jazz"), genre("3", "Rock"), genre("4", "Blues")} {
		if err := col.Insert(ctx, g); err != nil {
			t.Fatalf("insert %s: %v", g.ID, err)
		}
	}

	got, err := col.List(ctx, "name")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"4", "2", "1", "3"}
	if len(got) != len(want) {
		t.Fatalf("expected %d genres, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, got[i].ID)
		}
	}
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	col := NewMemoryCatalog(Options{}).Genres
	if _, err := col.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInsertRejectsDuplicateID(t *testing.T) {
	ctx := context.Background()
	col := NewMemoryCatalog(Options{}).Genres
	if err := col.Insert(ctx, genre("1", "Rock")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := col.Insert(ctx, genre("1", "Jazz")); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestReplaceIsFullReplace(t *testing.T) {
	ctx := context.Background()
	col := NewMemoryCatalog(Options{}).Genres
	g := genre("1", "Rock")
	g.Desc = "loud"
	if err := col.Insert(ctx, g); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := col.Replace(ctx, "1", genre("1", "Rock and Roll")); err != nil {
		t.Fatalf("replace: %v", err)
	}
	got, err := col.Get(ctx, "1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Rock and Roll" || got.Desc != "" {
		t.Fatalf("expected desc cleared by replace, got %+v", got)
	}

	if err := col.Replace(ctx, "missing", genre("missing", "x")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteIsUnconditionalAndIdempotent(t *testing.T) {
	ctx := context.Background()
	col := NewMemoryCatalog(Options{}).Genres
	_ = col.Insert(ctx, genre("1", "Rock"))

	if err := col.Delete(ctx, "1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := col.Delete(ctx, "1"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if _, err := col.Get(ctx, "1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestCountAndFindByMatchScalarsAndArrays(t *testing.T) {
	ctx := context.Background()
	releases := NewMemoryCatalog(Options{}).Releases

	add := func(id, title, artist string, genres ...string) {
		r := &domain.Release{Title: title, ArtistID: artist, Genres: genres}
		r.Stamp(id, time.Now())
		if err := releases.Insert(ctx, r); err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}
	add("r1", "Blue Train", "a1", "g1", "g2")
	add("r2", "A Love Supreme", "a1", "g2")
	add("r3", "Kind of Blue", "a2")

	if n, _ := releases.Count(ctx, "artist", "a1"); n != 2 {
		t.Fatalf("expected 2 releases by a1, got %d", n)
	}
	if n, _ := releases.Count(ctx, "genres", "g2"); n != 2 {
		t.Fatalf("expected 2 releases in g2, got %d", n)
	}
	if n, _ := releases.Count(ctx, "", ""); n != 3 {
		t.Fatalf("expected 3 releases, got %d", n)
	}

	got, err := releases.FindBy(ctx, "genres", "g2", "title")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 2 || got[0].ID != "r2" || got[1].ID != "r1" {
		t.Fatalf("unexpected releases %v", got)
	}
}

func TestFindOneFoldIgnoresCase(t *testing.T) {
	ctx := context.Background()
	col := NewMemoryCatalog(Options{}).Genres
	_ = col.Insert(ctx, genre("1", "Rock"))

	for _, name := range []string{"rock", "ROCK", "rOcK"} {
		got, err := col.FindOneFold(ctx, "name", name)
		if err != nil {
			t.Fatalf("lookup %q: %v", name, err)
		}
		if got.ID != "1" {
			t.Fatalf("lookup %q: expected 1, got %s", name, got.ID)
		}
	}
	if _, err := col.FindOneFold(ctx, "name", "Rockabilly"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUniqueGenreNamesOption(t *testing.T) {
	ctx := context.Background()

	loose := NewMemoryCatalog(Options{}).Genres
	_ = loose.Insert(ctx, genre("1", "Rock"))
	if err := loose.Insert(ctx, genre("2", "ROCK")); err != nil {
		t.Fatalf("expected case-variant insert to succeed without unique option, got %v", err)
	}

	strict := NewMemoryCatalog(Options{UniqueGenreNames: true}).Genres
	_ = strict.Insert(ctx, genre("1", "Rock"))
	if err := strict.Insert(ctx, genre("2", "ROCK")); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate with unique option, got %v", err)
	}
	if err := strict.Replace(ctx, "1", genre("1", "rock")); err != nil {
		t.Fatalf("renaming a genre to its own name should pass, got %v", err)
	}
}

func TestCancelledContextIsHonoured(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	col := NewMemoryCatalog(Options{}).Genres
	if _, err := col.List(ctx, "name"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
