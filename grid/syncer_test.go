package grid_test

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/annazecevic/catalog-service/config"
	"github.com/annazecevic/catalog-service/domain"
	"github.com/annazecevic/catalog-service/grid"
	"github.com/annazecevic/catalog-service/handler"
	"github.com/annazecevic/catalog-service/logger"
	"github.com/annazecevic/catalog-service/repository"
	"github.com/annazecevic/catalog-service/service"
	"github.com/annazecevic/catalog-service/validation"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogServer(t *testing.T) (*httptest.Server, *repository.Catalog) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cat := repository.NewMemoryCatalog(repository.Options{})
	cfg := &config.Config{
		JWTSecret:         "test-secret",
		SessionTTL:        time.Hour,
		RateLimitRequests: 10000,
		RateLimitWindow:   time.Second,
	}
	srv := httptest.NewServer(handler.NewRouter(cfg, service.NewCatalogService(cat), service.NewUserService(cat.Users)))
	t.Cleanup(srv.Close)
	return srv, cat
}

func seedCopy(t *testing.T, cat *repository.Catalog) {
	t.Helper()
	ctx := context.Background()
	now := time.Now()

	a := &domain.Artist{Name: "John Coltrane", Releases: []string{}, Genres: []string{}}
	a.Stamp("a1", now)
	r := &domain.Release{Title: "Blue Train", ArtistID: "a1", Genres: []string{}, Tracks: []string{}, Covers: []string{}, Styles: []string{}}
	r.Stamp("r1", now)
	due := time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC)
	c := &domain.Copy{ReleaseID: "r1", Imprint: "Blue Note", Status: domain.CopyLoaned, DueBack: &due, Crates: []string{}}
	c.Stamp("c1", now)

	require.NoError(t, cat.Artists.Insert(ctx, a))
	require.NoError(t, cat.Releases.Insert(ctx, r))
	require.NoError(t, cat.Copies.Insert(ctx, c))
}

var columns = []grid.Column{
	{Field: "id", Title: "ID"},
	{Field: "release", Title: "Release", Editable: true},
	{Field: "imprint", Title: "Imprint", Editable: true},
	{Field: "status", Title: "Status", Editable: true},
	{Field: "due_back", Title: "Due Back", Editor: grid.DateEditor, Editable: true},
}

func TestGridEditsReachTheCatalog(t *testing.T) {
	srv, cat := newCatalogServer(t)
	seedCopy(t, cat)
	ctx := context.Background()

	syncer := grid.NewHTTPSyncer(srv.URL, domain.KindCopy, "copies", 5*time.Second)
	records, err := syncer.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)

	var buf bytes.Buffer
	g := grid.New(domain.KindCopy, columns, syncer, logger.NewWriterLogger(logger.Config{ServiceName: "grid-test"}, &buf))
	g.Load(records)
	key := g.Rows()[0].Key

	shown, err := g.Display(key, "due_back")
	require.NoError(t, err)
	assert.Equal(t, "03/11/2026", shown)

	_, err = g.DoubleActivate(key, "imprint")
	require.NoError(t, err)
	require.NoError(t, g.Commit(ctx, "Blue Note Classic"))

	_, err = g.DoubleActivate(key, "due_back")
	require.NoError(t, err)
	require.NoError(t, g.Commit(ctx, "2026-12-01"))

	stored, err := cat.Copies.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Blue Note Classic", stored.Imprint)
	assert.Equal(t, domain.CopyLoaned, stored.Status)
	require.NotNil(t, stored.DueBack)
	assert.Equal(t, "2026-12-01", stored.DueBack.Format("2006-01-02"))
	assert.Equal(t, 3, stored.Revision)
}

func TestGridKeepsRejectedEdit(t *testing.T) {
	srv, cat := newCatalogServer(t)
	seedCopy(t, cat)
	ctx := context.Background()

	syncer := grid.NewHTTPSyncer(srv.URL, domain.KindCopy, "copies", 5*time.Second)
	records, err := syncer.Fetch(ctx)
	require.NoError(t, err)

	var buf bytes.Buffer
	g := grid.New(domain.KindCopy, columns, syncer, logger.NewWriterLogger(logger.Config{ServiceName: "grid-test"}, &buf))
	g.Load(records)
	key := g.Rows()[0].Key

	_, err = g.DoubleActivate(key, "due_back")
	require.NoError(t, err)
	err = g.Commit(ctx, "03/12/2026")

	var syncErr *grid.SyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, 422, syncErr.Status)
	assert.Equal(t, validation.Errors{{Field: "due_back", Message: "Invalid date"}}, syncErr.Errors)

	shown, _ := g.Display(key, "due_back")
	assert.Equal(t, grid.InvalidDate, shown)
	assert.Contains(t, buf.String(), logger.EventGridSyncFailure)

	stored, err := cat.Copies.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "2026-11-03", stored.DueBack.Format("2006-01-02"))
}

func TestAddedRowIsCreatedOnceComplete(t *testing.T) {
	srv, cat := newCatalogServer(t)
	seedCopy(t, cat)
	ctx := context.Background()

	syncer := grid.NewHTTPSyncer(srv.URL, domain.KindCopy, "copies", 5*time.Second)
	g := grid.New(domain.KindCopy, columns, syncer, logger.NewWriterLogger(logger.Config{ServiceName: "grid-test"}, &bytes.Buffer{}))
	row := g.AddRow()

	_, err := g.DoubleActivate(row.Key, "release")
	require.NoError(t, err)
	err = g.Commit(ctx, "r1")
	var syncErr *grid.SyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Empty(t, row.ID)

	_, err = g.DoubleActivate(row.Key, "imprint")
	require.NoError(t, err)
	require.NoError(t, g.Commit(ctx, "Prestige"))
	require.NotEmpty(t, row.ID)

	stored, err := cat.Copies.Get(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, "Prestige", stored.Imprint)
	assert.Equal(t, domain.CopyMaintenance, stored.Status)
}

func TestUpdateReportsNotFound(t *testing.T) {
	srv, _ := newCatalogServer(t)

	syncer := grid.NewHTTPSyncer(srv.URL, domain.KindGenre, "genres", 5*time.Second)
	err := syncer.Update(context.Background(), "missing", map[string]any{"name": "Hard Bop"})

	var syncErr *grid.SyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, 404, syncErr.Status)
	assert.Equal(t, "genre not found", syncErr.Message)
}
