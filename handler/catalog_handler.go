package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/annazecevic/catalog-service/domain"
	"github.com/annazecevic/catalog-service/dto"
	"github.com/annazecevic/catalog-service/service"
	"github.com/annazecevic/catalog-service/validation"
	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	svc *service.CatalogService
}

func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// RegisterRoutes mounts the catalogue under /catalog. mutating runs before
// every POST route.
func (h *CatalogHandler) RegisterRoutes(r *gin.Engine, mutating ...gin.HandlerFunc) {
	g := r.Group("/catalog")
	g.GET("", h.Summary)

	svc := h.svc
	(&entityRoutes[domain.Artist, domain.Release, dto.ArtistInput]{
		kind: domain.KindArtist, plural: "artists", depKind: domain.KindRelease, depsKey: "artist_releases",
		res: svc.Artists, label: artistLabel, depLabel: releaseLabel,
		create: neverExists(svc.CreateArtist), update: svc.UpdateArtist,
	}).register(g, mutating)

	(&entityRoutes[domain.Genre, domain.Release, dto.GenreInput]{
		kind: domain.KindGenre, plural: "genres", depKind: domain.KindRelease, depsKey: "genre_releases",
		res: svc.Genres, label: genreLabel, depLabel: releaseLabel,
		create: svc.CreateGenre, update: svc.UpdateGenre,
	}).register(g, mutating)

	(&entityRoutes[domain.Release, domain.Copy, dto.ReleaseInput]{
		kind: domain.KindRelease, plural: "releases", depKind: domain.KindCopy, depsKey: "release_copies",
		res: svc.Releases, label: releaseLabel, depLabel: copyLabel,
		create: neverExists(svc.CreateRelease), update: svc.UpdateRelease,
		options: h.releaseOptions, detail: h.releaseDetail,
	}).register(g, mutating)

	(&entityRoutes[domain.Copy, domain.Copy, dto.CopyInput]{
		kind: domain.KindCopy, plural: "copies",
		res: svc.Copies, label: copyLabel,
		create: neverExists(svc.CreateCopy), update: svc.UpdateCopy,
		options: h.copyOptions,
	}).register(g, mutating)

	(&entityRoutes[domain.Style, domain.Release, dto.StyleInput]{
		kind: domain.KindStyle, plural: "styles", depKind: domain.KindRelease, depsKey: "style_releases",
		res: svc.Styles, label: styleLabel, depLabel: releaseLabel,
		create: neverExists(svc.CreateStyle), update: svc.UpdateStyle,
	}).register(g, mutating)

	(&entityRoutes[domain.Track, domain.Release, dto.TrackInput]{
		kind: domain.KindTrack, plural: "tracks", depKind: domain.KindRelease, depsKey: "track_releases",
		res: svc.Tracks, label: trackLabel, depLabel: releaseLabel,
		create: neverExists(svc.CreateTrack), update: svc.UpdateTrack,
	}).register(g, mutating)

	(&entityRoutes[domain.Crate, domain.Copy, dto.CrateInput]{
		kind: domain.KindCrate, plural: "crates", depKind: domain.KindCopy, depsKey: "crate_copies",
		res: svc.Crates, label: crateLabel, depLabel: copyLabel,
		create: neverExists(svc.CreateCrate), update: svc.UpdateCrate,
	}).register(g, mutating)

	(&entityRoutes[domain.Cover, domain.Release, dto.CoverInput]{
		kind: domain.KindCover, plural: "covers", depKind: domain.KindRelease, depsKey: "cover_releases",
		res: svc.Covers, label: coverLabel, depLabel: releaseLabel,
		create: neverExists(svc.CreateCover), update: svc.UpdateCover,
	}).register(g, mutating)
}

func (h *CatalogHandler) Summary(c *gin.Context) {
	s, err := h.svc.Summary(c.Request.Context())
	if err != nil {
		fail(c, "catalog", err)
		return
	}
	present(c, Result{
		Title: "Catalog Home",
		Data: gin.H{
			"title":                "Catalog Home",
			"release_count":        s.ReleaseCount,
			"copy_count":           s.CopyCount,
			"copy_available_count": s.CopyAvailableCount,
			"artist_count":         s.ArtistCount,
			"genre_count":          s.GenreCount,
		},
		Links: nav,
	})
}

func (h *CatalogHandler) releaseOptions(ctx context.Context) (gin.H, error) {
	opts, err := h.svc.ReleaseOptions(ctx)
	if err != nil {
		return nil, err
	}
	return gin.H{"artists": opts.Artists, "genres": opts.Genres}, nil
}

func (h *CatalogHandler) copyOptions(ctx context.Context) (gin.H, error) {
	releases, err := h.svc.CopyOptions(ctx)
	if err != nil {
		return nil, err
	}
	return gin.H{"release_list": releases, "statuses": domain.CopyStatuses}, nil
}

func (h *CatalogHandler) releaseDetail(ctx context.Context, id string) (gin.H, []Link, error) {
	d, err := h.svc.ReleaseDetail(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	var links []Link
	if d.Artist != nil {
		links = append(links, link(domain.Path(domain.KindArtist, d.Artist.ID), d.Artist.Name))
	}
	for _, g := range d.Genres {
		links = append(links, link(domain.Path(domain.KindGenre, g.ID), g.Name))
	}
	for _, cp := range d.Copies {
		links = append(links, link(domain.Path(domain.KindCopy, cp.ID), copyLabel(cp)))
	}
	return gin.H{
		domain.KindRelease: d.Release,
		"release_artist":   d.Artist,
		"release_genres":   d.Genres,
		"release_copies":   d.Copies,
	}, links, nil
}

// entityRoutes serves the list, create, detail, update and delete routes of
// one kind E guarded by dependents D and submitted as I.
type entityRoutes[E any, D any, I any] struct {
	kind    string
	plural  string
	depKind string
	depsKey string

	res      *service.Resource[E, D]
	label    func(*E) string
	depLabel func(*D) string
	create   func(context.Context, *I) (*E, bool, error)
	update   func(context.Context, string, *I) (*E, error)
	options  func(context.Context) (gin.H, error)
	detail   func(context.Context, string) (gin.H, []Link, error)
}

func (k *entityRoutes[E, D, I]) register(g *gin.RouterGroup, mutating []gin.HandlerFunc) {
	g.GET("/"+k.plural, k.list)
	g.GET("/"+k.kind+"/create", k.createForm)
	g.POST("/"+k.kind+"/create", chain(mutating, k.createSubmit)...)
	g.GET("/"+k.kind+"/:id", k.show)
	g.GET("/"+k.kind+"/:id/update", k.updateForm)
	g.POST("/"+k.kind+"/:id/update", chain(mutating, k.updateSubmit)...)
	g.GET("/"+k.kind+"/:id/delete", k.deleteForm)
	g.POST("/"+k.kind+"/:id/delete", chain(mutating, k.deleteSubmit)...)
}

func (k *entityRoutes[E, D, I]) list(c *gin.Context) {
	items, err := k.res.List(c.Request.Context())
	if err != nil {
		fail(c, k.kind, err)
		return
	}
	links := make([]Link, len(items))
	for i, e := range items {
		links[i] = link(domain.Path(k.kind, idOf(e)), k.label(e))
	}
	present(c, Result{
		Title: titleCase(k.kind) + " List",
		Data:  gin.H{k.kind + "_list": items},
		Links: links,
	})
}

func (k *entityRoutes[E, D, I]) createForm(c *gin.Context) {
	title := "Create " + titleCase(k.kind)
	data, err := k.formData(c.Request.Context(), title)
	if err != nil {
		fail(c, k.kind, err)
		return
	}
	present(c, Result{Title: title, Data: data})
}

func (k *entityRoutes[E, D, I]) createSubmit(c *gin.Context) {
	var in I
	if err := c.ShouldBind(&in); err != nil {
		badRequest(c, err)
		return
	}

	e, existed, err := k.create(c.Request.Context(), &in)
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		k.invalid(c, "Create "+titleCase(k.kind), e, verrs)
		return
	}
	if err != nil {
		fail(c, k.kind, err)
		return
	}

	url := domain.Path(k.kind, idOf(e))
	data := gin.H{k.kind + "_url": url, k.kind: e}
	status := http.StatusCreated
	if existed {
		data[k.kind+"_exists"] = true
		status = http.StatusOK
	}
	present(c, Result{Status: status, Data: data, Redirect: url})
}

func (k *entityRoutes[E, D, I]) show(c *gin.Context) {
	id := c.Param("id")
	if k.detail != nil {
		data, links, err := k.detail(c.Request.Context(), id)
		if err != nil {
			fail(c, k.kind, err)
			return
		}
		present(c, Result{Title: titleCase(k.kind) + " Detail", Data: data, Links: links})
		return
	}

	e, deps, err := k.res.Detail(c.Request.Context(), id)
	if err != nil {
		fail(c, k.kind, err)
		return
	}
	present(c, Result{
		Title: titleCase(k.kind) + " Detail",
		Data:  k.withDependents(gin.H{k.kind: e}, deps),
		Links: k.dependentLinks(deps),
	})
}

func (k *entityRoutes[E, D, I]) updateForm(c *gin.Context) {
	e, err := k.res.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, k.kind, err)
		return
	}
	title := "Update " + titleCase(k.kind)
	data, err := k.formData(c.Request.Context(), title)
	if err != nil {
		fail(c, k.kind, err)
		return
	}
	data[k.kind] = e
	present(c, Result{Title: title, Data: data})
}

func (k *entityRoutes[E, D, I]) updateSubmit(c *gin.Context) {
	var in I
	if err := c.ShouldBind(&in); err != nil {
		badRequest(c, err)
		return
	}

	e, err := k.update(c.Request.Context(), c.Param("id"), &in)
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		k.invalid(c, "Update "+titleCase(k.kind), e, verrs)
		return
	}
	if err != nil {
		fail(c, k.kind, err)
		return
	}

	url := domain.Path(k.kind, idOf(e))
	present(c, Result{Data: gin.H{k.kind + "_url": url, k.kind: e}, Redirect: url})
}

func (k *entityRoutes[E, D, I]) deleteForm(c *gin.Context) {
	out, err := k.res.DeleteCheck(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, k.kind, err)
		return
	}
	k.presentDelete(c, out)
}

func (k *entityRoutes[E, D, I]) deleteSubmit(c *gin.Context) {
	out, err := k.res.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, k.kind, err)
		return
	}
	if out.Blocked() {
		k.presentDelete(c, out)
		return
	}
	present(c, Result{Data: gin.H{"success": true}, Redirect: "/catalog/" + k.plural})
}

func (k *entityRoutes[E, D, I]) presentDelete(c *gin.Context, out *service.DeleteOutcome[E, D]) {
	title := "Delete " + titleCase(k.kind)
	present(c, Result{
		Title: title,
		Data:  k.withDependents(gin.H{"title": title, k.kind: out.Entity}, out.Dependents),
		Links: k.dependentLinks(out.Dependents),
	})
}

// invalid shows the form again with the sanitized submission and every
// failed rule.
func (k *entityRoutes[E, D, I]) invalid(c *gin.Context, title string, e *E, verrs validation.Errors) {
	data, err := k.formData(c.Request.Context(), title)
	if err != nil {
		fail(c, k.kind, err)
		return
	}
	data[k.kind] = e
	data["errors"] = verrs
	present(c, Result{Status: http.StatusUnprocessableEntity, Title: title, Data: data})
}

func (k *entityRoutes[E, D, I]) formData(ctx context.Context, title string) (gin.H, error) {
	data := gin.H{"title": title}
	if k.options == nil {
		return data, nil
	}
	opts, err := k.options(ctx)
	if err != nil {
		return nil, err
	}
	for key, v := range opts {
		data[key] = v
	}
	return data, nil
}

func (k *entityRoutes[E, D, I]) withDependents(data gin.H, deps []*D) gin.H {
	if k.depsKey != "" {
		data[k.depsKey] = deps
	}
	return data
}

func (k *entityRoutes[E, D, I]) dependentLinks(deps []*D) []Link {
	if k.depLabel == nil {
		return nil
	}
	links := make([]Link, len(deps))
	for i, d := range deps {
		links[i] = link(domain.Path(k.depKind, idOf(d)), k.depLabel(d))
	}
	return links
}

func neverExists[E any, I any](fn func(context.Context, *I) (*E, error)) func(context.Context, *I) (*E, bool, error) {
	return func(ctx context.Context, in *I) (*E, bool, error) {
		e, err := fn(ctx, in)
		return e, false, err
	}
}

func chain(mw []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(mw)+1)
	return append(append(out, mw...), h)
}

func idOf[T any](e *T) string {
	return any(e).(domain.Entity).Doc().ID
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func artistLabel(a *domain.Artist) string { return a.Name }
func genreLabel(g *domain.Genre) string { return g.Name }
func releaseLabel(r *domain.Release) string { return r.Title }
func styleLabel(s *domain.Style) string { return s.Name }
func trackLabel(t *domain.Track) string { return t.Title }
func crateLabel(c *domain.Crate) string { return c.Name }
func coverLabel(c *domain.Cover) string { return c.ImageURL }

func copyLabel(c *domain.Copy) string {
	return c.Imprint + " (" + string(c.Status) + ")"
}
