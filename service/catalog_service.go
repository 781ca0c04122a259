package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/annazecevic/catalog-service/domain"
	"github.com/annazecevic/catalog-service/dto"
	"github.com/annazecevic/catalog-service/logger"
	"github.com/annazecevic/catalog-service/repository"
	"github.com/annazecevic/catalog-service/validation"
	"golang.org/x/sync/errgroup"
)

var durationPattern = regexp.MustCompile(`^\d{1,3}:[0-5]\d$`)

// CatalogService exposes one guarded Resource per kind plus the create and
// update paths that validate submitted input before touching the store.
// Create and update return the sanitized entity alongside validation.Errors
// so the form can be shown again.
type CatalogService struct {
	Artists  *Resource[domain.Artist, domain.Release]
	Genres   *Resource[domain.Genre, domain.Release]
	Releases *Resource[domain.Release, domain.Copy]
	Copies   *Resource[domain.Copy, domain.Copy]
	Styles   *Resource[domain.Style, domain.Release]
	Tracks   *Resource[domain.Track, domain.Release]
	Crates   *Resource[domain.Crate, domain.Copy]
	Covers   *Resource[domain.Cover, domain.Release]

	catalog *repository.Catalog
}

func NewCatalogService(c *repository.Catalog) *CatalogService {
	return &CatalogService{
		Artists: NewResource[domain.Artist, domain.Release](domain.KindArtist, c.Artists, "name").
			GuardedBy(c.Releases, "artist", "title"),
		Genres: NewResource[domain.Genre, domain.Release](domain.KindGenre, c.Genres, "name").
			GuardedBy(c.Releases, "genres", "title"),
		Releases: NewResource[domain.Release, domain.Copy](domain.KindRelease, c.Releases, "title").
			GuardedBy(c.Copies, "release", "imprint"),
		Copies: NewResource[domain.Copy, domain.Copy](domain.KindCopy, c.Copies, "imprint"),
		Styles: NewResource[domain.Style, domain.Release](domain.KindStyle, c.Styles, "name").
			GuardedBy(c.Releases, "styles", "title"),
		Tracks: NewResource[domain.Track, domain.Release](domain.KindTrack, c.Tracks, "title").
			GuardedBy(c.Releases, "tracks", "title"),
		Crates: NewResource[domain.Crate, domain.Copy](domain.KindCrate, c.Crates, "name").
			GuardedBy(c.Copies, "crates", "imprint"),
		Covers: NewResource[domain.Cover, domain.Release](domain.KindCover, c.Covers, "image_url").
			GuardedBy(c.Releases, "covers", "title"),
		catalog: c,
	}
}

// Summary holds the counts shown on the catalogue home page.
type Summary struct {
	ReleaseCount       int64 `json:"release_count"`
	CopyCount          int64 `json:"copy_count"`
	CopyAvailableCount int64 `json:"copy_available_count"`
	ArtistCount        int64 `json:"artist_count"`
	GenreCount         int64 `json:"genre_count"`
}

func (s *CatalogService) Summary(ctx context.Context) (*Summary, error) {
	out := &Summary{}
	g, gctx := errgroup.WithContext(ctx)
	count := func(dst *int64, fn func(context.Context) (int64, error)) {
		g.Go(func() error {
			n, err := fn(gctx)
			*dst = n
			return err
		})
	}
	count(&out.ReleaseCount, func(ctx context.Context) (int64, error) { return s.catalog.Releases.Count(ctx, "", "") })
	count(&out.CopyCount, func(ctx context.Context) (int64, error) { return s.catalog.Copies.Count(ctx, "", "") })
	count(&out.CopyAvailableCount, func(ctx context.Context) (int64, error) {
		return s.catalog.Copies.Count(ctx, "status", string(domain.CopyAvailable))
	})
	count(&out.ArtistCount, func(ctx context.Context) (int64, error) { return s.catalog.Artists.Count(ctx, "", "") })
	count(&out.GenreCount, func(ctx context.Context) (int64, error) { return s.catalog.Genres.Count(ctx, "", "") })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ReleaseDetail is a release with its references resolved.
type ReleaseDetail struct {
	Release *domain.Release
	Artist  *domain.Artist
	Genres  []*domain.Genre
	Copies  []*domain.Copy
}

// ReleaseDetail resolves the artist and genres of a release. References that
// no longer resolve are left out.
func (s *CatalogService) ReleaseDetail(ctx context.Context, id string) (*ReleaseDetail, error) {
	release, copies, err := s.Releases.Detail(ctx, id)
	if err != nil {
		return nil, err
	}
	out := &ReleaseDetail{Release: release, Copies: copies}

	genres := make([]*domain.Genre, len(release.Genres))
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := s.catalog.Artists.Get(gctx, release.ArtistID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		out.Artist = a
		return err
	})
	for i, gid := range release.Genres {
		g.Go(func() error {
			genre, err := s.catalog.Genres.Get(gctx, gid)
			if errors.Is(err, repository.ErrNotFound) {
				return nil
			}
			genres[i] = genre
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out.Genres = make([]*domain.Genre, 0, len(genres))
	for _, genre := range genres {
		if genre != nil {
			out.Genres = append(out.Genres, genre)
		}
	}
	return out, nil
}

// ReleaseOptions lists the choices offered by the release form.
type ReleaseOptions struct {
	Artists []*domain.Artist
	Genres  []*domain.Genre
}

func (s *CatalogService) ReleaseOptions(ctx context.Context) (*ReleaseOptions, error) {
	out := &ReleaseOptions{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		out.Artists, err = s.Artists.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		out.Genres, err = s.Genres.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// CopyOptions lists the releases a copy can belong to.
func (s *CatalogService) CopyOptions(ctx context.Context) ([]*domain.Release, error) {
	return s.Releases.List(ctx)
}

func (s *CatalogService) CreateArtist(ctx context.Context, in *dto.ArtistInput) (*domain.Artist, error) {
	a, err := buildArtist(in)
	if err != nil {
		return a, s.rejected(domain.KindArtist, err)
	}
	return a, s.Artists.insert(ctx, a)
}

func (s *CatalogService) UpdateArtist(ctx context.Context, id string, in *dto.ArtistInput) (*domain.Artist, error) {
	a, err := buildArtist(in)
	if err != nil {
		a.ID = id
		return a, s.rejected(domain.KindArtist, err)
	}
	return a, s.Artists.replace(ctx, id, a)
}

// CreateGenre stores a new genre unless one with the same name, ignoring
// case, already exists. In that case the existing genre is returned and
// existed is true.
func (s *CatalogService) CreateGenre(ctx context.Context, in *dto.GenreInput) (genre *domain.Genre, existed bool, err error) {
	g, err := buildGenre(in)
	if err != nil {
		return g, false, s.rejected(domain.KindGenre, err)
	}

	existing, err := s.catalog.Genres.FindOneFold(ctx, "name", g.Name)
	switch {
	case err == nil:
		return s.duplicateGenre(g.Name, existing), true, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, false, err
	}

	if err := s.Genres.insert(ctx, g); err != nil {
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, false, err
		}
		// A concurrent create won the unique index.
		existing, ferr := s.catalog.Genres.FindOneFold(ctx, "name", g.Name)
		if ferr != nil {
			return nil, false, err
		}
		return s.duplicateGenre(g.Name, existing), true, nil
	}
	guardDecisions.WithLabelValues(domain.KindGenre, "created").Inc()
	return g, false, nil
}

func (s *CatalogService) duplicateGenre(name string, existing *domain.Genre) *domain.Genre {
	guardDecisions.WithLabelValues(domain.KindGenre, "duplicate").Inc()
	logger.Info(logger.EventDuplicateEntity, "Genre already exists", logger.Fields(
		"name", name,
		"existing_id", existing.ID,
	))
	return existing
}

func (s *CatalogService) UpdateGenre(ctx context.Context, id string, in *dto.GenreInput) (*domain.Genre, error) {
	g, err := buildGenre(in)
	if err != nil {
		g.ID = id
		return g, s.rejected(domain.KindGenre, err)
	}
	return g, s.Genres.replace(ctx, id, g)
}

func (s *CatalogService) CreateRelease(ctx context.Context, in *dto.ReleaseInput) (*domain.Release, error) {
	r, err := s.buildRelease(ctx, in)
	if err != nil {
		return r, s.rejected(domain.KindRelease, err)
	}
	return r, s.Releases.insert(ctx, r)
}

func (s *CatalogService) UpdateRelease(ctx context.Context, id string, in *dto.ReleaseInput) (*domain.Release, error) {
	r, err := s.buildRelease(ctx, in)
	if err != nil {
		if r != nil {
			r.ID = id
		}
		return r, s.rejected(domain.KindRelease, err)
	}
	return r, s.Releases.replace(ctx, id, r)
}

func (s *CatalogService) CreateCopy(ctx context.Context, in *dto.CopyInput) (*domain.Copy, error) {
	c, err := s.buildCopy(ctx, in)
	if err != nil {
		return c, s.rejected(domain.KindCopy, err)
	}
	return c, s.Copies.insert(ctx, c)
}

func (s *CatalogService) UpdateCopy(ctx context.Context, id string, in *dto.CopyInput) (*domain.Copy, error) {
	c, err := s.buildCopy(ctx, in)
	if err != nil {
		if c != nil {
			c.ID = id
		}
		return c, s.rejected(domain.KindCopy, err)
	}
	return c, s.Copies.replace(ctx, id, c)
}

func (s *CatalogService) CreateStyle(ctx context.Context, in *dto.StyleInput) (*domain.Style, error) {
	st, err := buildStyle(in)
	if err != nil {
		return st, s.rejected(domain.KindStyle, err)
	}
	return st, s.Styles.insert(ctx, st)
}

func (s *CatalogService) UpdateStyle(ctx context.Context, id string, in *dto.StyleInput) (*domain.Style, error) {
	st, err := buildStyle(in)
	if err != nil {
		st.ID = id
		return st, s.rejected(domain.KindStyle, err)
	}
	return st, s.Styles.replace(ctx, id, st)
}

func (s *CatalogService) CreateTrack(ctx context.Context, in *dto.TrackInput) (*domain.Track, error) {
	t, err := buildTrack(in)
	if err != nil {
		return t, s.rejected(domain.KindTrack, err)
	}
	return t, s.Tracks.insert(ctx, t)
}

func (s *CatalogService) UpdateTrack(ctx context.Context, id string, in *dto.TrackInput) (*domain.Track, error) {
	t, err := buildTrack(in)
	if err != nil {
		t.ID = id
		return t, s.rejected(domain.KindTrack, err)
	}
	return t, s.Tracks.replace(ctx, id, t)
}

func (s *CatalogService) CreateCrate(ctx context.Context, in *dto.CrateInput) (*domain.Crate, error) {
	c, err := buildCrate(in)
	if err != nil {
		return c, s.rejected(domain.KindCrate, err)
	}
	return c, s.Crates.insert(ctx, c)
}

func (s *CatalogService) UpdateCrate(ctx context.Context, id string, in *dto.CrateInput) (*domain.Crate, error) {
	c, err := buildCrate(in)
	if err != nil {
		c.ID = id
		return c, s.rejected(domain.KindCrate, err)
	}
	return c, s.Crates.replace(ctx, id, c)
}

func (s *CatalogService) CreateCover(ctx context.Context, in *dto.CoverInput) (*domain.Cover, error) {
	c, err := buildCover(in)
	if err != nil {
		return c, s.rejected(domain.KindCover, err)
	}
	return c, s.Covers.insert(ctx, c)
}

func (s *CatalogService) UpdateCover(ctx context.Context, id string, in *dto.CoverInput) (*domain.Cover, error) {
	c, err := buildCover(in)
	if err != nil {
		c.ID = id
		return c, s.rejected(domain.KindCover, err)
	}
	return c, s.Covers.replace(ctx, id, c)
}

func (s *CatalogService) rejected(kind string, err error) error {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		validationFailures.WithLabelValues(kind).Inc()
		fields := make([]string, len(verrs))
		for i, fe := range verrs {
			fields[i] = fe.Field
		}
		logger.Warn(logger.EventValidationFailure, "Submission rejected", logger.Fields(
			"kind", kind,
			"fields", strings.Join(fields, ","),
		))
	}
	return err
}

func buildArtist(in *dto.ArtistInput) (*domain.Artist, error) {
	v := validation.New()
	name := v.Field("name", validation.Of(in.Name)).Trim().
		Check(validation.MinLength(1, "Name must be specified.")).Escape().Value()
	discogs := v.Field("discogs_id", validation.Of(in.DiscogsID)).Trim().Optional().
		Check(validation.Alphanumeric("Discogs ID has non-alphanumeric characters.")).Escape().Value()
	image := v.Field("image_url", validation.Of(in.ImageURL)).Trim().Optional().
		Check(validation.URL("Image URL is not a valid URL.")).Value()
	birth := v.Field("birth_date", validation.Of(in.BirthDate)).Trim().Optional().
		Check(validation.ISODate("Invalid date of birth")).Value()
	death := v.Field("death_date", validation.Of(in.DeathDate)).Trim().Optional().
		Check(validation.ISODate("Invalid date of death")).Value()
	status := v.Field("status", validation.Of(in.Status)).Trim().Escape().Value()

	return &domain.Artist{
		Name:      name,
		DiscogsID: discogs,
		ImageURL:  image,
		BirthDate: validation.ParseDate(birth),
		DeathDate: validation.ParseDate(death),
		Releases:  validation.IDs(in.Releases),
		Genres:    validation.IDs(in.Genres),
		Status:    status,
	}, v.Err()
}

func buildGenre(in *dto.GenreInput) (*domain.Genre, error) {
	v := validation.New()
	name := v.Field("name", validation.Of(in.Name)).Trim().
		Check(validation.MinLength(3, "Genre name must contain at least 3 characters")).Escape().Value()
	desc := v.Field("desc", validation.Of(in.Desc)).Trim().Escape().Value()
	status := v.Field("status", validation.Of(in.Status)).Trim().Escape().Value()

	return &domain.Genre{Name: name, Desc: desc, Status: status}, v.Err()
}

func (s *CatalogService) buildRelease(ctx context.Context, in *dto.ReleaseInput) (*domain.Release, error) {
	v := validation.New()
	title := v.Field("title", validation.Of(in.Title)).Trim().
		Check(validation.MinLength(1, "Title must not be empty.")).Escape().Value()
	artist := v.Field("artist", validation.Of(in.Artist)).Trim().
		Check(validation.MinLength(1, "Artist must not be empty.")).Escape().Value()
	summary := v.Field("summary", validation.Of(in.Summary)).Trim().
		Check(validation.MinLength(1, "Summary must not be empty.")).Escape().Value()
	catno := v.Field("catalog_number", validation.Of(in.CatalogNumber)).Trim().
		Check(validation.MinLength(1, "Catalog number must not be empty.")).Escape().Value()

	r := &domain.Release{
		Title:         title,
		Summary:       summary,
		CatalogNumber: catno,
		ArtistID:      artist,
		Genres:        validation.IDs(in.Genres),
		Tracks:        validation.IDs(in.Tracks),
		Covers:        validation.IDs(in.Covers),
		Styles:        validation.IDs(in.Styles),
	}

	if artist != "" {
		if _, err := s.catalog.Artists.Get(ctx, artist); errors.Is(err, repository.ErrNotFound) {
			v.Add("artist", "Artist not found.")
		} else if err != nil {
			return nil, err
		}
	}
	return r, v.Err()
}

func (s *CatalogService) buildCopy(ctx context.Context, in *dto.CopyInput) (*domain.Copy, error) {
	statuses := make([]string, len(domain.CopyStatuses))
	for i, st := range domain.CopyStatuses {
		statuses[i] = string(st)
	}

	v := validation.New()
	release := v.Field("release", validation.Of(in.Release)).Trim().
		Check(validation.MinLength(1, "Release must be specified")).Escape().Value()
	imprint := v.Field("imprint", validation.Of(in.Imprint)).Trim().
		Check(validation.MinLength(1, "Imprint must be specified")).Escape().Value()
	status := v.Field("status", validation.Of(in.Status)).Trim().Optional().
		Check(validation.OneOf("Invalid status", statuses...)).Escape().Value()
	dueBack := v.Field("due_back", validation.Of(in.DueBack)).Trim().Optional().
		Check(validation.ISODate("Invalid date")).Value()
	media := v.Field("media_cond", validation.Of(in.MediaCondition)).Trim().Escape().Value()
	sleeve := v.Field("sleeve_cond", validation.Of(in.SleeveCondition)).Trim().Escape().Value()
	cost := v.Field("cost", validation.Of(in.Cost.Ptr())).Trim().Optional().
		Check(validation.Decimal("Cost must be a number.")).Value()
	discs := v.Field("num_discs", validation.Of(in.NumDiscs.Ptr())).Trim().Optional().
		Check(validation.Integer(1, "Number of discs must be a positive whole number.")).Value()
	acquired := v.Field("date_ac", validation.Of(in.DateAcquired)).Trim().Optional().
		Check(validation.ISODate("Invalid acquisition date")).Value()

	if status == "" {
		status = string(domain.CopyMaintenance)
	}
	c := &domain.Copy{
		ReleaseID:       release,
		Imprint:         imprint,
		Status:          domain.CopyStatus(status),
		DueBack:         validation.ParseDate(dueBack),
		MediaCondition:  media,
		SleeveCondition: sleeve,
		Cost:            validation.ParseFloat(cost),
		NumDiscs:        validation.ParseInt(discs),
		DateAcquired:    validation.ParseDate(acquired),
		Crates:          validation.IDs(in.Crates),
	}

	if release != "" {
		if _, err := s.catalog.Releases.Get(ctx, release); errors.Is(err, repository.ErrNotFound) {
			v.Add("release", "Release not found.")
		} else if err != nil {
			return nil, err
		}
	}
	return c, v.Err()
}

func buildStyle(in *dto.StyleInput) (*domain.Style, error) {
	v := validation.New()
	name := v.Field("name", validation.Of(in.Name)).Trim().
		Check(validation.MinLength(3, "Style name must contain at least 3 characters")).Escape().Value()
	desc := v.Field("desc", validation.Of(in.Desc)).Trim().Escape().Value()

	return &domain.Style{Name: name, Desc: desc}, v.Err()
}

func buildTrack(in *dto.TrackInput) (*domain.Track, error) {
	v := validation.New()
	title := v.Field("title", validation.Of(in.Title)).Trim().
		Check(validation.MinLength(1, "Title must not be empty.")).Escape().Value()
	position := v.Field("position", validation.Of(in.Position)).Trim().Escape().Value()
	duration := v.Field("duration", validation.Of(in.Duration)).Trim().Optional().
		Check(validation.Pattern(durationPattern, "Duration must look like mm:ss.")).Value()

	return &domain.Track{
		Title:    title,
		Position: position,
		Duration: duration,
		Releases: validation.IDs(in.Releases),
		Genres:   validation.IDs(in.Genres),
	}, v.Err()
}

func buildCrate(in *dto.CrateInput) (*domain.Crate, error) {
	v := validation.New()
	name := v.Field("name", validation.Of(in.Name)).Trim().
		Check(validation.MinLength(1, "Crate name must be specified.")).Escape().Value()
	desc := v.Field("desc", validation.Of(in.Desc)).Trim().Escape().Value()
	auto := v.Field("autocrate", validation.Of(in.AutoCrate.Ptr())).Trim().Optional().
		Check(validation.Boolean("Autocrate must be true or false.")).Value()

	return &domain.Crate{
		Name:      name,
		Desc:      desc,
		Genres:    validation.IDs(in.Genres),
		AutoCrate: validation.ParseBool(auto),
	}, v.Err()
}

func buildCover(in *dto.CoverInput) (*domain.Cover, error) {
	v := validation.New()
	image := v.Field("image_url", validation.Of(in.ImageURL)).Trim().
		Check(
			validation.MinLength(1, "Image URL must be specified."),
			validation.URL("Image URL is not a valid URL."),
		).Value()
	status := v.Field("status", validation.Of(in.Status)).Trim().Escape().Value()

	return &domain.Cover{ImageURL: image, Status: status}, v.Err()
}
