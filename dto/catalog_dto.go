package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Scalar is a form value that also accepts JSON numbers and booleans, so
// rows read back from a list payload can be submitted unchanged.
type Scalar string

func (s *Scalar) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = Scalar(v)
		return nil
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch v.(type) {
	case float64, bool:
		*s = Scalar(fmt.Sprint(v))
		return nil
	case nil:
		return nil
	}
	return fmt.Errorf("dto: expected a scalar, got %s", b)
}

func (s *Scalar) Ptr() *string {
	return (*string)(s)
}

// Inputs use pointers so an omitted field can be told apart from a blank
// one. Reference lists accept repeated form keys or a JSON array.

type ArtistInput struct {
	Name      *string  `form:"name" json:"name"`
	DiscogsID *string  `form:"discogs_id" json:"discogs_id"`
	ImageURL  *string  `form:"image_url" json:"image_url"`
	BirthDate *string  `form:"birth_date" json:"birth_date"`
	DeathDate *string  `form:"death_date" json:"death_date"`
	Status    *string  `form:"status" json:"status"`
	Releases  []string `form:"releases" json:"releases"`
	Genres    []string `form:"genres" json:"genres"`
}

type GenreInput struct {
	Name   *string `form:"name" json:"name"`
	Desc   *string `form:"desc" json:"desc"`
	Status *string `form:"status" json:"status"`
}

type ReleaseInput struct {
	Title         *string  `form:"title" json:"title"`
	Summary       *string  `form:"summary" json:"summary"`
	CatalogNumber *string  `form:"catalog_number" json:"catalog_number"`
	Artist        *string  `form:"artist" json:"artist"`
	Genres        []string `form:"genre" json:"genres"`
	Tracks        []string `form:"tracks" json:"tracks"`
	Covers        []string `form:"covers" json:"covers"`
	Styles        []string `form:"styles" json:"styles"`
}

type CopyInput struct {
	Release         *string  `form:"release" json:"release"`
	Imprint         *string  `form:"imprint" json:"imprint"`
	Status          *string  `form:"status" json:"status"`
	DueBack         *string  `form:"due_back" json:"due_back"`
	MediaCondition  *string  `form:"media_cond" json:"media_cond"`
	SleeveCondition *string  `form:"sleeve_cond" json:"sleeve_cond"`
	Cost            *Scalar  `form:"cost" json:"cost"`
	NumDiscs        *Scalar  `form:"num_discs" json:"num_discs"`
	DateAcquired    *string  `form:"date_ac" json:"date_ac"`
	Crates          []string `form:"crates" json:"crates"`
}

type StyleInput struct {
	Name *string `form:"name" json:"name"`
	Desc *string `form:"desc" json:"desc"`
}

type TrackInput struct {
	Title    *string  `form:"title" json:"title"`
	Position *string  `form:"position" json:"position"`
	Duration *string  `form:"duration" json:"duration"`
	Releases []string `form:"releases" json:"releases"`
	Genres   []string `form:"genres" json:"genres"`
}

type CrateInput struct {
	Name      *string  `form:"name" json:"name"`
	Desc      *string  `form:"desc" json:"desc"`
	Genres    []string `form:"genres" json:"genres"`
	AutoCrate *Scalar  `form:"autocrate" json:"autocrate"`
}

type CoverInput struct {
	ImageURL *string `form:"image_url" json:"image_url"`
	Status   *string `form:"status" json:"status"`
}
