package domain

import "time"

type Artist struct {
	Document  `bson:",inline"`
	Name      string     `bson:"name" json:"name"`
	DiscogsID string     `bson:"discogs_id,omitempty" json:"discogs_id,omitempty"`
	ImageURL  string     `bson:"image_url,omitempty" json:"image_url,omitempty"`
	BirthDate *time.Time `bson:"birth_date,omitempty" json:"birth_date,omitempty"`
	DeathDate *time.Time `bson:"death_date,omitempty" json:"death_date,omitempty"`
	Releases  []string   `bson:"releases" json:"releases"`
	Genres    []string   `bson:"genres" json:"genres"`
	Status    string     `bson:"status,omitempty" json:"status,omitempty"`
}

func (a *Artist) DiscogsURL() string {
	if a.DiscogsID == "" {
		return ""
	}
	return "https://www.discogs.com/artist/" + a.DiscogsID
}
