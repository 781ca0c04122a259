package domain

type Release struct {
	Document      `bson:",inline"`
	Title         string   `bson:"title" json:"title"`
	Summary       string   `bson:"summary" json:"summary"`
	CatalogNumber string   `bson:"catalog_number" json:"catalog_number"`
	ArtistID      string   `bson:"artist" json:"artist"`
	Genres        []string `bson:"genres" json:"genres"`
	Tracks        []string `bson:"tracks" json:"tracks"`
	Covers        []string `bson:"covers" json:"covers"`
	Styles        []string `bson:"styles" json:"styles"`
}
