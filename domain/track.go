package domain

type Track struct {
	Document `bson:",inline"`
	Title    string   `bson:"title" json:"title"`
	Position string   `bson:"position,omitempty" json:"position,omitempty"`
	Duration string   `bson:"duration,omitempty" json:"duration,omitempty"` // mm:ss
	Releases []string `bson:"releases" json:"releases"`
	Genres   []string `bson:"genres" json:"genres"`
}
