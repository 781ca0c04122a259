package domain

type Crate struct {
	Document  `bson:",inline"`
	Name      string   `bson:"name" json:"name"`
	Desc      string   `bson:"desc,omitempty" json:"desc,omitempty"`
	Genres    []string `bson:"genres" json:"genres"`
	AutoCrate bool     `bson:"autocrate" json:"autocrate"`
}
