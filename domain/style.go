package domain

type Style struct {
	Document `bson:",inline"`
	Name     string `bson:"name" json:"name"`
	Desc     string `bson:"desc,omitempty" json:"desc,omitempty"`
}
