package domain

type Genre struct {
	Document `bson:",inline"`
	Name     string `bson:"name" json:"name"`
	Desc     string `bson:"desc,omitempty" json:"desc,omitempty"`
	Status   string `bson:"status,omitempty" json:"status,omitempty"`
}
