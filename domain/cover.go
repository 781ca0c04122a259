package domain

const DefaultCoverImage = "/assets/default.png"

type Cover struct {
	Document `bson:",inline"`
	ImageURL string `bson:"image_url" json:"image_url"`
	Status   string `bson:"status,omitempty" json:"status,omitempty"`
}
