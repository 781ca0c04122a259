package domain

type User struct {
	Document `bson:",inline"`
	Username string `bson:"username" json:"username"`
	Password string `bson:"password" json:"-"`
}
