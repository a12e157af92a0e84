package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Author, bir içeriğin sahibinin denormalize edilmiş profil özeti.
//
// Post ve Channel dökümanlarına gömülür — feed render ederken users
// koleksiyonuna ayrıca gitmemek için. Identity collaborator'ın token
// doğrulamasından dönen minimal profil alanlarıyla birebir aynıdır.
type Author struct {
	ID        primitive.ObjectID `bson:"id" json:"id"`
	Nickname  string             `bson:"nickname" json:"nickname"`
	Username  string             `bson:"username" json:"username"`
	AvatarURL *string            `bson:"avatar_url" json:"avatar_url"`
}
