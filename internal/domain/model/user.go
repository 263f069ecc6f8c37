package model

import "time"

type User struct {
	ID           string    `bson:"_id"           json:"id"`
	Email        string    `bson:"email"         json:"email"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	CreatedAt    time.Time `bson:"created_at"    json:"created_at"`
}
