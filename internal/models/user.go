package models

import "time"

// User is the account collaborator's view of a buyer. Account management is
// external; this service only needs existence checks.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255)"`
	CreatedAt time.Time `json:"created_at"`
}

// ArtisanShop is the shop collaborator's view of a seller shop, used for
// sale-context validation and order seller attachment.
type ArtisanShop struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" gorm:"type:varchar(200)"`
	CreatedAt time.Time `json:"created_at"`
}
