// Package models defines the per-user favorite mark.
package models

import (
	"time"

	id "udonmap/pkg/domain"
)

// FavoriteEntry marks one shop as a favorite of one user.
type FavoriteEntry struct {
	UserID    id.UserID `json:"userId"`
	ShopID    id.ShopID `json:"shopId"`
	CreatedAt time.Time `json:"createdAt"`
}
