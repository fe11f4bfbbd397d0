package models

import "time"

type Group struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CardCount int       `json:"card_count"`
	CreatedAt time.Time `json:"created_at"`
}
