package model

import "time"

type Category struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type CategoryListResult struct {
	Categories []Category `json:"categories"`
	Offset     int        `json:"offset"`
	Limit      int        `json:"limit"`
}
