package domain

import "time"

// TitleMaxLen mirrors the VARCHAR(100) column constraint.
const TitleMaxLen = 100

type Prompt struct {
	ID        int64
	Title     string
	Content   string
	OwnerID   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
