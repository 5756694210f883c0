package domain

import "time"

// Review Model
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                              // Primary key
	BookID    uint      `gorm:"not null;uniqueIndex:idx_book_user" json:"book_id"` // Foreign key to Book
	UserID    uint      `gorm:"not null;uniqueIndex:idx_book_user" json:"user_id"` // Foreign key to User, one review per (book, user)
	Rating    int       `gorm:"not null" json:"rating"`                            // Rating between 1 and 5
	Comment   string    `json:"comment"`                                           // Optional comment
	CreatedAt time.Time `json:"created_at"`                                        // Timestamp of creation
	UpdatedAt time.Time `json:"updated_at"`                                        // Timestamp of last update
}
