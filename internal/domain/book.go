package domain

// Book Model
type Book struct {
	ID          uint   `gorm:"primaryKey" json:"id"`             // Primary key
	Title       string `gorm:"not null" json:"title"`            // Book title
	Author      string `gorm:"not null" json:"author"`           // Book author
	Genre       string `json:"genre"`                            // Optional genre
	Description string `json:"description"`                      // Optional description
	CreatedAt   int64  `gorm:"autoCreateTime" json:"created_at"` // Timestamp of creation
}
