package api

import (
	"book_review/internal/apperr" // Typed error kinds
	"book_review/internal/domain" // Importing domain models
	"book_review/internal/utils"  // Utility functions
	"database/sql"                // Nullable scan targets
	"errors"                      // Error inspection
	"fmt"                         // Formatting
	"strconv"                     // String conversion
	"strings"                     // String manipulation
	"time"                        // Time durations

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// cacheTTL is how long cached listing responses stay fresh
const cacheTTL = 60 * time.Second

// paginationParams extracts page and limit from the query string.
// Defaults: page=1, limit=10 if missing or invalid.
func paginationParams(c *gin.Context) (page, limit, offset int) {
	page = 1   // Default page number
	limit = 10 // Default page size
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		page = v // Set page if valid
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = v // Set limit if valid
	}
	return page, limit, (page - 1) * limit // Calculate SQL offset for pagination
}

// Request struct for book creation
type AddBookRequest struct {
	Title       string `json:"title"`       // Book title, required
	Author      string `json:"author"`      // Book author, required
	Genre       string `json:"genre"`       // Optional genre
	Description string `json:"description"` // Optional description
}

// AddBook creates a new book record and invalidates the book cache
func AddBook(rdb *redis.Client) TxHandler {
	return func(tx *gorm.DB, c *gin.Context) (any, error) {
		var req AddBookRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, reject as validation error
			return nil, apperr.E(apperr.ErrValidation, "Invalid request body")
		}
		// Validate required fields
		if req.Title == "" || req.Author == "" {
			return nil, apperr.E(apperr.ErrValidation, "Title and author are required")
		}
		// Create the book record
		book := domain.Book{Title: req.Title, Author: req.Author, Genre: req.Genre, Description: req.Description}
		if err := tx.Create(&book).Error; err != nil {
			return nil, err // Insert failure
		}
		// Invalidate every cached book listing
		_ = utils.DeleteCacheByPrefix(c.Request.Context(), rdb, "books:")
		// Return the new book with its generated ID
		return gin.H{
			"id":          book.ID,          // Generated book ID
			"title":       book.Title,       // Book title
			"author":      book.Author,      // Book author
			"genre":       book.Genre,       // Genre
			"description": book.Description, // Description
		}, nil
	}
}

// GetBooks returns paginated books with optional author/genre filters
func GetBooks(rdb *redis.Client) TxHandler {
	return func(tx *gorm.DB, c *gin.Context) (any, error) {
		page, limit, offset := paginationParams(c) // Pagination parameters
		author := c.Query("author")                // Optional author filter
		genre := c.Query("genre")                  // Optional genre filter
		ctx := c.Request.Context()                 // Context for Redis operations
		// Cache key covering pagination and filters
		cacheKey := "books:list:page=" + strconv.Itoa(page) + ":limit=" + strconv.Itoa(limit) +
			":author=" + author + ":genre=" + genre
		var cached map[string]any // Cached response blob
		// Any cache error is treated as a miss
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			return cached, nil // Return cached response
		}
		query := tx.Model(&domain.Book{}) // Start building the query
		if author != "" {
			query = query.Where("author LIKE ?", "%"+author+"%") // Partial author match
		}
		if genre != "" {
			query = query.Where("genre = ?", genre) // Exact genre match
		}
		var total int64 // Total matching book count
		if err := query.Count(&total).Error; err != nil {
			return nil, err // Count failure
		}
		var books []domain.Book // Slice to hold books
		// Fetch the requested page
		if err := query.Order("id").Offset(offset).Limit(limit).Find(&books).Error; err != nil {
			return nil, err // Query failure
		}
		// Prepare the response
		resp := gin.H{
			"page":  page,  // Current page
			"limit": limit, // Page size
			"total": total, // Total matching books
			"books": books, // Books on this page
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, cacheTTL)
		return resp, nil
	}
}

// reviewWithUser is a review row joined with the reviewer's username
type reviewWithUser struct {
	ID        uint      `json:"id"`         // Review ID
	Rating    int       `json:"rating"`     // Rating between 1 and 5
	Comment   string    `json:"comment"`    // Review comment
	CreatedAt time.Time `json:"created_at"` // Timestamp of creation
	UpdatedAt time.Time `json:"updated_at"` // Timestamp of last update
	Username  string    `json:"username"`   // Reviewer username
}

// GetBookByID returns book details with its average rating and the book's
// reviews, paginated newest first and joined with reviewer usernames
func GetBookByID(rdb *redis.Client) TxHandler {
	return func(tx *gorm.DB, c *gin.Context) (any, error) {
		bookID, err := strconv.Atoi(c.Param("id")) // Parse book ID from path
		if err != nil {
			return nil, apperr.E(apperr.ErrValidation, "Invalid book id")
		}
		page, limit, offset := paginationParams(c) // Pagination for reviews
		ctx := c.Request.Context()                 // Context for Redis operations
		// Cache key covering book and review pagination
		cacheKey := "books:detail:" + strconv.Itoa(bookID) + ":page=" + strconv.Itoa(page) + ":limit=" + strconv.Itoa(limit)
		var cached map[string]any // Cached response blob
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			return cached, nil // Return cached response
		}
		var book domain.Book // Verify book exists
		if err := tx.First(&book, bookID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.E(apperr.ErrNotFound, "Book not found")
			}
			return nil, err // Query failure
		}
		// Calculate average rating across all reviews
		var avg sql.NullFloat64
		if err := tx.Model(&domain.Review{}).Where("book_id = ?", book.ID).
			Select("AVG(rating)").Scan(&avg).Error; err != nil {
			return nil, err // Aggregate failure
		}
		var avgRating any // Null when the book has no reviews
		if avg.Valid {
			avgRating = fmt.Sprintf("%.2f", avg.Float64) // Format to 2 decimals
		}
		var total int64 // Total review count for pagination
		if err := tx.Model(&domain.Review{}).Where("book_id = ?", book.ID).Count(&total).Error; err != nil {
			return nil, err // Count failure
		}
		var reviews []reviewWithUser // Paginated reviews with reviewer usernames
		if err := tx.Table("reviews").
			Select("reviews.id, reviews.rating, reviews.comment, reviews.created_at, reviews.updated_at, users.username").
			Joins("JOIN users ON users.id = reviews.user_id").
			Where("reviews.book_id = ?", book.ID).
			Order("reviews.created_at DESC").
			Offset(offset).Limit(limit).
			Scan(&reviews).Error; err != nil {
			return nil, err // Query failure
		}
		// Prepare the response
		resp := gin.H{
			"book":      book,      // Book details
			"avgRating": avgRating, // Average rating, null if unreviewed
			"reviews": gin.H{
				"page":         page,    // Current page
				"limit":        limit,   // Page size
				"totalReviews": total,   // Total review count
				"data":         reviews, // Reviews on this page
			},
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, cacheTTL)
		return resp, nil
	}
}

// SearchBooks searches books by title or author, case-insensitive partial
// match, sorted by title and paginated
func SearchBooks(rdb *redis.Client) TxHandler {
	return func(tx *gorm.DB, c *gin.Context) (any, error) {
		q := c.Query("query") // Search term
		// Require the search term before touching the database
		if q == "" {
			return nil, apperr.E(apperr.ErrValidation, "Query parameter 'query' is required")
		}
		page, limit, offset := paginationParams(c) // Pagination parameters
		ctx := c.Request.Context()                 // Context for Redis operations
		// Cache key covering the search term and pagination
		cacheKey := "books:search:q=" + q + ":page=" + strconv.Itoa(page) + ":limit=" + strconv.Itoa(limit)
		var cached map[string]any // Cached response blob
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			return cached, nil // Return cached response
		}
		like := "%" + strings.ToLower(q) + "%" // Case-insensitive partial match
		// Matching books query
		query := tx.Model(&domain.Book{}).Where("LOWER(title) LIKE ? OR LOWER(author) LIKE ?", like, like)
		var total int64 // Total matching book count
		if err := query.Count(&total).Error; err != nil {
			return nil, err // Count failure
		}
		var books []domain.Book // Slice to hold matches
		// Fetch the requested page, sorted by title
		if err := query.Order("title").Offset(offset).Limit(limit).Find(&books).Error; err != nil {
			return nil, err // Query failure
		}
		// Prepare the response
		resp := gin.H{
			"page":  page,  // Current page
			"limit": limit, // Page size
			"total": total, // Total matching books
			"books": books, // Matches on this page
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, cacheTTL)
		return resp, nil
	}
}
