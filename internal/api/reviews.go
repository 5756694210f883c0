package api

import (
	"book_review/internal/apperr" // Typed error kinds
	"book_review/internal/domain" // Importing domain models
	"book_review/internal/utils"  // Utility functions
	"errors"                      // Error inspection
	"strconv"                     // String conversion

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// currentUserID reads the authenticated user's ID set by the JWT middleware
func currentUserID(c *gin.Context) (uint, error) {
	v, exists := c.Get("userID") // Get userID from context
	if !exists {
		// Route was wired without the identity gate
		return 0, apperr.E(apperr.ErrAuthentication, "Unauthorized")
	}
	id, ok := v.(uint) // Context values are untyped
	if !ok {
		return 0, apperr.E(apperr.ErrAuthentication, "Unauthorized")
	}
	return id, nil
}

// Request struct for review creation
type AddReviewRequest struct {
	Rating  int    `json:"rating"`  // Rating between 1 and 5, required
	Comment string `json:"comment"` // Optional comment
}

// Request struct for review update, absent fields keep their prior values
type UpdateReviewRequest struct {
	Rating  int    `json:"rating"`  // New rating, 0 keeps the old one
	Comment string `json:"comment"` // New comment, empty keeps the old one
}

// AddReview creates the authenticated user's review for a book. One review
// per (book, user): the pre-check is only a fast path, the composite unique
// index is the authoritative duplicate signal under concurrency.
func AddReview(rdb *redis.Client) TxHandler {
	return func(tx *gorm.DB, c *gin.Context) (any, error) {
		bookID, err := strconv.Atoi(c.Param("id")) // Parse book ID from path
		if err != nil {
			return nil, apperr.E(apperr.ErrValidation, "Invalid book id")
		}
		userID, err := currentUserID(c) // From authentication middleware
		if err != nil {
			return nil, err
		}
		var req AddReviewRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, apperr.E(apperr.ErrValidation, "Invalid request body")
		}
		// Validate rating is within acceptable range
		if req.Rating < 1 || req.Rating > 5 {
			return nil, apperr.E(apperr.ErrValidation, "Rating must be 1 to 5")
		}
		// Verify the book exists before adding a review
		var book domain.Book
		if err := tx.Select("id").First(&book, bookID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.E(apperr.ErrNotFound, "Book not found")
			}
			return nil, err // Query failure
		}
		// Fast-path duplicate check
		var existing domain.Review
		err = tx.Where("book_id = ? AND user_id = ?", bookID, userID).First(&existing).Error
		if err == nil {
			return nil, apperr.E(apperr.ErrConflict, "You have already reviewed this book")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err // Query failure
		}
		// Create the review
		review := domain.Review{BookID: uint(bookID), UserID: userID, Rating: req.Rating, Comment: req.Comment}
		if err := tx.Create(&review).Error; err != nil {
			// Two concurrent inserts can both pass the fast-path check; the
			// engine-level unique index decides the loser
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, apperr.E(apperr.ErrConflict, "You have already reviewed this book")
			}
			return nil, err // Insert failure
		}
		// Log review creation
		logrus.WithFields(logrus.Fields{
			"book_id": bookID,     // Reviewed book ID
			"user_id": userID,     // Reviewer user ID
			"rating":  req.Rating, // Given rating
		}).Info("Review created") // Log review creation
		// Invalidate cached detail pages for this book
		_ = utils.DeleteCacheByPrefix(c.Request.Context(), rdb, "books:detail:"+strconv.Itoa(bookID))
		// Return the new review
		return gin.H{
			"id":      review.ID,      // Generated review ID
			"book_id": review.BookID,  // Reviewed book ID
			"user_id": review.UserID,  // Reviewer user ID
			"rating":  review.Rating,  // Given rating
			"comment": review.Comment, // Comment
		}, nil
	}
}

// ownedReview fetches a review by ID restricted to the given owner. A miss
// does not distinguish a missing review from someone else's review.
func ownedReview(tx *gorm.DB, reviewID int, userID uint) (*domain.Review, error) {
	var review domain.Review
	err := tx.Where("id = ? AND user_id = ?", reviewID, userID).First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.E(apperr.ErrOwnership, "Review not found or not owned by you")
		}
		return nil, err // Query failure
	}
	return &review, nil
}

// UpdateReview updates the authenticated user's own review. Partial update:
// only provided fields change.
func UpdateReview(rdb *redis.Client) TxHandler {
	return func(tx *gorm.DB, c *gin.Context) (any, error) {
		reviewID, err := strconv.Atoi(c.Param("id")) // Parse review ID from path
		if err != nil {
			return nil, apperr.E(apperr.ErrValidation, "Invalid review id")
		}
		userID, err := currentUserID(c) // From authentication middleware
		if err != nil {
			return nil, err
		}
		// Verify the user owns this review
		review, err := ownedReview(tx, reviewID, userID)
		if err != nil {
			return nil, err
		}
		var req UpdateReviewRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, apperr.E(apperr.ErrValidation, "Invalid request body")
		}
		// Validate new rating if provided
		if req.Rating != 0 && (req.Rating < 1 || req.Rating > 5) {
			return nil, apperr.E(apperr.ErrValidation, "Rating must be 1 to 5")
		}
		// Update with new values or keep existing ones
		rating := review.Rating
		if req.Rating != 0 {
			rating = req.Rating // New rating provided
		}
		comment := review.Comment
		if req.Comment != "" {
			comment = req.Comment // New comment provided
		}
		if err := tx.Model(review).Select("rating", "comment").Updates(domain.Review{Rating: rating, Comment: comment}).Error; err != nil {
			return nil, err // Update failure
		}
		// Invalidate cached detail pages for the reviewed book
		_ = utils.DeleteCacheByPrefix(c.Request.Context(), rdb, "books:detail:"+strconv.Itoa(int(review.BookID)))
		return gin.H{"message": "Review updated"}, nil
	}
}

// DeleteReview deletes the authenticated user's own review
func DeleteReview(rdb *redis.Client) TxHandler {
	return func(tx *gorm.DB, c *gin.Context) (any, error) {
		reviewID, err := strconv.Atoi(c.Param("id")) // Parse review ID from path
		if err != nil {
			return nil, apperr.E(apperr.ErrValidation, "Invalid review id")
		}
		userID, err := currentUserID(c) // From authentication middleware
		if err != nil {
			return nil, err
		}
		// Verify the user owns this review before deletion
		review, err := ownedReview(tx, reviewID, userID)
		if err != nil {
			return nil, err
		}
		if err := tx.Delete(review).Error; err != nil {
			return nil, err // Delete failure
		}
		// Log review deletion
		logrus.WithFields(logrus.Fields{
			"review_id": review.ID,     // Deleted review ID
			"book_id":   review.BookID, // Reviewed book ID
			"user_id":   userID,        // Owner user ID
		}).Info("Review deleted") // Log review deletion
		// Invalidate cached detail pages for the reviewed book
		_ = utils.DeleteCacheByPrefix(c.Request.Context(), rdb, "books:detail:"+strconv.Itoa(int(review.BookID)))
		return gin.H{"message": "Review deleted"}, nil
	}
}
