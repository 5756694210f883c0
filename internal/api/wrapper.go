package api

import (
	"book_review/internal/apperr" // Error kind to status mapping
	"net/http"                    // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// TxHandler is a business handler executing inside a database transaction.
// It queries through tx only and never commits, rolls back or releases it;
// lifecycle ownership belongs exclusively to Transactional. A nil error
// commits the transaction and sends the result, any error rolls it back.
type TxHandler func(tx *gorm.DB, c *gin.Context) (any, error)

// Transactional adapts a TxHandler into a gin handler with all-or-nothing
// transaction semantics and a uniform response envelope:
//
//	{"msg": "success", "data": <result>} on commit
//	{"msg": "error", "error": <message>} on rollback
//
// The connection backing the transaction is acquired from the pool at Begin
// and released back exactly once when the transaction ends, on every path
// including handler panic and commit failure. If the handler already wrote a
// response, no envelope is emitted.
func Transactional(db *gorm.DB, fn TxHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Begin a transaction, acquiring a pooled connection
		tx := db.WithContext(c.Request.Context()).Begin()
		if tx.Error != nil {
			// Nothing was acquired, nothing to release
			logrus.WithFields(logrus.Fields{
				"method": c.Request.Method, // Request method
				"path":   c.FullPath(),     // Matched route path
				"error":  tx.Error.Error(), // Error message
			}).Error("Failed to begin transaction") // Log begin failure
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "error", "error": "could not start transaction"})
			return
		}
		done := false // Set once the transaction has been committed or rolled back
		defer func() {
			if r := recover(); r != nil {
				// Roll back on panic so the connection is still released
				if !done {
					tx.Rollback()
				}
				logrus.WithFields(logrus.Fields{
					"method": c.Request.Method, // Request method
					"path":   c.FullPath(),     // Matched route path
					"panic":  r,                // Recovered panic value
				}).Error("Handler panicked, transaction rolled back") // Log panic
				// Emit error envelope unless a response was already written
				if !c.Writer.Written() {
					c.JSON(http.StatusInternalServerError, gin.H{"msg": "error", "error": "internal server error"})
				}
			}
		}()
		// Invoke the handler with the transaction-bound connection
		result, err := fn(tx, c)
		if err != nil {
			tx.Rollback() // Roll back on any handler failure
			done = true
			logrus.WithFields(logrus.Fields{
				"method": c.Request.Method, // Request method
				"path":   c.FullPath(),     // Matched route path
				"error":  err.Error(),      // Error message
			}).Error("Transaction rolled back") // Log the failure
			// Status comes from the error kind, message surfaces verbatim
			if !c.Writer.Written() {
				c.JSON(apperr.Status(err), gin.H{"msg": "error", "error": apperr.Message(err)})
			}
			return
		}
		// Commit the transaction; a failed commit still releases the connection
		if err := tx.Commit().Error; err != nil {
			tx.Rollback() // No-op if the commit already ended the transaction
			done = true
			logrus.WithFields(logrus.Fields{
				"method": c.Request.Method, // Request method
				"path":   c.FullPath(),     // Matched route path
				"error":  err.Error(),      // Error message
			}).Error("Commit failed") // Log commit failure
			if !c.Writer.Written() {
				c.JSON(http.StatusInternalServerError, gin.H{"msg": "error", "error": "could not commit transaction"})
			}
			return
		}
		done = true
		// Emit success envelope unless the handler already responded
		if !c.Writer.Written() {
			c.JSON(http.StatusOK, gin.H{"msg": "success", "data": result})
		}
	}
}
