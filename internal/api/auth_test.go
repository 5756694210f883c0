package api

import (
	"book_review/internal/utils"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

func TestSignup_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no username", `{"email":"a@b.c","password":"secret123"}`},
		{"no email", `{"username":"alice","password":"secret123"}`},
		{"no password", `{"username":"alice","email":"a@b.c"}`},
		{"empty body", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			// Validation fails before any query is issued
			mock.ExpectBegin()
			mock.ExpectRollback()

			w := performTx(db, Signup, http.MethodPost, "/test", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			envelope := decodeEnvelope(t, w)
			assert.Equal(t, "Please provide username, email and password", envelope["error"])
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSignup_DuplicateUser(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	// Pre-check finds an existing account with the same username or email
	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password"}).
			AddRow(3, "alice", "a@b.c", "hash"))
	mock.ExpectRollback()

	w := performTx(db, Signup, http.MethodPost, "/test",
		`{"username":"alice","email":"a@b.c","password":"secret123"}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.Equal(t, "User already exists with this username or email", envelope["error"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignup_Success(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	// No existing account
	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO `users`").
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectCommit()

	w := performTx(db, Signup, http.MethodPost, "/test",
		`{"username":"alice","email":"a@b.c","password":"secret123"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.Equal(t, "success", envelope["msg"])
	data := envelope["data"].(map[string]any)
	assert.Equal(t, "User created successfully", data["message"])
	assert.Equal(t, float64(5), data["userId"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

// loginAttempt runs one login request against a fresh mock database
func loginAttempt(t *testing.T, body string, rows *sqlmock.Rows, expectSuccess bool) *string {
	t.Helper()
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `users`").WillReturnRows(rows)
	if expectSuccess {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}

	w := performTx(db, Login(testSecret), http.MethodPost, "/test", body)
	require.NoError(t, mock.ExpectationsWereMet())

	if expectSuccess {
		require.Equal(t, http.StatusOK, w.Code)
	} else {
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}
	s := w.Body.String()
	return &s
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	require.NoError(t, err)

	// Unknown username
	noUser := sqlmock.NewRows([]string{"id", "username", "email", "password"})
	unknown := loginAttempt(t, `{"username":"ghost","password":"whatever"}`, noUser, false)

	// Known username, wrong password
	withUser := sqlmock.NewRows([]string{"id", "username", "email", "password"}).
		AddRow(1, "alice", "a@b.c", string(hash))
	wrongPass := loginAttempt(t, `{"username":"alice","password":"wrong-password"}`, withUser, false)

	// Byte-identical responses: no user-enumeration signal
	assert.Equal(t, *unknown, *wrongPass)
	assert.Contains(t, *unknown, "Invalid username or password")
}

func TestLogin_MissingFields(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	w := performTx(db, Login(testSecret), http.MethodPost, "/test", `{"username":"alice"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.Equal(t, "Please provide username and password", envelope["error"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_Success(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	require.NoError(t, err)

	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password"}).
			AddRow(7, "alice", "a@b.c", string(hash)))
	mock.ExpectCommit()

	w := performTx(db, Login(testSecret), http.MethodPost, "/test",
		`{"username":"alice","password":"correct-password"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	data := envelope["data"].(map[string]any)
	token, ok := data["token"].(string)
	require.True(t, ok)

	// The issued token verifies and carries the authenticated identity
	claims, err := utils.ParseJWT(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}
