package testutil

import (
	"net/http/httptest"
	"testing"

	"taskdesk/internal/auth"
	"taskdesk/internal/database"
	"taskdesk/internal/handlers"
	"taskdesk/internal/logger"
	"taskdesk/internal/models"
	"taskdesk/internal/routes"
	"taskdesk/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewInMemoryDB creates an in-memory SQLite DB and runs migrations.
func NewInMemoryDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	// every pooled connection to :memory: would get its own empty database
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Server is a running task API backed by an in-memory database.
type Server struct {
	*httptest.Server
	DB      *gorm.DB
	Handler *handlers.Handler
}

// URL of the API root, including the /api prefix.
func (s *Server) APIURL() string { return s.URL + "/api" }

// CreateUser inserts a user with the given password and returns it.
func (s *Server) CreateUser(t testing.TB, email, password, first, last string) models.UserRecord {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	u := models.UserRecord{Email: email, Password: hash, FirstName: first, LastName: last, Role: models.RoleMember}
	require.NoError(t, s.DB.Create(&u).Error)
	return u
}

// Token issues a valid bearer token for u.
func (s *Server) Token(t testing.TB, u models.UserRecord) string {
	t.Helper()
	token, err := auth.GenerateToken(u.ID, u.Email)
	require.NoError(t, err)
	return token
}

// NewServer starts the full API on a loopback listener. It is shut down when
// the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := NewInMemoryDB()
	require.NoError(t, err)
	disk, err := storage.NewDisk(t.TempDir())
	require.NoError(t, err)

	h := handlers.New(handlers.Options{
		DB:             db,
		Disk:           disk,
		Log:            logger.Discard(),
		MaxUploadBytes: 1 << 20,
	})
	srv := httptest.NewServer(routes.SetupRoutes(h, logger.Discard()))
	t.Cleanup(func() {
		srv.Close()
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return &Server{Server: srv, DB: db, Handler: h}
}
