package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/speechpath/speechpath-server/internal/api"
	"github.com/speechpath/speechpath-server/internal/config"
	"github.com/speechpath/speechpath-server/internal/filestore"
	"github.com/speechpath/speechpath-server/internal/repository"
	"github.com/speechpath/speechpath-server/internal/repository/memory"
	repoPostgres "github.com/speechpath/speechpath-server/internal/repository/postgres"
	"github.com/speechpath/speechpath-server/internal/service"
	"github.com/speechpath/speechpath-server/internal/speech"
	"github.com/speechpath/speechpath-server/internal/websocket"
	"github.com/speechpath/speechpath-server/internal/worker"
)

// TestDB manages a testcontainers PostgreSQL instance
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// NewTestDB creates a new PostgreSQL testcontainer and returns a connection
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("test_speechpath"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := gorm.Open(gormPostgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	if err := repoPostgres.Migrate(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	testDB := &TestDB{
		Container: container,
		DB:        db,
		DSN:       dsn,
	}

	t.Cleanup(func() {
		testDB.Cleanup()
	})

	return testDB
}

// Cleanup terminates the container
func (tdb *TestDB) Cleanup() {
	if tdb.Container != nil {
		ctx := context.Background()
		tdb.Container.Terminate(ctx)
	}
}

// Truncate clears all tables for test isolation
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	tables := []string{
		"reports",
		"speech_analyses",
		"audio_files",
		"auth_tokens",
		"users",
	}

	for _, table := range tables {
		if err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			t.Logf("warning: failed to truncate %s: %v", table, err)
		}
	}
}

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:              "0", // Random port
		Environment:       "test",
		StorageDriver:     "memory",
		MaxUploadMB:       2,
		JWTSecret:         "test-jwt-secret-key-for-testing-only",
		AccessTokenTTL:    time.Hour,
		RefreshTokenTTL:   24 * time.Hour,
		ResetTokenTTL:     time.Hour,
		AnalysisWorkers:   2,
		AnalysisQueueSize: 16,
	}
}

// TestLogger returns a logger that discards everything.
func TestLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// TestServer holds all components for integration testing. It runs on the
// in-memory repositories so no external services are needed.
type TestServer struct {
	Server   *httptest.Server
	Repos    *repository.Repositories
	Services *service.Services
	Hub      *websocket.Hub
	Pool     *worker.Pool
	Files    *filestore.Store
	Config   *config.Config
}

// NewTestServer creates a complete test server with all dependencies. The
// transcriber may be nil, in which case an instant mock transcriber is used.
func NewTestServer(t *testing.T, transcriber speech.Transcriber) *TestServer {
	t.Helper()

	cfg := TestConfig()
	log := TestLogger()

	repos := memory.NewRepositories()

	files, err := filestore.New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create filestore: %v", err)
	}

	if transcriber == nil {
		transcriber = speech.NewMockTranscriber(1, 0)
	}

	pool := worker.NewPool(cfg.AnalysisWorkers, cfg.AnalysisQueueSize, log)
	pool.Start()

	hub := websocket.NewHub(log)

	services := service.NewServices(cfg, service.Deps{
		Repos:       repos,
		Files:       files,
		Transcriber: transcriber,
		Analyzer:    speech.NewAnalyzer(1),
		Pool:        pool,
		Notifier:    hub,
		Log:         log,
	})

	router := api.NewRouter(services, hub, cfg)
	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:   server,
		Repos:    repos,
		Services: services,
		Hub:      hub,
		Pool:     pool,
		Files:    files,
		Config:   cfg,
	}

	t.Cleanup(func() {
		server.Close()
		hub.Stop()
		pool.Stop()
	})

	return ts
}

// BaseURL returns the test server's base URL
func (ts *TestServer) BaseURL() string {
	return ts.Server.URL
}

// APIURL returns the full API URL for a given path
func (ts *TestServer) APIURL(path string) string {
	return fmt.Sprintf("%s/api%s", ts.Server.URL, path)
}

// WebSocketURL returns the status WebSocket URL for an analysis
func (ts *TestServer) WebSocketURL(analysisID, token string) string {
	wsURL := "ws" + ts.Server.URL[4:] // Replace "http" with "ws"
	return fmt.Sprintf("%s/api/analysis/%s/ws?token=%s", wsURL, analysisID, token)
}
