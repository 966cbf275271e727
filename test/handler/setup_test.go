package handler_test

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/common/webapi"

	"github.com/wildtrail/safaridesk/internal/config"
	"github.com/wildtrail/safaridesk/internal/filestore"
	"github.com/wildtrail/safaridesk/internal/handler"
	"github.com/wildtrail/safaridesk/internal/middleware"
	"github.com/wildtrail/safaridesk/internal/repo"
	"github.com/wildtrail/safaridesk/internal/service"
	"github.com/wildtrail/safaridesk/test/testutil"
)

func newTestID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func setupRouter(t *testing.T) (http.Handler, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, cleanup := testutil.OpenTestDB(t)
	userRepo := repo.NewUserRepo(db)
	agentRepo := repo.NewAgentRepo(db)
	bookingRepo := repo.NewBookingRepo(db)
	documentRepo := repo.NewDocumentRepo(db)
	shareRepo := repo.NewShareRepo(db)

	tmpDir, err := os.MkdirTemp("", "safaridesk-upload-*")
	require.NoError(t, err)

	store, err := filestore.New(config.FileStoreConfig{
		Type: "local",
		Data: map[string]interface{}{
			"dir": tmpDir,
		},
	})
	require.NoError(t, err)

	jwtSecret := []byte("test-secret")
	authService := service.NewAuthService(userRepo, jwtSecret, time.Hour)
	agentService := service.NewAgentService(agentRepo)
	bookingService := service.NewBookingService(bookingRepo, agentRepo)
	documentService := service.NewDocumentService(documentRepo, bookingRepo, store)
	shareService := service.NewShareService(shareRepo, bookingRepo, documentRepo, store, "http://test.local", 3600)

	deps := handler.RouterDeps{
		Auth:        handler.NewAuthHandler(authService),
		Agents:      handler.NewAgentHandler(agentService),
		Bookings:    handler.NewBookingHandler(bookingService),
		Documents:   handler.NewDocumentHandler(documentService),
		Shares:      handler.NewShareHandler(shareService),
		PublicShare: handler.NewPublicShareHandler(shareService),
		JWTSecret:   jwtSecret,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		"",
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(nil),
		),
	)
	require.NoError(t, err)

	return engine, func() {
		cleanup()
		_ = os.RemoveAll(tmpDir)
	}
}
