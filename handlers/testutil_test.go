package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"prism-backend/database"
	"prism-backend/gemini"
	"prism-backend/middleware"
	"prism-backend/models"
	"prism-backend/quota"
	"prism-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeAI: pengganti Gemini di test. Merekam apa yang dikirim handler
// dan memutar ulang respons yang sudah diset.
type fakeAI struct {
	mu         sync.Mutex
	chunks     []string
	chatErr    error
	notes      string
	notesErr   error
	doubtText  string
	doubtErr   error
	gotHistory []gemini.Turn
	gotMessage string
}

func (f *fakeAI) StreamChat(ctx context.Context, history []gemini.Turn, message string, onChunk func(string) error) (string, error) {
	f.mu.Lock()
	f.gotHistory = history
	f.gotMessage = message
	f.mu.Unlock()

	if f.chatErr != nil {
		return "", f.chatErr
	}
	full := ""
	for _, ch := range f.chunks {
		if err := onChunk(ch); err != nil {
			return full, err
		}
		full += ch
	}
	return full, nil
}

func (f *fakeAI) ExtractNotes(ctx context.Context, assistantText string) (string, error) {
	return f.notes, f.notesErr
}

func (f *fakeAI) ResolveDoubt(ctx context.Context, selectedText, contextText string) (string, error) {
	return f.doubtText, f.doubtErr
}

func (f *fakeAI) history() []gemini.Turn {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gotHistory
}

// setupTest: DB temp + ledger daily + fake AI, dicolok ke global package.
// Test di package ini sengaja tidak paralel karena berbagi global tersebut.
func setupTest(t *testing.T) (*gorm.DB, *fakeAI) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=busy_timeout(5000)"
	db, err := database.Connect(dsn)
	require.NoError(t, err)
	database.DB = db

	Ledger = quota.NewDailyLedger(db)
	ai := &fakeAI{}
	AI = ai
	return db, ai
}

// newRouter: rute yang sama dengan main.go, middleware asli.
func newRouter() *gin.Engine {
	r := gin.New()

	r.POST("/register", Register)
	r.POST("/login", Login)
	r.POST("/webhooks/billing", BillingWebhook)
	r.POST("/webhooks/identity", IdentityWebhook)

	api := r.Group("/api")
	api.Use(middleware.JwtAuthMiddleware())
	{
		api.POST("/chat", SubmitTurn)
		api.GET("/chat/history", GetHistory)
		api.POST("/doubt", ResolveDoubt)
		api.POST("/notes", ExtractNotes)
		api.GET("/notebooks", ListNotebooks)
		api.POST("/notebooks", CreateNotebook)
		api.GET("/notebooks/:id", GetNotebook)
		api.PATCH("/notebooks/:id", UpdateNotebook)
		api.DELETE("/notebooks/:id", DeleteNotebook)
		api.GET("/usage", GetUsage)
		api.POST("/referral", ApplyReferral)
		api.GET("/subscription", GetSubscription)
		api.POST("/subscription/register", RegisterSubscription)
		admin := api.Group("/admin")
		{
			admin.GET("/users", GetAllUsers)
			admin.PATCH("/users/:id/pro", SetUserProStatus)
			admin.GET("/usage/export", ExportUsageExcel)
		}
	}
	return r
}

func authToken(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := utils.GenerateToken(userID, userID+"@test.com", role)
	require.NoError(t, err)
	return token
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seedUser(t *testing.T, db *gorm.DB, user models.User) models.User {
	t.Helper()
	if user.Email == "" {
		user.Email = user.ID + "@test.com"
	}
	if user.ReferralCode == "" {
		user.ReferralCode = "PRISM" + user.ID
	}
	if user.LastEnergyRefill.IsZero() {
		user.LastEnergyRefill = time.Now()
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedNotebook(t *testing.T, db *gorm.DB, userID, title string) models.Notebook {
	t.Helper()
	nb := models.Notebook{UserID: userID, TopicTitle: title}
	require.NoError(t, db.Create(&nb).Error)
	return nb
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func todayStr() string {
	return time.Now().Format("2006-01-02")
}
