package handlers

import (
	"net/http"
	"testing"

	"prism-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdmin_ForbiddenForRegularUser(t *testing.T) {
	db, _ := setupTest(t)
	r := newRouter()

	seedUser(t, db, models.User{ID: "u1"})
	token := authToken(t, "u1", "user")

	assert.Equal(t, http.StatusForbidden, doJSON(t, r, http.MethodGet, "/api/admin/users", token, nil).Code)
	assert.Equal(t, http.StatusForbidden, doJSON(t, r, http.MethodGet, "/api/admin/usage/export", token, nil).Code)
	assert.Equal(t, http.StatusForbidden, doJSON(t, r, http.MethodPatch, "/api/admin/users/u1/pro", token, gin.H{"is_pro": true}).Code)
}

func TestAdmin_ProOverride(t *testing.T) {
	db, _ := setupTest(t)
	r := newRouter()

	seedUser(t, db, models.User{ID: "u1"})
	seedUser(t, db, models.User{ID: "boss", Role: "admin"})
	token := authToken(t, "boss", "admin")

	w := doJSON(t, r, http.MethodPatch, "/api/admin/users/u1/pro", token, gin.H{"is_pro": true})
	require.Equal(t, http.StatusOK, w.Code)

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", "u1").Error)
	assert.True(t, user.IsPro)

	// User tidak ada -> 404, bukan 200 kosong
	w = doJSON(t, r, http.MethodPatch, "/api/admin/users/ghost/pro", token, gin.H{"is_pro": true})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdmin_ExportReturnsWorkbook(t *testing.T) {
	db, _ := setupTest(t)
	r := newRouter()

	seedUser(t, db, models.User{ID: "u1"})
	seedUser(t, db, models.User{ID: "boss", Role: "admin"})

	w := doJSON(t, r, http.MethodGet, "/api/admin/usage/export", authToken(t, "boss", "admin"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	// xlsx = zip, magic bytes "PK"
	require.Greater(t, w.Body.Len(), 4)
	assert.Equal(t, "PK", w.Body.String()[:2])
}
