package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"courseaca-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTokens() services.TokenService {
	return services.TokenService{
		Secret:     []byte("test-secret"),
		Issuer:     "courseaca-test",
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

func TestWithAuth(t *testing.T) {
	tokens := testTokens()
	handler := WithAuth(tokens)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	access, _, err := tokens.CreateAccessToken("user-1", services.RoleStudent)
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole(t *testing.T) {
	tokens := testTokens()
	handler := WithAuth(tokens)(RequireRole(services.RoleAdmin)(okHandler()))

	access, _, err := tokens.CreateAccessToken("user-1", services.RoleStudent)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	access, _, err = tokens.CreateAccessToken("admin-1", services.RoleAdmin)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWithOptionalAuth(t *testing.T) {
	tokens := testTokens()
	var identity services.Identity
	var present bool
	handler := WithOptionalAuth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, present = CurrentIdentity(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, present)

	access, _, err := tokens.CreateAccessToken("user-1", services.RoleStudent)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.True(t, present)
	assert.Equal(t, "user-1", identity.UserID)
}

type staticOwners map[string]string

func (o staticOwners) CourseTeacherID(courseID string) (string, error) {
	teacherID, ok := o[courseID]
	if !ok {
		return "", services.ErrIllegalParameter("Course id is incorrect")
	}
	return teacherID, nil
}

func TestRequireCourseOwner(t *testing.T) {
	tokens := testTokens()
	owners := staticOwners{"c1": "teacher-1"}

	router := chi.NewRouter()
	router.With(WithAuth(tokens), RequireCourseOwner(owners)).
		Get("/courses/{courseId}", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

	owner, _, err := tokens.CreateAccessToken("teacher-1", services.RoleTeacher)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/courses/c1", nil)
	req.Header.Set("Authorization", "Bearer "+owner)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	intruder, _, err := tokens.CreateAccessToken("teacher-2", services.RoleTeacher)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/courses/c1", nil)
	req.Header.Set("Authorization", "Bearer "+intruder)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/courses/unknown", nil)
	req.Header.Set("Authorization", "Bearer "+owner)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWriteServiceError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteServiceError(rec, services.ErrCourseLocked("Course is approved"))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Course is approved")

	rec = httptest.NewRecorder()
	WriteServiceError(rec, assert.AnError)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
