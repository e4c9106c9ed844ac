package tests

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madamaths/madamaths/core/account"
	testutil "github.com/madamaths/madamaths/tests"
)

func Test_contentApi_hierarchy(t *testing.T) {
	app := setup(t)
	admin := app.createAccount(t, "admin", "", account.RoleAdmin)
	teacher := app.createAccount(t, "teacher", "", account.RoleTeacher)
	adminToken := getToken(t, app.tokens, admin)
	teacherToken := getToken(t, app.tokens, teacher)

	// class
	rec := app.doJSON(t, http.MethodPost, "/api/admin/classes", adminToken, map[string]string{"name": " 6A "})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	class := decode(t, rec)
	assert.Equal(t, "6A", class["name"])
	classID := objID(t, class)

	// chapter
	rec = app.doJSON(t, http.MethodPost, "/api/chapters", teacherToken, map[string]interface{}{
		"title": "Algebra", "class_id": classID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	chapterID := objID(t, decode(t, rec))

	// lesson
	rec = app.doJSON(t, http.MethodPost, "/api/lessons", teacherToken, map[string]interface{}{
		"title": "Intro", "content": "Let x be a number.", "chapter_id": chapterID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	lessonID := objID(t, decode(t, rec))

	// exercise
	deadline := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	rec = app.doJSON(t, http.MethodPost, "/api/exercises", teacherToken, map[string]interface{}{
		"title": "Solve for x", "lesson_id": lessonID, "deadline": deadline, "max_score": 20,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	exerciseID := objID(t, decode(t, rec))

	student := app.createAccount(t, "", "ST-001", account.RoleStudent, classID)
	studentToken := getToken(t, app.tokens, student)

	// every authenticated account can read
	rec = app.do(http.MethodGet, "/api/classes", studentToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 1)

	rec = app.do(http.MethodGet, fmt.Sprintf("/api/classes/%d/chapters", classID), studentToken)
	require.Equal(t, http.StatusOK, rec.Code)
	chapters := decodeList(t, rec)
	require.Len(t, chapters, 1)
	assert.Equal(t, "Algebra", chapters[0]["title"])

	rec = app.do(http.MethodGet, fmt.Sprintf("/api/chapters/%d/lessons", chapterID), studentToken)
	require.Equal(t, http.StatusOK, rec.Code)
	lessons := decodeList(t, rec)
	require.Len(t, lessons, 1)
	assert.NotContains(t, lessons[0], "content")

	rec = app.do(http.MethodGet, fmt.Sprintf("/api/lessons/%d", lessonID), studentToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Let x be a number.", decode(t, rec)["content"])

	rec = app.do(http.MethodGet, fmt.Sprintf("/api/lessons/%d/exercises", lessonID), studentToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 1)

	rec = app.do(http.MethodGet, fmt.Sprintf("/api/exercises/%d", exerciseID), studentToken)
	require.Equal(t, http.StatusOK, rec.Code)
	ex := decode(t, rec)
	assert.Equal(t, float64(20), ex["max_score"])
	gotDeadline, err := time.Parse(time.RFC3339Nano, ex["deadline"].(string))
	require.NoError(t, err)
	assert.True(t, deadline.Equal(gotDeadline), "deadline = %v; want %v", gotDeadline, deadline)

	// empty collections are lists, not null
	rec = app.do(http.MethodGet, "/api/classes/9999/chapters", studentToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func Test_contentApi_errors(t *testing.T) {
	app := setup(t)
	admin := app.createAccount(t, "admin", "", account.RoleAdmin)
	teacher := app.createAccount(t, "teacher", "", account.RoleTeacher)
	student := app.createAccount(t, "", "ST-001", account.RoleStudent)
	adminToken := getToken(t, app.tokens, admin)
	teacherToken := getToken(t, app.tokens, teacher)
	studentToken := getToken(t, app.tokens, student)

	class := testutil.CreateClass(t, app.contentRepo, "6A")
	inAnHour := time.Now().Add(time.Hour)

	tests := []httpTest{
		{
			name:     "teacher cannot create class",
			method:   http.MethodPost,
			path:     "/api/admin/classes",
			body:     marshallObj(t, map[string]string{"name": "6B"}),
			token:    teacherToken,
			wantCode: http.StatusForbidden,
			wantData: marshallObj(t, errPermissionDenied),
		},
		{
			name:     "duplicate class",
			method:   http.MethodPost,
			path:     "/api/admin/classes",
			body:     marshallObj(t, map[string]string{"name": "6A"}),
			token:    adminToken,
			wantCode: http.StatusConflict,
			wantData: marshallObj(t, httpErr{Error: "a class with this name already exists"}),
		},
		{
			name:     "blank class name",
			method:   http.MethodPost,
			path:     "/api/admin/classes",
			body:     marshallObj(t, map[string]string{"name": "   "}),
			token:    adminToken,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "student cannot create chapter",
			method:   http.MethodPost,
			path:     "/api/chapters",
			body:     marshallObj(t, map[string]interface{}{"title": "Algebra", "class_id": class.ID}),
			token:    studentToken,
			wantCode: http.StatusForbidden,
			wantData: marshallObj(t, errPermissionDenied),
		},
		{
			name:     "chapter of unknown class",
			method:   http.MethodPost,
			path:     "/api/chapters",
			body:     marshallObj(t, map[string]interface{}{"title": "Algebra", "class_id": 9999}),
			token:    teacherToken,
			wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: "class not found"}),
		},
		{
			name:     "lesson of unknown chapter",
			method:   http.MethodPost,
			path:     "/api/lessons",
			body:     marshallObj(t, map[string]interface{}{"title": "Intro", "content": "x", "chapter_id": 9999}),
			token:    teacherToken,
			wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: "chapter not found"}),
		},
		{
			name:     "exercise of unknown lesson",
			method:   http.MethodPost,
			path:     "/api/exercises",
			body:     marshallObj(t, map[string]interface{}{"title": "Ex", "lesson_id": 9999, "deadline": inAnHour, "max_score": 20}),
			token:    teacherToken,
			wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: "lesson not found"}),
		},
		{
			name:     "exercise without max score",
			method:   http.MethodPost,
			path:     "/api/exercises",
			body:     marshallObj(t, map[string]interface{}{"title": "Ex", "lesson_id": 1, "deadline": inAnHour, "max_score": 0}),
			token:    teacherToken,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "exercise without deadline",
			method:   http.MethodPost,
			path:     "/api/exercises",
			body:     marshallObj(t, map[string]interface{}{"title": "Ex", "lesson_id": 1, "max_score": 20}),
			token:    teacherToken,
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, fieldsErr{
				Error:  "invalid input",
				Fields: map[string]string{"deadline": "this field is required"},
			}),
		},
		{
			name:     "unknown lesson",
			method:   http.MethodGet,
			path:     "/api/lessons/9999",
			token:    studentToken,
			wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: "lesson not found"}),
		},
		{
			name:     "unknown exercise",
			method:   http.MethodGet,
			path:     "/api/exercises/9999",
			token:    studentToken,
			wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: "exercise not found"}),
		},
		{
			name:     "unauthenticated read",
			method:   http.MethodGet,
			path:     "/api/classes",
			wantCode: http.StatusUnauthorized,
			wantData: marshallObj(t, errAuthRequired),
		},
		{
			name:     "teacher cannot delete class",
			method:   http.MethodDelete,
			path:     fmt.Sprintf("/api/admin/classes/%d", class.ID),
			token:    teacherToken,
			wantCode: http.StatusForbidden,
		},
		{
			name:     "delete class",
			method:   http.MethodDelete,
			path:     fmt.Sprintf("/api/admin/classes/%d", class.ID),
			token:    adminToken,
			wantCode: http.StatusNoContent,
		},
		{
			name:     "delete class again",
			method:   http.MethodDelete,
			path:     fmt.Sprintf("/api/admin/classes/%d", class.ID),
			token:    adminToken,
			wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: "class not found"}),
		},
	}
	runHTTPTests(t, app, tests)
}
