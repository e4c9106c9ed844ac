package tests

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	echoapi "github.com/madamaths/madamaths/apps/api/echo"
	"github.com/madamaths/madamaths/core"
	"github.com/madamaths/madamaths/core/account"
	"github.com/madamaths/madamaths/core/content"
	"github.com/madamaths/madamaths/core/coursework"
	"github.com/madamaths/madamaths/core/message"
	logsvc "github.com/madamaths/madamaths/services/logger"
	sqlxrepos "github.com/madamaths/madamaths/storage/database/sqlx"
	testutil "github.com/madamaths/madamaths/tests"
)

var (
	errAuthRequired       = httpErr{Error: "authentication required"}
	errInvalidToken       = httpErr{Error: "invalid or expired token"}
	errInvalidCredentials = httpErr{Error: "invalid credentials"}
	errPermissionDenied   = httpErr{Error: "permission denied"}
)

type testApp struct {
	server      *echoapi.Server
	tokens      *account.TokenService
	accRepo     account.Repository
	contentRepo content.Repository
}

func setup(t *testing.T) *testApp {
	conf := core.NewTestConfig()

	// set up DB & repos
	db := testutil.PrepareDB(t)
	accRepo := sqlxrepos.NewAccountRepository(db)
	contentRepo := sqlxrepos.NewContentRepository(db)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	account.InitValidators(validate, translator)

	// set up services
	tokens := account.NewTokenService(conf)
	contentSvc := content.NewService(contentRepo)

	// set up server
	server := echoapi.NewServer(&echoapi.Deps{
		Config:        conf,
		Logger:        logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf),
		Validate:      validate,
		Translator:    translator,
		Tokens:        tokens,
		AccountSvc:    account.NewService(accRepo, conf),
		ContentSvc:    contentSvc,
		CourseworkSvc: coursework.NewService(sqlxrepos.NewCourseworkRepository(db), contentSvc),
		MessageSvc:    message.NewService(sqlxrepos.NewMessageRepository(db)),
	})

	return &testApp{
		server:      server,
		tokens:      tokens,
		accRepo:     accRepo,
		contentRepo: contentRepo,
	}
}

// do sends a JSON request to the app and returns the recorded response.
func (app *testApp) do(method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, token, data...)
	app.server.ServeHTTP(rec, req)
	return rec
}

// doJSON is do with a body marshalled from obj.
func (app *testApp) doJSON(t *testing.T, method, path, token string, obj interface{}) *httptest.ResponseRecorder {
	return app.do(method, path, token, marshallObj(t, obj))
}

func (app *testApp) createAccount(t *testing.T, uname, code string, role account.Role, classID ...int64) account.Account {
	return testutil.CreateAccount(t, app.accRepo, uname, code, "Account "+uname+code, "", role, true, classID...)
}

// createExercise stores an exercise due in an hour and returns it.
func (app *testApp) createExercise(t *testing.T, maxScore float64) content.Exercise {
	return testutil.CreateExercise(t, app.contentRepo, time.Now().Add(time.Hour), maxScore)
}

type httpErr struct {
	Error string `json:"error"`
}

type fieldsErr struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func getToken(t *testing.T, tokens *account.TokenService, acc account.Account) string {
	token, err := tokens.Issue(account.Identity{AccountID: acc.ID, Role: acc.Role})
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

// decode unmarshals the response body into a generic JSON object.
func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data), rec.Body.String())
	return data
}

// decodeList unmarshals the response body into a list of generic JSON objects.
func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]interface{} {
	var data []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data), rec.Body.String())
	return data
}

// objID returns the numeric id of a decoded JSON object.
func objID(t *testing.T, obj map[string]interface{}) int64 {
	v, ok := obj["id"].(float64)
	require.True(t, ok, "id missing from %v", obj)
	return int64(v)
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app *testApp, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(tt.method, tt.path, tt.token, tt.body)
			checkCodeAndData(t, tt, rec)
		})
	}
}
