package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/signquick/signquick/apps/api/echo"
	"github.com/signquick/signquick/core"
	"github.com/signquick/signquick/core/catalog"
	"github.com/signquick/signquick/core/price"
	"github.com/signquick/signquick/core/quote"
	"github.com/signquick/signquick/core/sign"
	"github.com/signquick/signquick/core/user"
	"github.com/signquick/signquick/services/document"
	"github.com/signquick/signquick/services/email"
	"github.com/signquick/signquick/storage/database/sqlx"
	"github.com/signquick/signquick/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	Server
	db      *sqlx.DB
	conf    *core.Config
	auth    *Auth
	usrRepo user.Repository
	signSvc *sign.Service
}

func setup(t *testing.T) *testApp {
	t.Helper()

	// set up DB & repos
	conf := testutil.Config()
	db := testutil.PrepareDB(t)
	usrRepo := sqlxrepos.NewUserRepository(db)

	// set up services
	emailsvc.ResetSentMessages()
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	signSvc := sign.NewService(db, sqlxrepos.NewSignRepository(db), docsvc.NewSheetCodec())
	opts := &Options{
		Conf:           conf,
		Logger:         nopLogger{},
		DisableReqLogs: true,
		UserSvc:        user.NewService(db, usrRepo, signSvc.SeedDefaults),
		PriceSvc:       price.NewService(sqlxrepos.NewPriceRepository(db)),
		CatalogSvc:     catalog.NewService(db, sqlxrepos.NewCatalogRepository(db)),
		SignSvc:        signSvc,
		QuoteSvc:       quote.NewService(db, sqlxrepos.NewQuoteRepository(db), docsvc.NewRenderer(conf), mailSvc, conf),
	}

	return &testApp{
		Server:  NewServer(opts),
		db:      db,
		conf:    conf,
		auth:    NewAuth(conf),
		usrRepo: usrRepo,
		signSvc: signSvc,
	}
}

// createUser inserts a user without the registration hooks and returns its token.
func (app *testApp) createUser(t *testing.T, uname string) (user.User, string) {
	usr := testutil.CreateUser(t, app.usrRepo, uname, "Pwd-"+uname+"-123")
	return usr, app.getToken(t, usr)
}

func (app *testApp) getToken(t *testing.T, usr user.User) string {
	token, err := app.auth.GenerateToken(app.auth.UserClaims(usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

// do serves the request and returns the recorder.
func (app *testApp) do(method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, token, data...)
	app.ServeHTTP(rec, req)
	return rec
}

// doJSON serves the request, checks the status code and decodes the body into out.
func (app *testApp) doJSON(t *testing.T, method, path, token string, body interface{}, wantCode int, out interface{}) {
	t.Helper()
	var data []byte
	if body != nil {
		data = marchallObj(t, body)
	}
	rec := app.do(method, path, token, data)
	require.Equal(t, wantCode, rec.Code, rec.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type httpErr struct {
	Error string `json:"error"`
}

type httpFieldsErr struct {
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

func (tt httpTest) run(t *testing.T, app *testApp) {
	t.Run(tt.name, func(t *testing.T) {
		method := tt.method
		if method == "" {
			method = http.MethodGet
		}
		rec := app.do(method, tt.path, tt.token, tt.body)
		checkCodeAndData(t, tt, rec)
	})
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

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
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
	assert.Equal(t, tt.wantCode, rec.Code, "code")
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
