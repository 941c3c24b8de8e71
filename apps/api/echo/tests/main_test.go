package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/escolalab/secretaria/apps/api/echo"
	"github.com/escolalab/secretaria/core"
	"github.com/escolalab/secretaria/core/school"
	"github.com/escolalab/secretaria/services/schoolapi/dummy"
)

func setup(t *testing.T) (Server, *dummyapi.Directory) {
	dir := dummyapi.New()
	return newServer(t, school.NewService(dir), false), dir
}

func setupDebug(t *testing.T) (Server, *dummyapi.Directory) {
	dir := dummyapi.New()
	return newServer(t, school.NewService(dir), true), dir
}

func newServer(t *testing.T, schoolSvc *school.Service, debug bool) Server {
	t.Helper()

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)

	return NewServer(
		ServerDeps{
			Conf:           &core.Config{Env: "TEST", Debug: debug},
			Logger:         testLogger{},
			SchoolSvc:      schoolSvc,
			Validate:       validate,
			Translator:     translator,
			DisableReqLogs: true,
		},
	)
}

type testLogger struct{}

func (testLogger) Debug(msg string, args ...interface{}) {}
func (testLogger) Info(msg string, args ...interface{})  {}
func (testLogger) Warn(msg string, args ...interface{})  {}
func (testLogger) Error(msg string, args ...interface{}) {}
func (testLogger) Fatal(msg string, args ...interface{}) {}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
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

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
