package endpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/ariebrainware/patient-registry/config"
	"github.com/ariebrainware/patient-registry/metrics"
	"github.com/ariebrainware/patient-registry/model"
	"github.com/ariebrainware/patient-registry/store"
	"github.com/ariebrainware/patient-registry/util"
	"github.com/ariebrainware/patient-registry/web"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func testConfig() *config.Config {
	return &config.Config{
		AppName:    "Patient Registry",
		AppEnv:     "test",
		GinMode:    gin.TestMode,
		RateLimit:  30,
		RateWindow: time.Minute,
	}
}

// setupEndpointTestStore opens a private in-memory SQLite store for one test.
func setupEndpointTestStore(t *testing.T) *store.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:endpointtest_%d?mode=memory&cache=shared", time.Now().UnixNano())
	st, err := store.Open(context.Background(), store.Options{Driver: store.DriverSQLite, URL: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close(context.Background()) })
	return st
}

// setupEndpointTest returns the full application router over an in-memory store.
func setupEndpointTest(t *testing.T) (*gin.Engine, *store.Store, *metrics.Metrics) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := setupEndpointTestStore(t)
	m := metrics.New()
	r, err := SetupRouter(RouterDeps{
		Config:  testConfig(),
		Store:   st,
		Logger:  zerolog.Nop(),
		Access:  util.NewAccessLogger(zerolog.Nop(), nil),
		Metrics: m,
	})
	require.NoError(t, err)
	return r, st, m
}

// newTestRouter returns a bare engine with the page templates loaded.
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tmpl, err := web.Templates()
	require.NoError(t, err)
	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	return r
}

func patientFormValues(name string, age int, gender, condition, disease string) url.Values {
	return url.Values{
		"name":      {name},
		"age":       {strconv.Itoa(age)},
		"gender":    {gender},
		"condition": {condition},
		"disease":   {disease},
	}
}

func submitPatient(r http.Handler, form url.Values) *httptest.ResponseRecorder {
	return performRequest(r, requestSpec{
		method:      http.MethodPost,
		requestPath: "/add",
		form:        form,
	})
}

func listPatientsJSON(t *testing.T, r http.Handler) []model.PatientResponse {
	t.Helper()
	w := performRequest(r, requestSpec{
		method:      http.MethodGet,
		requestPath: "/",
		headers:     map[string]string{"Accept": "application/json"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			TotalFetched int                     `json:"total_fetched"`
			Patients     []model.PatientResponse `json:"patients"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, resp.Data.TotalFetched, len(resp.Data.Patients))
	return resp.Data.Patients
}

func storedPatientCount(t *testing.T, st *store.Store) int {
	t.Helper()
	docs, err := st.Collection(model.PatientCollection).FindAll(context.Background(), 1000)
	require.NoError(t, err)
	return len(docs)
}

// failingCollection simulates a store that cannot be reached.
type failingCollection struct{}

func (failingCollection) InsertOne(context.Context, interface{}) (string, error) {
	return "", fmt.Errorf("%w: connection refused", store.ErrStoreUnavailable)
}

func (failingCollection) FindAll(context.Context, int64) ([]bson.Raw, error) {
	return nil, fmt.Errorf("%w: connection refused", store.ErrStoreUnavailable)
}

// recordingCollection remembers inserted documents without a backing store.
type recordingCollection struct {
	inserted []interface{}
}

func (r *recordingCollection) InsertOne(_ context.Context, doc interface{}) (string, error) {
	r.inserted = append(r.inserted, doc)
	return fmt.Sprintf("id-%d", len(r.inserted)), nil
}

func (r *recordingCollection) FindAll(context.Context, int64) ([]bson.Raw, error) {
	return nil, nil
}

// pingerFunc adapts a function to Pinger.
type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }
