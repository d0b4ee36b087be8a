package endpoint

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupRouter_RequiresStore(t *testing.T) {
	_, err := SetupRouter(RouterDeps{Config: testConfig()})
	assert.Error(t, err)
}

func TestRouter_UnknownRoute(t *testing.T) {
	r, _, _ := setupEndpointTest(t)

	w := performRequest(r, requestSpec{method: http.MethodGet, requestPath: "/patients/1"})

	assert.Equal(t, http.StatusNotFound, w.Code)
	body, err := decodeJSON(w)
	require.NoError(t, err)
	assert.Equal(t, "Route not found", body["msg"])
}

func TestRouter_StaticAssets(t *testing.T) {
	r, _, _ := setupEndpointTest(t)

	w := performRequest(r, requestSpec{method: http.MethodGet, requestPath: "/static/style.css"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/css")
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	r, _, _ := setupEndpointTest(t)
	submitPatient(r, patientFormValues("John Doe", 30, "Male", "Stable", "Flu"))

	w := performRequest(r, requestSpec{method: http.MethodGet, requestPath: "/metrics"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "patient_registry_patients_created_total 1")
	assert.Contains(t, w.Body.String(), `route="/add"`)
}

func TestRouter_PanicIsRecoveredAndCounted(t *testing.T) {
	r, _, m := setupEndpointTest(t)
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := performRequest(r, requestSpec{method: http.MethodGet, requestPath: "/boom"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body, err := decodeJSON(w)
	require.NoError(t, err)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequests.WithLabelValues(http.MethodGet, "/boom", "500")))
}
