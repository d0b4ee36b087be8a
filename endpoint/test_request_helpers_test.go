package endpoint

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

type requestSpec struct {
	method       string
	registerPath string
	requestPath  string
	handler      gin.HandlerFunc
	form         url.Values
	headers      map[string]string
}

func performRequest(r http.Handler, spec requestSpec) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if spec.form != nil {
		reader = strings.NewReader(spec.form.Encode())
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(spec.method, spec.requestPath, reader)
	if spec.form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for key, value := range spec.headers {
		req.Header.Set(key, value)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doRequestWithHandler(r *gin.Engine, spec requestSpec) *httptest.ResponseRecorder {
	switch spec.method {
	case http.MethodGet:
		r.GET(spec.registerPath, spec.handler)
	case http.MethodPost:
		r.POST(spec.registerPath, spec.handler)
	default:
		r.Handle(spec.method, spec.registerPath, spec.handler)
	}
	return performRequest(r, spec)
}

func decodeJSON(w *httptest.ResponseRecorder) (map[string]interface{}, error) {
	var body map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &body)
	return body, err
}
