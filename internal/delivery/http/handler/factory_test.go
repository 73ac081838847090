package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dulanjanabandara/job-recommender-system/internal/middleware"
	"github.com/dulanjanabandara/job-recommender-system/internal/usecase/crud"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type note struct {
	ID string `json:"id"`
}

func TestFactoryWithoutWriteConstructors(t *testing.T) {
	factory := NewFactory(crud.NewService(crud.Definition[note]{Name: "notes"}, nil))

	r := gin.New()
	r.Use(middleware.ErrorHandler(false))
	r.POST("/notes", factory.CreateOne)
	r.PATCH("/notes/:id", factory.UpdateOne)

	tests := []struct {
		method  string
		target  string
		message string
	}{
		{http.MethodPost, "/notes", "This route does not create documents."},
		{http.MethodPatch, "/notes/1", "This route does not update documents."},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(`{"id":"x"}`))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			require.NotPanics(t, func() { r.ServeHTTP(w, req) })
			assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "fail", body["status"])
			assert.Equal(t, tt.message, body["message"])
		})
	}
}
