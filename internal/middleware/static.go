package middleware

import (
	"fmt"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"

	appErrors "github.com/dulanjanabandara/job-recommender-system/pkg/errors"
)

// NotFoundHandler is installed with NoRoute. GET and HEAD requests for a file
// under root are answered with that file; everything else is a 404 recorded
// for the error handler.
func NotFoundHandler(root string) gin.HandlerFunc {
	var files http.FileSystem
	if root != "" {
		files = gin.Dir(root, false)
	}

	return func(c *gin.Context) {
		if files != nil && (c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead) {
			name := path.Clean("/" + c.Request.URL.Path)
			if isFile(files, name) {
				c.Status(http.StatusOK)
				c.FileFromFS(name, files)
				return
			}
		}

		_ = c.Error(appErrors.NotFound(fmt.Sprintf("Can't find %s on the server!", c.Request.URL.RequestURI())))
		c.Abort()
	}
}

func isFile(files http.FileSystem, name string) bool {
	f, err := files.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	return err == nil && !info.IsDir()
}
