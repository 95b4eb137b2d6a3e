// Package frontend serves the embedded static chat page.
package frontend

import (
	"context"
	"embed"
	"io/fs"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/rogally/allychat/internal/profile"
	"github.com/rogally/allychat/internal/util"
)

//go:embed dist
var embeddedFiles embed.FS

// FrontendService serves the static chat page at the root path.
type FrontendService struct {
	Profile *profile.Profile
}

// NewFrontendService creates a new FrontendService.
func NewFrontendService(profile *profile.Profile) *FrontendService {
	return &FrontendService{Profile: profile}
}

// Serve registers the static file middleware on the echo server.
func (*FrontendService) Serve(_ context.Context, e *echo.Echo) {
	skipper := func(c echo.Context) bool {
		// Skip API and operational routes.
		return util.HasPrefixes(c.Path(), "/chat", "/healthz", "/metrics")
	}

	// Compress static assets only; the API responses are small JSON bodies.
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level:   5,
		Skipper: skipper,
	}))

	e.Use(middleware.StaticWithConfig(middleware.StaticConfig{
		Filesystem: getFileSystem("dist"),
		HTML5:      true,
		Skipper:    skipper,
	}))
}

func getFileSystem(path string) http.FileSystem {
	fs, err := fs.Sub(embeddedFiles, path)
	if err != nil {
		panic(err)
	}
	return http.FS(fs)
}
