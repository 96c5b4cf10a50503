package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed static
var staticFiles embed.FS

// UIPath is where the upload page is mounted
const UIPath = "/ui"

// Static returns the embedded front-end rooted at its index.html
func Static() fs.FS {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Register mounts the embedded front-end under /ui/
func Register(router gin.IRouter) {
	router.StaticFS(UIPath, http.FS(Static()))
}
