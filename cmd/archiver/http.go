package main

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoware "github.com/labstack/echo/v4/middleware"

	"archiver/internal/routes"
)

// serveHTTP starts the optional HTTP mirror of the archiver, exposing
// the same /compress and /decompress routes the teacher's backend
// served, now backed by the real multi-file archive format.
func serveHTTP(addr string) error {
	e := echo.New()
	e.Use(echoware.Logger())
	e.Use(echoware.Recover())
	e.Use(echoware.CORSWithConfig(echoware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost},
	}))

	e.POST("/compress", routes.CompressFiles)
	e.POST("/decompress", routes.DecompressArchive)

	return e.Start(addr)
}
