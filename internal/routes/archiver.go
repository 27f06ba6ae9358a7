// Package routes adapts the archiver driver to HTTP, mirroring the
// teacher's original single-file /compress and /decompress endpoints
// but backed by the real multi-file archive format.
package routes

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"archiver/internal/archiver"
	"archiver/internal/bitio"
)

// CompressFiles accepts one or more uploaded files under the "file"
// form field and responds with the archive built from them.
func CompressFiles(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "multipart form required")
	}

	uploads := form.File["file"]
	if len(uploads) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "at least one file required")
	}

	workDir, err := os.MkdirTemp("", "archiver-compress-")
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create work dir")
	}
	defer os.RemoveAll(workDir)

	var readers []*bitio.Reader
	for _, fh := range uploads {
		src, err := fh.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot open uploaded file")
		}

		dstPath := filepath.Join(workDir, filepath.Base(fh.Filename))
		dst, err := os.Create(dstPath)
		if err != nil {
			src.Close()
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to stage upload")
		}

		_, copyErr := io.Copy(dst, src)
		src.Close()
		dst.Close()
		if copyErr != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to copy file data")
		}

		r, err := bitio.NewReader(dstPath)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to open staged file")
		}
		readers = append(readers, r)
	}

	archiveDir := filepath.Join(workDir, "out")
	writer, err := bitio.NewWriter(archiveDir)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create output dir")
	}

	const archiveName = "archive"
	if err := archiver.Compress(readers, writer, archiveName); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "compression failed")
	}

	c.Response().Header().Set(echo.HeaderContentType, "application/octet-stream")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="archive.huff"`)
	return c.File(filepath.Join(archiveDir, archiveName))
}

// manifestEntry describes one decoded file in a /decompress response.
type manifestEntry struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// DecompressArchive accepts one uploaded archive under the "file" form
// field, decodes it to a scratch directory, and responds with a JSON
// manifest of the decoded files' names and sizes.
func DecompressArchive(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file required")
	}

	src, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot open uploaded file")
	}
	defer src.Close()

	workDir, err := os.MkdirTemp("", "archiver-decompress-")
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create work dir")
	}
	defer os.RemoveAll(workDir)

	archivePath := filepath.Join(workDir, "archive")
	dst, err := os.Create(archivePath)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to stage archive")
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to copy archive data")
	}
	dst.Close()

	reader, err := bitio.NewReader(archivePath)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to open staged archive")
	}

	outDir := filepath.Join(workDir, "out")
	writer, err := bitio.NewWriter(outDir)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create output dir")
	}

	if err := archiver.Decompress(reader, writer); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "decompression failed")
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to read decoded files")
	}

	manifest := make([]manifestEntry, 0, len(entries))
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("stat %s", e.Name()))
		}
		manifest = append(manifest, manifestEntry{Name: e.Name(), Size: info.Size()})
	}

	return c.JSON(http.StatusOK, manifest)
}
