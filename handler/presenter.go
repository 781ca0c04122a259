package handler

import (
	"embed"
	"encoding/json"
	"errors"
	"html"
	"html/template"
	"net/http"

	"github.com/annazecevic/catalog-service/logger"
	"github.com/annazecevic/catalog-service/middleware"
	"github.com/annazecevic/catalog-service/repository"
	"github.com/annazecevic/catalog-service/validation"
	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

func loadTemplates(r *gin.Engine) {
	r.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))
}

// Result is what a handler decided to answer, independent of how it is
// written out. Page requests follow Redirect when it is set; programmatic
// requests always get Data as JSON.
type Result struct {
	Status   int
	Title    string
	Data     gin.H
	Redirect string
	Links    []Link
}

type Link struct {
	Href string
	Text string
}

var nav = []Link{
	{"/catalog/artists", "Artists"},
	{"/catalog/releases", "Releases"},
	{"/catalog/copies", "Copies"},
	{"/catalog/genres", "Genres"},
	{"/catalog/styles", "Styles"},
	{"/catalog/tracks", "Tracks"},
	{"/catalog/crates", "Crates"},
	{"/catalog/covers", "Covers"},
}

func present(c *gin.Context, res Result) {
	status := res.Status
	if status == 0 {
		status = http.StatusOK
	}

	if middleware.WantsJSON(c) {
		data := res.Data
		if data == nil {
			data = gin.H{}
		}
		c.JSON(status, data)
		return
	}

	if res.Redirect != "" {
		c.Redirect(http.StatusSeeOther, res.Redirect)
		return
	}

	var errs validation.Errors
	if e, ok := res.Data["errors"].(validation.Errors); ok {
		errs = e
	}
	payload, _ := json.MarshalIndent(res.Data, "", "  ")
	c.HTML(status, "page.html", gin.H{
		"Title":   res.Title,
		"Nav":     nav,
		"Errors":  errs,
		"Links":   res.Links,
		"Payload": string(payload),
	})
}

// fail answers an error that the handler did not turn into a normal result.
func fail(c *gin.Context, kind string, err error) {
	status, msg := http.StatusInternalServerError, "internal server error"
	if errors.Is(err, repository.ErrNotFound) {
		status, msg = http.StatusNotFound, kind+" not found"
	} else {
		logger.Error(logger.EventDBError, "Request failed", logger.Fields(
			"kind", kind,
			"path", c.Request.URL.Path,
			"error", err.Error(),
		))
	}

	if middleware.WantsJSON(c) {
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.HTML(status, "error.html", gin.H{
		"Title":   http.StatusText(status),
		"Message": msg,
	})
}

func badRequest(c *gin.Context, err error) {
	logger.Warn(logger.EventValidationFailure, "Malformed request body", logger.Fields(
		"ip", c.ClientIP(),
		"path", c.Request.URL.Path,
		"error", err.Error(),
	))
	if middleware.WantsJSON(c) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.HTML(http.StatusBadRequest, "error.html", gin.H{
		"Title":   http.StatusText(http.StatusBadRequest),
		"Message": err.Error(),
	})
}

func link(href, text string) Link {
	return Link{Href: href, Text: html.UnescapeString(text)}
}
