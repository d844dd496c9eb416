package handler

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gin-gonic/gin"
)

// OpenAPIPath is where OpenAPISpec is mounted.
const OpenAPIPath = "/openapi.json"

// OpenAPISpec serves doc as JSON.
func OpenAPISpec(doc *openapi3.T) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, doc)
	}
}

// APIDocs renders an interactive viewer for the document at OpenAPIPath.
func APIDocs(doc *openapi3.T) gin.HandlerFunc {
	title := "API"
	if doc.Info != nil && doc.Info.Title != "" {
		title = doc.Info.Title
	}
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "docs.html", gin.H{
			"title":   title,
			"specURL": OpenAPIPath,
		})
	}
}
