package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kova-io/estate-x/internal/assistant/biz"
	"github.com/kova-io/estate-x/internal/assistant/extract"
)

// DocumentHandler handles document HTTP requests.
type DocumentHandler struct {
	service *biz.Service
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(service *biz.Service) *DocumentHandler {
	return &DocumentHandler{service: service}
}

// Upload receives a multipart document and starts background indexing.
func (h *DocumentHandler) Upload(c *gin.Context) {
	propertyID, err := strconv.ParseInt(c.PostForm("property_id"), 10, 64)
	if err != nil || propertyID <= 0 {
		failMessage(c, http.StatusBadRequest, "property_id 必须是正整数")
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		failMessage(c, http.StatusBadRequest, "缺少 file 字段")
		return
	}

	title := c.PostForm("title")
	if title == "" {
		title = fh.Filename
	}

	f, err := fh.Open()
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	defer f.Close()

	doc, err := h.service.UploadDocument(c.Request.Context(), propertyID, title, fh.Filename, fh.Size, f)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupportedKind) {
			fail(c, http.StatusBadRequest, err)
			return
		}
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, doc)
}

// List lists documents of one property.
func (h *DocumentHandler) List(c *gin.Context) {
	propertyID, valid := propertyIDQuery(c)
	if !valid {
		return
	}

	docs, err := h.service.ListDocuments(c.Request.Context(), propertyID)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, docs)
}

// Get returns one document.
func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.service.GetDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			failMessage(c, http.StatusNotFound, "文档不存在")
			return
		}
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, doc)
}

// Delete removes a document, its chunks and the stored file.
func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteDocument(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			failMessage(c, http.StatusNotFound, "文档不存在")
			return
		}
		fail(c, http.StatusInternalServerError, err)
		return
	}
	okWithMessage(c, "Document deleted successfully")
}

// Reindex re-runs extraction and indexing for a document.
func (h *DocumentHandler) Reindex(c *gin.Context) {
	doc, err := h.service.ReindexDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			failMessage(c, http.StatusNotFound, "文档不存在")
			return
		}
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, doc)
}

// Summary returns the document summary, generating it on demand.
func (h *DocumentHandler) Summary(c *gin.Context) {
	summary, err := h.service.SummarizeDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			failMessage(c, http.StatusNotFound, "文档不存在")
			return
		}
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, gin.H{"summary": summary})
}

// Stats aggregates document and index statistics for one property.
func (h *DocumentHandler) Stats(c *gin.Context) {
	propertyID, valid := propertyIDQuery(c)
	if !valid {
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), propertyID)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, stats)
}
