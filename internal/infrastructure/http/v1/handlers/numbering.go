package handlers

import (
	"github.com/gin-gonic/gin"

	"stockbook/internal/core/apperror"
	"stockbook/internal/domain/documents"
	"stockbook/internal/infrastructure/http/v1/dto"
)

// NumberingHandler serves document number allocation.
type NumberingHandler struct {
	*BaseHandler
	service *documents.Service
}

// NewNumberingHandler creates a new numbering handler.
func NewNumberingHandler(base *BaseHandler, service *documents.Service) *NumberingHandler {
	return &NumberingHandler{BaseHandler: base, service: service}
}

// Series lists the configured numbering series.
// GET /api/v1/numbering/series
func (h *NumberingHandler) Series(c *gin.Context) {
	h.OK(c, dto.NewListResponse(h.service.Series()))
}

// Next allocates the next number of a document type.
// POST /api/v1/numbering/:type/next
func (h *NumberingHandler) Next(c *gin.Context) {
	var req dto.NextNumberRequest
	if !h.BindOptionalJSON(c, &req) {
		return
	}
	at, err := req.DocumentDate()
	if err != nil {
		h.Error(c, apperror.NewValidation("date must be RFC 3339 or YYYY-MM-DD").WithDetail("field", "date"))
		return
	}

	t := documentType(c)
	num, err := h.service.Next(c.Request.Context(), t, at)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromDocumentNumber(t, num))
}

// Counters lists the tenant's counters of a document type.
// GET /api/v1/numbering/:type/counters
func (h *NumberingHandler) Counters(c *gin.Context) {
	counters, err := h.service.Counters(c.Request.Context(), documentType(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(counters))
}

// Advance raises a counter so numbering continues above a value.
// POST /api/v1/numbering/:type/advance
func (h *NumberingHandler) Advance(c *gin.Context) {
	var req dto.AdvanceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	t := documentType(c)
	seq, err := h.service.Advance(c.Request.Context(), t, req.Period, req.Value)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.AdvanceResponse{Type: t, Period: req.Period, Sequence: seq})
}

// Import continues numbering after a number issued by a legacy scheme.
// POST /api/v1/numbering/:type/import
func (h *NumberingHandler) Import(c *gin.Context) {
	var req dto.ImportRequest
	if !h.BindJSON(c, &req) {
		return
	}

	t := documentType(c)
	res, err := h.service.Import(c.Request.Context(), t, req.Number)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ImportResponse{Type: t, ImportResult: res})
}

func documentType(c *gin.Context) documents.Type {
	return documents.Type(c.Param("type"))
}
