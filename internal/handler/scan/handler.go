package scan

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/pharmacy-api/internal/model"
	"github.com/jwalitptl/pharmacy-api/internal/reconcile"
	"github.com/jwalitptl/pharmacy-api/internal/session"
	"github.com/jwalitptl/pharmacy-api/pkg/errors"
	"github.com/jwalitptl/pharmacy-api/pkg/httputil"
)

// Handler exposes the scan session lifecycle: upload, observe progress,
// edit line items, submit, close.
type Handler struct {
	sessions *session.Service
}

func NewHandler(sessions *session.Service) *Handler {
	return &Handler{sessions: sessions}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	scans := r.Group("/scans")
	{
		scans.POST("", h.StartScan)
		scans.GET("/:id", h.GetScan)
		scans.PATCH("/:id", h.UpdateNames)
		scans.POST("/:id/items", h.AddItem)
		scans.PATCH("/:id/items/:index", h.UpdateItem)
		scans.DELETE("/:id/items/:index", h.RemoveItem)
		scans.POST("/:id/submit", h.Submit)
		scans.DELETE("/:id", h.CloseScan)
	}
}

func (h *Handler) StartScan(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		httputil.RespondWithError(c, errors.NewBadRequest("no file uploaded", err))
		return
	}

	src, err := file.Open()
	if err != nil {
		httputil.RespondWithError(c, errors.NewInternal(err))
		return
	}
	defer src.Close()

	image, err := io.ReadAll(src)
	if err != nil {
		httputil.RespondWithError(c, errors.NewInternal(err))
		return
	}

	snap, err := h.sessions.StartScan(image, file.Filename)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithStatus(c, http.StatusAccepted, snap)
}

func (h *Handler) GetScan(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	snap, err := h.sessions.Get(id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, snap)
}

type updateNamesRequest struct {
	PatientName *string `json:"patient_name"`
	DoctorName  *string `json:"doctor_name"`
}

func (h *Handler) UpdateNames(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req updateNamesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.NewBadRequest(err.Error(), err))
		return
	}

	snap, err := h.sessions.UpdatePatient(id, req.PatientName, req.DoctorName)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, snap)
}

type addItemRequest struct {
	ID            string  `json:"id" binding:"required"`
	Name          string  `json:"name" binding:"required"`
	GenericName   string  `json:"generic_name"`
	BrandName     string  `json:"brand_name"`
	Strength      string  `json:"strength"`
	Unit          string  `json:"unit"`
	Price         float64 `json:"price" binding:"gte=0"`
	StockQuantity int     `json:"stock_quantity" binding:"gte=0"`
}

func (h *Handler) AddItem(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.NewBadRequest(err.Error(), err))
		return
	}

	snap, err := h.sessions.AddItem(id, model.CatalogItem{
		ID:            req.ID,
		Name:          req.Name,
		GenericName:   req.GenericName,
		BrandName:     req.BrandName,
		Strength:      req.Strength,
		Unit:          req.Unit,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
	})
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, snap)
}

type updateItemRequest struct {
	Quantity  *int    `json:"quantity"`
	Dosage    *string `json:"dosage"`
	Frequency *string `json:"frequency"`
	Duration  *string `json:"duration"`
}

func (h *Handler) UpdateItem(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		httputil.RespondWithError(c, errors.NewBadRequest("invalid line item index", err))
		return
	}

	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.NewBadRequest(err.Error(), err))
		return
	}

	var snap session.Snapshot
	if req.Quantity != nil {
		snap, err = h.sessions.UpdateQuantity(id, index, *req.Quantity)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
	}
	for field, value := range map[string]*string{
		reconcile.FieldDosage:    req.Dosage,
		reconcile.FieldFrequency: req.Frequency,
		reconcile.FieldDuration:  req.Duration,
	} {
		if value == nil {
			continue
		}
		snap, err = h.sessions.UpdateField(id, index, field, *value)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
	}
	if req.Quantity == nil && req.Dosage == nil && req.Frequency == nil && req.Duration == nil {
		httputil.RespondWithError(c, errors.NewBadRequest("no fields to update", nil))
		return
	}

	httputil.RespondWithSuccess(c, snap)
}

func (h *Handler) RemoveItem(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		httputil.RespondWithError(c, errors.NewBadRequest("invalid line item index", err))
		return
	}

	snap, err := h.sessions.RemoveItem(id, index)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, snap)
}

func (h *Handler) Submit(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	confirmation, err := h.sessions.Submit(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithStatus(c, http.StatusCreated, confirmation)
}

func (h *Handler) CloseScan(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	h.sessions.Close(id)
	c.Status(http.StatusNoContent)
}

func (h *Handler) sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.NewBadRequest("invalid scan session ID", err))
		return uuid.Nil, false
	}
	return id, true
}
