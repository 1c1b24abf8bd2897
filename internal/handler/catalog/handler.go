package catalog

import (
	"github.com/gin-gonic/gin"

	catalogsvc "github.com/jwalitptl/pharmacy-api/internal/catalog"
	"github.com/jwalitptl/pharmacy-api/pkg/errors"
	"github.com/jwalitptl/pharmacy-api/pkg/httputil"
)

// Handler serves the manual catalog lookup used by the reconciliation form's
// search box. Debouncing is the client's job ("last keystroke wins"); the
// bounded query cache on this side suppresses duplicate round trips for
// repeated terms.
type Handler struct {
	search catalogsvc.Searcher
	cache  *catalogsvc.QueryCache
	opts   catalogsvc.SearchOptions
}

func NewHandler(search catalogsvc.Searcher, cacheSize int, opts catalogsvc.SearchOptions) *Handler {
	return &Handler{
		search: search,
		cache:  catalogsvc.NewQueryCache(cacheSize),
		opts:   opts,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/catalog/search", h.Search)
}

type searchRequest struct {
	Query string `form:"q" binding:"required,min=1"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=50"`
}

func (h *Handler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httputil.RespondWithError(c, errors.NewBadRequest(err.Error(), err))
		return
	}

	if results, ok := h.cache.Get(req.Query); ok {
		httputil.RespondWithSuccess(c, results)
		return
	}

	opts := h.opts
	if req.Limit > 0 {
		opts.Limit = req.Limit
	}

	results, err := h.search.Search(c.Request.Context(), req.Query, opts)
	if err != nil {
		httputil.RespondWithError(c, errors.NewUpstream("catalog search", err))
		return
	}

	h.cache.Put(req.Query, results)
	httputil.RespondWithSuccess(c, results)
}
