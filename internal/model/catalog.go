package model

// CatalogItem is a read-only view of one medicine in the external catalog.
type CatalogItem struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	GenericName   string  `json:"generic_name"`
	BrandName     string  `json:"brand_name"`
	Strength      string  `json:"strength"`
	Unit          string  `json:"unit"`
	Price         float64 `json:"price"`
	StockQuantity int     `json:"stock_quantity"`
}

// MatchResult is the outcome of resolving one candidate name against the
// catalog. Item is nil when no catalog entry could be selected with enough
// confidence.
type MatchResult struct {
	QueryName   string       `json:"query_name"`
	Item        *CatalogItem `json:"item,omitempty"`
	Confidence  float64      `json:"confidence"`
	IsAvailable bool         `json:"is_available"`
}

// Matched reports whether a catalog item was selected.
func (r MatchResult) Matched() bool {
	return r.Item != nil
}
