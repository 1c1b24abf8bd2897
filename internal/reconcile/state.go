package reconcile

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/pharmacy-api/internal/model"
	"github.com/jwalitptl/pharmacy-api/pkg/errors"
)

// Editable free-text fields on a line item.
const (
	FieldDosage    = "dosage"
	FieldFrequency = "frequency"
	FieldDuration  = "duration"
)

// State is the single source of truth for the editable prescription form
// during one scan session. It is mutated only from the owning session's
// serialized event handling, so it carries no locking of its own.
type State struct {
	PatientName string                   `json:"patient_name"`
	DoctorName  string                   `json:"doctor_name,omitempty"`
	Notes       string                   `json:"notes,omitempty"`
	Items       []model.MedicineLineItem `json:"items"`
	Total       float64                  `json:"total"`
}

// NewFromDocument builds one line item per extracted medicine entry, binding
// catalog id, price and stock where the matcher succeeded. Unmatched entries
// keep a temporary id and stay fully editable placeholders.
func NewFromDocument(doc model.PrescriptionDocument, matches []model.MatchResult) *State {
	s := &State{
		PatientName: doc.PatientName,
		DoctorName:  doc.DoctorName,
		Items:       make([]model.MedicineLineItem, 0, len(doc.MedicineEntries)),
	}

	for i, entry := range doc.MedicineEntries {
		item := model.MedicineLineItem{
			Name:        entry.Name,
			Strength:    entry.Strength,
			Quantity:    entry.Quantity,
			Dosage:      entry.Dosage,
			Frequency:   entry.Frequency,
			Duration:    entry.Duration,
			IsExtracted: true,
		}
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		if i < len(matches) && matches[i].Matched() && !s.bound(matches[i].Item.ID) {
			m := matches[i].Item
			item.CatalogID = m.ID
			item.Name = m.Name
			item.Strength = m.Strength
			item.Unit = m.Unit
			item.Price = m.Price
			item.Stock = m.StockQuantity
		} else {
			item.TempID = "tmp_" + uuid.New().String()
		}
		s.Items = append(s.Items, item)
	}

	s.recompute()
	return s
}

// AppendMatched adds a line item for a fallback candidate the matcher
// resolved. Duplicate catalog ids are skipped silently; the candidate pass
// routinely rediscovers medicines the entry pass already bound.
func (s *State) AppendMatched(match model.MatchResult) {
	if !match.Matched() || s.bound(match.Item.ID) {
		return
	}
	m := match.Item
	s.Items = append(s.Items, model.MedicineLineItem{
		CatalogID:   m.ID,
		Name:        m.Name,
		Strength:    m.Strength,
		Quantity:    1,
		Unit:        m.Unit,
		Price:       m.Price,
		Stock:       m.StockQuantity,
		IsExtracted: true,
	})
	s.recompute()
}

// AddFromCatalogSearch appends a manually picked catalog item with quantity
// 1. Adding an item that is already bound to an existing row is rejected.
func (s *State) AddFromCatalogSearch(item model.CatalogItem) error {
	if s.bound(item.ID) {
		return errors.NewConflict(fmt.Sprintf("%s is already on the prescription", item.Name))
	}
	s.Items = append(s.Items, model.MedicineLineItem{
		CatalogID: item.ID,
		Name:      item.Name,
		Strength:  item.Strength,
		Quantity:  1,
		Unit:      item.Unit,
		Price:     item.Price,
		Stock:     item.StockQuantity,
	})
	s.recompute()
	return nil
}

// UpdateQuantity rejects values below 1; the prior quantity stays in place.
func (s *State) UpdateQuantity(index, quantity int) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	if quantity < 1 {
		return errors.NewBadRequest("quantity must be at least 1", nil)
	}
	s.Items[index].Quantity = quantity
	s.recompute()
	return nil
}

// UpdateField is a free-text update for dosage, frequency or duration. No
// validation by design; these are instructions for the pharmacist.
func (s *State) UpdateField(index int, field, value string) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	switch field {
	case FieldDosage:
		s.Items[index].Dosage = value
	case FieldFrequency:
		s.Items[index].Frequency = value
	case FieldDuration:
		s.Items[index].Duration = value
	default:
		return errors.NewBadRequest(fmt.Sprintf("unknown field %q", field), nil)
	}
	return nil
}

// Remove deletes the line item at index.
func (s *State) Remove(index int) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	s.Items = append(s.Items[:index], s.Items[index+1:]...)
	s.recompute()
	return nil
}

// Validate returns a field-keyed error map. Any non-empty map blocks
// submission.
func (s *State) Validate() map[string]string {
	errs := make(map[string]string)

	if strings.TrimSpace(s.PatientName) == "" {
		errs["patient_name"] = "patient name is required"
	}
	if len(s.Items) == 0 {
		errs["items"] = "at least one medicine is required"
	}
	for i, item := range s.Items {
		key := fmt.Sprintf("items.%d.quantity", i)
		if item.Quantity < 1 {
			errs[key] = "quantity must be at least 1"
			continue
		}
		if item.Bound() && item.Stock > 0 && item.Quantity > item.Stock {
			errs[key] = fmt.Sprintf("quantity exceeds available stock (%d)", item.Stock)
		}
	}

	return errs
}

func (s *State) bound(catalogID string) bool {
	for _, item := range s.Items {
		if item.CatalogID == catalogID {
			return true
		}
	}
	return false
}

func (s *State) checkIndex(index int) error {
	if index < 0 || index >= len(s.Items) {
		return errors.NewNotFound("line item", nil)
	}
	return nil
}

// recompute keeps Total in sync after every mutation.
func (s *State) recompute() {
	total := 0.0
	for _, item := range s.Items {
		total += item.Price * float64(item.Quantity)
	}
	s.Total = total
}
