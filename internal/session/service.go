package session

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/pharmacy-api/internal/catalog"
	"github.com/jwalitptl/pharmacy-api/internal/extract"
	"github.com/jwalitptl/pharmacy-api/internal/model"
	"github.com/jwalitptl/pharmacy-api/internal/order"
	"github.com/jwalitptl/pharmacy-api/internal/recognition"
	"github.com/jwalitptl/pharmacy-api/internal/reconcile"
	"github.com/jwalitptl/pharmacy-api/pkg/errors"
	"github.com/jwalitptl/pharmacy-api/pkg/logger"
	"github.com/jwalitptl/pharmacy-api/pkg/metrics"
)

// Service orchestrates scan sessions through the pipeline state machine:
// extracting -> reconciling -> submitting -> completed, with failed as the
// acquisition dead end and close discarding everything from any state.
type Service struct {
	engine     recognition.Engine
	extractor  *extract.FieldExtractor
	candidates *extract.CandidateNameExtractor
	matcher    *catalog.Matcher
	assembler  *order.Assembler
	orders     order.Creator
	store      *Store
	metrics    *metrics.Metrics
	logger     *logger.Logger
}

func NewService(
	engine recognition.Engine,
	extractor *extract.FieldExtractor,
	candidates *extract.CandidateNameExtractor,
	matcher *catalog.Matcher,
	assembler *order.Assembler,
	orders order.Creator,
	store *Store,
	m *metrics.Metrics,
	log *logger.Logger,
) *Service {
	return &Service{
		engine:     engine,
		extractor:  extractor,
		candidates: candidates,
		matcher:    matcher,
		assembler:  assembler,
		orders:     orders,
		store:      store,
		metrics:    m,
		logger:     log.WithComponent("session"),
	}
}

// StartScan validates the image, opens a session and runs the pipeline in
// the background. The caller polls Get for progress and state.
func (s *Service) StartScan(image []byte, filename string) (Snapshot, error) {
	if err := recognition.ValidateImage(image); err != nil {
		return Snapshot{}, err
	}

	// The pipeline outlives the upload request; Close cancels this context
	// and in-flight recognition and search calls stop with it.
	ctx, cancel := context.WithCancel(context.Background())
	sess := newSession(cancel)
	s.store.Put(sess)

	if s.metrics != nil {
		s.metrics.ScansStarted.Inc()
	}
	s.logger.Info("scan started", "session_id", sess.ID.String(), "filename", filename)

	go s.runPipeline(ctx, sess, image, filename)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshot(), nil
}

func (s *Service) runPipeline(ctx context.Context, sess *Session, image []byte, filename string) {
	started := time.Now()

	text, err := s.engine.Recognize(ctx, image, filename, sess.setProgress)
	s.observeExternal("recognition", started, err)
	if err != nil {
		if ctx.Err() != nil {
			// Session was closed mid-scan; everything is discarded.
			s.logger.Debug("scan cancelled", "session_id", sess.ID.String())
			return
		}
		s.failScan(sess, "acquisition", errors.NewAcquisition(err))
		return
	}

	doc := s.extractor.Extract(text)
	names := s.candidates.Extract(text)

	queries := make([]catalog.Query, len(doc.MedicineEntries))
	for i, entry := range doc.MedicineEntries {
		queries[i] = catalog.Query{Name: entry.Name, Strength: entry.Strength}
	}
	matchStarted := time.Now()
	matches := s.matcher.MatchAll(ctx, queries)
	if ctx.Err() != nil {
		return
	}

	form := reconcile.NewFromDocument(doc, matches)

	// Fallback pass: harvested candidate names the stricter extractor never
	// produced still get a shot at the catalog; successful matches become
	// extra extracted rows.
	fallback := fallbackQueries(doc, names)
	fallbackMatches := s.matcher.MatchAll(ctx, fallback)
	if ctx.Err() != nil {
		return
	}
	for _, fm := range fallbackMatches {
		form.AppendMatched(fm)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.Document = &doc
	sess.Matches = matches
	sess.Form = form
	sess.State = model.SessionStateReconciling
	sess.Progress = 100
	if len(form.Items) == 0 {
		sess.Warning = "no medicines detected; try rescanning or add items manually"
		if s.metrics != nil {
			s.metrics.EmptyExtractions.Inc()
		}
	}

	if s.metrics != nil {
		s.metrics.ScanDuration.Observe(time.Since(started).Seconds())
		s.metrics.MatchLatency.Observe(time.Since(matchStarted).Seconds())
		s.metrics.ExtractedEntries.Observe(float64(len(doc.MedicineEntries)))
		for _, m := range append(append([]model.MatchResult(nil), matches...), fallbackMatches...) {
			outcome := "miss"
			if m.Matched() {
				outcome = "hit"
			}
			s.metrics.MatchAttempts.WithLabelValues(outcome).Inc()
		}
	}
	s.logger.Info("scan reconciled", "session_id", sess.ID.String(),
		"entries", len(doc.MedicineEntries), "items", len(form.Items))
}

func (s *Service) observeExternal(service string, started time.Time, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	s.metrics.ExternalCalls.WithLabelValues(service, outcome).Inc()
	s.metrics.ExternalLatency.WithLabelValues(service).Observe(time.Since(started).Seconds())
}

func (s *Service) failScan(sess *Session, stage string, appErr *errors.AppError) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.State = model.SessionStateFailed
	sess.LastError = appErr.Error()
	if s.metrics != nil {
		s.metrics.ScansFailed.WithLabelValues(stage).Inc()
	}
	s.logger.Error(appErr, "scan failed", "session_id", sess.ID.String(), "stage", stage)
}

// Get returns the current snapshot of a session.
func (s *Service) Get(id uuid.UUID) (Snapshot, error) {
	sess, ok := s.store.Get(id)
	if !ok {
		return Snapshot{}, errors.NewNotFound("scan session", nil)
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshot(), nil
}

// AddItem appends a manually searched catalog item to the form.
func (s *Service) AddItem(id uuid.UUID, item model.CatalogItem) (Snapshot, error) {
	return s.mutate(id, func(form *reconcile.State) error {
		return form.AddFromCatalogSearch(item)
	})
}

// UpdateQuantity changes a line item's quantity; values below 1 are
// rejected and the prior value stays.
func (s *Service) UpdateQuantity(id uuid.UUID, index, quantity int) (Snapshot, error) {
	return s.mutate(id, func(form *reconcile.State) error {
		return form.UpdateQuantity(index, quantity)
	})
}

// UpdateField sets a free-text instruction field on a line item.
func (s *Service) UpdateField(id uuid.UUID, index int, field, value string) (Snapshot, error) {
	return s.mutate(id, func(form *reconcile.State) error {
		return form.UpdateField(index, field, value)
	})
}

// RemoveItem deletes a line item.
func (s *Service) RemoveItem(id uuid.UUID, index int) (Snapshot, error) {
	return s.mutate(id, func(form *reconcile.State) error {
		return form.Remove(index)
	})
}

// UpdatePatient edits the form's patient and doctor names.
func (s *Service) UpdatePatient(id uuid.UUID, patientName, doctorName *string) (Snapshot, error) {
	return s.mutate(id, func(form *reconcile.State) error {
		if patientName != nil {
			form.PatientName = *patientName
		}
		if doctorName != nil {
			form.DoctorName = *doctorName
		}
		return nil
	})
}

func (s *Service) mutate(id uuid.UUID, fn func(form *reconcile.State) error) (Snapshot, error) {
	sess, ok := s.store.Get(id)
	if !ok {
		return Snapshot{}, errors.NewNotFound("scan session", nil)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.State != model.SessionStateReconciling {
		return Snapshot{}, errors.NewBadRequest("scan session is not editable", nil)
	}
	if err := fn(sess.Form); err != nil {
		return Snapshot{}, err
	}
	return sess.snapshot(), nil
}

// Submit validates the form and sends the assembled order. Validation
// errors and order service failures both leave the session editable; retry
// is always user initiated.
func (s *Service) Submit(ctx context.Context, id uuid.UUID) (*order.Confirmation, error) {
	sess, ok := s.store.Get(id)
	if !ok {
		return nil, errors.NewNotFound("scan session", nil)
	}

	sess.mu.Lock()
	if sess.State != model.SessionStateReconciling {
		sess.mu.Unlock()
		return nil, errors.NewBadRequest("scan session is not ready for submission", nil)
	}
	if fieldErrs := sess.Form.Validate(); len(fieldErrs) > 0 {
		sess.mu.Unlock()
		return nil, errors.NewValidation(fieldErrs)
	}
	sess.State = model.SessionStateSubmitting
	orderReq := s.assembler.Build(sess.Form)
	sess.mu.Unlock()

	submitStarted := time.Now()
	confirmation, err := s.orders.Create(ctx, orderReq)
	s.observeExternal("order-service", submitStarted, err)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err != nil {
		sess.State = model.SessionStateReconciling
		sess.LastError = err.Error()
		if s.metrics != nil {
			s.metrics.OrdersSubmitted.WithLabelValues("failed").Inc()
		}
		return nil, err
	}

	sess.State = model.SessionStateCompleted
	sess.Form = nil
	sess.LastError = ""
	if s.metrics != nil {
		s.metrics.OrdersSubmitted.WithLabelValues("created").Inc()
		s.metrics.ScansCompleted.Inc()
	}
	s.logger.Info("order submitted", "session_id", sess.ID.String(), "order_id", confirmation.OrderID)
	return confirmation, nil
}

// Close discards a session from any state and cancels in-flight work.
func (s *Service) Close(id uuid.UUID) {
	sess, ok := s.store.Get(id)
	if !ok {
		return
	}
	sess.mu.Lock()
	if sess.cancel != nil {
		sess.cancel()
	}
	sess.mu.Unlock()
	s.store.Delete(id)
	s.logger.Info("scan session closed", "session_id", id.String())
}

// fallbackQueries keeps candidate names whose normalized form is not already
// covered by a structured medicine entry.
func fallbackQueries(doc model.PrescriptionDocument, names []string) []catalog.Query {
	known := make(map[string]struct{}, len(doc.MedicineEntries))
	for _, entry := range doc.MedicineEntries {
		known[normalizeName(entry.Name)] = struct{}{}
	}

	var queries []catalog.Query
	for _, name := range names {
		if _, dup := known[normalizeName(name)]; dup {
			continue
		}
		queries = append(queries, catalog.Query{Name: name})
	}
	return queries
}

func normalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
