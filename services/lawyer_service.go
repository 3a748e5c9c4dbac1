package services

import (
	"context"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"lawsuit_tracker_go/apperrors"
	"lawsuit_tracker_go/models"
	"lawsuit_tracker_go/repository"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[0-9]{7,15}$`)
)

// NormalizeSpecialization title-cases each word. Any run of whitespace is one separator.
// Example: "derecho   LABORAL" -> "Derecho Laboral"
func NormalizeSpecialization(specialization string) string {
	words := strings.Fields(specialization)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

// LawyerRules holds the lawyer-specific validation and lifecycle rules
type LawyerRules struct {
	NoopHooks[models.Lawyer]
	lawyers  *repository.Repository[models.Lawyer]
	lawsuits *repository.Repository[models.Lawsuit]
}

// BeforeCreate re-checks email and phone shape and normalizes the specialization
func (r *LawyerRules) BeforeCreate(ctx context.Context, lawyer *models.Lawyer) error {
	var fields []apperrors.FieldError
	if !emailPattern.MatchString(lawyer.Email) {
		fields = append(fields, apperrors.FieldError{Field: "email", Message: "Invalid email format", Value: lawyer.Email})
	}
	if !phonePattern.MatchString(lawyer.Phone) {
		fields = append(fields, apperrors.FieldError{Field: "phone", Message: "Phone must contain only numbers and be between 7-15 digits", Value: lawyer.Phone})
	}
	if lawyer.Status != "" && !models.IsValidLawyerStatus(lawyer.Status) {
		fields = append(fields, apperrors.FieldError{Field: "status", Message: "Status must be active or inactive", Value: lawyer.Status})
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError("", fields...)
	}

	lawyer.Specialization = NormalizeSpecialization(lawyer.Specialization)
	return nil
}

// BeforeUpdate checks the fields present in patch and blocks deactivation
// while the lawyer still has assigned lawsuits
func (r *LawyerRules) BeforeUpdate(ctx context.Context, id string, patch repository.Patch) error {
	var fields []apperrors.FieldError
	if v, ok := patch["email"]; ok {
		if s, isString := v.(string); !isString || !emailPattern.MatchString(s) {
			fields = append(fields, apperrors.FieldError{Field: "email", Message: "Invalid email format", Value: v})
		}
	}
	if v, ok := patch["phone"]; ok {
		if s, isString := v.(string); !isString || !phonePattern.MatchString(s) {
			fields = append(fields, apperrors.FieldError{Field: "phone", Message: "Phone must contain only numbers and be between 7-15 digits", Value: v})
		}
	}
	status, hasStatus := patch["status"]
	if hasStatus {
		if s, isString := status.(string); !isString || !models.IsValidLawyerStatus(s) {
			fields = append(fields, apperrors.FieldError{Field: "status", Message: "Status must be active or inactive", Value: status})
		}
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError("", fields...)
	}

	if v, ok := patch["specialization"].(string); ok {
		patch["specialization"] = NormalizeSpecialization(v)
	}

	if _, err := r.lawyers.FindByID(ctx, id); err != nil {
		return err
	}

	if hasStatus && status == models.LawyerStatusInactive {
		active, err := activeCaseCount(ctx, r.lawsuits, id)
		if err != nil {
			return err
		}
		if active > 0 {
			return apperrors.CannotDeactivateLawyerWithCases(active)
		}
	}
	return nil
}

// BeforeDelete keeps the case history: a lawyer with any lawsuit cannot be removed
func (r *LawyerRules) BeforeDelete(ctx context.Context, id string) error {
	if _, err := r.lawyers.FindByID(ctx, id); err != nil {
		return err
	}

	total, err := r.lawsuits.Count(ctx, map[string]any{"lawyer_id": id})
	if err != nil {
		return err
	}
	if total > 0 {
		return apperrors.CannotDeleteLawyerWithCases(int(total))
	}
	return nil
}

// UpdateGuards keeps a deactivation from landing after a concurrent assignment
func (r *LawyerRules) UpdateGuards(ctx context.Context, id string, patch repository.Patch) []repository.Guard {
	if patch["status"] != models.LawyerStatusInactive {
		return nil
	}
	assigned := r.lawsuits.Query(ctx).Select("1").
		Where("lawsuits.lawyer_id = ? AND lawsuits.status = ?", id, models.LawsuitStatusAssigned)
	return []repository.Guard{{Query: "NOT EXISTS (?)", Args: []any{assigned}}}
}

// DeleteGuards keeps a delete from landing after a concurrent assignment
func (r *LawyerRules) DeleteGuards(ctx context.Context, id string) []repository.Guard {
	cases := r.lawsuits.Query(ctx).Select("1").Where("lawsuits.lawyer_id = ?", id)
	return []repository.Guard{{Query: "NOT EXISTS (?)", Args: []any{cases}}}
}

// ProcessListOptions validates the status filter and orders by name when no order is given
func (r *LawyerRules) ProcessListOptions(ctx context.Context, opts repository.ListOptions) (repository.ListOptions, error) {
	if v, ok := opts.Filter["status"]; ok {
		if s, isString := v.(string); !isString || !models.IsValidLawyerStatus(s) {
			return opts, apperrors.FieldInvalid("status", "Status must be active or inactive", v)
		}
	}
	if len(opts.Order) == 0 {
		opts.Order = []repository.Order{{Field: "name"}, {Field: "id"}}
	}
	return opts, nil
}

// LawsuitSummary is the slice of a lawsuit shown next to its lawyer
type LawsuitSummary struct {
	ID         string    `json:"id"`
	CaseNumber string    `json:"case_number"`
	Status     string    `json:"status"`
	CaseType   string    `json:"case_type"`
	CreatedAt  time.Time `json:"created_at"`
}

// CaseStats breaks a lawyer's lawsuits down by status and case type
type CaseStats struct {
	Total    int            `json:"total"`
	Pending  int            `json:"pending"`
	Assigned int            `json:"assigned"`
	Resolved int            `json:"resolved"`
	ByType   map[string]int `json:"byType"`
}

// LawyerStats is a lawyer with its case breakdown
type LawyerStats struct {
	Lawyer   *models.Lawyer   `json:"lawyer"`
	Stats    CaseStats        `json:"stats"`
	Lawsuits []LawsuitSummary `json:"lawsuits"`
}

// LawyerWorkload is one row of the workload report
type LawyerWorkload struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
	Status         string `json:"status"`
	ActiveCases    int    `json:"activeCases"`
	ResolvedCases  int    `json:"resolvedCases"`
	TotalCases     int    `json:"totalCases"`
}

// WorkloadSummary aggregates the workload report
type WorkloadSummary struct {
	TotalLawyers       int             `json:"totalLawyers"`
	ActiveLawyers      int             `json:"activeLawyers"`
	AverageActiveCases float64         `json:"averageActiveCases"`
	MostBusyLawyer     *LawyerWorkload `json:"mostBusyLawyer"`
}

// WorkloadReport lists every lawyer by descending workload
type WorkloadReport struct {
	Lawyers []LawyerWorkload `json:"lawyers"`
	Summary WorkloadSummary  `json:"summary"`
}

// LawyerService is the generic service plus lawyer reporting
type LawyerService struct {
	*Service[models.Lawyer]
	lawyers  *repository.Repository[models.Lawyer]
	lawsuits *repository.Repository[models.Lawsuit]
	log      *slog.Logger
}

// NewLawyerService wires the lawyer rules over both repositories
func NewLawyerService(lawyers *repository.Repository[models.Lawyer], lawsuits *repository.Repository[models.Lawsuit], log *slog.Logger) *LawyerService {
	rules := &LawyerRules{lawyers: lawyers, lawsuits: lawsuits}
	return &LawyerService{
		Service:  NewService[models.Lawyer](lawyers, rules, log),
		lawyers:  lawyers,
		lawsuits: lawsuits,
		log:      log,
	}
}

// GetLawyerWithStats returns the lawyer, its lawsuits and their breakdown
func (s *LawyerService) GetLawyerWithStats(ctx context.Context, id string) (*LawyerStats, error) {
	s.log.InfoContext(ctx, "Fetching lawyer with statistics", "id", id)

	lawyer, err := s.lawyers.FindByID(ctx, id)
	if err != nil {
		s.log.ErrorContext(ctx, "Error fetching lawyer statistics", "id", id, "error", err.Error())
		return nil, err
	}

	page, err := s.lawsuits.FindAll(ctx, repository.ListOptions{
		Filter:      map[string]any{"lawyer_id": id},
		Order:       []repository.Order{{Field: "created_at", Desc: true}, {Field: "id"}},
		Unpaginated: true,
	})
	if err != nil {
		s.log.ErrorContext(ctx, "Error fetching lawyer statistics", "id", id, "error", err.Error())
		return nil, err
	}

	stats := CaseStats{ByType: make(map[string]int, len(models.CaseTypes()))}
	for _, ct := range models.CaseTypes() {
		stats.ByType[ct] = 0
	}
	summaries := make([]LawsuitSummary, 0, len(page.Items))
	for _, l := range page.Items {
		stats.Total++
		switch l.Status {
		case models.LawsuitStatusPending:
			stats.Pending++
		case models.LawsuitStatusAssigned:
			stats.Assigned++
		case models.LawsuitStatusResolved:
			stats.Resolved++
		}
		stats.ByType[l.CaseType]++
		summaries = append(summaries, LawsuitSummary{
			ID:         l.ID,
			CaseNumber: l.CaseNumber,
			Status:     l.Status,
			CaseType:   l.CaseType,
			CreatedAt:  l.CreatedAt,
		})
	}

	return &LawyerStats{Lawyer: lawyer, Stats: stats, Lawsuits: summaries}, nil
}

// GetLawyerWorkload ranks every lawyer by assigned cases, highest first.
// Ties keep the fetch order (created_at, id).
func (s *LawyerService) GetLawyerWorkload(ctx context.Context) (*WorkloadReport, error) {
	s.log.InfoContext(ctx, "Calculating lawyer workload statistics")

	page, err := s.lawyers.FindAll(ctx, repository.ListOptions{
		Order:       []repository.Order{{Field: "created_at"}, {Field: "id"}},
		Unpaginated: true,
	})
	if err != nil {
		s.log.ErrorContext(ctx, "Error calculating lawyer workload", "error", err.Error())
		return nil, err
	}

	tallies, err := countCasesByLawyer(ctx, s.lawsuits, nil)
	if err != nil {
		s.log.ErrorContext(ctx, "Error calculating lawyer workload", "error", err.Error())
		return nil, err
	}

	rows := make([]LawyerWorkload, 0, len(page.Items))
	activeLawyers, activeSum := 0, 0
	for _, l := range page.Items {
		t := tallies[l.ID]
		rows = append(rows, LawyerWorkload{
			ID:             l.ID,
			Name:           l.Name,
			Specialization: l.Specialization,
			Status:         l.Status,
			ActiveCases:    t.Assigned,
			ResolvedCases:  t.Resolved,
			TotalCases:     t.Total(),
		})
		if l.IsActive() {
			activeLawyers++
		}
		activeSum += t.Assigned
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].ActiveCases > rows[j].ActiveCases
	})

	summary := WorkloadSummary{TotalLawyers: len(rows), ActiveLawyers: activeLawyers}
	if len(rows) > 0 {
		summary.AverageActiveCases = float64(activeSum) / float64(len(rows))
		busiest := rows[0]
		summary.MostBusyLawyer = &busiest
	}

	return &WorkloadReport{Lawyers: rows, Summary: summary}, nil
}

// GetActiveLawyers lists lawyers that can take assignments
func (s *LawyerService) GetActiveLawyers(ctx context.Context, opts repository.ListOptions) (*repository.Page[models.Lawyer], error) {
	opts.Filter = withFilter(opts.Filter, "status", models.LawyerStatusActive)
	return s.GetAll(ctx, opts)
}

// GetLawyersBySpecialization lists lawyers whose normalized specialization matches
func (s *LawyerService) GetLawyersBySpecialization(ctx context.Context, specialization string, opts repository.ListOptions) (*repository.Page[models.Lawyer], error) {
	if strings.TrimSpace(specialization) == "" {
		err := apperrors.FieldInvalid("specialization", "Specialization is required", specialization)
		s.log.ErrorContext(ctx, "Error fetching lawyers by specialization", "error", err.Error())
		return nil, err
	}
	opts.Filter = withFilter(opts.Filter, "specialization", NormalizeSpecialization(specialization))
	return s.GetAll(ctx, opts)
}

// GetLawyerLawsuits lists a lawyer's lawsuits, newest first
func (s *LawyerService) GetLawyerLawsuits(ctx context.Context, id string, opts repository.ListOptions) (*repository.Page[models.Lawsuit], error) {
	s.log.InfoContext(ctx, "Fetching lawyer lawsuits", "id", id)

	if _, err := s.lawyers.FindByID(ctx, id); err != nil {
		s.log.ErrorContext(ctx, "Error fetching lawyer lawsuits", "id", id, "error", err.Error())
		return nil, err
	}

	opts.Filter = withFilter(opts.Filter, "lawyer_id", id)
	if len(opts.Order) == 0 {
		opts.Order = []repository.Order{{Field: "created_at", Desc: true}, {Field: "id"}}
	}
	page, err := s.lawsuits.FindAll(ctx, opts)
	if err != nil {
		s.log.ErrorContext(ctx, "Error fetching lawyer lawsuits", "id", id, "error", err.Error())
		return nil, err
	}
	return page, nil
}

// withFilter copies filter and sets key, leaving the caller's map untouched
func withFilter(filter map[string]any, key string, value any) map[string]any {
	merged := make(map[string]any, len(filter)+1)
	for k, v := range filter {
		merged[k] = v
	}
	merged[key] = value
	return merged
}
