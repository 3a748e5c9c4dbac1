package services

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strings"

	"lawsuit_tracker_go/apperrors"
	"lawsuit_tracker_go/config"
	"lawsuit_tracker_go/models"
	"lawsuit_tracker_go/repository"

	"gorm.io/gorm"
)

// errAssignmentRaced means the guarded update matched no row: the lawsuit,
// the lawyer's status or its workload changed after the checks ran
var errAssignmentRaced = errors.New("assignment preconditions changed")

var caseNumberPattern = regexp.MustCompile(`^[A-Z]{2,4}-\d{4}-\d{3,4}$`)

// RecommendationLimit is how many candidates RecommendLawyer returns
const RecommendationLimit = 3

// lawyerSummaryColumns is the lawyer projection attached to lawsuits
var lawyerSummaryColumns = []string{"id", "name", "specialization"}

// AssignmentPolicy holds the workload thresholds used when assigning
type AssignmentPolicy struct {
	MaxActiveCases        int
	HighWorkloadThreshold int
}

// DefaultAssignmentPolicy caps a lawyer at 10 assigned cases and warns from 7
func DefaultAssignmentPolicy() AssignmentPolicy {
	return AssignmentPolicy{
		MaxActiveCases:        config.DefaultMaxActiveCases,
		HighWorkloadThreshold: config.DefaultHighWorkloadThreshold,
	}
}

// PolicyFromConfig reads the thresholds from cfg
func PolicyFromConfig(cfg *config.Config) AssignmentPolicy {
	return AssignmentPolicy{
		MaxActiveCases:        cfg.MaxActiveCases,
		HighWorkloadThreshold: cfg.HighWorkloadThreshold,
	}
}

// ExpectedSpecialization maps a case type to the specialization that handles it
func ExpectedSpecialization(caseType string) string {
	switch caseType {
	case models.CaseTypeCivil:
		return "Civil"
	case models.CaseTypeCriminal:
		return "Penal"
	case models.CaseTypeLabor:
		return "Laboral"
	case models.CaseTypeCommercial:
		return "Comercial"
	default:
		return "General"
	}
}

func sameParty(plaintiff, defendant string) bool {
	return strings.ToLower(strings.TrimSpace(plaintiff)) == strings.ToLower(strings.TrimSpace(defendant))
}

// LawsuitRules holds the lawsuit validation rules
type LawsuitRules struct {
	NoopHooks[models.Lawsuit]
	lawsuits *repository.Repository[models.Lawsuit]
}

// BeforeCreate checks the case number and parties. New lawsuits always start
// pending; assignment happens through AssignLawyer.
func (r *LawsuitRules) BeforeCreate(ctx context.Context, lawsuit *models.Lawsuit) error {
	if !caseNumberPattern.MatchString(lawsuit.CaseNumber) {
		return apperrors.InvalidCaseNumberFormat(lawsuit.CaseNumber)
	}
	if sameParty(lawsuit.Plaintiff, lawsuit.Defendant) {
		return apperrors.SamePartyInLawsuit()
	}
	if !models.IsValidCaseType(lawsuit.CaseType) {
		return apperrors.FieldInvalid("case_type", "Case type must be one of: "+strings.Join(models.CaseTypes(), ", "), lawsuit.CaseType)
	}
	if lawsuit.LawyerID != nil {
		return apperrors.DirectAssignment("lawyer_id")
	}
	switch lawsuit.Status {
	case "", models.LawsuitStatusPending:
	case models.LawsuitStatusAssigned:
		return apperrors.DirectAssignment("status")
	default:
		return apperrors.FieldInvalid("status", "New lawsuits must be pending", lawsuit.Status)
	}
	return nil
}

// BeforeUpdate applies the create checks to the patched fields. Status can
// only move back to pending, which releases the lawyer.
func (r *LawsuitRules) BeforeUpdate(ctx context.Context, id string, patch repository.Patch) error {
	if _, ok := patch["lawyer_id"]; ok {
		return apperrors.DirectAssignment("lawyer_id")
	}

	if v, ok := patch["case_number"]; ok {
		s, _ := v.(string)
		if !caseNumberPattern.MatchString(s) {
			return apperrors.InvalidCaseNumberFormat(s)
		}
	}
	if v, ok := patch["case_type"]; ok {
		if s, isString := v.(string); !isString || !models.IsValidCaseType(s) {
			return apperrors.FieldInvalid("case_type", "Case type must be one of: "+strings.Join(models.CaseTypes(), ", "), v)
		}
	}
	if v, ok := patch["status"]; ok {
		s, _ := v.(string)
		switch {
		case s == models.LawsuitStatusAssigned:
			return apperrors.DirectAssignment("status")
		case s == models.LawsuitStatusResolved:
			return apperrors.NewBusinessRuleError(apperrors.RuleResolution,
				"Lawsuits are resolved through the resolve operation",
				map[string]any{"field": "status"})
		case !models.IsValidLawsuitStatus(s):
			return apperrors.FieldInvalid("status", "Invalid status. Must be one of: "+strings.Join(models.LawsuitStatuses(), ", "), v)
		}
	}

	current, err := r.lawsuits.FindByID(ctx, id)
	if err != nil {
		return err
	}

	_, hasPlaintiff := patch["plaintiff"]
	_, hasDefendant := patch["defendant"]
	if hasPlaintiff || hasDefendant {
		plaintiff, defendant := current.Plaintiff, current.Defendant
		if s, ok := patch["plaintiff"].(string); ok {
			plaintiff = s
		}
		if s, ok := patch["defendant"].(string); ok {
			defendant = s
		}
		if sameParty(plaintiff, defendant) {
			return apperrors.SamePartyInLawsuit()
		}
	}

	if patch["status"] == models.LawsuitStatusPending {
		patch["lawyer_id"] = nil
	}
	return nil
}

// ProcessListOptions validates status and case type filters and orders newest first
func (r *LawsuitRules) ProcessListOptions(ctx context.Context, opts repository.ListOptions) (repository.ListOptions, error) {
	if v, ok := opts.Filter["status"]; ok {
		if s, isString := v.(string); !isString || !models.IsValidLawsuitStatus(s) {
			return opts, apperrors.FieldInvalid("status", "Invalid status. Must be one of: "+strings.Join(models.LawsuitStatuses(), ", "), v)
		}
	}
	if v, ok := opts.Filter["case_type"]; ok {
		if s, isString := v.(string); !isString || !models.IsValidCaseType(s) {
			return opts, apperrors.FieldInvalid("case_type", "Case type must be one of: "+strings.Join(models.CaseTypes(), ", "), v)
		}
	}
	if len(opts.Order) == 0 {
		opts.Order = []repository.Order{{Field: "created_at", Desc: true}, {Field: "id"}}
	}
	return opts, nil
}

// Recommendation is one scored candidate for a lawsuit
type Recommendation struct {
	Lawyer      models.Lawyer `json:"lawyer"`
	Score       int           `json:"score"`
	ActiveCases int           `json:"activeCases"`
	MatchReason string        `json:"matchReason"`
}

// LawsuitRef identifies the lawsuit a recommendation is for
type LawsuitRef struct {
	ID         string `json:"id"`
	CaseNumber string `json:"case_number"`
	CaseType   string `json:"case_type"`
}

// RecommendationResult lists the best candidates, highest score first
type RecommendationResult struct {
	Lawsuit         LawsuitRef       `json:"lawsuit"`
	Recommendations []Recommendation `json:"recommendations"`
}

// AnalyticsMetrics are percentages rounded to two decimals
type AnalyticsMetrics struct {
	AssignmentRate float64 `json:"assignmentRate"`
	ResolutionRate float64 `json:"resolutionRate"`
	PendingRate    float64 `json:"pendingPercentage"`
}

// LawsuitAnalytics summarizes every lawsuit in the system
type LawsuitAnalytics struct {
	Total          int              `json:"total"`
	ByStatus       map[string]int   `json:"byStatus"`
	ByType         map[string]int   `json:"byType"`
	Metrics        AnalyticsMetrics `json:"metrics"`
	RecentLawsuits []models.Lawsuit `json:"recentLawsuits"`
}

// LawsuitService is the generic service plus assignment and analytics
type LawsuitService struct {
	*Service[models.Lawsuit]
	lawsuits *repository.Repository[models.Lawsuit]
	lawyers  *repository.Repository[models.Lawyer]
	policy   AssignmentPolicy
	log      *slog.Logger
}

// NewLawsuitService wires the lawsuit rules over both repositories
func NewLawsuitService(lawsuits *repository.Repository[models.Lawsuit], lawyers *repository.Repository[models.Lawyer], policy AssignmentPolicy, log *slog.Logger) *LawsuitService {
	if policy.MaxActiveCases <= 0 {
		policy = DefaultAssignmentPolicy()
	}
	rules := &LawsuitRules{lawsuits: lawsuits}
	return &LawsuitService{
		Service:  NewService[models.Lawsuit](lawsuits, rules, log),
		lawsuits: lawsuits,
		lawyers:  lawyers,
		policy:   policy,
		log:      log,
	}
}

// Policy returns the thresholds in effect
func (s *LawsuitService) Policy() AssignmentPolicy {
	return s.policy
}

// AssignLawyer gives the lawsuit to lawyerID and marks it assigned.
// The workload cap and the lawyer's status are rechecked inside the write,
// so two concurrent assignments cannot push a lawyer past the cap.
func (s *LawsuitService) AssignLawyer(ctx context.Context, lawsuitID, lawyerID string) (*models.Lawsuit, error) {
	log := s.log.With("lawsuitId", lawsuitID, "lawyerId", lawyerID)
	log.InfoContext(ctx, "Assigning lawyer to lawsuit")

	lawsuit, err := s.assign(ctx, log, lawsuitID, lawyerID)
	if err != nil {
		log.ErrorContext(ctx, "Error assigning lawyer", "error", err.Error())
		return nil, err
	}

	log.InfoContext(ctx, "Lawyer assigned successfully")
	return lawsuit, nil
}

func (s *LawsuitService) assign(ctx context.Context, log *slog.Logger, lawsuitID, lawyerID string) (*models.Lawsuit, error) {
	lawsuit, err := s.lawsuits.FindByID(ctx, lawsuitID)
	if err != nil {
		return nil, err
	}
	lawyer, err := s.lawyers.FindByID(ctx, lawyerID)
	if err != nil {
		return nil, err
	}
	if !lawyer.IsActive() {
		return nil, apperrors.InactiveLawyer(lawyerID)
	}

	active, err := s.otherAssignedCases(ctx, lawyerID, lawsuitID)
	if err != nil {
		return nil, err
	}
	if active >= s.policy.MaxActiveCases {
		return nil, apperrors.MaxWorkloadExceeded(active, s.policy.MaxActiveCases)
	}
	if active >= s.policy.HighWorkloadThreshold {
		log.WarnContext(ctx, "High workload assignment",
			"activeCases", active,
			"message", "Lawyer has high workload")
	}

	if expected := ExpectedSpecialization(lawsuit.CaseType); expected != lawyer.Specialization {
		log.WarnContext(ctx, "Specialization mismatch",
			"caseType", lawsuit.CaseType,
			"expectedSpecialization", expected,
			"lawyerSpecialization", lawyer.Specialization)
	}

	err = s.lawsuits.Transaction(ctx, func(tx *gorm.DB) error {
		assignedElsewhere := tx.Model(&models.Lawsuit{}).
			Select("COUNT(*)").
			Where("lawyer_id = ? AND status = ? AND id <> ?", lawyerID, models.LawsuitStatusAssigned, lawsuitID)
		lawyerActive := tx.Model(&models.Lawyer{}).
			Select("1").
			Where("id = ? AND status = ?", lawyerID, models.LawyerStatusActive)

		res := tx.Model(&models.Lawsuit{}).
			Where("id = ?", lawsuitID).
			Where("(?) < ?", assignedElsewhere, s.policy.MaxActiveCases).
			Where("EXISTS (?)", lawyerActive).
			Updates(map[string]any{
				"lawyer_id": lawyerID,
				"status":    models.LawsuitStatusAssigned,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errAssignmentRaced
		}
		return nil
	})
	if errors.Is(err, errAssignmentRaced) {
		return nil, s.assignmentConflict(ctx, lawsuitID, lawyerID)
	}
	if err != nil {
		return nil, s.lawsuits.Translate(err)
	}

	return s.lawsuits.FindByID(ctx, lawsuitID, repository.Preload{Association: "Lawyer", Columns: lawyerSummaryColumns})
}

// assignmentConflict explains why the guarded update matched no row
func (s *LawsuitService) assignmentConflict(ctx context.Context, lawsuitID, lawyerID string) error {
	if _, err := s.lawsuits.FindByID(ctx, lawsuitID); err != nil {
		return err
	}
	lawyer, err := s.lawyers.FindByID(ctx, lawyerID)
	if err != nil {
		return err
	}
	if !lawyer.IsActive() {
		return apperrors.InactiveLawyer(lawyerID)
	}
	active, err := s.otherAssignedCases(ctx, lawyerID, lawsuitID)
	if err != nil {
		return err
	}
	return apperrors.MaxWorkloadExceeded(active, s.policy.MaxActiveCases)
}

// otherAssignedCases counts the lawyer's assigned lawsuits other than lawsuitID
func (s *LawsuitService) otherAssignedCases(ctx context.Context, lawyerID, lawsuitID string) (int, error) {
	var n int64
	err := s.lawsuits.Query(ctx).
		Where("lawyer_id = ? AND status = ? AND id <> ?", lawyerID, models.LawsuitStatusAssigned, lawsuitID).
		Count(&n).Error
	if err != nil {
		return 0, s.lawsuits.Translate(err)
	}
	return int(n), nil
}

// UnassignLawyer returns a lawsuit to the pending queue. Resolved lawsuits keep their lawyer.
func (s *LawsuitService) UnassignLawyer(ctx context.Context, id string) (*models.Lawsuit, error) {
	s.log.InfoContext(ctx, "Unassigning lawyer from lawsuit", "lawsuitId", id)

	current, err := s.lawsuits.FindByID(ctx, id)
	if err == nil && current.Status == models.LawsuitStatusResolved {
		err = apperrors.NewBusinessRuleError(apperrors.RuleResolution,
			"Resolved lawsuits cannot be unassigned",
			map[string]any{"currentStatus": current.Status})
	}
	if err != nil {
		s.log.ErrorContext(ctx, "Error unassigning lawyer", "lawsuitId", id, "error", err.Error())
		return nil, err
	}

	lawsuit, err := s.lawsuits.Update(ctx, id, repository.Patch{
		"lawyer_id": nil,
		"status":    models.LawsuitStatusPending,
	})
	if err != nil {
		s.log.ErrorContext(ctx, "Error unassigning lawyer", "lawsuitId", id, "error", err.Error())
		return nil, err
	}

	s.log.InfoContext(ctx, "Lawyer unassigned successfully", "lawsuitId", id)
	return lawsuit, nil
}

// ResolveLawsuit closes an assigned lawsuit. The lawyer stays on record but
// the case no longer counts toward their workload.
func (s *LawsuitService) ResolveLawsuit(ctx context.Context, id string) (*models.Lawsuit, error) {
	s.log.InfoContext(ctx, "Resolving lawsuit", "lawsuitId", id)

	res := s.lawsuits.Query(ctx).
		Where("id = ? AND status = ?", id, models.LawsuitStatusAssigned).
		Update("status", models.LawsuitStatusResolved)
	if res.Error != nil {
		err := s.lawsuits.Translate(res.Error)
		s.log.ErrorContext(ctx, "Error resolving lawsuit", "lawsuitId", id, "error", err.Error())
		return nil, err
	}
	if res.RowsAffected == 0 {
		current, err := s.lawsuits.FindByID(ctx, id)
		if err == nil {
			err = apperrors.NewBusinessRuleError(apperrors.RuleResolution,
				"Only assigned lawsuits can be resolved",
				map[string]any{"currentStatus": current.Status})
		}
		s.log.ErrorContext(ctx, "Error resolving lawsuit", "lawsuitId", id, "error", err.Error())
		return nil, err
	}

	s.log.InfoContext(ctx, "Lawsuit resolved successfully", "lawsuitId", id)
	return s.lawsuits.FindByID(ctx, id, repository.Preload{Association: "Lawyer", Columns: lawyerSummaryColumns})
}

// RecommendLawyer ranks active lawyers for the lawsuit by specialization
// match and spare capacity
func (s *LawsuitService) RecommendLawyer(ctx context.Context, lawsuitID string) (*RecommendationResult, error) {
	s.log.InfoContext(ctx, "Recommending lawyer for lawsuit", "lawsuitId", lawsuitID)

	result, err := s.recommend(ctx, lawsuitID)
	if err != nil {
		s.log.ErrorContext(ctx, "Error recommending lawyer", "lawsuitId", lawsuitID, "error", err.Error())
		return nil, err
	}
	return result, nil
}

func (s *LawsuitService) recommend(ctx context.Context, lawsuitID string) (*RecommendationResult, error) {
	lawsuit, err := s.lawsuits.FindByID(ctx, lawsuitID)
	if err != nil {
		return nil, err
	}

	page, err := s.lawyers.FindAll(ctx, repository.ListOptions{
		Filter:      map[string]any{"status": models.LawyerStatusActive},
		Order:       []repository.Order{{Field: "created_at"}, {Field: "id"}},
		Unpaginated: true,
	})
	if err != nil {
		return nil, err
	}
	if len(page.Items) == 0 {
		return nil, &apperrors.NotFoundError{Resource: "Lawyer", Message: "No active lawyers available"}
	}

	ids := make([]string, len(page.Items))
	for i, l := range page.Items {
		ids[i] = l.ID
	}
	tallies, err := countCasesByLawyer(ctx, s.lawsuits, ids)
	if err != nil {
		return nil, err
	}

	expected := ExpectedSpecialization(lawsuit.CaseType)
	scored := make([]Recommendation, 0, len(page.Items))
	for _, l := range page.Items {
		active := tallies[l.ID].Assigned
		match := l.Specialization == expected
		scored = append(scored, Recommendation{
			Lawyer:      l,
			Score:       recommendationScore(match, active),
			ActiveCases: active,
			MatchReason: matchReason(match, active),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > RecommendationLimit {
		scored = scored[:RecommendationLimit]
	}

	return &RecommendationResult{
		Lawsuit: LawsuitRef{
			ID:         lawsuit.ID,
			CaseNumber: lawsuit.CaseNumber,
			CaseType:   lawsuit.CaseType,
		},
		Recommendations: scored,
	}, nil
}

func recommendationScore(match bool, activeCases int) int {
	score := 0
	if match {
		score += 10
	}
	if activeCases < 10 {
		score += 10 - activeCases
	}
	return score
}

func matchReason(match bool, activeCases int) string {
	var reasons []string
	if match {
		reasons = append(reasons, "Perfect specialization match")
	}
	switch {
	case activeCases <= 3:
		reasons = append(reasons, "Low workload")
	case activeCases <= 6:
		reasons = append(reasons, "Moderate workload")
	default:
		reasons = append(reasons, "High workload")
	}
	return strings.Join(reasons, ", ")
}

// GetLawsuitAnalytics counts lawsuits by status and type and derives the rates
func (s *LawsuitService) GetLawsuitAnalytics(ctx context.Context) (*LawsuitAnalytics, error) {
	s.log.InfoContext(ctx, "Generating lawsuit analytics")

	analytics, err := s.analytics(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "Error generating lawsuit analytics", "error", err.Error())
		return nil, err
	}
	return analytics, nil
}

func (s *LawsuitService) analytics(ctx context.Context) (*LawsuitAnalytics, error) {
	byStatus, err := s.lawsuits.CountBy(ctx, "status", nil)
	if err != nil {
		return nil, err
	}
	byType, err := s.lawsuits.CountBy(ctx, "case_type", nil)
	if err != nil {
		return nil, err
	}
	recent, err := s.lawsuits.FindAll(ctx, repository.ListOptions{
		Limit: 5,
		Order: []repository.Order{{Field: "created_at", Desc: true}, {Field: "id"}},
	})
	if err != nil {
		return nil, err
	}

	a := &LawsuitAnalytics{
		ByStatus:       make(map[string]int, len(models.LawsuitStatuses())),
		ByType:         make(map[string]int, len(models.CaseTypes())),
		RecentLawsuits: recent.Items,
	}
	for _, st := range models.LawsuitStatuses() {
		a.ByStatus[st] = int(byStatus[st])
		a.Total += int(byStatus[st])
	}
	for _, ct := range models.CaseTypes() {
		a.ByType[ct] = int(byType[ct])
	}

	pending := a.ByStatus[models.LawsuitStatusPending]
	assigned := a.ByStatus[models.LawsuitStatusAssigned]
	resolved := a.ByStatus[models.LawsuitStatusResolved]
	a.Metrics = AnalyticsMetrics{
		AssignmentRate: percentage(assigned+resolved, a.Total),
		ResolutionRate: percentage(resolved, assigned+resolved),
		PendingRate:    percentage(pending, a.Total),
	}
	return a, nil
}

// percentage is part/whole*100 rounded to two decimals, 0 for an empty whole
func percentage(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*100*100) / 100
}

// GetLawsuitsByStatus lists lawsuits in one lifecycle state with their lawyer
func (s *LawsuitService) GetLawsuitsByStatus(ctx context.Context, status string, opts repository.ListOptions) (*repository.Page[models.Lawsuit], error) {
	if !models.IsValidLawsuitStatus(status) {
		err := apperrors.FieldInvalid("status", "Invalid status. Must be one of: "+strings.Join(models.LawsuitStatuses(), ", "), status)
		s.log.ErrorContext(ctx, "Error fetching lawsuits by status", "status", status, "error", err.Error())
		return nil, err
	}
	opts.Filter = withFilter(opts.Filter, "status", status)
	return s.GetAllWithLawyers(ctx, opts)
}

// GetAllWithLawyers lists lawsuits with the assigned lawyer's summary attached
func (s *LawsuitService) GetAllWithLawyers(ctx context.Context, opts repository.ListOptions) (*repository.Page[models.Lawsuit], error) {
	opts.Preloads = append(opts.Preloads, repository.Preload{Association: "Lawyer", Columns: lawyerSummaryColumns})
	return s.GetAll(ctx, opts)
}

// GetLawsuitsByLawyer lists the lawsuits handled by lawyerID
func (s *LawsuitService) GetLawsuitsByLawyer(ctx context.Context, lawyerID string, opts repository.ListOptions) (*repository.Page[models.Lawsuit], error) {
	opts.Filter = withFilter(opts.Filter, "lawyer_id", lawyerID)
	return s.GetAllWithLawyers(ctx, opts)
}

// GetPendingLawsuits lists lawsuits waiting for a lawyer
func (s *LawsuitService) GetPendingLawsuits(ctx context.Context, opts repository.ListOptions) (*repository.Page[models.Lawsuit], error) {
	return s.GetLawsuitsByStatus(ctx, models.LawsuitStatusPending, opts)
}
