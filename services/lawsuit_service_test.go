package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"lawsuit_tracker_go/apperrors"
	"lawsuit_tracker_go/models"
	"lawsuit_tracker_go/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpectedSpecialization(t *testing.T) {
	assert.Equal(t, "Civil", ExpectedSpecialization(models.CaseTypeCivil))
	assert.Equal(t, "Penal", ExpectedSpecialization(models.CaseTypeCriminal))
	assert.Equal(t, "Laboral", ExpectedSpecialization(models.CaseTypeLabor))
	assert.Equal(t, "Comercial", ExpectedSpecialization(models.CaseTypeCommercial))
	assert.Equal(t, "General", ExpectedSpecialization("family"))
}

func TestCreateLawsuitCaseNumberFormat(t *testing.T) {
	f := setupServices(t)
	ctx := context.Background()

	_, err := f.lawsuits.Create(ctx, &models.Lawsuit{
		CaseNumber: "AB-2025-01",
		Plaintiff:  "Maria Gomez",
		Defendant:  "Transportes del Sur",
		CaseType:   models.CaseTypeCivil,
	})
	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "case_number", ve.Fields[0].Field)
	assert.True(t, apperrors.IsRule(err, apperrors.RuleCaseNumberFormat))

	for _, valid := range []string{"AB-2025-001", "ABCD-2025-1234"} {
		_, err := f.lawsuits.Create(ctx, &models.Lawsuit{
			CaseNumber: valid,
			Plaintiff:  "Maria Gomez",
			Defendant:  "Transportes del Sur",
			CaseType:   models.CaseTypeCivil,
		})
		assert.NoError(t, err, valid)
	}
}

func TestCreateLawsuitRules(t *testing.T) {
	f := setupServices(t)
	ctx := context.Background()
	lawyer := f.createLawyer(t, "Ana", "Civil")

	_, err := f.lawsuits.Create(ctx, &models.Lawsuit{
		CaseNumber: "CIV-2025-001",
		Plaintiff:  "  Maria Gomez ",
		Defendant:  "maria gomez",
		CaseType:   models.CaseTypeCivil,
	})
	assert.True(t, apperrors.IsRule(err, apperrors.RuleSameParty))

	_, err = f.lawsuits.Create(ctx, &models.Lawsuit{
		CaseNumber: "CIV-2025-001",
		Plaintiff:  "Maria Gomez",
		Defendant:  "Pedro Ruiz",
		CaseType:   "family",
	})
	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "case_type", ve.Fields[0].Field)

	_, err = f.lawsuits.Create(ctx, &models.Lawsuit{
		CaseNumber: "CIV-2025-001",
		Plaintiff:  "Maria Gomez",
		Defendant:  "Pedro Ruiz",
		CaseType:   models.CaseTypeCivil,
		LawyerID:   &lawyer.ID,
	})
	assert.True(t, apperrors.IsRule(err, apperrors.RuleDirectAssignment))

	_, err = f.lawsuits.Create(ctx, &models.Lawsuit{
		CaseNumber: "CIV-2025-001",
		Plaintiff:  "Maria Gomez",
		Defendant:  "Pedro Ruiz",
		CaseType:   models.CaseTypeCivil,
		Status:     models.LawsuitStatusAssigned,
	})
	assert.True(t, apperrors.IsRule(err, apperrors.RuleDirectAssignment))

	created, err := f.lawsuits.Create(ctx, &models.Lawsuit{
		CaseNumber: "CIV-2025-001",
		Plaintiff:  "Maria Gomez",
		Defendant:  "Pedro Ruiz",
		CaseType:   models.CaseTypeCivil,
	})
	require.NoError(t, err)
	assert.Equal(t, models.LawsuitStatusPending, created.Status)
	assert.Nil(t, created.LawyerID)

	_, err = f.lawsuits.Create(ctx, &models.Lawsuit{
		CaseNumber: "CIV-2025-001",
		Plaintiff:  "Luis Diaz",
		Defendant:  "Pedro Ruiz",
		CaseType:   models.CaseTypeCivil,
	})
	var ce *apperrors.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "case_number", ce.Field)
}

func TestUpdateLawsuitRules(t *testing.T) {
	f := setupServices(t)
	ctx := context.Background()
	lawyer := f.createLawyer(t, "Ana", "Civil")
	lawsuit := f.createLawsuit(t, models.CaseTypeCivil)

	_, err := f.lawsuits.Update(ctx, lawsuit.ID, repository.Patch{"lawyer_id": lawyer.ID})
	assert.True(t, apperrors.IsRule(err, apperrors.RuleDirectAssignment))

	_, err = f.lawsuits.Update(ctx, lawsuit.ID, repository.Patch{"status": models.LawsuitStatusAssigned})
	assert.True(t, apperrors.IsRule(err, apperrors.RuleDirectAssignment))

	// Party check merges the patch with the stored row
	_, err = f.lawsuits.Update(ctx, lawsuit.ID, repository.Patch{"defendant": "MARIA GOMEZ"})
	assert.True(t, apperrors.IsRule(err, apperrors.RuleSameParty))

	_, err = f.lawsuits.Update(ctx, lawsuit.ID, repository.Patch{"case_number": "bad"})
	assert.True(t, apperrors.IsRule(err, apperrors.RuleCaseNumberFormat))

	updated, err := f.lawsuits.Update(ctx, lawsuit.ID, repository.Patch{"defendant": "Banco Central", "case_type": models.CaseTypeCommercial})
	require.NoError(t, err)
	assert.Equal(t, "Banco Central", updated.Defendant)
	assert.Equal(t, models.CaseTypeCommercial, updated.CaseType)

	_, err = f.lawsuits.Update(ctx, "missing", repository.Patch{"plaintiff": "X"})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUpdateLawsuitCannotResolve(t *testing.T) {
	f := setupServices(t)
	ctx := context.Background()
	pending := f.createLawsuit(t, models.CaseTypeCivil)

	_, err := f.lawsuits.Update(ctx, pending.ID, repository.Patch{"status": models.LawsuitStatusResolved})
	assert.True(t, apperrors.IsRule(err, apperrors.RuleResolution))

	reloaded, err := f.lawsuits.GetByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LawsuitStatusPending, reloaded.Status)

	// Assigned lawsuits are closed through ResolveLawsuit only
	lawyer := f.createLawyer(t, "Ana", "Civil")
	_, err = f.lawsuits.AssignLawyer(ctx, pending.ID, lawyer.ID)
	require.NoError(t, err)
	_, err = f.lawsuits.Update(ctx, pending.ID, repository.Patch{"status": models.LawsuitStatusResolved})
	assert.True(t, apperrors.IsRule(err, apperrors.RuleResolution))

	analytics, err := f.lawsuits.GetLawsuitAnalytics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, analytics.ByStatus[models.LawsuitStatusResolved])
}

func TestUpdateLawsuitToPendingReleasesLawyer(t *testing.T) {
	f := setupServices(t)
	ctx := context.Background()
	lawyer := f.createLawyer(t, "Ana", "Civil")
	lawsuit := f.createLawsuit(t, models.CaseTypeCivil)
	_, err := f.lawsuits.AssignLawyer(ctx, lawsuit.ID, lawyer.ID)
	require.NoError(t, err)

	updated, err := f.lawsuits.Update(ctx, lawsuit.ID, repository.Patch{"status": models.LawsuitStatusPending})
	require.NoError(t, err)
	assert.Equal(t, models.LawsuitStatusPending, updated.Status)
	assert.Nil(t, updated.LawyerID)
}

func TestAssignLawyer(t *testing.T) {
	f := setupServices(t)
	ctx := context.Background()
	lawyer := f.createLawyer(t, "Ana", "Civil")
	lawsuit := f.createLawsuit(t, models.CaseTypeCivil)

	assigned, err := f.lawsuits.AssignLawyer(ctx, lawsuit.ID, lawyer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LawsuitStatusAssigned, assigned.Status)
	require.NotNil(t, assigned.LawyerID)
	assert.Equal(t, lawyer.ID, *assigned.LawyerID)
	require.NotNil(t, assigned.Lawyer)
	assert.Equal(t, "Ana", assigned.Lawyer.Name)
	assert.Equal(t, "Civil", assigned.Lawyer.Specialization)
	assert.Empty(t, assigned.Lawyer.Email)

	// Reassigning the same lawsuit to the same lawyer is idempotent
	_, err = f.lawsuits.AssignLawyer(ctx, lawsuit.ID, lawyer.ID)
	require.NoError(t, err)
}

func TestAssignLawyerNotFound(t *testing.T) {
	f := setupServices(t)
	ctx := context.Background()
	lawyer := f.createLawyer(t, "Ana", "Civil")
	lawsuit := f.createLawsuit(t, models.CaseTypeCivil)

	_, err := f.lawsuits.AssignLawyer(ctx, "missing", lawyer.ID)
	var nf *apperrors.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Lawsuit", nf.Resource)

	_, err = f.lawsuits.AssignLawyer(ctx, lawsuit.ID, "missing")
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Lawyer", nf.Resource)
}

func TestAssignInactiveLawyer(t *testing.T) {
	f := setupServices(t)
	ctx := context.Background()
	lawyer := f.createLawyer(t, "Ana", "Civil")
	_, err := f.lawyers.Update(ctx, lawyer.ID, repository.Patch{"status": models.LawyerStatusInactive})
	require.NoError(t, err)
	lawsuit := f.createLawsuit(t, models.CaseTypeCivil)

	_, err = f.lawsuits.AssignLawyer(ctx, lawsuit.ID, lawyer.ID)
	assert.True(t, apperrors.IsRule(err, apperrors.RuleInactiveLawyer))

	stored, err := f.lawsuits.GetByID(ctx, lawsuit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LawsuitStatusPending, stored.Status)
}

func TestAssignLawyerMaxWorkload(t *testing.T) {
	f := setupServices(t)
	ctx := context.Background()
	lawyer := f.createLawyer(t, "Ana", "Civil")
	f.assignCases(t, lawyer, 10)

	lawsuit := f.createLawsuit(t, models.CaseTypeCivil)
	_, err := f.lawsuits.AssignLawyer(ctx, lawsuit.ID, lawyer.ID)
	require.True(t, apperrors.IsRule(err, apperrors.RuleMaxWorkload))
	var bre *apperrors.BusinessRuleError
	require.ErrorAs(t, err, &bre)
	assert.Equal(t, 10, bre.Context["currentCases"])
	assert.Equal(t, 10, bre.Context["maxCases"])
	assert.Contains(t, bre.Message, "10/10")
}

func TestAssignLawyerWarnings(t *testing.T) {
	f := setupServices(t)
	ctx := context.Background()
	lawyer := f.createLawyer(t, "Ana", "Civil")
	f.assignCases(t, lawyer, 7)
	assert.NotContains(t, f.logs.String(), "High workload assignment")

	criminal := f.createLawsuit(t, models.CaseTypeCriminal)
	_, err := f.lawsuits.AssignLawyer(ctx, criminal.ID, lawyer.ID)
	require.NoError(t, err)

	logs := f.logs.String()
	assert.Contains(t, logs, `"msg":"High workload assignment"`)
	assert.Contains(t, logs, `"activeCases":7`)
	assert.Contains(t, logs, `"msg":"Specialization mismatch"`)
	assert.Contains(t, logs, `"expectedSpecialization":"Penal"`)
}

func TestAssignLawyerConcurrentRespectsCap(t *testing.T) {
	f := setupServices(t)
	ctx := context.Background()
	lawyer := f.createLawyer(t, "Ana", "Civil")
	f.assignCases(t, lawyer, 8)

	var pending []*models.Lawsuit
	for i := 0; i < 5; i++ {
		pending = append(pending, f.createLawsuit(t, models.CaseTypeCivil))
	}

	var wg sync.WaitGroup
	for _, l := range pending {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			f.lawsuits.AssignLawyer(ctx, id, lawyer.ID)
		}(l.ID)
	}
	wg.Wait()

	var active int64
	require.NoError(t, f.db.Model(&models.Lawsuit{}).
		Where("lawyer_id = ? AND status = ?", lawyer.ID, models.LawsuitStatusAssigned).
		Count(&active).Error)
	assert.LessOrEqual(t, active, int64(10))
}

func TestUnassignAndResolve(t *testing.T) {
	f := setupServices(t)
	ctx := context.Background()
	lawyer := f.createLawyer(t, "Ana", "Civil")
	lawsuit := f.createLawsuit(t, models.CaseTypeCivil)

	_, err := f.lawsuits.ResolveLawsuit(ctx, lawsuit.ID)
	assert.True(t, apperrors.IsRule(err, apperrors.RuleResolution))

	_, err = f.lawsuits.AssignLawyer(ctx, lawsuit.ID, lawyer.ID)
	require.NoError(t, err)

	released, err := f.lawsuits.UnassignLawyer(ctx, lawsuit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LawsuitStatusPending, released.Status)
	assert.Nil(t, released.LawyerID)

	_, err = f.lawsuits.AssignLawyer(ctx, lawsuit.ID, lawyer.ID)
	require.NoError(t, err)
	resolved, err := f.lawsuits.ResolveLawsuit(ctx, lawsuit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LawsuitStatusResolved, resolved.Status)
	require.NotNil(t, resolved.LawyerID)
	assert.Equal(t, lawyer.ID, *resolved.LawyerID)

	_, err = f.lawsuits.UnassignLawyer(ctx, lawsuit.ID)
	assert.True(t, apperrors.IsRule(err, apperrors.RuleResolution))

	_, err = f.lawsuits.ResolveLawsuit(ctx, "missing")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestRecommendLawyer(t *testing.T) {
	f := setupServices(t)
	ctx := context.Background()
	civil := f.createLawyer(t, "Ana", "Civil")
	penal := f.createLawyer(t, "Bruno", "Penal")
	f.assignCases(t, civil, 2)

	lawsuit := f.createLawsuit(t, models.CaseTypeCivil)
	result, err := f.lawsuits.RecommendLawyer(ctx, lawsuit.ID)
	require.NoError(t, err)

	assert.Equal(t, lawsuit.CaseNumber, result.Lawsuit.CaseNumber)
	require.Len(t, result.Recommendations, 2)
	assert.Equal(t, civil.ID, result.Recommendations[0].Lawyer.ID)
	assert.Equal(t, 18, result.Recommendations[0].Score)
	assert.Equal(t, 2, result.Recommendations[0].ActiveCases)
	assert.Equal(t, "Perfect specialization match, Low workload", result.Recommendations[0].MatchReason)
	assert.Equal(t, penal.ID, result.Recommendations[1].Lawyer.ID)
	assert.Equal(t, 10, result.Recommendations[1].Score)
	assert.Equal(t, "Low workload", result.Recommendations[1].MatchReason)
}

func TestRecommendLawyerTopThreeActiveOnly(t *testing.T) {
	f := setupServices(t)
	ctx := context.Background()
	for _, name := range []string{"A", "B", "C", "D"} {
		f.createLawyer(t, name, "Laboral")
	}
	inactive := f.createLawyer(t, "E", "Penal")
	_, err := f.lawyers.Update(ctx, inactive.ID, repository.Patch{"status": models.LawyerStatusInactive})
	require.NoError(t, err)

	lawsuit := f.createLawsuit(t, models.CaseTypeCriminal)
	result, err := f.lawsuits.RecommendLawyer(ctx, lawsuit.ID)
	require.NoError(t, err)
	require.Len(t, result.Recommendations, RecommendationLimit)
	for _, r := range result.Recommendations {
		assert.NotEqual(t, inactive.ID, r.Lawyer.ID)
		assert.Equal(t, 10, r.Score)
	}
}

func TestRecommendLawyerErrors(t *testing.T) {
	f := setupServices(t)
	ctx := context.Background()

	_, err := f.lawsuits.RecommendLawyer(ctx, "missing")
	assert.True(t, apperrors.IsNotFound(err))

	lawsuit := f.createLawsuit(t, models.CaseTypeCivil)
	_, err = f.lawsuits.RecommendLawyer(ctx, lawsuit.ID)
	require.True(t, apperrors.IsNotFound(err))
	assert.Equal(t, "No active lawyers available", err.Error())
}

func TestMatchReason(t *testing.T) {
	assert.Equal(t, "Low workload", matchReason(false, 3))
	assert.Equal(t, "Moderate workload", matchReason(false, 4))
	assert.Equal(t, "Perfect specialization match, Moderate workload", matchReason(true, 6))
	assert.Equal(t, "High workload", matchReason(false, 7))
	assert.Equal(t, 0, recommendationScore(false, 12))
	assert.Equal(t, 20, recommendationScore(true, 0))
}

func TestGetLawsuitAnalytics(t *testing.T) {
	f := setupServices(t)
	ctx := context.Background()

	empty, err := f.lawsuits.GetLawsuitAnalytics(ctx)
	require.NoError(t, err)
	assert.Zero(t, empty.Total)
	assert.Zero(t, empty.Metrics.AssignmentRate)
	assert.Zero(t, empty.Metrics.ResolutionRate)
	assert.Zero(t, empty.Metrics.PendingRate)

	lawyer := f.createLawyer(t, "Ana", "Civil")
	f.assignCases(t, lawyer, 1)
	f.createLawsuit(t, models.CaseTypeLabor)
	f.createLawsuit(t, models.CaseTypeLabor)

	a, err := f.lawsuits.GetLawsuitAnalytics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, a.Total)
	assert.Equal(t, 2, a.ByStatus[models.LawsuitStatusPending])
	assert.Equal(t, 1, a.ByStatus[models.LawsuitStatusAssigned])
	assert.Equal(t, 0, a.ByStatus[models.LawsuitStatusResolved])
	assert.Equal(t, 2, a.ByType[models.CaseTypeLabor])
	assert.Equal(t, 33.33, a.Metrics.AssignmentRate)
	assert.Equal(t, 0.0, a.Metrics.ResolutionRate)
	assert.Equal(t, 66.67, a.Metrics.PendingRate)
	assert.Len(t, a.RecentLawsuits, 3)
}

func TestGetLawsuitsByStatus(t *testing.T) {
	f := setupServices(t)
	ctx := context.Background()
	lawyer := f.createLawyer(t, "Ana", "Civil")
	f.assignCases(t, lawyer, 2)
	f.createLawsuit(t, models.CaseTypeCivil)

	assigned, err := f.lawsuits.GetLawsuitsByStatus(ctx, models.LawsuitStatusAssigned, repository.ListOptions{})
	require.NoError(t, err)
	require.Len(t, assigned.Items, 2)
	require.NotNil(t, assigned.Items[0].Lawyer)
	assert.Equal(t, "Ana", assigned.Items[0].Lawyer.Name)

	pending, err := f.lawsuits.GetPendingLawsuits(ctx, repository.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, pending.Items, 1)
	assert.Nil(t, pending.Items[0].Lawyer)

	byLawyer, err := f.lawsuits.GetLawsuitsByLawyer(ctx, lawyer.ID, repository.ListOptions{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, byLawyer.Items, 1)
	assert.Equal(t, int64(2), byLawyer.Pagination.Total)
	assert.True(t, byLawyer.Pagination.HasNextPage)

	_, err = f.lawsuits.GetLawsuitsByStatus(ctx, "closed", repository.ListOptions{})
	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Invalid status. Must be one of: pending, assigned, resolved", ve.Fields[0].Message)
}

// Full lifecycle: a civil lawsuit goes to the civil specialist and analytics reflect it
func TestLawsuitLifecycleScenario(t *testing.T) {
	f := setupServices(t)
	ctx := context.Background()

	lawyer, err := f.lawyers.Create(ctx, &models.Lawyer{
		Name:           "Laura Martinez",
		Email:          "laura.martinez@firm.test",
		Phone:          "3001234567",
		Specialization: "civil",
	})
	require.NoError(t, err)
	assert.Equal(t, "Civil", lawyer.Specialization)

	lawsuit, err := f.lawsuits.Create(ctx, &models.Lawsuit{
		CaseNumber: "DEM-2025-001",
		Plaintiff:  "Carlos Rodriguez",
		Defendant:  "Inmobiliaria Norte",
		CaseType:   models.CaseTypeCivil,
	})
	require.NoError(t, err)
	assert.Equal(t, models.LawsuitStatusPending, lawsuit.Status)

	rec, err := f.lawsuits.RecommendLawyer(ctx, lawsuit.ID)
	require.NoError(t, err)
	assert.Equal(t, lawyer.ID, rec.Recommendations[0].Lawyer.ID)
	assert.Equal(t, 20, rec.Recommendations[0].Score)

	assigned, err := f.lawsuits.AssignLawyer(ctx, lawsuit.ID, lawyer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LawsuitStatusAssigned, assigned.Status)
	assert.False(t, strings.Contains(f.logs.String(), "Specialization mismatch"))

	stats, err := f.lawyers.GetLawyerWithStats(ctx, lawyer.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Stats.Assigned)

	analytics, err := f.lawsuits.GetLawsuitAnalytics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100.0, analytics.Metrics.AssignmentRate)
	assert.Equal(t, 0.0, analytics.Metrics.PendingRate)
	require.Len(t, analytics.RecentLawsuits, 1)
	assert.Equal(t, "DEM-2025-001", analytics.RecentLawsuits[0].CaseNumber)
}
