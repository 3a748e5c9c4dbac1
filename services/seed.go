package services

import (
	"context"
	"fmt"
	"log/slog"

	"lawsuit_tracker_go/models"
	"lawsuit_tracker_go/repository"
)

// SeedResult reports what SeedDemoData wrote
type SeedResult struct {
	Lawyers  int
	Lawsuits int
	Assigned int
	Skipped  bool
}

var demoLawyers = []models.Lawyer{
	{Name: "Laura Martinez", Email: "laura.martinez@example.com", Phone: "3001112233", Specialization: "Civil"},
	{Name: "Andres Gomez", Email: "andres.gomez@example.com", Phone: "3002223344", Specialization: "Penal"},
	{Name: "Camila Rojas", Email: "camila.rojas@example.com", Phone: "3003334455", Specialization: "Laboral"},
	{Name: "Felipe Castro", Email: "felipe.castro@example.com", Phone: "3004445566", Specialization: "Comercial"},
	{Name: "Diana Herrera", Email: "diana.herrera@example.com", Phone: "3005556677", Specialization: "Civil", Status: models.LawyerStatusInactive},
}

var demoLawsuits = []models.Lawsuit{
	{CaseNumber: "CIV-2025-001", Plaintiff: "Juan Perez", Defendant: "Constructora Andina S.A.", CaseType: models.CaseTypeCivil},
	{CaseNumber: "CIV-2025-002", Plaintiff: "Maria Lopez", Defendant: "Inmobiliaria Norte", CaseType: models.CaseTypeCivil},
	{CaseNumber: "PEN-2025-001", Plaintiff: "Fiscalia General", Defendant: "Carlos Ruiz", CaseType: models.CaseTypeCriminal},
	{CaseNumber: "LAB-2025-001", Plaintiff: "Sofia Vargas", Defendant: "Textiles del Valle", CaseType: models.CaseTypeLabor},
	{CaseNumber: "LAB-2025-002", Plaintiff: "Pedro Diaz", Defendant: "Transportes Unidos", CaseType: models.CaseTypeLabor},
	{CaseNumber: "COM-2025-001", Plaintiff: "Distribuidora Central", Defendant: "Almacenes Exito", CaseType: models.CaseTypeCommercial},
	{CaseNumber: "COM-2025-002", Plaintiff: "Banco Popular", Defendant: "Ferreteria La 14", CaseType: models.CaseTypeCommercial},
}

// SeedDemoData fills an empty database with a small set of lawyers and
// lawsuits. The first lawsuits of each type are assigned through the
// recommendation engine so the workload and analytics views have data.
// It does nothing when any lawyer already exists.
func SeedDemoData(ctx context.Context, lawyers *LawyerService, lawsuits *LawsuitService, log *slog.Logger) (*SeedResult, error) {
	existing, err := lawyers.Repository().Count(ctx, nil)
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		log.InfoContext(ctx, "[SEED] Lawyers already exist, skipping demo data", "count", existing)
		return &SeedResult{Skipped: true}, nil
	}

	result := &SeedResult{}
	for _, l := range demoLawyers {
		lawyer := l
		if _, err := lawyers.Create(ctx, &lawyer); err != nil {
			return result, fmt.Errorf("failed to seed lawyer %s: %w", l.Email, err)
		}
		result.Lawyers++
	}

	for i, ls := range demoLawsuits {
		lawsuit := ls
		created, err := lawsuits.Create(ctx, &lawsuit)
		if err != nil {
			return result, fmt.Errorf("failed to seed lawsuit %s: %w", ls.CaseNumber, err)
		}
		result.Lawsuits++

		// Leave every other lawsuit pending
		if i%2 == 1 {
			continue
		}
		rec, err := lawsuits.RecommendLawyer(ctx, created.ID)
		if err != nil {
			return result, err
		}
		if len(rec.Recommendations) == 0 {
			continue
		}
		if _, err := lawsuits.AssignLawyer(ctx, created.ID, rec.Recommendations[0].Lawyer.ID); err != nil {
			return result, err
		}
		result.Assigned++
	}

	log.InfoContext(ctx, "[SEED] Demo data created",
		"lawyers", result.Lawyers,
		"lawsuits", result.Lawsuits,
		"assigned", result.Assigned)
	return result, nil
}

// NormalizeStoredSpecializations rewrites lawyer specializations saved
// before normalization was enforced. It returns the number of rows changed.
func NormalizeStoredSpecializations(ctx context.Context, lawyers *repository.Repository[models.Lawyer], log *slog.Logger) (int, error) {
	var rows []models.Lawyer
	if err := lawyers.Query(ctx).Select("id", "specialization").Find(&rows).Error; err != nil {
		return 0, lawyers.Translate(err)
	}

	changed := 0
	for i, row := range rows {
		normalized := NormalizeSpecialization(row.Specialization)
		if normalized == row.Specialization {
			continue
		}
		if _, err := lawyers.Update(ctx, row.ID, repository.Patch{"specialization": normalized}); err != nil {
			log.ErrorContext(ctx, "Failed to normalize specialization", "id", row.ID, "error", err.Error())
			continue
		}
		changed++
		log.InfoContext(ctx, "Normalized specialization",
			"progress", fmt.Sprintf("%d/%d", i+1, len(rows)),
			"id", row.ID,
			"from", row.Specialization,
			"to", normalized)
	}
	return changed, nil
}
