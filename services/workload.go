package services

import (
	"context"

	"lawsuit_tracker_go/models"
	"lawsuit_tracker_go/repository"
)

// caseTally counts one lawyer's lawsuits per status
type caseTally struct {
	Pending  int
	Assigned int
	Resolved int
}

func (t caseTally) Total() int {
	return t.Pending + t.Assigned + t.Resolved
}

type lawyerStatusCount struct {
	LawyerID string
	Status   string
	Total    int
}

// countCasesByLawyer tallies lawsuits per lawyer and status in one grouped
// query. An empty lawyerIDs slice counts every lawyer.
func countCasesByLawyer(ctx context.Context, lawsuits *repository.Repository[models.Lawsuit], lawyerIDs []string) (map[string]caseTally, error) {
	query := lawsuits.Query(ctx).
		Select("lawyer_id, status, COUNT(*) AS total").
		Where("lawyer_id IS NOT NULL")
	if len(lawyerIDs) > 0 {
		query = query.Where("lawyer_id IN ?", lawyerIDs)
	}

	var rows []lawyerStatusCount
	if err := query.Group("lawyer_id, status").Scan(&rows).Error; err != nil {
		return nil, lawsuits.Translate(err)
	}

	tallies := make(map[string]caseTally)
	for _, row := range rows {
		t := tallies[row.LawyerID]
		switch row.Status {
		case models.LawsuitStatusPending:
			t.Pending += row.Total
		case models.LawsuitStatusAssigned:
			t.Assigned += row.Total
		case models.LawsuitStatusResolved:
			t.Resolved += row.Total
		}
		tallies[row.LawyerID] = t
	}
	return tallies, nil
}

// activeCaseCount is a lawyer's workload: lawsuits currently assigned to them
func activeCaseCount(ctx context.Context, lawsuits *repository.Repository[models.Lawsuit], lawyerID string) (int, error) {
	n, err := lawsuits.Count(ctx, map[string]any{
		"lawyer_id": lawyerID,
		"status":    models.LawsuitStatusAssigned,
	})
	return int(n), err
}
