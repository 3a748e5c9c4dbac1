package services

import (
	"context"
	"testing"

	"lawsuit_tracker_go/apperrors"
	"lawsuit_tracker_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountCasesByLawyer(t *testing.T) {
	f := setupServices(t)
	ctx := context.Background()
	ana := f.createLawyer(t, "Ana", "Civil")
	bruno := f.createLawyer(t, "Bruno", "Penal")
	f.assignCases(t, ana, 2)
	f.assignCases(t, bruno, 1)
	f.createLawsuit(t, models.CaseTypeCivil)

	tallies, err := countCasesByLawyer(ctx, f.lawsuits.Repository(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, tallies[ana.ID].Assigned)
	assert.Equal(t, 1, tallies[bruno.ID].Total())

	only, err := countCasesByLawyer(ctx, f.lawsuits.Repository(), []string{bruno.ID})
	require.NoError(t, err)
	assert.Len(t, only, 1)
}

func TestCountCasesByLawyerTranslatesStorageErrors(t *testing.T) {
	f := setupServices(t)
	sqlDB, err := f.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = countCasesByLawyer(context.Background(), f.lawsuits.Repository(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Lawsuit: database operation failed")
	assert.Equal(t, apperrors.CodeInternal, apperrors.Code(err))
}
