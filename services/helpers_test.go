package services

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"lawsuit_tracker_go/logger"
	"lawsuit_tracker_go/models"
	"lawsuit_tracker_go/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// Unique shared-memory database per test
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_foreign_keys=on"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, testDB.AutoMigrate(&models.Lawyer{}, &models.Lawsuit{}))
	return testDB
}

type fixture struct {
	db       *gorm.DB
	lawyers  *LawyerService
	lawsuits *LawsuitService
	logs     *bytes.Buffer
}

func setupServices(t *testing.T) *fixture {
	conn := setupTestDB(t)

	lawyerRepo, err := repository.New[models.Lawyer](conn, "Lawyer")
	require.NoError(t, err)
	lawsuitRepo, err := repository.New[models.Lawsuit](conn, "Lawsuit")
	require.NoError(t, err)

	logs := &bytes.Buffer{}
	log := logger.New(logger.Options{Level: "debug", Format: "json", Writer: logs})

	return &fixture{
		db:       conn,
		lawyers:  NewLawyerService(lawyerRepo, lawsuitRepo, log),
		lawsuits: NewLawsuitService(lawsuitRepo, lawyerRepo, DefaultAssignmentPolicy(), log),
		logs:     logs,
	}
}

func (f *fixture) createLawyer(t *testing.T, name, specialization string) *models.Lawyer {
	t.Helper()
	lawyer, err := f.lawyers.Create(context.Background(), &models.Lawyer{
		Name:           name,
		Email:          fmt.Sprintf("%s@firm.test", uuid.New().String()[:8]),
		Phone:          "3001234567",
		Specialization: specialization,
	})
	require.NoError(t, err)
	return lawyer
}

var caseSeq int

func (f *fixture) createLawsuit(t *testing.T, caseType string) *models.Lawsuit {
	t.Helper()
	caseSeq++
	lawsuit, err := f.lawsuits.Create(context.Background(), &models.Lawsuit{
		CaseNumber: fmt.Sprintf("TST-2025-%04d", caseSeq),
		Plaintiff:  "Maria Gomez",
		Defendant:  "Transportes del Sur",
		CaseType:   caseType,
	})
	require.NoError(t, err)
	return lawsuit
}

// assignCases gives n new lawsuits to lawyer
func (f *fixture) assignCases(t *testing.T, lawyer *models.Lawyer, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		lawsuit := f.createLawsuit(t, models.CaseTypeCivil)
		_, err := f.lawsuits.AssignLawyer(context.Background(), lawsuit.ID, lawyer.ID)
		require.NoError(t, err)
	}
}
