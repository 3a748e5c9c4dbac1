package container

import (
	"log/slog"

	"lawsuit_tracker_go/models"
	"lawsuit_tracker_go/repository"
	"lawsuit_tracker_go/services"

	"gorm.io/gorm"
)

// Component names
const (
	LawyerRepository  = "lawyerRepository"
	LawsuitRepository = "lawsuitRepository"
	LawyerService     = "lawyerService"
	LawsuitService    = "lawsuitService"
	WorkloadReporter  = "workloadReporter"
)

// App is the container with the application's components registered
type App struct {
	*Container
}

// NewApp registers the repositories, services and reporter over conn.
// Nothing is built until first resolved.
func NewApp(conn *gorm.DB, log *slog.Logger, policy services.AssignmentPolicy) *App {
	c := New()

	c.RegisterSingleton(LawyerRepository, func(...any) (any, error) {
		return repository.New[models.Lawyer](conn, "Lawyer")
	})
	c.RegisterSingleton(LawsuitRepository, func(...any) (any, error) {
		return repository.New[models.Lawsuit](conn, "Lawsuit")
	})
	c.RegisterSingleton(LawyerService, func(deps ...any) (any, error) {
		return services.NewLawyerService(
			deps[0].(*repository.Repository[models.Lawyer]),
			deps[1].(*repository.Repository[models.Lawsuit]),
			log,
		), nil
	}, LawyerRepository, LawsuitRepository)
	c.RegisterSingleton(LawsuitService, func(deps ...any) (any, error) {
		return services.NewLawsuitService(
			deps[0].(*repository.Repository[models.Lawsuit]),
			deps[1].(*repository.Repository[models.Lawyer]),
			policy,
			log,
		), nil
	}, LawsuitRepository, LawyerRepository)
	c.RegisterSingleton(WorkloadReporter, func(deps ...any) (any, error) {
		return services.NewWorkloadReporter(
			deps[0].(*services.LawyerService),
			deps[1].(*services.LawsuitService),
			log,
		), nil
	}, LawyerService, LawsuitService)

	return &App{Container: c}
}

// Lawyers returns the lawyer service
func (a *App) Lawyers() (*services.LawyerService, error) {
	return ResolveAs[*services.LawyerService](a.Container, LawyerService)
}

// Lawsuits returns the lawsuit service
func (a *App) Lawsuits() (*services.LawsuitService, error) {
	return ResolveAs[*services.LawsuitService](a.Container, LawsuitService)
}

// Reporter returns the workload reporter
func (a *App) Reporter() (*services.WorkloadReporter, error) {
	return ResolveAs[*services.WorkloadReporter](a.Container, WorkloadReporter)
}

// Validate resolves every component once so wiring mistakes surface at startup
func (a *App) Validate() error {
	for _, name := range a.Names() {
		if _, err := a.Resolve(name); err != nil {
			return err
		}
	}
	return nil
}
