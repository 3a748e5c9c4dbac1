package container

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"lawsuit_tracker_go/apperrors"
	"lawsuit_tracker_go/logger"
	"lawsuit_tracker_go/models"
	"lawsuit_tracker_go/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type counter struct{ n int }

func TestResolveBuildsDependenciesInOrder(t *testing.T) {
	c := New()
	c.Register("a", func(...any) (any, error) { return "A", nil })
	c.Register("b", func(...any) (any, error) { return "B", nil })
	c.Register("ab", func(deps ...any) (any, error) {
		return deps[0].(string) + deps[1].(string), nil
	}, DependsOn("a", "b"))

	v, err := c.Resolve("ab")
	require.NoError(t, err)
	assert.Equal(t, "AB", v)
}

func TestSingletonIsCached(t *testing.T) {
	c := New()
	builds := 0
	c.RegisterSingleton("counter", func(...any) (any, error) {
		builds++
		return &counter{}, nil
	})
	c.Register("transient", func(...any) (any, error) { return &counter{}, nil })

	first, err := ResolveAs[*counter](c, "counter")
	require.NoError(t, err)
	second, err := ResolveAs[*counter](c, "counter")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, builds)

	t1, _ := c.Resolve("transient")
	t2, _ := c.Resolve("transient")
	assert.NotSame(t, t1, t2)
}

func TestResolveUnregistered(t *testing.T) {
	c := New()
	_, err := c.Resolve("missing")
	var cfg *apperrors.ConfigurationError
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t, "missing", cfg.Name)
	assert.False(t, apperrors.IsOperational(err))

	c.Register("needsMissing", func(...any) (any, error) { return nil, nil }, DependsOn("missing"))
	_, err = c.Resolve("needsMissing")
	require.ErrorAs(t, err, &cfg)
	assert.Contains(t, cfg.Message, "required by needsMissing")
}

func TestResolveDetectsCycle(t *testing.T) {
	c := New()
	c.RegisterSingleton("a", func(...any) (any, error) { return 1, nil }, "b")
	c.RegisterSingleton("b", func(...any) (any, error) { return 2, nil }, "a")

	_, err := c.Resolve("a")
	var cfg *apperrors.ConfigurationError
	require.ErrorAs(t, err, &cfg)
	assert.Contains(t, cfg.Message, "a -> b -> a")

	c.RegisterSingleton("self", func(...any) (any, error) { return 1, nil }, "self")
	_, err = c.Resolve("self")
	require.ErrorAs(t, err, &cfg)
	assert.Contains(t, cfg.Message, "self -> self")
}

func TestFactoryErrorAndWrongType(t *testing.T) {
	c := New()
	c.Register("broken", func(...any) (any, error) { return nil, errors.New("no database") })
	c.Register("number", func(...any) (any, error) { return 42, nil })

	_, err := c.Resolve("broken")
	var cfg *apperrors.ConfigurationError
	require.ErrorAs(t, err, &cfg)
	assert.Contains(t, cfg.Message, "no database")

	_, err = ResolveAs[string](c, "number")
	require.ErrorAs(t, err, &cfg)
	assert.Contains(t, cfg.Message, "int")
}

func TestHasNamesClear(t *testing.T) {
	c := New()
	c.Register("zeta", func(...any) (any, error) { return nil, nil })
	c.Register("alpha", func(...any) (any, error) { return nil, nil })

	assert.True(t, c.Has("alpha"))
	assert.False(t, c.Has("beta"))
	assert.Equal(t, []string{"alpha", "zeta"}, c.Names())

	c.Clear()
	assert.Empty(t, c.Names())
	assert.False(t, c.Has("alpha"))
}

func TestConcurrentResolveBuildsSingletonOnce(t *testing.T) {
	c := New()
	builds := 0
	c.RegisterSingleton("shared", func(...any) (any, error) {
		builds++
		return &counter{}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Resolve("shared")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, builds)
}

func setupTestDB(t *testing.T) *gorm.DB {
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_foreign_keys=on"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, testDB.AutoMigrate(&models.Lawyer{}, &models.Lawsuit{}))
	return testDB
}

func TestNewAppWiresServices(t *testing.T) {
	app := NewApp(setupTestDB(t), logger.Discard(), services.DefaultAssignmentPolicy())

	require.NoError(t, app.Validate())
	assert.Equal(t, []string{LawsuitRepository, LawsuitService, LawyerRepository, LawyerService, WorkloadReporter}, app.Names())

	lawyers, err := app.Lawyers()
	require.NoError(t, err)
	again, err := app.Lawyers()
	require.NoError(t, err)
	assert.Same(t, lawyers, again)

	lawsuits, err := app.Lawsuits()
	require.NoError(t, err)
	assert.Equal(t, 10, lawsuits.Policy().MaxActiveCases)

	reporter, err := app.Reporter()
	require.NoError(t, err)
	assert.NotNil(t, reporter)

	_, err = ResolveAs[*services.LawsuitService](app.Container, LawyerService)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "LawyerService"))
}
