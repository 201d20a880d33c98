package repository_test

import (
	"testing"

	"github.com/glebarez/sqlite"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/croptivize/catalog/internal/catalog/domain"
	"github.com/croptivize/catalog/internal/catalog/repository"
)

func tracedMemrepo(t *testing.T) domain.ProductRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	repo := repository.NewGormProductRepositoryWithTracing(db)
	if err := repo.AutoMigrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return repo
}

// The traced repository is handed around as domain.ProductRepository, so the
// span-wrapped methods must be the ones interface dispatch selects.
func TestTracedRepositoryEmitsSpansThroughInterface(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(ctx) })

	repo := tracedMemrepo(t)

	p := &domain.Product{Name: "Mulch Bale", Price: 12, Category: domain.CategoryFertilizers}
	if err := repo.Create(ctx, p); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.FindByID(ctx, p.ID); err != nil {
		t.Fatal(err)
	}
	if _, _, err := repo.FindPage(ctx, domain.DefaultFilter()); err != nil {
		t.Fatal(err)
	}

	want := map[string]bool{
		"repository.Create":   false,
		"repository.FindByID": false,
		"repository.FindPage": false,
	}
	for _, span := range exporter.GetSpans() {
		if _, ok := want[span.Name]; ok {
			want[span.Name] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("no %s span recorded", name)
		}
	}
}

func TestTracedRepositoryNotFoundStillMapsError(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(ctx) })

	repo := tracedMemrepo(t)

	if _, err := repo.FindByID(ctx, 404); err != domain.ErrNotFound {
		t.Fatalf("want ErrNotFound through the traced path, got %v", err)
	}
}
