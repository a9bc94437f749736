package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	catalogdomain "github.com/greenthumb/nursery-api/internal/domains/catalog/domain"
	catalogports "github.com/greenthumb/nursery-api/internal/domains/catalog/ports"
)

const tracerName = "github.com/greenthumb/nursery-api/internal/domains/catalog/adapters/observability/service"

var _ catalogports.Service = (*Service)(nil)

// Service decorates the catalog service with tracing, logging, and metrics.
type Service struct {
	inner   catalogports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core catalog service.
func New(inner catalogports.Service, opts ...Option) catalogports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) CreatePlant(ctx context.Context, plant *catalogdomain.Plant) (*catalogdomain.Plant, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.CreatePlant",
		trace.WithAttributes(attribute.String("plant.id", plant.ID)))
	defer span.End()

	result, err := s.inner.CreatePlant(ctx, plant)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create plant", slog.String("plant_id", plant.ID))
	}
	s.metrics.recordSaved(ctx, "create")
	s.logInfo(ctx, "plant created", slog.String("plant_id", result.ID), slog.String("name", result.Name))
	return result, nil
}

func (s *Service) UpdatePlant(ctx context.Context, plant *catalogdomain.Plant) (*catalogdomain.Plant, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.UpdatePlant",
		trace.WithAttributes(attribute.String("plant.id", plant.ID)))
	defer span.End()

	result, err := s.inner.UpdatePlant(ctx, plant)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update plant", slog.String("plant_id", plant.ID))
	}
	s.metrics.recordSaved(ctx, "update")
	s.logInfo(ctx, "plant updated", slog.String("plant_id", result.ID))
	return result, nil
}

func (s *Service) DeletePlant(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "CatalogService.DeletePlant",
		trace.WithAttributes(attribute.String("plant.id", id)))
	defer span.End()

	if err := s.inner.DeletePlant(ctx, id); err != nil {
		return s.handleError(ctx, span, err, "failed to delete plant", slog.String("plant_id", id))
	}
	s.logInfo(ctx, "plant deleted", slog.String("plant_id", id))
	return nil
}

func (s *Service) GetPlant(ctx context.Context, id string) (*catalogdomain.Plant, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.GetPlant",
		trace.WithAttributes(attribute.String("plant.id", id)))
	defer span.End()

	result, err := s.inner.GetPlant(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load plant", slog.String("plant_id", id))
	}
	return result, nil
}

func (s *Service) ListPlants(ctx context.Context) ([]*catalogdomain.Plant, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.ListPlants")
	defer span.End()

	result, err := s.inner.ListPlants(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list plants")
	}
	span.SetAttributes(attribute.Int("plants.count", len(result)))
	return result, nil
}

func (s *Service) SearchPlants(ctx context.Context, filter catalogports.SearchFilter) ([]*catalogdomain.Plant, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.SearchPlants",
		trace.WithAttributes(
			attribute.String("search.name", filter.Name),
			attribute.String("search.type", filter.Type)))
	defer span.End()

	result, err := s.inner.SearchPlants(ctx, filter)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to search plants")
	}
	s.metrics.recordSearch(ctx)
	span.SetAttributes(attribute.Int("plants.count", len(result)))
	return result, nil
}

func (s *Service) AvailablePlants(ctx context.Context) ([]*catalogdomain.Plant, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.AvailablePlants")
	defer span.End()

	result, err := s.inner.AvailablePlants(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list available plants")
	}
	span.SetAttributes(attribute.Int("plants.count", len(result)))
	return result, nil
}

func (s *Service) LowStockPlants(ctx context.Context, threshold int) ([]*catalogdomain.Plant, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.LowStockPlants",
		trace.WithAttributes(attribute.Int("stock.threshold", threshold)))
	defer span.End()

	result, err := s.inner.LowStockPlants(ctx, threshold)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list low stock plants")
	}
	span.SetAttributes(attribute.Int("plants.count", len(result)))
	return result, nil
}

func (s *Service) SetPlantQuantity(ctx context.Context, id string, quantity int) (*catalogdomain.Plant, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.SetPlantQuantity",
		trace.WithAttributes(attribute.String("plant.id", id), attribute.Int("stock.quantity", quantity)))
	defer span.End()

	result, err := s.inner.SetPlantQuantity(ctx, id, quantity)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to set plant quantity",
			slog.String("plant_id", id), slog.Int("quantity", quantity))
	}
	s.logInfo(ctx, "plant quantity set",
		slog.String("plant_id", result.ID), slog.Int("quantity", result.Quantity))
	return result, nil
}

func (s *Service) InventoryReport(ctx context.Context, threshold int) (*catalogports.InventoryReport, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.InventoryReport",
		trace.WithAttributes(attribute.Int("stock.threshold", threshold)))
	defer span.End()

	report, err := s.inner.InventoryReport(ctx, threshold)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to build inventory report")
	}
	span.SetAttributes(
		attribute.Int("report.total_plants", report.TotalPlants),
		attribute.Int("report.low_stock", len(report.LowStock)))
	return report, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

type serviceMetrics struct {
	plantsSaved metric.Int64Counter
	searches    metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	plantsSaved, _ := m.Int64Counter("catalog.service.plants_saved",
		metric.WithDescription("Number of plant create/update operations"))
	searches, _ := m.Int64Counter("catalog.service.searches",
		metric.WithDescription("Number of catalog searches"))
	return serviceMetrics{plantsSaved: plantsSaved, searches: searches}
}

func (m serviceMetrics) recordSaved(ctx context.Context, op string) {
	if m.plantsSaved != nil {
		m.plantsSaved.Add(ctx, 1, metric.WithAttributes(attribute.String("catalog.op", op)))
	}
}

func (m serviceMetrics) recordSearch(ctx context.Context) {
	if m.searches != nil {
		m.searches.Add(ctx, 1)
	}
}
