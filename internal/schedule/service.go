package schedule

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Arwin-j/rouTU/internal/gemini"
)

// ModelClient is the slice of the Gemini client the pipeline needs.
type ModelClient interface {
	GenerateContent(ctx context.Context, contents []gemini.Content) (string, error)
}

// Service runs the extraction pipeline: prompt construction, one model
// call, and normalization of whatever came back.
type Service struct {
	model  ModelClient
	logger *zap.Logger
	tracer trace.Tracer
}

// NewService creates the extraction service.
func NewService(model ModelClient, logger *zap.Logger) *Service {
	return &Service{
		model:  model,
		logger: logger,
		tracer: otel.Tracer("schedule"),
	}
}

// Extract converts one schedule input into normalized class entries.
// Invalid input and provider failures propagate to the caller; unparsable
// model output degrades to an empty result instead.
func (s *Service) Extract(ctx context.Context, req ExtractionRequest) ([]ClassEntry, error) {
	ctx, span := s.tracer.Start(ctx, "ScheduleService.Extract")
	defer span.End()

	contents, err := BuildPrompt(req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	raw, err := s.model.GenerateContent(ctx, contents)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	entries, err := Normalize(raw)
	if err != nil {
		span.RecordError(err)
		s.logger.Warn("model output could not be parsed, returning no classes",
			zap.String("modality", string(req.Modality)),
			zap.Error(err),
		)
		return []ClassEntry{}, nil
	}

	s.logger.Info("schedule extracted",
		zap.String("modality", string(req.Modality)),
		zap.Int("classes", len(entries)),
	)
	return entries, nil
}
