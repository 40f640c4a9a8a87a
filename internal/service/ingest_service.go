package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/grant-notifier/internal/bdns"
	"github.com/spec-kit/grant-notifier/internal/domain"
	"github.com/spec-kit/grant-notifier/internal/events"
	"github.com/spec-kit/grant-notifier/internal/repository"
)

// detailThrottle spaces detail fetches so the public API is not hammered.
const detailThrottle = 300 * time.Millisecond

// AnnouncementSource lists and resolves grant announcements.
type AnnouncementSource interface {
	Search(ctx context.Context, keyword string, pageSize int) ([]bdns.Summary, error)
	Detail(ctx context.Context, numConv string) (*bdns.Detail, error)
}

// TextEmbedder produces the vector stored alongside each grant.
type TextEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// IngestSummary reports what one ingest run did.
type IngestSummary struct {
	Found  int
	Stored int
	Failed int
}

// IngestService pulls announcements from BDNS, embeds their index text
// and upserts them into the corpus.
type IngestService struct {
	source     AnnouncementSource
	embedder   TextEmbedder
	grants     repository.GrantRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// IngestDependencies bundles collaborators for ingestion.
type IngestDependencies struct {
	Source     AnnouncementSource
	Embedder   TextEmbedder
	Grants     repository.GrantRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewIngestService constructs the service.
func NewIngestService(deps IngestDependencies) *IngestService {
	return &IngestService{
		source:     deps.Source,
		embedder:   deps.Embedder,
		grants:     deps.Grants,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// Run searches announcements for the keyword and stores each one. A
// failing announcement is logged and skipped; the run continues.
func (s *IngestService) Run(ctx context.Context, keyword string, pageSize int) (*IngestSummary, error) {
	summaries, err := s.source.Search(ctx, keyword, pageSize)
	if err != nil {
		return nil, err
	}

	summary := &IngestSummary{Found: len(summaries)}
	s.logger.Info("ingest started",
		zap.String("keyword", keyword),
		zap.Int("found", summary.Found))

	for i, item := range summaries {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}
		if i > 0 {
			time.Sleep(detailThrottle)
		}

		if err := s.ingestOne(ctx, item.NumeroConvocatoria); err != nil {
			summary.Failed++
			s.logger.Warn("announcement ingest failed",
				zap.String("num_conv", item.NumeroConvocatoria), zap.Error(err))
			continue
		}
		summary.Stored++
	}

	s.logger.Info("ingest finished",
		zap.Int("stored", summary.Stored),
		zap.Int("failed", summary.Failed))
	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.New(events.EventGrantsIngested, "",
			events.GrantsIngestedPayload{Keyword: keyword, Stored: summary.Stored, Failed: summary.Failed}))
	}
	return summary, nil
}

func (s *IngestService) ingestOne(ctx context.Context, numConv string) error {
	detail, err := s.source.Detail(ctx, numConv)
	if err != nil {
		return err
	}

	grant := &domain.Grant{
		BDNSCode:         detail.CodigoBDNS,
		Title:            detail.Descripcion,
		Purpose:          detail.DescripcionFinalidad,
		LegalBasis:       detail.DescripcionBasesReguladoras,
		Budget:           detail.PresupuestoTotal,
		IssuingBody:      detail.IssuingBody(),
		ReceivedAt:       detail.FechaRecepcion,
		ApplicationOpen:  detail.FechaInicioSolicitud,
		ApplicationClose: detail.FechaFinSolicitud,
		URL:              detail.URLBasesReguladoras,
	}
	if grant.BDNSCode == "" {
		grant.BDNSCode = numConv
	}

	embedding, err := s.embedder.Embed(ctx, grant.IndexText())
	if err != nil {
		return err
	}
	grant.Embedding = embedding

	return s.grants.Upsert(ctx, grant)
}
