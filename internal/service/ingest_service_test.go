package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/grant-notifier/internal/bdns"
	"github.com/spec-kit/grant-notifier/internal/domain"
	"github.com/spec-kit/grant-notifier/internal/events"
)

type fakeAnnouncementSource struct {
	summaries []bdns.Summary
	searchErr error
	details   map[string]*bdns.Detail
	detailErr map[string]error
}

func (f *fakeAnnouncementSource) Search(_ context.Context, _ string, _ int) ([]bdns.Summary, error) {
	return f.summaries, f.searchErr
}

func (f *fakeAnnouncementSource) Detail(_ context.Context, numConv string) (*bdns.Detail, error) {
	if err := f.detailErr[numConv]; err != nil {
		return nil, err
	}
	return f.details[numConv], nil
}

type fakeTextEmbedder struct {
	texts []string
}

func (f *fakeTextEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.texts = append(f.texts, text)
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakeGrantRepo struct {
	upserted []*domain.Grant
	err      error
}

func (f *fakeGrantRepo) Upsert(_ context.Context, grant *domain.Grant) error {
	if f.err != nil {
		return f.err
	}
	f.upserted = append(f.upserted, grant)
	return nil
}

func (f *fakeGrantRepo) ListEmbedded(context.Context) ([]*domain.Grant, error) { return nil, nil }

func (f *fakeGrantRepo) Count(context.Context) (int64, error) { return int64(len(f.upserted)), nil }

func newIngest(source AnnouncementSource, embedder TextEmbedder, repo *fakeGrantRepo) *IngestService {
	return NewIngestService(IngestDependencies{
		Source:     source,
		Embedder:   embedder,
		Grants:     repo,
		Dispatcher: events.NewInMemoryDispatcher(),
		Logger:     zap.NewNop(),
	})
}

func announcementDetail(code, title string) *bdns.Detail {
	return &bdns.Detail{
		CodigoBDNS:       code,
		Descripcion:      title,
		PresupuestoTotal: 1000,
		Organo:           &bdns.Organo{Nivel2: "Ministerio de Industria"},
	}
}

func TestIngestRunStoresEmbeddedGrants(t *testing.T) {
	source := &fakeAnnouncementSource{
		summaries: []bdns.Summary{
			{NumeroConvocatoria: "841234"},
			{NumeroConvocatoria: "841235"},
		},
		details: map[string]*bdns.Detail{
			"841234": announcementDetail("841234", "Ayudas PYME"),
			"841235": announcementDetail("841235", "Subvenciones I+D"),
		},
	}
	embedder := &fakeTextEmbedder{}
	repo := &fakeGrantRepo{}

	summary, err := newIngest(source, embedder, repo).Run(context.Background(), "PYME", 50)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Found)
	assert.Equal(t, 2, summary.Stored)
	assert.Zero(t, summary.Failed)

	require.Len(t, repo.upserted, 2)
	assert.Equal(t, "841234", repo.upserted[0].BDNSCode)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, repo.upserted[0].Embedding)

	// The embedded text is the rendered announcement, not the raw title.
	require.Len(t, embedder.texts, 2)
	assert.Contains(t, embedder.texts[0], "Título: Ayudas PYME")
	assert.Contains(t, embedder.texts[0], "Código BDNS: 841234")
}

func TestIngestRunSkipsFailingAnnouncements(t *testing.T) {
	source := &fakeAnnouncementSource{
		summaries: []bdns.Summary{
			{NumeroConvocatoria: "841234"},
			{NumeroConvocatoria: "841235"},
		},
		details:   map[string]*bdns.Detail{"841235": announcementDetail("841235", "Subvenciones I+D")},
		detailErr: map[string]error{"841234": errors.New("timeout")},
	}
	repo := &fakeGrantRepo{}

	summary, err := newIngest(source, &fakeTextEmbedder{}, repo).Run(context.Background(), "PYME", 50)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Stored)
	require.Len(t, repo.upserted, 1)
	assert.Equal(t, "841235", repo.upserted[0].BDNSCode)
}

func TestIngestRunFallsBackToAnnouncementNumber(t *testing.T) {
	source := &fakeAnnouncementSource{
		summaries: []bdns.Summary{{NumeroConvocatoria: "841234"}},
		details:   map[string]*bdns.Detail{"841234": {Descripcion: "Sin código"}},
	}
	repo := &fakeGrantRepo{}

	_, err := newIngest(source, &fakeTextEmbedder{}, repo).Run(context.Background(), "PYME", 50)
	require.NoError(t, err)

	require.Len(t, repo.upserted, 1)
	assert.Equal(t, "841234", repo.upserted[0].BDNSCode)
}

func TestIngestRunStopsOnSearchFailure(t *testing.T) {
	source := &fakeAnnouncementSource{searchErr: errors.New("bdns unavailable")}

	_, err := newIngest(source, &fakeTextEmbedder{}, &fakeGrantRepo{}).Run(context.Background(), "PYME", 50)
	assert.Error(t, err)
}
