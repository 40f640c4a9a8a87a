package bdns

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchParsesPagedResult(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/convocatorias/busqueda", r.URL.Path)
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"content": [
				{"id": 1, "numeroConvocatoria": "841234", "descripcion": "Ayudas PYME digitalización"},
				{"id": 2, "numeroConvocatoria": "841233", "descripcion": "Subvenciones I+D"}
			],
			"totalElements": 2
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	summaries, err := client.Search(context.Background(), "PYME", 50)
	require.NoError(t, err)

	require.Len(t, summaries, 2)
	assert.Equal(t, "841234", summaries[0].NumeroConvocatoria)
	assert.Equal(t, "Ayudas PYME digitalización", summaries[0].Descripcion)

	assert.Equal(t, "GE", gotQuery["vpd"])
	assert.Equal(t, "PYME", gotQuery["descripcion"])
	assert.Equal(t, "1", gotQuery["descripcionTipoBusqueda"])
	assert.Equal(t, "50", gotQuery["pageSize"])
	assert.Equal(t, "numeroConvocatoria", gotQuery["order"])
	assert.Equal(t, "desc", gotQuery["direccion"])
}

func TestDetailParsesAnnouncement(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/convocatorias", r.URL.Path)
		require.Equal(t, "841234", r.URL.Query().Get("numConv"))
		require.Equal(t, "GE", r.URL.Query().Get("vpd"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": 1,
			"codigoBDNS": "841234",
			"descripcion": "Ayudas PYME digitalización",
			"descripcionFinalidad": "Comercio",
			"presupuestoTotal": 1500000.5,
			"organo": {"nivel1": "Estado", "nivel2": "Ministerio de Industria", "nivel3": "Secretaría PYME"},
			"fechaRecepcion": "2026-08-01",
			"urlBasesReguladoras": "https://example.org/bases"
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	detail, err := client.Detail(context.Background(), "841234")
	require.NoError(t, err)

	assert.Equal(t, "841234", detail.CodigoBDNS)
	assert.Equal(t, 1500000.5, detail.PresupuestoTotal)
	assert.Equal(t, "Ministerio de Industria", detail.IssuingBody())
	assert.Equal(t, "2026-08-01", detail.FechaRecepcion)
}

func TestIssuingBodyWithoutOrgano(t *testing.T) {
	assert.Empty(t, (&Detail{}).IssuingBody())
}

func TestNonOKStatusIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)

	_, err := client.Search(context.Background(), "PYME", 10)
	assert.ErrorContains(t, err, "status 502")

	_, err = client.Detail(context.Background(), "841234")
	assert.ErrorContains(t, err, "status 502")
}
