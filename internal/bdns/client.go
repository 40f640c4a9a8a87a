// Package bdns talks to the public Spanish grant announcement API
// (Base de Datos Nacional de Subvenciones).
package bdns

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultBaseURL = "https://www.infosubvenciones.es/bdnstrans"

// portal identifier required by every BDNS endpoint.
const portal = "GE"

// Summary is one row of a paginated search result.
type Summary struct {
	ID                 int64  `json:"id"`
	NumeroConvocatoria string `json:"numeroConvocatoria"`
	Descripcion        string `json:"descripcion"`
}

// Detail is the full announcement record.
type Detail struct {
	ID                          int64   `json:"id"`
	CodigoBDNS                  string  `json:"codigoBDNS"`
	Descripcion                 string  `json:"descripcion"`
	DescripcionFinalidad        string  `json:"descripcionFinalidad"`
	DescripcionBasesReguladoras string  `json:"descripcionBasesReguladoras"`
	PresupuestoTotal            float64 `json:"presupuestoTotal"`
	Organo                      *Organo `json:"organo"`
	FechaRecepcion              string  `json:"fechaRecepcion"`
	FechaInicioSolicitud        string  `json:"fechaInicioSolicitud"`
	FechaFinSolicitud           string  `json:"fechaFinSolicitud"`
	URLBasesReguladoras         string  `json:"urlBasesReguladoras"`
}

// Organo identifies the issuing body at its hierarchy levels.
type Organo struct {
	Nivel1 string `json:"nivel1"`
	Nivel2 string `json:"nivel2"`
	Nivel3 string `json:"nivel3"`
}

// IssuingBody returns the second hierarchy level, the one shown to users.
func (d *Detail) IssuingBody() string {
	if d.Organo == nil {
		return ""
	}
	return d.Organo.Nivel2
}

// Client queries the BDNS REST API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client; baseURL falls back to the public endpoint.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Search returns announcement summaries matching the keyword, newest first.
func (c *Client) Search(ctx context.Context, keyword string, pageSize int) ([]Summary, error) {
	params := url.Values{}
	params.Set("vpd", portal)
	params.Set("descripcion", keyword)
	params.Set("descripcionTipoBusqueda", "1")
	params.Set("page", "0")
	params.Set("pageSize", strconv.Itoa(pageSize))
	params.Set("order", "numeroConvocatoria")
	params.Set("direccion", "desc")

	var result struct {
		Content []Summary `json:"content"`
	}
	if err := c.get(ctx, "/api/convocatorias/busqueda", params, &result); err != nil {
		return nil, err
	}
	return result.Content, nil
}

// Detail fetches the full record for one announcement number.
func (c *Client) Detail(ctx context.Context, numConv string) (*Detail, error) {
	params := url.Values{}
	params.Set("numConv", numConv)
	params.Set("vpd", portal)

	var detail Detail
	if err := c.get(ctx, "/api/convocatorias", params, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bdns %s: unexpected status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
