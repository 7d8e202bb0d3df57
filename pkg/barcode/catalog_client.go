package barcode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const DefaultCatalogURL = "https://world.openfoodfacts.org/api/v0/product"

// ErrNotInCatalog is returned when the catalog answers but does not know
// the code.
var ErrNotInCatalog = errors.New("product not in catalog")

// CatalogProduct holds the fields read from a catalog entry. Empty strings
// mean unknown.
type CatalogProduct struct {
	Name     string
	Supplier string
	Category string
}

type Catalog interface {
	Lookup(ctx context.Context, code string) (CatalogProduct, error)
}

type openFoodFactsClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewCatalogClient(baseURL string, timeout time.Duration) Catalog {
	if baseURL == "" {
		baseURL = DefaultCatalogURL
	}
	return &openFoodFactsClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type offResponse struct {
	Status  int         `json:"status"`
	Product *offProduct `json:"product"`
}

type offProduct struct {
	ProductName         string          `json:"product_name"`
	ProductNameEn       string          `json:"product_name_en"`
	Brands              string          `json:"brands"`
	Brand               string          `json:"brand"`
	Categories          json.RawMessage `json:"categories"`
	CategoriesHierarchy []string        `json:"categories_hierarchy"`
}

func (c *openFoodFactsClient) Lookup(ctx context.Context, code string) (CatalogProduct, error) {
	endpoint := fmt.Sprintf("%s/%s.json", c.baseURL, url.PathEscape(code))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return CatalogProduct{}, errors.Wrap(err, "build catalog request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return CatalogProduct{}, errors.Wrap(err, "catalog request")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return CatalogProduct{}, ErrNotInCatalog
	}
	if resp.StatusCode != http.StatusOK {
		return CatalogProduct{}, errors.Errorf("catalog returned status %d", resp.StatusCode)
	}

	var body offResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return CatalogProduct{}, errors.Wrap(err, "decode catalog response")
	}
	if body.Status != 1 || body.Product == nil {
		return CatalogProduct{}, ErrNotInCatalog
	}

	p := body.Product
	return CatalogProduct{
		Name:     firstNonEmpty(p.ProductName, p.ProductNameEn),
		Supplier: firstNonEmpty(p.Brands, p.Brand),
		Category: firstNonEmpty(categoryOf(p.Categories), first(p.CategoriesHierarchy)),
	}, nil
}

// categoryOf accepts the categories field either as a comma separated
// string or as a list, in which case the first entry is used.
func categoryOf(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return first(list)
	}
	return ""
}

func first(list []string) string {
	if len(list) == 0 {
		return ""
	}
	return strings.TrimSpace(list[0])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
