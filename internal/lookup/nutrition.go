package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/fittrack/internal/errs"
	"github.com/and161185/fittrack/internal/model"
)

// DefaultNutritionURL is the OpenFoodFacts root.
const DefaultNutritionURL = "https://world.openfoodfacts.org"

// OpenFoodFacts searches products and takes the best (first) match.
type OpenFoodFacts struct {
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

// NewOpenFoodFacts builds a client. An empty baseURL uses DefaultNutritionURL.
func NewOpenFoodFacts(baseURL string, timeout time.Duration, log *zap.Logger) *OpenFoodFacts {
	if baseURL == "" {
		baseURL = DefaultNutritionURL
	}
	return &OpenFoodFacts{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newClient(timeout),
		log:     log,
	}
}

// kcalValue decodes an energy value sent either as a number or as a numeric
// string. null and "" leave it unset.
type kcalValue struct {
	v     float64
	valid bool
}

func (k *kcalValue) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("energy value %q: %w", s, err)
		}
		k.v, k.valid = f, true
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	k.v, k.valid = f, true
	return nil
}

type searchResponse struct {
	Products []struct {
		ProductName string `json:"product_name"`
		Nutriments  struct {
			EnergyKcal100g kcalValue `json:"energy-kcal_100g"`
		} `json:"nutriments"`
	} `json:"products"`
}

// Lookup returns nutrition facts for the product, or false when there is no
// usable match. A match without an energy value counts as no match.
func (o *OpenFoodFacts) Lookup(ctx context.Context, product string) (*model.FoodInfo, bool) {
	info, err := o.fetch(ctx, product)
	if err != nil {
		o.log.Warn("nutrition lookup failed", zap.String("product", product), zap.Error(err))
		return nil, false
	}
	if info == nil {
		o.log.Debug("nutrition lookup: no match", zap.String("product", product))
		return nil, false
	}
	return info, true
}

func (o *OpenFoodFacts) fetch(ctx context.Context, product string) (*model.FoodInfo, error) {
	q := url.Values{}
	q.Set("action", "process")
	q.Set("search_terms", product)
	q.Set("json", "true")
	q.Set("page_size", "1")

	var resp searchResponse
	if err := getJSON(ctx, o.client, o.baseURL+"/cgi/search.pl?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	if len(resp.Products) == 0 {
		return nil, nil
	}
	first := resp.Products[0]
	energy := first.Nutriments.EnergyKcal100g
	if !energy.valid {
		return nil, nil
	}
	kcal := energy.v
	if kcal < 0 {
		return nil, fmt.Errorf("negative energy value %v: %w", kcal, errs.ErrUnavailable)
	}
	name := first.ProductName
	if name == "" {
		name = product
	}
	return &model.FoodInfo{Name: name, CaloriesPer100g: kcal}, nil
}
