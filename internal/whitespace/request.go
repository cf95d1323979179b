package whitespace

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Request bounds enforced by the service.
const (
	MaxLimit           = 2000
	MaxNeighbors       = 50
	MaxLayoutNeighbors = 50
)

var validate = validator.New()

// GraphRequest asks the service for a whitespace graph.
type GraphRequest struct {
	DateFrom        string   `json:"date_from,omitempty" yaml:"date_from" validate:"omitempty,datetime=2006-01-02"`
	DateTo          string   `json:"date_to,omitempty" yaml:"date_to" validate:"omitempty,datetime=2006-01-02"`
	Neighbors       int      `json:"neighbors" yaml:"neighbors" validate:"min=1,max=50"`
	Resolution      float64  `json:"resolution" yaml:"resolution" validate:"gt=0"`
	Alpha           float64  `json:"alpha" yaml:"alpha" validate:"gte=0"`
	Beta            float64  `json:"beta" yaml:"beta" validate:"gte=0"`
	Limit           int      `json:"limit" yaml:"limit" validate:"min=1,max=2000"`
	FocusKeywords   []string `json:"focus_keywords" yaml:"focus_keywords" validate:"dive,required"`
	FocusCPCLike    []string `json:"focus_cpc_like" yaml:"focus_cpc_like" validate:"dive,required"`
	Layout          bool     `json:"layout" yaml:"layout"`
	LayoutMinDist   float64  `json:"layout_min_dist" yaml:"layout_min_dist" validate:"gte=0,lte=1"`
	LayoutNeighbors int      `json:"layout_neighbors" yaml:"layout_neighbors" validate:"min=2,max=50"`
	Debug           bool     `json:"debug" yaml:"debug"`
}

// DefaultGraphRequest returns the service defaults.
func DefaultGraphRequest() GraphRequest {
	return GraphRequest{
		Neighbors:       15,
		Resolution:      0.5,
		Alpha:           0.8,
		Beta:            0.5,
		Limit:           MaxLimit,
		FocusKeywords:   []string{},
		FocusCPCLike:    []string{},
		Layout:          true,
		LayoutMinDist:   0.1,
		LayoutNeighbors: 25,
	}
}

// Validate checks the request against the service bounds.
func (r *GraphRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if r.DateFrom != "" && r.DateTo != "" && r.DateFrom > r.DateTo {
		return fmt.Errorf("%w: date_from %s is after date_to %s", ErrInvalidRequest, r.DateFrom, r.DateTo)
	}
	return nil
}
