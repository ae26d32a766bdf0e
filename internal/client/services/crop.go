package services

import (
	"context"
	"fmt"
	"math"
	"net/http"

	"github.com/agrisonic/agrisonic/internal/client/client"
	"github.com/agrisonic/agrisonic/internal/client/models"
	"github.com/agrisonic/agrisonic/internal/common"
)

// MaxPH is the top of the pH scale.
const MaxPH = 14.0

type CropClient struct {
	api Caller
}

func NewCropClient(api Caller) *CropClient {
	return &CropClient{api: api}
}

// Predict ranks crops by suitability for the given soil readings.
func (c *CropClient) Predict(ctx context.Context, r models.SoilReading) ([]models.CropPrediction, error) {
	if err := validateSoil(r); err != nil {
		return nil, err
	}

	resp, err := call(ctx, c.api, client.Request{Method: http.MethodPost, Path: PathCropPrediction, Body: r}, nil)
	if err != nil {
		return nil, err
	}

	var data models.CropPredictionData
	if err := client.Decode(resp, &data); err != nil {
		return nil, fmt.Errorf("crop prediction: %w", err)
	}
	if data.Predictions == nil {
		return nil, fmt.Errorf("crop prediction: %w: no predictions", common.ErrMalformedResponse)
	}
	return data.Predictions, nil
}

func validateSoil(r models.SoilReading) error {
	for _, f := range r.Fields() {
		if math.IsNaN(f.Value) || math.IsInf(f.Value, 0) {
			return common.NewValidationError(f.Name, "must be a finite number")
		}
		if f.Value < 0 {
			return common.NewValidationError(f.Name, "must not be negative")
		}
	}
	if r.PH > MaxPH {
		return common.NewValidationError("ph", "must not exceed 14")
	}
	return nil
}
