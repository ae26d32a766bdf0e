package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/agrisonic/agrisonic/internal/client/client"
	"github.com/agrisonic/agrisonic/internal/client/models"
	"github.com/agrisonic/agrisonic/internal/common"
)

// MarketQuery filters market prices. Zero values mean "no filter".
type MarketQuery struct {
	Market string
	Crop   string
	Limit  int
}

type MarketClient struct {
	api Caller
}

func NewMarketClient(api Caller) *MarketClient {
	return &MarketClient{api: api}
}

func (c *MarketClient) Prices(ctx context.Context, q MarketQuery) ([]models.MarketPrice, error) {
	if q.Limit < 0 {
		return nil, common.NewValidationError("limit", "must be positive")
	}

	params := url.Values{}
	if q.Market != "" {
		params.Set("market", q.Market)
	}
	if q.Crop != "" {
		params.Set("crop", q.Crop)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	resp, err := call(ctx, c.api, client.Request{Method: http.MethodGet, Path: PathMarketTrends, Query: params}, nil)
	if err != nil {
		return nil, err
	}

	var prices []models.MarketPrice
	if err := client.Decode(resp, &prices); err != nil {
		return nil, fmt.Errorf("market prices: %w", err)
	}
	return prices, nil
}
