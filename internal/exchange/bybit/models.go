package bybit

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	bybit_api "github.com/bybit-exchange/bybit.go.api"

	boterrors "github.com/ducminhle1904/rsi-tier-bot/internal/errors"
)

// KlineResult is the "result" object of /v5/market/kline
type KlineResult struct {
	Symbol   string     `json:"symbol"`
	Category string     `json:"category"`
	List     [][]string `json:"list"`
}

// TickerResult is the "result" object of /v5/market/tickers
type TickerResult struct {
	Category string `json:"category"`
	List     []struct {
		Symbol    string `json:"symbol"`
		LastPrice string `json:"lastPrice"`
	} `json:"list"`
}

// OrderResult is the "result" object of /v5/order/create
type OrderResult struct {
	OrderID     string `json:"orderId"`
	OrderLinkID string `json:"orderLinkId"`
}

// decodeResult checks the retCode and unmarshals the result into out
func decodeResult(operation string, response interface{}, out interface{}) error {
	serverResp, ok := response.(*bybit_api.ServerResponse)
	if !ok || serverResp == nil {
		return boterrors.NewBotError(boterrors.ErrorCategoryExchange, "bybit", operation,
			fmt.Sprintf("unexpected response type %T", response))
	}

	if serverResp.RetCode != 0 {
		return apiError(operation, serverResp.RetCode, serverResp.RetMsg)
	}

	resultBytes, err := json.Marshal(serverResp.Result)
	if err != nil {
		return boterrors.NewDataError("bybit", operation, err)
	}
	if err := json.Unmarshal(resultBytes, out); err != nil {
		return boterrors.NewDataError("bybit", operation, err)
	}
	return nil
}

func parseFloat64(s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty number")
	}
	return strconv.ParseFloat(s, 64)
}

// parseTimestamp converts milliseconds timestamp to time.Time
func parseTimestamp(ts string) (time.Time, error) {
	msec, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(msec).UTC(), nil
}
