package broker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	boterr "TradeSentry/internal/errors"
	"TradeSentry/internal/model"
)

// AlpacaBroker implements Broker against the Alpaca Trading API v2.
type AlpacaBroker struct {
	BaseURL   string
	APIKey    string
	APISecret string
	Client    *http.Client
}

// NewAlpacaBroker creates a trading client sharing the application-wide
// http.Client.
func NewAlpacaBroker(baseURL, apiKey, apiSecret string, client *http.Client) *AlpacaBroker {
	return &AlpacaBroker{
		BaseURL:   baseURL,
		APIKey:    apiKey,
		APISecret: apiSecret,
		Client:    client,
	}
}

func (b *AlpacaBroker) Name() string { return "alpaca" }

func (b *AlpacaBroker) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, &boterr.TransportError{Op: "marshal " + path, Err: err}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.BaseURL+path, body)
	if err != nil {
		return 0, nil, &boterr.TransportError{Op: method + " " + path, Err: err}
	}
	req.Header.Set("APCA-API-KEY-ID", b.APIKey)
	req.Header.Set("APCA-API-SECRET-KEY", b.APISecret)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.Client.Do(req)
	if err != nil {
		return 0, nil, &boterr.TransportError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &boterr.TransportError{Op: "read " + path, Err: err}
	}
	return resp.StatusCode, respBody, nil
}

// Alpaca encodes all numeric fields as strings.
type alpacaPosition struct {
	Symbol        string `json:"symbol"`
	Qty           string `json:"qty"`
	AvgEntryPrice string `json:"avg_entry_price"`
}

func (b *AlpacaBroker) GetOpenPosition(ctx context.Context, symbol string) (*model.Position, error) {
	status, body, err := b.do(ctx, http.MethodGet, "/v2/positions/"+url.PathEscape(symbol), nil)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusOK:
	case status == http.StatusNotFound:
		// Well-defined "no open position" outcome.
		return nil, nil
	default:
		return nil, &boterr.TransportError{Op: "get position " + symbol, Err: fmt.Errorf("status %d: %s", status, string(body))}
	}

	var pos alpacaPosition
	if err := json.Unmarshal(body, &pos); err != nil {
		return nil, &boterr.TransportError{Op: "decode position " + symbol, Err: err}
	}
	qty, err := strconv.ParseFloat(pos.Qty, 64)
	if err != nil {
		return nil, &boterr.TransportError{Op: "parse position qty " + symbol, Err: err}
	}
	entry, _ := strconv.ParseFloat(pos.AvgEntryPrice, 64)
	return &model.Position{Symbol: pos.Symbol, Qty: qty, AvgEntryPrice: entry}, nil
}

func (b *AlpacaBroker) GetCashAvailable(ctx context.Context) (float64, error) {
	status, body, err := b.do(ctx, http.MethodGet, "/v2/account", nil)
	if err != nil {
		return 0, err
	}
	if status != http.StatusOK {
		return 0, &boterr.TransportError{Op: "get account", Err: fmt.Errorf("status %d: %s", status, string(body))}
	}
	var acct struct {
		Cash string `json:"cash"`
	}
	if err := json.Unmarshal(body, &acct); err != nil {
		return 0, &boterr.TransportError{Op: "decode account", Err: err}
	}
	cash, err := strconv.ParseFloat(acct.Cash, 64)
	if err != nil {
		return 0, &boterr.TransportError{Op: "parse account cash", Err: err}
	}
	return cash, nil
}

func (b *AlpacaBroker) IsMarketOpen(ctx context.Context) (bool, error) {
	status, body, err := b.do(ctx, http.MethodGet, "/v2/clock", nil)
	if err != nil {
		return false, err
	}
	if status != http.StatusOK {
		return false, &boterr.TransportError{Op: "get clock", Err: fmt.Errorf("status %d: %s", status, string(body))}
	}
	var clock struct {
		IsOpen bool `json:"is_open"`
	}
	if err := json.Unmarshal(body, &clock); err != nil {
		return false, &boterr.TransportError{Op: "decode clock", Err: err}
	}
	return clock.IsOpen, nil
}

type alpacaOrderRequest struct {
	Symbol        string            `json:"symbol"`
	Side          string            `json:"side"`
	Type          string            `json:"type"`
	TimeInForce   string            `json:"time_in_force"`
	Notional      string            `json:"notional,omitempty"`
	Qty           string            `json:"qty,omitempty"`
	ClientOrderID string            `json:"client_order_id,omitempty"`
	OrderClass    string            `json:"order_class,omitempty"`
	TakeProfit    *alpacaTakeProfit `json:"take_profit,omitempty"`
	StopLoss      *alpacaStopLoss   `json:"stop_loss,omitempty"`
}

type alpacaTakeProfit struct {
	LimitPrice string `json:"limit_price"`
}

type alpacaStopLoss struct {
	StopPrice string `json:"stop_price"`
}

func (b *AlpacaBroker) SubmitOrder(ctx context.Context, intent *model.OrderIntent) (*model.OrderReceipt, error) {
	req := alpacaOrderRequest{
		Symbol:        intent.Symbol,
		Side:          string(intent.Side),
		Type:          "market",
		TimeInForce:   "day",
		ClientOrderID: intent.ClientOrderID,
	}
	switch {
	case intent.Qty > 0:
		req.Qty = strconv.FormatFloat(intent.Qty, 'f', -1, 64)
	case intent.Notional > 0:
		req.Notional = fmt.Sprintf("%.2f", intent.Notional)
	default:
		return nil, &boterr.InvariantViolation{Msg: "order intent with neither qty nor notional: " + intent.Symbol}
	}
	if intent.Bracket() {
		// Bracket orders must be quantity-sized on Alpaca; the risk sizer
		// converts to shares whenever legs are attached.
		req.OrderClass = "bracket"
		if intent.TakeProfit > 0 {
			req.TakeProfit = &alpacaTakeProfit{LimitPrice: fmt.Sprintf("%.2f", intent.TakeProfit)}
		}
		if intent.StopLoss > 0 {
			req.StopLoss = &alpacaStopLoss{StopPrice: fmt.Sprintf("%.2f", intent.StopLoss)}
		}
	}

	status, body, err := b.do(ctx, http.MethodPost, "/v2/orders", req)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusOK, status == http.StatusCreated:
	case status == http.StatusForbidden, status == http.StatusUnprocessableEntity, status == http.StatusBadRequest:
		// The broker understood and refused: buying power, halted symbol,
		// fractional/bracket restrictions and the like.
		return nil, &boterr.OrderRejectedError{Symbol: intent.Symbol, Status: status, Reason: string(body)}
	default:
		return nil, &boterr.TransportError{Op: "submit order " + intent.Symbol, Err: fmt.Errorf("status %d: %s", status, string(body))}
	}

	var placed struct {
		ID            string    `json:"id"`
		ClientOrderID string    `json:"client_order_id"`
		Symbol        string    `json:"symbol"`
		Side          string    `json:"side"`
		Status        string    `json:"status"`
		SubmittedAt   time.Time `json:"submitted_at"`
	}
	if err := json.Unmarshal(body, &placed); err != nil {
		return nil, &boterr.TransportError{Op: "decode order " + intent.Symbol, Err: err}
	}
	return &model.OrderReceipt{
		OrderID:       placed.ID,
		ClientOrderID: placed.ClientOrderID,
		Symbol:        placed.Symbol,
		Side:          model.OrderSide(placed.Side),
		Status:        placed.Status,
		SubmittedAt:   placed.SubmittedAt,
	}, nil
}
