package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
)

type httpClient struct {
	baseURL string
	hc      *http.Client
	tokens  *tokenCache
}

// NewHTTP builds the gateway adapter. The token cache is owned by the adapter;
// tests substitute the whole Client interface instead.
func NewHTTP(baseURL, clientID, clientSecret string, hc *http.Client) Client {
	base := strings.TrimRight(baseURL, "/")
	return &httpClient{
		baseURL: base,
		hc:      hc,
		tokens:  newTokenCache(base, clientID, clientSecret, hc),
	}
}

func (r *httpClient) CreateOrder(ctx context.Context, req CreateOrderReq) (*CreateOrderResp, error) {
	body := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []any{
			map[string]any{
				"amount": map[string]any{
					"currency_code": "USD",
					"value":         req.Amount.StringFixed(2),
				},
				"description": req.Description,
			},
		},
		"payment_source": map[string]any{
			"paypal": map[string]any{
				"experience_context": map[string]any{
					"return_url":          req.ReturnURL,
					"cancel_url":          req.CancelURL,
					"user_action":         "PAY_NOW",
					"shipping_preference": "NO_SHIPPING",
				},
			},
		},
	}

	var out struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Links  []struct {
			Href string `json:"href"`
			Rel  string `json:"rel"`
		} `json:"links"`
	}
	if err := r.do(ctx, http.MethodPost, "/v2/checkout/orders", body, &out); err != nil {
		return nil, gatewayErr("create order", err)
	}
	if out.ID == "" {
		return nil, &GatewayError{Op: "create order", Reason: "empty order id"}
	}

	approve := ""
	for _, l := range out.Links {
		if l.Rel == "payer-action" {
			approve = l.Href
			break
		}
	}
	if approve == "" {
		return nil, &GatewayError{Op: "create order", Reason: "approval link missing"}
	}

	return &CreateOrderResp{OrderID: out.ID, Status: out.Status, ApproveURL: approve}, nil
}

func (r *httpClient) CaptureOrder(ctx context.Context, orderID string) (*CaptureResp, error) {
	var out struct {
		Status        string `json:"status"`
		PurchaseUnits []struct {
			Payments struct {
				Captures []struct {
					Amount struct {
						Value string `json:"value"`
					} `json:"amount"`
				} `json:"captures"`
			} `json:"payments"`
		} `json:"purchase_units"`
	}
	err := r.do(ctx, http.MethodPost, "/v2/checkout/orders/"+orderID+"/capture", map[string]any{}, &out)
	if err != nil {
		var ce *CredentialError
		if errors.As(err, &ce) {
			return nil, err
		}
		var se *statusError
		if errors.As(err, &se) {
			return nil, &CaptureError{API: true, Name: se.Name, Message: se.Message}
		}
		return nil, &CaptureError{Err: err}
	}

	res := &CaptureResp{Status: out.Status}
	if len(out.PurchaseUnits) > 0 {
		caps := out.PurchaseUnits[0].Payments.Captures
		if len(caps) > 0 && caps[0].Amount.Value != "" {
			amt, err := decimal.NewFromString(caps[0].Amount.Value)
			if err != nil {
				return nil, &CaptureError{Err: fmt.Errorf("bad captured amount %q: %w", caps[0].Amount.Value, err)}
			}
			res.Amount = amt
		}
	}
	return res, nil
}

func (r *httpClient) CreatePayout(ctx context.Context, req PayoutReq) (*PayoutResp, error) {
	body := map[string]any{
		"sender_batch_header": map[string]any{
			"sender_batch_id": req.SenderBatchID,
			"email_subject":   "You have a payout!",
			"email_message":   "You have received a payout from AltBucks. Thanks for using our service!",
		},
		"items": []any{
			map[string]any{
				"recipient_type": "EMAIL",
				"amount": map[string]any{
					"value":    req.Amount.StringFixed(2),
					"currency": "USD",
				},
				"note":                  "Thanks for using our platform!",
				"sender_item_id":        "item_" + req.SenderBatchID,
				"receiver":              req.ReceiverEmail,
				"notification_language": "en-US",
			},
		},
	}

	var out struct {
		BatchHeader *struct {
			PayoutBatchID string `json:"payout_batch_id"`
			BatchStatus   string `json:"batch_status"`
		} `json:"batch_header"`
	}
	if err := r.do(ctx, http.MethodPost, "/v1/payments/payouts", body, &out); err != nil {
		return nil, gatewayErr("create payout", err)
	}
	if out.BatchHeader == nil || out.BatchHeader.PayoutBatchID == "" {
		return nil, &GatewayError{Op: "create payout", Reason: "batch header missing"}
	}

	return &PayoutResp{
		PayoutBatchID: out.BatchHeader.PayoutBatchID,
		BatchStatus:   out.BatchHeader.BatchStatus,
	}, nil
}

func (r *httpClient) GetPayoutBatch(ctx context.Context, batchID string) (string, error) {
	var out struct {
		BatchHeader *struct {
			BatchStatus string `json:"batch_status"`
		} `json:"batch_header"`
	}
	if err := r.do(ctx, http.MethodGet, "/v1/payments/payouts/"+batchID, nil, &out); err != nil {
		return "", gatewayErr("get payout batch", err)
	}
	if out.BatchHeader == nil || out.BatchHeader.BatchStatus == "" {
		return "", &GatewayError{Op: "get payout batch", Reason: "batch header missing"}
	}
	return out.BatchHeader.BatchStatus, nil
}

// statusError carries a non-2xx response with the processor's error fields.
type statusError struct {
	Code    int
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d: %s: %s", e.Code, e.Name, e.Message)
}

func (r *httpClient) do(ctx context.Context, method, path string, body, out any) error {
	token, err := r.tokens.Token(ctx)
	if err != nil {
		return err
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		se := &statusError{Code: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(se)
		return se
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func gatewayErr(op string, err error) error {
	var ce *CredentialError
	if errors.As(err, &ce) {
		return err
	}
	var se *statusError
	if errors.As(err, &se) {
		return &GatewayError{Op: op, Status: se.Code, Reason: se.Name + ": " + se.Message}
	}
	return &GatewayError{Op: op, Reason: "request failed", Err: err}
}
