package qikink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

var ErrNotConfigured = errors.New("qikink client not configured")

// トークンは毎回取りに行かない。期限5分前まで使い回す。
const tokenRefreshMargin = 5 * time.Minute

type Client struct {
	clientID     string
	clientSecret string
	apiBaseURL   string
	authURL      string
	httpc        *http.Client
	log          *slog.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time

	now func() time.Time // テストで差し替える
}

func New(clientID, clientSecret, apiBaseURL, authURL string, log *slog.Logger) *Client {
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		apiBaseURL:   apiBaseURL,
		authURL:      authURL,
		httpc: &http.Client{
			Transport: newRetryTransport(nil),
			Timeout:   30 * time.Second,
		},
		log: log,
		now: time.Now,
	}
}

func (c *Client) Configured() bool {
	return c.clientID != "" && c.clientSecret != ""
}

// Authenticate はトークンが無い・期限間近のときだけ再取得する
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && c.tokenExpiry.After(c.now().Add(tokenRefreshMargin)) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.httpc.Do(req)
	if err != nil {
		c.accessToken = ""
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		c.accessToken = ""
		return "", fmt.Errorf("qikink auth: unexpected status %d", res.StatusCode)
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(res.Body).Decode(&tok); err != nil {
		c.accessToken = ""
		return "", err
	}
	if tok.AccessToken == "" {
		c.accessToken = ""
		return "", errors.New("qikink auth: empty token")
	}
	if tok.ExpiresIn == 0 {
		tok.ExpiresIn = 3600
	}

	c.accessToken = tok.AccessToken
	// 実際の期限より1時間手前で切れた扱いにする
	c.tokenExpiry = c.now().Add(time.Duration(tok.ExpiresIn)*time.Second - time.Hour)

	c.log.Info("qikink token refreshed")
	return c.accessToken, nil
}

// フルフィルメントに渡す出荷ペイロード
type ShipmentRequest struct {
	OrderID         string         `json:"order_id"`
	CustomerEmail   string         `json:"customer_email"`
	ShippingAddress string         `json:"shipping_address"`
	ShippingCity    string         `json:"shipping_city"`
	ShippingState   string         `json:"shipping_state"`
	ShippingPincode string         `json:"shipping_pincode"`
	Items           []ShipmentItem `json:"items"`
	TotalAmount     int64          `json:"total_amount"`
}

type ShipmentItem struct {
	SKU      string `json:"sku"`
	Quantity int64  `json:"quantity"`
	Price    int64  `json:"price"`
}

// SubmitOrder は出荷依頼をPOSTし、先方の注文IDを返す。
func (c *Client) SubmitOrder(ctx context.Context, shipment ShipmentRequest) (string, error) {
	token, err := c.Authenticate(ctx)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(shipment)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBaseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return "", fmt.Errorf("qikink orders: unexpected status %d: %s", res.StatusCode, string(b))
	}

	var out struct {
		Status             string `json:"status"`
		FulfillmentOrderID string `json:"qikink_order_id"`
		Message            string `json:"message"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.Status != "success" || out.FulfillmentOrderID == "" {
		msg := out.Message
		if msg == "" {
			msg = "unknown qikink error"
		}
		return "", fmt.Errorf("qikink orders: %s", msg)
	}

	return out.FulfillmentOrderID, nil
}

type TrackingEvent struct {
	Status    string `json:"status"`
	Location  string `json:"location,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

type Tracking struct {
	TrackingNumber string          `json:"tracking_number"`
	Events         []TrackingEvent `json:"tracking_events"`
}

// 最新イベント（無ければnil）
func (t *Tracking) Latest() *TrackingEvent {
	if t == nil || len(t.Events) == 0 {
		return nil
	}
	return &t.Events[len(t.Events)-1]
}

// FetchTracking はベストエフォート。失敗はnilで返し、呼び出し側を止めない。
func (c *Client) FetchTracking(ctx context.Context, fulfillmentOrderID string) *Tracking {
	token, err := c.Authenticate(ctx)
	if err != nil {
		c.log.Error("tracking fetch auth failed", "err", err)
		return nil
	}

	u := fmt.Sprintf("%s/shipments/%s/status", c.apiBaseURL, fulfillmentOrderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := c.httpc.Do(req)
	if err != nil {
		c.log.Error("tracking fetch failed", "fulfillment_order_id", fulfillmentOrderID, "err", err)
		return nil
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		c.log.Warn("tracking fetch rejected", "fulfillment_order_id", fulfillmentOrderID, "status", res.StatusCode)
		return nil
	}

	var tracking Tracking
	if err := json.NewDecoder(res.Body).Decode(&tracking); err != nil {
		c.log.Error("tracking decode failed", "fulfillment_order_id", fulfillmentOrderID, "err", err)
		return nil
	}
	return &tracking
}

// カタログ同期用の商品表現
type ProductPayload struct {
	SKU                  string `json:"sku"`
	Name                 string `json:"name"`
	Description          string `json:"description"`
	Price                int64  `json:"price"`
	Category             string `json:"category"`
	Collection           string `json:"collection"`
	Manufacturer         string `json:"manufacturer"`
	MadeIn               string `json:"made_in"`
	ImageURL             string `json:"image_url"`
	FulfillmentProductID string `json:"qikink_product_id"`
}

func (c *Client) ListProducts(ctx context.Context) ([]ProductPayload, error) {
	token, err := c.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBaseURL+"/products", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("qikink products: unexpected status %d", res.StatusCode)
	}

	var out struct {
		Products []ProductPayload `json:"products"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

// TestConnection は疎通確認（認証が通るかだけ見る）
func (c *Client) TestConnection(ctx context.Context) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	_, err := c.Authenticate(ctx)
	return err
}
