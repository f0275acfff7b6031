package razorpay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// キー未設定のときに返す。呼ぶ側は「決済システム利用不可」として扱う。
var ErrNotConfigured = errors.New("razorpay client not configured")

type Client struct {
	keyID         string
	keySecret     string
	webhookSecret string
	baseURL       string
	httpc         *http.Client
	log           *slog.Logger
}

func New(keyID, keySecret, webhookSecret, baseURL string, log *slog.Logger) *Client {
	return &Client{
		keyID:         keyID,
		keySecret:     keySecret,
		webhookSecret: webhookSecret,
		baseURL:       baseURL,
		httpc:         &http.Client{Timeout: 10 * time.Second},
		log:           log,
	}
}

func (c *Client) Configured() bool {
	return c.keyID != "" && c.keySecret != ""
}

// フロントに返す公開キー
func (c *Client) KeyID() string {
	return c.keyID
}

// ゲートウェイ側に作られた注文（オーソリ待ちの金額）
type Intent struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"` // 最小通貨単位（パイサ）
	Currency string `json:"currency"`
}

// CreateIntent は決済インテントを作成する。amountは最小通貨単位。
func (c *Client) CreateIntent(ctx context.Context, amount int64, currency string, receipt string) (Intent, error) {
	if !c.Configured() {
		return Intent{}, ErrNotConfigured
	}
	if receipt == "" {
		receipt = fmt.Sprintf("order_%d", time.Now().Unix())
	}

	body, err := json.Marshal(map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	})
	if err != nil {
		return Intent{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return Intent{}, err
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpc.Do(req)
	if err != nil {
		c.log.Error("razorpay order create failed", "err", err)
		return Intent{}, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		c.log.Error("razorpay order create rejected", "status", res.StatusCode, "body", string(b))
		return Intent{}, fmt.Errorf("razorpay: unexpected status %d", res.StatusCode)
	}

	var intent Intent
	if err := json.NewDecoder(res.Body).Decode(&intent); err != nil {
		return Intent{}, err
	}
	if intent.ID == "" {
		return Intent{}, errors.New("razorpay: empty order id")
	}
	return intent, nil
}

// VerifyPaymentSignature は「orderID|paymentID」のHMAC-SHA256を検証する。
// ゲートウェイは呼ばない。ローカルの暗号チェックのみ。
func (c *Client) VerifyPaymentSignature(gatewayOrderID, paymentID, signature string) bool {
	if c.keySecret == "" {
		return false
	}
	expected := hmacHex(c.keySecret, gatewayOrderID+"|"+paymentID)
	// タイミング攻撃対策で定数時間比較
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyWebhookSignature はwebhook本文のHMAC-SHA256を検証する。
// 支払い署名とはシークレットが別。混同しないこと。
func (c *Client) VerifyWebhookSignature(body []byte, signature string) bool {
	if c.webhookSecret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(c.webhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func hmacHex(secret, message string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}
