package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	JWTSecret string // JWT署名シークレット

	// 決済ゲートウェイ。未設定なら決済系APIは503を返す（fail-soft）
	RazorpayKeyID         string
	RazorpayKeySecret     string
	RazorpayWebhookSecret string // webhook署名は支払い署名と別シークレット
	RazorpayBaseURL       string

	// フルフィルメント（印刷・発送）
	QikinkClientID     string
	QikinkClientSecret string
	QikinkAPIBaseURL   string
	QikinkAuthURL      string

	// バックグラウンドスイープの間隔
	RetryInterval    time.Duration // 失敗ジョブ再試行（デフォルト30分）
	TrackingInterval time.Duration // 配送追跡（デフォルト3時間）

	GoEnv string // dev/prod
}

// Loadは環境変数から設定を組み立てる
func Load() (Config, error) {
	cfg := Config{
		Port: getenv("PORT", "8080"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		RazorpayKeyID:         os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret:     os.Getenv("RAZORPAY_KEY_SECRET"),
		RazorpayWebhookSecret: os.Getenv("RAZORPAY_WEBHOOK_SECRET"),
		RazorpayBaseURL:       getenv("RAZORPAY_BASE_URL", "https://api.razorpay.com/v1"),

		QikinkClientID:     os.Getenv("QIKINK_CLIENT_ID"),
		QikinkClientSecret: os.Getenv("QIKINK_CLIENT_SECRET"),
		QikinkAPIBaseURL:   getenv("QIKINK_API_BASE_URL", "https://sandbox-api.qikink.com/api/v1"),
		QikinkAuthURL:      getenv("QIKINK_AUTH_URL", "https://sandbox-api.qikink.com/oauth/token"),

		GoEnv: getenv("GO_ENV", "dev"),
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}

	retryMin, err := intenv("RETRY_INTERVAL_MINUTES", 30)
	if err != nil {
		return Config{}, err
	}
	cfg.RetryInterval = time.Duration(retryMin) * time.Minute

	trackingHours, err := intenv("TRACKING_INTERVAL_HOURS", 3)
	if err != nil {
		return Config{}, err
	}
	cfg.TrackingInterval = time.Duration(trackingHours) * time.Hour

	return cfg, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func intenv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}
