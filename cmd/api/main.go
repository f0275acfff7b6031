package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	"app/internal/infra/qikink"
	"app/internal/infra/razorpay"
	infraRepo "app/internal/infra/repository"
	"app/internal/server"
	"app/internal/usecase"
	"app/internal/worker"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

// 注文IDの末尾につけるランダム部分
func newOrderSuffix() string {
	return uuid.NewString()[:8]
}

// ヘルスチェック用のDB疎通確認
func pingDB(gormDB *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := gormDB.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

type jwtIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func newJWTIssuer(secret string) *jwtIssuer {
	return &jwtIssuer{
		secret:     []byte(secret),
		accessTTL:  24 * time.Hour,
		refreshTTL: 30 * 24 * time.Hour,
	}
}

func (i *jwtIssuer) issue(userID string, role model.Role, typ string, ttl time.Duration, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(ttl)

	claims := jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"typ":  typ,
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func (i *jwtIssuer) IssueAccess(userID string, role model.Role, now time.Time) (string, time.Time, error) {
	return i.issue(userID, role, "access", i.accessTTL, now)
}

func (i *jwtIssuer) IssueRefresh(userID string, role model.Role, now time.Time) (string, time.Time, error) {
	return i.issue(userID, role, "refresh", i.refreshTTL, now)
}

func (i *jwtIssuer) ParseRefresh(raw string) (string, model.Role, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return "", "", errors.New("invalid refresh token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", errors.New("invalid claims")
	}
	if typ, _ := claims["typ"].(string); typ != "refresh" {
		return "", "", errors.New("not a refresh token")
	}
	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if sub == "" || role == "" {
		return "", "", errors.New("invalid claims")
	}

	return sub, model.Role(role), nil
}

func main() {
	//.envはあれば読む
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", "err", err)
		os.Exit(1)
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	if err := gormDB.AutoMigrate(
		&model.Order{},
		&model.OrderItem{},
		&model.Payment{},
		&model.FailedJob{},
		&model.Product{},
		&model.User{},
	); err != nil {
		log.Error("db migrate failed", "err", err)
		os.Exit(1)
	}

	//Repository（GORM実装）生成
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	paymentRepo := infraRepo.NewPaymentGormRepository(gormDB)
	jobRepo := infraRepo.NewFailedJobGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	userRepo := infraRepo.NewUserGormRepository(gormDB)

	//外部サービスクライアント（ここで一度だけ作ってDIする）
	gateway := razorpay.New(
		cfg.RazorpayKeyID,
		cfg.RazorpayKeySecret,
		cfg.RazorpayWebhookSecret,
		cfg.RazorpayBaseURL,
		log,
	)
	fulfillClient := qikink.New(
		cfg.QikinkClientID,
		cfg.QikinkClientSecret,
		cfg.QikinkAPIBaseURL,
		cfg.QikinkAuthURL,
		log,
	)

	//Usecase生成
	fulfillUC := usecase.NewFulfillmentUsecase(orderRepo, jobRepo, productRepo, fulfillClient, log)
	orderUC := usecase.NewOrderUsecase(orderRepo, paymentRepo, gateway, fulfillUC, log, time.Now, newOrderSuffix)
	webhookUC := usecase.NewWebhookUsecase(orderRepo, paymentRepo, gateway, log)
	adminUC := usecase.NewAdminUsecase(orderRepo)
	productUC := usecase.NewProductUsecase(productRepo)

	hasher := usecase.NewBcryptPasswordHasher(12)
	verifier := usecase.NewBcryptPasswordVerifier()
	issuer := newJWTIssuer(cfg.JWTSecret)
	authUC := usecase.NewAuthUsecase(userRepo, hasher, verifier, issuer, &uuidGenerator{}, time.Now)

	//バックグラウンドスイープ
	sweeper := worker.NewSweeper(
		jobRepo,
		orderRepo,
		fulfillUC,
		fulfillClient,
		cfg.RetryInterval,
		cfg.TrackingInterval,
		log,
	)
	sweeper.Start()
	defer sweeper.Stop()

	//Handler生成
	hs := server.Handlers{
		Auth:    handler.NewAuthHandler(authUC),
		Order:   handler.NewOrderHandler(orderUC),
		Webhook: handler.NewWebhookHandler(webhookUC, gateway),
		Admin:   handler.NewAdminHandler(adminUC, fulfillUC, gateway, fulfillClient),
		Product: handler.NewProductHandler(productUC),
		Health:  handler.NewHealthHandler(gateway, fulfillClient, pingDB(gormDB)),
	}

	//SIGTERMでスイープを止めてから落とす
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		sweeper.Stop()
		os.Exit(0)
	}()

	//Server起動
	addr := ":" + cfg.Port

	log.Info("starting server", "addr", addr, "env", cfg.GoEnv)
	if err := server.Start(addr, cfg, hs); err != nil {
		log.Error("server exited", "err", err)
		os.Exit(1)
	}
}
