package server

import (
	"context"
	"errors"
	"fmt"
	"os"

	adaptermiddleware "aid-portal/internal/adapters/http/middleware"
	adaptermetrics "aid-portal/internal/adapters/metrics"
	"aid-portal/internal/application"
	"aid-portal/internal/infrastructure/auth"
	"aid-portal/internal/infrastructure/dynamodb"
	"aid-portal/internal/infrastructure/hierarchy"
	"aid-portal/internal/infrastructure/memory"
	httpiface "aid-portal/internal/interfaces/http"
	"aid-portal/internal/ports"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
)

type StoreMode string

const (
	StoreDynamoDB StoreMode = "dynamodb"
	StoreMemory   StoreMode = "memory"
)

type Config struct {
	TableName     string
	Region        string
	UserPoolID    string
	AuthMode      adaptermiddleware.Mode
	StoreMode     StoreMode
	HierarchyFile string
	LogLevel      string
	Port          string
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// LoadConfig reads the environment, after loading a .env file when one is
// present in the working directory.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	authMode, err := adaptermiddleware.ParseAuthMode()
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		TableName:     os.Getenv("TABLE_NAME"),
		Region:        os.Getenv("AWS_REGION"),
		UserPoolID:    os.Getenv("COGNITO_USER_POOL_ID"),
		AuthMode:      authMode,
		StoreMode:     StoreMode(getEnv("STORE_MODE", string(StoreDynamoDB))),
		HierarchyFile: os.Getenv("HIERARCHY_FILE"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		Port:          getEnv("PORT", "8080"),
	}
	switch cfg.StoreMode {
	case StoreMemory:
	case StoreDynamoDB:
		if cfg.TableName == "" || cfg.Region == "" {
			return Config{}, errors.New("missing required environment variables")
		}
	default:
		return Config{}, fmt.Errorf("invalid store mode %q", cfg.StoreMode)
	}
	if cfg.AuthMode == adaptermiddleware.ModeCognito && (cfg.UserPoolID == "" || cfg.Region == "") {
		return Config{}, errors.New("COGNITO_USER_POOL_ID and AWS_REGION are required for cognito auth mode")
	}
	return cfg, nil
}

func newRepository(ctx context.Context, cfg Config) (ports.ApplicationRepository, error) {
	if cfg.StoreMode == StoreMemory {
		return memory.NewApplicationRepository(), nil
	}
	client, err := dynamodb.NewClient(ctx, cfg.Region, cfg.TableName)
	if err != nil {
		return nil, fmt.Errorf("initialize dynamodb client: %w", err)
	}
	return dynamodb.NewApplicationRepository(client), nil
}

// Build wires the workflow service behind the HTTP router.
func Build(ctx context.Context, cfg Config, logger ports.Logger) (*echo.Echo, error) {
	pipeline, err := hierarchy.Load(cfg.HierarchyFile)
	if err != nil {
		return nil, err
	}
	repo, err := newRepository(ctx, cfg)
	if err != nil {
		return nil, err
	}
	recorder := adaptermetrics.NewWorkflowRecorder()
	svc := application.NewWorkflowService(repo, pipeline, recorder, logger)
	svc.WarnStranded(ctx)

	var cognitoHandler echo.MiddlewareFunc
	if cfg.AuthMode == adaptermiddleware.ModeCognito {
		cognitoHandler = auth.NewCognitoMiddleware(cfg.UserPoolID, cfg.Region).Handler
	}
	authMiddleware, err := adaptermiddleware.AuthMiddleware(cognitoHandler)
	if err != nil {
		return nil, fmt.Errorf("initialize auth middleware: %w", err)
	}
	mw := httpiface.Middleware{
		Auth:          authMiddleware,
		XRay:          adaptermiddleware.XRayMiddleware("aid-portal-http"),
		RequestLogger: adaptermiddleware.RequestLogger(logger),
	}
	logger.Info(ctx, "workflow configured",
		"store", cfg.StoreMode,
		"auth_mode", cfg.AuthMode,
		"stages", len(pipeline.Stages()),
	)
	return httpiface.NewMainRouter(
		httpiface.NewApplicationsHandler(svc, logger),
		httpiface.NewReviewsHandler(svc),
		recorder.Handler(),
		mw,
	), nil
}
