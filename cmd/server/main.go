package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"streamhub-backend-go/internal/api"
	"streamhub-backend-go/internal/config"
	"streamhub-backend-go/internal/core"
	"streamhub-backend-go/internal/db"
	"streamhub-backend-go/internal/media"
	"streamhub-backend-go/internal/middleware"
	"streamhub-backend-go/internal/payments"
)

func main() {
	appConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := newLogger(appConfig.GinMode)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	firestoreClient, err := db.NewFirestoreClient(ctx, appConfig)
	if err != nil {
		logger.Fatal("failed to initialize Firestore", zap.Error(err))
	}
	defer firestoreClient.Close()

	userRepo := db.NewFirestoreUserRepository(firestoreClient)
	videoRepo := db.NewFirestoreVideoRepository(firestoreClient)
	seriesRepo := db.NewFirestoreSeriesRepository(firestoreClient)
	planRepo := db.NewFirestorePlanRepository(firestoreClient)
	subRepo := db.NewFirestoreSubscriptionRepository(firestoreClient)
	reminderRepo := db.NewFirestoreReminderRepository(firestoreClient)
	progressRepo := db.NewFirestoreProgressRepository(firestoreClient)

	mediaStore, err := media.NewS3Store(ctx,
		appConfig.AWSRegion,
		appConfig.AWSAccessKeyID,
		appConfig.AWSSecretAccessKey,
		appConfig.S3Bucket,
		logger)
	if err != nil {
		logger.Fatal("failed to initialize S3 store", zap.Error(err))
	}

	var signer core.MediaSigner
	if appConfig.CloudFrontDomain != "" && appConfig.CloudFrontKeyPairID != "" && appConfig.CloudFrontPrivateKeyPath != "" {
		cfSigner, err := media.NewCloudFrontSigner(
			appConfig.CloudFrontDomain,
			appConfig.CloudFrontKeyPairID,
			appConfig.CloudFrontPrivateKeyPath)
		if err != nil {
			logger.Fatal("failed to initialize CloudFront signer", zap.Error(err))
		}
		signer = cfSigner
	} else {
		logger.Warn("CloudFront signing not configured, stream URLs will be unsigned")
		signer = media.PassthroughSigner{}
	}

	processor := payments.NewStripeProcessor(appConfig.StripeSecretKey, logger)
	tokens := core.NewTokenManager(
		appConfig.JWTSecret,
		appConfig.JWTRefreshSecret,
		appConfig.JWTExpire,
		appConfig.JWTRefreshExpire)

	authService := core.NewAuthService(userRepo, subRepo, videoRepo, seriesRepo, tokens, logger)
	subscriptionService := core.NewSubscriptionService(subRepo, userRepo, planRepo, processor, logger)
	planService := core.NewPlanService(planRepo, subRepo, processor, logger)
	catalogService := core.NewCatalogService(videoRepo, seriesRepo, userRepo, mediaStore, logger)
	viewerService := core.NewViewerService(videoRepo, seriesRepo, progressRepo, signer, logger)
	reminderService := core.NewReminderService(reminderRepo, videoRepo, logger)

	gin.SetMode(appConfig.GinMode)
	router := gin.New()
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORSMiddleware(appConfig))

	api.SetupRoutes(router, appConfig, logger, tokens, subRepo,
		authService, subscriptionService, planService,
		catalogService, viewerService, reminderService, processor)

	server := &http.Server{
		Addr:         ":" + appConfig.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(ginMode string) (*zap.Logger, error) {
	if ginMode == gin.ReleaseMode {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
