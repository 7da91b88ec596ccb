package microservices

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Temutjin2k/ride-hail-system/config"
	"github.com/Temutjin2k/ride-hail-system/internal/adapter/adminchannel"
	httpserver "github.com/Temutjin2k/ride-hail-system/internal/adapter/http/server"
	"github.com/Temutjin2k/ride-hail-system/internal/adapter/messenger"
	repo "github.com/Temutjin2k/ride-hail-system/internal/adapter/postgres"
	rabbitAdapter "github.com/Temutjin2k/ride-hail-system/internal/adapter/rabbit"
	"github.com/Temutjin2k/ride-hail-system/internal/domain/types"
	"github.com/Temutjin2k/ride-hail-system/internal/service/auth"
	"github.com/Temutjin2k/ride-hail-system/internal/service/matching"
	"github.com/Temutjin2k/ride-hail-system/pkg/logger"
	wrap "github.com/Temutjin2k/ride-hail-system/pkg/logger/wrapper"
	"github.com/Temutjin2k/ride-hail-system/pkg/postgres"
	"github.com/Temutjin2k/ride-hail-system/pkg/rabbit"
	"github.com/Temutjin2k/ride-hail-system/pkg/trm"
	ws "github.com/Temutjin2k/ride-hail-system/pkg/wsHub"
)

// MatchingService wires the driver-matching coordinator into its own
// process: a Postgres-backed set of repositories, a RabbitMQ event
// publisher, a websocket messenger, and the HTTP surface that drives it.
type MatchingService struct {
	postgresDB  *postgres.PostgreDB
	rabbitMQ    *rabbit.RabbitMQ
	httpServer  *httpserver.API
	coordinator *matching.Coordinator

	cfg config.Config
	log logger.Logger
}

func NewMatching(ctx context.Context, cfg config.Config, log logger.Logger) (*MatchingService, error) {
	postgresDB, err := postgres.New(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	rabbitClient, err := rabbit.New(ctx, cfg.RabbitMQ.GetDSN(), log)
	if err != nil {
		return nil, fmt.Errorf("failed to setup rabbitmq: %w", err)
	}

	bookingRepo := repo.NewBookingRepo(postgresDB.Pool)
	notificationRepo := repo.NewNotificationRepo(postgresDB.Pool)
	metricRepo := repo.NewMetricRepo(postgresDB.Pool)
	driverRepo := repo.NewDriverMatchingRepo(postgresDB.Pool)
	phoneDirectory := repo.NewPhoneDirectory(postgresDB.Pool)
	userRepo := repo.NewUserRepo(postgresDB.Pool)
	refreshTokenRepo := repo.NewRefreshTokenRepo(postgresDB.Pool)

	txManager := trm.New(postgresDB.Pool)

	tokenSvc := auth.NewTokenService(cfg.Auth.JWTSecret, userRepo, refreshTokenRepo, txManager, cfg.Auth.RefreshTokenTTL, cfg.Auth.AccessTokenTTL, log)
	authSvc := auth.NewAuthService(userRepo, tokenSvc, log)

	eventPublisher := rabbitAdapter.NewMatchingProducer(rabbitClient)

	wsHub := ws.NewConnHub(log)
	wsMessenger := messenger.NewWSMessenger(wsHub, phoneDirectory, log)

	adminChannel := adminchannel.NewLogChannel(log)
	admin := matching.NewAdminNotifier(adminChannel, log)

	zones := matching.NewGeohashZoneLocator(cfg.Matching.ZoneGeohashPrecision)
	selector := matching.NewDriverSelector(driverRepo, zones)
	dispatcher := matching.NewBroadcastDispatcher(notificationRepo, wsMessenger, matching.SystemClock{}, log)
	transactor := matching.NewAssignmentTransactor(txManager, bookingRepo, metricRepo, matching.SystemClock{})
	timeouts := matching.NewTimeoutManager(log)
	metrics := matching.NewMetricsAggregator(metricRepo)

	coordinator := matching.NewCoordinator(
		bookingRepo,
		notificationRepo,
		driverRepo,
		selector,
		dispatcher,
		transactor,
		timeouts,
		metrics,
		admin,
		wsMessenger,
		eventPublisher,
		matching.SystemClock{},
		log,
	)

	httpServer, err := httpserver.New(cfg, nil, nil, nil, authSvc, coordinator, log)
	if err != nil {
		return nil, fmt.Errorf("failed to setup http server: %w", err)
	}

	return &MatchingService{
		postgresDB:  postgresDB,
		rabbitMQ:    rabbitClient,
		httpServer:  httpServer,
		coordinator: coordinator,
		cfg:         cfg,
		log:         log,
	}, nil
}

func (s *MatchingService) Start(ctx context.Context) error {
	perDriverTimeout := time.Duration(s.cfg.Matching.PerDriverTimeoutSeconds) * time.Second
	perBookingTimeout := time.Duration(s.cfg.Matching.PerBookingTimeoutSeconds) * time.Second

	if err := s.coordinator.Recover(ctx, perDriverTimeout, perBookingTimeout); err != nil {
		s.log.Error(wrap.WithAction(ctx, types.ActionMatchingRecover), "failed to recover pending bookings", err)
	}

	errCh := make(chan error, 1)
	s.httpServer.Run(ctx, errCh)

	defer func() {
		s.close(ctx)
		s.log.Info(ctx, "matching service closed")
	}()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	s.log.Info(ctx, "matching service started")

	select {
	case errRun := <-errCh:
		return errRun
	case sig := <-shutdownCh:
		s.log.Info(ctx, "shutting down application", "signal", sig.String())
		return nil
	}
}

func (s *MatchingService) close(ctx context.Context) {
	if s.httpServer != nil {
		if err := s.httpServer.Stop(ctx); err != nil {
			s.log.Warn(ctx, "failed to gracefully close http server", "error", err.Error())
		}
	}

	if s.postgresDB != nil && s.postgresDB.Pool != nil {
		s.postgresDB.Pool.Close()
	}

	if s.rabbitMQ != nil && s.rabbitMQ.Conn != nil {
		s.rabbitMQ.Conn.Close()
	}
}
