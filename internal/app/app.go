package app

import (
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs-lzh/cinema-booking/config"
	"github.com/qs-lzh/cinema-booking/internal/auth"
	"github.com/qs-lzh/cinema-booking/internal/cache"
	"github.com/qs-lzh/cinema-booking/internal/jobs"
	"github.com/qs-lzh/cinema-booking/internal/mq"
	"github.com/qs-lzh/cinema-booking/internal/repository"
	"github.com/qs-lzh/cinema-booking/internal/service/domain"
	"github.com/qs-lzh/cinema-booking/internal/service/workflow"
	"github.com/qs-lzh/cinema-booking/internal/util"
)

const revokedTokenPurgeInterval = time.Hour

var (
	_ domain.RevocationStore  = (*cache.RevocationList)(nil)
	_ domain.LoginLimiter     = (*cache.LoginLimiter)(nil)
	_ workflow.EventPublisher = (*mq.Producer)(nil)
)

type App struct {
	Config *config.Config

	DB     *gorm.DB
	Cache  *cache.RedisCache
	Logger *zap.Logger
	MQConn *amqp.Connection
	Clock  util.Clock
	Tokens *auth.TokenManager

	RevokedTokenRepo repository.RevokedTokenRepo

	AuditoriumService  domain.AuditoriumService
	MovieService       domain.MovieService
	ScheduleService    domain.ScheduleService
	TicketService      domain.TicketService
	SuperTicketService domain.SuperTicketService
	LedgerService      domain.LedgerService
	UserService        domain.UserService
	AuthService        domain.AuthService

	PurchaseWorkflow      *workflow.PurchaseWorkflow
	BookingEventsWorkflow *workflow.BookingEventsWorkflow
	NoShowWorkflow        *workflow.NoShowWorkflow

	Jobs *jobs.Scheduler
}

// New wires the application. redisCache and mqConn are optional: without redis
// revoked tokens live in the database and logins are not limited, without
// rabbitmq no booking events are published.
func New(config *config.Config, db *gorm.DB, redisCache *cache.RedisCache, mqConn *amqp.Connection, logger *zap.Logger) *App {
	clock := util.SystemClock{}
	tx := repository.NewTransactor(db)

	auditoriumRepo := repository.NewAuditoriumRepoGorm(db)
	movieRepo := repository.NewMovieRepoGorm(db)
	scheduleRepo := repository.NewScheduleRepoGorm(db)
	ticketRepo := repository.NewTicketRepoGorm(db)
	superTicketRepo := repository.NewSuperTicketRepoGorm(db)
	userRepo := repository.NewUserRepoGorm(db)
	transactionRepo := repository.NewTransactionRepoGorm(db)
	revokedTokenRepo := repository.NewRevokedTokenRepoGorm(db)

	scheduleService := domain.NewScheduleService(tx, scheduleRepo, movieRepo, auditoriumRepo,
		ticketRepo, superTicketRepo, clock, config.Timezone)
	auditoriumService := domain.NewAuditoriumService(tx, auditoriumRepo, scheduleRepo, ticketRepo)
	movieService := domain.NewMovieService(tx, movieRepo, scheduleRepo, scheduleService)
	ledgerService := domain.NewLedgerService(tx, userRepo, transactionRepo)
	ticketService := domain.NewTicketService(tx, ticketRepo, scheduleRepo, auditoriumRepo, userRepo,
		scheduleService, ledgerService, clock)
	superTicketService := domain.NewSuperTicketService(tx, superTicketRepo, scheduleRepo, auditoriumRepo, userRepo,
		scheduleService, ledgerService, clock)
	userService := domain.NewUserService(tx, userRepo)

	tokens := auth.NewTokenManager(config.JWTSecret, config.TokenTTL, clock)
	var revocations domain.RevocationStore = domain.NewDBRevocationStore(revokedTokenRepo, clock)
	var limiter domain.LoginLimiter
	if redisCache != nil {
		revocations = cache.NewRevocationList(redisCache, clock)
		limiter = cache.NewLoginLimiter(redisCache, config.LoginMaxAttempts, config.LoginWindow)
	}
	authService := domain.NewAuthService(userService, tokens, revocations, limiter)

	var publisher workflow.EventPublisher
	if mqConn != nil {
		publisher = mq.NewProducer(mqConn)
	}
	purchaseWorkflow := workflow.NewPurchaseWorkflow(ticketService, superTicketService, scheduleService,
		publisher, clock, logger)

	return &App{
		Config:                config,
		DB:                    db,
		Cache:                 redisCache,
		Logger:                logger,
		MQConn:                mqConn,
		Clock:                 clock,
		Tokens:                tokens,
		RevokedTokenRepo:      revokedTokenRepo,
		AuditoriumService:     auditoriumService,
		MovieService:          movieService,
		ScheduleService:       scheduleService,
		TicketService:         ticketService,
		SuperTicketService:    superTicketService,
		LedgerService:         ledgerService,
		UserService:           userService,
		AuthService:           authService,
		PurchaseWorkflow:      purchaseWorkflow,
		BookingEventsWorkflow: workflow.NewBookingEventsWorkflow(logger),
		NoShowWorkflow:        workflow.NewNoShowWorkflow(ticketService, logger),
	}
}

// Init declares the queues, starts the consumers and the background jobs.
func (app *App) Init() error {
	// init rabbit mq
	if app.MQConn != nil {
		if err := mq.InitQueues(app.MQConn); err != nil {
			return err
		}
		if err := app.BookingEventsWorkflow.Start(app.MQConn); err != nil {
			return err
		}
		if err := app.NoShowWorkflow.Start(app.MQConn); err != nil {
			return err
		}
	}

	scheduler, err := jobs.NewScheduler(app.Logger)
	if err != nil {
		return err
	}
	if err := scheduler.PurgeRevokedTokens(app.RevokedTokenRepo, app.Clock, revokedTokenPurgeInterval); err != nil {
		return err
	}
	scheduler.Start()
	app.Jobs = scheduler

	return nil
}

func (app *App) Close() error {
	var errs []error
	if app.Jobs != nil {
		errs = append(errs, app.Jobs.Shutdown())
	}
	if app.MQConn != nil {
		errs = append(errs, app.MQConn.Close())
	}
	if app.Cache != nil {
		errs = append(errs, app.Cache.Close())
	}
	sqlDB, err := app.DB.DB()
	if err != nil {
		errs = append(errs, err)
	} else {
		errs = append(errs, sqlDB.Close())
	}
	return errors.Join(errs...)
}
