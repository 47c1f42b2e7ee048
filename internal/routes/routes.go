package routes

import (
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"ticket-system/internal/repositories"
	"ticket-system/internal/services"
	"ticket-system/pkg/config"
	"ticket-system/pkg/imageurl"
)

type Loggers struct {
	Main     *zap.Logger
	Ticket   *zap.Logger
	Tool     *zap.Logger
	Payment  *zap.Logger
	Proforma *zap.Logger
}

// SingleLogger - один логгер для всех подсистем, с именованными ветками.
func SingleLogger(logger *zap.Logger) *Loggers {
	return &Loggers{
		Main:     logger,
		Ticket:   logger.Named("ticket"),
		Tool:     logger.Named("tool"),
		Payment:  logger.Named("payment"),
		Proforma: logger.Named("proforma"),
	}
}

func InitRouter(e *echo.Echo, dbConn *pgxpool.Pool, redisClient *redis.Client, publisher services.EventPublisher, loggers *Loggers, cfg *config.Config) {
	loggers.Main.Info("InitRouter: Начало создания маршрутов")

	api := e.Group("/api")
	txManager := repositories.NewTxManager(dbConn)

	// --- 1. РЕПОЗИТОРИИ ---
	ticketRepo := repositories.NewTicketRepository(dbConn, loggers.Ticket)
	childRepo := repositories.NewTicketChildRepository(dbConn)
	vehicleRepo := repositories.NewVehicleRepository(dbConn)
	proformaRepo := repositories.NewProformaRepository(dbConn)
	billRepo := repositories.NewBillRepository(dbConn)
	toolRepo := repositories.NewToolRepository(dbConn)
	mechanicRepo := repositories.NewOutsourceMechanicRepository(dbConn)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)

	// --- 2. СЕРВИСЫ ---
	aggregationService := services.NewAggregationService(childRepo, cfg.Aggregation.ChildFetchTimeout, loggers.Ticket)
	imageResolver := imageurl.NewResolver(cfg.Images, &http.Client{Timeout: cfg.Images.Timeout + time.Second}, loggers.Ticket)
	ticketService := services.NewTicketService(
		txManager,
		services.TicketRepositories{
			Tickets:   ticketRepo,
			Children:  childRepo,
			Customers: repositories.NewCustomerRepository(),
			Vehicles:  vehicleRepo,
			Insurance: repositories.NewInsuranceRepository(),
			Proformas: proformaRepo,
			Bills:     billRepo,
			Cache:     cacheRepo,
		},
		aggregationService,
		imageResolver,
		publisher,
		cfg.Tickets,
		cfg.Redis.ListTTL,
		loggers.Ticket,
	)
	billingService := services.NewBillingService(ticketRepo, billRepo, aggregationService, loggers.Ticket)
	toolService := services.NewToolService(txManager, ticketRepo, toolRepo, loggers.Tool)
	ledgerService := services.NewPaymentLedgerService(ticketRepo, mechanicRepo, loggers.Payment)
	proformaService := services.NewProformaService(proformaRepo, loggers.Proforma)

	// --- 3. РОУТЕРЫ ---
	runTicketRouter(api, ticketService, billingService, loggers.Ticket)
	runPaymentRouter(api, ledgerService, loggers.Payment)
	runToolRouter(api, toolService, loggers.Tool)
	runProformaRouter(api, proformaService, loggers.Proforma)
	runWorkflowRouter(api)

	loggers.Main.Info("InitRouter: Создание маршрутов завершено")
}
