package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dlwnstjrzz/autobomber-website/internal/config"
	"github.com/dlwnstjrzz/autobomber-website/internal/infrastructure/cache"
	"github.com/dlwnstjrzz/autobomber-website/internal/infrastructure/database"
	"github.com/dlwnstjrzz/autobomber-website/internal/shared/authz"
	"github.com/dlwnstjrzz/autobomber-website/internal/shared/identity"

	activationHandler "github.com/dlwnstjrzz/autobomber-website/internal/domains/activation/handler"
	activationService "github.com/dlwnstjrzz/autobomber-website/internal/domains/activation/service"
	authHandler "github.com/dlwnstjrzz/autobomber-website/internal/domains/auth/handler"
	discountHandler "github.com/dlwnstjrzz/autobomber-website/internal/domains/discount/handler"
	discountRepo "github.com/dlwnstjrzz/autobomber-website/internal/domains/discount/repository"
	discountService "github.com/dlwnstjrzz/autobomber-website/internal/domains/discount/service"
	licenseHandler "github.com/dlwnstjrzz/autobomber-website/internal/domains/license/handler"
	licenseRepo "github.com/dlwnstjrzz/autobomber-website/internal/domains/license/repository"
	licenseService "github.com/dlwnstjrzz/autobomber-website/internal/domains/license/service"
	"github.com/dlwnstjrzz/autobomber-website/internal/domains/payment/gateway"
	paymentHandler "github.com/dlwnstjrzz/autobomber-website/internal/domains/payment/handler"
	paymentService "github.com/dlwnstjrzz/autobomber-website/internal/domains/payment/service"
	referralHandler "github.com/dlwnstjrzz/autobomber-website/internal/domains/referral/handler"
	referralRepo "github.com/dlwnstjrzz/autobomber-website/internal/domains/referral/repository"
	referralService "github.com/dlwnstjrzz/autobomber-website/internal/domains/referral/service"
	trialHandler "github.com/dlwnstjrzz/autobomber-website/internal/domains/trial/handler"
	trialRepo "github.com/dlwnstjrzz/autobomber-website/internal/domains/trial/repository"
	trialService "github.com/dlwnstjrzz/autobomber-website/internal/domains/trial/service"
)

// Container chứa TẤT CẢ dependencies của application.
// Thứ tự initialization: Config → Infrastructure → Repositories →
// Services → Handlers. Sai thứ tự là nil pointer dereference.
type Container struct {
	Config *config.Config
	DB     *database.PostgresDB
	Cache  *cache.RedisClient

	Identity  identity.Resolver
	AdminGate *authz.AllowList

	ReferralRepo referralRepo.ReferralRepository
	LicenseRepo  licenseRepo.LicenseRepository
	TrialRepo    trialRepo.TrialRepository
	DiscountRepo discountRepo.DiscountRepository

	ReferralService   referralService.ServiceInterface
	LicenseService    licenseService.ServiceInterface
	TrialService      trialService.ServiceInterface
	DiscountService   discountService.ServiceInterface
	ActivationService activationService.ServiceInterface
	PaymentService    paymentService.ServiceInterface

	ReferralHandler   *referralHandler.ReferralHandler
	LicenseHandler    *licenseHandler.LicenseHandler
	TrialHandler      *trialHandler.TrialHandler
	DiscountHandler   *discountHandler.DiscountHandler
	ActivationHandler *activationHandler.ActivationHandler
	PaymentHandler    *paymentHandler.PaymentHandler
	AuthHandler       *authHandler.AuthHandler
}

// NewContainer tạo và initialize toàn bộ dependency graph.
func NewContainer() (*Container, error) {
	log.Println("🔧 Initializing DI Container...")

	c := &Container{}

	log.Println("📋 Loading configuration...")
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Printf("✅ Config loaded (Environment: %s)", cfg.App.Environment)

	log.Println("🗄️  Connecting to PostgreSQL...")
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	c.DB = db
	log.Println("✅ Database connected")

	log.Println("🔴 Connecting to Redis...")
	redisClient := cache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisClient.Connect(context.Background()); err != nil {
		// Redis failure không critical - log warning và continue
		log.Printf("⚠️  Redis connection failed (non-critical): %v", err)
	} else {
		log.Println("✅ Redis connected")
	}
	c.Cache = redisClient

	c.Identity = identity.NewCookieResolver(cfg.Session.JWTSecret)
	c.AdminGate = authz.NewAllowList(cfg.Admin.Emails)

	log.Println("📦 Initializing repositories...")
	c.initRepositories()

	log.Println("⚙️  Initializing services...")
	c.initServices()

	log.Println("🎯 Initializing handlers...")
	c.initHandlers()

	log.Println("🎉 DI Container initialized successfully")
	return c, nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.ReferralRepo = referralRepo.NewPostgresRepository(pool)
	c.LicenseRepo = licenseRepo.NewPostgresRepository(pool)
	c.TrialRepo = trialRepo.NewPostgresRepository(pool)
	c.DiscountRepo = discountRepo.NewPostgresRepository(pool)
}

func (c *Container) initServices() {
	c.ReferralService = referralService.NewReferralService(c.ReferralRepo)
	c.LicenseService = licenseService.NewLicenseService(c.LicenseRepo)
	c.TrialService = trialService.NewTrialService(c.TrialRepo)
	c.DiscountService = discountService.NewDiscountService(c.DiscountRepo)
	c.ActivationService = activationService.NewActivationService(c.LicenseRepo, c.TrialRepo, c.Cache)

	tossClient := gateway.NewTossClient(c.Config.Toss.SecretKey, c.Config.Toss.ConfirmURL)
	c.PaymentService = paymentService.NewPaymentService(
		tossClient,
		c.ReferralService,
		c.DiscountService,
		c.Cache,
		paymentService.NewLicenseConsumer(c.LicenseService),
		paymentService.NewReferralConsumer(c.ReferralService),
	)
}

func (c *Container) initHandlers() {
	c.ReferralHandler = referralHandler.NewReferralHandler(c.ReferralService)
	c.LicenseHandler = licenseHandler.NewLicenseHandler(c.LicenseService)
	c.TrialHandler = trialHandler.NewTrialHandler(c.TrialService)
	c.DiscountHandler = discountHandler.NewDiscountHandler(c.DiscountService)
	c.ActivationHandler = activationHandler.NewActivationHandler(c.ActivationService)
	c.PaymentHandler = paymentHandler.NewPaymentHandler(c.PaymentService, c.Config.App.SiteURL)
	c.AuthHandler = authHandler.NewAuthHandler()
}

// Cleanup dọn dẹp resources khi shutdown.
func (c *Container) Cleanup() {
	log.Println("🧹 Cleaning up container resources...")

	if c.DB != nil && c.DB.Pool != nil {
		c.DB.Pool.Close()
		log.Println("✅ Database connections closed")
	}

	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			log.Printf("⚠️  Failed to close Redis: %v", err)
		} else {
			log.Println("✅ Redis connections closed")
		}
	}

	log.Println("✅ Container cleanup completed")
}
