package main

import (
	"context"
	"errors"
	"family-calendar-backend/cmd/family-calendar/apis"
	"family-calendar-backend/cmd/family-calendar/notify"
	"family-calendar-backend/cmd/family-calendar/repository"
	"family-calendar-backend/cmd/family-calendar/service"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/labstack/echo/v4"
	"github.com/robfig/cron/v3"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const envPrefix = "FAMILY_CALENDAR"

type EnvCfg struct {
	DBDriver   string `envconfig:"DB_DRIVER" default:"postgres"`
	DBHost     string `envconfig:"DB_HOST"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME"`
	SQLitePath string `envconfig:"SQLITE_PATH" default:"family-calendar.db"`

	ListenAddr  string   `envconfig:"LISTEN_ADDR" default:":8080"`
	JWTSecret   string   `envconfig:"JWT_SECRET" required:"true"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`

	// Bearer tokens travel in a header, so credentials are off unless asked for.
	CORSAllowCredentials bool `envconfig:"CORS_ALLOW_CREDENTIALS" default:"false"`

	Timezone  string `envconfig:"TIMEZONE" default:"Europe/Madrid"`
	WeekStart string `envconfig:"WEEK_START" default:"sunday"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	RedisURL              string        `envconfig:"REDIS_URL"`
	NotifyChannel         string        `envconfig:"NOTIFY_CHANNEL" default:"family-calendar.events"`
	NotificationRetention time.Duration `envconfig:"NOTIFICATION_RETENTION" default:"720h"`
	HousekeepingCron      string        `envconfig:"HOUSEKEEPING_CRON" default:"@daily"`
}

// Validate checks what envconfig tags cannot express.
func (c EnvCfg) Validate() error {
	switch c.DBDriver {
	case "postgres":
		if c.DBHost == "" || c.DBUser == "" || c.DBName == "" {
			return errors.New("postgres needs DB_HOST, DB_USER and DB_NAME")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("sqlite needs SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}

	if c.CORSAllowCredentials && slices.Contains(c.CORSOrigins, "*") {
		return errors.New("CORS_ALLOW_CREDENTIALS needs explicit CORS_ORIGINS, not *")
	}

	if _, err := parseWeekStart(c.WeekStart); err != nil {
		return err
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE: %w", err)
	}
	if _, err := cron.ParseStandard(c.HousekeepingCron); err != nil {
		return fmt.Errorf("HOUSEKEEPING_CRON: %w", err)
	}
	return nil
}

func loadConfig() (EnvCfg, error) {
	// A missing .env is fine; the environment wins anyway.
	_ = godotenv.Load()

	var cfg EnvCfg
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return EnvCfg{}, err
	}
	return cfg, cfg.Validate()
}

func formatConnectionString(cfg EnvCfg) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
	)
}

func parseWeekStart(s string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	}
	return 0, fmt.Errorf("WEEK_START must be sunday or monday, got %q", s)
}

func initLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(lvl),
		Development:      false,
		Encoding:         "json",
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "timestamp",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
	}

	return config.Build()
}

func openDB(cfg EnvCfg) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		dialector = postgres.Open(formatConnectionString(cfg))
	}

	level := logger.Warn
	if cfg.LogLevel == "debug" {
		level = logger.Info
	}

	return gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(level),
	})
}

func corsOptions(cfg EnvCfg) cors.Options {
	return cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: cfg.CORSAllowCredentials,
	}
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// newRouter wires repositories, services and APIs onto a fresh echo instance.
func newRouter(
	db *gorm.DB,
	secret []byte,
	loc *time.Location,
	weekStart time.Weekday,
	publisher service.Publisher,
	extras map[string]apis.Pinger,
	clock service.Clock,
	log *zap.Logger,
) *echo.Echo {
	eventRepo := repository.NewEventRepo(db)
	eventTypeRepo := repository.NewEventTypeRepo(db)
	profileRepo := repository.NewProfileRepo(db)
	notificationRepo := repository.NewNotificationRepo(db)

	access := service.NewAccessControl(profileRepo, clock, log)
	sharing := service.NewSharingEngine(eventRepo, profileRepo, access, publisher, clock, log)
	status := service.NewStatusMaintainer(eventRepo, clock, log)
	registry := service.NewTypeRegistry(eventTypeRepo, clock, log)
	events := service.NewEventService(eventRepo, eventTypeRepo, access, sharing, clock, log)
	calendars := service.NewCalendarService(eventRepo, sharing, access, status, clock, loc, weekStart, log)
	families := service.NewFamilyService(profileRepo, notificationRepo, publisher, clock, log)

	e := echo.New()
	e.HideBanner = true
	e.Use(apis.RequestLogger(log.Named("http")))

	rootg := e.Group("")
	v1g := rootg.Group("/api/v1", apis.ActorAuth(secret))

	apis.
		NewHealthCheckAPI(db, extras).
		Setup(rootg)

	apis.
		NewEventTypeAPI(registry, access).
		Setup(v1g)

	apis.
		NewEventAPI(events, sharing, loc).
		Setup(v1g)

	apis.
		NewCalendarAPI(calendars, events, clock).
		Setup(v1g)

	apis.
		NewUserAPI(profileRepo, access, clock).
		Setup(v1g)

	apis.
		NewFamilyAPI(families).
		Setup(v1g)

	return e
}

func main() {

	err := os.Setenv("TZ", "UTC")
	if err != nil {
		panic(err)
	}

	cfg, err := loadConfig()
	if err != nil {
		panic(err)
	}

	log, err := initLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	loc, _ := time.LoadLocation(cfg.Timezone)
	weekStart, _ := parseWeekStart(cfg.WeekStart)

	db, err := openDB(cfg)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}

	err = repository.AutoMigrate(db)
	if err != nil {
		log.Fatal("migrate", zap.Error(err))
	}

	extras := map[string]apis.Pinger{}
	var publisher service.Publisher = notify.Nop{}
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal("parse REDIS_URL", zap.Error(err))
		}
		client := redis.NewClient(opts)
		defer client.Close()

		publisher = notify.NewRedisPublisher(client, cfg.NotifyChannel)
		extras["redis"] = redisPinger{client: client}
	}

	clock := service.SystemClock{}
	notificationRepo := repository.NewNotificationRepo(db)

	e := newRouter(db, []byte(cfg.JWTSecret), loc, weekStart, publisher, extras, clock, log)

	housekeeping := cron.New(cron.WithLocation(loc))
	_, err = housekeeping.AddFunc(cfg.HousekeepingCron, func() {
		purgeNotifications(context.Background(), notificationRepo, cfg.NotificationRetention, clock, log)
	})
	if err != nil {
		log.Fatal("schedule housekeeping", zap.Error(err))
	}
	housekeeping.Start()

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           cors.New(corsOptions(cfg)).Handler(e),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("listening", zap.String("addr", cfg.ListenAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("serve", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	<-housekeeping.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}

type notificationPurger interface {
	PurgeResolved(ctx context.Context, cutoff time.Time) (int64, error)
}

// purgeNotifications drops accepted and declined notifications older than
// retention. Pending requests are never purged.
func purgeNotifications(ctx context.Context, repo notificationPurger, retention time.Duration, clock service.Clock, log *zap.Logger) {
	cutoff := clock.Now().Add(-retention)
	n, err := repo.PurgeResolved(ctx, cutoff)
	if err != nil {
		log.Error("purge notifications", zap.Error(err))
		return
	}
	log.Info("purged notifications", zap.Int64("count", n), zap.Time("cutoff", cutoff))
}
