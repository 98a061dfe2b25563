package main

import (
	"context"
	"database/sql"
	"log"
	"net/smtp"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/gofiber/fiber/v2"
	accounts "github.com/goliatone/go-accounts"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/migrate"
)

// Config is read from the environment at startup.
type Config struct {
	Addr       string `env:"ACCOUNTS_ADDR" envDefault:":8080"`
	DSN        string `env:"ACCOUNTS_DSN" envDefault:"file:accounts.db?cache=shared&mode=rwc"`
	BaseURL    string `env:"ACCOUNTS_BASE_URL" envDefault:"http://localhost:8080"`
	SigningKey string `env:"ACCOUNTS_SIGNING_KEY,required"`
	AuthScheme string `env:"ACCOUNTS_AUTH_SCHEME" envDefault:"Bearer"`
	Debug      bool   `env:"ACCOUNTS_DEBUG" envDefault:"false"`

	SMTPAddr     string `env:"ACCOUNTS_SMTP_ADDR"`
	SMTPFrom     string `env:"ACCOUNTS_SMTP_FROM" envDefault:"no-reply@localhost"`
	SMTPUser     string `env:"ACCOUNTS_SMTP_USER"`
	SMTPPassword string `env:"ACCOUNTS_SMTP_PASSWORD"`
	SMTPHost     string `env:"ACCOUNTS_SMTP_HOST"`
}

func (c Config) GetSigningKey() string { return c.SigningKey }
func (c Config) GetBaseURL() string    { return c.BaseURL }
func (c Config) GetAuthScheme() string { return c.AuthScheme }

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Debug),
		glog.WithName("accounts"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	db, err := setupDB(ctx, cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	repo := accounts.NewRepositoryManager(db)
	authority := accounts.NewTokenAuthority(repo.Tokens()).
		WithLogger(lgr.GetLogger("tokens"))
	auther := accounts.NewAuthenticator(repo.Users(), authority).
		WithLogger(lgr.GetLogger("auth"))
	codec := accounts.NewVerificationCodec(cfg.SigningKey)
	guard := accounts.NewRouteGuard(auther, accounts.NewPolicy()).
		WithScheme(cfg.AuthScheme).
		WithLogger(lgr.GetLogger("guard"))

	dispatcher, err := setupMailer(cfg, lgr)
	if err != nil {
		log.Fatalf("mailer: %v", err)
	}

	controller := accounts.NewAccountController(
		repo,
		guard,
		accounts.NewRegisterUserHandler(repo, codec, cfg).
			WithMailer(dispatcher).
			WithLogger(lgr.GetLogger("signup")),
		accounts.NewVerifyAccountHandler(repo, codec).
			WithLogger(lgr.GetLogger("verify")),
		accounts.NewLoginHandler(repo, authority).
			WithLogger(lgr.GetLogger("login")),
		accounts.NewLogoutHandler(authority).
			WithLogger(lgr.GetLogger("logout")),
		accounts.NewForgotPasswordHandler(repo).
			WithMailer(dispatcher).
			WithLogger(lgr.GetLogger("forgot")),
		accounts.NewConfirmPasswordHandler(repo).
			WithLogger(lgr.GetLogger("confirm")),
		accounts.NewResetPasswordHandler(repo).
			WithLogger(lgr.GetLogger("reset")),
		accounts.WithControllerDebug(cfg.Debug),
		accounts.WithControllerLogger(lgr.GetLogger("http")),
	)

	app := fiber.New(fiber.Config{
		AppName: "accounts",
	})

	accounts.RegisterAccountRoutes(app, controller)

	go func() {
		if err := app.Listen(cfg.Addr); err != nil {
			log.Fatalf("server: %v", err)
		}
	}()

	lgr.Info("accounts service listening", "addr", cfg.Addr)

	WaitExitSignal()

	if err := app.Shutdown(); err != nil {
		lgr.Error("shutdown", "error", err)
	}
}

func setupDB(ctx context.Context, cfg Config) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DSN)
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	migrations := migrate.NewMigrations()
	if err := migrations.Discover(accounts.GetMigrationsFS()); err != nil {
		return nil, err
	}

	migrator := migrate.NewMigrator(db, migrations)
	if err := migrator.Init(ctx); err != nil {
		return nil, err
	}

	if _, err := migrator.Migrate(ctx); err != nil {
		return nil, err
	}

	return db, nil
}

func setupMailer(cfg Config, lgr *glog.BaseLogger) (*accounts.Dispatcher, error) {
	if cfg.SMTPAddr == "" {
		mailer := accounts.NewLogMailer(lgr.GetLogger("mail"))
		return accounts.NewDispatcher(mailer).
			WithLogger(lgr.GetLogger("mail")), nil
	}

	engine, err := accounts.NewMailEngine()
	if err != nil {
		return nil, err
	}

	var auth smtp.Auth
	if cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	}

	mailer := accounts.NewSMTPMailer(cfg.SMTPAddr, cfg.SMTPFrom, auth, engine)
	return accounts.NewDispatcher(mailer).
		WithLogger(lgr.GetLogger("mail")), nil
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
