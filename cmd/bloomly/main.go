package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/terraincognita07/bloomly/internal/api"
	"github.com/terraincognita07/bloomly/internal/app"
	"github.com/terraincognita07/bloomly/internal/bot"
	"github.com/terraincognita07/bloomly/internal/cli"
	"github.com/terraincognita07/bloomly/internal/config"
	"github.com/terraincognita07/bloomly/internal/session"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout io.Writer, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return exitUsage
	}

	if len(args) > 0 && cli.IsCommand(args[0]) {
		if err := cli.Run(cfg, args, stdout); err != nil {
			fmt.Fprintln(stderr, err)
			if errors.Is(err, cli.ErrPredictionFailed) {
				return exitFailure
			}
			return exitUsage
		}
		return exitOK
	}
	if len(args) > 0 && args[0] != "serve" {
		fmt.Fprintf(stderr, "%v %q\n%s\n", cli.ErrUnknownCommand, args[0], cli.Usage)
		return exitUsage
	}

	if err := cfg.ValidateServer(); err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return exitUsage
	}
	serve(cfg)
	return exitOK
}

func serve(cfg config.Config) {
	time.Local = cfg.Location

	runtime, err := app.Open(cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer runtime.Close()

	sessions := session.NewStore()
	handler, err := api.NewHandler(api.HandlerOptions{
		Wizard:       runtime.Wizard,
		Sessions:     sessions,
		I18n:         runtime.I18n,
		SecretKey:    cfg.SecretKey,
		SessionTTL:   cfg.SessionTTL(),
		CookieSecure: cfg.CookieSecure,
	})
	if err != nil {
		log.Fatalf("handler init failed: %v", err)
	}
	server := newServer(handler)

	lifecycleCtx, cancelLifecycle := context.WithCancel(context.Background())
	defer cancelLifecycle()
	if err := session.StartSweeper(lifecycleCtx, sessions, cfg.SessionSweepSchedule, cfg.SessionTTL()); err != nil {
		log.Fatalf("session sweeper init failed: %v", err)
	}
	if cfg.TelegramBotToken != "" {
		startBot(lifecycleCtx, cfg, runtime, sessions)
	}

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		cancelLifecycle()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("server shutdown failed: %v", err)
		}
	}()

	log.Printf("Bloomly listening on http://0.0.0.0:%s (db: %s, tz: %s, recommendations: %d)", cfg.Port, cfg.DBPath, cfg.Location.String(), runtime.Matcher.Len())
	if err := server.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

func newServer(handler *api.Handler) *fiber.App {
	server := fiber.New(fiber.Config{
		AppName:               "Bloomly",
		DisableStartupMessage: true,
	})

	server.Use(recover.New())
	server.Use(logger.New())
	server.Use(compress.New())
	server.Use(handler.LanguageMiddleware)
	api.RegisterRoutes(server, handler)
	server.Use(handler.NotFound)
	return server
}

// startBot shares the session store with HTTP, so the sweeper covers both.
func startBot(ctx context.Context, cfg config.Config, runtime *app.Runtime, sessions *session.Store) {
	client, err := bot.Connect(cfg.TelegramBotToken)
	if err != nil {
		log.Fatalf("telegram bot init failed: %v", err)
	}
	telegramBot, err := bot.New(client, bot.Options{
		Wizard:   runtime.Wizard,
		Sessions: sessions,
		I18n:     runtime.I18n,
	})
	if err != nil {
		log.Fatalf("telegram bot init failed: %v", err)
	}
	go bot.Serve(ctx, client, telegramBot)
}
