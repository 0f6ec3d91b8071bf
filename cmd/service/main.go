package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/caminemosjuntos/counseling/internal"
	"github.com/caminemosjuntos/counseling/internal/config"
	"github.com/caminemosjuntos/counseling/internal/logging"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const keyLength = 32

func main() {
	fmt.Println("starting ...")

	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	envFile := flag.String("env-file", ".env", "optional file with secrets, loaded into the environment")
	flag.Parse()

	// real env vars win over the file
	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		fmt.Printf("load env file [%s]: %s\n", *envFile, err)
	}

	log.Warnf("---->> running in [%s] environment", *env)

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		panic(err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:      cfg.LogsPath,
		LogToStdout:      cfg.LogToStdout,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    cfg.LogFormatJSON,
		Environment:      cfg.Environment,
		SentryEnabled:    cfg.SentryEnabled,
		SentryDSN:        os.Getenv("SENTRY_DSN"),
		SentryServerName: "caminemos-juntos",
	})

	log.Debugf("using port: %d", cfg.Port)
	log.Debugf("using server logs path: [%s]", cfg.LogsPath)

	sessionKey := mustKey("CJ_SESSION_KEY")
	csrfKey := mustKey("CJ_CSRF_KEY")

	smtpPassword := os.Getenv("CJ_SMTP_PASSWORD")
	if smtpPassword == "" {
		log.Errorf("smtp password not set, emails will fail. use CJ_SMTP_PASSWORD")
	}

	redisPassword := os.Getenv("CJ_REDIS_PASS")
	if redisPassword == "" {
		log.Warnln("redis password not set. use CJ_REDIS_PASS")
	}

	honeycombEnabled := os.Getenv("HONEYCOMB_ENABLED") == "true"
	if honeycombEnabled {
		if honeycombApiKey := os.Getenv("HONEYCOMB_API_KEY"); honeycombApiKey == "" {
			log.Warnln("HONEYCOMB_API_KEY env var not set")
		}
	} else {
		log.Debugln("honeycomb tracing disabled")
	}

	chOsInterrupt := make(chan os.Signal, 1)
	signal.Notify(chOsInterrupt, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server, err := internal.NewServer(
		ctx,
		internal.NewServerParams{
			Config:                  cfg,
			SessionKey:              sessionKey,
			CSRFKey:                 csrfKey,
			SMTPPassword:            smtpPassword,
			RedisPassword:           redisPassword,
			PostgresPassword:        os.Getenv("CJ_POSTGRES_PASS"),
			HoneycombTracingEnabled: honeycombEnabled,
		},
	)
	if err != nil {
		log.Fatalf("new server: %s", err)
	}

	server.Serve(cfg.Host, cfg.Port)

	receivedSig := <-chOsInterrupt
	log.Warnf("signal [%s] received, shutting down ...", receivedSig)
	cancel()

	server.GracefulShutdown()
}

// mustKey reads a signing key from the env; sessions and csrf tokens are worthless with a weak one
func mustKey(envVar string) []byte {
	key := os.Getenv(envVar)
	if len(key) < keyLength {
		log.Fatalf("%s must be set to at least %d characters", envVar, keyLength)
	}
	return []byte(key)[:keyLength]
}
