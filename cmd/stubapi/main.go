package main

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/dorsu/alumnitracer/internal/app/stubapi"
	"github.com/dorsu/alumnitracer/internal/config"
	"github.com/dorsu/alumnitracer/internal/pkg/auth"
	"github.com/dorsu/alumnitracer/internal/pkg/filestorage"
	"github.com/dorsu/alumnitracer/internal/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "stubapi",
		Usage: "local stand-in for the alumni tracer backend",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "path to the config file"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error().Err(err).Msg("Stub API failed")
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}

	logger.Configure(logger.Config{
		Level:  logger.ParseLevel(cfg.Logging.Level),
		Pretty: cfg.Logging.Format == "console",
		Output: os.Stderr,
	})

	files, err := filestorage.NewLocalStorage(cfg.Stub.UploadDir, "")
	if err != nil {
		return err
	}

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      cfg.Stub.JWTSecret,
		AccessTokenExp: cfg.StubTokenExpiration(),
		TokenIssuer:    cfg.Stub.TokenIssuer,
	})

	srv := stubapi.NewServer(stubapi.Options{
		JWTService: jwtService,
		Files:      files,
	})

	if err := seed(srv.Store()); err != nil {
		return err
	}

	return srv.Run(":" + cfg.Stub.Port)
}

// seed provisions one demo account so the client can log in immediately.
func seed(store *stubapi.Store) error {
	account, err := store.AddAccount(stubapi.Account{
		Username:      "demo",
		Email:         "demo@example.edu",
		FullName:      "Demo Alumni",
		ProgramCourse: "BS Information Technology",
		YearGraduated: 2024,
	}, "demo1234")
	if err != nil {
		return err
	}
	logger.Info().Int64("id", account.ID).Str("username", account.Username).Msg("Seeded demo account (password: demo1234)")
	return nil
}
