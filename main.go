package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/rpupo63/multiblog-backend/api"
	"github.com/rpupo63/multiblog-backend/config"
	"github.com/rpupo63/multiblog-backend/database"
	"github.com/rpupo63/multiblog-backend/services"
	"github.com/rpupo63/multiblog-backend/storage"
)

type options struct {
	migrate         bool
	seed            bool
	createSuperuser bool
	email           string
	password        string
	username        string
	sampleImages    []string
}

// runsCommand reports whether a one-shot command replaces serving HTTP.
func (o options) runsCommand() bool {
	return o.migrate || o.seed || o.createSuperuser
}

func parseFlags(args []string) (options, error) {
	var opts options
	flagSet := pflag.NewFlagSet("multiblog", pflag.ContinueOnError)
	flagSet.BoolVar(&opts.migrate, "migrate", false, "create or update the database schema and exit")
	flagSet.BoolVar(&opts.seed, "seed", false, "insert sample users, tags and posts and exit")
	flagSet.StringSliceVar(&opts.sampleImages, "sample-image", nil, "image URL that --seed may attach to posts (repeatable)")
	flagSet.BoolVar(&opts.createSuperuser, "create-superuser", false, "create a staff user and exit")
	flagSet.StringVar(&opts.email, "email", "", "email for --create-superuser")
	flagSet.StringVar(&opts.password, "password", "", "password for --create-superuser")
	flagSet.StringVar(&opts.username, "username", "", "optional username for --create-superuser")

	if err := flagSet.Parse(args); err != nil {
		return opts, err
	}
	if opts.createSuperuser && (opts.email == "" || opts.password == "") {
		return opts, fmt.Errorf("--create-superuser requires --email and --password")
	}
	return opts, nil
}

// setupLogger configures the global zerolog logger. The returned func flushes the log file.
func setupLogger(settings config.Settings) func() {
	level, err := zerolog.ParseLevel(settings.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	var console io.Writer = os.Stdout
	if settings.LogPretty {
		console = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}

	closeLog := func() {}
	writer := console
	if settings.LogFile != "" {
		rotating := &lumberjack.Logger{
			Filename:   settings.LogFile,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		}
		closeLog = func() { _ = rotating.Close() }
		writer = io.MultiWriter(console, rotating)
	}

	log.Logger = zerolog.New(writer).With().Timestamp().Logger()
	return closeLog
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	settings := config.Load(config.New())
	closeLog := setupLogger(settings)
	defer closeLog()

	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if err == pflag.ErrHelp {
			return
		}
		log.Fatal().Err(err).Msg("Invalid arguments")
	}

	serving := !opts.runsCommand()
	if serving {
		if err := settings.Validate(); err != nil {
			log.Fatal().Err(err).Msg("Invalid configuration")
		}
	}

	log.Info().Str("dbType", settings.DBType).Msg("Initializing app...")

	db, err := database.Open(settings)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}
	currentDB := database.New(db)

	ctx := context.Background()
	if opts.migrate || settings.AutoMigrate {
		if err := currentDB.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("Error migrating database")
		}
		log.Info().Msg("Database schema is up to date")
	}

	if !serving {
		if err := runCommand(ctx, currentDB, opts); err != nil {
			log.Fatal().Err(err).Msg("Command failed")
		}
		return
	}

	images, err := storage.New(ctx, settings.Storage)
	if err != nil {
		log.Fatal().Err(err).Str("backend", settings.Storage.Backend).Msg("Error initializing image storage")
	}

	errChannel := make(chan error)
	defer close(errChannel)

	server, err := api.NewServer(currentDB, settings, images)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(30 * time.Second)
}

// runCommand executes the one-shot management commands.
func runCommand(ctx context.Context, db database.Database, opts options) error {
	if opts.createSuperuser {
		user, err := services.NewUserService(db.UserRepo()).
			CreateSuperuser(ctx, opts.email, opts.password, opts.username)
		if err != nil {
			return fmt.Errorf("create superuser: %w", err)
		}
		log.Info().Uint("userID", user.ID).Str("email", user.Email).Msg("Superuser created")
	}

	if opts.seed {
		seeder := services.NewSeeder(db.UserRepo(), db.TagRepo(), db.BlogPostRepo(),
			services.WithSampleImages(opts.sampleImages...))
		result, err := seeder.Seed(ctx)
		if err != nil {
			return err
		}
		log.Info().
			Int("users", result.Users).
			Int("tags", result.Tags).
			Int("posts", result.Posts).
			Msg("Database seeded")
	}
	return nil
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
