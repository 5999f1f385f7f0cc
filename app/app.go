package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sourcing-negotiation-api/internal/controller"
	"sourcing-negotiation-api/internal/repo"
	"sourcing-negotiation-api/internal/service"
	"sourcing-negotiation-api/pkg/gemini"
	"sourcing-negotiation-api/pkg/http_server"
	"sourcing-negotiation-api/pkg/postgres"
	"syscall"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo"
)

func negotiationTablesExist(pg *postgres.Postgres) (bool, error) {
	if err := pg.Database.Ping(); err != nil {
		return false, err
	}

	var id uuid.UUID
	err := pg.Database.QueryRow("select id from negotiation_session limit 1").Scan(&id)

	return err == nil, nil
}

func migrateTables(driver database.Driver, sourceUrl string, databaseName string) {
	migrations, err := migrate.NewWithDatabaseInstance(sourceUrl, databaseName, driver)
	if err != nil {
		log.Fatal(err)
	}

	if err := migrations.Up(); err != nil {
		if err.Error() == "no change" {
			log.Println("no change made by migration scripts")
		} else {
			log.Fatal(err)
		}
	}
}

func runMigrations(postgresDB *postgres.Postgres, driver database.Driver, databaseName string) {
	tablesExist, err := negotiationTablesExist(postgresDB)
	if err != nil {
		log.Fatal(err)
	}

	if !tablesExist {
		migrateTables(driver, "file://migrations/negotiation-migrations", databaseName)
	}
}

func Run() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded")
	}

	serverAddressEnv := os.Getenv("SERVER_ADDRESS")
	dbConnEnv := os.Getenv("POSTGRES_CONN")
	databaseEnv := os.Getenv("POSTGRES_DATABASE")
	geminiKeyEnv := os.Getenv("GEMINI_API_KEY")
	geminiModelEnv := os.Getenv("GEMINI_MODEL")

	log.Println("Connecting database...")
	postgresDB, err := postgres.NewDB(dbConnEnv)
	if err != nil {
		log.Fatal("Error occurred while connecting to db: %w", err)
	}
	defer postgresDB.Close()

	log.Println("Running migrations...")
	driver, err := pgmigrate.WithInstance(postgresDB.Database, &pgmigrate.Config{DatabaseName: databaseEnv})
	if err != nil {
		log.Fatal(err)
	}
	runMigrations(postgresDB, driver, databaseEnv)

	log.Println("Connecting LLM provider...")
	llm, err := gemini.NewClient(context.Background(), geminiKeyEnv, geminiModelEnv)
	if err != nil {
		log.Fatal("Error occurred while creating gemini client: %w", err)
	}
	defer llm.Close()

	repositories := repo.NewRepositories(postgresDB)
	services := service.NewServices(repositories, llm)
	handler := echo.New()

	log.Println("Setup routes...")
	controller.SetupRoutesHandlers(handler, services)

	log.Println("Starting server...")
	httpServer := http_server.New(handler, serverAddressEnv)

	log.Println("Ready to process requests...")

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		log.Println("Got signal: " + s.String())
	case err = <-httpServer.Notify():
		log.Fatal("Notify error: %w", err)
	}

	log.Println("Shutting down...")
	err = httpServer.Shutdown()
	if err != nil {
		log.Fatal("Shutdown error: %w", err)
	} else {
		log.Println("Successful shutdown")
	}
}
