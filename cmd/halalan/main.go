package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"gitlab.com/halalan/halalan/internal/db"
	"gitlab.com/halalan/halalan/internal/models"
	"gitlab.com/halalan/halalan/internal/routes"
)

const usage = `Usage:
	- start
	- migrate [up/down/drop]
	- createadmin <username> <password>
`

func main() {
	if len(os.Args) == 1 {
		fmt.Print(usage)
		return
	}
	envConfig := models.ReadEnvConfig()
	switch os.Args[1] {
	case "start":
		server := HalalanServer{EnvConfig: envConfig}
		server.Setup()
		server.Run()
	case "migrate":
		if len(os.Args) < 3 {
			fmt.Print(usage)
			return
		}
		var err error
		switch os.Args[2] {
		case "up":
			err = db.MigrateUp(envConfig.DatabaseURL)
		case "down":
			err = db.MigrateDown(envConfig.DatabaseURL)
		case "drop":
			err = db.Drop(envConfig.DatabaseURL)
		default:
			fmt.Print(usage)
			return
		}
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println("Done")
	case "createadmin":
		if len(os.Args) < 4 {
			fmt.Print(usage)
			return
		}
		database, err := db.Connect(&envConfig)
		if err != nil {
			fmt.Println(err)
			return
		}
		defer database.Close()
		err = database.CreateAdmin(context.Background(), os.Args[2], os.Args[3])
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println("Done")
	default:
		fmt.Print(usage)
	}
}

type HalalanServer struct {
	models.EnvConfig
	addr       string
	logger     zerolog.Logger
	router     chi.Router
	httpServer *http.Server
	database   db.SharedDB
}

func (server *HalalanServer) setupLogger() {
	var writer io.Writer
	if server.Debug {
		writer = zerolog.ConsoleWriter{Out: os.Stdout}
	} else {
		writer = os.Stdout
	}
	log := zerolog.New(writer).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	server.logger = log
}
func (server *HalalanServer) setupDB() {
	err := db.MigrateUp(server.DatabaseURL)
	if err != nil {
		server.logger.Fatal().Err(err).Send()
	}
	database, err := db.Connect(&server.EnvConfig)
	if err != nil {
		server.logger.Fatal().AnErr("Connecting to db", err).Send()
	}
	server.database = database
}
func (server *HalalanServer) setupRouter() {
	server.router = routes.NewRouter(&server.EnvConfig, &server.database, server.logger)
}
func (server *HalalanServer) setupHttpServer() {
	server.addr = fmt.Sprintf("http://localhost:%s", server.EnvConfig.Port)
	server.httpServer = &http.Server{
		Addr:         ":" + server.EnvConfig.Port,
		Handler:      server.router,
		ReadTimeout:  1 * time.Minute,
		WriteTimeout: 1 * time.Minute,
	}
}
func (server *HalalanServer) Setup() {
	server.setupLogger()
	server.setupDB()
	server.setupRouter()
	server.setupHttpServer()
}
func (server *HalalanServer) Shutdown() {
	if err := server.httpServer.Shutdown(context.Background()); err != nil {
		server.logger.Error().
			Err(err).
			Msg("Error shutting down")
	}
	server.database.Close()
}
func (server *HalalanServer) Run() {
	server.logger.Info().Str("server_address", server.addr).Msg("Server is starting")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go server.httpServer.ListenAndServe()
	server.logger.Info().Msg("Ready")

	<-ctx.Done()
	stop() // Stop listening for signals
	server.logger.Info().Msg("Shutting down gracefully")
	server.Shutdown()
}
