package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bubbleviz/internal/config"
	"bubbleviz/internal/container"
	"bubbleviz/ui"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create dependency injection container
	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := appContainer.InitWithDatabase(ctx); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	server, err := ui.NewServer(appContainer.Visualization, appContainer.Target, appContainer.SSEHub, appContainer.Loader, ui.Options{
		GinMode:      appConfig.Server.GinMode,
		NeedsLibrary: appConfig.Chart.Renderer == config.RendererPlotly,
		SortGroups:   appConfig.Chart.SortGroups,
	})
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Initial table, if one is configured
	source, err := appContainer.StartupSource()
	if err != nil {
		log.Fatalf("Failed to configure table source: %v", err)
	}
	if source != nil {
		tbl, err := source.Fetch(ctx)
		if err != nil {
			log.Fatalf("Failed to load initial table: %v", err)
		}
		log.Printf("Loaded initial table: %d columns, %d rows", len(tbl.Columns), len(tbl.Rows))
		server.SetTable(tbl)
	} else {
		server.SetTable(nil)
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Println("Shutting down")
		appContainer.Shutdown(context.Background())
		os.Exit(0)
	}()

	log.Fatal(server.Start(":" + appConfig.Server.Port))
}
