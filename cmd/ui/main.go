package main

import (
	"flag"
	"log"
	"os"

	"bubbleviz/ui"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	file := flag.String("file", os.Getenv("CHART_FILE"), "chart file written by the CLI (.html, .svg or .png)")
	port := flag.String("port", "8081", "port to listen on")
	flag.Parse()

	app, err := ui.NewApp(ui.Config{
		Port: *port,
		File: *file,
	})
	if err != nil {
		log.Fatal("Failed to create viewer:", err)
	}

	log.Fatal(app.Start(*port))
}
