package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "bubbleviz",
		Short: "Render result tables as bubble charts",
	}

	rootCmd.AddCommand(
		newRenderCmd(),
		newSpecCmd(),
		newSummaryCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
