package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/joelikes8/Bot-Product/pkg/logging"
)

func main() {
	a, err := InitializeApp()
	if err != nil {
		log.Fatalln(err)
	}
	parseConfig()
	a.Info("Starting application")
	if err := a.Run(); err != nil {
		a.Error("Error running application", slog.String(logging.KeyError, err.Error()))
		os.Exit(1)
	}
}
