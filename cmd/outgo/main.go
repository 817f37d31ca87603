package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"outgo/internal/api"
	"outgo/internal/config"
	applog "outgo/internal/log"
	"outgo/internal/session"
	"outgo/internal/store"
	"outgo/internal/tui"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	level, _ := config.ParseLevel(cfg.LogLevel)
	logger, closeLog, err := applog.NewFile(cfg.LogFile, level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closeLog()
	applog.SetDefault(logger)

	logger.Info("starting outgo client", applog.FieldBackendURL, cfg.BackendURL)

	client := api.New(cfg.BackendURL, cfg.HTTPTimeout, logger)
	coordinator := session.New(client, store.New(), logger)

	program := tea.NewProgram(tui.New(coordinator, logger), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		logger.Error("program error", applog.FieldError, err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger.Info("client stopped")
}
