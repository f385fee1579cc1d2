package main

import (
	"bufio"
	"fmt"
	"os"

	"librarymanager/internal/cli"
	"librarymanager/internal/config"
	"librarymanager/internal/logger"
	"librarymanager/internal/repositories"
	"librarymanager/internal/services"
	"librarymanager/internal/store"
)

const defaultConfigPath = "config/settings.json"

func main() {
	// Keep a packaged executable's window readable on crash: report, pause,
	// then exit.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Unexpected Application Error: %v\n", r)
			pause()
			os.Exit(1)
		}
	}()

	cfgPath := defaultConfigPath
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fatal(err)
	}

	log, err := logger.New(cfg.Logging.Level)
	if err != nil {
		fatal(err)
	}
	defer log.Sync()

	db, err := store.Open(cfg.Database)
	if err != nil {
		log.Errorw("could not connect to the store", "error", err)
		fatal(err)
	}
	defer store.Close(db)

	publisherRepo := repositories.NewPublisherRepository(db)
	bookRepo := repositories.NewBookRepository(db)
	memberRepo := repositories.NewMemberRepository(db)
	loanRepo := repositories.NewLoanRepository(db)

	loanService := services.NewLoanService(db, loanRepo, memberRepo, log)
	importService := services.NewImportService(db, publisherRepo, bookRepo, log)
	reportService := services.NewReportService(db)

	app := cli.New(
		os.Stdin, os.Stdout,
		bookRepo, publisherRepo,
		loanService, importService, reportService,
		log, cfg.Import.Dir,
	)
	app.Run()
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	pause()
	os.Exit(1)
}

func pause() {
	fmt.Fprint(os.Stderr, "Press Enter to exit...")
	_, _ = bufio.NewReader(os.Stdin).ReadString('\n')
}
