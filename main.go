package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/ruslan-korneev/lingooru-sub001/internal/config"
	"github.com/ruslan-korneev/lingooru-sub001/internal/database"
	"github.com/ruslan-korneev/lingooru-sub001/internal/excel"
	"github.com/ruslan-korneev/lingooru-sub001/internal/notify"
	"github.com/ruslan-korneev/lingooru-sub001/internal/review"
	"github.com/ruslan-korneev/lingooru-sub001/internal/scheduler"
	"github.com/ruslan-korneev/lingooru-sub001/pkg/models"
)

func main() {
	importFile := flag.String("import", "", "import a word list from an .xlsx file and exit")
	importSheet := flag.String("sheet", "Sheet1", "sheet name for -import")
	importLang := flag.String("lang", "en", "word language for -import")
	importUser := flag.Int64("user", 0, "enroll imported words for this user ID (optional)")
	flag.Parse()

	log := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	words := database.NewWordRepository(db)
	records := database.NewLearningRecordRepository(db)

	if *importFile != "" {
		runImport(log, words, records, excel.ImportConfig{
			FilePath:     *importFile,
			SheetName:    *importSheet,
			Language:     models.Language(*importLang),
			EnrollUserID: *importUser,
			StartRow:     2,
		})
		return
	}

	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is required to run the reminder service")
	}
	notifier, err := notify.NewTelegramNotifier(cfg.TelegramToken)
	if err != nil {
		log.WithError(err).Fatal("failed to create telegram notifier")
	}

	reminders := scheduler.New(records, notifier, scheduler.Config{
		StartHour: cfg.NotifyStartHour,
		EndHour:   cfg.NotifyEndHour,
	}, log)
	if err := reminders.Start(); err != nil {
		log.WithError(err).Fatal("failed to start reminder scheduler")
	}
	defer reminders.Stop()

	log.Info("reminder service started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	log.WithField("signal", sig.String()).Info("shutting down")
}

func runImport(log *logrus.Logger, words review.WordStore, records review.LearningStore, cfg excel.ImportConfig) {
	importer := excel.NewImporter(words, records, log)
	result, err := importer.ImportWords(context.Background(), cfg)
	if err != nil {
		log.WithError(err).Fatal("import failed")
	}
	for _, rowErr := range result.Errors {
		log.Warn(rowErr)
	}
	log.WithFields(logrus.Fields{
		"processed": result.TotalProcessed,
		"created":   result.Created,
		"skipped":   result.Skipped,
		"enrolled":  result.Enrolled,
	}).Info("import finished")
}
