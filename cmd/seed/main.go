package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"natours/internal/config"
	"natours/internal/db"
	"natours/internal/logging"
	"natours/internal/model"
	"natours/internal/repository"
	"natours/internal/service"
)

const defaultFile = "dev-data/tours-simple.json"

// seedTour is a tour as stored in the dev data file. The file carries
// numeric ids, which are dropped in favour of generated UUIDs.
type seedTour struct {
	model.Tour
	ID json.RawMessage `json:"id,omitempty"`
}

func main() {
	importFlag := flag.Bool("import", false, "import tours from the data file")
	deleteFlag := flag.Bool("delete", false, "delete every tour")
	file := flag.String("file", defaultFile, "path of the tours JSON file")
	flag.Parse()

	logger := logging.New(os.Stdout, false)
	if err := run(logger, *importFlag, *deleteFlag, *file); err != nil {
		logger.Error("seed failed", logging.Err(err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger, doImport, doDelete bool, file string) error {
	if doImport == doDelete {
		return errors.New("pass exactly one of -import or -delete")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	gormDB, err := db.NewMySQL(cfg.MySQLDSN, cfg.IsDev())
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(gormDB) }()
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	tours := service.NewTourService(repository.NewTourRepository(gormDB), nil)
	ctx := context.Background()

	if doDelete {
		n, err := tours.DeleteAllTours(ctx)
		if err != nil {
			return err
		}
		logger.Info("tours deleted", slog.Int64("count", n))
		return nil
	}

	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()

	data, err := loadTours(f)
	if err != nil {
		return err
	}
	n, err := tours.ImportTours(ctx, data)
	if err != nil {
		return err
	}
	logger.Info("tours imported", slog.Int("count", n), slog.String("file", file))
	return nil
}

// loadTours decodes a JSON array of tours.
func loadTours(r io.Reader) ([]model.Tour, error) {
	var raw []seedTour
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode tours: %w", err)
	}
	tours := make([]model.Tour, 0, len(raw))
	for _, t := range raw {
		tours = append(tours, t.Tour)
	}
	return tours, nil
}
