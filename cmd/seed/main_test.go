package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"natours/internal/service"
	"natours/internal/testutil"
)

func TestLoadTours(t *testing.T) {
	tours, err := loadTours(strings.NewReader(`[
		{"id": 3, "name": "The City Wanderer", "duration": 9, "maxGroupSize": 20,
		 "difficulty": "easy", "price": 1197, "summary": "Living the life of Wanderlust in the US",
		 "imageCover": "tour-4-cover.jpg", "startDates": ["2021-03-11,10:00"]}
	]`))

	require.NoError(t, err)
	require.Len(t, tours, 1)
	assert.Equal(t, "The City Wanderer", tours[0].Name)
	assert.Equal(t, uuid.Nil, tours[0].ID)
	assert.Equal(t, "1197", tours[0].Price.String())
}

func TestLoadTours_BadJSON(t *testing.T) {
	_, err := loadTours(strings.NewReader(`{"name": "not an array"}`))
	assert.Error(t, err)
}

func TestDevDataImports(t *testing.T) {
	f, err := os.Open("../../" + defaultFile)
	require.NoError(t, err)
	defer f.Close()

	tours, err := loadTours(f)
	require.NoError(t, err)

	svc := service.NewTourService(testutil.NewTourStore(), nil)
	n, err := svc.ImportTours(context.Background(), tours)
	require.NoError(t, err)
	assert.Equal(t, len(tours), n)
}

func TestRun_RequiresOneAction(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	assert.Error(t, run(logger, false, false, defaultFile))
	assert.Error(t, run(logger, true, true, defaultFile))
}
