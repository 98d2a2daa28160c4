// Package logging builds the structured logger shared by the service.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// New returns a JSON slog logger writing to w (stdout when nil). Development
// mode lowers the level to debug.
func New(w io.Writer, dev bool) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	level := slog.LevelInfo
	if dev {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// Err is the conventional attribute for an error value.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}
