package config

import (
	"io"
	"log"
	"os"

	"github.com/covalenthq/lumberjack"
)

// InitLogger sends the standard logger to a rotating file (and stdout) when
// LOG_FILE is set. It returns the writer so callers can share it with the
// HTTP request logger.
func InitLogger(cfg LogConfig) io.Writer {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	if cfg.File == "" {
		return os.Stdout
	}
	w := io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	})
	log.SetOutput(w)
	return w
}
