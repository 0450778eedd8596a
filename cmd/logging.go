package cmd

import (
	"io"
	"log"
	"os"

	"github.com/bloodmagesoftware/xoom/config"
)

// configureLogging tees log output into the configured log file. Failing to
// open the file is reported but never fatal.
func configureLogging(cfg config.Config) {
	if cfg.Log.File == "" {
		return
	}
	f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Printf("logging to %s: %v", cfg.Log.File, err)
		return
	}
	log.SetOutput(io.MultiWriter(os.Stderr, f))
}
