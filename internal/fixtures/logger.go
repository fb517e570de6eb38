package fixtures

import (
	"os"

	"github.com/bitmark-inc/logger"
)

const logDir = "testing"

// SetupTestLogger starts file-only logging under ./testing.
func SetupTestLogger() {
	removeFiles()
	_ = os.Mkdir(logDir, 0700)

	logging := logger.Configuration{
		Directory: logDir,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}
	_ = logger.Initialise(logging)
}

// TeardownTestLogger stops logging and removes the log directory.
func TeardownTestLogger() {
	logger.Finalise()
	removeFiles()
}

func removeFiles() {
	_ = os.RemoveAll(logDir)
}
