package output

import (
	"os"
	"path/filepath"
)

// GetLogFilePath returns the path to the log file.
// If TICKETFLOW_LOG_FILE is set, uses that path.
// Otherwise, uses ~/.ticketflow/logs/ticketflow.log
func GetLogFilePath() string {
	if customPath := os.Getenv("TICKETFLOW_LOG_FILE"); customPath != "" {
		return customPath
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if we can't get home dir
		return "ticketflow.log"
	}

	return filepath.Join(homeDir, ".ticketflow", "logs", "ticketflow.log")
}
