package services

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// AuditLog appends timestamped cleanup trail lines to a dedicated file.
// The file is opened once at startup and closed at shutdown; every line is
// flushed as it is written (logrus does not buffer). A nil *AuditLog is
// valid and records nothing, so the service runs fine without a configured
// audit path.
type AuditLog struct {
	file   *os.File
	logger *logrus.Logger
}

// NewAuditLog opens (or creates) the audit file in append mode
func NewAuditLog(path string) (*AuditLog, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log %s: %w", path, err)
	}

	logger := logrus.New()
	logger.SetOutput(file)
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		DisableColors:   true,
	})

	return &AuditLog{file: file, logger: logger}, nil
}

// Record writes one audit line with structured fields
func (a *AuditLog) Record(tenantID, message string, fields logrus.Fields) {
	if a == nil {
		return
	}
	entry := a.logger.WithField("tenantId", tenantID)
	if fields != nil {
		entry = entry.WithFields(fields)
	}
	entry.Info(message)
}

// Close releases the underlying file
func (a *AuditLog) Close() error {
	if a == nil || a.file == nil {
		return nil
	}
	return a.file.Close()
}
