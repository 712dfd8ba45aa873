// Package logutil manages the diagnostic loggers used across the codebase.
//
// Packages obtain a logger with GetLogger at init time; all loggers write to
// a common output, which discards everything until SetOutput or SetOutputFile
// redirects it (typically from the -log flag, once, at startup).
package logutil

import (
	"fmt"
	"io"
	"log"
	"os"
)

var (
	out     io.Writer = io.Discard
	outFile *os.File
	loggers []*log.Logger
)

// GetLogger gets a logger with the given prefix.
func GetLogger(prefix string) *log.Logger {
	logger := log.New(out, prefix, log.LstdFlags)
	loggers = append(loggers, logger)
	return logger
}

// SetOutput redirects the output of all loggers obtained with GetLogger to
// newOut. If the old output was a file opened by SetOutputFile, it is closed.
func SetOutput(newOut io.Writer) {
	closeOutFile()
	out = newOut
	outFile = nil
	for _, logger := range loggers {
		logger.SetOutput(out)
	}
}

// SetOutputFile redirects the output of all loggers obtained with GetLogger
// to the named file, truncating it. If the old output was a file opened by
// SetOutputFile, it is closed. An empty name is equivalent to
// SetOutput(io.Discard).
func SetOutputFile(fname string) error {
	if fname == "" {
		SetOutput(io.Discard)
		return nil
	}
	file, err := os.Create(fname)
	if err != nil {
		return fmt.Errorf("failed to open log file: %v", err)
	}
	closeOutFile()
	out = file
	outFile = file
	for _, logger := range loggers {
		logger.SetOutput(out)
	}
	return nil
}

func closeOutFile() {
	if outFile != nil {
		outFile.Close()
	}
}
