package logging

import (
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation limits of log files.
const (
	logFileMaxSizeMB  = 64
	logFileMaxBackups = 3
)

// FileAppender writes console formatted lines to a size-rotated file.
type FileAppender struct {
	*ConsoleAppender
	file *lumberjack.Logger
}

// NewFileAppender creates an appender writing to filename. Old files are compressed and at most
// three are kept.
func NewFileAppender(filename string) *FileAppender {
	file := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    logFileMaxSizeMB,
		MaxBackups: logFileMaxBackups,
		Compress:   true,
	}
	return &FileAppender{
		ConsoleAppender: NewWriterAppender(file),
		file:            file,
	}
}

// Close closes the log file.
func (fa *FileAppender) Close() error {
	return fa.file.Close()
}
