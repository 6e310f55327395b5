package log

// Tracef trace format log
func Tracef(format string, args ...interface{}) {
	logger.Tracef(format, args...)
}

// Debugf debug format log
func Debugf(format string, args ...interface{}) {
	logger.Debugf(format, args...)
}

// Infof info format log
func Infof(format string, args ...interface{}) {
	logger.Infof(format, args...)
}

// Warnf warn format log
func Warnf(format string, args ...interface{}) {
	logger.Warnf(format, args...)
}

// Errorf error format log
func Errorf(format string, args ...interface{}) {
	logger.Errorf(format, args...)
}

// Fatalf fatal format log, then exit
func Fatalf(format string, args ...interface{}) {
	logger.Fatalf(format, args...)
}

// Printf print format log at info level
func Printf(format string, args ...interface{}) {
	logger.Printf(format, args...)
}

// Println print log at info level
func Println(args ...interface{}) {
	logger.Println(args...)
}
