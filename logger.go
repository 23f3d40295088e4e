
package jsbridge

import (
	"fmt"
	"os"
	"strings"

	"github.com/kmcsr/go-logger"
	logrusl "github.com/kmcsr/go-logger/logrus"
)

var loger logger.Logger = initLogger()

func initLogger()(logger.Logger){
	loger := logrusl.New()
	loger.SetOutput(os.Stderr)
	return loger
}

func Logger()(logger.Logger){
	return loger
}

func SetLogger(l logger.Logger){
	loger = l
}

// ParseLevel maps a configured level name to a logger level; the empty name
// is info.
func ParseLevel(name string)(lvl logger.Level, err error){
	switch strings.ToLower(name) {
	case "trace":
		return logger.TraceLevel, nil
	case "debug":
		return logger.DebugLevel, nil
	case "info", "":
		return logger.InfoLevel, nil
	case "warn", "warning":
		return logger.WarnLevel, nil
	case "error":
		return logger.ErrorLevel, nil
	}
	return logger.InfoLevel, fmt.Errorf("Unknown log level '%s'", name)
}
