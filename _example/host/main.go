
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/kmcsr/go-logger"
	logrusl "github.com/kmcsr/go-logger/logrus"

	"github.com/kmcsr/go-jsbridge/hostlink"
	"github.com/kmcsr/go-jsbridge/native/sim"
)

const hostAddr = "127.0.0.1:12348"

var loger = initLogger()

func initLogger()(loger logger.Logger){
	loger = logrusl.New()
	loger.SetOutput(os.Stderr)
	logrusl.Unwrap(loger).SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05.000",
		FullTimestamp: true,
	})
	loger.SetLevel(logger.TraceLevel)
	return
}

func main(){
	platform := sim.New()
	platform.Motion().SetAutoTick(true)
	host := hostlink.NewHost(hostAddr, platform, loger)
	loger.Info("host.ListenAndServe at ", hostAddr)
	if err := host.ListenAndServe(); err != nil {
		loger.Panic(err)
	}
}
