
package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/kmcsr/go-logger"
	logrusl "github.com/kmcsr/go-logger/logrus"

	"github.com/kmcsr/go-jsbridge"
	"github.com/kmcsr/go-jsbridge/hostlink"
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
	loger.SetLevel(logger.DebugLevel)
	jsbridge.SetLogger(loger)
	return
}

const shakeApp = `
const acc = require("jsbridge:accelerometer");
const { MenuItem } = require("jsbridge:menuitem");

let shakes = 0;

({
	onload(info){
		console.log("loaded", info.name, "on bridge", info.bridge);
		this.item = new MenuItem({ title: "Shakes: 0", titleColor: { red: 255, green: 128, blue: 0 } });
		this.item.on(MenuItem.Events.SELECTED, () => {
			shakes = 0;
			this.item.title = "Shakes: 0";
		});
		acc.updateInterval = 50;
		acc.on(acc.Events.ACCELERATE, (a) => {
			if (Math.abs(a.x) + Math.abs(a.y) > 1.3) {
				shakes++;
				this.item.title = "Shakes: " + shakes;
			}
		});
		acc.start();
	},
	onunload(){
		acc.stop();
		console.log("total shakes:", shakes);
	},
})
`

func main(){
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	remote, err := hostlink.Dial(ctx, hostAddr, loger)
	if err != nil {
		loger.Panic(err)
	}
	defer remote.Close()

	bridge, err := jsbridge.NewBridge(remote, jsbridge.DefaultConfig())
	if err != nil {
		loger.Panic(err)
	}
	if err = bridge.Start(); err != nil {
		loger.Panic(err)
	}
	defer bridge.Stop()

	app, err := bridge.LoadApp(ctx, "shake.js", shakeApp)
	if err != nil {
		loger.Panic(err)
	}
	if err = app.Load(ctx); err != nil {
		loger.Panic(err)
	}
	select {
	case <-ctx.Done():
	case <-remote.Context().Done():
		loger.Info("host disconnected")
	}
	uctx, cancel := context.WithTimeout(context.Background(), 3 * time.Second)
	defer cancel()
	if err = app.Unload(uctx); err != nil {
		loger.Errorf("unload: %v", err)
	}
}
