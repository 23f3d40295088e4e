
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/kmcsr/go-logger"
	logrusl "github.com/kmcsr/go-logger/logrus"

	"github.com/kmcsr/go-jsbridge"
)

var loger = initLogger()

func initLogger()(loger logger.Logger){
	loger = logrusl.New()
	loger.SetOutput(os.Stderr)
	logrusl.Unwrap(loger).SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05.000",
		FullTimestamp: true,
	})
	loger.SetLevel(logger.InfoLevel)
	jsbridge.SetLogger(loger)
	return
}

var debug bool = false

var cliCommandsUsage = `
  echo [args...]
    Echo arguments.
    :returns: the inputed arguments

  shake <x> <y> <z>
    Push one accelerometer sample to the connected bridge.
    :returns: false if the accelerometer isn't running

  items
    List live menu items
    :returns: items. format=<id>:<title>:<enabled>

  select <id>
    Select a menu item
    :args:id: the item id
    :returns: false if nothing listens for the selection

  players
    List live players
    :returns: players. format=<id>:<url>:<playing>

  fire <id> <code> [message...]
    Fire a player event
    :args:id: the player id
    :args:code: the event code
`
