
// Package jsext holds the native modules a bridge exposes to scripts.
package jsext

import (
	"github.com/dop251/goja_nodejs/require"
	"github.com/kmcsr/go-logger"

	console "github.com/kmcsr/go-jsbridge/jsext/console"
	device "github.com/kmcsr/go-jsbridge/jsext/device"
	events "github.com/kmcsr/go-jsbridge/jsext/events"
)

// Register makes node:console, node:events and the jsbridge device modules
// requirable through r.
func Register(r *require.Registry, loger logger.Logger, devices *device.Module){
	console.RegisterWithLogger(r, loger)
	events.Register(r, loger)
	devices.Register(r)
}
