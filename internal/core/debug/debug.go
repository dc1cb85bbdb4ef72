// Package debug contains the optional debugging utilities that can be enabled
// through the debugging section of the config file.
package debug

import (
	"fmt"
	"net/http"
	_ "net/http/pprof"

	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"
)

var messageLogging bool

// StartUtilities spins off the services associated with debug mode.
func StartUtilities(logger *logrus.Logger, pprofPort int, logMessages bool) {
	messageLogging = logMessages
	startPprofServer(logger, pprofPort)
}

// startPprofServer starts the default pprof HTTP server that can be accessed
// via localhost to get runtime information about the server.
// See https://golang.org/pkg/net/http/pprof/
func startPprofServer(logger *logrus.Logger, port int) {
	listenerAddr := fmt.Sprintf("localhost:%d", port)
	logger.Infof("starting pprof server on %s", listenerAddr)

	go func() {
		if err := http.ListenAndServe(listenerAddr, nil); err != nil {
			logger.Infof("error starting pprof server: %s", err)
		}
	}()
}

// TraceMessage dumps a decoded protocol message to the log when message
// logging is enabled. direction should read like "server -> alice".
func TraceMessage(logger *logrus.Logger, direction string, message interface{}) {
	if !messageLogging {
		return
	}
	logger.Debugf("[%s] %s", direction, spew.Sdump(message))
}
