package internal

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/tlawson/trivium/internal/core"
	"github.com/tlawson/trivium/internal/core/debug"
	"github.com/tlawson/trivium/internal/data"
	"github.com/tlawson/trivium/internal/question"
	"github.com/tlawson/trivium/internal/server"
)

// Controller is the main entrypoint for trivium. It's responsible for
// initializing any shared resources (such as history storage and logging),
// wiring the session to its frontend, and running the game to completion.
type Controller struct {
	Config *core.Config

	logger *logrus.Logger
	wg     sync.WaitGroup

	store *data.Store
}

// Start runs one complete game session and returns once it has finished or
// the context has been cancelled.
func (c *Controller) Start(ctx context.Context) error {
	defer c.shutdown()

	var err error
	// Set up the logger, which is shared by the session and the frontend.
	c.logger, err = core.NewLogger(c.Config)
	if err != nil {
		return err
	}

	// Start any debug utilities if we're configured to do so.
	if c.Config.Debugging.Enabled {
		debug.StartUtilities(c.logger,
			c.Config.Debugging.PprofPort,
			c.Config.Debugging.MessageLoggingEnabled,
		)
	}

	var recorder server.MatchRecorder
	if c.Config.History.Enabled {
		c.store, err = data.Open(c.Config.History.Path)
		if err != nil {
			return err
		}
		recorder = c.store
	}

	session := server.NewSession(c.Config, c.logger, question.NewGenerator(), nil, recorder)
	frontend := &server.Frontend{
		Address: c.Config.ListenAddress(),
		Logger:  c.logger,
		Session: session,
	}

	// Failure to bind the listener is considered terminal.
	if err := frontend.Start(ctx, &c.wg); err != nil {
		c.logger.Errorf("error starting frontend: %v", err)
		return err
	}

	if err := session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	c.wg.Wait()
	return ctx.Err()
}

func (c *Controller) shutdown() {
	c.wg.Wait()
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			c.logger.Warnf("error closing history store: %v", err)
		}
	}
}
