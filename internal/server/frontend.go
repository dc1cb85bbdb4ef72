package server

import (
	"context"
	"fmt"
	"net"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tlawson/trivium/internal/core/client"
	coredebug "github.com/tlawson/trivium/internal/core/debug"
	"github.com/tlawson/trivium/internal/protocol"
)

// How long a new connection has to introduce itself with a HI message.
const handshakeTimeout = 5 * time.Second

// Frontend implements the concurrent client connection logic.
//
// It accepts TCP connections, performs the join handshake, and runs one
// reader goroutine per connection that decodes lines and posts them to the
// session as events. All game state stays behind the session's event loop;
// the frontend never touches it directly.
type Frontend struct {
	Address string
	Logger  *logrus.Logger
	Session *Session

	listener *net.TCPListener
}

// Start initializes the listener socket and spins off the blocking accept
// loop, added to the WaitGroup. A bind failure is returned to the caller and
// is terminal.
func (f *Frontend) Start(ctx context.Context, wg *sync.WaitGroup) error {
	socket, err := f.createSocket()
	if err != nil {
		return fmt.Errorf("error creating socket on %s: %w", f.Address, err)
	}
	f.listener = socket

	wg.Add(1)
	go f.startBlockingLoop(ctx, socket, wg)
	return nil
}

// createSocket opens a TCP socket to listen for client connections on the
// Address provided to the frontend.
func (f *Frontend) createSocket() (*net.TCPListener, error) {
	hostAddr, err := net.ResolveTCPAddr("tcp", f.Address)
	if err != nil {
		return nil, fmt.Errorf("error resolving address: %w", err)
	}

	socket, err := net.ListenTCP("tcp", hostAddr)
	if err != nil {
		return nil, fmt.Errorf("error listening on socket: %w", err)
	}
	return socket, nil
}

// ListenerAddr reports the bound address, which differs from Address when the
// configured port is 0. Only valid after Start has returned successfully.
func (f *Frontend) ListenerAddr() net.Addr {
	return f.listener.Addr()
}

// startBlockingLoop accepts connections until the context is cancelled or the
// session finishes, handing each one to its own goroutine.
func (f *Frontend) startBlockingLoop(ctx context.Context, socket *net.TCPListener, wg *sync.WaitGroup) {
	defer wg.Done()

	f.Logger.Infof("waiting for connections on %v", socket.Addr())

	// Closing the socket is what breaks the Accept loop below.
	go func() {
		select {
		case <-ctx.Done():
		case <-f.Session.Done():
		}
		_ = socket.Close()
	}()

	clientWg := &sync.WaitGroup{}
	for {
		connection, err := socket.AcceptTCP()
		if err != nil {
			break
		}
		clientWg.Add(1)
		go f.acceptClient(connection, clientWg)
	}

	f.Logger.Info("shutting down (waiting for connections to close)")
	clientWg.Wait()
	f.Logger.Info("exited")
}

// acceptClient performs the join handshake: the first line must be a HI
// message carrying a display name. Anything else drops the connection
// without seating a player.
func (f *Frontend) acceptClient(connection *net.TCPConn, wg *sync.WaitGroup) {
	defer wg.Done()

	c := client.NewClient(connection)
	defer f.closeConnectionAndRecover(c)

	f.Logger.Infof("accepted connection from %s", c.IPAddr())

	_ = c.SetReadDeadline(time.Now().Add(handshakeTimeout))
	line, err := c.ReadLine()
	if err != nil {
		f.Logger.Infof("dropping connection from %s: no greeting: %v", c.IPAddr(), err)
		return
	}
	_ = c.SetReadDeadline(time.Time{})

	message, err := protocol.Decode(line)
	if err != nil {
		f.Logger.Infof("dropping connection from %s: %v", c.IPAddr(), err)
		return
	}
	hello, ok := message.(*protocol.Hello)
	if !ok || strings.TrimSpace(hello.Username) == "" {
		f.Logger.Infof("dropping connection from %s: expected greeting with username", c.IPAddr())
		return
	}
	coredebug.TraceMessage(f.Logger, hello.Username+" -> server", hello)

	f.Session.Join(c, strings.TrimSpace(hello.Username))
	f.processMessages(c)
}

// processMessages is the per-connection read loop. It only returns once the
// connection has closed or the client said goodbye.
func (f *Frontend) processMessages(c *client.Client) {
	for {
		line, err := c.ReadLine()
		if err != nil {
			f.Session.Disconnect(c)
			return
		}
		if len(line) == 0 {
			continue
		}

		message, err := protocol.Decode(line)
		if err != nil {
			// A line that doesn't parse is a non-answer, not an error.
			f.Logger.Debugf("ignoring malformed line from %s: %v", c.IPAddr(), err)
			continue
		}
		coredebug.TraceMessage(f.Logger, c.IPAddr()+" -> server", message)

		switch m := message.(type) {
		case *protocol.Answer:
			f.Session.Answer(c, m.Answer)
		case *protocol.Bye:
			f.Session.Leave(c)
			return
		default:
			f.Logger.Debugf("ignoring unexpected %T from %s", message, c.IPAddr())
		}
	}
}

// closeConnectionAndRecover is the failsafe that catches any panics and
// closes the connection regardless of the state it was left in.
func (f *Frontend) closeConnectionAndRecover(c *client.Client) {
	if err := recover(); err != nil {
		f.Logger.Errorf("error in client communication with %s: error=%s, trace: %s",
			c.IPAddr(), err, debug.Stack())
	}

	_ = c.Close()
	f.Logger.Infof("disconnected client %s", c.IPAddr())
}
