// Package client wraps a player's TCP connection with the line-framed
// message reading and writing the rest of the server builds on.
package client

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/tlawson/trivium/internal/protocol"
)

// Cap on how long a single write may block before the player is considered gone.
const writeTimeout = 5 * time.Second

// Lines longer than this are certainly not valid game messages.
const maxLineBytes = 64 * 1024

// Client represents a user connected to the game server.
type Client struct {
	connection net.Conn
	ipAddr     string
	port       string
	scanner    *bufio.Scanner
}

func NewClient(connection net.Conn) *Client {
	ipAddr, port, err := net.SplitHostPort(connection.RemoteAddr().String())
	if err != nil {
		ipAddr = connection.RemoteAddr().String()
	}

	scanner := bufio.NewScanner(connection)
	scanner.Buffer(make([]byte, 4096), maxLineBytes)

	return &Client{
		connection: connection,
		ipAddr:     ipAddr,
		port:       port,
		scanner:    scanner,
	}
}

func (c *Client) IPAddr() string { return c.ipAddr }
func (c *Client) Port() string   { return c.port }

// ReadLine blocks until the client sends its next newline-terminated message,
// returning the line without the terminator. io.EOF indicates an orderly
// close; anything else is a socket error.
func (c *Client) ReadLine() ([]byte, error) {
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	return c.scanner.Bytes(), nil
}

// SetReadDeadline bounds the next ReadLine, used for the join handshake.
func (c *Client) SetReadDeadline(t time.Time) error {
	return c.connection.SetReadDeadline(t)
}

// Send encodes a message and writes the full frame to the client.
func (c *Client) Send(message interface{}) error {
	data, err := protocol.Encode(message)
	if err != nil {
		return err
	}
	return c.transmit(data)
}

// transmit writes the contents of data to the TCP connection until all of it
// has been sent.
func (c *Client) transmit(data []byte) error {
	_ = c.connection.SetWriteDeadline(time.Now().Add(writeTimeout))

	sent := 0
	for sent < len(data) {
		n, err := c.connection.Write(data[sent:])
		if err != nil {
			return fmt.Errorf("failed to send to client %v: %w", c.ipAddr, err)
		}
		sent += n
	}
	return nil
}

// Close the TCP connection.
func (c *Client) Close() error {
	return c.connection.Close()
}
