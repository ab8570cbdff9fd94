// Package helpers wires up a fully equipped client for example bots and the
// CLI: flag definitions plus the default module set.
package helpers

import (
	"context"
	"flag"

	"github.com/go-mcbot/mcbot/pkg/client"
	"github.com/go-mcbot/mcbot/pkg/client/modules/chat"
	"github.com/go-mcbot/mcbot/pkg/client/modules/entities"
	"github.com/go-mcbot/mcbot/pkg/client/modules/inventory"
	"github.com/go-mcbot/mcbot/pkg/client/modules/protocol"
	"github.com/go-mcbot/mcbot/pkg/client/modules/self"
	"github.com/go-mcbot/mcbot/pkg/client/modules/world"
)

// Flags holds the common CLI flags for bots.
type Flags struct {
	Address              string
	Username             string
	Version              string
	Verbose              bool
	Interactive          bool
	MaxReconnectAttempts int
}

// RegisterFlags registers the standard CLI flags on the default flag set.
func RegisterFlags(f *Flags) {
	flag.StringVar(&f.Address, "s", "localhost:25565", "server address (host:port)")
	flag.StringVar(&f.Username, "u", "Player", "username (offline mode)")
	flag.StringVar(&f.Version, "version", "", "game version, e.g. 1.20.4 (empty = auto-detect)")
	flag.BoolVar(&f.Verbose, "v", false, "verbose logging")
	flag.BoolVar(&f.Interactive, "i", false, "interactive mode with chat input")
	flag.IntVar(&f.MaxReconnectAttempts, "reconnects", 5, "max reconnect attempts (-1 = infinite, 0 = none)")
}

// NewClient creates a client from parsed flags with the default module set
// (protocol, self, entities, world, inventory, chat).
func NewClient(f Flags) *client.Client {
	c := client.New(f.Address, f.Username)
	c.Version = f.Version
	c.Verbose = f.Verbose
	c.Interactive = f.Interactive
	c.MaxReconnectAttempts = f.MaxReconnectAttempts

	c.Register(protocol.New())
	c.Register(self.New())
	c.Register(entities.New())
	c.Register(world.New())
	c.Register(inventory.New())
	c.Register(chat.New())

	return c
}

// Run connects and starts the client, logging errors.
func Run(c *client.Client) {
	if err := c.ConnectAndStart(context.Background()); err != nil {
		c.Logger.Println(err)
	}
}
