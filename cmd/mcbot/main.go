// Command mcbot connects a bot to a server, optionally with the interactive
// chat console.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-mcbot/mcbot/pkg/client"
	"github.com/go-mcbot/mcbot/pkg/client/modules/chat"
	"github.com/go-mcbot/mcbot/pkg/client/modules/entities"
	"github.com/go-mcbot/mcbot/pkg/client/modules/inventory"
	"github.com/go-mcbot/mcbot/pkg/client/modules/protocol"
	"github.com/go-mcbot/mcbot/pkg/client/modules/self"
	"github.com/go-mcbot/mcbot/pkg/client/modules/world"
	proto "github.com/go-mcbot/mcbot/pkg/protocol"
)

var (
	flagAddress     string
	flagUsername    string
	flagVersion     string
	flagVerbose     bool
	flagInteractive bool
	flagReconnects  int
)

func main() {
	root := &cobra.Command{
		Use:   "mcbot",
		Short: "Minecraft bot client for offline-mode servers",
		RunE:  runBot,
	}

	root.PersistentFlags().StringVarP(&flagAddress, "server", "s", "localhost:25565", "server address (host:port)")
	root.Flags().StringVarP(&flagUsername, "username", "u", "Player", "username (offline mode)")
	root.Flags().StringVar(&flagVersion, "version", "", "game version, e.g. 1.20.4 (empty = auto-detect)")
	root.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose logging")
	root.Flags().BoolVarP(&flagInteractive, "interactive", "i", false, "interactive mode with chat input")
	root.Flags().IntVar(&flagReconnects, "reconnects", 5, "max reconnect attempts (-1 = infinite, 0 = none)")

	root.AddCommand(&cobra.Command{
		Use:   "ping",
		Short: "Query a server's protocol version via a status ping",
		RunE:  runPing,
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runBot(cmd *cobra.Command, args []string) error {
	c := client.New(flagAddress, flagUsername)
	c.Version = flagVersion
	c.Verbose = flagVerbose
	c.Interactive = flagInteractive
	c.MaxReconnectAttempts = flagReconnects

	c.Register(protocol.New())
	c.Register(self.New())
	c.Register(entities.New())
	c.Register(world.New())
	c.Register(inventory.New())
	c.Register(chat.New())

	return c.ConnectAndStart(context.Background())
}

func runPing(cmd *cobra.Command, args []string) error {
	v, err := proto.PingStatus(flagAddress, 5*time.Second)
	if err != nil {
		return fmt.Errorf("ping %s: %w", flagAddress, err)
	}
	fmt.Printf("%s speaks protocol version %d\n", flagAddress, v)
	return nil
}
