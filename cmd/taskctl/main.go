package main

import (
	"fmt"
	"os"

	"github.com/kalpovskii/taskboard/internal/client"
	"github.com/kalpovskii/taskboard/internal/config"
	"github.com/spf13/cobra"
)

type cli struct {
	server     string
	user       string
	token      string
	userHeader string
}

func (c *cli) client() *client.Client {
	return client.New(c.server, client.WithUser(c.user, c.userHeader), client.WithToken(c.token))
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := newRootCmd(cfg).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	c := &cli{userHeader: cfg.Auth.UserHeader}

	root := &cobra.Command{
		Use:           "taskctl",
		Short:         "Work with the task board from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&c.server, "server", cfg.Client.Server, "API base URL including the prefix")
	root.PersistentFlags().StringVar(&c.user, "user", cfg.Client.User, "user id sent in the identity header")
	root.PersistentFlags().StringVar(&c.token, "token", cfg.Client.Token, "bearer token, takes precedence over --user")

	root.AddCommand(
		listCmd(c),
		showCmd(c),
		addCmd(c),
		statusCmd(c),
		assignCmd(c),
		tagCmd(c),
		deleteCmd(c),
	)
	return root
}
