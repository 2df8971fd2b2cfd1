package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-recipe-catalog/config"
	"github.com/goliatone/go-recipe-catalog/pkg/di"
)

type app struct {
	out       io.Writer
	envFiles  []string
	container *di.Container
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	rootCmd := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Manage a personal recipe catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}
	rootCmd.SetOut(out)
	rootCmd.PersistentFlags().StringSliceVarP(&a.envFiles, "env", "e", nil, "dotenv file(s) to load before the environment")

	rootCmd.AddCommand(
		a.migrateCmd(),
		a.seedCmd(),
		a.listCmd(),
		a.getCmd(),
		a.deleteCmd(),
		a.searchCmd(),
		a.statsCmd(),
	)
	return rootCmd
}

func (a *app) open() error {
	cfg, err := config.Load(a.envFiles...)
	if err != nil {
		return err
	}
	c, err := di.NewContainer(*cfg)
	if err != nil {
		return err
	}
	a.container = c
	return nil
}

func (a *app) close() error {
	if a.container == nil {
		return nil
	}
	err := a.container.Close()
	a.container = nil
	return err
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
