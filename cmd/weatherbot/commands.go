package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/m3rciful/weatherbot/core/buildinfo"
	corecmd "github.com/m3rciful/weatherbot/core/cmd"
	"github.com/m3rciful/weatherbot/internal/app"
	"github.com/m3rciful/weatherbot/internal/cities"
	"github.com/m3rciful/weatherbot/internal/config"
)

const defaultConfigPath = "config.yaml"

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "weatherbot",
		Short:         "Telegram bot with current weather for Ukrainian cities",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(configPath)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml (default $CONFIG_PATH or "+defaultConfigPath+")")

	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Run the bot (default)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runBot(configPath)
			},
		},
		newCitiesCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print build information",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), "weatherbot", buildinfo.String())
			},
		},
	)
	return root
}

func runBot(configPath string) error {
	return corecmd.Run(corecmd.Options{
		ConfigPath:        configPath,
		DefaultConfigPath: defaultConfigPath,
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return config.Load(path)
		},
		Bootstrap: func(ctx context.Context, cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			appCfg, ok := cfg.(*config.Config)
			if !ok {
				return nil, fmt.Errorf("unexpected config type %T", cfg)
			}
			return app.Bootstrap(ctx, appCfg)
		},
	})
}

func newCitiesCmd() *cobra.Command {
	var (
		file string
		all  bool
	)
	cmd := &cobra.Command{
		Use:   "cities [letter]",
		Short: "Print the city directory index",
		Long:  "Print letters with city counts, the cities for one letter, or every city with --all. Uses --file or the built-in list.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var src cities.Source
			if file != "" {
				src = cities.FileSource(file)
			}
			dir := cities.New(src)
			dir.EnsureLoaded(cmd.Context())
			if all {
				if len(args) == 1 {
					return fmt.Errorf("--all does not take a letter")
				}
				return printList(cmd.OutOrStdout(), dir.All(), "city list is empty")
			}
			if len(args) == 1 {
				return printCities(cmd.OutOrStdout(), dir, args[0])
			}
			return printIndex(cmd.OutOrStdout(), dir)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "newline-delimited city list")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "print every city in directory order")
	return cmd
}

func printIndex(w io.Writer, dir *cities.Directory) error {
	letters := dir.Letters()
	if len(letters) == 0 {
		return fmt.Errorf("city list is empty")
	}
	for _, l := range letters {
		if _, err := fmt.Fprintf(w, "%s\t%d\n", l, len(dir.StartingWith(l))); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "total\t%d\n", dir.Len())
	return err
}

func printCities(w io.Writer, dir *cities.Directory, letter string) error {
	return printList(w, dir.StartingWith(letter), fmt.Sprintf("no cities for letter %q", letter))
}

func printList(w io.Writer, list []string, empty string) error {
	if len(list) == 0 {
		return errors.New(empty)
	}
	for _, c := range list {
		if _, err := fmt.Fprintln(w, c); err != nil {
			return err
		}
	}
	return nil
}
