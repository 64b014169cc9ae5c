package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"pwa-weather/internal/db"
	"pwa-weather/internal/kvstore"
	"pwa-weather/internal/migrate"
	"pwa-weather/internal/modules/forecast"
	"pwa-weather/internal/modules/forecast/cards"
	"pwa-weather/internal/modules/forecast/cities"
	"pwa-weather/internal/modules/forecast/icons"
	"pwa-weather/internal/modules/forecast/types"
)

// openDB opens and migrates the configured database.
func (c *cli) openDB(cmd *cobra.Command) (*sql.DB, error) {
	conn, err := db.Open(c.cfg)
	if err != nil {
		return nil, err
	}
	if err := migrate.Run(cmd.Context(), conn); err != nil {
		_ = db.Close(conn)
		return nil, err
	}
	return conn, nil
}

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := c.openDB(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close(conn) }()
			fmt.Fprintln(cmd.OutOrStdout(), "database is up to date")
			return nil
		},
	}
}

func (c *cli) citiesCmd() *cobra.Command {
	citiesCmd := &cobra.Command{
		Use:   "cities",
		Short: "Inspect or change the saved city list",
	}

	citiesCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print the saved cities in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := c.openDB(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close(conn) }()

			list := cities.New(kvstore.NewSQLite(conn), slog.Default())
			for _, e := range list.Load(cmd.Context()) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", e.Identifier, e.Label)
			}
			return nil
		},
	})

	citiesCmd.AddCommand(&cobra.Command{
		Use:   "add <key> [label]",
		Short: "Append a city to the saved list",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry := types.CityEntry{Identifier: args[0], Label: args[0]}
			if len(args) == 2 {
				entry.Label = args[1]
			}

			conn, err := c.openDB(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close(conn) }()

			list := cities.New(kvstore.NewSQLite(conn), slog.Default())
			list.Load(cmd.Context())
			list.Append(entry)
			if err := list.Save(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", entry.Identifier, entry.Label)
			return nil
		},
	})

	return citiesCmd
}

func (c *cli) classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <code>...",
		Short: "Print the icon tag for weather condition codes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				code, ok := types.ParseCode(arg)
				if !ok {
					return fmt.Errorf("not a condition code: %q", arg)
				}
				icon := icons.Classify(code)
				if !icon.Defined() {
					fmt.Fprintf(cmd.OutOrStdout(), "%d\t-\n", code)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", code, icon)
			}
			return nil
		},
	}
}

func (c *cli) forecastCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forecast <key> [label]",
		Short: "Fetch one city and print the resulting card as JSON",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			label := key
			if len(args) == 2 {
				label = args[1]
			}

			conn, err := c.openDB(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close(conn) }()

			renderer := cards.New(slog.Default())
			f, err := forecast.NewFetcher(c.cfg, conn, renderer, slog.Default())
			if err != nil {
				return err
			}

			start := time.Now()
			res := f.Fetch(cmd.Context(), key, label).Wait()
			slog.Info("forecast fetched",
				"city", key,
				"cache_hit", res.CacheHit,
				"live", res.Live.String(),
				"duration_ms", time.Since(start).Milliseconds(),
			)

			card, _ := renderer.Card(key)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(card)
		},
	}
}
