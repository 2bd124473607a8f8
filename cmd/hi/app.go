package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/leonardcser/hi/pkg/hi"
)

// NewApp builds the hi command tree.
func NewApp() *cli.Command {
	cfgFile := configFile()

	return &cli.Command{
		Name:  "hi",
		Usage: "look up the gender of Czech names, with a permanent local cache",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "cache-dir",
				Usage: "directory holding the lookup cache",
				Value: defaultCacheDir(),
				Sources: cli.NewValueSourceChain(
					cli.EnvVar("HI_CACHE_DIR"),
					yaml.YAML("cache_dir", altsrc.StringSourcer(cfgFile)),
				),
			},
			&cli.StringFlag{
				Name:    "type",
				Aliases: []string{"t"},
				Usage:   "type hint sent with every lookup (name or surname)",
				Sources: cli.NewValueSourceChain(
					cli.EnvVar("HI_TYPE"),
					yaml.YAML("type", altsrc.StringSourcer(cfgFile)),
				),
				Validator: func(s string) error {
					_, err := hi.ParseNameType(s)
					return err
				},
			},
			&cli.StringFlag{
				Name:   "base-url",
				Usage:  "lookup service endpoint",
				Value:  hi.DefaultBaseURL,
				Hidden: true,
				Sources: cli.NewValueSourceChain(
					cli.EnvVar("HI_BASE_URL"),
				),
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print the raw JSON record",
				HideDefault: true,
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "lookup",
				Usage:     "look up a name",
				ArgsUsage: "NAME",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "gender",
						Aliases: []string{"g"},
						Usage:   "restrict to male or female",
						Validator: func(s string) error {
							_, err := hi.ParseGender(s)
							return err
						},
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					var opts []hi.LookupOption
					if g := cmd.String("gender"); g != "" {
						opts = append(opts, hi.WithGender(hi.Gender(g)))
					}
					return lookupAction(ctx, cmd, opts...)
				},
			},
			{
				Name:      "male",
				Aliases:   []string{"mr"},
				Usage:     "look up a male name",
				ArgsUsage: "NAME",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return lookupAction(ctx, cmd, hi.WithGender(hi.Male))
				},
			},
			{
				Name:      "female",
				Aliases:   []string{"ms"},
				Usage:     "look up a female name",
				ArgsUsage: "NAME",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return lookupAction(ctx, cmd, hi.WithGender(hi.Female))
				},
			},
			{
				Name:  "purge",
				Usage: "drop every cached answer",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withClient(cmd, func(c *hi.Client) error {
						if err := c.Purge(); err != nil {
							return err
						}
						fmt.Fprintln(cmd.Root().Writer, "cache purged")
						return nil
					})
				},
			},
			{
				Name:  "stats",
				Usage: "show cache location and size",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withClient(cmd, func(c *hi.Client) error {
						n, err := c.CacheLen()
						if err != nil {
							return err
						}
						fmt.Fprintf(cmd.Root().Writer, "cache: %s\nentries: %d\n", cmd.String("cache-dir"), n)
						return nil
					})
				},
			},
		},
	}
}

func lookupAction(ctx context.Context, cmd *cli.Command, opts ...hi.LookupOption) error {
	if cmd.Args().Len() != 1 {
		return errors.New("exactly one NAME argument is required")
	}
	name := cmd.Args().First()

	return withClient(cmd, func(c *hi.Client) error {
		r, err := c.Lookup(ctx, name, opts...)
		if err != nil {
			return err
		}
		w := cmd.Root().Writer
		if cmd.Bool("json") {
			raw := json.RawMessage("null")
			if r.Found() {
				raw = r.Raw()
			}
			_, err = fmt.Fprintln(w, string(raw))
			return err
		}
		if !r.Found() {
			_, err = fmt.Fprintf(w, "no match for %q\n", hi.Normalize(name))
			return err
		}
		_, err = fmt.Fprintln(w, r.String())
		return err
	})
}

func withClient(cmd *cli.Command, fn func(*hi.Client) error) error {
	c, err := hi.New(cmd.String("cache-dir"),
		hi.WithDefaultType(hi.NameType(cmd.String("type"))),
		hi.WithBaseURL(cmd.String("base-url")),
	)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}

func configFile() string {
	if p := os.Getenv("HI_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "hi", "config.yaml")
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "hi")
	}
	return filepath.Join(".", ".cache", "hi")
}
