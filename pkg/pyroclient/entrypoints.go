package pyroclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/Arkiver2/pyroTorrent/pkg/rtconfig"
	"github.com/Arkiver2/pyroTorrent/pkg/rtmethods"
	"github.com/function61/gokit/fileexists"
	"github.com/function61/gokit/logex"
	"github.com/function61/gokit/osutil"
	"github.com/spf13/cobra"
)

func Entrypoints() []*cobra.Command {
	return []*cobra.Command{
		targetsEntrypoint(),
		statusEntrypoint(),
		listEntrypoint(),
		infoEntrypoint(),
		filesEntrypoint(),
		throttleEntrypoint(),
		addEntrypoint(),
		operationsEntrypoint(),
		configInitEntrypoint(),
		configPrintEntrypoint(),
	}
}

func targetsEntrypoint() *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "Lists the configured rtorrent daemons",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			conf, err := rtconfig.ReadConfig()
			osutil.ExitIfError(err)

			table := newTable(os.Stdout, []string{"Name", "Transport", "Address"})
			for _, target := range conf.Targets {
				address := target.Addr()
				if target.Transport == rtconfig.TransportHTTP {
					address = target.URL()
				} else if target.UnixSocket != "" {
					address = target.UnixSocket
				}

				table.Append([]string{target.Name, string(target.Transport), address})
			}
			table.Render()
		},
	}
}

func statusEntrypoint() *cobra.Command {
	return &cobra.Command{
		Use:   "status [target]",
		Short: "Shows daemon-wide rates, totals and throttles",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			app, err := newAppFromConfig()
			osutil.ExitIfError(err)

			stats, err := app.GlobalStats(context.Background(), args[0])
			osutil.ExitIfError(err)

			renderGlobalStats(os.Stdout, stats)
		},
	}
}

func listEntrypoint() *cobra.Command {
	view := ""

	cmd := &cobra.Command{
		Use:   "list [target]",
		Short: "Lists a view's torrents",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			app, err := newAppFromConfig()
			osutil.ExitIfError(err)

			summaries, err := app.TorrentList(context.Background(), args[0], view)
			osutil.ExitIfError(err)

			renderTorrentList(os.Stdout, summaries)
		},
	}

	cmd.Flags().StringVarP(&view, "view", "v", "default", "View to list (default/complete/incomplete/started/stopped/active/hashing/seeding)")

	return cmd
}

func infoEntrypoint() *cobra.Command {
	return &cobra.Command{
		Use:   "info [target] [hash]",
		Short: "Shows one torrent's details",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			app, err := newAppFromConfig()
			osutil.ExitIfError(err)

			details, err := app.TorrentDetails(context.Background(), args[0], args[1])
			osutil.ExitIfError(err)

			renderTorrentDetails(os.Stdout, details)
		},
	}
}

func filesEntrypoint() *cobra.Command {
	return &cobra.Command{
		Use:   "files [target] [hash]",
		Short: "Shows one torrent's file tree with per-directory totals",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			app, err := newAppFromConfig()
			osutil.ExitIfError(err)

			tree, err := app.FileTree(context.Background(), args[0], args[1])
			osutil.ExitIfError(err)

			renderFileTree(os.Stdout, tree)
		},
	}
}

func throttleEntrypoint() *cobra.Command {
	return &cobra.Command{
		Use:   "throttle [target] [up|down] [limitBytes]",
		Short: "Shows or sets the daemon's up/down throttle",
		Args:  cobra.RangeArgs(2, 3),
		Run: func(cmd *cobra.Command, args []string) {
			direction := map[string]string{"up": "upload", "down": "download"}[args[1]]
			if direction == "" {
				osutil.ExitIfError(errors.New("direction must be up or down"))
			}

			app, err := newAppFromConfig()
			osutil.ExitIfError(err)

			if len(args) == 3 {
				limitBytes, err := strconv.ParseInt(args[2], 10, 64)
				osutil.ExitIfError(err)

				osutil.ExitIfError(app.SetThrottle(context.Background(), args[0], direction, limitBytes))
			}

			limit, err := app.GetThrottle(context.Background(), args[0], direction)
			osutil.ExitIfError(err)

			fmt.Printf("%s throttle: %s\n", direction, formatThrottle(limit))
		},
	}
}

func addEntrypoint() *cobra.Command {
	start := false

	cmd := &cobra.Command{
		Use:   "add [target] [torrentPathOrUrl]",
		Short: "Loads a torrent into the daemon",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			app, err := newAppFromConfig()
			osutil.ExitIfError(err)

			osutil.ExitIfError(app.AddTorrent(context.Background(), args[0], args[1], start))
		},
	}

	cmd.Flags().BoolVarP(&start, "start", "s", false, "Start the download immediately")

	return cmd
}

func operationsEntrypoint() *cobra.Command {
	return &cobra.Command{
		Use:   "operations",
		Short: "Lists every supported operation and what it maps to remotely",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			table := newTable(os.Stdout, []string{"Scope", "Operation", "Remote method", "Description"})

			scopes := []struct {
				name  string
				table *rtmethods.Table
			}{
				{"global", rtmethods.GlobalMethods()},
				{"torrent", rtmethods.TorrentMethods()},
				{"file", rtmethods.FileMethods()},
			}

			for _, scope := range scopes {
				for _, spec := range scope.table.Specs() {
					table.Append([]string{scope.name, spec.Local, spec.Remote, spec.Description})
				}
			}

			table.Render()
		},
	}
}

func configInitEntrypoint() *cobra.Command {
	return &cobra.Command{
		Use:   "config-init",
		Short: "Writes an example configuration file to edit",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			confPath, err := rtconfig.ConfigFilePath()
			osutil.ExitIfError(err)

			exists, err := fileexists.Exists(confPath)
			osutil.ExitIfError(err)

			if exists {
				osutil.ExitIfError(errors.New("config file already exists"))
			}

			osutil.ExitIfError(rtconfig.WriteConfig(&rtconfig.Config{
				Targets: []rtconfig.RemoteTarget{
					{
						Name:      "sheeva",
						Transport: rtconfig.TransportHTTP,
						Host:      "192.168.1.70",
						Port:      80,
						RPCPath:   "/RPC2",
					},
				},
			}))

			fmt.Printf("wrote %s\n", confPath)
		},
	}
}

func configPrintEntrypoint() *cobra.Command {
	return &cobra.Command{
		Use:   "config-print",
		Short: "Prints path to config file & its contents",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			confPath, err := rtconfig.ConfigFilePath()
			osutil.ExitIfError(err)

			fmt.Printf("file: %s\n", confPath)

			file, err := os.Open(confPath)
			osutil.ExitIfError(err)
			defer file.Close()

			_, err = io.Copy(os.Stdout, file)
			osutil.ExitIfError(err)
		},
	}
}

func newAppFromConfig() (*App, error) {
	conf, err := rtconfig.ReadConfig()
	if err != nil {
		return nil, err
	}

	return NewApp(conf, logex.StandardLogger()), nil
}
