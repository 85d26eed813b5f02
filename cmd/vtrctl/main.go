// Package main provides vtrctl, a command-line tool for driving an
// RS-422 video deck: send transport commands, poll status and timecode,
// and optionally republish deck events to NATS.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/jeffday/vcr4j/logger"
	"github.com/jeffday/vcr4j/natsbridge"
	"github.com/jeffday/vcr4j/rs422"
	"github.com/jeffday/vcr4j/rs422/commands"
	"github.com/jeffday/vcr4j/rs422/serial"
	"github.com/jeffday/vcr4j/video"
)

const version = "0.1.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	port       string
	baudRate   int
	delay      time.Duration
	logLevel   string
}

func rootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "vtrctl",
		Short: "Control an RS-422 (Sony 9-pin) video deck",
		Long: `vtrctl drives a professional video deck over an RS-422 serial line.

It sends transport commands (play, stop, record, shuttle), senses status,
timecode, and user bits, and can republish deck events to NATS for other
services to consume.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVarP(&opts.port, "port", "p", "", "Serial port (e.g. /dev/ttyUSB0, COM3)")
	cmd.PersistentFlags().IntVar(&opts.baudRate, "baud", 0, "Baud rate (default 38400)")
	cmd.PersistentFlags().DurationVar(&opts.delay, "delay", 0, "Inter-byte command delay (default 10ms)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(sendCmd(opts))
	cmd.AddCommand(watchCmd(opts))
	cmd.AddCommand(listCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("vtrctl version %s\n", version)
		},
	})

	return cmd
}

// resolveConfig merges the config file with flag overrides; flags win.
func resolveConfig(opts *rootOptions) (*fileConfig, error) {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}

	if opts.port != "" {
		cfg.Port = opts.port
	}
	if opts.baudRate != 0 {
		cfg.BaudRate = opts.baudRate
	}
	if opts.delay != 0 {
		cfg.CommandDelay = duration(opts.delay)
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}

	if cfg.Port == "" {
		return nil, fmt.Errorf("no serial port given: use --port or a config file")
	}

	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(level)

	return cfg, nil
}

// openEngine opens the serial port and starts an engine over it.
func openEngine(ctx context.Context, cfg *fileConfig) (*rs422.VideoIO, *serial.Port, error) {
	port, err := serial.Open(cfg.Port, serial.WithBaudRate(cfg.BaudRate))
	if err != nil {
		return nil, nil, err
	}

	if err := port.Drain(); err != nil {
		_ = port.Close()

		return nil, nil, fmt.Errorf("failed to drain port: %w", err)
	}

	engineCfg, err := rs422.NewConfig(commands.Table{},
		rs422.WithCommandDelay(time.Duration(cfg.CommandDelay)))
	if err != nil {
		_ = port.Close()

		return nil, nil, err
	}

	v, err := rs422.New(ctx, port, engineCfg)
	if err != nil {
		_ = port.Close()

		return nil, nil, err
	}

	return v, port, nil
}

// printEvents subscribes to every deck stream and prints events to
// stdout. Returns a cancel func releasing the subscriptions.
func printEvents(v *rs422.VideoIO) func() {
	cancels := []func(){
		v.Timecodes().Subscribe(func(tc video.Timecode) {
			fmt.Printf("timecode  %s\n", tc)
		}),
		v.States().Subscribe(func(s rs422.State) {
			fmt.Printf("state     %s\n", s)
		}),
		v.Userbits().Subscribe(func(ub rs422.Userbits) {
			fmt.Printf("userbits  local=%X vertical=%X\n", ub.Local, ub.Vertical)
		}),
		v.Errors().Subscribe(func(e rs422.Error) {
			fmt.Printf("error     %s\n", e.Error())
		}),
	}

	return func() {
		for _, cancel := range cancels {
			cancel()
		}
	}
}

func sendCmd(opts *rootOptions) *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "send <command>...",
		Short: "Send one or more commands to the deck",
		Long: `Send named commands to the deck in order, then wait briefly for
responses. Run "vtrctl list" for the available command names.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmds := make([]video.Command, 0, len(args))
			for _, arg := range args {
				c, err := parseCommand(arg)
				if err != nil {
					return err
				}
				cmds = append(cmds, c)
			}

			cfg, err := resolveConfig(opts)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			v, port, err := openEngine(ctx, cfg)
			if err != nil {
				return err
			}
			defer port.Close()
			defer v.Close()

			unsubscribe := printEvents(v)
			defer unsubscribe()

			for _, c := range cmds {
				v.Send(c)
			}

			select {
			case <-time.After(wait):
			case <-ctx.Done():
			}

			return nil
		},
	}

	cmd.Flags().DurationVar(&wait, "wait", 500*time.Millisecond, "How long to wait for responses before exiting")

	return cmd
}

func watchCmd(opts *rootOptions) *cobra.Command {
	var (
		interval time.Duration
		natsURL  string
		prefix   string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll deck status and timecode until interrupted",
		Long: `Poll the deck for status and timecode at a fixed interval and print
every event. With --nats, events are also republished as JSON on the
vtr.* subject hierarchy.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(opts)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			v, port, err := openEngine(ctx, cfg)
			if err != nil {
				return err
			}
			defer port.Close()
			defer v.Close()

			unsubscribe := printEvents(v)
			defer unsubscribe()

			if natsURL == "" {
				natsURL = cfg.NATS.URL
			}
			if prefix == "" {
				prefix = cfg.NATS.SubjectPrefix
			}

			if natsURL != "" {
				nc, err := nats.Connect(natsURL)
				if err != nil {
					return fmt.Errorf("failed to connect to NATS at %s: %w", natsURL, err)
				}
				defer nc.Close()

				bridgeOpts := []natsbridge.Option{}
				if prefix != "" {
					bridgeOpts = append(bridgeOpts, natsbridge.WithSubjectPrefix(prefix))
				}

				bridge, err := natsbridge.New(nc, v, bridgeOpts...)
				if err != nil {
					return err
				}
				defer bridge.Close()
			}

			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					v.Send(video.RequestStatus)
					v.Send(video.RequestTimecode)
				}
			}
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", time.Second, "Polling interval")
	cmd.Flags().StringVar(&natsURL, "nats", "", "NATS server URL to republish events to")
	cmd.Flags().StringVar(&prefix, "subject-prefix", "", "NATS subject prefix (default vtr)")

	return cmd
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available command names",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range commandNames() {
				fmt.Println(name)
			}
			fmt.Println("shuttle=<speed>   (signed, e.g. shuttle=64 or shuttle=-32)")
			fmt.Println("jog=<speed>       (signed)")
			fmt.Println("var=<speed>       (signed)")
			fmt.Println("preset=<HH:MM:SS:FF>")
		},
	}
}
