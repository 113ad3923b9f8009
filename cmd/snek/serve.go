package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/snek/internal/audio"
	"github.com/vovakirdan/snek/internal/core"
	"github.com/vovakirdan/snek/internal/platform/tui"
	"github.com/vovakirdan/snek/internal/system"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the snek SSH server",
	Long: `Start an SSH server that allows users to connect and play.

Each SSH connection gets its own scheduler and game. Sound is not sent
over SSH; tones are logged at debug level.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise uses ssh.host_key_path from the config
  - If that is empty, auto-generates a key at ~/.snek/host_key

Examples:
  snek serve                           # Listen on ssh.host:ssh.port from config
  snek serve --ssh :2222               # Listen on port 2222
  snek serve --host-key ./my_host_key  # Use specific host key

Users can connect with:
  ssh localhost -p 2222`,
	Args: cobra.NoArgs,
	Run:  exitOnError(runServe),
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (host:port, default from config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(os.Stderr, "snek-ssh")
	if err != nil {
		return err
	}

	addr := flagSSHAddr
	if addr == "" {
		addr = net.JoinHostPort(cfg.SSH.Host, strconv.Itoa(cfg.SSH.Port))
	}
	hostKey := flagHostKey
	if hostKey == "" {
		hostKey = cfg.SSH.HostKeyPath
	}

	out := openOutputs(cfg, logger)
	defer out.Close()

	factory := func(display *tui.Display, input *core.InputLatch, user string) (tui.Runner, error) {
		sessionLog := logger.With("user", user)
		sys, err := system.New(cfg, system.Deps{
			Display: display,
			Input:   input,
			Sink:    audio.SilentSink{Logger: sessionLog},
			Logger:  sessionLog,
			Sinks:   out.sinks("ssh:" + user),
			Seed:    time.Now().UnixNano(),
		})
		if err != nil {
			return nil, err
		}
		return sys, nil
	}

	server, err := tui.NewSSHServer(tui.SSHServerConfig{
		Address:     addr,
		HostKeyPath: hostKey,
		IdleTimeout: time.Duration(flagIdleTimeout) * time.Minute,
		MaxSessions: cfg.SSH.MaxSessions,
		GridW:       cfg.Grid.Width,
		GridH:       cfg.Grid.Height,
		Refresh:     cfg.Tasks.Render.Period,
	}, factory, logger)
	if err != nil {
		return fmt.Errorf("cannot create server: %w", err)
	}

	_, port, _ := net.SplitHostPort(addr)
	fmt.Printf("Starting snek SSH server on %s\n", addr)
	fmt.Printf("Connect with: ssh localhost -p %s\n", port)
	fmt.Println("Press Ctrl+C to stop")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.Serve(ctx)
}
