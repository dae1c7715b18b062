package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	wsl "github.com/mmastrac/wsl-go"
	"github.com/spf13/cobra"
)

// settings are read from the environment before any command runs.
type settings struct {
	// Timeout bounds session creation and every operation.
	Timeout time.Duration `env:"WSLCTL_TIMEOUT" envDefault:"1m"`

	// Force skips graceful instance termination on shutdown.
	Force bool `env:"WSLCTL_FORCE"`
}

func rootCmd() *cobra.Command {
	var cfg settings

	root := &cobra.Command{
		Use:           "wslctl",
		Short:         "Manage WSL through its user session service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return env.Parse(&cfg)
		},
	}

	root.AddCommand(
		listCmd(&cfg),
		defaultCmd(&cfg),
		setDefaultCmd(&cfg),
		shutdownCmd(&cfg),
		terminateCmd(&cfg),
		setVersionCmd(&cfg),
		exportCmd(&cfg),
		registerCmd(&cfg),
		runCmd(&cfg),
	)
	return root
}

// withSession connects to the service, runs f, and closes the handle.
func withSession(cfg *settings, f func(ctx context.Context, s *wsl.Session) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	s, err := wsl.New(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	return f(ctx, s)
}

// resolve accepts either a distribution name or its GUID.
func resolve(ctx context.Context, s *wsl.Session, nameOrID string) (uuid.UUID, error) {
	if id, err := uuid.Parse(nameOrID); err == nil {
		return id, nil
	}
	return s.DistributionID(ctx, nameOrID)
}

// stderrPipe returns a pipe whose read end is streamed to this process'
// stderr, as the service wants a pipe to report progress into. The returned
// cleanup waits for the stream to drain.
func stderrPipe() (w *os.File, cleanup func(), err error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = io.Copy(os.Stderr, r)
	}()

	return w, func() {
		w.Close()
		r.Close()
		<-done
	}, nil
}

func listCmd(cfg *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the registered distributions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cfg, func(ctx context.Context, s *wsl.Session) error {
				distros, err := s.EnumerateDistributions(ctx)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "NAME\tSTATE\tVERSION\tGUID")
				for _, d := range distros {
					fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", d.Name, d.State, d.Version, d.ID)
				}
				return w.Flush()
			})
		},
	}
}

func defaultCmd(cfg *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "default",
		Short: "Show the default distribution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cfg, func(ctx context.Context, s *wsl.Session) error {
				id, err := s.DefaultDistribution(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			})
		},
	}
}

func setDefaultCmd(cfg *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "set-default <distro>",
		Short: "Set the default distribution",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return withSession(cfg, func(ctx context.Context, s *wsl.Session) error {
				id, err := resolve(ctx, s, args[0])
				if err != nil {
					return err
				}
				return s.SetDefaultDistribution(ctx, id)
			})
		},
	}
}

func shutdownCmd(cfg *settings) *cobra.Command {
	var force bool

	c := &cobra.Command{
		Use:   "shutdown",
		Short: "Terminate all running WSL instances",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return withSession(cfg, func(ctx context.Context, s *wsl.Session) error {
				return s.Shutdown(ctx, force || cfg.Force)
			})
		},
	}
	c.Flags().BoolVar(&force, "force", false, "skip graceful instance termination")
	return c
}

func terminateCmd(cfg *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "terminate <distro>",
		Short: "Power off a single distribution",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return withSession(cfg, func(ctx context.Context, s *wsl.Session) error {
				id, err := resolve(ctx, s, args[0])
				if err != nil {
					return err
				}
				return s.TerminateDistribution(ctx, id)
			})
		},
	}
}

func setVersionCmd(cfg *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "set-version <distro> <version>",
		Short: "Change the WSL version of a distribution",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			var version uint32
			if _, err := fmt.Sscanf(args[1], "%d", &version); err != nil {
				return fmt.Errorf("could not parse version %q", args[1])
			}

			return withSession(cfg, func(ctx context.Context, s *wsl.Session) error {
				id, err := resolve(ctx, s, args[0])
				if err != nil {
					return err
				}

				stderr, cleanup, err := stderrPipe()
				if err != nil {
					return err
				}
				defer cleanup()

				return s.SetVersion(ctx, id, version, stderr)
			})
		},
	}
}

func exportCmd(cfg *settings) *cobra.Command {
	var vhd, gzip bool

	c := &cobra.Command{
		Use:   "export <distro> <file>",
		Short: "Export a distribution's filesystem to a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return withSession(cfg, func(ctx context.Context, s *wsl.Session) error {
				id, err := resolve(ctx, s, args[0])
				if err != nil {
					return err
				}

				file, err := os.Create(args[1])
				if err != nil {
					return err
				}
				defer file.Close()

				stderr, cleanup, err := stderrPipe()
				if err != nil {
					return err
				}
				defer cleanup()

				var f wsl.ExportFlags
				if vhd {
					f |= wsl.ExportVHD
				}
				if gzip {
					f |= wsl.ExportGzip
				}
				return s.ExportDistribution(ctx, id, file, stderr, f)
			})
		},
	}
	c.Flags().BoolVar(&vhd, "vhd", false, "export as a virtual hard disk")
	c.Flags().BoolVar(&gzip, "gzip", false, "compress the exported tarball")
	return c
}

func registerCmd(cfg *settings) *cobra.Command {
	var version uint32

	c := &cobra.Command{
		Use:   "register <name> <rootfs>",
		Short: "Register a new distribution from a rootfs file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cfg, func(ctx context.Context, s *wsl.Session) error {
				rootfs, err := os.Open(args[1])
				if err != nil {
					return err
				}
				defer rootfs.Close()

				stderr, cleanup, err := stderrPipe()
				if err != nil {
					return err
				}
				defer cleanup()

				id, installedName, err := s.RegisterDistribution(ctx, args[0], version, rootfs, stderr, 0)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", installedName, id)
				return nil
			})
		},
	}
	c.Flags().Uint32Var(&version, "version", wsl.WSL2, "WSL version of the new distribution")
	return c
}

func runCmd(cfg *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "run <distro> <command>",
		Short: "Run a command inside a distribution",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return withSession(cfg, func(ctx context.Context, s *wsl.Session) error {
				p, err := s.Launch(ctx, args[0], args[1], true, os.Stdin, os.Stdout, os.Stderr)
				if err != nil {
					return err
				}

				state, err := p.Wait()
				if err != nil {
					return err
				}
				if !state.Success() {
					return fmt.Errorf("command exited with %d", state.ExitCode())
				}
				return nil
			})
		},
	}
}
