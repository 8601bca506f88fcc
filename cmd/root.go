package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"frameworks/dbdoctor/pkg/database"
	"frameworks/dbdoctor/pkg/version"
)

// rootOptions are shared by every subcommand.
type rootOptions struct {
	policyFile string
	output     string
	verbose    bool

	v *viper.Viper
	// opener is nil outside tests; check then opens through lib/pq.
	opener database.Opener
}

// NewRootCmd returns the root command for the dbdoctor CLI
func NewRootCmd() *cobra.Command {
	return newRootCmd(&rootOptions{})
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	opts.v = viper.New()
	opts.v.SetEnvPrefix("DBDOCTOR")
	opts.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	opts.v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:           version.Name,
		Short:         "dbdoctor: Postgres connectivity diagnostics",
		Long:          "dbdoctor runs an ordered set of probes against a Postgres-compatible database and reports what is wrong and what to do about it.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.policyFile, "policy", "", "diagnostic policy file (default ./dbdoctor.yaml when present)")
	pf.StringVarP(&opts.output, "output", "o", "text", "output format: text|json|prometheus")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	for _, name := range []string{"policy", "output", "verbose"} {
		_ = opts.v.BindPFlag(name, pf.Lookup(name))
	}

	rootCmd.AddCommand(newCheckCmd(opts))
	rootCmd.AddCommand(newProbesCmd(opts))
	rootCmd.AddCommand(newVersionCmd(opts))

	return rootCmd
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return execute(ctx, NewRootCmd(), os.Args[1:], os.Stderr)
}

func execute(ctx context.Context, root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return ExitUsage
}
