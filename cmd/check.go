package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	dbcfg "frameworks/dbdoctor/internal/config"
	"frameworks/dbdoctor/pkg/config"
	"frameworks/dbdoctor/pkg/database"
	"frameworks/dbdoctor/pkg/logging"
	"frameworks/dbdoctor/pkg/monitoring"
	"frameworks/dbdoctor/pkg/probe"
	"frameworks/dbdoctor/pkg/report"
	"frameworks/dbdoctor/pkg/runner"
	"frameworks/dbdoctor/pkg/version"
)

const (
	outputText       = "text"
	outputJSON       = "json"
	outputPrometheus = "prometheus"
)

func newCheckCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [database-url...]",
		Short: "Diagnose connectivity to one or more Postgres databases",
		Long: `Run the probe pipeline against each database URL. Without arguments the
URL is read from DBDOCTOR_DATABASE_URL or DATABASE_URL, after loading .env and
.env.local from the working directory.

Exit codes: 0 healthy, 1 unhealthy, 2 degraded, 3 usage or policy error.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts, args)
		},
	}

	f := cmd.Flags()
	f.Duration("query-timeout", 0, "timeout for each round-trip query (overrides policy)")
	f.Int("repetitions", 0, "stability probe repetitions (overrides policy)")
	f.Bool("tcp-precheck", false, "dial host:port before connecting")
	f.Bool("fail-on-degraded", true, "exit non-zero when the run is degraded")
	f.Int("max-parallel", 0, "maximum targets checked concurrently (overrides policy)")
	for _, name := range []string{"query-timeout", "repetitions", "tcp-precheck", "fail-on-degraded", "max-parallel"} {
		_ = opts.v.BindPFlag(name, f.Lookup(name))
	}
	return cmd
}

func runCheck(cmd *cobra.Command, opts *rootOptions, args []string) error {
	format := opts.v.GetString("output")
	if err := validateOutput(format); err != nil {
		return err
	}

	logger := newLogger(opts, format)
	config.LoadEnv(logger)

	policy, err := loadPolicy(opts)
	if err != nil {
		return err
	}

	targets := args
	if len(targets) == 0 {
		if url := opts.v.GetString("database-url"); url != "" {
			targets = []string{url}
		} else if url := config.FirstEnv("DATABASE_URL"); url != "" {
			targets = []string{url}
		}
	}
	if len(targets) == 0 {
		return errors.New("no database URL: pass one as an argument or set DATABASE_URL")
	}

	open := opts.opener
	if open == nil {
		open = database.NewOpener(policy.DatabaseConfig())
	}
	r := runner.New(probe.Standard(policy.ProbeSettings()), open, logger)

	logger.WithFields(logging.Fields{
		"targets":      len(targets),
		"max_parallel": policy.MaxParallel,
	}).Debug("Starting diagnostic run")

	batch := r.RunAll(cmd.Context(), targets, policy.MaxParallel)
	if err := render(cmd.OutOrStdout(), format, batch); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return exitWith(batch.ExitCode(policy.FailOnDegraded))
}

// loadPolicy reads the policy file and applies flag and environment overrides.
func loadPolicy(opts *rootOptions) (dbcfg.Policy, error) {
	policy, _, err := dbcfg.Load(opts.v.GetString("policy"))
	if err != nil {
		return dbcfg.Policy{}, err
	}

	v := opts.v
	if v.IsSet("query-timeout") && v.GetDuration("query-timeout") > 0 {
		policy.QueryTimeout = v.GetDuration("query-timeout")
	}
	if v.IsSet("repetitions") && v.GetInt("repetitions") > 0 {
		policy.Stability.Repetitions = v.GetInt("repetitions")
	}
	if v.IsSet("max-parallel") && v.GetInt("max-parallel") > 0 {
		policy.MaxParallel = v.GetInt("max-parallel")
	}
	if v.IsSet("tcp-precheck") {
		policy.TCPPrecheck = v.GetBool("tcp-precheck")
	}
	if v.IsSet("fail-on-degraded") {
		policy.FailOnDegraded = v.GetBool("fail-on-degraded")
	}

	if err := policy.Validate(); err != nil {
		return dbcfg.Policy{}, err
	}
	return policy, nil
}

func newLogger(opts *rootOptions, format string) logging.Logger {
	verbose := opts.v.GetBool("verbose")
	if format == outputJSON {
		return logging.NewJSONLogger(verbose)
	}
	return logging.NewLogger(verbose)
}

func validateOutput(format string) error {
	switch format {
	case outputText, outputJSON, outputPrometheus:
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (want text, json or prometheus)", format)
	}
}

func render(w io.Writer, format string, batch *report.Batch) error {
	switch format {
	case outputJSON:
		return report.RenderBatchJSON(w, batch)
	case outputPrometheus:
		return monitoring.WriteBatch(w, version.Name, batch)
	default:
		return report.RenderBatchText(w, batch, report.TextOptions{Color: report.ColorEnabled(w)})
	}
}
