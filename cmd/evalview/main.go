package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"evalview/internal/adapters/remotezip"
	"evalview/internal/modkit/readkit"
	perr "evalview/internal/platform/errors"
	"evalview/internal/platform/logger"
	logviewrepo "evalview/internal/services/logview/repo"
	logviewsvc "evalview/internal/services/logview/service"
)

// exit code 3 marks size refusals so scripts can tell "too large" from "broken"
const exitSizeLimit = 3

func main() {
	var (
		logLevel  string
		logFormat string
	)

	rootCmd := &cobra.Command{
		Use:   "evalview",
		Short: "Read eval log archives over HTTP",
		Long: "evalview reads .eval archives straight off a log host with ranged requests.\n" +
			"Results go to stdout as JSON; diagnostics go to stderr.",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Init(logger.Options{
				Level:   logLevel,
				Format:  logFormat,
				Writer:  os.Stderr,
				Service: "evalview",
			})
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: trace|debug|info|warn|error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "Log format: console|json")

	rootCmd.AddCommand(newHeaderCmd())
	rootCmd.AddCommand(newSummaryCmd())
	rootCmd.AddCommand(newSampleCmd())
	rootCmd.AddCommand(newEntriesCmd())
	rootCmd.AddCommand(newDumpCmd())

	if err := rootCmd.Execute(); err != nil {
		if perr.IsCode(err, perr.ErrorCodeSizeLimit) {
			os.Exit(exitSizeLimit)
		}
		os.Exit(1)
	}
}

// readerFlags are the knobs shared by every read verb
type readerFlags struct {
	timeout        time.Duration
	concurrency    int
	maxSampleBytes int64
}

func addReaderFlags(cmd *cobra.Command, f *readerFlags) {
	cmd.Flags().DurationVar(&f.timeout, "timeout", 30*time.Second, "Overall deadline for the operation")
	cmd.Flags().IntVar(&f.concurrency, "concurrency", 5, "Parallel entry reads during summary and dump")
	cmd.Flags().Int64Var(&f.maxSampleBytes, "max-sample-bytes", 0, "Cap on one sample's on-wire bytes, 0 means no cap")
}

// newService builds a direct, uncached reader
func newService(f readerFlags) logviewsvc.Service {
	t := remotezip.NewHTTPTransport(remotezip.Options{
		Client: &http.Client{Timeout: f.timeout},
	})
	direct := readkit.OpenerFunc(func(ctx context.Context, url string) (*remotezip.Archive, error) {
		return remotezip.Open(ctx, t, url)
	})
	opener := readkit.WithOpenHooks(direct, func(ctx context.Context, a *remotezip.Archive) error {
		logger.C(ctx).Debug().
			Str("url", a.URL()).
			Int64("size", a.Size()).
			Int("entries", a.Len()).
			Str("etag", a.ETag()).
			Msg("archive opened")
		return nil
	})
	return logviewsvc.New(opener, logviewrepo.NewZip(), logviewsvc.Options{
		MaxSampleBytes: f.maxSampleBytes,
		Concurrency:    f.concurrency,
	})
}

// opCtx builds the per-invocation context: signal aware, deadline bound, and
// annotated so every log line carries the run id and file
func opCtx(f readerFlags, url string) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	ctx = logger.WithRequest(ctx, uuid.NewString())
	ctx = logger.WithLogFile(ctx, url)
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	return ctx, func() { cancel(); stop() }
}

func emit(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newHeaderCmd() *cobra.Command {
	var f readerFlags
	cmd := &cobra.Command{
		Use:   "header <url>",
		Short: "Print the run header",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opCtx(f, args[0])
			defer cancel()
			h, err := newService(f).ReadHeader(ctx, args[0])
			if err != nil {
				return err
			}
			return emit(h)
		},
	}
	addReaderFlags(cmd, &f)
	return cmd
}

func newSummaryCmd() *cobra.Command {
	var f readerFlags
	cmd := &cobra.Command{
		Use:   "summary <url>",
		Short: "Print the run header plus all sample summaries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opCtx(f, args[0])
			defer cancel()
			s, err := newService(f).ReadSummary(ctx, args[0])
			if err != nil {
				return err
			}
			return emit(s)
		},
	}
	addReaderFlags(cmd, &f)
	return cmd
}

func newSampleCmd() *cobra.Command {
	var (
		f     readerFlags
		id    string
		epoch int
	)
	cmd := &cobra.Command{
		Use:   "sample <url>",
		Short: "Print one sample body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opCtx(f, args[0])
			defer cancel()
			raw, err := newService(f).ReadSample(ctx, args[0], id, epoch)
			if err != nil {
				return err
			}
			return emit(raw)
		},
	}
	addReaderFlags(cmd, &f)
	cmd.Flags().StringVar(&id, "id", "", "Sample id")
	cmd.Flags().IntVar(&epoch, "epoch", 1, "Sample epoch, 1-based")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newEntriesCmd() *cobra.Command {
	var f readerFlags
	cmd := &cobra.Command{
		Use:   "entries <url>",
		Short: "List archive members without fetching payloads",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opCtx(f, args[0])
			defer cancel()
			l, err := newService(f).Entries(ctx, args[0])
			if err != nil {
				return err
			}
			return emit(l)
		},
	}
	addReaderFlags(cmd, &f)
	return cmd
}

func newDumpCmd() *cobra.Command {
	var f readerFlags
	cmd := &cobra.Command{
		Use:   "dump <url>",
		Short: "Print the complete log, header plus every sample",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opCtx(f, args[0])
			defer cancel()
			l, err := newService(f).ReadFullLog(ctx, args[0])
			if err != nil {
				return err
			}
			return emit(l)
		},
	}
	addReaderFlags(cmd, &f)
	return cmd
}
