package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/hupe1980/sdci"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// app holds the state shared by all commands of one invocation.
type app struct {
	configPath  string
	index       string
	alphabet    string
	q, k        uint64
	compression string
	logLevel    string
	showMetrics bool

	cfg     Config
	alpha   *Alphabet
	logger  *sdci.Logger
	metrics *sdci.BasicMetricsCollector
}

func newRootCmd() *cobra.Command {
	a := &app{metrics: &sdci.BasicMetricsCollector{}}

	root := &cobra.Command{
		Use:           "sdci",
		Short:         "Build and query semi-dynamic compact q-gram indexes",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if a.showMetrics {
				a.printMetrics(cmd.ErrOrStderr())
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML config file")
	pf.StringVarP(&a.index, "index", "i", "", "snapshot file or blob name")
	pf.StringVar(&a.alphabet, "alphabet", "", "text characters, in symbol order")
	pf.Uint64VarP(&a.q, "q", "q", 0, "q-gram length")
	pf.Uint64VarP(&a.k, "k", "k", 0, "sampling step")
	pf.StringVar(&a.compression, "compression", "", "snapshot compression (none, lz4, zstd)")
	pf.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.BoolVar(&a.showMetrics, "metrics", false, "print operation metrics on exit")

	root.AddCommand(
		a.buildCmd(),
		a.appendCmd(),
		a.locateCmd(),
		a.countCmd(),
		a.extractCmd(),
		a.retrieveCmd(),
		a.statsCmd(),
		a.lsCmd(),
		a.rmCmd(),
		a.pushCmd(),
		a.pullCmd(),
		a.demoCmd(),
	)

	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := LoadConfig(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("alphabet") {
		cfg.Alphabet = a.alphabet
	}
	if flags.Changed("q") {
		cfg.Q = a.q
	}
	if flags.Changed("k") {
		cfg.K = a.k
	}
	if flags.Changed("compression") {
		cfg.Compression = a.compression
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	alpha, err := NewAlphabet(cfg.Alphabet)
	if err != nil {
		return err
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.alpha = alpha
	a.logger = sdci.NewLogger(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}

func (a *app) options(expected uint64) []sdci.Option {
	return []sdci.Option{
		sdci.WithLogger(a.logger),
		sdci.WithMetricsCollector(a.metrics),
		sdci.WithExpectedLength(expected),
	}
}

func (a *app) target(ctx context.Context) (*snapshotTarget, error) {
	return openTarget(ctx, a.cfg, a.index)
}

// open loads the snapshot named by --index.
func (a *app) open(ctx context.Context) (*sdci.Index, *snapshotTarget, error) {
	t, err := a.target(ctx)
	if err != nil {
		return nil, nil, err
	}

	ix, err := sdci.New(0, 0, 0, a.options(0)...)
	if err != nil {
		return nil, nil, err
	}
	if err := t.load(ctx, ix); err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", a.index, err)
	}
	if ix.AlphabetSize() != a.alpha.Size() {
		return nil, nil, fmt.Errorf("index %s has %d symbols but the alphabet has %d", a.index, ix.AlphabetSize(), a.alpha.Size())
	}
	return ix, t, nil
}

// readTexts encodes the inputs concurrently and returns them in argument order.
// "-" reads standard input.
func (a *app) readTexts(ctx context.Context, stdin io.Reader, paths []string) ([][]uint64, uint64, error) {
	texts := make([][]uint64, len(paths))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, path := range paths {
		g.Go(func() error {
			var (
				data []byte
				err  error
			)
			if path == "-" {
				data, err = io.ReadAll(stdin)
			} else {
				data, err = os.ReadFile(path)
			}
			if err != nil {
				return err
			}
			syms, err := a.alpha.Encode(string(data))
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			texts[i] = syms
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	var total uint64
	for _, t := range texts {
		total += uint64(len(t))
	}
	return texts, total, nil
}

func (a *app) buildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build FILE...",
		Short: "Index the concatenation of the given files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			t, err := a.target(ctx)
			if err != nil {
				return err
			}
			texts, total, err := a.readTexts(ctx, cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			ix, err := sdci.New(a.alpha.Size(), a.cfg.Q, a.cfg.K, a.options(total)...)
			if err != nil {
				return err
			}
			for _, text := range texts {
				if err := ix.Append(text); err != nil {
					return err
				}
			}
			if err := t.save(ctx, ix); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "indexed %s symbols from %d file(s) into %s\n",
				humanize.Comma(int64(ix.Len())), len(args), a.index)
			return nil
		},
	}
}

func (a *app) appendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "append FILE...",
		Short: "Append the given files to an existing index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			ix, t, err := a.open(ctx)
			if err != nil {
				return err
			}
			texts, total, err := a.readTexts(ctx, cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			if err := ix.Reserve(ix.Len() + total); err != nil {
				return err
			}
			for _, text := range texts {
				if err := ix.Append(text); err != nil {
					return err
				}
			}
			if err := t.save(ctx, ix); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "appended %s symbols, text length %s\n",
				humanize.Comma(int64(total)), humanize.Comma(int64(ix.Len())))
			return nil
		},
	}
}

func (a *app) pattern(s string) ([]uint64, error) {
	return a.alpha.Encode(s)
}

func (a *app) locateCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "locate PATTERN",
		Short: "Print the start positions of a pattern in ascending order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ix, _, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			p, err := a.pattern(args[0])
			if err != nil {
				return err
			}
			bm, err := ix.LocateBitmap(p)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			it := bm.Iterator()
			for printed := 0; it.HasNext() && (limit <= 0 || printed < limit); printed++ {
				fmt.Fprintln(out, it.Next())
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "print at most this many positions (0 = all)")
	return cmd
}

func (a *app) countCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count PATTERN",
		Short: "Print the number of occurrences of a pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ix, _, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			p, err := a.pattern(args[0])
			if err != nil {
				return err
			}
			n, err := ix.Count(p)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
}

func (a *app) extractCmd() *cobra.Command {
	var from, length uint64

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Print a substring of the indexed text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ix, _, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.alpha.Decode(ix.Extract(from, length)))
			return nil
		},
	}
	cmd.Flags().Uint64Var(&from, "from", 0, "start position")
	cmd.Flags().Uint64Var(&length, "length", 0, "number of symbols")
	return cmd
}

func (a *app) retrieveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retrieve",
		Short: "Print the whole indexed text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ix, _, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.alpha.Decode(ix.Retrieve()))
			return nil
		},
	}
}

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print index parameters and memory usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ix, _, err := a.open(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "alphabet size:   %d\n", ix.AlphabetSize())
			fmt.Fprintf(out, "q:               %d\n", ix.Q())
			fmt.Fprintf(out, "k:               %d\n", ix.K())
			fmt.Fprintf(out, "text length:     %s\n", humanize.Comma(int64(ix.Len())))
			fmt.Fprintf(out, "max pattern len: %d\n", ix.MaxPatternLen())
			fmt.Fprintf(out, "heap usage:      %s\n", humanize.IBytes(ix.HeapUsage()))
			fmt.Fprintf(out, "memory usage:    %s\n", humanize.IBytes(ix.MemoryUsage()))
			if n := ix.Len(); n > 0 {
				fmt.Fprintf(out, "bits per symbol: %s\n", strconv.FormatFloat(float64(ix.MemoryUsage())*8/float64(n), 'f', 2, 64))
			}
			return nil
		},
	}
}

// demoCmd runs a fixed scenario on a four-letter alphabet.
func (a *app) demoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run a small worked example",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			alpha, err := NewAlphabet("abcd")
			if err != nil {
				return err
			}
			ix, err := sdci.New(alpha.Size(), 6, 3, sdci.WithLogger(a.logger), sdci.WithMetricsCollector(a.metrics))
			if err != nil {
				return err
			}
			pattern, _ := alpha.Encode("bca")

			step := func(text string) error {
				syms, err := alpha.Encode(text)
				if err != nil {
					return err
				}
				if err := ix.Append(syms); err != nil {
					return err
				}
				bm, err := ix.LocateBitmap(pattern)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "append %-20s text=%s\n", strconv.Quote(text), alpha.Decode(ix.Retrieve()))
				fmt.Fprintf(out, "locate %-20s %v\n", strconv.Quote("bca"), bm.ToArray())
				return nil
			}

			fmt.Fprintf(out, "sigma=%d q=%d k=%d\n", ix.AlphabetSize(), ix.Q(), ix.K())
			if err := step("abcadccbacbcabcadb"); err != nil {
				return err
			}
			return step("caddacbd")
		},
	}
}

func (a *app) printMetrics(w io.Writer) {
	s := a.metrics.GetStats()
	var sb strings.Builder
	fmt.Fprintf(&sb, "appends=%d (errors=%d, symbols=%s) ", s.AppendCount, s.AppendErrors, humanize.Comma(s.AppendSymbols))
	fmt.Fprintf(&sb, "locates=%d (errors=%d, matches=%s, avg=%dns) ", s.LocateCount, s.LocateErrors, humanize.Comma(s.LocateMatches), s.LocateAvgNanos)
	fmt.Fprintf(&sb, "extracts=%d snapshots=%d (%s) loads=%d",
		s.ExtractCount, s.SnapshotCount, humanize.IBytes(uint64(max(s.SnapshotBytes, 0))), s.LoadCount)
	fmt.Fprintln(w, sb.String())
}
