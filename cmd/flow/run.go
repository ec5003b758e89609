package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/muesli/termenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/go-drift/flow/internal/termview"
	"github.com/go-drift/flow/internal/todo"
	"github.com/go-drift/flow/pkg/engine"
	"github.com/go-drift/flow/pkg/metrics"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Play an event script and print a frame per pass",
		Long: `Plays a YAML event script through the todo application. After every
pass the terminal backend prints the labelled components of the tree.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			colorMode, _ := cmd.Flags().GetString("color")
			withMetrics, _ := cmd.Flags().GetBool("metrics")
			debugAddr, _ := cmd.Flags().GetString("debug-addr")
			hold, _ := cmd.Flags().GetBool("hold")

			out := cmd.OutOrStdout()
			profile, err := colorProfile(out, colorMode)
			if err != nil {
				return err
			}
			s, err := newSession(cmd, args[0], termview.WithProfile(profile))
			if err != nil {
				return err
			}
			header(out, s.cfg, len(s.events))

			var extra []engine.Option
			var reg *prometheus.Registry
			if withMetrics {
				reg = prometheus.NewRegistry()
				c := metrics.NewCollector()
				reg.MustRegister(c)
				extra = append(extra, engine.WithHooks(c.Hooks()), engine.WithPassObserver(c.ObservePass))
			}

			var eng *engine.Engine[todo.App]
			extra = append(extra, engine.WithPassObserver(func(p engine.PassSample) {
				if p.Failed {
					return
				}
				fmt.Fprintf(out, "--- pass %d: %s (%s) %dpx\n", p.Seq, p.Event, p.Stats, s.backend.Width(eng.Tree()))
				_ = s.backend.Render(out, eng.Tree())
			}))
			eng = s.newEngine(extra...)

			if debugAddr != "" {
				router := engine.NewDebugHandler(eng)
				if reg != nil {
					router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
				}
				var srv engine.DebugServer
				addr, err := srv.Start(debugAddr, router)
				if err != nil {
					return err
				}
				defer srv.Shutdown(context.Background())
				fmt.Fprintf(cmd.ErrOrStderr(), "debug server listening on http://%s\n", addr)
			}

			if err := s.play(cmd.Context(), eng); err != nil {
				return err
			}
			if debugAddr != "" && hold {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
				defer stop()
				fmt.Fprintln(cmd.ErrOrStderr(), "script finished, press Ctrl-C to stop the debug server")
				<-ctx.Done()
			}

			if reg != nil {
				return writeMetrics(out, reg)
			}
			return nil
		},
	}
	cmd.Flags().String("color", "auto", "Colour output (auto, always, never)")
	cmd.Flags().Bool("metrics", false, "Print a metrics summary after the run")
	cmd.Flags().String("debug-addr", "", "Serve tree and pass inspection on this address (e.g. 127.0.0.1:9090)")
	cmd.Flags().Bool("hold", false, "Keep the debug server running after the script until interrupted")
	return cmd
}

// colorProfile picks the termenv profile for w. In auto mode only a
// terminal gets colour.
func colorProfile(w io.Writer, mode string) (termenv.Profile, error) {
	switch mode {
	case "never":
		return termenv.Ascii, nil
	case "always":
		return termenv.ANSI256, nil
	case "auto":
		f, ok := w.(*os.File)
		if !ok || !term.IsTerminal(int(f.Fd())) {
			return termenv.Ascii, nil
		}
		return termenv.NewOutput(f).EnvColorProfile(), nil
	default:
		return termenv.Ascii, fmt.Errorf("unknown --color value %q (want auto, always or never)", mode)
	}
}

// writeMetrics prints every gathered sample, one per line, sorted by name
// and labels.
func writeMetrics(w io.Writer, reg prometheus.Gatherer) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			name := mf.GetName()
			if pairs := m.GetLabel(); len(pairs) > 0 {
				labels := make([]string, len(pairs))
				for i, lp := range pairs {
					labels[i] = fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue())
				}
				name += "{" + strings.Join(labels, ",") + "}"
			}
			switch {
			case m.GetCounter() != nil:
				lines = append(lines, fmt.Sprintf("%s %g", name, m.GetCounter().GetValue()))
			case m.GetGauge() != nil:
				lines = append(lines, fmt.Sprintf("%s %g", name, m.GetGauge().GetValue()))
			case m.GetHistogram() != nil:
				lines = append(lines, fmt.Sprintf("%s count=%d", name, m.GetHistogram().GetSampleCount()))
			}
		}
	}
	sort.Strings(lines)

	fmt.Fprintln(w, "--- metrics")
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
	return nil
}
