package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"miyabi-hq/statusproxy/pkg/cli"
	"miyabi-hq/statusproxy/pkg/prober"
	"miyabi-hq/statusproxy/pkg/status"
	"miyabi-hq/statusproxy/pkg/telemetry/logging"

	"github.com/spf13/cobra"
)

var probeFlags struct {
	output  string
	paths   []string
	timeout time.Duration
	quiet   bool
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Probe the gateway once and print the resulting document",
	Long: `Probe the gateway once, exactly as a refresh would, and print the
document the proxy would serve together with every rejected candidate path.

Progress is written to stderr; the report goes to stdout. The command exits
with status 1 when no candidate path produced a usable answer.

Examples:
  # Probe with the configured candidate paths
  statusproxy probe

  # Probe specific paths and print JSON
  statusproxy probe --path /api/status --path / --output json`,
	Args: cobra.NoArgs,
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)

	probeCmd.Flags().StringVarP(&probeFlags.output, "output", "o", "text", "output format (text, json, yaml)")
	probeCmd.Flags().StringSliceVar(&probeFlags.paths, "path", nil, "candidate path to try, in order (repeatable)")
	probeCmd.Flags().DurationVar(&probeFlags.timeout, "timeout", 0, "per-path timeout (default from configuration)")
	probeCmd.Flags().BoolVarP(&probeFlags.quiet, "quiet", "q", false, "do not print per-path progress")
}

type probeFailure struct {
	Path   string `json:"path" yaml:"path"`
	Kind   string `json:"kind" yaml:"kind"`
	Reason string `json:"reason" yaml:"reason"`
}

// documentView is what a dashboard would show for the document.
type documentView struct {
	Online          bool   `json:"online" yaml:"online"`
	Summary         string `json:"summary,omitempty" yaml:"summary,omitempty"`
	Agents          int    `json:"agents" yaml:"agents"`
	Sessions        int    `json:"sessions" yaml:"sessions"`
	HeartbeatAgents int    `json:"heartbeat_agents" yaml:"heartbeat_agents"`
	UpdatedAt       string `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

func newDocumentView(raw []byte) *documentView {
	doc, err := status.Decode(raw)
	if err != nil {
		return nil
	}
	v := &documentView{
		Online:    doc.Online(),
		Summary:   doc.Summary,
		Agents:    doc.Agents,
		Sessions:  doc.Sessions,
		UpdatedAt: doc.UpdatedAt,
	}
	for _, a := range doc.AgentList {
		if a.HeartbeatEnabled() {
			v.HeartbeatAgents++
		}
	}
	return v
}

type probeReport struct {
	Gateway   string         `json:"gateway" yaml:"gateway"`
	OK        bool           `json:"ok" yaml:"ok"`
	Path      string         `json:"path,omitempty" yaml:"path,omitempty"`
	Kind      string         `json:"kind,omitempty" yaml:"kind,omitempty"`
	Synthetic bool           `json:"synthetic" yaml:"synthetic"`
	LatencyMS int64          `json:"latency_ms,omitempty" yaml:"latency_ms,omitempty"`
	Failures  []probeFailure `json:"failures,omitempty" yaml:"failures,omitempty"`
	View      *documentView  `json:"view,omitempty" yaml:"view,omitempty"`

	// Document is the body as served; YAML output gets the decoded form.
	Document    json.RawMessage `json:"document,omitempty" yaml:"-"`
	DocumentDoc any             `json:"-" yaml:"document,omitempty"`
}

func newProbeReport(gateway string, res *prober.Result, err error) *probeReport {
	rep := &probeReport{Gateway: gateway}

	var failures []prober.PathFailure
	var perr *prober.ProbeError
	switch {
	case res != nil:
		rep.OK = true
		rep.Path = res.Path
		rep.Kind = res.Kind.String()
		rep.Synthetic = res.Synthetic
		rep.LatencyMS = res.Latency.Milliseconds()
		rep.Document = json.RawMessage(res.Body)
		rep.View = newDocumentView(res.Body)
		_ = json.Unmarshal(res.Body, &rep.DocumentDoc)
		failures = res.Failures
	case errors.As(err, &perr):
		failures = perr.Failures
	}

	for _, f := range failures {
		rep.Failures = append(rep.Failures, probeFailure{Path: f.Path, Kind: string(f.Kind), Reason: f.Reason})
	}
	return rep
}

// RenderText prints the failures first, then the accepted document.
func (r *probeReport) RenderText(w io.Writer) error {
	for _, f := range r.Failures {
		fmt.Fprintf(w, "✗ %s: %s\n", f.Path, f.Reason)
	}
	if !r.OK {
		_, err := fmt.Fprintf(w, "No usable answer from %s\n", r.Gateway)
		return err
	}

	kind := r.Kind
	if r.Synthetic {
		kind += ", synthesized"
	}
	fmt.Fprintf(w, "✓ %s%s (%s, %dms)\n", r.Gateway, r.Path, kind, r.LatencyMS)
	if v := r.View; v != nil {
		online := "no"
		if v.Online {
			online = "yes"
		}
		fmt.Fprintf(w, "  online: %s  agents: %d  sessions: %d  heartbeat agents: %d\n",
			online, v.Agents, v.Sessions, v.HeartbeatAgents)
	}
	fmt.Fprintln(w)

	var buf bytes.Buffer
	if err := json.Indent(&buf, r.Document, "", "  "); err != nil {
		buf.Reset()
		buf.Write(r.Document)
	}
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}

func runProbe(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(probeFlags.output)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	pcfg, client, err := newProberConfig(cfg)
	if err != nil {
		return cli.NewConfigError("gateway", err.Error())
	}
	defer client.CloseIdleConnections()

	if len(probeFlags.paths) > 0 {
		pcfg.Paths = probeFlags.paths
	}
	if probeFlags.timeout > 0 {
		pcfg.Timeout = probeFlags.timeout
	}

	logger := logging.Discard()
	if verbose {
		logger, err = logging.New(logging.Config{Level: "debug", Format: "text", Redact: true, Writer: cmd.ErrOrStderr()})
		if err != nil {
			return err
		}
	}

	opts := []prober.Option{prober.WithLogger(logger)}
	var progress *cli.AttemptReporter
	if !probeFlags.quiet {
		progress = cli.NewAttemptReporter(cmd.ErrOrStderr())
		opts = append(opts, prober.WithRecorder(progress))
	}

	p, err := prober.New(pcfg, opts...)
	if err != nil {
		return cli.NewConfigError("gateway", err.Error())
	}

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	if progress != nil {
		progress.Start(client.BaseURL(), len(pcfg.Paths))
	}
	res, probeErr := p.Probe(ctx)
	if progress != nil {
		progress.Finish()
	}

	report := newProbeReport(client.BaseURL(), res, probeErr)
	if err := cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), report); err != nil {
		return err
	}

	if probeErr != nil {
		return cli.NewCommandError("probe", probeErr)
	}
	return nil
}
