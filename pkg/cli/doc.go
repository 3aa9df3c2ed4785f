/*
Package cli provides helpers shared by the statusproxy commands.

Output Formatting:

Commands that print a result accept --output text|json|yaml:

	format, err := cli.ParseOutputFormat(flagValue)
	if err != nil {
		return err
	}
	return cli.NewFormatter(format).FormatTo(os.Stdout, report)

Results implementing TextRenderer control their own text form.

Probe Progress:

AttemptReporter prints one line per candidate path and is passed to the
prober as its recorder:

	rep := cli.NewAttemptReporter(os.Stderr)
	rep.Start(baseURL, len(paths))
	p, _ := prober.New(cfg, prober.WithRecorder(rep))

Signal Handling:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()

Exit Codes:

ExitCode maps command errors to process exit codes: configuration problems
exit with 2, every other failure with 1.
*/
package cli
