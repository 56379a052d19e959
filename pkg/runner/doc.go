/*
Package runner implements the host loop that drives a model and a tracer over simulated time.

Each step evaluates the model at the current time, dumps the traced signals, advances the
time and toggles the model clock when the model has one. The loop stops after the configured
number of steps or when the context is cancelled; either way the tracer is closed so the
waveform on disk stays well formed.

# Usage

	r := runner.New(
		runner.WithSteps(21),
		runner.WithLogger(logger),
	)

	res, err := r.Run(ctx, model, tracer)
*/
package runner
