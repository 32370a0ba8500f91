package pipeline

import "os"

// RunPiped connects the producer's stdout to the consumer's stdin through an
// OS pipe and runs both processes to completion.
//
// The parent closes its copies of both pipe ends as soon as the children own
// them. That close is what keeps a dead consumer from hanging the producer:
// once no reader is left, the producer's next write fails with a broken pipe
// instead of blocking forever.
//
// The consumer is reaped first. It exits only after draining its input, which
// requires the producer to have closed its end, so waiting on the producer
// first could block behind a consumer that is still reading.
func (r *ExecRunner) RunPiped(producer, consumer StageSpec, dir string) (StageOutcome, StageOutcome) {
	pr, pw, err := os.Pipe()
	if err != nil {
		return StageOutcome{Err: err}, StageOutcome{Err: err}
	}

	prodCmd := r.command(producer, dir)
	prodCmd.Stdout = pw

	consCmd := r.command(consumer, dir)
	consCmd.Stdin = pr
	consCmd.Stdout = os.Stdout

	if err := prodCmd.Start(); err != nil {
		pw.Close()
		pr.Close()
		return StageOutcome{Err: err}, StageOutcome{}
	}
	if err := consCmd.Start(); err != nil {
		pw.Close()
		pr.Close()
		// The producer is already running. With every read end closed its
		// next write breaks, so reaping it cannot block.
		return runOutcome(prodCmd.Wait()), StageOutcome{Err: err}
	}

	pw.Close()
	pr.Close()

	consOutcome := runOutcome(consCmd.Wait())
	prodOutcome := runOutcome(prodCmd.Wait())
	return prodOutcome, consOutcome
}
