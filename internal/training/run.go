package training

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"route-sequencing-service/internal/platform/obs"
	"route-sequencing-service/internal/ports"
	"route-sequencing-service/internal/predictor"
)

const (
	SourceSynthetic    = "synthetic"
	SourceObservations = "observations"
)

type Options struct {
	// Synthetic skips recorded observations entirely.
	Synthetic bool
	Samples   int
	Seed      int64
	// Limit caps how many recorded observations are read. Zero reads all.
	Limit   int
	Version string
	Now     func() time.Time
}

// Train fits a model from recorded observations when enough valid rows
// exist, and from the synthetic corpus otherwise.
func Train(
	ctx context.Context,
	opts Options,
	observations ports.ObservationRepository,
	distance ports.DistanceEstimator,
) (_ predictor.Trained, source string, err error) {
	defer obs.Time(ctx, "training.Train")(&err)

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	var samples []Sample
	source = SourceSynthetic

	if !opts.Synthetic && observations != nil {
		rows, err := observations.ListObservations(ctx, opts.Limit)
		if err != nil {
			return predictor.Trained{}, "", fmt.Errorf("train: %w", err)
		}
		recorded, skipped := FromObservations(rows, distance)
		if skipped > 0 {
			log.Printf("training: skipped invalid observations count=%d", skipped)
		}
		if len(recorded) >= MinSamples {
			samples, source = recorded, SourceObservations
		} else {
			log.Printf("training: too few observations count=%d min=%d, using synthetic corpus", len(recorded), MinSamples)
		}
	}

	if samples == nil {
		n := opts.Samples
		if n < MinSamples {
			n = MinSamples
		}
		samples = SyntheticCorpus(rand.New(rand.NewSource(opts.Seed)), n)
	}

	t, err := Fit(samples, opts.Version, now().UTC())
	if err != nil {
		return predictor.Trained{}, "", fmt.Errorf("train: %w", err)
	}

	log.Printf("training: fitted model version=%s source=%s samples=%d", t.Version, source, len(samples))
	return t, source, nil
}
