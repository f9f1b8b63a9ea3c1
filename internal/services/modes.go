package services

import (
	"errors"
	"fmt"
	"strings"

	"route-sequencing-service/internal/ports"
)

const (
	ModeModel    = "model"
	ModeDistance = "distance"
)

var ErrUnknownMode = errors.New("unknown sequencing mode")

// NormalizeMode lower-cases mode and defaults an empty value to ModeModel.
func NormalizeMode(mode string) (string, error) {
	mode = strings.ToLower(strings.TrimSpace(mode))
	switch mode {
	case "":
		return ModeModel, nil
	case ModeModel, ModeDistance:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q (want %s or %s)", ErrUnknownMode, mode, ModeModel, ModeDistance)
	}
}

// SequencerFor picks the ordering strategy for a normalized mode. Distance
// mode ranks hops with estimator unless it is planar, in which case the
// spatial index gives the same order.
func SequencerFor(mode string, estimator ports.DistanceEstimator, predictor ports.TravelTimePredictor) (Sequencer, error) {
	switch mode {
	case ModeModel:
		return NewRouteSequencer(estimator, predictor), nil
	case ModeDistance:
		if _, planar := estimator.(ports.PlanarDistance); planar || estimator == nil {
			return DistanceSequencer{}, nil
		}
		return DistanceSequencer{Distance: estimator}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}
