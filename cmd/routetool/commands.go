package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"route-sequencing-service/internal/adapters/distance"
	"route-sequencing-service/internal/adapters/repositories"
	"route-sequencing-service/internal/api/dto"
	"route-sequencing-service/internal/config"
	"route-sequencing-service/internal/domain"
	"route-sequencing-service/internal/platform/db"
	"route-sequencing-service/internal/ports"
	"route-sequencing-service/internal/predictor"
	"route-sequencing-service/internal/services"
	"route-sequencing-service/internal/training"

	"github.com/spf13/cobra"
)

type store struct {
	conn         *sql.DB
	models       *repositories.SQLModelRepository
	observations *repositories.SQLObservationRepository
}

func (s *store) Close() error { return s.conn.Close() }

// openStore resolves the store from flags, falling back to the environment,
// and makes sure the schema exists.
func openStore(cfg *config.Config) (*store, error) {
	dsn, path := databaseURL, sqlitePath
	if dsn == "" && path == "" {
		dsn, path = cfg.DatabaseURL, cfg.SQLitePath
	}

	conn, dialect, err := db.OpenStore(dsn, path)
	if err != nil {
		return nil, err
	}
	if err := repositories.InitSchema(conn, dialect); err != nil {
		conn.Close()
		return nil, err
	}
	return &store{
		conn:         conn,
		models:       repositories.NewSQLModelRepository(conn, dialect),
		observations: repositories.NewSQLObservationRepository(conn, dialect),
	}, nil
}

func newMigrateCmd() *cobra.Command {
	var seedPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the model and observation tables, optionally seeding observations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log.Println("Initializing database schema...")
			s, err := openStore(cfg)
			if err != nil {
				return fmt.Errorf("schema initialization failed: %w", err)
			}
			defer s.Close()
			log.Println("Schema ready.")

			if seedPath == "" {
				return nil
			}
			log.Println("Seeding observations...")
			n, err := repositories.SeedObservationsFromJSON(cmd.Context(), s.observations, seedPath)
			if err != nil {
				return fmt.Errorf("seeding failed: %w", err)
			}
			log.Printf("Seeding complete. rows=%d", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&seedPath, "seed", "", "JSON file of recorded trips to load into trip_observations")
	return cmd
}

func newTrainCmd() *cobra.Command {
	var opts training.Options

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Fit a travel-time model and store it as the latest version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("samples") {
				opts.Samples = cfg.TrainSamples
			}
			if !cmd.Flags().Changed("seed") {
				opts.Seed = cfg.TrainSeed
			}

			estimator, err := distance.NewEstimator(cfg.DistanceEstimator)
			if err != nil {
				return err
			}
			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			trained, source, err := training.Train(cmd.Context(), opts, s.observations, estimator)
			if err != nil {
				return err
			}
			if err := s.models.SaveModel(cmd.Context(), trained); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored model version=%s source=%s\n", trained.Version, source)
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.Synthetic, "synthetic", false, "Ignore recorded observations and fit the synthetic corpus")
	cmd.Flags().IntVar(&opts.Samples, "samples", 100, "Synthetic corpus size")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 42, "Synthetic corpus seed")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Most recent observations to read (0 reads all)")
	cmd.Flags().StringVar(&opts.Version, "version", "", "Model version label (defaults to a UTC timestamp)")
	return cmd
}

// timeFlags are shared by predict and sequence.
type timeFlags struct {
	at      string
	traffic float64
}

func (f *timeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.at, "at", "", "Departure time, RFC3339 (defaults to now)")
	cmd.Flags().Float64Var(&f.traffic, "traffic", -1, "Traffic level override in [0,1]")
}

func (f *timeFlags) context(cfg *config.Config) (domain.TimeContext, error) {
	t := time.Now().In(cfg.Location)
	if f.at != "" {
		parsed, err := time.Parse(time.RFC3339, f.at)
		if err != nil {
			return domain.TimeContext{}, fmt.Errorf("--at: %w", err)
		}
		t = parsed
	}
	tc := domain.ContextAt(t)
	if f.traffic >= 0 {
		tc = tc.WithTraffic(f.traffic)
	}
	if err := tc.Validate(); err != nil {
		return domain.TimeContext{}, err
	}
	return tc, nil
}

// servingPredictor loads the latest stored model the way the server does,
// without training.
func servingPredictor(ctx context.Context, repo ports.ModelRepository) (*predictor.Predictor, error) {
	state, err := repo.LoadLatest(ctx)
	if err != nil {
		return nil, err
	}
	return predictor.New(state), nil
}

func newPredictCmd() *cobra.Command {
	var origin, destination string
	var tf timeFlags

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict travel minutes between two \"lat,lng\" points",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			from, err := domain.ParseLocation(origin)
			if err != nil {
				return fmt.Errorf("--origin: %w", err)
			}
			to, err := domain.ParseLocation(destination)
			if err != nil {
				return fmt.Errorf("--destination: %w", err)
			}
			tc, err := tf.context(cfg)
			if err != nil {
				return err
			}
			estimator, err := distance.NewEstimator(cfg.DistanceEstimator)
			if err != nil {
				return err
			}

			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()
			p, err := servingPredictor(cmd.Context(), s.models)
			if err != nil {
				return err
			}

			fv, err := domain.FeaturesFor(estimator.DistanceKm, from, to, tc)
			if err != nil {
				return err
			}
			minutes, path := p.PredictWithPath(fv)

			return writeJSON(cmd.OutOrStdout(), dto.PredictResponse{
				DistanceKm:        dto.Round2(fv.DistanceKm),
				TravelTimeMinutes: dto.Round2(minutes),
				Hour:              fv.HourOfDay,
				DayOfWeek:         fv.DayOfWeek,
				TrafficLevel:      fv.TrafficLevel,
				Model:             path,
				ModelVersion:      p.Version(),
			})
		},
	}
	cmd.Flags().StringVar(&origin, "origin", "", "Origin as \"lat,lng\"")
	cmd.Flags().StringVar(&destination, "destination", "", "Destination as \"lat,lng\"")
	_ = cmd.MarkFlagRequired("origin")
	_ = cmd.MarkFlagRequired("destination")
	tf.register(cmd)
	return cmd
}

func newSequenceCmd() *cobra.Command {
	var file, modeFlag string
	var tf timeFlags

	cmd := &cobra.Command{
		Use:   "sequence",
		Short: "Order the destinations of a /predict-trajet style JSON file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			req, err := readRouteRequest(file)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("mode") || req.Mode == "" {
				req.Mode = modeFlag
			}
			mode, err := services.NormalizeMode(req.Mode)
			if err != nil {
				return err
			}
			start, destinations, err := req.Parse()
			if err != nil {
				return err
			}

			if req.DepartureTime != nil && tf.at == "" {
				tf.at = req.DepartureTime.Format(time.RFC3339)
			}
			if req.TrafficLevel != nil && tf.traffic < 0 {
				tf.traffic = *req.TrafficLevel
			}
			tc, err := tf.context(cfg)
			if err != nil {
				return err
			}

			estimator, err := distance.NewEstimator(cfg.DistanceEstimator)
			if err != nil {
				return err
			}
			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()
			p, err := servingPredictor(cmd.Context(), s.models)
			if err != nil {
				return err
			}

			seq, err := services.SequencerFor(mode, estimator, p)
			if err != nil {
				return err
			}
			route, err := services.PlanRoute(cmd.Context(), services.PlanRouteRequest{
				Start:         start,
				Destinations:  destinations,
				Context:       tc,
				ReturnToStart: req.ReturnToStart,
			}, seq, estimator, p)
			if err != nil {
				return err
			}

			return writeJSON(cmd.OutOrStdout(), dto.NewRouteResponse(route, mode, p.Version()))
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Request JSON file (\"-\" reads stdin)")
	cmd.Flags().StringVar(&modeFlag, "mode", services.ModeModel, "Sequencing mode: model or distance")
	_ = cmd.MarkFlagRequired("file")
	tf.register(cmd)
	return cmd
}

func readRouteRequest(path string) (dto.RouteRequest, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return dto.RouteRequest{}, fmt.Errorf("read request: %w", err)
		}
		defer f.Close()
		r = f
	}

	var req dto.RouteRequest
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return dto.RouteRequest{}, fmt.Errorf("read request %q: %w", path, err)
	}
	return req, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
