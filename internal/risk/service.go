// Package risk turns lifestyle slider indices into a gamified diabetes-risk
// score using a random forest fitted once on the built-in dataset.
package risk

import (
	"fmt"
	"math"
	"sort"

	"github.com/Skufu/fitlevel/internal/dataset"
	"github.com/Skufu/fitlevel/internal/forest"
)

// DefaultIndex is used for any controllable feature missing from a SliderInput.
const DefaultIndex = 50

const epsilon = 1e-8

// SliderInput maps controllable feature names to an index, nominally 0-100.
type SliderInput map[string]int

func (s SliderInput) get(name string) int {
	if v, ok := s[name]; ok {
		return v
	}
	return DefaultIndex
}

// ControllableFeature describes one slider.
type ControllableFeature struct {
	Name    string `json:"name"`
	Label   string `json:"label"`
	Default int    `json:"default"`
}

var controllable = []ControllableFeature{
	{Name: "age", Label: "Age index", Default: 40},
	{Name: "bmi", Label: "Body fitness (BMI index)", Default: 50},
	{Name: "bp", Label: "Blood pressure index", Default: 50},
	{Name: "s1", Label: "Cholesterol index", Default: 50},
	{Name: "s5", Label: "Triglycerides index", Default: 50},
	{Name: "s6", Label: "Blood sugar index", Default: 50},
}

// Controllable returns the slider catalog in display order.
func Controllable() []ControllableFeature {
	out := make([]ControllableFeature, len(controllable))
	copy(out, controllable)
	return out
}

func isControllable(name string) bool {
	for _, c := range controllable {
		if c.Name == name {
			return true
		}
	}
	return false
}

type ModelConfig struct {
	Estimators int
	Seed       uint64
	TestSize   float64
}

func DefaultModelConfig() ModelConfig {
	return ModelConfig{Estimators: 200, Seed: 42, TestSize: 0.2}
}

// FeatureImportance pairs a feature with its weight in the fitted forest.
type FeatureImportance struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// Info describes the fitted model.
type Info struct {
	Estimators int     `json:"estimators"`
	Seed       uint64  `json:"seed"`
	TrainRows  int     `json:"trainRows"`
	TestRows   int     `json:"testRows"`
	TargetMin  float64 `json:"targetMin"`
	TargetMax  float64 `json:"targetMax"`
	HoldoutR2  float64 `json:"holdoutR2"`
}

// Service holds the fitted model and feature statistics. It is immutable
// after NewService and safe for concurrent use.
type Service struct {
	model      *forest.Regressor
	names      []string
	stats      []dataset.FeatureStats
	yMin, yMax float64
	importance []FeatureImportance
	info       Info
}

// NewService splits ds, fits the forest on the training partition and
// records the statistics used for slider mapping.
func NewService(ds *dataset.Dataset, cfg ModelConfig) (*Service, error) {
	train, test, err := ds.Split(cfg.TestSize, cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("split dataset: %w", err)
	}

	model := forest.New(forest.WithEstimators(cfg.Estimators), forest.WithSeed(cfg.Seed))
	if err := model.Fit(train.X, train.Y); err != nil {
		return nil, fmt.Errorf("fit model: %w", err)
	}

	yMin, yMax, err := train.TargetRange()
	if err != nil {
		return nil, err
	}

	stats, err := ds.ComputeStats()
	if err != nil {
		return nil, fmt.Errorf("feature stats: %w", err)
	}

	r2, err := model.Score(test.X, test.Y)
	if err != nil {
		return nil, fmt.Errorf("score holdout: %w", err)
	}

	weights := model.FeatureImportances()
	importance := make([]FeatureImportance, len(ds.FeatureNames))
	for i, name := range ds.FeatureNames {
		importance[i] = FeatureImportance{Name: name, Weight: weights[i]}
	}
	sort.SliceStable(importance, func(i, j int) bool {
		return importance[i].Weight > importance[j].Weight
	})

	return &Service{
		model:      model,
		names:      ds.FeatureNames,
		stats:      stats,
		yMin:       yMin,
		yMax:       yMax,
		importance: importance,
		info: Info{
			Estimators: cfg.Estimators,
			Seed:       cfg.Seed,
			TrainRows:  train.Len(),
			TestRows:   test.Len(),
			TargetMin:  yMin,
			TargetMax:  yMax,
			HoldoutR2:  r2,
		},
	}, nil
}

// BuildInputVector maps slider indices onto each feature's native range and
// fills the remaining features with their dataset mean. Indices are not
// clamped, so values outside 0-100 extrapolate linearly.
func (s *Service) BuildInputVector(in SliderInput) []float64 {
	vec := make([]float64, len(s.names))
	for i, name := range s.names {
		st := s.stats[i]
		if isControllable(name) {
			idx := float64(in.get(name))
			vec[i] = st.Min + (st.Max-st.Min)*(idx/100)
		} else {
			vec[i] = st.Mean
		}
	}
	return vec
}

// PredictRisk returns the raw model output and the score rescaled to [0,100]
// against the training target range, rounded to one decimal.
func (s *Service) PredictRisk(in SliderInput) (raw, score float64) {
	// The vector always has the fitted width, so Predict cannot fail here.
	raw, _ = s.model.Predict(s.BuildInputVector(in))
	return raw, s.normalize(raw)
}

func (s *Service) normalize(raw float64) float64 {
	r := (raw - s.yMin) / (s.yMax - s.yMin + epsilon)
	r = math.Max(0, math.Min(1, r))
	return math.Round(r*1000) / 10
}

// FeatureImportance returns every feature sorted by descending weight.
func (s *Service) FeatureImportance() []FeatureImportance {
	out := make([]FeatureImportance, len(s.importance))
	copy(out, s.importance)
	return out
}

// ModelInfo describes how the model was fitted.
func (s *Service) ModelInfo() Info {
	return s.info
}

// Assessment is the combined result of scoring one SliderInput.
type Assessment struct {
	ID            string              `json:"id,omitempty"`
	RawPrediction float64             `json:"rawPrediction"`
	RiskScore     float64             `json:"riskScore"`
	Level         Level               `json:"level"`
	Quests        []string            `json:"quests"`
	TopFeatures   []FeatureImportance `json:"topFeatures"`
	Sliders       SliderInput         `json:"sliders"`
}

// Assess scores in and attaches the tier, quests and the top n importances.
// n <= 0 or larger than the feature count returns all of them.
func (s *Service) Assess(in SliderInput, n int) Assessment {
	raw, score := s.PredictRisk(in)

	top := s.FeatureImportance()
	if n > 0 && n < len(top) {
		top = top[:n]
	}

	sliders := make(SliderInput, len(controllable))
	for _, c := range controllable {
		sliders[c.Name] = in.get(c.Name)
	}

	return Assessment{
		RawPrediction: raw,
		RiskScore:     score,
		Level:         GamifiedLevel(score),
		Quests:        LifestyleQuests(in),
		TopFeatures:   top,
		Sliders:       sliders,
	}
}
