package ensemble

import (
	"context"
	"fmt"
	"sort"

	"github.com/YuminosukeSato/stumpboost/core/model"
	sberrors "github.com/YuminosukeSato/stumpboost/pkg/errors"
	"github.com/YuminosukeSato/stumpboost/pkg/log"
	"github.com/YuminosukeSato/stumpboost/sklearn/tree"
	"gonum.org/v1/gonum/mat"
)

const classifierName = "AdaBoostClassifier"

// weightsVersion is the ModelWeights format written by ExportWeights.
const weightsVersion = "1.0"

// AdaBoostClassifier is a binary classifier over two-dimensional points
// boosted from axis-aligned decision stumps.
//
// Any two distinct label values are accepted; the smaller maps to -1 and the
// larger to +1 internally. Unlike the bare BoostingEngine, a classifier by
// default stops cleanly when a stump separates the training set perfectly.
type AdaBoostClassifier struct {
	state *model.StateManager

	cfg config

	ensemble *Ensemble
	classes  []float64
}

var (
	_ model.Classifier      = (*AdaBoostClassifier)(nil)
	_ model.ParameterGetter = (*AdaBoostClassifier)(nil)
	_ model.ParameterSetter = (*AdaBoostClassifier)(nil)
	_ model.Persistable     = (*AdaBoostClassifier)(nil)
	_ model.WeightExporter  = (*AdaBoostClassifier)(nil)
)

// NewAdaBoostClassifier creates a classifier with DefaultNEstimators rounds
// at DefaultResolution.
func NewAdaBoostClassifier(opts ...Option) *AdaBoostClassifier {
	c := &AdaBoostClassifier{
		state: model.NewStateManager(),
		cfg: config{
			nEstimators:      DefaultNEstimators,
			resolution:       DefaultResolution,
			stopOnPerfectFit: true,
		},
	}
	for _, opt := range opts {
		opt(&c.cfg)
	}
	if c.cfg.logger == nil {
		c.cfg.logger = log.GetLoggerWithName("ensemble.adaboost")
	}
	return c
}

// Fit is FitContext with context.Background().
func (c *AdaBoostClassifier) Fit(X, y mat.Matrix) error {
	return c.FitContext(context.Background(), X, y)
}

// FitContext trains the classifier on X (N×2) and y (N×1 or 1×N).
//
// If boosting ends with an *errors.InvariantViolationError after at least one
// round, the partial ensemble is kept, a ConvergenceWarning is emitted and
// Fit succeeds. Any other round failure leaves the classifier unfitted.
func (c *AdaBoostClassifier) FitContext(ctx context.Context, X, y mat.Matrix) (err error) {
	defer sberrors.Recover(&err, "AdaBoostClassifier.Fit")

	labels, classes, err := c.encodeLabels(X, y)
	if err != nil {
		return err
	}

	engine := NewBoostingEngine(func(cfg *config) { *cfg = c.cfg })
	ens, runErr := engine.RunContext(ctx, X, labels, c.cfg.nEstimators, c.cfg.resolution)
	if runErr != nil {
		var ive *sberrors.InvariantViolationError
		if !sberrors.As(runErr, &ive) || ens.Len() == 0 {
			c.state.Reset()
			return runErr
		}
		sberrors.Warn(sberrors.NewConvergenceWarning(classifierName, ens.Len(), ive.Detail))
	}
	if ens.Len() == 0 {
		c.state.Reset()
		return sberrors.NewModelError("AdaBoostClassifier.Fit", "no boosting round completed", ctx.Err())
	}
	if ens.Len() < c.cfg.nEstimators {
		c.cfg.logger.Info("Boosting ended early",
			log.ModelNameKey, classifierName,
			log.RoundsKey, ens.Len(),
		)
	}

	rows, cols := X.Dims()
	c.ensemble = ens
	c.classes = classes
	c.state.SetFitted(cols, rows)
	return nil
}

// encodeLabels validates y against X and maps its two classes onto -1/+1.
func (c *AdaBoostClassifier) encodeLabels(X, y mat.Matrix) (*mat.VecDense, []float64, error) {
	const op = "AdaBoostClassifier.Fit"

	if X == nil || y == nil {
		return nil, nil, sberrors.NewValueError(op, "X and y must not be nil")
	}
	rows, cols := X.Dims()
	if rows == 0 {
		return nil, nil, sberrors.NewModelError(op, "empty data", sberrors.ErrEmptyData)
	}
	if cols != 2 {
		return nil, nil, sberrors.NewDimensionError(op, 2, cols, 1)
	}

	raw, err := flattenLabels(op, y, rows)
	if err != nil {
		return nil, nil, err
	}

	seen := make(map[float64]struct{}, 2)
	for _, v := range raw {
		seen[v] = struct{}{}
	}
	classes := make([]float64, 0, len(seen))
	for v := range seen {
		classes = append(classes, v)
	}
	sort.Float64s(classes)
	if len(classes) > 2 {
		return nil, nil, sberrors.NewValueError(op, fmt.Sprintf("binary classification only, got %d classes", len(classes)))
	}

	positive := classes[len(classes)-1]
	enc := mat.NewVecDense(rows, nil)
	for i, v := range raw {
		if v == positive {
			enc.SetVec(i, 1)
		} else {
			enc.SetVec(i, -1)
		}
	}
	return enc, classes, nil
}

// flattenLabels accepts a column or row vector of length n.
func flattenLabels(op string, y mat.Matrix, n int) ([]float64, error) {
	yr, yc := y.Dims()
	switch {
	case yc == 1 && yr == n:
		return mat.Col(nil, 0, y), nil
	case yr == 1 && yc == n:
		return mat.Row(nil, 0, y), nil
	default:
		return nil, sberrors.NewDimensionError(op, n, yr, 0)
	}
}

func (c *AdaBoostClassifier) decode(v float64) float64 {
	if v > 0 {
		return c.classes[len(c.classes)-1]
	}
	return c.classes[0]
}

// Predict returns class labels for X as an N×1 matrix.
func (c *AdaBoostClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := c.state.RequireFitted(classifierName, "Predict"); err != nil {
		return nil, err
	}
	pred, err := c.ensemble.PredictMatrix(c.ensemble.Len(), X)
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(pred.Len(), 1, nil)
	for i := 0; i < pred.Len(); i++ {
		out.Set(i, 0, c.decode(pred.AtVec(i)))
	}
	return out, nil
}

// DecisionFunction returns the ensemble score for each row of X as an N×1
// matrix. Positive scores favor the larger class.
func (c *AdaBoostClassifier) DecisionFunction(X mat.Matrix) (mat.Matrix, error) {
	if err := c.state.RequireFitted(classifierName, "DecisionFunction"); err != nil {
		return nil, err
	}
	scores, err := c.ensemble.DecisionFunctionMatrix(c.ensemble.Len(), X)
	if err != nil {
		return nil, err
	}
	return mat.NewDense(scores.Len(), 1, scores.RawVector().Data), nil
}

// Score returns the mean accuracy on X and y.
func (c *AdaBoostClassifier) Score(X, y mat.Matrix) (float64, error) {
	scores, err := c.StagedScore(X, y)
	if err != nil {
		return 0, err
	}
	return scores[len(scores)-1], nil
}

// StagedScore returns the accuracy of every prefix of the ensemble on X and
// y; element k-1 is the accuracy using the first k stumps.
func (c *AdaBoostClassifier) StagedScore(X, y mat.Matrix) ([]float64, error) {
	const op = "AdaBoostClassifier.StagedScore"

	if err := c.state.RequireFitted(classifierName, "StagedScore"); err != nil {
		return nil, err
	}
	rows, cols := X.Dims()
	if rows == 0 {
		return nil, sberrors.NewModelError(op, "empty data", sberrors.ErrEmptyData)
	}
	if cols != 2 {
		return nil, sberrors.NewDimensionError(op, 2, cols, 1)
	}
	truth, err := flattenLabels(op, y, rows)
	if err != nil {
		return nil, err
	}

	correct := make([]int, c.ensemble.Len())
	for i := 0; i < rows; i++ {
		for k, score := range c.ensemble.Staged(X.At(i, 0), X.At(i, 1)) {
			if c.decode(label(score)) == truth[i] {
				correct[k-1]++
			}
		}
	}

	acc := make([]float64, len(correct))
	for k, n := range correct {
		acc[k] = float64(n) / float64(rows)
	}
	return acc, nil
}

// Margins returns the margin of every row of X under the first k stumps.
// Labels are encoded as in Fit.
func (c *AdaBoostClassifier) Margins(X, y mat.Matrix, k int) (*mat.VecDense, error) {
	const op = "AdaBoostClassifier.Margins"

	if err := c.state.RequireFitted(classifierName, "Margins"); err != nil {
		return nil, err
	}
	rows, cols := X.Dims()
	if rows == 0 {
		return nil, sberrors.NewModelError(op, "empty data", sberrors.ErrEmptyData)
	}
	if cols != 2 {
		return nil, sberrors.NewDimensionError(op, 2, cols, 1)
	}
	truth, err := flattenLabels(op, y, rows)
	if err != nil {
		return nil, err
	}

	out := mat.NewVecDense(rows, nil)
	positive := c.classes[len(c.classes)-1]
	for i := 0; i < rows; i++ {
		lbl := -1.0
		if truth[i] == positive {
			lbl = 1
		}
		out.SetVec(i, c.ensemble.Margin(k, X.At(i, 0), X.At(i, 1), lbl))
	}
	return out, nil
}

// Ensemble returns the fitted ensemble, or nil before Fit.
func (c *AdaBoostClassifier) Ensemble() *Ensemble {
	return c.ensemble
}

// Classes returns the sorted class labels seen during Fit.
func (c *AdaBoostClassifier) Classes() []float64 {
	out := make([]float64, len(c.classes))
	copy(out, c.classes)
	return out
}

// IsFitted reports whether Fit has completed.
func (c *AdaBoostClassifier) IsFitted() bool {
	return c.state.IsFitted()
}

// GetParams returns the model hyperparameters
func (c *AdaBoostClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_estimators":        c.cfg.nEstimators,
		"resolution":          c.cfg.resolution,
		"parallel_threshold":  c.cfg.parallelThreshold,
		"n_jobs":              c.cfg.workers,
		"stop_on_perfect_fit": c.cfg.stopOnPerfectFit,
	}
}

// SetParams sets the model hyperparameters
func (c *AdaBoostClassifier) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "n_estimators", "resolution", "parallel_threshold", "n_jobs":
			v, ok := toInt(value)
			if !ok {
				return sberrors.NewValidationError(key, "must be an integer", value)
			}
			switch key {
			case "n_estimators":
				c.cfg.nEstimators = v
			case "resolution":
				c.cfg.resolution = v
			case "parallel_threshold":
				c.cfg.parallelThreshold = v
			case "n_jobs":
				c.cfg.workers = v
			}
		case "stop_on_perfect_fit":
			v, ok := value.(bool)
			if !ok {
				return sberrors.NewValidationError(key, "must be a bool", value)
			}
			c.cfg.stopOnPerfectFit = v
		default:
			return sberrors.NewValidationError(key, "unknown parameter", value)
		}
	}
	return nil
}

// toInt accepts int and whole float64 values; the latter is what JSON
// decoding produces.
func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}

// ClassifierSnapshot is the gob-encoded form written by Save.
type ClassifierSnapshot struct {
	NEstimators       int
	Resolution        int
	ParallelThreshold int
	Workers           int
	StopOnPerfectFit  bool
	Stumps            []tree.DecisionStump
	Classes           []float64
	State             model.ModelState
}

// Snapshot returns the classifier's persistent state.
func (c *AdaBoostClassifier) Snapshot() *ClassifierSnapshot {
	return &ClassifierSnapshot{
		NEstimators:       c.cfg.nEstimators,
		Resolution:        c.cfg.resolution,
		ParallelThreshold: c.cfg.parallelThreshold,
		Workers:           c.cfg.workers,
		StopOnPerfectFit:  c.cfg.stopOnPerfectFit,
		Stumps:            c.ensemble.Stumps(),
		Classes:           c.Classes(),
		State:             c.state.GetState(),
	}
}

// Restore replaces the classifier's state with s.
func (c *AdaBoostClassifier) Restore(s *ClassifierSnapshot) {
	c.cfg.nEstimators = s.NEstimators
	c.cfg.resolution = s.Resolution
	c.cfg.parallelThreshold = s.ParallelThreshold
	c.cfg.workers = s.Workers
	c.cfg.stopOnPerfectFit = s.StopOnPerfectFit
	c.ensemble = NewEnsemble(s.Stumps...)
	c.classes = append([]float64(nil), s.Classes...)
	c.state.SetState(s.State)
}

// Save writes the classifier to path in gob format.
func (c *AdaBoostClassifier) Save(path string) error {
	return model.SaveModel(c.Snapshot(), path)
}

// Load reads a classifier written by Save.
func (c *AdaBoostClassifier) Load(path string) error {
	var s ClassifierSnapshot
	if err := model.LoadModel(&s, path); err != nil {
		return err
	}
	c.Restore(&s)
	return nil
}

// ExportWeights returns the fitted stumps and hyperparameters as ModelWeights.
func (c *AdaBoostClassifier) ExportWeights() (*model.ModelWeights, error) {
	if err := c.state.RequireFitted(classifierName, "ExportWeights"); err != nil {
		return nil, err
	}

	stumps := make([]model.StumpWeights, 0, c.ensemble.Len())
	for _, s := range c.ensemble.Stumps() {
		stumps = append(stumps, model.StumpWeights{
			Feature:   s.Axis.Feature(),
			Threshold: s.Threshold,
			Polarity:  int(s.Polarity),
			Alpha:     s.Alpha,
			Epsilon:   s.Epsilon,
		})
	}
	nFeatures, nSamples := c.state.GetDimensions()
	return &model.ModelWeights{
		ModelType:       classifierName,
		Version:         weightsVersion,
		Stumps:          stumps,
		Hyperparameters: c.GetParams(),
		Metadata: map[string]interface{}{
			"classes":    c.Classes(),
			"n_features": nFeatures,
			"n_samples":  nSamples,
		},
		IsFitted: true,
	}, nil
}

// ImportWeights restores a classifier from ExportWeights output.
func (c *AdaBoostClassifier) ImportWeights(weights *model.ModelWeights) error {
	const op = "AdaBoostClassifier.ImportWeights"

	if weights == nil {
		return sberrors.NewValueError(op, "weights must not be nil")
	}
	if weights.ModelType != classifierName {
		return sberrors.NewValueError(op, fmt.Sprintf("model type mismatch: expected %s, got %s", classifierName, weights.ModelType))
	}
	if err := weights.Validate(); err != nil {
		return sberrors.Wrap(err, "invalid model weights")
	}
	if err := c.SetParams(weights.Hyperparameters); err != nil {
		return err
	}

	classes, err := metadataClasses(weights.Metadata)
	if err != nil {
		return err
	}

	stumps := make([]tree.DecisionStump, 0, len(weights.Stumps))
	for _, s := range weights.Stumps {
		stumps = append(stumps, tree.DecisionStump{
			Axis:      tree.AxisFromFeature(s.Feature),
			Threshold: s.Threshold,
			Polarity:  tree.Polarity(s.Polarity),
			Alpha:     s.Alpha,
			Epsilon:   s.Epsilon,
		})
	}

	c.ensemble = NewEnsemble(stumps...)
	c.classes = classes
	nSamples, _ := toInt(weights.Metadata["n_samples"])
	c.state.SetFitted(2, nSamples)
	return nil
}

// metadataClasses reads "classes", which is []float64 in memory and
// []interface{} after a JSON round trip. Missing classes default to {-1, +1}.
func metadataClasses(meta map[string]interface{}) ([]float64, error) {
	switch v := meta["classes"].(type) {
	case nil:
		return []float64{-1, 1}, nil
	case []float64:
		return append([]float64(nil), v...), nil
	case []interface{}:
		out := make([]float64, 0, len(v))
		for _, e := range v {
			f, ok := e.(float64)
			if !ok {
				return nil, sberrors.NewValidationError("classes", "must be numeric", e)
			}
			out = append(out, f)
		}
		if len(out) == 0 || len(out) > 2 {
			return nil, sberrors.NewValidationError("classes", "must hold one or two labels", len(out))
		}
		return out, nil
	default:
		return nil, sberrors.NewValidationError("classes", "unexpected type", v)
	}
}
