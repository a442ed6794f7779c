// Package model defines the estimator contracts shared by stumpboost models,
// together with fitted-state tracking and persistence helpers.
package model

import "gonum.org/v1/gonum/mat"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Scorer はスコアを計算できるモデルのインターフェース
type Scorer interface {
	// Score は分類器の場合は正解率を返す
	Score(X, y mat.Matrix) (float64, error)
}

// Classifier は二値分類器のインターフェース
type Classifier interface {
	Fitter
	Predictor
	Scorer

	// DecisionFunction は符号付きの決定関数の値を返す
	DecisionFunction(X mat.Matrix) (mat.Matrix, error)

	// Classes は学習時に見たクラスラベルを返す
	Classes() []float64
}

// ParameterGetter はハイパーパラメータを公開するモデルのインターフェース
type ParameterGetter interface {
	GetParams() map[string]interface{}
}

// ParameterSetter はハイパーパラメータを変更できるモデルのインターフェース
type ParameterSetter interface {
	SetParams(params map[string]interface{}) error
}

// Persistable はファイルに保存・復元できるモデルのインターフェース
type Persistable interface {
	Save(path string) error
	Load(path string) error
}

// WeightExporter は学習済みの重みをエクスポートできるモデルのインターフェース
type WeightExporter interface {
	ExportWeights() (*ModelWeights, error)
	ImportWeights(weights *ModelWeights) error
}
