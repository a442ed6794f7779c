package model

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/cockroachdb/errors"
)

// StumpWeights は1つの決定株のシリアライズ形式
type StumpWeights struct {
	// Feature は分割に使う座標（0: x1, 1: x2）
	Feature int `json:"feature"`

	// Threshold は分割位置
	Threshold float64 `json:"threshold"`

	// Polarity は閾値より大きい側のラベル（+1 または -1）
	Polarity int `json:"polarity"`

	// Alpha は投票の重み（信頼度）
	Alpha float64 `json:"alpha"`

	// Epsilon は学習時の重み付き誤差
	Epsilon float64 `json:"epsilon"`
}

// ModelWeights はアンサンブルの重みを表す構造体（シリアライゼーション用）
type ModelWeights struct {
	// ModelType はモデルの種類（AdaBoostClassifier等）
	ModelType string `json:"model_type"`

	// Version はフォーマットのバージョン（互換性チェック用）
	Version string `json:"version"`

	// Stumps はラウンド順の弱学習器
	Stumps []StumpWeights `json:"stumps"`

	// Hyperparameters はモデルのハイパーパラメータ
	Hyperparameters map[string]interface{} `json:"hyperparameters"`

	// Metadata は追加のメタデータ（学習時の統計等）
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// IsFitted はモデルが学習済みかどうか
	IsFitted bool `json:"is_fitted"`
}

// ToJSON はModelWeightsをJSON形式にシリアライズ
func (mw *ModelWeights) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(mw, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal model weights")
	}
	return data, nil
}

// FromJSON はJSON形式からModelWeightsをデシリアライズ
func (mw *ModelWeights) FromJSON(data []byte) error {
	if err := json.Unmarshal(data, mw); err != nil {
		return errors.Wrap(err, "failed to unmarshal model weights")
	}
	return nil
}

// Validate はModelWeightsの妥当性を検証
func (mw *ModelWeights) Validate() error {
	if mw.ModelType == "" {
		return fmt.Errorf("model_type is required")
	}
	if mw.Version == "" {
		return fmt.Errorf("version is required")
	}
	if !mw.IsFitted && len(mw.Stumps) > 0 {
		return fmt.Errorf("unfitted model should not have stumps")
	}
	if mw.IsFitted && len(mw.Stumps) == 0 {
		return fmt.Errorf("fitted model must have stumps")
	}
	for i, s := range mw.Stumps {
		if s.Feature != 0 && s.Feature != 1 {
			return fmt.Errorf("stump %d: feature must be 0 or 1, got %d", i, s.Feature)
		}
		if s.Polarity != 1 && s.Polarity != -1 {
			return fmt.Errorf("stump %d: polarity must be +1 or -1, got %d", i, s.Polarity)
		}
		if math.IsNaN(s.Alpha) || math.IsInf(s.Alpha, 0) {
			return fmt.Errorf("stump %d: alpha must be finite", i)
		}
	}
	return nil
}

// Clone はModelWeightsのディープコピーを作成
func (mw *ModelWeights) Clone() *ModelWeights {
	clone := &ModelWeights{
		ModelType:       mw.ModelType,
		Version:         mw.Version,
		IsFitted:        mw.IsFitted,
		Stumps:          make([]StumpWeights, len(mw.Stumps)),
		Hyperparameters: make(map[string]interface{}, len(mw.Hyperparameters)),
		Metadata:        make(map[string]interface{}, len(mw.Metadata)),
	}
	copy(clone.Stumps, mw.Stumps)
	for k, v := range mw.Hyperparameters {
		clone.Hyperparameters[k] = v
	}
	for k, v := range mw.Metadata {
		clone.Metadata[k] = v
	}
	return clone
}
