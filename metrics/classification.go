// Package metrics は分類精度とマージン分布の評価指標を提供する
package metrics

import (
	"github.com/YuminosukeSato/stumpboost/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// checkPair は正解ラベルと予測ラベルの長さを検証し、要素数を返す
func checkPair(op string, yTrue, yPred *mat.VecDense) (int, error) {
	if yTrue == nil || yPred == nil || yTrue.Len() == 0 {
		return 0, errors.NewValueError(op, "empty vector")
	}
	n := yTrue.Len()
	if yPred.Len() != n {
		return 0, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return n, nil
}

// MisclassifiedCount は予測ラベルが正解と一致しないサンプル数を返す
func MisclassifiedCount(yTrue, yPred *mat.VecDense) (int, error) {
	n, err := checkPair("MisclassifiedCount", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	wrong := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) != yPred.AtVec(i) {
			wrong++
		}
	}
	return wrong, nil
}

// Accuracy は正解率（一致したサンプルの割合）を計算する
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("Accuracy", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	wrong, _ := MisclassifiedCount(yTrue, yPred)
	return float64(n-wrong) / float64(n), nil
}

// ClassificationError は誤分類率（1 - Accuracy）を計算する
func ClassificationError(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("ClassificationError", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	wrong, _ := MisclassifiedCount(yTrue, yPred)
	return float64(wrong) / float64(n), nil
}

// AccuracyMatrix は n×1 行列形式の入力に対して正解率を計算する
func AccuracyMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	rTrue, cTrue := yTrue.Dims()
	rPred, cPred := yPred.Dims()

	if rTrue == 0 || cTrue == 0 {
		return 0, errors.NewValueError("AccuracyMatrix", "empty matrix")
	}
	if rTrue != rPred || cTrue != cPred {
		return 0, errors.NewDimensionError("AccuracyMatrix", rTrue, rPred, 0)
	}
	if cTrue != 1 {
		return 0, errors.NewValueError("AccuracyMatrix", "must be a column vector (n×1 matrix)")
	}

	return Accuracy(
		mat.NewVecDense(rTrue, mat.Col(nil, 0, yTrue)),
		mat.NewVecDense(rPred, mat.Col(nil, 0, yPred)),
	)
}
