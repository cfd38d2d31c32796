package mixture

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/igmn/core/model"
	"github.com/YuminosukeSato/igmn/pkg/errors"
	"github.com/YuminosukeSato/igmn/pkg/log"
)

// ストリーミング学習メソッド

// FitStream はチャネルから届くバッチを順に PartialFit する
// チャネルが閉じられると nil、コンテキストがキャンセルされると ctx.Err() を返す
func (m *IGMN) FitStream(ctx context.Context, dataChan <-chan *model.Batch) error {
	batches := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case batch, ok := <-dataChan:
			if !ok {
				return nil
			}
			if batch == nil {
				continue
			}
			if err := m.PartialFit(batch.X, batch.Y, nil); err != nil {
				return errors.Wrapf(err, "batch %d", batches)
			}
			batches++
		}
	}
}

// PredictStream は入力ストリームの各行列に対して Predict を行う
// 予測に失敗したバッチはログに記録して読み飛ばす
// 出力チャネルは入力チャネルが閉じられるかコンテキストがキャンセルされると閉じる
func (m *IGMN) PredictStream(ctx context.Context, inputChan <-chan mat.Matrix) <-chan mat.Matrix {
	outputChan := make(chan mat.Matrix)

	go func() {
		defer close(outputChan)

		for {
			select {
			case <-ctx.Done():
				return
			case X, ok := <-inputChan:
				if !ok {
					return
				}

				pred, err := m.Predict(X)
				if err != nil {
					m.logger.Error("prediction failed",
						log.OperationKey, log.OperationStream,
						"error", err,
					)
					continue
				}

				select {
				case outputChan <- pred:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return outputChan
}
