package models

import (
	"math"
	"time"
)

type Scores struct {
	MSE     float64 `json:"mse" dynamodbav:"mse"`
	MAE     float64 `json:"mae" dynamodbav:"mae"`
	Pearson float64 `json:"pearson" dynamodbav:"pearson"`
}

type EpochStats struct {
	Epoch      int     `json:"epoch" dynamodbav:"epoch"`
	TrainLoss  float64 `json:"train_loss" dynamodbav:"train_loss"`
	Validation Scores  `json:"validation" dynamodbav:"validation"`
}

type Hyperparameters struct {
	MaxLen     int     `json:"max_len" dynamodbav:"max_len"`
	BatchSize  int     `json:"batch_size" dynamodbav:"batch_size"`
	Epochs     int     `json:"epochs" dynamodbav:"epochs"`
	Filters    int     `json:"filters" dynamodbav:"filters"`
	KernelSize int     `json:"kernel_size" dynamodbav:"kernel_size"`
	PoolSize   int     `json:"pool_size" dynamodbav:"pool_size"`
	HiddenDim  int     `json:"hidden_dim" dynamodbav:"hidden_dim"`
	Dropout    float64 `json:"dropout" dynamodbav:"dropout"`
	Seed       int64   `json:"seed" dynamodbav:"seed"`
}

type RunSummary struct {
	RunID           string          `json:"run_id" dynamodbav:"run_id"`
	StartedAt       time.Time       `json:"started_at" dynamodbav:"started_at"`
	FinishedAt      time.Time       `json:"finished_at" dynamodbav:"finished_at"`
	TrainSamples    int             `json:"train_samples" dynamodbav:"train_samples"`
	ValidSamples    int             `json:"valid_samples" dynamodbav:"valid_samples"`
	TestSamples     int             `json:"test_samples" dynamodbav:"test_samples"`
	VocabularyRows  int             `json:"vocabulary_rows" dynamodbav:"vocabulary_rows"`
	EmbeddingDim    int             `json:"embedding_dim" dynamodbav:"embedding_dim"`
	Hyperparameters Hyperparameters `json:"hyperparameters" dynamodbav:"hyperparameters"`
	History         []EpochStats    `json:"history" dynamodbav:"history"`
	Test            Scores          `json:"test" dynamodbav:"test"`
	Baseline        Scores          `json:"baseline" dynamodbav:"baseline"`
}

type Prediction struct {
	RunID     string  `json:"run_id" dynamodbav:"run_id"`
	Index     int     `json:"index" dynamodbav:"index"`
	Text      string  `json:"text" dynamodbav:"text"`
	Expected  float64 `json:"expected" dynamodbav:"expected"`
	Predicted float64 `json:"predicted" dynamodbav:"predicted"`
	Baseline  float64 `json:"baseline" dynamodbav:"baseline"`
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Finite replaces NaN and infinite metrics with zero. Neither JSON nor
// DynamoDB numbers can carry them, and Pearson is undefined on tiny splits.
func (s Scores) Finite() Scores {
	return Scores{MSE: finite(s.MSE), MAE: finite(s.MAE), Pearson: finite(s.Pearson)}
}

func (r RunSummary) Finite() RunSummary {
	r.Test = r.Test.Finite()
	r.Baseline = r.Baseline.Finite()
	history := make([]EpochStats, len(r.History))
	for i, h := range r.History {
		h.TrainLoss = finite(h.TrainLoss)
		h.Validation = h.Validation.Finite()
		history[i] = h
	}
	r.History = history
	return r
}

func (p Prediction) Finite() Prediction {
	p.Expected = finite(p.Expected)
	p.Predicted = finite(p.Predicted)
	p.Baseline = finite(p.Baseline)
	return p
}
