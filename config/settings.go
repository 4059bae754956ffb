package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	RowPolicyFail = "fail"
	RowPolicySkip = "skip"
)

// Settings holds everything the three stages read from the environment.
type Settings struct {
	CorpusDir        string
	WorkDir          string
	EmbeddingsPath   string
	EmbeddingsFormat string
	EmbeddingDim     int

	MaxLen     int
	BatchSize  int
	Epochs     int
	Filters    int
	KernelSize int
	PoolSize   int
	HiddenDim  int
	Dropout    float64
	Seed       int64

	MalformedRows string
	LogLevel      string
	// ForceRebuild ignores cached artifacts for this invocation.
	ForceRebuild bool

	ValkeyAddress  string
	ValkeyPassword string
	ValkeyTLS      bool

	AWSEndpoint  string
	AWSRegion    string
	ResultsTable string

	KafkaBroker       string
	KafkaResultsTopic string
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, v)
	}
	return v, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return v, nil
}

// GetSettings reads the environment, applying the defaults the reference
// SST experiments were run with.
func GetSettings() (Settings, error) {
	s := Settings{
		CorpusDir:         getEnv("CORPUS_DIR", "corpus/stanford_sentiment_treebank"),
		WorkDir:           getEnv("WORK_DIR", "pickle"),
		EmbeddingsPath:    getEnv("EMBEDDINGS_PATH", "vector/GoogleNews-vectors-negative300.bin"),
		EmbeddingsFormat:  getEnv("EMBEDDINGS_FORMAT", "word2vec-bin"),
		MalformedRows:     getEnv("MALFORMED_ROWS", RowPolicyFail),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		ForceRebuild:      getEnv("FORCE_REBUILD", "") == "true",
		ValkeyAddress:     getEnv("VALKEY_INIT_ADDRESS", ""),
		ValkeyPassword:    getEnv("VALKEY_PASSWORD", ""),
		ValkeyTLS:         getEnv("VALKEY_TLS", "") == "true",
		AWSEndpoint:       getEnv("AWS_ENDPOINT", ""),
		AWSRegion:         getEnv("AWS_REGION", "us-west-2"),
		ResultsTable:      getEnv("RESULTS_TABLE", ""),
		KafkaBroker:       getEnv("KAFKA_BROKER", ""),
		KafkaResultsTopic: getEnv("KAFKA_RESULTS_TOPIC", ""),
	}

	ints := []struct {
		key  string
		def  int
		dest *int
	}{
		{"EMBEDDING_DIM", 300, &s.EmbeddingDim},
		{"MAX_LEN", 56, &s.MaxLen},
		{"BATCH_SIZE", 32, &s.BatchSize},
		{"EPOCHS", 10, &s.Epochs},
		{"FILTERS", 60, &s.Filters},
		{"KERNEL_SIZE", 3, &s.KernelSize},
		{"POOL_SIZE", 2, &s.PoolSize},
		{"HIDDEN_DIM", 70, &s.HiddenDim},
	}
	for _, i := range ints {
		v, err := getInt(i.key, i.def)
		if err != nil {
			return Settings{}, err
		}
		*i.dest = v
	}

	dropout, err := getFloat("DROPOUT", 0.25)
	if err != nil {
		return Settings{}, err
	}
	if dropout < 0 || dropout >= 1 {
		return Settings{}, fmt.Errorf("DROPOUT must be in [0, 1), got %g", dropout)
	}
	s.Dropout = dropout

	seed, err := strconv.ParseInt(getEnv("SEED", "1337"), 10, 64)
	if err != nil {
		return Settings{}, fmt.Errorf("SEED must be an integer: %w", err)
	}
	s.Seed = seed

	if s.MalformedRows != RowPolicyFail && s.MalformedRows != RowPolicySkip {
		return Settings{}, fmt.Errorf("MALFORMED_ROWS must be %q or %q, got %q",
			RowPolicyFail, RowPolicySkip, s.MalformedRows)
	}

	if s.KernelSize > s.MaxLen {
		return Settings{}, fmt.Errorf("KERNEL_SIZE (%d) cannot exceed MAX_LEN (%d)", s.KernelSize, s.MaxLen)
	}

	return s, nil
}
