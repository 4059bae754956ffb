package kafka_client

import "time"

const (
	KAFKA_TOPIC_RUN_RESULTS  = "sst-training-results" // one message per finished training run
	DEFAULT_TRANSACTIONAL_ID = "sstflow-producer-1"
)

const (
	MAX_RETRIES   = 3
	FLUSH_TIMEOUT = 5 * time.Second
)
