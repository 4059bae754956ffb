package kafka_client

import "os"

type KafkaConfig struct {
	Broker          string
	Topic           string
	TransactionalID string
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

// GetKafkaConfig builds the producer config for broker and topic, defaulting
// to the run results topic. The transactional id can be overridden when
// several trainers share a cluster.
func GetKafkaConfig(broker, topic string) KafkaConfig {
	if topic == "" {
		topic = KAFKA_TOPIC_RUN_RESULTS
	}
	return KafkaConfig{
		Broker:          broker,
		Topic:           topic,
		TransactionalID: getEnv("KAFKA_TRANSACTIONAL_ID", DEFAULT_TRANSACTIONAL_ID),
	}
}
