package app

import (
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestInitKafkaProducer_EmptyBrokers(t *testing.T) {
	logger := log.WithField("test", "kafka")

	producer, err := initKafkaProducer("", logger)
	if err != nil {
		t.Errorf("empty brokers should not return error, got %v", err)
	}
	if producer != nil {
		t.Error("empty brokers should return nil producer")
	}
}

func TestInitKafkaProducer_UnreachableBroker(t *testing.T) {
	logger := log.WithField("test", "kafka-unreachable")

	producer, err := initKafkaProducer("127.0.0.1:1", logger)
	if err == nil {
		t.Error("expected error for unreachable broker")
	}
	if producer != nil {
		t.Error("expected nil producer for unreachable broker")
	}
}

func TestCloseKafka_Nil(_ *testing.T) {
	logger := log.WithField("test", "kafka-close")

	// Не должно паниковать.
	closeKafka(nil, logger)
}
