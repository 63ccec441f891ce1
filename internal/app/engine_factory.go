package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/GabrielMottaBecker/vendify/internal/messaging/kafka"
	"github.com/GabrielMottaBecker/vendify/internal/service/sales"
)

// createEngine создаёт движок продаж с или без Kafka в зависимости
// от наличия kafka producer.
func createEngine(
	deps *Dependencies,
	kafkaProducer *kafka.Producer,
	logger *log.Entry,
) sales.Engine {
	if kafkaProducer != nil {
		return sales.NewEngineWithKafka(
			deps.Orders,
			deps.Ledger,
			deps.Catalog,
			deps.Directory,
			deps.Outbox,
			kafkaProducer,
			logger,
		)
	}

	return sales.NewEngine(
		deps.Orders,
		deps.Ledger,
		deps.Catalog,
		deps.Directory,
		deps.Outbox,
		logger,
	)
}
