package rabbitmq

import (
	"fmt"
	"math"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/web3-authn/zk-email-verifier/pkg/logger"
)

type RabbitmqExchangeType string

func (ret RabbitmqExchangeType) String() string {
	return string(ret)
}

const (
	ExchangeFanout  RabbitmqExchangeType = "fanout"
	ExchangeDirect  RabbitmqExchangeType = "direct"
	ExchangeTopic   RabbitmqExchangeType = "topic"
	ExchangeHeaders RabbitmqExchangeType = "headers"
)

// ConnectToRabbitmq connects with retries
func ConnectToRabbitmq(user, password, host string) (*amqp.Connection, error) {
	var conn *amqp.Connection
	var err error
	maxRetries := 7
	waitTime := 1 * time.Second

	queueLogger := logger.Default()

	for i := 0; i < maxRetries; i++ {
		connectionString := fmt.Sprintf("amqp://%s:%s@%s/", user, password, host)
		conn, err = amqp.Dial(connectionString)
		if err == nil {
			return conn, nil
		}
		queueLogger.Warnf("Attempt %d failed: %v. Retrying in %v...", i+1, err, waitTime)
		time.Sleep(waitTime)
		waitTime = time.Duration(math.Pow(2, float64(i+1))) * time.Second
	}
	return nil, err
}

// CreateNewExchange declares an exchange (e.g. "recovery", direct)
func CreateNewExchange(ch *amqp.Channel, exchangeConfig RabbitmqExchangeConfig) error {
	return ch.ExchangeDeclare(
		exchangeConfig.ExchangeName,          // name
		exchangeConfig.ExchangeType.String(), // type
		true,                                 // durable
		false,                                // auto-deleted
		false,                                // internal
		false,                                // no-wait
		nil,                                  // arguments
	)
}

// CreateNewQueue declares a queue with given durability/exclusivity
func CreateNewQueue(ch *amqp.Channel, queueConfig RabbitmqQueueConfig) (amqp.Queue, error) {
	return ch.QueueDeclare(
		queueConfig.QueueName, // name
		queueConfig.Durable,   // durable
		false,                 // delete when unused
		queueConfig.Exclusive, // exclusive
		false,                 // no-wait
		nil,                   // arguments
	)
}

// BindQueueToExchange binds a queue to an exchange with a routing key
func BindQueueToExchange(ch *amqp.Channel, queueConfig RabbitmqQueueConfig) error {
	return ch.QueueBind(
		queueConfig.QueueName,       // queue name
		queueConfig.RoutingKey,      // routing key
		queueConfig.ExchangeBinding, // exchange
		false,
		nil,
	)
}

// SetupQueues declares all configured exchanges and queues with proper bindings
func SetupQueues(ch *amqp.Channel, rabbimqConfig RabbitmqConfig) error {
	for _, exchangeConf := range rabbimqConfig.ExchangesConfig {
		if err := CreateNewExchange(ch, exchangeConf); err != nil {
			return err
		}
	}

	for _, queueConf := range rabbimqConfig.QueuesConfig {
		if _, err := CreateNewQueue(ch, queueConf); err != nil {
			return err
		}

		if err := BindQueueToExchange(ch, queueConf); err != nil {
			return err
		}
	}

	return nil
}
