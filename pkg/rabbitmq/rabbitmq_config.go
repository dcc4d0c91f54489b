package rabbitmq

import "github.com/web3-authn/zk-email-verifier/pkg/utilities"

type RabbimqConfigJson struct {
	User             string                         `json:"user"`
	Password         string                         `json:"password"`
	Host             string                         `json:"host"`
	ExchangesConfig  []RabbitmqExchangeConfigJson   `json:"exchanges"`
	QueuesConfig     []RabbitmqQueueConfigJson      `json:"queues"`
	PublishersConfig []RabbitmqPublishersConfigJson `json:"publishers"`
	ConsumersConfig  []RabbitmqConsumerConfigJson   `json:"consumers"`
}

type RabbitmqConfig struct {
	User             string
	Password         string
	Host             string
	ExchangesConfig  []RabbitmqExchangeConfig
	QueuesConfig     []RabbitmqQueueConfig
	PublishersConfig []RabbitmqPublishersConfig
	ConsumersConfig  []RabbitmqConsumerConfig
}

func (rcj RabbimqConfigJson) ConvertToDomain() RabbitmqConfig {
	return RabbitmqConfig{
		User:     rcj.User,
		Password: rcj.Password,
		Host:     rcj.Host,
		ExchangesConfig: utilities.ConvertJsonArrayToDomain[
			RabbitmqExchangeConfigJson,
			RabbitmqExchangeConfig,
		](rcj.ExchangesConfig),
		QueuesConfig: utilities.ConvertJsonArrayToDomain[
			RabbitmqQueueConfigJson,
			RabbitmqQueueConfig,
		](rcj.QueuesConfig),
		PublishersConfig: utilities.ConvertJsonArrayToDomain[
			RabbitmqPublishersConfigJson,
			RabbitmqPublishersConfig,
		](rcj.PublishersConfig),
		ConsumersConfig: utilities.ConvertJsonArrayToDomain[
			RabbitmqConsumerConfigJson,
			RabbitmqConsumerConfig,
		](rcj.ConsumersConfig),
	}
}

type RabbitmqExchangeConfigJson struct {
	ExchangeName string `json:"exchange_name"`
	ExchangeType string `json:"exchange_type"`
}

type RabbitmqExchangeConfig struct {
	ExchangeName string
	ExchangeType RabbitmqExchangeType
}

func (recj RabbitmqExchangeConfigJson) ConvertToDomain() RabbitmqExchangeConfig {
	return RabbitmqExchangeConfig{
		ExchangeName: recj.ExchangeName,
		ExchangeType: RabbitmqExchangeType(recj.ExchangeType),
	}
}

type RabbitmqQueueConfigJson struct {
	QueueName       string `json:"queue_name"`
	RoutingKey      string `json:"routing_key"`
	ExchangeBinding string `json:"exchange_binding"`
	Durable         bool   `json:"durable"`
	Exclusive       bool   `json:"exclusive"`
}

type RabbitmqQueueConfig struct {
	QueueName       string
	RoutingKey      string
	ExchangeBinding string
	Durable         bool
	Exclusive       bool
}

func (rqcj RabbitmqQueueConfigJson) ConvertToDomain() RabbitmqQueueConfig {
	return RabbitmqQueueConfig{
		QueueName:       rqcj.QueueName,
		RoutingKey:      rqcj.RoutingKey,
		ExchangeBinding: rqcj.ExchangeBinding,
		Durable:         rqcj.Durable,
		Exclusive:       rqcj.Exclusive,
	}
}

type RabbitmqPublishersConfigJson struct {
	PublisherAlias string `json:"publisher_alias"`
	Exchange       string `json:"exchange"`
	RoutingKey     string `json:"routing_key"`
}

type RabbitmqPublishersConfig struct {
	PublisherAlias PublisherAlias
	Exchange       string
	RoutingKey     string
}

func (rpcj RabbitmqPublishersConfigJson) ConvertToDomain() RabbitmqPublishersConfig {
	return RabbitmqPublishersConfig{
		PublisherAlias: PublisherAlias(rpcj.PublisherAlias),
		Exchange:       rpcj.Exchange,
		RoutingKey:     rpcj.RoutingKey,
	}
}

type RabbitmqConsumerConfigJson struct {
	ConsumerAlias string `json:"consumer_alias"`
	ConsumerTag   string `json:"consumer_tag"`
	QueueName     string `json:"queue_name"`
}

type RabbitmqConsumerConfig struct {
	ConsumerAlias ConsumerAlias
	ConsumerTag   string
	QueueName     string
}

func (rccj RabbitmqConsumerConfigJson) ConvertToDomain() RabbitmqConsumerConfig {
	return RabbitmqConsumerConfig{
		ConsumerAlias: ConsumerAlias(rccj.ConsumerAlias),
		QueueName:     rccj.QueueName,
		ConsumerTag:   rccj.ConsumerTag,
	}
}
