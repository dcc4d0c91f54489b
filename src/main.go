package main

import (
	"os"

	"github.com/web3-authn/zk-email-verifier/pkg/logger"
	"github.com/web3-authn/zk-email-verifier/pkg/rabbitmq"
	"github.com/web3-authn/zk-email-verifier/pkg/utilities"
	"github.com/web3-authn/zk-email-verifier/src/proofs"
	"github.com/web3-authn/zk-email-verifier/src/queues"
	"github.com/web3-authn/zk-email-verifier/src/utils"
)

const defaultConfigPath = "config/recovery_verifier.json"

func main() {
	logger.InitDefaultLogger(logger.GlobalLoggerConfig{
		Args: []struct {
			Key   string
			Value string
		}{
			{"application", "recovery-verifier"},
			{"version", "1.0.0"},
		},
	})

	mainLogger := logger.Default()

	configPath := os.Getenv("RECOVERY_VERIFIER_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
	}
	config, err := utilities.ReadConfig[RecoveryVerifierConfigJson, RecoveryVerifierConfig](configPath)
	utils.FailOnError(err, "Failed to load config")

	artifactFile, err := os.Open(config.VerifierConf.ArtifactPath)
	utils.FailOnError(err, "Failed to open verifying-key artifact")
	artifact, err := proofs.LoadVerifyingKeyArtifact(artifactFile)
	artifactFile.Close()
	utils.FailOnError(err, "Failed to load verifying-key artifact")
	mainLogger.Infof("Loaded verifying key %q (layout %s, %d public inputs)",
		artifact.Label, artifact.Layout, artifact.Layout.PublicInputCount())

	verifier := proofs.NewVerifier(artifact)

	// 1. Connect to RabbitMQ
	conn, err := rabbitmq.ConnectToRabbitmq(
		config.RabbitmqConf.User,
		config.RabbitmqConf.Password,
		config.RabbitmqConf.Host,
	)
	utils.FailOnError(err, "Failed to connect to RabbitMQ after retries")
	defer conn.Close()

	// 2. Declare exchanges and queues, and bind
	ch, err := conn.Channel()
	utils.FailOnError(err, "Failed to open a channel")
	err = rabbitmq.SetupQueues(ch, config.RabbitmqConf)
	utils.FailOnError(err, "Failed to setup exchange/queues")
	ch.Close()

	// 3. Consumers and publishers from config
	rabbitmq.InitializeConsumerRegistry(conn, config.RabbitmqConf.ConsumersConfig)
	rabbitmq.InitializePublisherRegistry(conn, config.RabbitmqConf.PublishersConfig)

	handler := queues.NewVerificationHandler(
		verifier,
		rabbitmq.GetPublisher(queues.VerifyResultsPublisher),
	)

	// 4. Start consuming verification requests
	go rabbitmq.GetConsumer(queues.VerifyRequestsConsumer).StartConsuming(handler.Handle)

	mainLogger.Info("Recovery verifier started and listening for messages")

	// 5. Keep alive
	select {}
}
