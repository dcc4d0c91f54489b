package main

import (
	"github.com/web3-authn/zk-email-verifier/pkg/logger"
	"github.com/web3-authn/zk-email-verifier/pkg/rabbitmq"
)

type RecoveryVerifierConfigJson struct {
	LoggerConf   logger.LoggerConfigJson    `json:"logger"`
	RabbitmqConf rabbitmq.RabbimqConfigJson `json:"rabbitmq"`
	VerifierConf VerifierConfigJson         `json:"verifier"`
}

func (rvcj RecoveryVerifierConfigJson) ConvertToDomain() RecoveryVerifierConfig {
	return RecoveryVerifierConfig{
		LoggerConf:   rvcj.LoggerConf.ConvertToDomain(),
		RabbitmqConf: rvcj.RabbitmqConf.ConvertToDomain(),
		VerifierConf: rvcj.VerifierConf.ConvertToDomain(),
	}
}

type RecoveryVerifierConfig struct {
	LoggerConf   logger.LoggerConfig
	RabbitmqConf rabbitmq.RabbitmqConfig
	VerifierConf VerifierConfig
}

func (rvc RecoveryVerifierConfig) GetLoggerConfig() logger.LoggerConfig {
	return rvc.LoggerConf
}

func (rvc RecoveryVerifierConfig) GetRabbitmqConfig() rabbitmq.RabbitmqConfig {
	return rvc.RabbitmqConf
}

type VerifierConfigJson struct {
	ArtifactPath string `json:"artifact_path"`
}

type VerifierConfig struct {
	ArtifactPath string
}

func (vcj VerifierConfigJson) ConvertToDomain() VerifierConfig {
	return VerifierConfig{
		ArtifactPath: vcj.ArtifactPath,
	}
}
