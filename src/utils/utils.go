package utils

import "github.com/web3-authn/zk-email-verifier/pkg/logger"

func FailOnError(err error, msg string) {
	if err != nil {
		logger.Default().Fatal(err, msg)
	}
}
