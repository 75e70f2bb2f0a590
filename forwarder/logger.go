package forwarder

import "github.com/logicmonitor/lm-logs-forwarder/logger"

var log = logger.NewLogrusLogger(logger.WithEnvLevel(), logger.WithJSONFormatter())
