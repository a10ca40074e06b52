package snapshot

import (
	"strings"

	"github.com/ethereum/go-ethereum/metrics"
)

const namespace = "assetsnap"

func metricName(subsystem, name string) string {
	return strings.Join([]string{namespace, subsystem, name}, "/")
}

type queueMetrics struct {
	// number of claimed jobs
	processed metrics.Counter
	succeeded metrics.Counter
	// failed jobs per failure cause
	failed map[FailureCause]metrics.Counter
	// time from claiming a job to its terminal state
	duration metrics.Timer
}

func registerQueueMetrics(reg metrics.Registry) queueMetrics {
	const subsystem = "queue"
	return queueMetrics{
		processed: metrics.GetOrRegisterCounter(metricName(subsystem, "processed"), reg),
		succeeded: metrics.GetOrRegisterCounter(metricName(subsystem, "succeeded"), reg),
		failed: map[FailureCause]metrics.Counter{
			LogResponseLimit: metrics.GetOrRegisterCounter(metricName(subsystem, "failed/"+strings.ToLower(string(LogResponseLimit))), reg),
			Other:            metrics.GetOrRegisterCounter(metricName(subsystem, "failed/"+strings.ToLower(string(Other))), reg),
		},
		duration: metrics.GetOrRegisterTimer(metricName(subsystem, "duration"), reg),
	}
}
