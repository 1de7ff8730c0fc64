// Package metrics collects per-attempt measurements for a littlebot run.
//
// The central [Collector] aggregates latency, success/failure counts, HTTP
// status code buckets, and error-type breakdowns from the worker goroutines:
//
//	collector := metrics.NewCollector()
//	collector.Start() // mark run start for accurate rate calculation
//
//	collector.RecordAttempt(latency, statusCode, err)
//
//	stats := collector.Stats(elapsed)
//
// Latencies are tracked in an HDR histogram from 1µs to 60s with 3
// significant figures, so percentile queries stay cheap no matter how long
// the bot runs. It is safe to call RecordAttempt from multiple goroutines.
package metrics
