package stats

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsTotalDesc = prometheus.NewDesc(
		"relay_requests_total",
		"Total number of relayed requests per response status.",
		[]string{"status"}, nil)
	bytesTransferredDesc = prometheus.NewDesc(
		"relay_bytes_transferred_total",
		"Number of response body bytes sent to clients.",
		nil, nil)
	partialResponsesDesc = prometheus.NewDesc(
		"relay_partial_responses_total",
		"Number of 206 responses per kind.",
		[]string{"kind"}, nil)
	notSatisfiableDesc = prometheus.NewDesc(
		"relay_range_not_satisfiable_total",
		"Number of requests rejected with 416 Range Not Satisfiable.",
		nil, nil)
)

// Collector is a prometheus.Collector that exposes a Counters value.
type Collector struct {
	counters *Counters
}

// NewCollector returns a collector that reads from counters.
func NewCollector(counters *Counters) Collector {
	return Collector{counters}
}

// Describe sends the descriptors of the exposed metrics.
func (Collector) Describe(descs chan<- *prometheus.Desc) {
	descs <- requestsTotalDesc
	descs <- bytesTransferredDesc
	descs <- partialResponsesDesc
	descs <- notSatisfiableDesc
}

// Collect sends the current counter values.
func (c Collector) Collect(metrics chan<- prometheus.Metric) {
	snapshot := c.counters.Snapshot()

	for code, value := range snapshot.Requests {
		metrics <- prometheus.MustNewConstMetric(
			requestsTotalDesc,
			prometheus.CounterValue,
			float64(value),
			strconv.Itoa(code),
		)
	}

	metrics <- prometheus.MustNewConstMetric(
		bytesTransferredDesc,
		prometheus.CounterValue,
		float64(snapshot.Bytes),
	)

	metrics <- prometheus.MustNewConstMetric(
		partialResponsesDesc,
		prometheus.CounterValue,
		float64(snapshot.Single),
		"single",
	)

	metrics <- prometheus.MustNewConstMetric(
		partialResponsesDesc,
		prometheus.CounterValue,
		float64(snapshot.Multipart),
		"multipart",
	)

	metrics <- prometheus.MustNewConstMetric(
		notSatisfiableDesc,
		prometheus.CounterValue,
		float64(snapshot.NotSatisfiable),
	)
}
