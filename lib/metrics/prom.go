package metrics

func InitPrometheusMetrics() {
	Version = PromVersion()
	Engine = PromEngineMetrics()
	API = PromAPIMetrics()
}
