package application

// Recorder receives service-level observations. Implemented by the metrics
// package; a nil recorder disables recording.
type Recorder interface {
	ObserveSync(kind string, synced, errors int)
	ObserveWebhook(topic, outcome string)
	ObserveCache(hit bool)
}
