package metrics

const (
	Namespace       = "kairos"
	EngineSubsystem = "engine"
	APISubsystem    = "api"
)
