package types

const (
	// ModuleName defines the coordination layer name, used as the error
	// codespace and as the logging module tag.
	ModuleName = "coordination"
)

// SubSystem tags log lines with the component they originate from.
type SubSystem int

const (
	Queries SubSystem = iota
	Deployments
	Insights
	Config
	Stats
	Events
	Server
	Storage
)

func (s SubSystem) String() string {
	switch s {
	case Queries:
		return "queries"
	case Deployments:
		return "deployments"
	case Insights:
		return "insights"
	case Config:
		return "config"
	case Stats:
		return "stats"
	case Events:
		return "events"
	case Server:
		return "server"
	case Storage:
		return "storage"
	default:
		return "unknown"
	}
}
