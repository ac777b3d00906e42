package logging

// Config controls router behaviour.
type Config struct {
	// MinimumSeverity drops events below the threshold before they
	// reach any sink.
	MinimumSeverity Severity
	// Fields are merged into Extra on every published event. Event
	// values win on key collision.
	Fields map[string]any
}

func DefaultConfig() Config {
	return Config{MinimumSeverity: SeverityInfo}
}

func (c Config) CloneFields() map[string]any {
	if len(c.Fields) == 0 {
		return nil
	}
	out := make(map[string]any, len(c.Fields))
	for k, v := range c.Fields {
		out[k] = v
	}
	return out
}
