package config

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port           int      `yaml:"port" validate:"gt=0"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// DataConfig points at the prebuilt graph artifacts and the event pool
type DataConfig struct {
	GraphDir string `yaml:"graphDir" validate:"required"`
	EventsDB string `yaml:"eventsDB"`
}

// WalkingConfig configures the pedestrian routing client
type WalkingConfig struct {
	APIKey    string `yaml:"apiKey"`
	BaseURL   string `yaml:"baseURL" validate:"omitempty,url"`
	TimeoutMS int    `yaml:"timeoutMS" validate:"gte=0"`
	CacheSize int    `yaml:"cacheSize" validate:"gte=0"`
}

// RoutingConfig tunes the route finder
type RoutingConfig struct {
	OriginRadiusMiles float64 `yaml:"originRadiusMiles" validate:"gte=0"`
	DestRadiusMiles   float64 `yaml:"destRadiusMiles" validate:"gte=0"`
	Limit             int     `yaml:"limit" validate:"gte=0"`
}

// PlannerConfig tunes the itinerary scheduler
type PlannerConfig struct {
	WalkableMiles  float64 `yaml:"walkableMiles" validate:"gte=0"`
	MinutesPerStop int     `yaml:"minutesPerStop" validate:"gte=0"`
}

// RealtimeConfig maps subway lines to their trip-update feeds
type RealtimeConfig struct {
	Feeds     map[string]string `yaml:"feeds" validate:"omitempty,dive,url"`
	TimeoutMS int               `yaml:"timeoutMS" validate:"gte=0"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server   ServerConfig   `yaml:"server" validate:"required"`
	Data     DataConfig     `yaml:"data" validate:"required"`
	Walking  WalkingConfig  `yaml:"walking"`
	Routing  RoutingConfig  `yaml:"routing"`
	Planner  PlannerConfig  `yaml:"planner"`
	Realtime RealtimeConfig `yaml:"realtime"`
}
