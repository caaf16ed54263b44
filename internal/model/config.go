package model

// Config is the complete scout configuration
type Config struct {
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	Research    ResearchConfig    `yaml:"research" mapstructure:"research"`
	Verify      VerifyConfig      `yaml:"verify" mapstructure:"verify"`
	Saturation  SaturationConfig  `yaml:"saturation" mapstructure:"saturation"`
	Selector    SelectorConfig    `yaml:"selector" mapstructure:"selector"`
	Sources     SourcesConfig     `yaml:"sources" mapstructure:"sources"`
	Storage     StorageConfig     `yaml:"storage" mapstructure:"storage"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
}

// HTTPConfig controls outbound HTTP behavior for the crawler provider
type HTTPConfig struct {
	TimeoutSeconds int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	UserAgent      string `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes   int64  `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// ResearchConfig controls the research cycle controller
type ResearchConfig struct {
	MaxCycles          int `yaml:"max_cycles" mapstructure:"max_cycles"`
	MaxSources         int `yaml:"max_sources" mapstructure:"max_sources"`
	MaxResultsPerQuery int `yaml:"max_results_per_query" mapstructure:"max_results_per_query"`
	ClarifyRounds      int `yaml:"clarify_rounds" mapstructure:"clarify_rounds"`
}

// VerifyConfig holds the heuristic thresholds for contradiction detection.
// Both values are heuristics, not invariants; they are tunable.
type VerifyConfig struct {
	JaccardThreshold    float64 `yaml:"jaccard_threshold" mapstructure:"jaccard_threshold"`
	AmountRelativeDelta float64 `yaml:"amount_relative_delta" mapstructure:"amount_relative_delta"`
}

// SaturationConfig holds the stop-decision thresholds
type SaturationConfig struct {
	MinNewEntitiesRatio float64 `yaml:"min_new_entities_ratio" mapstructure:"min_new_entities_ratio"`
	MinNewFactsRatio    float64 `yaml:"min_new_facts_ratio" mapstructure:"min_new_facts_ratio"`
	MaxSourceCoverage   float64 `yaml:"max_source_coverage" mapstructure:"max_source_coverage"`
	MaxCircularity      float64 `yaml:"max_circularity" mapstructure:"max_circularity"`
}

// SelectorConfig controls source selection and effectiveness learning
type SelectorConfig struct {
	Alpha             float64 `yaml:"alpha" mapstructure:"alpha"`                           // EMA smoothing factor
	DefaultScore      float64 `yaml:"default_score" mapstructure:"default_score"`           // Score for unknown (source, domain)
	UsableThreshold   float64 `yaml:"usable_threshold" mapstructure:"usable_threshold"`     // ShouldUseSource default cutoff
	CacheTTLSeconds   int     `yaml:"cache_ttl_seconds" mapstructure:"cache_ttl_seconds"`   // Memory layer TTL
	DefaultRateLimit  float64 `yaml:"default_rate_limit" mapstructure:"default_rate_limit"` // Requests/sec when a provider reports none
	DefaultRateBurst  int     `yaml:"default_rate_burst" mapstructure:"default_rate_burst"`
}

// SourcesConfig configures the built-in source providers. External
// search backends are injected by their own adapters; only the crawler
// is wired here.
type SourcesConfig struct {
	CrawlerSeeds []string `yaml:"crawler_seeds" mapstructure:"crawler_seeds"`
}

// StorageConfig locates the durable stores
type StorageConfig struct {
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"` // Effectiveness + session checkpoints live here
}

// LLMConfig configures the optional LLM-backed synthesizer and clarifier
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // "openai" or "" (fallback synthesizer)
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // Seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// ConcurrencyConfig bounds parallel work
type ConcurrencyConfig struct {
	CollectWorkers int `yaml:"collect_workers" mapstructure:"collect_workers"` // Upper bound on simultaneous source calls
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			TimeoutSeconds: 15,
			UserAgent:      "scout/0.1 (+https://github.com/memouritsen-ui/solid-robot-sub000)",
			MaxBodyBytes:   2 * 1024 * 1024,
		},
		Research: ResearchConfig{
			MaxCycles:          8,
			MaxSources:         6,
			MaxResultsPerQuery: 10,
			ClarifyRounds:      2,
		},
		Verify: VerifyConfig{
			JaccardThreshold:    0.3,
			AmountRelativeDelta: 0.2,
		},
		Saturation: SaturationConfig{
			MinNewEntitiesRatio: 0.05,
			MinNewFactsRatio:    0.05,
			MaxSourceCoverage:   0.95,
			MaxCircularity:      0.80,
		},
		Selector: SelectorConfig{
			Alpha:            0.3,
			DefaultScore:     0.5,
			UsableThreshold:  0.3,
			CacheTTLSeconds:  300,
			DefaultRateLimit: 1.0,
			DefaultRateBurst: 2,
		},
		Sources: SourcesConfig{},
		Storage: StorageConfig{
			DataDir: "", // Resolved to ~/.scout/data at startup when empty
		},
		LLM: LLMConfig{
			Provider:  "",
			Model:     "",
			Timeout:   30,
			MaxTokens: 2000,
		},
		Concurrency: ConcurrencyConfig{
			CollectWorkers: 8,
		},
	}
}
