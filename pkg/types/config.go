package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paper-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// AuthorConfig identifies the paper author.
type AuthorConfig struct {
	Name        string `json:"name" yaml:"name" mapstructure:"name"`
	ORCID       string `json:"orcid" yaml:"orcid" mapstructure:"orcid"`
	Affiliation string `json:"affiliation" yaml:"affiliation" mapstructure:"affiliation"`
	Email       string `json:"email" yaml:"email" mapstructure:"email"`
}

// DirsConfig holds the working directories.
type DirsConfig struct {
	// Output receives document records, HTML, and PDFs.
	Output string `json:"output" yaml:"output" mapstructure:"output"`

	// Metadata receives metadata records, the CSV log, and checklists.
	Metadata string `json:"metadata" yaml:"metadata" mapstructure:"metadata"`

	// Logs receives the date-partitioned run logs.
	Logs string `json:"logs" yaml:"logs" mapstructure:"logs"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Endpoint is the chat-completions URL of an OpenAI-compatible API.
	Endpoint string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`

	// Model is the AI model identifier (e.g. "gpt-4.1-mini").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// GenerationConfig holds settings for the generation stage.
type GenerationConfig struct {
	AIConfig   `yaml:",inline" mapstructure:",squash"`
	HTTPConfig `yaml:",inline" mapstructure:",squash"`
}

// TrendConfig holds settings for topic ranking.
type TrendConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// SourceTimeout bounds each source's fetch (default 20s).
	SourceTimeout time.Duration `json:"source_timeout" yaml:"source_timeout" mapstructure:"source_timeout"`

	// LengthThreshold is the display length above which topics are penalised (default 60).
	LengthThreshold int `json:"length_threshold" yaml:"length_threshold" mapstructure:"length_threshold"`

	// SSRNURL is the SSRN top-downloads page; empty disables the source.
	SSRNURL string `json:"ssrn_url" yaml:"ssrn_url" mapstructure:"ssrn_url"`

	// GoogleTrendsURL is the daily-trends feed; empty disables the source.
	GoogleTrendsURL string `json:"google_trends_url" yaml:"google_trends_url" mapstructure:"google_trends_url"`

	// Geo is the region code passed to the trends feed (e.g. "US").
	Geo string `json:"geo" yaml:"geo" mapstructure:"geo"`

	// StaticTopics are operator-supplied topics ranked alongside the feeds.
	StaticTopics []string `json:"static_topics" yaml:"static_topics" mapstructure:"static_topics"`

	// Top is the number of suggestions shown by the trends command (default 10).
	Top int `json:"top" yaml:"top" mapstructure:"top"`
}

// RenderBackend selects the HTML-to-PDF tool.
type RenderBackend string

const (
	RenderWeasyPrint RenderBackend = "weasyprint"
	RenderContainer  RenderBackend = "container"
)

// RenderConfig holds settings for the render stage.
type RenderConfig struct {
	// Template is an optional HTML template path; empty uses the built-in one.
	Template string `json:"template" yaml:"template" mapstructure:"template"`

	// Backend selects weasyprint or container.
	Backend RenderBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Binary is the weasyprint executable (default "weasyprint").
	Binary string `json:"binary" yaml:"binary" mapstructure:"binary"`

	// Image is the container image used by the container backend.
	Image string `json:"image" yaml:"image" mapstructure:"image"`
}

// QualityConfig holds settings for the quality stage.
type QualityConfig struct {
	// PdftotextBinary is the text extraction executable (default "pdftotext").
	PdftotextBinary string `json:"pdftotext_binary" yaml:"pdftotext_binary" mapstructure:"pdftotext_binary"`

	// MinWords is the minimum extracted word count (default 1500).
	MinWords int `json:"min_words" yaml:"min_words" mapstructure:"min_words"`
}

// UploadConfig holds settings for the upload stage.
type UploadConfig struct {
	// Remote is the rclone remote name (e.g. "gdrive").
	Remote string `json:"remote" yaml:"remote" mapstructure:"remote"`

	// FolderID is the destination folder on the remote.
	FolderID string `json:"folder_id" yaml:"folder_id" mapstructure:"folder_id"`

	// RcloneConfig is the path of the rclone config file.
	RcloneConfig string `json:"rclone_config" yaml:"rclone_config" mapstructure:"rclone_config"`

	// RcloneBinary is the rclone executable (default "rclone").
	RcloneBinary string `json:"rclone_binary" yaml:"rclone_binary" mapstructure:"rclone_binary"`
}

// TelegramConfig addresses the direct-message channel.
type TelegramConfig struct {
	BotToken string `json:"bot_token,omitempty" yaml:"bot_token,omitempty" mapstructure:"bot_token"`
	ChatID   string `json:"chat_id" yaml:"chat_id" mapstructure:"chat_id"`
}

// CalendarConfig addresses the calendar reminder channel.
type CalendarConfig struct {
	// AccessToken is a pre-provisioned OAuth bearer token.
	AccessToken string `json:"access_token,omitempty" yaml:"access_token,omitempty" mapstructure:"access_token"`

	// CalendarID is the target calendar (default "primary").
	CalendarID string `json:"calendar_id" yaml:"calendar_id" mapstructure:"calendar_id"`

	// Timezone is the IANA zone the reminder is scheduled in.
	Timezone string `json:"timezone" yaml:"timezone" mapstructure:"timezone"`

	// Hour and Minute give the local reminder time (default 09:05).
	Hour   int `json:"hour" yaml:"hour" mapstructure:"hour"`
	Minute int `json:"minute" yaml:"minute" mapstructure:"minute"`

	// Duration is the event length (default 15m).
	Duration time.Duration `json:"duration" yaml:"duration" mapstructure:"duration"`
}

// NotifyConfig holds settings for the notify stage.
type NotifyConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	Telegram TelegramConfig `json:"telegram" yaml:"telegram" mapstructure:"telegram"`
	Calendar CalendarConfig `json:"calendar" yaml:"calendar" mapstructure:"calendar"`
}

// OrchestratorConfig holds settings for the run itself.
type OrchestratorConfig struct {
	// StageTimeout bounds every collaborator call (default 10m).
	StageTimeout time.Duration `json:"stage_timeout" yaml:"stage_timeout" mapstructure:"stage_timeout"`
}

// HistoryConfig holds settings for the run ledger.
type HistoryConfig struct {
	// DBPath is the SQLite database file (default "logs/history.db").
	DBPath string `json:"db_path" yaml:"db_path" mapstructure:"db_path"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Author     AuthorConfig       `json:"author" yaml:"author" mapstructure:"author"`
	Dirs       DirsConfig         `json:"dirs" yaml:"dirs" mapstructure:"dirs"`
	Generation GenerationConfig   `json:"llm" yaml:"llm" mapstructure:"llm"`
	Trend      TrendConfig        `json:"trend" yaml:"trend" mapstructure:"trend"`
	Render     RenderConfig       `json:"render" yaml:"render" mapstructure:"render"`
	Quality    QualityConfig      `json:"quality" yaml:"quality" mapstructure:"quality"`
	Upload     UploadConfig       `json:"upload" yaml:"upload" mapstructure:"upload"`
	Notify     NotifyConfig       `json:"notify" yaml:"notify" mapstructure:"notify"`
	Pipeline   OrchestratorConfig `json:"pipeline" yaml:"pipeline" mapstructure:"pipeline"`
	History    HistoryConfig      `json:"history" yaml:"history" mapstructure:"history"`
}

const defaultUserAgent = "paper-engine/0.1"

// DefaultPipelineConfig returns the configuration used when no config file
// overrides a value.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Author: AuthorConfig{
			Name:        "Audrey Evans",
			ORCID:       "0009-0005-0663-7832",
			Affiliation: "Independent Researcher",
		},
		Dirs: DirsConfig{
			Output:   "output",
			Metadata: "metadata",
			Logs:     "logs",
		},
		Generation: GenerationConfig{
			AIConfig: AIConfig{
				Endpoint:   "https://api.openai.com/v1/chat/completions",
				Model:      "gpt-4.1-mini",
				MaxRetries: 3,
			},
			HTTPConfig: HTTPConfig{Timeout: 120 * time.Second, UserAgent: defaultUserAgent},
		},
		Trend: TrendConfig{
			HTTPConfig:      HTTPConfig{Timeout: 20 * time.Second, UserAgent: defaultUserAgent},
			SourceTimeout:   20 * time.Second,
			LengthThreshold: 60,
			SSRNURL:         "https://papers.ssrn.com/sol3/topten/topTenResults.cfm?groupingId=204&netorjrnl=ntwk",
			GoogleTrendsURL: "https://trends.google.com/trends/api/dailytrends",
			Geo:             "US",
			Top:             10,
		},
		Render: RenderConfig{
			Backend: RenderWeasyPrint,
			Binary:  "weasyprint",
			Image:   "weasyprint:latest",
		},
		Quality: QualityConfig{
			PdftotextBinary: "pdftotext",
			MinWords:        1500,
		},
		Upload: UploadConfig{
			Remote:       "gdrive",
			RcloneBinary: "rclone",
		},
		Notify: NotifyConfig{
			HTTPConfig: HTTPConfig{Timeout: 60 * time.Second, UserAgent: defaultUserAgent},
			Calendar: CalendarConfig{
				CalendarID: "primary",
				Timezone:   "America/Phoenix",
				Hour:       9,
				Minute:     5,
				Duration:   15 * time.Minute,
			},
		},
		Pipeline: OrchestratorConfig{StageTimeout: 10 * time.Minute},
		History:  HistoryConfig{DBPath: "logs/history.db"},
	}
}
