package config

import "time"

// Config is the root application configuration. Boolean options are named so
// that false is the default: cleanenv applies env-default to every zero value,
// so a default of true could never be switched off from YAML.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	Dictionary DictionaryConfig `yaml:"dictionary"`
	LLM        LLMConfig        `yaml:"llm"`
	Images     ImagesConfig     `yaml:"images"`
	Speech     SpeechConfig     `yaml:"speech"`
	Quiz       QuizConfig       `yaml:"quiz"`
	Session    SessionConfig    `yaml:"session"`
	Tracker    TrackerConfig    `yaml:"tracker"`
	WordList   WordListConfig   `yaml:"word_list"`
	Billing    BillingConfig    `yaml:"billing"`
	Mail       MailConfig       `yaml:"mail"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Log        LogConfig        `yaml:"log"`
	CORS       CORSConfig       `yaml:"cors"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type,X-Session-Id"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	SearchRateLimit int           `yaml:"search_rate_limit" env:"SERVER_SEARCH_RATE_LIMIT" env-default:"120"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	AutoMigrate     bool          `yaml:"auto_migrate"       env:"DATABASE_AUTO_MIGRATE"       env-default:"false"`
}

// AuthConfig holds access-token validation settings. Tokens are issued by
// the external identity provider and share this secret.
type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret"       env:"AUTH_JWT_SECRET"       env-required:"true"`
	JWTIssuer      string        `yaml:"jwt_issuer"       env:"AUTH_JWT_ISSUER"       env-default:"kiddict"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env:"AUTH_ACCESS_TOKEN_TTL" env-default:"1h"`
}

// DictionaryConfig holds lookup settings.
type DictionaryConfig struct {
	FreeDictURL   string        `yaml:"free_dict_url"   env:"DICT_FREE_DICT_URL"   env-default:"https://api.dictionaryapi.dev/api/v2/entries/en"`
	LookupTimeout time.Duration `yaml:"lookup_timeout"  env:"DICT_LOOKUP_TIMEOUT"  env-default:"20s"`
	DefaultGrade  string        `yaml:"default_grade"   env:"DICT_DEFAULT_GRADE"   env-default:"3"`
	HistoryLimit  int           `yaml:"history_limit"   env:"DICT_HISTORY_LIMIT"   env-default:"10"`
	FreeDictFirst bool          `yaml:"free_dict_first" env:"DICT_FREE_DICT_FIRST"`
}

// LLMConfig holds definition-generation settings. An empty key disables the
// generator and the free dictionary is used alone.
type LLMConfig struct {
	APIKey    string `yaml:"api_key"    env:"ANTHROPIC_API_KEY"`
	Model     string `yaml:"model"      env:"LLM_MODEL"      env-default:"claude-3-5-haiku-latest"`
	MaxTokens int64  `yaml:"max_tokens" env:"LLM_MAX_TOKENS" env-default:"1024"`
}

// ImagesConfig holds picture generation and search settings.
type ImagesConfig struct {
	GeneratorURL string        `yaml:"generator_url"   env:"IMAGES_GENERATOR_URL"   env-default:"https://image.pollinations.ai/prompt"`
	Width        int           `yaml:"width"           env:"IMAGES_WIDTH"           env-default:"512"`
	Height       int           `yaml:"height"          env:"IMAGES_HEIGHT"          env-default:"512"`
	PixabayURL   string        `yaml:"pixabay_url"     env:"IMAGES_PIXABAY_URL"     env-default:"https://pixabay.com/api/"`
	PixabayKey   string        `yaml:"pixabay_key"     env:"PIXABAY_API_KEY"`
	Timeout      time.Duration `yaml:"timeout"         env:"IMAGES_TIMEOUT"         env-default:"30s"`
	SkipVerify   bool          `yaml:"skip_verify"     env:"IMAGES_SKIP_VERIFY"`
}

// SpeechConfig holds text-to-speech settings. Disabled leaves the speech
// endpoint answering 503.
type SpeechConfig struct {
	Enabled      bool    `yaml:"enabled"       env:"SPEECH_ENABLED"       env-default:"false"`
	LanguageCode string  `yaml:"language_code" env:"SPEECH_LANGUAGE_CODE" env-default:"en-US"`
	VoiceName    string  `yaml:"voice_name"    env:"SPEECH_VOICE_NAME"    env-default:"en-US-Standard-C"`
	SpeakingRate float64 `yaml:"speaking_rate" env:"SPEECH_SPEAKING_RATE" env-default:"0.85"`
	CacheSize    int     `yaml:"cache_size"    env:"SPEECH_CACHE_SIZE"    env-default:"500"`
}

// QuizConfig holds quiz engine parameters.
type QuizConfig struct {
	QuestionCount int           `yaml:"question_count" env:"QUIZ_QUESTION_COUNT" env-default:"5"`
	AdvanceDelay  time.Duration `yaml:"advance_delay"  env:"QUIZ_ADVANCE_DELAY"  env-default:"2s"`
	TTL           time.Duration `yaml:"ttl"            env:"QUIZ_TTL"            env-default:"2h"`
	MaxListWords  int           `yaml:"max_list_words" env:"QUIZ_MAX_LIST_WORDS" env-default:"50"`
}

// SessionConfig holds in-memory session settings.
type SessionConfig struct {
	IdleTTL time.Duration `yaml:"idle_ttl" env:"SESSION_IDLE_TTL" env-default:"4h"`
}

// TrackerConfig holds progress-event queue settings.
type TrackerConfig struct {
	QueueSize   int           `yaml:"queue_size"   env:"TRACKER_QUEUE_SIZE"   env-default:"1024"`
	Workers     int           `yaml:"workers"      env:"TRACKER_WORKERS"      env-default:"2"`
	SinkTimeout time.Duration `yaml:"sink_timeout" env:"TRACKER_SINK_TIMEOUT" env-default:"5s"`
	// RetentionDays bounds how long raw search and quiz events are kept.
	RetentionDays int `yaml:"retention_days" env:"TRACKER_RETENTION_DAYS" env-default:"365"`
}

// WordListConfig holds teacher word-list settings.
type WordListConfig struct {
	MaxWords          int `yaml:"max_words"           env:"WORD_LIST_MAX_WORDS"           env-default:"200"`
	ShareCodeAttempts int `yaml:"share_code_attempts" env:"WORD_LIST_SHARE_CODE_ATTEMPTS" env-default:"5"`
}

// BillingConfig holds payment processor settings. PlansRaw is a
// semicolon-separated list of "id|TYPE|name|price_cents|feature,feature".
type BillingConfig struct {
	BaseURL      string `yaml:"base_url"      env:"BILLING_BASE_URL"      env-default:"https://api-m.sandbox.paypal.com"`
	ClientID     string `yaml:"client_id"     env:"BILLING_CLIENT_ID"`
	ClientSecret string `yaml:"client_secret" env:"BILLING_CLIENT_SECRET"`
	ReturnURL    string `yaml:"return_url"    env:"BILLING_RETURN_URL"    env-default:"http://localhost:5173/subscription/success"`
	CancelURL    string `yaml:"cancel_url"    env:"BILLING_CANCEL_URL"    env-default:"http://localhost:5173/pricing"`
	PlansRaw     string `yaml:"plans"         env:"BILLING_PLANS"         env-default:"free|FREE|Free|0|Dictionary search,Daily quiz;family|FAMILY|Family|499|Unlimited pictures,Read aloud,Parent portal;teacher|TEACHER|Teacher|999|Word lists,Class dashboard,Spreadsheet import"`

	// Plans is parsed from PlansRaw during validation.
	Plans []PlanConfig `yaml:"-" env:"-"`
}

// PlanConfig is one parsed billing plan.
type PlanConfig struct {
	ID       string
	Type     string
	Name     string
	Price    int64
	Features []string
}

// MailConfig holds e-mail (Amazon SES) settings. Empty FromEmail disables mail.
type MailConfig struct {
	Region     string `yaml:"region"       env:"MAIL_AWS_REGION"  env-default:"us-east-1"`
	FromEmail  string `yaml:"from_email"   env:"MAIL_FROM_EMAIL"`
	FromName   string `yaml:"from_name"    env:"MAIL_FROM_NAME"   env-default:"Kids Dictionary"`
	AppBaseURL string `yaml:"app_base_url" env:"MAIL_APP_BASE_URL" env-default:"http://localhost:5173"`
}

// SchedulerConfig holds background job intervals.
type SchedulerConfig struct {
	Disabled       bool          `yaml:"disabled"        env:"SCHEDULER_DISABLED"`
	SweepInterval  time.Duration `yaml:"sweep_interval"  env:"SCHEDULER_SWEEP_INTERVAL"  env-default:"10m"`
	DigestInterval time.Duration `yaml:"digest_interval" env:"SCHEDULER_DIGEST_INTERVAL" env-default:"168h"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
