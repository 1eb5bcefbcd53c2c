package types

import "time"

type StoreBackend string

const (
	StoreBackendPostgres StoreBackend = "postgres"
	StoreBackendSupabase StoreBackend = "supabase"
	StoreBackendNone     StoreBackend = "none"
)

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`

	// Persistence
	StoreBackend   StoreBackend `envconfig:"STORE_BACKEND" default:"postgres"`
	DatabaseURL    string       `envconfig:"DATABASE_URL"`
	DatabaseSchema string       `envconfig:"DATABASE_SCHEMA" default:"aegis"`

	// Supabase REST
	SupabaseURL        string `envconfig:"SUPABASE_URL"`
	SupabaseServiceKey string `envconfig:"SUPABASE_SERVICE_KEY"`
	SupabaseCasesTable string `envconfig:"SUPABASE_CASES_TABLE" default:"cases"`

	// VAPI voice intake
	VapiBaseURL       string `envconfig:"VAPI_BASE_URL" default:"https://api.vapi.ai"`
	VapiAPIKey        string `envconfig:"VAPI_API_KEY"`
	VapiWebhookSecret string `envconfig:"VAPI_WEBHOOK_SECRET"`

	// Recording archive. An empty bucket leaves recordings with the vendor.
	// Recordings are only fetched over https from the allowed hosts.
	RecordingsBucket       string   `envconfig:"RECORDINGS_BUCKET"`
	RecordingsPrefix       string   `envconfig:"RECORDINGS_PREFIX" default:"recordings/"`
	RecordingsAllowedHosts []string `envconfig:"RECORDINGS_ALLOWED_HOSTS" default:"storage.vapi.ai"`
	S3Endpoint             string   `envconfig:"S3_ENDPOINT"`

	// Rate limiting. An empty RedisURL keeps counters in process memory.
	RedisURL        string        `envconfig:"REDIS_URL"`
	RateLimitWindow time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"15m"`
	ManualRateLimit int           `envconfig:"MANUAL_RATE_LIMIT" default:"5"`
	MapRateLimit    int           `envconfig:"MAP_RATE_LIMIT" default:"10"`
	VoiceRateLimit  int           `envconfig:"VOICE_RATE_LIMIT" default:"100"`
	TrackRateLimit  int           `envconfig:"TRACK_RATE_LIMIT" default:"20"`

	// Classification
	ClassifierWholeWords bool `envconfig:"CLASSIFIER_WHOLE_WORDS" default:"false"`
	TitleMaxLength       int  `envconfig:"TITLE_MAX_LENGTH" default:"60"`
}
