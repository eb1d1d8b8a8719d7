package util

import "time"

type Config struct {
	Port       string
	Debug      bool
	LogFormat  string
	CORSOrigin []string

	ChunkMaxLength      int
	ExtractMaxFragments int
	ExtractMaxRetries   int

	AIAdapter      string
	AIChatURL      string
	AIChatKey      string
	AIExtractModel string
	AIParallelReq  int

	GraphStore     string
	Neo4jURI       string
	Neo4jUser      string
	Neo4jPassword  string
	Neo4jDatabase  string
	Neo4jTimeout   time.Duration
	Neo4jPoolSize  int
	JobStore       string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	JobTTL         time.Duration
	DatabaseURL    string
	DocLockEnabled bool

	Dispatcher       string
	RabbitMQUser     string
	RabbitMQPassword string
	RabbitMQHost     string
	RabbitMQPort     string

	AWSBucket     string
	AWSRegion     string
	AWSEndpoint   string
	AWSAccessKey  string
	AWSSecretKey  string
	AuthURL       string
	MasterAPIKey  string
	MaxUploadSize string
}

// LoadConfig reads the process configuration from the environment.
func LoadConfig() Config {
	return Config{
		Port:       GetEnvString("PORT", "8000"),
		Debug:      GetEnvBool("DEBUG", false),
		LogFormat:  GetEnvString("LOG_FORMAT", "text"),
		CORSOrigin: GetEnvList("CORS_ORIGINS", []string{"http://localhost:5173"}),

		ChunkMaxLength:      GetEnvInt("CHUNK_MAX_LENGTH", 1200),
		ExtractMaxFragments: GetEnvInt("EXTRACT_MAX_FRAGMENTS", 10),
		ExtractMaxRetries:   GetEnvInt("EXTRACT_MAX_RETRIES", 1),

		AIAdapter:      GetEnvString("AI_ADAPTER", "openai"),
		AIChatURL:      GetEnv("AI_CHAT_URL"),
		AIChatKey:      GetEnv("AI_CHAT_KEY"),
		AIExtractModel: GetEnvString("AI_CHAT_EXTRACT_MODEL", "gpt-4"),
		AIParallelReq:  GetEnvInt("AI_PARALLEL_REQ", 4),

		GraphStore:     GetEnvString("GRAPH_STORE", "neo4j"),
		Neo4jURI:       GetEnvString("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:      GetEnvString("NEO4J_USER", "neo4j"),
		Neo4jPassword:  GetEnvString("NEO4J_PASSWORD", "password"),
		Neo4jDatabase:  GetEnv("NEO4J_DATABASE"),
		Neo4jTimeout:   time.Duration(GetEnvInt("NEO4J_TIMEOUT_SECONDS", 10)) * time.Second,
		Neo4jPoolSize:  GetEnvInt("NEO4J_MAX_POOL_SIZE", 50),
		JobStore:       GetEnvString("JOB_STORE", "memory"),
		RedisAddr:      GetEnvString("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  GetEnv("REDIS_PASSWORD"),
		RedisDB:        GetEnvInt("REDIS_DB", 0),
		JobTTL:         time.Duration(GetEnvInt("JOB_TTL_HOURS", 0)) * time.Hour,
		DatabaseURL:    GetEnv("DATABASE_URL"),
		DocLockEnabled: GetEnvBool("DOC_LOCK_ENABLED", false),

		Dispatcher:       GetEnvString("DISPATCHER", "inprocess"),
		RabbitMQUser:     GetEnv("RABBITMQ_USER"),
		RabbitMQPassword: GetEnv("RABBITMQ_PASSWORD"),
		RabbitMQHost:     GetEnvString("RABBITMQ_HOST", "localhost"),
		RabbitMQPort:     GetEnvString("RABBITMQ_PORT", "5672"),

		AWSBucket:     GetEnv("AWS_BUCKET"),
		AWSRegion:     GetEnvString("AWS_REGION", "us-east-1"),
		AWSEndpoint:   GetEnv("AWS_ENDPOINT"),
		AWSAccessKey:  GetEnv("AWS_ACCESS_KEY"),
		AWSSecretKey:  GetEnv("AWS_SECRET_KEY"),
		AuthURL:       GetEnv("AUTH_URL"),
		MasterAPIKey:  GetEnv("MASTER_API_KEY"),
		MaxUploadSize: GetEnvString("MAX_UPLOAD_SIZE", "10M"),
	}
}
