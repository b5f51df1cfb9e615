package model

// ================ Config ================
type ConversationConfig struct {
	TTL    string `envconfig:"CONVERSATION_TTL" default:"30m"`
	Intent struct {
		MaxTurns int `envconfig:"CONVERSATION_INTENT_MAX_TURNS" default:"5"`
	}
	MaxTurnSteps int `envconfig:"CONVERSATION_MAX_TURN_STEPS" default:"20"`
}

type OracleModelConfig struct {
	Model       string  `envconfig:"ORACLE_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"ORACLE_MAX_TOKENS" default:"1024"`
	Temperature float32 `envconfig:"ORACLE_TEMPERATURE" default:"0.0"`
}

type SAPConfig struct {
	// APIURL empty selects the built-in mock lookup.
	APIURL         string `envconfig:"SAP_API_URL"`
	APIKey         string `envconfig:"SAP_API_KEY"`
	TimeoutSeconds int    `envconfig:"SAP_TIMEOUT_SECONDS" default:"15"`
}

type ServiceNowConfig struct {
	// InstanceURL empty selects the built-in mock ticketing client.
	InstanceURL    string `envconfig:"SERVICENOW_INSTANCE_URL"`
	Username       string `envconfig:"SERVICENOW_USERNAME"`
	Password       string `envconfig:"SERVICENOW_PASSWORD"`
	TimeoutSeconds int    `envconfig:"SERVICENOW_TIMEOUT_SECONDS" default:"15"`
}

type ServerConfig struct {
	Addr string `envconfig:"SERVER_ADDR" default:":8080"`
}
