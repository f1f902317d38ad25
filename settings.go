package sieve

// Config holds the configuration settings for the service.
type Config struct {
	// Host and port the HTTP API listens on.
	SieveHost string `mapstructure:"sieve_host"`

	// Folder where collection data and schema files are kept.
	DataFolder string `mapstructure:"data_folder"`

	// When set, API requests must carry a bearer token signed with this key.
	APIJWTKey string `mapstructure:"api_jwt_key"`
}

var globalConfig Config

func init() {
	globalConfig = Config{
		SieveHost:  "0.0.0.0:8080",
		DataFolder: "./data",
	}
}

func Configure(cfg Config) {
	globalConfig = cfg
}
