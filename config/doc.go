// Package config loads extractd configuration.
//
// LoadConfig reads a YAML file through Viper, overlays a .env file loaded
// with godotenv, and finally applies environment variables carrying the
// service prefix (EXTRACTD_SERVER_PORT overrides server.port).
//
//	var cfg AppConfig
//	err := config.LoadConfig("extractd", &cfg, config.WithConfigFile(path))
package config
