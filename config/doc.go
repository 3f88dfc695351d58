// Package config loads service configuration from config.yml, .env files
// and the process environment using viper and godotenv.
//
// Files are searched under cmd/<service>/, config/ and the working
// directory unless given explicitly:
//
//	var cfg Config
//	err := config.LoadConfig("eureka-agent", &cfg, config.WithConfigFile("config.yml"))
//
// Environment variables override file values by key path, so
// EUREKA_APP_NAME sets eureka.app_name. WithEnvPrefix restricts overrides
// to variables that start with a prefix.
package config
