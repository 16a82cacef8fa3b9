// Package config loads typed configuration structs from environment
// variables, with optional .env file support for development.
//
// Each configuration type is parsed once per process and cached, so the same
// struct can be loaded from any package without re-reading the environment:
//
//	type PostgresConfig struct {
//		DSN string `env:"DATABASE_URL,required"`
//	}
//
//	var cfg PostgresConfig
//	config.MustLoad(&cfg)
package config
