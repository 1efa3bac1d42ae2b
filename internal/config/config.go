package config

import "github.com/kelseyhightower/envconfig"

// Config holds all runtime settings, loaded from the environment. A .env
// file, if present, is loaded by the entrypoint before this runs.
type Config struct {
	Environment string `default:"development"`
	Port        string `default:"5000"`
	MongoURI    string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDB     string `envconfig:"MONGO_DB" default:"stylekart"`
	JWTSecret   string `envconfig:"JWT_SECRET" required:"true"`
	RedisURL    string `envconfig:"REDIS_URL"`
	ShopSeed    string `envconfig:"SHOP_SEED" default:"configs/shops.yaml"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
