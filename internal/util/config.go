package util

import (
	"errors"
	"fmt"
	_ "github.com/joho/godotenv/autoload"
	"log"
	"os"
)

type configValue struct {
	envVarName   string
	required     bool
	errorMessage string
	defaultValue string
	Value        string
}

type Config struct {
	FeedUrl            configValue
	DbConnectionString configValue
	SeqUrl             configValue
	SeqToken           configValue
	Environment        configValue
	NoLogTime          configValue
}

func NewConfig() *Config {
	const feedUrlName = "FEED_URL"
	const dbConnectionStringName = "DB_CONNECTION_STRING"
	const seqUrlName = "SEQ_URL"
	const seqTokenName = "SEQ_TOKEN"
	const environmentName = "ENVIRONMENT"
	const noLogTimeName = "NOLOGTIME"

	return &Config{
		FeedUrl: configValue{
			envVarName:   feedUrlName,
			required:     false,
			defaultValue: "http://service.vdl.lu/rss/circulation_guidageparking.php",
		},
		DbConnectionString: configValue{
			envVarName: dbConnectionStringName,
			required:   false,
		},
		SeqUrl: configValue{
			envVarName: seqUrlName,
			required:   false,
		},
		SeqToken: configValue{
			envVarName: seqTokenName,
			required:   false,
		},
		Environment: configValue{
			envVarName:   environmentName,
			required:     false,
			defaultValue: "development",
		},
		NoLogTime: configValue{
			envVarName: noLogTimeName,
			required:   false,
		},
	}
}

var config *Config

func GetConfig() *Config {
	if config == nil {
		return load()
	}

	return config
}

func load() *Config {
	config := NewConfig()

	if err := populateEnv(&config.FeedUrl); err != nil {
		log.Fatal(err)
	}
	if err := populateEnv(&config.DbConnectionString); err != nil {
		log.Fatal(err)
	}
	if err := populateEnv(&config.SeqUrl); err != nil {
		log.Fatal(err)
	}
	if err := populateEnv(&config.SeqToken); err != nil {
		log.Fatal(err)
	}
	if err := populateEnv(&config.Environment); err != nil {
		log.Fatal(err)
	}
	if err := populateEnv(&config.NoLogTime); err != nil {
		log.Fatal(err)
	}

	return config
}

func populateEnv(m *configValue) (err error) {
	v := os.Getenv(m.envVarName)

	if v == "" && m.required {
		if m.errorMessage != "" {
			return errors.New(m.errorMessage)
		}

		return fmt.Errorf("environment variable %s is not set", m.envVarName)
	}

	if v == "" {
		m.Value = m.defaultValue
		return nil
	}

	m.Value = v
	return nil
}
