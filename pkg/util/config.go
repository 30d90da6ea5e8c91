package util

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

func ReadConfig() error {
	viper.SetConfigName("config")
	viper.AddConfigPath("./data/")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("fatal error config file: %w", err)
	}
	return nil
}

// ReadConfigIfPresent loads ./data/config.yaml when it exists and keeps the
// registered viper defaults when it does not.
func ReadConfigIfPresent() error {
	err := ReadConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && errors.As(err, &notFound) {
		return nil
	}
	return err
}
