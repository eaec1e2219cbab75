package config

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	configFileEnvVar  = "VERIDIA_CONFIG_FILE"
	defaultConfigPath = "/etc/veridia/config.yml"
)

func DecodeStruct[E any](source interface{}) (E, error) {
	var target E
	err := mapstructure.Decode(source, &target)
	if err != nil {
		var zero E
		return zero, fmt.Errorf("could not decode struct: %w", err)
	}
	return target, nil
}

func EncodeStruct[E any](source E) (map[string]interface{}, error) {
	var target map[string]interface{}
	err := mapstructure.Decode(source, &target)
	if err != nil {
		return nil, fmt.Errorf("could not decode struct: %w", err)
	}
	return target, nil
}

func readConfig[E any](configFilePath string, defaults *E) (*E, error) {
	vp := viper.New()

	if defaults != nil {
		defaultsMap := map[string]interface{}{}
		mapstructure.Decode(defaults, &defaultsMap)

		for key, value := range defaultsMap {
			if value != nil && value != "" {
				vp.SetDefault(key, value)
			}
		}
	}

	vp.SetConfigFile(configFilePath)
	if err := vp.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error while processing config file: %w", err)
	}

	var config E
	if err := vp.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}

	return &config, nil
}

// LoadConfig reads the config file pointed to by VERIDIA_CONFIG_FILE, falling
// back to the standard path when the variable is unset or its file fails to
// load.
func LoadConfig[E any](defaults *E) (*E, error) {
	if fromEnv := os.Getenv(configFileEnvVar); fromEnv != "" {
		log.Infof("loading config file from %s", fromEnv)
		conf, err := readConfig[E](fromEnv, defaults)
		if err == nil {
			return conf, nil
		}

		log.Warnf("failed to load config file specified in ENV '%s' variable. will try to load from standard paths: %s", configFileEnvVar, err)
	} else {
		log.Infof("ENV '%s' variable not set, will try to load from standard paths", configFileEnvVar)
	}

	return readConfig[E](defaultConfigPath, defaults)
}
