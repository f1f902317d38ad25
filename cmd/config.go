package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/smhanov/sieve"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func init() {
	// Bind command-line flags
	pflag.String("config", "", "Path to the configuration file")
	pflag.String("data-folder", "./data", "Path to the data folder")
	pflag.String("sieve-host", "0.0.0.0:8080", "Host and port for the sieve server")
	pflag.String("api-jwt-key", "", "Secret key for API bearer tokens; empty disables auth")

	f := pflag.CommandLine
	normalizeFunc := f.GetNormalizeFunc()
	f.SetNormalizeFunc(func(fs *pflag.FlagSet, name string) pflag.NormalizedName {
		result := normalizeFunc(fs, name)
		name = strings.ReplaceAll(string(result), "-", "_")
		return pflag.NormalizedName(name)
	})
}

func LoadConfig() error {
	// Set default values
	viper.SetDefault("sieve_host", "0.0.0.0:8080")
	viper.SetDefault("data_folder", "./data")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// Parse command-line flags
	pflag.Parse()

	// Bind command-line flags to Viper
	viper.BindPFlags(pflag.CommandLine)

	// Bind environment variables
	viper.AutomaticEnv()

	// Read configuration file if specified
	configFile := viper.GetString("config")
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("sieve.conf")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc")
	}

	if err := viper.ReadInConfig(); err != nil {
		fmt.Printf("Using defaults and command line/environment options\n     (%v)\n", err)
	}

	// Unmarshal configuration into struct
	var cfg sieve.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("unable to decode into struct, %v", err)
	}

	// Ensure the data folder exists
	dataFolder := viper.GetString("data_folder")
	if _, err := os.Stat(dataFolder); os.IsNotExist(err) {
		if err := os.MkdirAll(dataFolder, os.ModePerm); err != nil {
			return fmt.Errorf("failed to create data folder: %v", err)
		}
	}

	fmt.Println("Configuration values:")
	fmt.Printf("Data Folder: %s\n", cfg.DataFolder)
	fmt.Printf("Host: %s\n", cfg.SieveHost)

	// Assign the loaded configuration to the global variable
	sieve.Configure(cfg)

	return nil
}
