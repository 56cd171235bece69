package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

type PipelineConfig struct {
	RawDataDir       string `mapstructure:"raw_data_dir"`
	ProcessedDataDir string `mapstructure:"processed_data_dir"`
	ResourcesDir     string `mapstructure:"resources_dir"`
	ChunkSize        int    `mapstructure:"chunk_size"`
	Workers          int    `mapstructure:"workers"`
	Cron             string `mapstructure:"cron"`
}

func (config PipelineConfig) validate() error {
	var errs []error

	if config.RawDataDir == "" {
		errs = append(errs, fmt.Errorf("missing variable: raw_data_dir"))
	}
	if config.ProcessedDataDir == "" {
		errs = append(errs, fmt.Errorf("missing variable: processed_data_dir"))
	}
	if config.ResourcesDir == "" {
		errs = append(errs, fmt.Errorf("missing variable: resources_dir"))
	}
	if config.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("chunk_size must be greater than zero"))
	}
	if config.Workers <= 0 {
		errs = append(errs, fmt.Errorf("workers must be greater than zero"))
	}
	if config.Cron == "" {
		errs = append(errs, fmt.Errorf("missing variable: cron"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config PipelineConfig) bindEnvironmentVariables() error {

	err := viper.BindEnv("pipeline.raw_data_dir", "RAW_DATA_DIR")
	if err != nil {
		return err
	}

	err = viper.BindEnv("pipeline.processed_data_dir", "PROCESSED_DATA_DIR")
	if err != nil {
		return err
	}

	err = viper.BindEnv("pipeline.resources_dir", "RESOURCES_DIR")
	if err != nil {
		return err
	}

	err = viper.BindEnv("pipeline.chunk_size", "PIPELINE_CHUNK_SIZE")
	if err != nil {
		return err
	}

	err = viper.BindEnv("pipeline.workers", "PIPELINE_WORKERS")
	if err != nil {
		return err
	}

	return viper.BindEnv("pipeline.cron", "PIPELINE_CRON")
}
