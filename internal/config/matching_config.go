package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

type MatchingConfig struct {
	WeightTitle       int     `mapstructure:"weight_title"`
	WeightLocation    int     `mapstructure:"weight_location"`
	WeightDescription int     `mapstructure:"weight_description"`
	CandidateLimit    int     `mapstructure:"candidate_limit"`
	ScoreThreshold    float64 `mapstructure:"score_threshold"`
}

func (config MatchingConfig) validate() error {
	var errs []error

	if config.WeightTitle <= 0 {
		errs = append(errs, fmt.Errorf("weight_title must be greater than zero"))
	}
	if config.WeightLocation < 0 {
		errs = append(errs, fmt.Errorf("weight_location must not be negative"))
	}
	if config.WeightDescription < 0 {
		errs = append(errs, fmt.Errorf("weight_description must not be negative"))
	}
	if config.CandidateLimit <= 0 {
		errs = append(errs, fmt.Errorf("candidate_limit must be greater than zero"))
	}
	if config.ScoreThreshold < 0 || config.ScoreThreshold > 1 {
		errs = append(errs, fmt.Errorf("score_threshold must be between 0 and 1"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config MatchingConfig) bindEnvironmentVariables() error {

	err := viper.BindEnv("matching.weight_title", "MATCHING_WEIGHT_TITLE")
	if err != nil {
		return err
	}

	err = viper.BindEnv("matching.weight_location", "MATCHING_WEIGHT_LOCATION")
	if err != nil {
		return err
	}

	err = viper.BindEnv("matching.weight_description", "MATCHING_WEIGHT_DESCRIPTION")
	if err != nil {
		return err
	}

	err = viper.BindEnv("matching.candidate_limit", "MATCHING_CANDIDATE_LIMIT")
	if err != nil {
		return err
	}

	return viper.BindEnv("matching.score_threshold", "MATCHING_SCORE_THRESHOLD")
}
