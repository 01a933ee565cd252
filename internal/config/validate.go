package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDeepgram(); err != nil {
		return err
	}
	if err := c.validateElevenLabs(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDeepgram() error {
	if c.Deepgram.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/dubstudio/config.toml"
		}
		return fmt.Errorf("deepgram.api_key is required. Set DEEPGRAM_API_KEY env var or edit %s (create with 'dubstudio config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateElevenLabs() error {
	if c.ElevenLabs.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/dubstudio/config.toml"
		}
		return fmt.Errorf("elevenlabs.api_key is required. Set ELEVENLABS_API_KEY env var or edit %s (create with 'dubstudio config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.StageTimeoutSeconds > c.Workflow.SessionTimeoutSeconds {
		return errors.New("workflow.stage_timeout must not exceed workflow.session_timeout")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
