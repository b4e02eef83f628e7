package config

import (
	"io"
	"os"

	"github.com/kiryu-dev/crossword/internal/domain"
	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	TcpAddr string `yaml:"tcp_addr"`
	WsAddr  string `yaml:"ws_addr"`
}

type LogConfig struct {
	Level zapcore.Level `yaml:"level"`
}

type config struct {
	Server     ServerConfig    `yaml:"server"`
	PuzzlesDir string          `yaml:"puzzles_dir"`
	Protocol   domain.Protocol `yaml:"protocol"`
	Log        LogConfig       `yaml:"log"`
}

func defaults() config {
	return config{
		Server: ServerConfig{
			TcpAddr: ":4444",
			WsAddr:  ":8080",
		},
		PuzzlesDir: "./puzzles",
		Protocol:   domain.DefaultProtocol(),
		Log:        LogConfig{Level: zapcore.InfoLevel},
	}
}

// New reads the YAML file at cfgPath on top of the defaults. Fields absent from the
// file keep their default values, and an empty file yields the defaults.
func New(cfgPath string) (config, error) {
	file, err := os.Open(cfgPath)
	if err != nil {
		return config{}, err
	}
	defer func() {
		_ = file.Close()
	}()
	cfg := defaults()
	if err := yaml.NewDecoder(file).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return config{}, errors.WithMessage(err, "decode config")
	}
	if err := cfg.Protocol.Validate(); err != nil {
		return config{}, err
	}
	return cfg, nil
}
