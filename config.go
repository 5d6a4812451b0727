package main

import (
	"os"
	"path/filepath"

	"github.com/heshanpadmasiri/phpast/php"
	"github.com/heshanpadmasiri/phpast/phpast"
	"github.com/pelletier/go-toml/v2"
)

// config represents the conversion settings read from Config.toml
type config struct {
	ASTVersion   int    `toml:"ast_version"`
	Placeholders bool   `toml:"placeholders"`
	Strict       bool   `toml:"strict"`
	Format       string `toml:"format"`
	LineNumbers  bool   `toml:"line_numbers"`
	Color        bool   `toml:"color"`
}

func defaultConfig() config {
	return config{
		ASTVersion:  phpast.Version,
		Format:      phpast.FormatText,
		LineNumbers: true,
		Color:       true,
	}
}

// loadConfig loads settings from Config.toml in the working directory.
// Keys absent from the file keep their defaults.
func loadConfig() config {
	c := defaultConfig()

	wd, err := os.Getwd()
	if err != nil {
		return c
	}

	data, err := os.ReadFile(filepath.Join(wd, "Config.toml"))
	if err != nil {
		// Config file doesn't exist, return defaults
		return c
	}

	fileConfig := defaultConfig()
	if err := toml.Unmarshal(data, &fileConfig); err != nil {
		// Invalid TOML, return defaults
		return c
	}
	if fileConfig.Format == "" {
		fileConfig.Format = c.Format
	}
	if fileConfig.ASTVersion == 0 {
		fileConfig.ASTVersion = c.ASTVersion
	}
	return fileConfig
}

func (c config) options() php.Options {
	opts := php.DefaultOptions()
	opts.Version = c.ASTVersion
	opts.Placeholders = c.Placeholders
	opts.Strict = c.Strict
	return opts
}

func (c config) dumpOptions() phpast.DumpOptions {
	return phpast.DumpOptions{LineNumbers: c.LineNumbers}
}
