/*
Package config manages the TOML config for shohayok.

The file is created with defaults when missing. A file that fails to
decode as a whole is recovered section by section, so one bad value only
resets that value.
*/
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/bastiangx/shohayok/internal/utils"
	"github.com/charmbracelet/log"
)

// FileName is the config file looked up in the config dir.
const FileName = "config.toml"

// Config holds the entire config structure
type Config struct {
	Lexicon   LexiconConfig   `toml:"lexicon"`
	Match     MatchConfig     `toml:"match"`
	OCR       OCRConfig       `toml:"ocr"`
	Dictation DictationConfig `toml:"dictation"`
	Server    ServerConfig    `toml:"server"`
	CLI       CliConfig       `toml:"cli"`
}

// LexiconConfig points at the flat word and sentence lists.
type LexiconConfig struct {
	WordsPath     string `toml:"words_path"`
	SentencesPath string `toml:"sentences_path"`
}

// MatchConfig tunes the fuzzy matcher.
type MatchConfig struct {
	Algorithm      string  `toml:"algorithm"`
	WordCutoff     float64 `toml:"word_cutoff"`
	SentenceCutoff float64 `toml:"sentence_cutoff"`
	MaxResults     int     `toml:"max_results"`
}

// OCRConfig holds image import options.
type OCRConfig struct {
	Languages    []string `toml:"languages"`
	Preprocess   bool     `toml:"preprocess"`
	Threshold    int      `toml:"threshold"`
	InlineErrors bool     `toml:"inline_errors"`
}

// DictationConfig holds microphone and speech service options.
type DictationConfig struct {
	Language           string `toml:"language"`
	TimeoutSeconds     int    `toml:"timeout_seconds"`
	PhraseLimitSeconds int    `toml:"phrase_limit_seconds"`
	StopKeyword        string `toml:"stop_keyword"`
	SampleRate         int    `toml:"sample_rate"`
	Model              string `toml:"model"`
	BaseURL            string `toml:"base_url"`
	APIKey             string `toml:"api_key"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	MaxLimit     int  `toml:"max_limit"`
	EnableFilter bool `toml:"enable_filter"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultLimit int  `toml:"default_limit"`
	ShowScores   bool `toml:"show_scores"`
}

// Timeout returns the per-utterance wait.
func (d DictationConfig) Timeout() time.Duration {
	return time.Duration(d.TimeoutSeconds) * time.Second
}

// PhraseLimit returns the maximum length of one utterance.
func (d DictationConfig) PhraseLimit() time.Duration {
	return time.Duration(d.PhraseLimitSeconds) * time.Second
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/
// 2. ~/Library/Application Support/ (macOS)
// 3. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}
	primaryPath := filepath.Join(homeDir, ".config", "shohayok")
	if utils.WritableDir(primaryPath) {
		return primaryPath, nil
	}
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "shohayok")
	if utils.WritableDir(macOSPath) {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, FileName), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from -config flag
// 2. Default path: [UserConfigDir]/shohayok/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Lexicon: LexiconConfig{
			WordsPath:     utils.WordsFile,
			SentencesPath: utils.SentencesFile,
		},
		Match: MatchConfig{
			Algorithm:      "ratcliff",
			WordCutoff:     0.6,
			SentenceCutoff: 0.3,
			MaxResults:     5,
		},
		OCR: OCRConfig{
			Languages:    []string{"ben", "eng"},
			Preprocess:   false,
			InlineErrors: true,
		},
		Dictation: DictationConfig{
			Language:           "bn-BD",
			TimeoutSeconds:     5,
			PhraseLimitSeconds: 15,
			StopKeyword:        "stop",
			SampleRate:         16000,
			Model:              "whisper-1",
		},
		Server: ServerConfig{
			MaxLimit:     64,
			EnableFilter: true,
		},
		CLI: CliConfig{
			DefaultLimit: 5,
			ShowScores:   false,
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	config.sanitize()
	return config, nil
}

// tryPartialParse attempts to parse a TOML file
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "lexicon"); ok {
		extractLexiconConfig(section, &config.Lexicon)
	}
	if section, ok := utils.ExtractSection(tempConfig, "match"); ok {
		extractMatchConfig(section, &config.Match)
	}
	if section, ok := utils.ExtractSection(tempConfig, "ocr"); ok {
		extractOCRConfig(section, &config.OCR)
	}
	if section, ok := utils.ExtractSection(tempConfig, "dictation"); ok {
		extractDictationConfig(section, &config.Dictation)
	}
	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(section, &config.CLI)
	}
	config.sanitize()
	return config, nil
}

func extractLexiconConfig(data map[string]any, lex *LexiconConfig) {
	if val, ok := utils.ExtractString(data, "words_path"); ok {
		lex.WordsPath = val
	}
	if val, ok := utils.ExtractString(data, "sentences_path"); ok {
		lex.SentencesPath = val
	}
}

func extractMatchConfig(data map[string]any, match *MatchConfig) {
	if val, ok := utils.ExtractString(data, "algorithm"); ok {
		match.Algorithm = val
	}
	if val, ok := utils.ExtractFloat(data, "word_cutoff"); ok {
		match.WordCutoff = val
	}
	if val, ok := utils.ExtractFloat(data, "sentence_cutoff"); ok {
		match.SentenceCutoff = val
	}
	if val, ok := utils.ExtractInt64(data, "max_results"); ok {
		match.MaxResults = val
	}
}

func extractOCRConfig(data map[string]any, ocr *OCRConfig) {
	if val, ok := utils.ExtractStringSlice(data, "languages"); ok {
		ocr.Languages = val
	}
	if val, ok := utils.ExtractBool(data, "preprocess"); ok {
		ocr.Preprocess = val
	}
	if val, ok := utils.ExtractInt64(data, "threshold"); ok {
		ocr.Threshold = val
	}
	if val, ok := utils.ExtractBool(data, "inline_errors"); ok {
		ocr.InlineErrors = val
	}
}

func extractDictationConfig(data map[string]any, d *DictationConfig) {
	if val, ok := utils.ExtractString(data, "language"); ok {
		d.Language = val
	}
	if val, ok := utils.ExtractInt64(data, "timeout_seconds"); ok {
		d.TimeoutSeconds = val
	}
	if val, ok := utils.ExtractInt64(data, "phrase_limit_seconds"); ok {
		d.PhraseLimitSeconds = val
	}
	if val, ok := utils.ExtractString(data, "stop_keyword"); ok {
		d.StopKeyword = val
	}
	if val, ok := utils.ExtractInt64(data, "sample_rate"); ok {
		d.SampleRate = val
	}
	if val, ok := utils.ExtractString(data, "model"); ok {
		d.Model = val
	}
	if val, ok := utils.ExtractString(data, "base_url"); ok {
		d.BaseURL = val
	}
	if val, ok := utils.ExtractString(data, "api_key"); ok {
		d.APIKey = val
	}
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_limit"); ok {
		server.MaxLimit = val
	}
	if val, ok := utils.ExtractBool(data, "enable_filter"); ok {
		server.EnableFilter = val
	}
}

func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		cli.DefaultLimit = val
	}
	if val, ok := utils.ExtractBool(data, "show_scores"); ok {
		cli.ShowScores = val
	}
}

// maxSuggestions is the longest suggestion list the editor shows.
const maxSuggestions = 5

// sanitize puts out-of-range values back to their defaults.
func (c *Config) sanitize() {
	def := DefaultConfig()
	if c.Match.WordCutoff < 0 || c.Match.WordCutoff > 1 {
		log.Warnf("match.word_cutoff %v outside [0,1], using %v", c.Match.WordCutoff, def.Match.WordCutoff)
		c.Match.WordCutoff = def.Match.WordCutoff
	}
	if c.Match.SentenceCutoff < 0 || c.Match.SentenceCutoff > 1 {
		log.Warnf("match.sentence_cutoff %v outside [0,1], using %v", c.Match.SentenceCutoff, def.Match.SentenceCutoff)
		c.Match.SentenceCutoff = def.Match.SentenceCutoff
	}
	if c.Match.MaxResults < 1 || c.Match.MaxResults > maxSuggestions {
		log.Warnf("match.max_results %d outside [1,%d], using %d", c.Match.MaxResults, maxSuggestions, def.Match.MaxResults)
		c.Match.MaxResults = def.Match.MaxResults
	}
	if c.Match.Algorithm == "" {
		c.Match.Algorithm = def.Match.Algorithm
	}
	if c.OCR.Threshold < 0 || c.OCR.Threshold > 255 {
		log.Warnf("Invalid ocr threshold %d, binarization disabled", c.OCR.Threshold)
		c.OCR.Threshold = 0
	}
	if len(c.OCR.Languages) == 0 {
		c.OCR.Languages = def.OCR.Languages
	}
	if c.Dictation.TimeoutSeconds < 1 {
		c.Dictation.TimeoutSeconds = def.Dictation.TimeoutSeconds
	}
	if c.Dictation.PhraseLimitSeconds < 1 {
		c.Dictation.PhraseLimitSeconds = def.Dictation.PhraseLimitSeconds
	}
	if c.Dictation.SampleRate < 8000 {
		c.Dictation.SampleRate = def.Dictation.SampleRate
	}
	if c.Server.MaxLimit < 1 {
		c.Server.MaxLimit = def.Server.MaxLimit
	}
	if c.CLI.DefaultLimit < 1 {
		c.CLI.DefaultLimit = def.CLI.DefaultLimit
	}
}

// ResolveLexiconPaths joins relative lexicon paths onto dataDir.
func (c *Config) ResolveLexiconPaths(dataDir string) (words, sentences string) {
	join := func(p string) string {
		if p == "" || filepath.IsAbs(p) || dataDir == "" {
			return p
		}
		return filepath.Join(dataDir, p)
	}
	return join(c.Lexicon.WordsPath), join(c.Lexicon.SentencesPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// Update changes the matcher values and saves to file
func (c *Config) Update(configPath string, maxResults *int, wordCutoff, sentenceCutoff *float64) error {
	if maxResults != nil {
		c.Match.MaxResults = *maxResults
	}
	if wordCutoff != nil {
		c.Match.WordCutoff = *wordCutoff
	}
	if sentenceCutoff != nil {
		c.Match.SentenceCutoff = *sentenceCutoff
	}
	c.sanitize()
	return SaveConfig(c, configPath)
}
