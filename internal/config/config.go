package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"dahaonode/internal/types"
)

// Config holds all governance node configuration.
type Config struct {
	// Node identity and behaviour
	Node NodeConfig `yaml:"node"`

	// Local checkouts of the fork and main repositories
	Paths PathsConfig `yaml:"paths"`

	// Discussion store
	GitHub GitHubConfig `yaml:"github"`

	// Oracle providers, tried in order: Gemini, OpenAI, Anthropic
	LLM LLMConfig `yaml:"llm"`
}

// NodeConfig identifies the node and selects its action mode.
type NodeConfig struct {
	Name          string `yaml:"name"`
	WalletAddress string `yaml:"wallet_address"`
	ActionMode    string `yaml:"action_mode"` // auto, vote_only, respond, propose
	// MinVotesQuorum is carried for governance tooling; the node never checks quorum.
	MinVotesQuorum int `yaml:"min_votes_quorum"`
}

// PathsConfig locates the value files and the run log.
type PathsConfig struct {
	Fork   string `yaml:"fork"`
	Main   string `yaml:"main"`
	LogDir string `yaml:"log_dir"`
}

// GitHubConfig configures the GitHub Discussions store.
type GitHubConfig struct {
	Repo     string `yaml:"repo"` // owner/name
	Token    string `yaml:"token"`
	Endpoint string `yaml:"endpoint"`
	Category string `yaml:"category"`
	Timeout  string `yaml:"timeout"`
}

// LLMConfig configures the oracle providers. A provider without a key is skipped.
type LLMConfig struct {
	GeminiAPIKey    string `yaml:"gemini_api_key"`
	GeminiModel     string `yaml:"gemini_model"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`
	OpenAIModel     string `yaml:"openai_model"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	AnthropicModel  string `yaml:"anthropic_model"`
	Timeout         string `yaml:"timeout"`
}

// Default timeouts per call. There is no retry.
const (
	DefaultLLMTimeout   = 60 * time.Second
	DefaultStoreTimeout = 30 * time.Second
)

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Node: NodeConfig{
			Name:           "Anonymous Node",
			ActionMode:     string(types.ModeAuto),
			MinVotesQuorum: 3,
		},
		Paths: PathsConfig{
			Fork:   "./fork",
			Main:   "./main",
			LogDir: ".",
		},
		GitHub: GitHubConfig{
			Repo:     "dahao-org/glitch-economy-simulation",
			Endpoint: "https://api.github.com/graphql",
			Category: "General",
			Timeout:  "30s",
		},
		LLM: LLMConfig{
			GeminiModel:    "gemini-2.0-flash-exp",
			OpenAIModel:    "gpt-4o-mini",
			AnthropicModel: "claude-3-haiku-20240307",
			Timeout:        "60s",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, optional
// dotenv files and the process environment, in increasing precedence.
// A missing YAML file or dotenv file is not an error.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case os.IsNotExist(err):
			// Defaults stand in for a missing file
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	cfg.applyEnvOverrides(newEnvLookup(envFiles))

	return cfg, nil
}

// envLookup resolves a variable from the process environment first, then dotenv files.
type envLookup func(key string) string

func newEnvLookup(envFiles []string) envLookup {
	dotenv := make(map[string]string)
	for _, f := range envFiles {
		vars, err := godotenv.Read(f)
		if err != nil {
			continue
		}
		for k, v := range vars {
			if _, seen := dotenv[k]; !seen {
				dotenv[k] = v
			}
		}
	}
	return func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	}
}

func (c *Config) applyEnvOverrides(env envLookup) {
	set := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := env(k); v != "" {
				*dst = v
				return
			}
		}
	}

	// Paths
	set(&c.Paths.Fork, "FORK_PATH")
	set(&c.Paths.Main, "MAIN_PATH")
	set(&c.Paths.LogDir, "LOG_DIR")

	// GitHub
	set(&c.GitHub.Repo, "MAIN_REPO")
	set(&c.GitHub.Token, "GITHUB_TOKEN", "GH_PAT")

	// LLM API keys
	set(&c.LLM.GeminiAPIKey, "GEMINI_API_KEY")
	set(&c.LLM.GeminiModel, "GEMINI_MODEL")
	set(&c.LLM.OpenAIAPIKey, "OPENAI_API_KEY")
	set(&c.LLM.AnthropicAPIKey, "ANTHROPIC_API_KEY")

	// Node identity
	set(&c.Node.Name, "NODE_NAME")
	set(&c.Node.WalletAddress, "WALLET_ADDRESS")
	set(&c.Node.ActionMode, "ACTION_MODE")
}

// Mode returns the parsed action mode.
func (c *Config) Mode() (types.Mode, error) {
	return types.ParseMode(c.Node.ActionMode)
}

// RepoOwnerName splits GitHub.Repo into owner and name.
func (c *Config) RepoOwnerName() (owner, name string, err error) {
	parts := strings.Split(c.GitHub.Repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository %q (expected owner/name)", c.GitHub.Repo)
	}
	return parts[0], parts[1], nil
}

// GetLLMTimeout returns the per-call oracle timeout.
func (c *Config) GetLLMTimeout() time.Duration {
	return parseDuration(c.LLM.Timeout, DefaultLLMTimeout)
}

// GetStoreTimeout returns the per-call discussion store timeout.
func (c *Config) GetStoreTimeout() time.Duration {
	return parseDuration(c.GitHub.Timeout, DefaultStoreTimeout)
}

// HasLLMProvider reports whether any oracle provider has a key.
func (c *Config) HasLLMProvider() bool {
	return c.LLM.GeminiAPIKey != "" || c.LLM.OpenAIAPIKey != "" || c.LLM.AnthropicAPIKey != ""
}

// Validate checks the fields the node cannot run without a sane value for.
// Missing credentials are not validation errors: the run reports them itself.
func (c *Config) Validate() error {
	if _, _, err := c.RepoOwnerName(); err != nil {
		return err
	}
	if _, err := c.Mode(); err != nil {
		return err
	}
	for name, raw := range map[string]string{"llm.timeout": c.LLM.Timeout, "github.timeout": c.GitHub.Timeout} {
		if raw == "" {
			continue
		}
		if d, err := time.ParseDuration(raw); err != nil || d <= 0 {
			return fmt.Errorf("invalid %s %q", name, raw)
		}
	}
	return nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
