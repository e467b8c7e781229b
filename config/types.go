// Package config provides configuration types for the AlphaSolve engine:
// per-role LLM provider settings, quota limits, tool-runtime settings, and
// the outer multi-worker orchestrator settings.
//
// Load (config.go) reads this structure from a YAML file, with env-var
// expansion (env.go), and ResolveAPIKey resolves a role's credential from
// the environment; the Orchestrator is constructed directly from a
// *Config value.
package config

import "fmt"

// RoleConfig is the per-role LLM provider configuration described in
// spec.md §6: {provider base URL, api-key resolver, model name, timeout,
// temperature, provider-specific extras, tool list}.
type RoleConfig struct {
	// Type selects the wire protocol: "openai" for an OpenAI-compatible
	// streaming chat-completions endpoint. Other values are rejected by
	// Validate — AlphaSolve's LLM Client speaks one protocol (spec.md §6).
	Type string `yaml:"type"`

	// Model is the model name sent in each request.
	Model string `yaml:"model"`

	// APIKeyEnv names the environment variable holding the API key. The
	// key itself is resolved at call time, never stored on this struct.
	APIKeyEnv string `yaml:"api_key_env"`

	// Host is the provider base URL.
	Host string `yaml:"host"`

	// Temperature is the sampling temperature, in [0, 2].
	Temperature float64 `yaml:"temperature"`

	// MaxTokens bounds the completion length.
	MaxTokens int `yaml:"max_tokens"`

	// TimeoutSeconds bounds one HTTP attempt (not the whole retry budget).
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// MaxRetries bounds the number of whole-call retries from baseline
	// messages (spec.md §4.4; default 8).
	MaxRetries int `yaml:"max_retries"`

	// Thinking enables the provider's extended-reasoning extra_body
	// parameter, when supported.
	Thinking bool `yaml:"thinking"`

	// Tools lists the tool names (from toolruntime's registered set) this
	// role's LLM Client should offer to the model by default.
	Tools []string `yaml:"tools,omitempty"`
}

// Validate implements ConfigInterface for RoleConfig.
func (c *RoleConfig) Validate() error {
	if c.Type == "" {
		return fmt.Errorf("config: role type is required")
	}
	if c.Type != "openai" {
		return fmt.Errorf("config: unsupported role type %q", c.Type)
	}
	if c.Model == "" {
		return fmt.Errorf("config: role model is required")
	}
	if c.Host == "" {
		return fmt.Errorf("config: role host is required")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("config: temperature must be between 0 and 2")
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("config: max_tokens must be non-negative")
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("config: timeout_seconds must be non-negative")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("config: max_retries must be non-negative")
	}
	return nil
}

// SetDefaults implements ConfigInterface for RoleConfig.
func (c *RoleConfig) SetDefaults() {
	if c.Type == "" {
		c.Type = "openai"
	}
	if c.Host == "" {
		c.Host = "https://api.openai.com/v1"
	}
	if c.Temperature == 0 {
		c.Temperature = 0.7
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 4096
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 120
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 8
	}
}

// QuotaConfig bounds the size of a single workflow run: how many lemmas the
// Solver may propose, and how many verify/refine cycles a single lemma may
// go through before being rejected.
type QuotaConfig struct {
	// MaxLemmaNum is MAX_LEMMA_NUM from spec.md §4.5/§4.9: once the lemma
	// list reaches this length, Solver.Prep returns EXAUSTED. SetDefaults
	// replaces zero with 20; a Solver built directly with zero never gets
	// to propose a lemma (spec.md §8 boundary case).
	MaxLemmaNum int `yaml:"max_lemma_num"`

	// ScalingFactor is the number of independent Verifier attempts per
	// judgement round, with first-invalid-wins short circuit (spec.md §4.6).
	ScalingFactor int `yaml:"scaling_factor"`

	// MaxVerifyAndRefineRound is MAX_VERIFY_AND_REFINE_ROUND from spec.md
	// §4.7: once a lemma's verify_round reaches this, Refiner rejects it
	// instead of attempting another edit.
	MaxVerifyAndRefineRound int `yaml:"max_verify_and_refine_round"`
}

// Validate implements ConfigInterface for QuotaConfig.
func (c *QuotaConfig) Validate() error {
	if c.MaxLemmaNum < 0 {
		return fmt.Errorf("config: max_lemma_num must be non-negative")
	}
	if c.ScalingFactor < 1 {
		return fmt.Errorf("config: scaling_factor must be at least 1")
	}
	if c.MaxVerifyAndRefineRound < 0 {
		return fmt.Errorf("config: max_verify_and_refine_round must be non-negative")
	}
	return nil
}

// SetDefaults implements ConfigInterface for QuotaConfig.
func (c *QuotaConfig) SetDefaults() {
	if c.MaxLemmaNum == 0 {
		c.MaxLemmaNum = 20
	}
	if c.ScalingFactor == 0 {
		c.ScalingFactor = 3
	}
	if c.MaxVerifyAndRefineRound == 0 {
		c.MaxVerifyAndRefineRound = 3
	}
}

// ToolRuntimeConfig bounds the sandboxed tool executions of spec.md §4.3.
type ToolRuntimeConfig struct {
	// PythonTimeoutSeconds bounds one run_python call (default 300s).
	PythonTimeoutSeconds int `yaml:"python_timeout_seconds"`

	// BannedPythonImports lists module names (and their submodules) that
	// the static scan of run_python code rejects in import statements. The
	// interpreter's runtime import guard blocks matplotlib and pylab only,
	// whatever this list holds. Defaults to {"matplotlib", "pylab"} per
	// spec.md §4.3.
	BannedPythonImports []string `yaml:"banned_python_imports,omitempty"`

	// WolframTimeoutSeconds bounds one run_wolfram evaluation (default 300s).
	WolframTimeoutSeconds int `yaml:"wolfram_timeout_seconds"`

	// WolframKernelPath, when set, is the first kernel executable
	// NewWolframSession tries, ahead of the WOLFRAM_KERNEL_PATH environment
	// variable and the built-in paths. It has no YAML key; Load leaves it
	// empty.
	WolframKernelPath string `yaml:"-"`
}

// Validate implements ConfigInterface for ToolRuntimeConfig.
func (c *ToolRuntimeConfig) Validate() error {
	if c.PythonTimeoutSeconds < 0 {
		return fmt.Errorf("config: python_timeout_seconds must be non-negative")
	}
	if c.WolframTimeoutSeconds < 0 {
		return fmt.Errorf("config: wolfram_timeout_seconds must be non-negative")
	}
	return nil
}

// SetDefaults implements ConfigInterface for ToolRuntimeConfig.
func (c *ToolRuntimeConfig) SetDefaults() {
	if c.PythonTimeoutSeconds == 0 {
		c.PythonTimeoutSeconds = 300
	}
	if c.WolframTimeoutSeconds == 0 {
		c.WolframTimeoutSeconds = 300
	}
	if len(c.BannedPythonImports) == 0 {
		c.BannedPythonImports = []string{"matplotlib", "pylab"}
	}
}

// SharingMode selects how the outer orchestrator's worker replicas relate
// to the lemma pool (spec.md §4.10).
type SharingMode string

// Recognized SharingMode values.
const (
	// SharingSharedByAll means every worker appends into one lemma.Graph
	// instance shared across the whole round.
	SharingSharedByAll SharingMode = "shared-by-all"
	// SharingPrivate means each worker starts from its own private copy
	// of the lemma pool as it stood at round start.
	SharingPrivate SharingMode = "private"
)

// OrchestratorConfig bounds the outer multi-worker orchestration of
// spec.md §4.10.
type OrchestratorConfig struct {
	// Workers is the bounded worker pool size W.
	Workers int `yaml:"workers"`

	// IterationNum is the number of rounds the orchestrator will run
	// before giving up.
	IterationNum int `yaml:"iteration_num"`

	// Sharing selects the lemma pool sharing mode.
	Sharing SharingMode `yaml:"sharing"`

	// LogDir is the directory one structured log file per worker is
	// written into (spec.md §6).
	LogDir string `yaml:"log_dir"`
}

// Validate implements ConfigInterface for OrchestratorConfig.
func (c *OrchestratorConfig) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("config: workers must be at least 1")
	}
	if c.IterationNum < 1 {
		return fmt.Errorf("config: iteration_num must be at least 1")
	}
	switch c.Sharing {
	case SharingSharedByAll, SharingPrivate:
	default:
		return fmt.Errorf("config: unknown sharing mode %q", c.Sharing)
	}
	return nil
}

// SetDefaults implements ConfigInterface for OrchestratorConfig.
func (c *OrchestratorConfig) SetDefaults() {
	if c.Workers == 0 {
		c.Workers = 4
	}
	if c.IterationNum == 0 {
		c.IterationNum = 1
	}
	if c.Sharing == "" {
		c.Sharing = SharingSharedByAll
	}
	if c.LogDir == "" {
		c.LogDir = "./logs"
	}
}

// Config is the complete engine configuration: one RoleConfig per agentic
// role, quotas, tool-runtime limits, and orchestrator shape.
type Config struct {
	Solver      RoleConfig        `yaml:"solver"`
	Verifier    RoleConfig        `yaml:"verifier"`
	Refiner     RoleConfig        `yaml:"refiner"`
	Summarizer  RoleConfig        `yaml:"summarizer"`
	Subagent    RoleConfig        `yaml:"subagent"`
	Quota       QuotaConfig       `yaml:"quota"`
	ToolRuntime ToolRuntimeConfig `yaml:"tool_runtime"`
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`
}

// Validate validates every sub-configuration.
func (c *Config) Validate() error {
	for name, role := range map[string]*RoleConfig{
		"solver": &c.Solver, "verifier": &c.Verifier, "refiner": &c.Refiner,
		"summarizer": &c.Summarizer, "subagent": &c.Subagent,
	} {
		if err := role.Validate(); err != nil {
			return fmt.Errorf("config: %s: %w", name, err)
		}
	}
	if err := c.Quota.Validate(); err != nil {
		return err
	}
	if err := c.ToolRuntime.Validate(); err != nil {
		return err
	}
	return c.Orchestrator.Validate()
}

// SetDefaults applies SetDefaults to every sub-configuration.
func (c *Config) SetDefaults() {
	c.Solver.SetDefaults()
	c.Verifier.SetDefaults()
	c.Refiner.SetDefaults()
	c.Summarizer.SetDefaults()
	c.Subagent.SetDefaults()
	c.Quota.SetDefaults()
	c.ToolRuntime.SetDefaults()
	c.Orchestrator.SetDefaults()
}
