package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/manifoldco/promptui"
)

// defaultModels maps a provider to its suggested chat and embedding models.
var defaultModels = map[ProviderType]struct {
	Model          string
	EmbeddingModel string
}{
	ProviderOpenAI: {Model: "gpt-4o-mini", EmbeddingModel: "text-embedding-3-small"},
	ProviderOllama: {Model: "llama3", EmbeddingModel: "nomic-embed-text"},
}

// RunWizard runs an interactive configuration wizard, saves the result to
// the given path, and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to notesmith! Let's set up your notes index.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Notes directories.
	notesPrompt := promptui.Prompt{
		Label:   "Notes directories (comma-separated)",
		Default: suggestNotesDir(),
		Validate: func(s string) error {
			if len(splitAndTrim(s)) == 0 {
				return fmt.Errorf("at least one directory is required")
			}
			return nil
		},
	}
	notesStr, err := notesPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("notes directories: %w", err)
	}
	cfg.NotesDirs = splitAndTrim(notesStr)

	// 2. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select model provider",
		Items: []string{"openai", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	provider := ProviderType(providerStr)
	models := defaultModels[provider]
	cfg.Provider = provider
	cfg.EmbeddingProvider = provider
	cfg.Model = models.Model
	cfg.EmbeddingModel = models.EmbeddingModel

	// 3. Chat model override.
	modelPrompt := promptui.Prompt{
		Label:   "Chat model",
		Default: models.Model,
	}
	if model, err := modelPrompt.Run(); err == nil && model != "" {
		cfg.Model = model
	}

	// 4. Data directory.
	dataPrompt := promptui.Prompt{
		Label:   "Data directory",
		Default: cfg.DataDir,
	}
	dataDir, err := dataPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data directory: %w", err)
	}
	cfg.DataDir = dataDir

	if envVar := APIKeyEnvVar(provider); envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: set %s in your environment before running notesmith sync.\n", envVar)
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

// suggestNotesDir proposes a starting notes directory.
func suggestNotesDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "notes"
	}
	return filepath.Join(home, "notes")
}

// splitAndTrim splits a comma-separated string and drops empty entries.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
