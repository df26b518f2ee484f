// Package profiles loads named workspace-settings presets from a TOML file.
// A missing file yields just the built-in default profile.
package profiles

import (
	"errors"
	"fmt"
	"os"

	"github.com/kvist-dev/guestpass/internal/domain"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	currentSchemaVersion = 1

	// DefaultProfile always exists, even without a profiles file.
	DefaultProfile = "default"
)

type fileSchema struct {
	Version  int                      `toml:"version"`
	Profiles map[string]profileSchema `toml:"profiles"`
}

type profileSchema struct {
	SimilarityThreshold  *float64 `toml:"similarity_threshold"`
	OpenAITemp           *float64 `toml:"open_ai_temp"`
	OpenAIHistory        *int     `toml:"open_ai_history"`
	SystemPrompt         *string  `toml:"system_prompt"`
	QueryRefusalResponse *string  `toml:"query_refusal_response"`
	ChatMode             *string  `toml:"chat_mode"`
	TopN                 *int     `toml:"top_n"`
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported profiles schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

// Set holds the loaded presets.
type Set struct {
	profiles map[string]profileSchema
}

func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Set{profiles: map[string]profileSchema{}}, nil
		}
		return nil, fmt.Errorf("read profiles file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode profiles file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return nil, err
	}
	if file.Profiles == nil {
		file.Profiles = map[string]profileSchema{}
	}

	return &Set{profiles: file.Profiles}, nil
}

// Settings resolves a profile by name. Unset fields fall back to the
// workspace defaults, so a profile only needs to name what it overrides.
func (s *Set) Settings(name string) (domain.WorkspaceSettings, error) {
	settings := domain.DefaultWorkspaceSettings()

	profile, ok := s.profiles[name]
	if !ok {
		if name == DefaultProfile {
			return settings, nil
		}
		return domain.WorkspaceSettings{}, fmt.Errorf("workspace profile %q not found", name)
	}

	if profile.SimilarityThreshold != nil {
		settings.SimilarityThreshold = *profile.SimilarityThreshold
	}
	if profile.OpenAITemp != nil {
		settings.OpenAITemp = *profile.OpenAITemp
	}
	if profile.OpenAIHistory != nil {
		settings.OpenAIHistory = *profile.OpenAIHistory
	}
	if profile.SystemPrompt != nil {
		settings.OpenAIPrompt = *profile.SystemPrompt
	}
	if profile.QueryRefusalResponse != nil {
		settings.QueryRefusalResponse = *profile.QueryRefusalResponse
	}
	if profile.ChatMode != nil {
		settings.ChatMode = *profile.ChatMode
	}
	if profile.TopN != nil {
		settings.TopN = *profile.TopN
	}

	return settings, nil
}

// Names lists the profiles defined in the file, not counting the implicit
// default.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.profiles))
	for name := range s.profiles {
		names = append(names, name)
	}

	return names
}
