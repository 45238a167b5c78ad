// Package env overlays process environment variables on a ConfigStore.
//
// Variables win over file values but are never written back: Set and Save
// go straight to the wrapped store.
package env

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/papermentor/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ConfigStore = (*Store)(nil)

// Config keys the overlay can supply.
const (
	keyEmbedProvider = "embedding.provider"
	keyEmbedModel    = "embedding.model"
	keyEmbedBaseURL  = "embedding.base_url"
	keyEmbedAPIKey   = "embedding.api_key"
	keyLLMProvider   = "llm.provider"
	keyLLMModel      = "llm.model"
	keyLLMBaseURL    = "llm.base_url"
	keyLLMAPIKey     = "llm.api_key"
	keyDBDirectory   = "pipeline.db_dir"
	keyMaxChunks     = "pipeline.max_chunks"
	keyBackend       = "storage.backend"
	keyChromaURL     = "storage.chroma_url"
	keyPostgresDSN   = "storage.postgres_dsn"
)

// Variables maps config keys to the environment variables that override them,
// in order of preference.
var Variables = map[string][]string{
	keyEmbedProvider: {"EMBEDDING_PROVIDER"},
	keyEmbedModel:    {"EMBEDDING_MODEL"},
	keyLLMProvider:   {"CHAT_PROVIDER"},
	keyLLMModel:      {"CHAT_MODEL"},
	keyDBDirectory:   {"PAPERMENTOR_DB_DIR", "CHROMA_DB_DIR"},
	keyMaxChunks:     {"MAX_EMBED_CHUNKS"},
	keyBackend:       {"PAPERMENTOR_VECTOR_BACKEND"},
	keyChromaURL:     {"CHROMA_URL"},
	keyPostgresDSN:   {"PGVECTOR_DSN"},
}

// defaultProvider is assumed when a section names no provider.
const defaultProvider = "openai"

// providerKeys holds the credential variable for each cloud provider.
var providerKeys = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"gemini":    "GEMINI_API_KEY",
}

// providerURLs holds the endpoint variable for providers that have one.
var providerURLs = map[string]string{
	"openai":    "OPENAI_BASE_URL",
	"ollama":    "OLLAMA_HOST",
	"langchain": "OLLAMA_HOST",
}

// LoadDotEnv reads .env files into the process environment.
// Existing variables are not overridden and missing files are ignored.
// With no paths it reads ./.env.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// Store reads environment overrides before falling back to a wrapped store.
type Store struct {
	base   driven.ConfigStore
	lookup func(string) (string, bool)
}

// Option configures a Store.
type Option func(*Store)

// WithLookup replaces os.LookupEnv.
func WithLookup(fn func(string) (string, bool)) Option {
	return func(s *Store) {
		s.lookup = fn
	}
}

// New wraps base with the environment overlay.
func New(base driven.ConfigStore, opts ...Option) *Store {
	s := &Store{base: base, lookup: os.LookupEnv}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the environment value for key when one is set.
func (s *Store) Get(key string) (any, bool) {
	if v, ok := s.override(key); ok {
		return v, true
	}
	return s.base.Get(key)
}

// GetString retrieves a string configuration value.
func (s *Store) GetString(key string) string {
	if v, ok := s.override(key); ok {
		return v
	}
	return s.base.GetString(key)
}

// GetInt retrieves an integer configuration value.
// An override that does not parse is ignored.
func (s *Store) GetInt(key string) int {
	if v, ok := s.override(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return s.base.GetInt(key)
}

// GetFloat retrieves a floating point configuration value.
func (s *Store) GetFloat(key string) float64 {
	if v, ok := s.override(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return s.base.GetFloat(key)
}

// GetBool retrieves a boolean configuration value.
func (s *Store) GetBool(key string) bool {
	if v, ok := s.override(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return s.base.GetBool(key)
}

// GetStringSlice retrieves a string slice configuration value.
// Overrides are comma separated.
func (s *Store) GetStringSlice(key string) []string {
	if v, ok := s.override(key); ok {
		parts := strings.Split(v, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return s.base.GetStringSlice(key)
}

// Set writes through to the wrapped store.
func (s *Store) Set(key string, value any) error {
	return s.base.Set(key, value)
}

// Save persists the wrapped store.
func (s *Store) Save() error {
	return s.base.Save()
}

// Load reloads the wrapped store.
func (s *Store) Load() error {
	return s.base.Load()
}

// Path returns the wrapped store's path.
func (s *Store) Path() string {
	return s.base.Path()
}

// Overridden lists the config keys currently supplied by the environment.
func (s *Store) Overridden() []string {
	keys := []string{
		keyEmbedProvider, keyEmbedModel, keyEmbedBaseURL, keyEmbedAPIKey,
		keyLLMProvider, keyLLMModel, keyLLMBaseURL, keyLLMAPIKey,
		keyDBDirectory, keyMaxChunks, keyBackend, keyChromaURL, keyPostgresDSN,
	}
	var out []string
	for _, k := range keys {
		if _, ok := s.override(k); ok {
			out = append(out, k)
		}
	}
	return out
}

// override resolves key against the environment. Credentials and endpoints
// depend on which provider the section selects.
func (s *Store) override(key string) (string, bool) {
	switch key {
	case keyEmbedAPIKey:
		return s.first(providerKeys[s.provider(keyEmbedProvider)])
	case keyLLMAPIKey:
		return s.first(providerKeys[s.provider(keyLLMProvider)])
	case keyEmbedBaseURL:
		return s.first(providerURLs[s.provider(keyEmbedProvider)])
	case keyLLMBaseURL:
		return s.first(providerURLs[s.provider(keyLLMProvider)])
	}
	return s.first(Variables[key]...)
}

// provider returns the provider selected by key, defaulting to OpenAI as the settings do.
func (s *Store) provider(key string) string {
	if p := s.GetString(key); p != "" {
		return p
	}
	return defaultProvider
}

// first returns the first non-empty variable among names.
func (s *Store) first(names ...string) (string, bool) {
	for _, name := range names {
		if name == "" {
			continue
		}
		if v, ok := s.lookup(name); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}
