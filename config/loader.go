package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/eurekaclient/logger"
)

// FileSystem abstracts the file operations the loader needs.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// OSFileSystem implements FileSystem on the local disk.
type OSFileSystem struct{}

func (OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (OSFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Resolver finds the config and env files for a service.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths.
// Empty fields mean nothing was found.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns the explicit paths from opts when set and searches
// the standard locations otherwise.
func (r *Resolver) ResolveFiles(serviceName string, opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{ConfigFile: opts.ConfigFile, EnvFile: opts.EnvFile}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = r.first(configCandidates(serviceName))
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = r.first(envCandidates(serviceName))
	}
	return resolved
}

func (r *Resolver) first(paths []string) string {
	for _, p := range paths {
		if r.FileSystem.Exists(p) {
			return p
		}
	}
	return ""
}

// configCandidates lists config.yml locations, most specific first.
// "eureka-agent" also matches cmd/agent.
func configCandidates(serviceName string) []string {
	names := serviceNames(serviceName)
	paths := make([]string, 0, 3*len(names)+3)
	for _, dir := range []string{".", "..", "../.."} {
		for _, n := range names {
			paths = append(paths, fmt.Sprintf("%s/cmd/%s/config.yml", dir, n))
		}
	}
	return append(paths, "./config/config.yml", "../config/config.yml", "./config.yml")
}

func envCandidates(serviceName string) []string {
	var paths []string
	for _, file := range []string{".env." + serviceName, ".env"} {
		for _, n := range serviceNames(serviceName) {
			for _, dir := range []string{".", "..", "../.."} {
				paths = append(paths, fmt.Sprintf("%s/cmd/%s/%s", dir, n, file))
			}
		}
		paths = append(paths, "./config/"+file, "./"+file, "../"+file)
	}
	return paths
}

func serviceNames(serviceName string) []string {
	if idx := strings.LastIndex(serviceName, "-"); idx != -1 && idx < len(serviceName)-1 {
		return []string{serviceName, serviceName[idx+1:]}
	}
	return []string{serviceName}
}

// LoaderConfig holds dependencies and optional overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
	// EnvPrefix restricts environment overrides to variables starting with
	// PREFIX_. The prefix is stripped before mapping to a key.
	EnvPrefix string
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithEnvPrefix only applies environment variables carrying prefix.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvPrefix = strings.TrimSuffix(strings.ToUpper(prefix), "_") }
}

// LoadConfig loads configuration for a service into cfg.
//
// Order of precedence, lowest first: config.yml, then the process
// environment after the .env file has been loaded into it. An env var such
// as EUREKA_APP_NAME overrides eureka.app_name.
func LoadConfig(serviceName string, cfg any, opts ...LoaderOption) error {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = OSFileSystem{}
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(serviceName, lc)
	return load(serviceName, cfg, files, lc)
}

func load(serviceName string, cfg any, files ResolvedFiles, lc LoaderConfig) error {
	v := viper.New()

	if files.ConfigFile != "" && lc.FileSystem.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", files.ConfigFile, err)
		}
		logger.Debug("config file loaded", logger.Fields("file", files.ConfigFile))
	}

	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			logger.Warn("failed to load .env file", logger.Fields("file", files.EnvFile, logger.FieldError, err.Error()))
		}
	}

	applyEnv(v, os.Environ(), lc.EnvPrefix)

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config for service %s: %w", serviceName, err)
	}
	return nil
}

// applyEnv maps KEY=value pairs onto viper keys. A variable that matches a
// key already present in the config file sets only that key; otherwise
// every nesting of its underscore-separated parts is set, so
// REGISTRY_BASIC_AUTH_USERNAME can reach registry.basic_auth.username.
func applyEnv(v *viper.Viper, environ []string, prefix string) {
	known := make(map[string]bool)
	for _, k := range v.AllKeys() {
		known[k] = true
	}

	for _, env := range environ {
		key, value, ok := strings.Cut(env, "=")
		if !ok || key == "" {
			continue
		}
		if prefix != "" {
			rest, found := strings.CutPrefix(key, prefix+"_")
			if !found {
				continue
			}
			key = rest
		}

		variants := envKeyVariants(key)
		matched := false
		for _, variant := range variants {
			if known[variant] {
				v.Set(variant, value)
				matched = true
			}
		}
		if matched {
			continue
		}
		for _, variant := range variants {
			v.Set(variant, value)
		}
	}
}

// envKeyVariants lists every way of splitting an env var name into a dotted
// key path. Segments between dots keep their underscores.
//
//	EUREKA_APP_NAME -> eureka_app_name, eureka.app_name, eureka_app.name, eureka.app.name
func envKeyVariants(envKey string) []string {
	parts := strings.Split(strings.ToLower(envKey), "_")
	if len(parts) == 1 {
		return parts
	}
	// Each of the len(parts)-1 gaps is either "_" or ".".
	gaps := len(parts) - 1
	if gaps > 6 {
		gaps = 6
		parts = append(parts[:6], strings.Join(parts[6:], "_"))
	}
	variants := make([]string, 0, 1<<gaps)
	for mask := 0; mask < 1<<gaps; mask++ {
		var b strings.Builder
		b.WriteString(parts[0])
		for i := 1; i < len(parts); i++ {
			if mask&(1<<(i-1)) != 0 {
				b.WriteByte('.')
			} else {
				b.WriteByte('_')
			}
			b.WriteString(parts[i])
		}
		variants = append(variants, b.String())
	}
	return variants
}
