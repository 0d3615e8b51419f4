// Package rexconfig loads the hosting/server configuration for a rex
// server from a struct literal, a JSON file or a YAML file. Grounded in the
// teacher's config.go Config/HTTPSConfig/AutoTLSConfig struct, extended
// with a YAML loader since a shippable embeddable server needs config from
// somewhere other than Go literals.
package rexconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/acme/autocert"
	"gopkg.in/yaml.v3"
)

// Config is the top-level hosting configuration (spec.md §1's "external
// collaborator" concerns: none of this affects route matching or
// dispatch).
type Config struct {
	Debug             bool              `json:"debug" yaml:"debug"`
	Host              string            `json:"host" yaml:"host"`
	Port              uint16            `json:"port" yaml:"port"`
	HTTPS             HTTPSConfig       `json:"https" yaml:"https"`
	ServerName        string            `json:"serverName" yaml:"serverName"`
	CustomHTTPHeaders map[string]string `json:"customHTTPHeaders" yaml:"customHTTPHeaders"`
	SessionCookieName string            `json:"sessionCookieName" yaml:"sessionCookieName"`
	ReadTimeout       uint32            `json:"readTimeout" yaml:"readTimeout"`
	WriteTimeout      uint32            `json:"writeTimeout" yaml:"writeTimeout"`
	MaxHeaderBytes    uint32            `json:"maxHeaderBytes" yaml:"maxHeaderBytes"`
}

// HTTPSConfig describes the TLS listener, either a static cert/key pair or
// autocert.
type HTTPSConfig struct {
	Port     uint16        `json:"port" yaml:"port"`
	CertFile string        `json:"certFile" yaml:"certFile"`
	KeyFile  string        `json:"keyFile" yaml:"keyFile"`
	AutoTLS  AutoTLSConfig `json:"autotls" yaml:"autotls"`
}

// AutoTLSConfig configures Let's Encrypt certificate issuance via
// golang.org/x/crypto/acme/autocert (teacher rex.go).
type AutoTLSConfig struct {
	AcceptTOS bool           `json:"acceptTOS" yaml:"acceptTOS"`
	Hosts     []string       `json:"hosts" yaml:"hosts"`
	CacheDir  string         `json:"cacheDir" yaml:"cacheDir"`
	Cache     autocert.Cache `json:"-" yaml:"-"`
}

// Default returns the zero-config defaults: plaintext HTTP on :8080.
func Default() Config {
	return Config{Port: 8080, ReadTimeout: 30, WriteTimeout: 30, MaxHeaderBytes: 1 << 20}
}

// LoadFile reads a Config from a JSON or YAML file, selected by extension
// (.yaml/.yml vs anything else defaulting to JSON).
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("rexconfig: parse %s: %w", path, err)
		}
		return cfg, nil
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("rexconfig: parse %s: %w", path, err)
	}
	return cfg, nil
}
