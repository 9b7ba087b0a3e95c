package cmd

import (
	"crypto/tls"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds configuration values for commands.
type Config struct {
	Port                 string
	ProxyProtocol        bool
	ProxyProtocolTimeout time.Duration
	CheckTimeout         time.Duration
	HealthCheckAddress   string
	TLS           tlsConfig
	Upstream      upstreamConfig
	Stats         statsConfig
}

type tlsConfig struct {
	Certificate   string
	Key           string
	MinTLSVersion uint16
	MaxTLSVersion uint16
	CipherSuite   []uint16
}

// Enabled returns true if the server should serve HTTPS.
func (c tlsConfig) Enabled() bool {
	return c.Certificate != "" && c.Key != ""
}

type upstreamConfig struct {
	Timeout   time.Duration
	Insecure  bool
	HTTP2     bool
	CABundles []string
}

type statsConfig struct {
	Driver        string
	DSN           string
	RedisAddress  string
	RedisPassword string
	RedisDB       int
	RedisLogSize  int64
}

// GetConfigFromEnvironment creates Config object based on the shell environment.
func GetConfigFromEnvironment() *Config {
	port := env("PORT", "8080")

	return &Config{
		Port:                 port,
		ProxyProtocol:        envBool("PROXY_PROTOCOL", false),
		ProxyProtocolTimeout: envDuration("PROXY_PROTOCOL_TIMEOUT", 5*time.Second),
		CheckTimeout:         envDuration("CHECK_TIMEOUT", 500*time.Millisecond),
		HealthCheckAddress:   env("HEALTHCHECK_ADDRESS", ":"+port),
		TLS: tlsConfig{
			Certificate:   env("TLS_CERT", ""),
			Key:           env("TLS_KEY", ""),
			MinTLSVersion: envTLSVersion("TLS_MIN_VERSION"),
			MaxTLSVersion: envTLSVersion("TLS_MAX_VERSION"),
			CipherSuite:   envTLSCiphers("TLS_CIPHER_SUITE"),
		},
		Upstream: upstreamConfig{
			Timeout:  envDuration("UPSTREAM_TIMEOUT", 30*time.Second),
			Insecure: envBool("UPSTREAM_INSECURE", false),
			HTTP2:    envBool("UPSTREAM_HTTP2", true),
			CABundles: envList(
				"CA_PATH",
				"/etc/ssl/certs/ca-certificates.crt",
			),
		},
		Stats: statsConfig{
			Driver:        env("DB_DRIVER", "sqlite"),
			DSN:           env("DB", "relay.db"),
			RedisAddress:  env("REDIS_ADDR", ""),
			RedisPassword: env("REDIS_PASSWORD", ""),
			RedisDB:       int(envInt("REDIS_DB", 0)),
			RedisLogSize:  envInt("REDIS_LOG_SIZE", 10000),
		},
	}
}

func env(key string, def string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return def
}

func envList(key string, def string) []string {
	var list []string
	for _, value := range strings.Split(env(key, def), ",") {
		if value = strings.TrimSpace(value); value != "" {
			list = append(list, value)
		}
	}

	return list
}

func envInt(key string, def int64) int64 {
	if value, ok := os.LookupEnv(key); ok {
		i, _ := strconv.ParseInt(value, 10, 64)
		return i
	}

	return def
}

func envTLSVersion(key string) uint16 {
	if value, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(value) {
		case "tlsv1.2", "v1.2", "1.2", "1_2":
			return tls.VersionTLS12
		case "tlsv1.3", "v1.3", "1.3", "1_3":
			return tls.VersionTLS13
		default:
			return 0
		}
	}

	return 0
}

func envTLSCiphers(key string) []uint16 {
	if value, ok := os.LookupEnv(key); ok {
		o := []uint16{}
		cipherStrings := strings.Split(value, ":")
		cipherSuites := tls.CipherSuites()
		for _, cipherString := range cipherStrings {
			for _, cipherSuite := range cipherSuites {
				if strings.EqualFold(cipherString, cipherSuite.Name) {
					o = append(o, cipherSuite.ID)
				}
			}
		}

		if len(o) != 0 {
			return o
		}
	}

	return nil
}

func envBool(key string, def bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		i, _ := strconv.ParseBool(value)
		return i
	}

	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(value)
		if err != nil {
			return def
		}
		return d
	}

	return def
}
