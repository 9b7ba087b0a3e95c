package cmd_test

import (
	"crypto/tls"
	"os"
	"time"

	"github.com/icecave/relay/cmd"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("GetConfigFromEnvironment", func() {
	keys := []string{
		"PORT", "PROXY_PROTOCOL", "TLS_CERT", "TLS_KEY", "TLS_MIN_VERSION",
		"UPSTREAM_TIMEOUT", "UPSTREAM_HTTP2", "CA_PATH", "DB_DRIVER", "DB",
		"REDIS_ADDR", "REDIS_DB", "REDIS_LOG_SIZE", "HEALTHCHECK_ADDRESS",
	}

	BeforeEach(func() {
		for _, key := range keys {
			os.Unsetenv(key)
		}
	})

	AfterEach(func() {
		for _, key := range keys {
			os.Unsetenv(key)
		}
	})

	It("uses defaults when the environment is empty", func() {
		config := cmd.GetConfigFromEnvironment()

		Expect(config.Port).To(Equal("8080"))
		Expect(config.HealthCheckAddress).To(Equal(":8080"))
		Expect(config.ProxyProtocol).To(BeFalse())
		Expect(config.TLS.Enabled()).To(BeFalse())
		Expect(config.Upstream.Timeout).To(Equal(30 * time.Second))
		Expect(config.Upstream.HTTP2).To(BeTrue())
		Expect(config.Stats.Driver).To(Equal("sqlite"))
		Expect(config.Stats.DSN).To(Equal("relay.db"))
		Expect(config.Stats.RedisAddress).To(BeEmpty())
		Expect(config.Stats.RedisLogSize).To(BeNumerically("==", 10000))
	})

	It("reads values from the environment", func() {
		os.Setenv("PORT", "9000")
		os.Setenv("PROXY_PROTOCOL", "true")
		os.Setenv("TLS_CERT", "server.crt")
		os.Setenv("TLS_KEY", "server.key")
		os.Setenv("TLS_MIN_VERSION", "1.3")
		os.Setenv("UPSTREAM_TIMEOUT", "5s")
		os.Setenv("UPSTREAM_HTTP2", "false")
		os.Setenv("CA_PATH", "a.pem, b.pem,,")
		os.Setenv("DB_DRIVER", "postgres")
		os.Setenv("DB", "postgres://localhost/relay")
		os.Setenv("REDIS_ADDR", "localhost:6379")
		os.Setenv("REDIS_DB", "2")

		config := cmd.GetConfigFromEnvironment()

		Expect(config.Port).To(Equal("9000"))
		Expect(config.HealthCheckAddress).To(Equal(":9000"))
		Expect(config.ProxyProtocol).To(BeTrue())
		Expect(config.TLS.Enabled()).To(BeTrue())
		Expect(config.TLS.MinTLSVersion).To(Equal(uint16(tls.VersionTLS13)))
		Expect(config.Upstream.Timeout).To(Equal(5 * time.Second))
		Expect(config.Upstream.HTTP2).To(BeFalse())
		Expect(config.Upstream.CABundles).To(Equal([]string{"a.pem", "b.pem"}))
		Expect(config.Stats.Driver).To(Equal("postgres"))
		Expect(config.Stats.DSN).To(Equal("postgres://localhost/relay"))
		Expect(config.Stats.RedisAddress).To(Equal("localhost:6379"))
		Expect(config.Stats.RedisDB).To(Equal(2))
	})

	It("falls back to the default for invalid durations", func() {
		os.Setenv("UPSTREAM_TIMEOUT", "<invalid>")
		Expect(cmd.GetConfigFromEnvironment().Upstream.Timeout).To(Equal(30 * time.Second))
	})
})
