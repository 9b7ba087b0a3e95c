package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/icecave/relay/cmd"
	"github.com/icecave/relay/frontend"
	"github.com/icecave/relay/health"
	"github.com/icecave/relay/proxy"
	"github.com/icecave/relay/proxyprotocol"
	"github.com/icecave/relay/ranges"
	"github.com/icecave/relay/stats"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"golang.org/x/net/http2"
)

// recentEntries is the number of log entries listed by /stats when the store
// supports it.
const recentEntries = 20

func main() {
	config := cmd.GetConfigFromEnvironment()
	logger := log.New(os.Stdout, "", log.LstdFlags)
	startedAt := time.Now()

	store, err := openStore(config, logger)
	if err != nil {
		logger.Fatalln(err)
	}

	counters := &stats.Counters{}
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		stats.NewCollector(counters),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	transport, err := upstreamTransport(config, logger)
	if err != nil {
		logger.Fatalln(err)
	}

	server := &http.Server{
		Addr: ":" + config.Port,
		Handler: &frontend.Handler{
			Handlers: []frontend.ConditionalHandler{
				&health.HTTPHandler{
					Checker: &health.StoreChecker{Store: store},
					Logger:  logger,
				},
				&stats.Handler{
					Store:     store,
					StartedAt: startedAt,
					Recent:    recentEntries,
					Logger:    logger,
				},
				frontend.NewMetricsHandler(registry),
			},
			Proxy: &proxy.Handler{
				Forwarder: &ranges.Middleware{
					Next: &proxy.HTTPProxy{
						Transport: transport,
						Timeout:   config.Upstream.Timeout,
					},
				},
				Recorder: &stats.Recorder{
					Store:    store,
					Counters: counters,
					Logger:   logger,
				},
				Logger: logger,
			},
		},
		ErrorLog: logger,
	}

	listener, err := net.Listen("tcp", server.Addr)
	if err != nil {
		logger.Fatalln(multierr.Append(err, store.Close()))
	}

	if config.ProxyProtocol {
		listener = proxyprotocol.NewListener(listener, config.ProxyProtocolTimeout)
	}

	done := make(chan error, 1)
	go func() {
		done <- shutdownOnSignal(server, logger)
	}()

	logger.Printf("Listening on port %s", config.Port)

	if config.TLS.Enabled() {
		server.TLSConfig = serverTLSConfig(config)
		err = server.ServeTLS(listener, config.TLS.Certificate, config.TLS.Key)
	} else {
		err = server.Serve(listener)
	}

	if !errors.Is(err, http.ErrServerClosed) {
		logger.Println(err)
	} else {
		err = <-done
	}

	if err = multierr.Append(err, store.Close()); err != nil {
		logger.Fatalln(err)
	}
}

// openStore opens the statistics store named by the configuration.
func openStore(config *cmd.Config, logger *log.Logger) (stats.Store, error) {
	if config.Stats.RedisAddress != "" {
		logger.Printf("Recording statistics in redis at %s", config.Stats.RedisAddress)

		return &stats.RedisStore{
			Client: redis.NewClient(&redis.Options{
				Addr:     config.Stats.RedisAddress,
				Password: config.Stats.RedisPassword,
				DB:       config.Stats.RedisDB,
			}),
			LogSize: config.Stats.RedisLogSize,
		}, nil
	}

	logger.Printf("Recording statistics in %s database", config.Stats.Driver)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := stats.OpenSQLStore(ctx, config.Stats.Driver, config.Stats.DSN)
	if err != nil {
		return nil, err
	}

	return store, nil
}

// upstreamTransport builds the transport used to contact upstream servers.
func upstreamTransport(config *cmd.Config, logger *log.Logger) (*http.Transport, error) {
	defaultTransport := http.DefaultTransport.(*http.Transport)

	transport := &http.Transport{
		Proxy:                 defaultTransport.Proxy,
		DialContext:           defaultTransport.DialContext,
		MaxIdleConns:          defaultTransport.MaxIdleConns,
		IdleConnTimeout:       defaultTransport.IdleConnTimeout,
		TLSHandshakeTimeout:   defaultTransport.TLSHandshakeTimeout,
		ExpectContinueTimeout: defaultTransport.ExpectContinueTimeout,
		TLSClientConfig: &tls.Config{
			RootCAs:            rootCAPool(config, logger),
			InsecureSkipVerify: config.Upstream.Insecure,
		},
	}

	if config.Upstream.HTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			return nil, err
		}
	}

	return transport, nil
}

func rootCAPool(
	config *cmd.Config,
	logger *log.Logger,
) *x509.CertPool {
	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}

	for _, filename := range config.Upstream.CABundles {
		buf, err := os.ReadFile(filename)
		if err == nil {
			if pool.AppendCertsFromPEM(buf) {
				logger.Printf("Loaded certificate(s) from CA bundle at %s", filename)
			}
		} else if !os.IsNotExist(err) {
			logger.Fatalln(err)
		}
	}

	return pool
}

func serverTLSConfig(config *cmd.Config) *tls.Config {
	return &tls.Config{
		NextProtos:       []string{"h2", "http/1.1"},
		MinVersion:       config.TLS.MinTLSVersion,
		MaxVersion:       config.TLS.MaxTLSVersion,
		CipherSuites:     config.TLS.CipherSuite,
		CurvePreferences: []tls.CurveID{tls.CurveP256, tls.CurveP384, tls.CurveP521},
	}
}

// shutdownOnSignal gracefully stops server once the process is interrupted.
func shutdownOnSignal(server *http.Server, logger *log.Logger) error {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	<-signals

	logger.Println("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}
