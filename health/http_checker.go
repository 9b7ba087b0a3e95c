package health

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"net/url"
)

const requestHost = "localhost"

// HTTPChecker is a checker that connects to the HTTP server to check its status.
type HTTPChecker struct {
	Address string

	// UseTLS selects https:// rather than http://.
	UseTLS bool

	Client *http.Client
}

// Check returns information about the health of the HTTP server.
func (checker *HTTPChecker) Check(ctx context.Context) Status {
	host, port, err := net.SplitHostPort(checker.Address)
	if err != nil {
		return Status{false, err.Error()}
	} else if host == "" {
		host = requestHost
	}

	client := checker.Client
	if client == nil {
		client = &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: true,
				},
			},
		}
	}

	var u url.URL
	u.Scheme = "http"
	if checker.UseTLS {
		u.Scheme = "https"
	}
	u.Host = net.JoinHostPort(host, port)
	u.Path = Path

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Status{false, err.Error()}
	}

	response, err := client.Do(request)
	if err != nil {
		return Status{false, err.Error()}
	}
	defer response.Body.Close()

	content, err := io.ReadAll(response.Body)
	if err != nil {
		return Status{false, err.Error()}
	}

	return Status{
		200 <= response.StatusCode && response.StatusCode <= 299,
		string(content),
	}
}
