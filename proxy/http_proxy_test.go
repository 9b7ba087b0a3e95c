package proxy_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/icecave/relay/partial"
	"github.com/icecave/relay/proxy"
	"github.com/icecave/relay/statuspage"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

var _ = Describe("HTTPProxy", func() {
	var (
		upstream *httptest.Server
		received *http.Request
		body     string
		subject  *proxy.HTTPProxy
	)

	BeforeEach(func() {
		received = nil
		body = ""
		upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, _ := io.ReadAll(r.Body)
			body = string(data)
			received = r

			w.Header().Set("Content-Type", "text/plain")
			w.Header().Set("Connection", "X-Upstream-Hop")
			w.Header().Set("X-Upstream-Hop", "<hop>")
			w.Header().Set("X-Upstream", "<value>")
			w.WriteHeader(http.StatusOK)
			io.WriteString(w, "<content>")
		}))

		subject = &proxy.HTTPProxy{
			Timeout: 5 * time.Second,
		}
	})

	AfterEach(func() {
		upstream.Close()
	})

	It("relays the request to the URL in the path", func() {
		req := httptest.NewRequest(http.MethodGet, "/"+upstream.URL+"/path/to/file?a=1&range=bytes%3D0-1&b=2", nil)

		res, err := subject.Forward(req)
		Expect(err).NotTo(HaveOccurred())

		content, err := partial.Materialize(res.Content)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(content)).To(Equal("<content>"))

		Expect(res.StatusCode).To(Equal(http.StatusOK))
		Expect(received.URL.Path).To(Equal("/path/to/file"))
		Expect(received.URL.RawQuery).To(Equal("a=1&b=2"))
	})

	It("filters request and response headers", func() {
		req := httptest.NewRequest(http.MethodGet, "/"+upstream.URL+"/", nil)
		req.Header.Set("Range", "bytes=0-1")
		req.Header.Set("If-Range", "<etag>")
		req.Header.Set("Connection", "X-Client-Hop")
		req.Header.Set("X-Client-Hop", "<hop>")
		req.Header.Set("X-Client", "<value>")
		req.Header.Set("X-Forwarded-For", "10.0.0.1")

		res, err := subject.Forward(req)
		Expect(err).NotTo(HaveOccurred())
		Expect(partial.Discard(res.Content)).To(Succeed())

		Expect(received.Header.Get("Range")).To(BeEmpty())
		Expect(received.Header.Get("If-Range")).To(BeEmpty())
		Expect(received.Header.Get("X-Client-Hop")).To(BeEmpty())
		Expect(received.Header.Get("X-Client")).To(Equal("<value>"))
		Expect(received.Header.Get("X-Forwarded-For")).To(Equal("10.0.0.1, 192.0.2.1"))

		Expect(res.Header.Get("X-Upstream")).To(Equal("<value>"))
		Expect(res.Header.Get("X-Upstream-Hop")).To(BeEmpty())
		Expect(res.Header.Get("Connection")).To(BeEmpty())
		Expect(res.Header.Get("Content-Length")).To(BeEmpty())
	})

	It("forwards the request body", func() {
		req := httptest.NewRequest(http.MethodPost, "/"+upstream.URL+"/", strings.NewReader("<body>"))

		res, err := subject.Forward(req)
		Expect(err).NotTo(HaveOccurred())
		Expect(partial.Discard(res.Content)).To(Succeed())

		Expect(received.Method).To(Equal(http.MethodPost))
		Expect(body).To(Equal("<body>"))
	})

	It("keeps the upstream content length for HEAD requests", func() {
		req := httptest.NewRequest(http.MethodHead, "/"+upstream.URL+"/", nil)

		res, err := subject.Forward(req)
		Expect(err).NotTo(HaveOccurred())
		Expect(partial.Discard(res.Content)).To(Succeed())

		Expect(res.Header.Get("Content-Length")).To(Equal("9"))
	})

	DescribeTable(
		"rejects requests that can not be relayed",
		func(method, path string, expected int) {
			req := httptest.NewRequest(method, path, nil)

			_, err := subject.Forward(req)

			var statusErr statuspage.Error
			Expect(errors.As(err, &statusErr)).To(BeTrue())
			Expect(statusErr.StatusCode).To(Equal(expected))
		},
		Entry("unsupported method", http.MethodPatch, "/http://example.org/", http.StatusMethodNotAllowed),
		Entry("options", http.MethodOptions, "/http://example.org/", http.StatusMethodNotAllowed),
		Entry("missing target", http.MethodGet, "/", http.StatusBadRequest),
		Entry("relative target", http.MethodGet, "/path/to/file", http.StatusBadRequest),
		Entry("unsupported scheme", http.MethodGet, "/ftp://example.org/", http.StatusBadRequest),
	)

	It("reports an unreachable upstream as a bad gateway", func() {
		upstream.Close()
		req := httptest.NewRequest(http.MethodGet, "/"+upstream.URL+"/", nil)

		_, err := subject.Forward(req)

		var statusErr statuspage.Error
		Expect(errors.As(err, &statusErr)).To(BeTrue())
		Expect(statusErr.StatusCode).To(Equal(http.StatusBadGateway))
	})

	It("reports an upstream timeout as a gateway timeout", func() {
		subject.Transport = roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			<-r.Context().Done()
			return nil, r.Context().Err()
		})
		subject.Timeout = 10 * time.Millisecond

		req := httptest.NewRequest(http.MethodGet, "/http://example.org/", nil)

		_, err := subject.Forward(req)

		var statusErr statuspage.Error
		Expect(errors.As(err, &statusErr)).To(BeTrue())
		Expect(statusErr.StatusCode).To(Equal(http.StatusGatewayTimeout))
		Expect(errors.Is(err, context.DeadlineExceeded)).To(BeTrue())
	})

	It("reports body read failures as a bad gateway", func() {
		subject.Transport = roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusOK,
				Header:     http.Header{},
				Body:       io.NopCloser(&failingReader{}),
			}, nil
		})

		req := httptest.NewRequest(http.MethodGet, "/http://example.org/", nil)
		res, err := subject.Forward(req)
		Expect(err).NotTo(HaveOccurred())

		_, err = partial.Materialize(res.Content)

		var statusErr statuspage.Error
		Expect(errors.As(err, &statusErr)).To(BeTrue())
		Expect(statusErr.StatusCode).To(Equal(http.StatusBadGateway))
	})
})

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (fn roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return fn(r)
}

type failingReader struct{}

func (*failingReader) Read([]byte) (int, error) {
	return 0, errors.New("<read error>")
}
