package statuspage_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/icecave/relay/statuspage"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

var _ = Describe("TemplateWriter", func() {
	var (
		subject  *statuspage.TemplateWriter
		recorder *httptest.ResponseRecorder
		request  *http.Request
	)

	BeforeEach(func() {
		subject = &statuspage.TemplateWriter{}
		recorder = httptest.NewRecorder()
		request = httptest.NewRequest(http.MethodGet, "/http://example.org/", nil)
	})

	Describe("WriteMessage", func() {
		It("writes a plain-text page by default", func() {
			n, err := subject.WriteMessage(recorder, request, http.StatusTeapot, "<message>")
			Expect(err).NotTo(HaveOccurred())
			Expect(recorder.Code).To(Equal(http.StatusTeapot))
			Expect(recorder.Header().Get("Content-Type")).To(Equal("text/plain; charset=utf-8"))
			Expect(recorder.Body.String()).To(Equal("418 I'm a teapot\n\n<message>\n"))
			Expect(n).To(BeNumerically("==", recorder.Body.Len()))
		})

		It("sets the content length", func() {
			subject.WriteMessage(recorder, request, http.StatusTeapot, "<message>")
			Expect(recorder.Header().Get("Content-Length")).To(Equal(fmt.Sprint(recorder.Body.Len())))
		})

		It("omits the body of a HEAD request", func() {
			request.Method = http.MethodHead
			n, err := subject.WriteMessage(recorder, request, http.StatusTeapot, "<message>")
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(BeZero())
			Expect(recorder.Body.Len()).To(BeZero())
		})

		DescribeTable(
			"chooses the format from the Accept header",
			func(accept string, contentType string) {
				request.Header.Set("Accept", accept)
				subject.WriteMessage(recorder, request, http.StatusBadGateway, "<message>")
				Expect(recorder.Header().Get("Content-Type")).To(Equal(contentType))
			},
			Entry("browser", "text/html,application/xhtml+xml,*/*;q=0.8", "text/html; charset=utf-8"),
			Entry("xhtml", "application/xhtml+xml", "text/html; charset=utf-8"),
			Entry("any", "*/*", "text/plain; charset=utf-8"),
			Entry("text preferred", "text/plain, text/html;q=0.5", "text/plain; charset=utf-8"),
		)

		It("escapes the message in HTML pages", func() {
			request.Header.Set("Accept", "text/html")
			subject.WriteMessage(recorder, request, http.StatusBadGateway, "<message>")
			Expect(recorder.Body.String()).To(ContainSubstring("&lt;message&gt;"))
		})
	})

	Describe("Write", func() {
		It("uses the default message for the status code", func() {
			subject.Write(recorder, request, http.StatusBadGateway)
			Expect(recorder.Body.String()).To(ContainSubstring(statuspage.StatusMessage(http.StatusBadGateway)))
		})
	})

	Describe("WriteError", func() {
		It("uses the status code and message of an Error", func() {
			err := statuspage.Error{
				Inner:      errors.New("<inner>"),
				StatusCode: http.StatusRequestedRangeNotSatisfiable,
				Message:    "range not satisfiable: bytes=200-300",
			}
			statusCode, _, writeErr := subject.WriteError(recorder, request, err)
			Expect(writeErr).NotTo(HaveOccurred())
			Expect(statusCode).To(Equal(http.StatusRequestedRangeNotSatisfiable))
			Expect(recorder.Code).To(Equal(http.StatusRequestedRangeNotSatisfiable))
			Expect(recorder.Body.String()).To(ContainSubstring("range not satisfiable: bytes=200-300"))
		})

		It("finds an Error that has been wrapped", func() {
			err := fmt.Errorf("<context>: %w", statuspage.Error{StatusCode: http.StatusBadGateway})
			statusCode, _, _ := subject.WriteError(recorder, request, err)
			Expect(statusCode).To(Equal(http.StatusBadGateway))
			Expect(recorder.Body.String()).To(ContainSubstring(statuspage.StatusMessage(http.StatusBadGateway)))
		})

		It("uses 500 for other errors", func() {
			statusCode, _, _ := subject.WriteError(recorder, request, errors.New("<error>"))
			Expect(statusCode).To(Equal(http.StatusInternalServerError))
			Expect(recorder.Code).To(Equal(http.StatusInternalServerError))
		})
	})
})

var _ = Describe("StatusMessage", func() {
	DescribeTable(
		"returns a message for the status code",
		func(statusCode int, message string) {
			Expect(statuspage.StatusMessage(statusCode)).To(Equal(message))
		},
		Entry("range not satisfiable", http.StatusRequestedRangeNotSatisfiable, "The requested range can not be served from this content."),
		Entry("unknown client error", http.StatusTeapot, "We're sorry, something went wrong!"),
		Entry("non-error", http.StatusOK, "That's all we know."),
	)
})

var _ = Describe("Error", func() {
	It("uses the inner error's message", func() {
		err := statuspage.Error{Inner: errors.New("<inner>"), Message: "<message>"}
		Expect(err.Error()).To(Equal("<inner>"))
	})

	It("falls back to the message", func() {
		err := statuspage.Error{Message: "<message>"}
		Expect(err.Error()).To(Equal("<message>"))
	})

	It("unwraps to the inner error", func() {
		inner := errors.New("<inner>")
		Expect(errors.Is(statuspage.Error{Inner: inner}, inner)).To(BeTrue())
	})
})
