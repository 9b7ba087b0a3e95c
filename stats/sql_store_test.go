package stats_test

import (
	"context"
	"os"
	"path/filepath"

	"github.com/icecave/relay/stats"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("SQLStore", func() {
	var (
		ctx     context.Context
		dir     string
		subject *stats.SQLStore
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		dir, err = os.MkdirTemp("", "relay-stats-")
		Expect(err).NotTo(HaveOccurred())

		subject, err = stats.OpenSQLStore(ctx, stats.SQLiteDriver, filepath.Join(dir, "relay.db"))
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(subject.Close()).To(Succeed())
		os.RemoveAll(dir)
	})

	It("reports zero bytes for an empty log", func() {
		total, err := subject.TotalBytes(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(BeNumerically("==", 0))
	})

	It("sums the sizes of positive-sized entries", func() {
		Expect(subject.Record(ctx, stats.Entry{URL: "http://a.example/", StatusCode: 200, Size: 100})).To(Succeed())
		Expect(subject.Record(ctx, stats.Entry{URL: "http://b.example/", StatusCode: 206, Size: 23})).To(Succeed())
		Expect(subject.Record(ctx, stats.Entry{URL: "http://c.example/", StatusCode: 502, Size: -1})).To(Succeed())

		total, err := subject.TotalBytes(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(BeNumerically("==", 123))
	})

	It("keeps the log across reopening the database", func() {
		Expect(subject.Record(ctx, stats.Entry{URL: "http://a.example/", StatusCode: 200, Size: 7})).To(Succeed())
		Expect(subject.Close()).To(Succeed())

		var err error
		subject, err = stats.OpenSQLStore(ctx, stats.SQLiteDriver, filepath.Join(dir, "relay.db"))
		Expect(err).NotTo(HaveOccurred())

		total, err := subject.TotalBytes(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(BeNumerically("==", 7))
	})

	It("can be pinged", func() {
		Expect(subject.Ping(ctx)).To(Succeed())
	})

	It("rejects unknown drivers", func() {
		_, err := stats.OpenSQLStore(ctx, "<driver>", "")
		Expect(err).To(MatchError("unsupported database driver: <driver>"))
	})
})
