package export

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/receiptlens/receiptlens/constants"
	"github.com/receiptlens/receiptlens/internal/common"
	"github.com/receiptlens/receiptlens/internal/entity"
	"github.com/receiptlens/receiptlens/internal/repository"
)

func TestExport(t *testing.T) {
	// Disable logging during tests
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	RegisterFailHandler(Fail)
	RunSpecs(t, "Export Suite")
}

type mockRecords struct {
	rows    []*entity.Record
	since   time.Time
	listErr error
}

func (m *mockRecords) Create(_ context.Context, rec *entity.Record) (*entity.Record, error) {
	return rec, nil
}

func (m *mockRecords) GetByID(_ context.Context, _ uuid.UUID) (*entity.Record, error) {
	return nil, common.ErrNotFound
}

func (m *mockRecords) List(_ context.Context, _, _ int) ([]*entity.Record, error) {
	return m.rows, nil
}

func (m *mockRecords) ListSince(_ context.Context, since time.Time) ([]*entity.Record, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.since = since
	var out []*entity.Record
	for _, r := range m.rows {
		if !r.CreatedAt.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

var _ repository.RecordRepository = (*mockRecords)(nil)

var _ = Describe("Service", func() {
	var (
		ctx  context.Context
		repo *mockRecords
		svc  *Service
		rec1 *entity.Record
		rec2 *entity.Record
	)

	readSheet := func(b []byte) [][]string {
		wb, err := excelize.OpenReader(bytes.NewReader(b))
		Expect(err).NotTo(HaveOccurred())
		rows, err := wb.GetRows("Expenses")
		Expect(err).NotTo(HaveOccurred())
		Expect(wb.Close()).To(Succeed())
		return rows
	}

	BeforeEach(func() {
		ctx = context.Background()
		rec1 = &entity.Record{
			ID:         uuid.New(),
			Title:      "Corner Bakery",
			Date:       "03/15/2024",
			Amount:     18.4,
			Currency:   constants.USD,
			Confidence: 0.82,
			SourcePath: "/receipts/a.png",
			CreatedAt:  time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
		}
		rec2 = &entity.Record{
			ID:         uuid.New(),
			Title:      "Grand Hotel Breakfast",
			Date:       "04/01/2024",
			Amount:     99.99,
			Currency:   constants.EUR,
			Confidence: 0.5,
			SourcePath: "/receipts/b.png",
			CreatedAt:  time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC),
		}
		repo = &mockRecords{rows: []*entity.Record{rec1, rec2}}
		svc = NewService(repo, slog.Default())
	})

	Describe("ExportXLSX", func() {
		It("should lay out headers and one row per record", func() {
			b, err := svc.ExportXLSX(ctx, nil)
			Expect(err).NotTo(HaveOccurred())

			rows := readSheet(b)
			Expect(rows).To(HaveLen(3))
			Expect(rows[0]).To(Equal([]string{
				"ID", "Title", "Date", "Amount", "Currency", "Confidence", "Source", "Created At",
			}))
			Expect(rows[1]).To(Equal([]string{
				rec1.ID.String(), "Corner Bakery", "03/15/2024", "18.4", "USD",
				"0.82", "/receipts/a.png", "2024-03-15 10:30:00",
			}))
			Expect(rows[2][1]).To(Equal("Grand Hotel Breakfast"))
			Expect(rows[2][4]).To(Equal("EUR"))
		})

		It("should export only the header when the store is empty", func() {
			repo.rows = nil

			b, err := svc.ExportXLSX(ctx, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(readSheet(b)).To(HaveLen(1))
		})

		It("should truncate marathon titles", func() {
			rec1.Title = strings.Repeat("x", 150)

			b, err := svc.ExportXLSX(ctx, nil)
			Expect(err).NotTo(HaveOccurred())

			rows := readSheet(b)
			Expect(rows[1][1]).To(Equal(strings.Repeat("x", 139) + "…"))
		})

		It("should hand the cutoff to the store in UTC and drop older rows", func() {
			since := time.Date(2024, 3, 20, 0, 0, 0, 0, time.FixedZone("IST", 19800))

			b, err := svc.ExportXLSX(ctx, &since)
			Expect(err).NotTo(HaveOccurred())

			Expect(repo.since.Equal(since)).To(BeTrue())
			Expect(repo.since.Location()).To(Equal(time.UTC))

			rows := readSheet(b)
			Expect(rows).To(HaveLen(2))
			Expect(rows[1][1]).To(Equal("Grand Hotel Breakfast"))
		})

		It("should surface store failures", func() {
			repo.listErr = errors.New("boom")

			_, err := svc.ExportXLSX(ctx, nil)
			Expect(err).To(MatchError(ContainSubstring("query records: boom")))
		})
	})

	Describe("Write", func() {
		It("should stream the workbook to the writer", func() {
			var buf bytes.Buffer

			Expect(svc.Write(ctx, &buf, nil)).To(Succeed())
			Expect(readSheet(buf.Bytes())).To(HaveLen(3))
		})

		It("should not write anything on failure", func() {
			repo.listErr = errors.New("boom")
			var buf bytes.Buffer

			Expect(svc.Write(ctx, &buf, nil)).NotTo(Succeed())
			Expect(buf.Len()).To(BeZero())
		})
	})

	Describe("ExportToFile", func() {
		It("should write the workbook to disk", func() {
			path := filepath.Join(GinkgoT().TempDir(), "expenses.xlsx")

			Expect(svc.ExportToFile(ctx, path, nil)).To(Succeed())

			b, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(readSheet(b)).To(HaveLen(3))
		})
	})
})
