package scheduler

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/db"
)

type recordingUploader struct {
	keys  []string
	sizes []int
}

func (u *recordingUploader) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	u.keys = append(u.keys, key)
	u.sizes = append(u.sizes, len(data))
	return "https://cdn.example.com/" + key, nil
}

func setupSchedulerTest(t *testing.T, uploader ReportUploader, auditSchedule, reportSchedule string) (*Scheduler, *repository.Store) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	store := repository.NewStore(testDB)
	s := NewScheduler(service.NewAuditService(store), service.NewReportService(store), uploader, auditSchedule, reportSchedule)
	return s, store
}

func TestScheduler_RunAudit(t *testing.T) {
	s, store := setupSchedulerTest(t, nil, "@every 1h", "")
	ctx := context.Background()

	product, err := service.NewProductService(store).CreateProduct(ctx, model.ProductInput{
		Name:  "Widget",
		Price: decimal.RequireFromString("9.99"),
	})
	require.NoError(t, err)

	report, err := s.RunAudit(ctx)
	require.NoError(t, err)
	assert.True(t, report.Clean())
	assert.Equal(t, 1, report.ProductsChecked)
	assert.NotZero(t, product.ID)
}

func TestScheduler_RunReport(t *testing.T) {
	uploader := &recordingUploader{}
	s, _ := setupSchedulerTest(t, uploader, "", "@daily")

	url, err := s.RunReport(context.Background())
	require.NoError(t, err)
	require.Len(t, uploader.keys, 1)
	assert.True(t, strings.HasPrefix(uploader.keys[0], "reports/orders-"))
	assert.Equal(t, "https://cdn.example.com/"+uploader.keys[0], url)
	assert.NotZero(t, uploader.sizes[0])
}

func TestScheduler_RunReportWithoutUploader(t *testing.T) {
	s, _ := setupSchedulerTest(t, nil, "", "")
	_, err := s.RunReport(context.Background())
	assert.Error(t, err)
}

func TestScheduler_StartStop(t *testing.T) {
	s, _ := setupSchedulerTest(t, &recordingUploader{}, "@every 1h", "0 3 * * *")
	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 2)
	s.Stop()
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	s, _ := setupSchedulerTest(t, nil, "not a schedule", "")
	assert.Error(t, s.Start())
}
