package scheduler

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/storage"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

const (
	jobTimeout      = 5 * time.Minute
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ReportUploader 리포트 파일 업로드 대상
type ReportUploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// Scheduler 데이터 감사와 주문 리포트 정기 작업
type Scheduler struct {
	cron           *cron.Cron
	auditService   service.AuditService
	reportService  service.ReportService
	uploader       ReportUploader
	auditSchedule  string
	reportSchedule string
}

// NewScheduler 스케줄러 생성. 빈 스케줄은 해당 작업을 끈다.
func NewScheduler(
	auditService service.AuditService,
	reportService service.ReportService,
	uploader ReportUploader,
	auditSchedule, reportSchedule string,
) *Scheduler {
	return &Scheduler{
		cron:           cron.New(),
		auditService:   auditService,
		reportService:  reportService,
		uploader:       uploader,
		auditSchedule:  auditSchedule,
		reportSchedule: reportSchedule,
	}
}

// Start 스케줄러 시작
func (s *Scheduler) Start() error {
	if s.auditSchedule != "" {
		if _, err := s.cron.AddFunc(s.auditSchedule, func() { s.RunAudit(context.Background()) }); err != nil {
			logger.Error("Failed to add cron job for data audit", err)
			return fmt.Errorf("invalid audit schedule %q: %w", s.auditSchedule, err)
		}
	}

	if s.reportSchedule != "" {
		if s.uploader == nil {
			logger.Warn("Report schedule set but no upload bucket configured, skipping report job", nil)
		} else if _, err := s.cron.AddFunc(s.reportSchedule, func() { s.RunReport(context.Background()) }); err != nil {
			logger.Error("Failed to add cron job for order report", err)
			return fmt.Errorf("invalid report schedule %q: %w", s.reportSchedule, err)
		}
	}

	s.cron.Start()
	logger.Info("Scheduler started", map[string]interface{}{
		"audit_schedule":  s.auditSchedule,
		"report_schedule": s.reportSchedule,
		"jobs":            len(s.cron.Entries()),
	})
	return nil
}

// Stop 실행 중인 작업이 끝날 때까지 기다린다
func (s *Scheduler) Stop() {
	logger.Info("Stopping scheduler...", nil)
	<-s.cron.Stop().Done()
	logger.Info("Scheduler stopped", nil)
}

// RunAudit 감사 1회 실행
func (s *Scheduler) RunAudit(ctx context.Context) (service.AuditReport, error) {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	logger.Info("Starting scheduled data audit", nil)
	report, err := s.auditService.Audit(ctx)
	if err != nil {
		logger.Error("Scheduled data audit failed", err)
		return report, err
	}
	return report, nil
}

// RunReport 주문 리포트를 만들어 업로드하고 객체 URL을 돌려준다
func (s *Scheduler) RunReport(ctx context.Context) (string, error) {
	if s.uploader == nil {
		return "", fmt.Errorf("no report uploader configured")
	}

	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	buf, summary, err := s.reportService.OrdersWorkbook(ctx)
	if err != nil {
		logger.Error("Failed to build order report", err)
		return "", err
	}

	key := storage.ReportKey("orders", time.Now())
	url, err := s.uploader.Upload(ctx, key, xlsxContentType, buf)
	if err != nil {
		logger.Error("Failed to upload order report", err, map[string]interface{}{
			"key": key,
		})
		return "", err
	}

	logger.Info("Order report uploaded", map[string]interface{}{
		"key":    key,
		"url":    url,
		"orders": summary.Orders,
	})
	return url, nil
}
