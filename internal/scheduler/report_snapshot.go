// Package scheduler runs the periodic report snapshot job: on a cron
// schedule it builds weekly and monthly sales reports and writes them as
// timestamped JSON files for offline consumption.
package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/go-faster/errors"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xenking/sales-ledger/internal/ledger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Report kinds and their trailing windows.
const (
	KindWeekly  = "weekly"
	KindMonthly = "monthly"

	weeklyWindow  = 7
	monthlyWindow = 30
)

// snapshot is the JSON document written per report.
type snapshot struct {
	ReportType  string          `json:"report_type"`
	GeneratedAt time.Time       `json:"generated_at"`
	StartDate   string          `json:"start_date"`
	EndDate     string          `json:"end_date"`
	Summary     snapshotSummary `json:"summary"`
	TopProducts []snapshotItem  `json:"top_products"`
	DailySales  []snapshotDay   `json:"daily_sales"`
}

type snapshotSummary struct {
	TotalSales         string `json:"total_sales"`
	NumTransactions    int    `json:"num_transactions"`
	AverageTransaction string `json:"average_transaction"`
}

type snapshotItem struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int64  `json:"quantity"`
	Amount    string `json:"amount"`
}

type snapshotDay struct {
	Date  string `json:"date"`
	Total string `json:"total"`
}

// SnapshotService schedules and writes report snapshots.
type SnapshotService struct {
	svc       *ledger.Service
	scheduler *gocron.Scheduler
	schedule  string
	dir       string
	lg        *zap.Logger

	mu      sync.Mutex
	running bool
	lastRun time.Time
}

// NewSnapshotService creates a snapshot service writing into dir on the given
// cron schedule. The directory is created on Start if missing.
func NewSnapshotService(svc *ledger.Service, schedule, dir string, lg *zap.Logger) *SnapshotService {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &SnapshotService{
		svc:       svc,
		scheduler: gocron.NewScheduler(time.UTC),
		schedule:  schedule,
		dir:       dir,
		lg:        lg,
	}
}

// Start schedules the snapshot job and runs the scheduler in the background.
// The scheduler stops when ctx is cancelled.
func (s *SnapshotService) Start(ctx context.Context) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Wrap(err, "create report dir")
	}

	_, err := s.scheduler.Cron(s.schedule).Do(func() {
		s.Run(ctx)
	})
	if err != nil {
		return errors.Wrap(err, "schedule snapshot job")
	}

	s.scheduler.StartAsync()
	s.lg.Info("Report snapshot scheduler started",
		zap.String("cron", s.schedule),
		zap.String("dir", s.dir))

	go func() {
		<-ctx.Done()
		s.scheduler.Stop()
		s.lg.Info("Report snapshot scheduler stopped")
	}()

	return nil
}

// Run builds and writes both report kinds once. Overlapping runs are skipped.
func (s *SnapshotService) Run(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.lg.Info("Snapshot run already in progress, skipping")
		return
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.lastRun = time.Now()
		s.mu.Unlock()
	}()

	for kind, days := range map[string]int{KindWeekly: weeklyWindow, KindMonthly: monthlyWindow} {
		path, err := s.writeSnapshot(ctx, kind, days)
		if err != nil {
			s.lg.Error("Report snapshot failed",
				zap.String("report_type", kind), zap.Error(err))
			continue
		}
		s.lg.Info("Report snapshot written",
			zap.String("report_type", kind), zap.String("path", path))
	}
}

func (s *SnapshotService) writeSnapshot(ctx context.Context, kind string, days int) (string, error) {
	now := time.Now().UTC()
	start := now.AddDate(0, 0, -days)

	report, err := s.svc.BuildReport(ctx, start, now)
	if err != nil {
		return "", errors.Wrap(err, "build report")
	}

	doc := snapshot{
		ReportType:  kind,
		GeneratedAt: now,
		StartDate:   start.Format(time.DateOnly),
		EndDate:     now.Format(time.DateOnly),
		Summary: snapshotSummary{
			TotalSales:         report.Summary.TotalSales.StringFixed(2),
			NumTransactions:    report.Summary.NumTransactions,
			AverageTransaction: report.Summary.AverageTransaction.StringFixed(2),
		},
		TopProducts: make([]snapshotItem, 0, len(report.TopProducts)),
		DailySales:  make([]snapshotDay, 0, len(report.DailySales)),
	}
	for _, p := range report.TopProducts {
		doc.TopProducts = append(doc.TopProducts, snapshotItem{
			ProductID: p.ProductID,
			Name:      p.Name,
			Quantity:  p.Quantity,
			Amount:    p.Amount.StringFixed(2),
		})
	}
	for _, d := range report.DailySales {
		doc.DailySales = append(doc.DailySales, snapshotDay{
			Date:  d.Date,
			Total: d.Total.StringFixed(2),
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "marshal snapshot")
	}

	name := kind + "_report_" + now.Format("20060102_150405") + ".json"
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrap(err, "write snapshot file")
	}
	return path, nil
}

// Latest returns the path of the most recent snapshot of the given kind, or
// an empty string when none exist yet.
func (s *SnapshotService) Latest(kind string) (string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.Wrap(err, "read report dir")
	}

	prefix := kind + "_report_"
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasPrefix(e.Name(), prefix) && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", nil
	}
	sort.Strings(names)
	return filepath.Join(s.dir, names[len(names)-1]), nil
}
