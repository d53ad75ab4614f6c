package acquisition

import (
	"context"
	"fmt"
	"log"
	"path"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bryanwahyu/hydrolens/internal/application"
	"github.com/bryanwahyu/hydrolens/internal/domain/imagery"
	"github.com/bryanwahyu/hydrolens/internal/domain/requests"
	"github.com/bryanwahyu/hydrolens/internal/domain/reservoirs"
	"github.com/bryanwahyu/hydrolens/internal/middleware"
	"github.com/bryanwahyu/hydrolens/internal/raster"
)

const (
	defaultCheckInterval   = 30 * time.Second
	defaultMaxWait         = 24 * time.Hour
	defaultDownloadWorkers = 4
)

var dateRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// Service melengkapi cache AcquiredImage untuk satu rentang tanggal:
// hitung gap terhadap cache, submit export job ke provider, poll sampai
// selesai, unduh hasil dari staging, simpan, lalu hapus file remote.
type Service struct {
	Images   imagery.Repository
	Provider imagery.Provider
	Blobs    imagery.BlobStore
	Clock    application.Clock

	CheckInterval   time.Duration
	MaxWait         time.Duration
	DownloadWorkers int
}

// Result citra lengkap untuk rentang yang diminta plus rencana akuisisi
// yang dijalankan (kosong kalau semua sudah ada di cache)
type Result struct {
	Images []*imagery.AcquiredImage
	Plan   *requests.AcquisitionPlan
}

// EnsureImages pastikan semua tanggal di [start, end] tersedia di cache
func (s *Service) EnsureImages(ctx context.Context, res *reservoirs.Reservoir, start, end time.Time, folder string) (*Result, error) {
	existing, err := s.Images.ListByRange(ctx, res.ID, start, end)
	if err != nil {
		return nil, fmt.Errorf("listing cached images: %w", err)
	}

	plan := &requests.AcquisitionPlan{}
	gapStart, gapEnd, hasGap := computeGap(existing, start, end)
	if !hasGap {
		log.Printf("reservoir=%d cache already covers range %s..%s, skipping remote acquisition",
			res.ID, start.Format(time.DateOnly), end.Format(time.DateOnly))
		return &Result{Images: existing, Plan: plan}, nil
	}

	log.Printf("reservoir=%d acquiring gap %s..%s", res.ID,
		gapStart.Format(time.DateOnly), gapEnd.Format(time.DateOnly))

	tasks, err := s.Provider.CreateExportTasks(ctx, res.Coordinates, gapStart, gapEnd, folder)
	if err != nil {
		return nil, fmt.Errorf("creating export tasks: %w", err)
	}
	for _, t := range tasks {
		plan.Jobs = append(plan.Jobs, requests.PlannedJob{
			JobID:           t.JobID,
			Date:            t.Date.Format(time.DateOnly),
			Filename:        t.Filename,
			CloudPercentage: t.CloudPercentage,
		})
	}

	if len(tasks) > 0 {
		if err := s.waitForJobs(ctx, tasks); err != nil {
			return nil, err
		}
		files, err := s.downloadAndStore(ctx, res.ID, folder, tasks)
		if err != nil {
			return nil, err
		}
		plan.Files = files
	} else {
		log.Printf("reservoir=%d provider found no images for %s..%s", res.ID,
			gapStart.Format(time.DateOnly), gapEnd.Format(time.DateOnly))
	}

	// baca ulang supaya hasilnya gabungan row lama + baru
	all, err := s.Images.ListByRange(ctx, res.ID, start, end)
	if err != nil {
		return nil, fmt.Errorf("listing images after acquisition: %w", err)
	}
	return &Result{Images: all, Plan: plan}, nil
}

// computeGap kebijakan gap terhadap cache:
// cache kosong -> seluruh rentang; lastCached < end -> [lastCached+1, end];
// lastCached >= end -> tidak ada gap. Gap degenerate (start == end)
// dilebarkan satu hari karena export job butuh interval non-degenerate.
func computeGap(existing []*imagery.AcquiredImage, start, end time.Time) (time.Time, time.Time, bool) {
	var last time.Time
	for _, img := range existing {
		if img.ImageDate.After(last) {
			last = img.ImageDate
		}
	}

	var gapStart time.Time
	switch {
	case last.IsZero():
		gapStart = start
	case !last.Before(end):
		return time.Time{}, time.Time{}, false
	default:
		gapStart = last.AddDate(0, 0, 1)
	}

	gapEnd := end
	if gapStart.Equal(gapEnd) {
		gapEnd = gapEnd.AddDate(0, 0, 1)
	}
	return gapStart, gapEnd, true
}

// waitForJobs poll status semua job sampai COMPLETED semua.
// Satu job FAILED/CANCELLED menggagalkan seluruh batch, tanpa partial retry.
func (s *Service) waitForJobs(ctx context.Context, tasks []imagery.ExportTask) error {
	interval := s.CheckInterval
	if interval <= 0 {
		interval = defaultCheckInterval
	}
	maxWait := s.MaxWait
	if maxWait <= 0 {
		maxWait = defaultMaxWait
	}
	deadline := s.Clock.Now().Add(maxWait)

	pending := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		pending[t.JobID] = struct{}{}
	}

	for {
		for jobID := range pending {
			status, err := s.Provider.JobStatus(ctx, jobID)
			if err != nil {
				return fmt.Errorf("checking job %s: %w", jobID, err)
			}
			switch status {
			case imagery.JobCompleted:
				delete(pending, jobID)
			case imagery.JobFailed, imagery.JobCancelled:
				return &imagery.ExportJobError{JobID: jobID, Status: status}
			}
		}
		if len(pending) == 0 {
			return nil
		}
		if s.Clock.Now().After(deadline) {
			return imagery.ErrExportTimeout
		}
		log.Printf("waiting for %d export jobs, next check in %s", len(pending), interval)
		s.Clock.Sleep(interval)
	}
}

// downloadAndStore unduh file hasil export secara paralel terbatas,
// simpan sebagai AcquiredImage (idempoten per tanggal), lalu hapus file
// remote: staging bukan penyimpanan jangka panjang.
func (s *Service) downloadAndStore(ctx context.Context, reservoirID int64, folder string, tasks []imagery.ExportTask) ([]string, error) {
	files, err := s.Blobs.List(ctx, folder)
	if err != nil {
		return nil, fmt.Errorf("listing staged files: %w", err)
	}

	type staged struct {
		name string
		task *imagery.ExportTask
		date time.Time
		data []byte
	}

	var toFetch []*staged
	for _, name := range files {
		task := matchTask(tasks, name)
		if task == nil {
			log.Printf("staged file %s matches no export job, skipping", name)
			continue
		}
		dateStr := dateRe.FindString(path.Base(name))
		if dateStr == "" {
			return nil, &imagery.DateParseError{Filename: name}
		}
		date, err := time.Parse(time.DateOnly, dateStr)
		if err != nil {
			return nil, &imagery.DateParseError{Filename: name}
		}
		toFetch = append(toFetch, &staged{name: name, task: task, date: date})
	}

	workers := s.DownloadWorkers
	if workers <= 0 {
		workers = defaultDownloadWorkers
	}

	// fan-out download, hasil masuk ke slot masing-masing (tanpa lock)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, f := range toFetch {
		g.Go(func() error {
			data, err := s.Blobs.Download(gctx, f.name)
			if err != nil {
				return fmt.Errorf("downloading %s: %w", f.name, err)
			}
			f.data = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// kelompokkan file per job: export area besar dipecah provider
	// menjadi beberapa tile yang harus digabung dulu
	byJob := make(map[string][]*staged)
	var jobOrder []string
	for _, f := range toFetch {
		if len(byJob[f.task.JobID]) == 0 {
			jobOrder = append(jobOrder, f.task.JobID)
		}
		byJob[f.task.JobID] = append(byJob[f.task.JobID], f)
	}

	var stored []string
	for _, jobID := range jobOrder {
		group := byJob[jobID]
		data := group[0].data
		if len(group) > 1 {
			blobs := make([][]byte, len(group))
			for i, f := range group {
				blobs[i] = f.data
			}
			merged, err := mergeTiles(blobs)
			if err != nil {
				return nil, fmt.Errorf("merging tiles for job %s: %w", jobID, err)
			}
			data = merged
		}

		img := &imagery.AcquiredImage{
			ReservoirID:     reservoirID,
			ImageDate:       group[0].date,
			ImageFile:       data,
			CloudPercentage: group[0].task.CloudPercentage,
		}
		_, created, err := s.Images.GetOrCreate(ctx, img)
		if err != nil {
			return nil, fmt.Errorf("storing image for job %s: %w", jobID, err)
		}
		if created {
			middleware.IncrementImagesDownloaded()
		} else {
			log.Printf("image for reservoir=%d date=%s already cached", reservoirID, group[0].date.Format(time.DateOnly))
		}

		for _, f := range group {
			if err := s.Blobs.Delete(ctx, f.name); err != nil {
				// file sudah aman di database, sisa di staging cuma sampah
				log.Printf("Warning: failed to delete staged file %s: %v", f.name, err)
			}
			stored = append(stored, f.name)
		}
	}
	return stored, nil
}

// mergeTiles gabungkan tile-tile satu export job jadi satu raster
func mergeTiles(blobs [][]byte) ([]byte, error) {
	tiles := make([]*raster.Raster, 0, len(blobs))
	for _, b := range blobs {
		t, err := raster.Decode(b)
		if err != nil {
			return nil, err
		}
		tiles = append(tiles, t)
	}
	merged, err := raster.Merge(tiles)
	if err != nil {
		return nil, err
	}
	return merged.Encode(), nil
}

// matchTask cocokkan file staging ke job berdasarkan nama file
func matchTask(tasks []imagery.ExportTask, name string) *imagery.ExportTask {
	base := path.Base(name)
	for i := range tasks {
		if strings.HasPrefix(base, tasks[i].Filename) {
			return &tasks[i]
		}
	}
	return nil
}
