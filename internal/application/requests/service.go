package requests

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/hydrolens/internal/application/acquisition"
	"github.com/bryanwahyu/hydrolens/internal/domain/analysis"
	"github.com/bryanwahyu/hydrolens/internal/domain/imagery"
	domain "github.com/bryanwahyu/hydrolens/internal/domain/requests"
	"github.com/bryanwahyu/hydrolens/internal/domain/reservoirs"
	"github.com/bryanwahyu/hydrolens/internal/inference"
)

// ImageSource port ke koordinator akuisisi citra
type ImageSource interface {
	EnsureImages(ctx context.Context, res *reservoirs.Reservoir, start, end time.Time, folder string) (*acquisition.Result, error)
}

// InferenceRunner satu pasangan (model, scaler) siap memproses citra
type InferenceRunner interface {
	ProcessImage(imageData []byte, date time.Time) ([]byte, inference.Stats, error)
}

// Service implementasi state machine request analisis.
// Execute menjalankan satu request dari QUEUED sampai terminal state.
type Service struct {
	Requests   domain.Repository
	Reservoirs reservoirs.Repository
	Models     analysis.ModelRepository
	Groups     analysis.GroupRepository
	Analyses   analysis.Repository
	Results    analysis.ResultRepository
	Renderer   analysis.Renderer
	Acquire    ImageSource
	ChunkSize  int

	// NewEngine bisa ditukar di test; nil = engine inferensi beneran
	NewEngine func(modelFile, scalerFile []byte, chunkSize int) (InferenceRunner, error)
}

func (s *Service) newEngine(modelFile, scalerFile []byte) (InferenceRunner, error) {
	if s.NewEngine != nil {
		return s.NewEngine(modelFile, scalerFile, s.ChunkSize)
	}
	return inference.NewEngine(modelFile, scalerFile, s.ChunkSize)
}

// Execute jalankan satu request QUEUED sampai COMPLETED/FAILED.
// Urutan status: QUEUED -> DOWNLOADING_IMAGES -> PROCESSING_IMAGES -> COMPLETED.
// Error tak tertangani di stage mana pun membawa request ke FAILED; record
// parsial yang sudah dibuat tidak di-rollback (at-least-once).
func (s *Service) Execute(ctx context.Context, id domain.RequestID) error {
	req, err := s.Requests.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("loading request %s: %w", id, err)
	}
	if req.Status != domain.StatusQueued {
		log.Printf("request=%s status=%s, nothing to do", id, req.Status)
		return nil
	}

	// validasi input sebelum transisi status apa pun:
	// request tidak valid langsung QUEUED -> FAILED
	models, verr := s.loadAndValidateModels(ctx, req)
	if verr != nil {
		return s.fail(req, verr)
	}

	reservoir, err := s.Reservoirs.Get(ctx, models[0].ReservoirID)
	if err != nil {
		return s.fail(req, fmt.Errorf("loading reservoir %d: %w", models[0].ReservoirID, err))
	}

	if stop, err := s.advance(ctx, req, domain.StatusDownloadingImages); stop {
		return err
	}

	folder := exportFolder(reservoir.Name, req.ID)
	acquired, err := s.Acquire.EnsureImages(ctx, reservoir, req.StartDate, req.EndDate, folder)
	if err != nil {
		return s.fail(req, fmt.Errorf("acquiring images: %w", err))
	}

	req.Plan = acquired.Plan
	if err := s.Requests.Save(ctx, req); err != nil {
		return s.fail(req, fmt.Errorf("saving acquisition plan: %w", err))
	}

	// cancel dihormati antar stage, bukan di tengah loop
	if cancelled, err := s.cancelled(ctx, req.ID); err != nil {
		return s.fail(req, err)
	} else if cancelled {
		log.Printf("request=%s cancelled after acquisition, stopping", req.ID)
		return nil
	}

	group, err := s.ensureGroup(ctx, req, reservoir.ID)
	if err != nil {
		return s.fail(req, err)
	}

	if stop, err := s.advance(ctx, req, domain.StatusProcessingImages); stop {
		return err
	}

	if err := s.processImages(ctx, req, group, models, acquired.Images); err != nil {
		return s.fail(req, err)
	}

	if stop, err := s.advance(ctx, req, domain.StatusCompleted); stop {
		return err
	}
	log.Printf("request=%s completed, %d images processed with %d models",
		req.ID, len(acquired.Images), len(models))
	return nil
}

// loadAndValidateModels ambil semua model dan cek invariannya:
// minimal satu model, semua di reservoir yang sama, parameter tidak ganda
func (s *Service) loadAndValidateModels(ctx context.Context, req *domain.AnalysisRequest) ([]*analysis.Model, error) {
	if len(req.ModelIDs) == 0 {
		return nil, &domain.InvalidRequestError{Reason: "no models referenced"}
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, &domain.InvalidRequestError{Reason: "end date before start date"}
	}

	models := make([]*analysis.Model, 0, len(req.ModelIDs))
	seenParams := make(map[int64]bool)
	for _, mid := range req.ModelIDs {
		m, err := s.Models.Get(ctx, mid)
		if err != nil {
			return nil, fmt.Errorf("loading model %d: %w", mid, err)
		}
		if len(models) > 0 && m.ReservoirID != models[0].ReservoirID {
			return nil, &domain.InvalidRequestError{Reason: "models span more than one reservoir"}
		}
		if seenParams[m.ParameterID] {
			return nil, &domain.InvalidRequestError{Reason: fmt.Sprintf("duplicate model for parameter %d", m.ParameterID)}
		}
		seenParams[m.ParameterID] = true
		models = append(models, m)
	}
	return models, nil
}

// ensureGroup pakai group yang sudah terikat ke request kalau ada
// (re-run request FAILED tidak bikin group kedua), kalau belum buat baru
func (s *Service) ensureGroup(ctx context.Context, req *domain.AnalysisRequest, reservoirID int64) (*analysis.Group, error) {
	if req.AnalysisGroupID != 0 {
		return &analysis.Group{ID: req.AnalysisGroupID, ReservoirID: reservoirID}, nil
	}
	group := &analysis.Group{
		ReservoirID:    reservoirID,
		IdentifierCode: uuid.New().String(),
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
	}
	if err := s.Groups.CreateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("creating analysis group: %w", err)
	}
	req.AnalysisGroupID = group.ID
	if err := s.Requests.Save(ctx, req); err != nil {
		return nil, fmt.Errorf("linking analysis group: %w", err)
	}
	return group, nil
}

// processImages inferensi semua citra dengan semua model.
// Citra yang gagal dicatat lalu dilewati: satu citra jelek tidak boleh
// menjatuhkan seluruh request.
func (s *Service) processImages(ctx context.Context, req *domain.AnalysisRequest, group *analysis.Group, models []*analysis.Model, images []*imagery.AcquiredImage) error {
	type boundEngine struct {
		model  *analysis.Model
		engine InferenceRunner
	}
	engines := make([]boundEngine, 0, len(models))
	for _, m := range models {
		eng, err := s.newEngine(m.ModelFile, m.ScalerFile)
		if err != nil {
			return fmt.Errorf("loading model %d: %w", m.ID, err)
		}
		engines = append(engines, boundEngine{model: m, engine: eng})
	}

	for _, img := range images {
		a := &analysis.Analysis{
			GroupID:         group.ID,
			IdentifierCode:  uuid.New().String(),
			AnalysisDate:    img.ImageDate,
			CloudPercentage: img.CloudPercentage,
		}
		a, created, err := s.Analyses.GetOrCreateAnalysis(ctx, a)
		if err != nil {
			return fmt.Errorf("creating analysis for %s: %w", img.ImageDate.Format(time.DateOnly), err)
		}
		if !created {
			log.Printf("request=%s date=%s already analyzed in group %d", req.ID, img.ImageDate.Format(time.DateOnly), group.ID)
		}

		for _, be := range engines {
			if err := s.runInference(ctx, req, a, be.model, be.engine, img); err != nil {
				log.Printf("request=%s date=%s model=%d inference failed, continuing: %v",
					req.ID, img.ImageDate.Format(time.DateOnly), be.model.ID, err)
			}
		}
	}
	return nil
}

func (s *Service) runInference(ctx context.Context, req *domain.AnalysisRequest, a *analysis.Analysis, model *analysis.Model, engine InferenceRunner, img *imagery.AcquiredImage) error {
	out, stats, err := engine.ProcessImage(img.ImageFile, img.ImageDate)
	if err != nil {
		return err
	}

	// raster tanpa piksel valid: renderer diminta skip peta interaktifnya
	skipInteractive := stats.ValidPixels == 0
	htmlDoc, staticImage, err := s.Renderer.Render(ctx, out, img.ImageDate, model.ParameterName, skipInteractive)
	if err != nil {
		return fmt.Errorf("rendering: %w", err)
	}
	// dokumen kosong / whitespace dinormalisasi jadi "tidak ada"
	if strings.TrimSpace(htmlDoc) == "" {
		htmlDoc = ""
	}

	result := &analysis.Result{
		AnalysisID:   a.ID,
		ModelID:      model.ID,
		RasterFile:   out,
		IntensityMap: htmlDoc,
		StaticMap:    staticImage,
	}
	if err := s.Results.CreateResult(ctx, result); err != nil {
		return fmt.Errorf("saving result: %w", err)
	}
	return nil
}

func (s *Service) cancelled(ctx context.Context, id domain.RequestID) (bool, error) {
	fresh, err := s.Requests.Get(ctx, id)
	if err != nil {
		return false, fmt.Errorf("re-checking request status: %w", err)
	}
	return fresh.Status == domain.StatusCancelled, nil
}

// advance pindahkan request ke status berikutnya. stop=true artinya
// Execute harus berhenti: entah karena error (sudah direkam via fail),
// entah karena row keburu terminal di database -- operator membatalkan
// request di tengah jalan, dan cancel itu yang menang.
func (s *Service) advance(ctx context.Context, req *domain.AnalysisRequest, to domain.Status) (bool, error) {
	err := s.transition(ctx, req, to)
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, domain.ErrTerminalStatus):
		log.Printf("request=%s already terminal, stopping", req.ID)
		return true, nil
	default:
		return true, s.fail(req, err)
	}
}

func (s *Service) transition(ctx context.Context, req *domain.AnalysisRequest, to domain.Status) error {
	if !req.Status.CanTransition(to) {
		return &domain.InvalidTransitionError{From: req.Status, To: to}
	}
	if err := s.Requests.UpdateStatus(ctx, req.ID, to, ""); err != nil {
		return fmt.Errorf("updating status to %s: %w", to, err)
	}
	req.Status = to
	log.Printf("request=%s status=%s", req.ID, to)
	return nil
}

// fail bawa request ke FAILED dan rekam errornya di row request.
// Pakai context.Background() supaya penulisan status tetap jalan
// walau context eksekusi sudah dibatalkan.
func (s *Service) fail(req *domain.AnalysisRequest, cause error) error {
	log.Printf("request=%s failed: %v", req.ID, cause)
	err := s.Requests.UpdateStatus(context.Background(), req.ID, domain.StatusFailed, cause.Error())
	switch {
	case errors.Is(err, domain.ErrTerminalStatus):
		// request sudah CANCELLED/COMPLETED; jangan ditimpa FAILED
		log.Printf("request=%s already terminal, failure not recorded", req.ID)
		return cause
	case err != nil:
		log.Printf("request=%s could not record failure: %v", req.ID, err)
	}
	req.Status = domain.StatusFailed
	req.ErrorMessage = cause.Error()
	return cause
}

// exportFolder nama folder staging per eksekusi request
func exportFolder(reservoirName string, id domain.RequestID) string {
	name := strings.ToLower(strings.ReplaceAll(reservoirName, " ", "-"))
	return fmt.Sprintf("%s_%s", name, id)
}
