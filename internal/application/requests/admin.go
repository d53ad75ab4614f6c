package requests

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	domain "github.com/bryanwahyu/hydrolens/internal/domain/requests"
)

// SubmitCommand input pembuatan request analisis baru
type SubmitCommand struct {
	ModelIDs  []int64
	StartDate time.Time
	EndDate   time.Time
	CreatedBy string
}

// Submit daftarkan request baru dengan status QUEUED.
// Validasi berat (model ada, satu reservoir, dst.) terjadi saat eksekusi;
// di sini hanya cek bentuk input supaya row sampah tidak masuk antrian.
func (s *Service) Submit(ctx context.Context, cmd SubmitCommand) (*domain.AnalysisRequest, error) {
	if len(cmd.ModelIDs) == 0 {
		return nil, &domain.InvalidRequestError{Reason: "no models referenced"}
	}
	if cmd.EndDate.Before(cmd.StartDate) {
		return nil, &domain.InvalidRequestError{Reason: "end date before start date"}
	}

	req := &domain.AnalysisRequest{
		ID:        domain.RequestID(uuid.New().String()),
		ModelIDs:  cmd.ModelIDs,
		StartDate: cmd.StartDate,
		EndDate:   cmd.EndDate,
		Status:    domain.StatusQueued,
		CreatedBy: cmd.CreatedBy,
	}
	if err := s.Requests.Save(ctx, req); err != nil {
		return nil, fmt.Errorf("saving request: %w", err)
	}
	log.Printf("request=%s queued, %d models, range %s..%s",
		req.ID, len(req.ModelIDs), req.StartDate.Format(time.DateOnly), req.EndDate.Format(time.DateOnly))
	return req, nil
}

// Get satu request by id
func (s *Service) Get(ctx context.Context, id domain.RequestID) (*domain.AnalysisRequest, error) {
	return s.Requests.Get(ctx, id)
}

// List request berdasarkan status, FIFO
func (s *Service) List(ctx context.Context, status domain.Status, limit int) ([]*domain.AnalysisRequest, error) {
	return s.Requests.ListByStatus(ctx, status, limit)
}

// Cancel minta pembatalan. Efeknya kooperatif: worker yang sedang
// memegang request ini berhenti di pengecekan antar stage berikutnya.
func (s *Service) Cancel(ctx context.Context, id domain.RequestID) (*domain.AnalysisRequest, error) {
	return s.moveTo(ctx, id, domain.StatusCancelled)
}

// Requeue kembalikan request FAILED ke antrian untuk dicoba ulang.
// AnalysisGroupID yang sudah terikat dipertahankan supaya re-run
// melanjutkan group yang sama, bukan membuat duplikat.
func (s *Service) Requeue(ctx context.Context, id domain.RequestID) (*domain.AnalysisRequest, error) {
	return s.moveTo(ctx, id, domain.StatusQueued)
}

func (s *Service) moveTo(ctx context.Context, id domain.RequestID, to domain.Status) (*domain.AnalysisRequest, error) {
	req, err := s.Requests.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !req.Status.CanTransition(to) {
		return nil, &domain.InvalidTransitionError{From: req.Status, To: to}
	}
	if err := s.Requests.UpdateStatus(ctx, id, to, ""); err != nil {
		if errors.Is(err, domain.ErrTerminalStatus) {
			// row keburu terminal di antara Get dan UpdateStatus
			return nil, &domain.InvalidTransitionError{From: req.Status, To: to}
		}
		return nil, fmt.Errorf("updating status to %s: %w", to, err)
	}
	req.Status = to
	req.ErrorMessage = ""
	log.Printf("request=%s status=%s", id, to)
	return req, nil
}
