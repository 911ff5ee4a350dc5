package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/orderdesk/internal/domain/errors"
	"github.com/polkiloo/orderdesk/internal/domain/model"
	"github.com/polkiloo/orderdesk/internal/domain/repository"
	"github.com/polkiloo/orderdesk/internal/storage/files"
)

// IntakeStep identifies the question the intake dialog is waiting on.
type IntakeStep int

const (
	StepDiscipline IntakeStep = iota
	StepWorkType
	StepCustomWorkType
	StepDeadline
	StepBudgetMode
	StepBudget
	StepPlagiarismRequired
	StepPlagiarismSystem
	StepPlagiarismPercent
	StepFiles
	StepDescription
)

// maxIDAttempts bounds identifier regeneration on collision.
const maxIDAttempts = 3

// AttachmentStore is the subset of file storage the use cases depend on.
type AttachmentStore interface {
	Folder(orderID string, requesterID int64, ns files.Namespace) files.Folder
	EnsureFolder(orderID string, requesterID int64, ns files.Namespace) (files.Folder, error)
	AddFile(folder files.Folder, r io.Reader, suggestedName string) (files.StoredFile, error)
	ListFiles(folder files.Folder) ([]files.StoredFile, error)
	Move(folder files.Folder, newOrderID string, requesterID int64) (files.Folder, error)
	Purge(folder files.Folder) error
}

// IntakeSession accumulates answers of one in-flight order dialog.
type IntakeSession struct {
	RequesterID     int64
	RequesterName   string
	Step            IntakeStep
	Discipline      model.Discipline
	WorkType        model.WorkType
	CustomWork      string
	Deadline        time.Time
	RequestedBudget float64
	Plagiarism      *model.PlagiarismCheck
	Files           []string

	folder files.Folder
}

// IntakeUseCase drives the step-gated order creation dialog. One session per
// requester; answers out of step order are rejected.
type IntakeUseCase struct {
	orders repository.OrderRepository
	store  AttachmentStore

	maxActive      int
	minBudget      float64
	maxDescription int
	now            func() time.Time
	newDraftID     func() string

	mu       sync.Mutex
	sessions map[int64]*IntakeSession
}

// NewIntakeUseCase constructs IntakeUseCase.
func NewIntakeUseCase(orders repository.OrderRepository, store AttachmentStore, maxActive int, minBudget float64, maxDescription int) *IntakeUseCase {
	return &IntakeUseCase{
		orders:         orders,
		store:          store,
		maxActive:      maxActive,
		minBudget:      minBudget,
		maxDescription: maxDescription,
		now:            time.Now,
		newDraftID:     func() string { return "draft-" + uuid.NewString() },
		sessions:       make(map[int64]*IntakeSession),
	}
}

// Begin opens a new intake session. Fails when the requester already has an
// open session or has reached the active-order quota.
func (u *IntakeUseCase) Begin(ctx context.Context, requesterID int64, requesterName string) (*IntakeSession, error) {
	active, err := u.orders.CountActive(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("count active orders: %w", err)
	}
	if active >= u.maxActive {
		return nil, domainErrors.ErrQuotaExceeded
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.sessions[requesterID]; ok {
		return nil, domainErrors.ErrSessionExists
	}

	session := &IntakeSession{
		RequesterID:   requesterID,
		RequesterName: requesterName,
		Step:          StepDiscipline,
		folder:        u.store.Folder(u.newDraftID(), requesterID, files.NamespaceSubmitted),
	}
	u.sessions[requesterID] = session
	return session, nil
}

// Session returns the requester's open session, if any.
func (u *IntakeUseCase) Session(requesterID int64) (*IntakeSession, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	session, ok := u.sessions[requesterID]
	if !ok {
		return nil, domainErrors.ErrNoSession
	}
	return session, nil
}

func (u *IntakeUseCase) at(requesterID int64, step IntakeStep) (*IntakeSession, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	session, ok := u.sessions[requesterID]
	if !ok {
		return nil, domainErrors.ErrNoSession
	}
	if session.Step != step {
		return nil, domainErrors.ErrUnexpectedInput
	}
	return session, nil
}

// ChooseDiscipline answers the first dialog question.
func (u *IntakeUseCase) ChooseDiscipline(requesterID int64, discipline model.Discipline) error {
	session, err := u.at(requesterID, StepDiscipline)
	if err != nil {
		return err
	}
	if !discipline.Valid() {
		return domainErrors.NewValidation("discipline", "unknown discipline")
	}
	session.Discipline = discipline
	session.Step = StepWorkType
	return nil
}

// ChooseWorkType picks the work type. WorkTypeOther routes to the free-form
// custom work question.
func (u *IntakeUseCase) ChooseWorkType(requesterID int64, workType model.WorkType) error {
	session, err := u.at(requesterID, StepWorkType)
	if err != nil {
		return err
	}
	if !workType.Valid() {
		return domainErrors.NewValidation("work_type", "unknown work type")
	}
	session.WorkType = workType
	if workType == model.WorkTypeOther {
		session.Step = StepCustomWorkType
	} else {
		session.Step = StepDeadline
	}
	return nil
}

// SetCustomWorkType records the free-form work type when "other" was chosen.
func (u *IntakeUseCase) SetCustomWorkType(requesterID int64, text string) error {
	session, err := u.at(requesterID, StepCustomWorkType)
	if err != nil {
		return err
	}
	if len([]rune(text)) > maxCustomWorkLen {
		return domainErrors.NewValidation("work_type", "exceeds maximum length")
	}
	session.CustomWork = text
	session.Step = StepDeadline
	return nil
}

// SetDeadline parses and records the deadline.
func (u *IntakeUseCase) SetDeadline(requesterID int64, input string) error {
	session, err := u.at(requesterID, StepDeadline)
	if err != nil {
		return err
	}
	deadline, err := ParseDeadline(input, u.now())
	if err != nil {
		return err
	}
	session.Deadline = deadline
	session.Step = StepBudgetMode
	return nil
}

// ChooseBudgetMode selects between a requester-provided budget and leaving
// pricing to the fulfiller.
func (u *IntakeUseCase) ChooseBudgetMode(requesterID int64, ownBudget bool) error {
	session, err := u.at(requesterID, StepBudgetMode)
	if err != nil {
		return err
	}
	if ownBudget {
		session.Step = StepBudget
	} else {
		session.RequestedBudget = 0
		session.Step = StepPlagiarismRequired
	}
	return nil
}

// SetBudget records the requester's budget.
func (u *IntakeUseCase) SetBudget(requesterID int64, input string) error {
	session, err := u.at(requesterID, StepBudget)
	if err != nil {
		return err
	}
	amount, err := ParseBudget(input, u.minBudget)
	if err != nil {
		return err
	}
	session.RequestedBudget = amount
	session.Step = StepPlagiarismRequired
	return nil
}

// SetPlagiarismRequired answers whether an originality check is required.
func (u *IntakeUseCase) SetPlagiarismRequired(requesterID int64, required bool) error {
	session, err := u.at(requesterID, StepPlagiarismRequired)
	if err != nil {
		return err
	}
	if required {
		session.Plagiarism = &model.PlagiarismCheck{}
		session.Step = StepPlagiarismSystem
	} else {
		session.Plagiarism = nil
		session.Step = StepFiles
	}
	return nil
}

// ChoosePlagiarismSystem records which originality system applies.
func (u *IntakeUseCase) ChoosePlagiarismSystem(requesterID int64, system model.PlagiarismSystem) error {
	session, err := u.at(requesterID, StepPlagiarismSystem)
	if err != nil {
		return err
	}
	if !system.Valid() {
		return domainErrors.NewValidation("plagiarism_system", "unknown system")
	}
	session.Plagiarism.System = system
	session.Step = StepPlagiarismPercent
	return nil
}

// SetPlagiarismPercent records the minimum originality threshold.
func (u *IntakeUseCase) SetPlagiarismPercent(requesterID int64, input string) error {
	session, err := u.at(requesterID, StepPlagiarismPercent)
	if err != nil {
		return err
	}
	percent, err := ParsePercent(input)
	if err != nil {
		return err
	}
	session.Plagiarism.MinOriginality = percent
	session.Step = StepFiles
	return nil
}

// AddFile stores one attachment in the session's draft folder. A failed store
// leaves the session unchanged.
func (u *IntakeUseCase) AddFile(requesterID int64, r io.Reader, name string) (string, error) {
	session, err := u.at(requesterID, StepFiles)
	if err != nil {
		return "", err
	}
	if err := ValidateFileName(name); err != nil {
		return "", err
	}
	folder, err := u.store.EnsureFolder(session.folder.OrderID, requesterID, files.NamespaceSubmitted)
	if err != nil {
		return "", err
	}
	stored, err := u.store.AddFile(folder, r, name)
	if err != nil {
		return "", err
	}
	session.Files = append(session.Files, stored.Name)
	return stored.Name, nil
}

// FinishFiles moves the dialog from attachments to the optional description.
func (u *IntakeUseCase) FinishFiles(requesterID int64) error {
	session, err := u.at(requesterID, StepFiles)
	if err != nil {
		return err
	}
	session.Step = StepDescription
	return nil
}

// Commit finalizes the session into a persisted order. The description may be
// empty. On identifier collision the id is regenerated a bounded number of
// times; on failure the session stays open so the requester can retry.
func (u *IntakeUseCase) Commit(ctx context.Context, requesterID int64, description string) (*model.Order, error) {
	session, err := u.at(requesterID, StepDescription)
	if err != nil {
		return nil, err
	}
	if err := ValidateDescription(description, u.maxDescription); err != nil {
		return nil, err
	}

	active, err := u.orders.CountActive(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("count active orders: %w", err)
	}
	if active >= u.maxActive {
		return nil, domainErrors.ErrQuotaExceeded
	}

	now := u.now()
	var order *model.Order
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := generateOrderID(requesterID, now)

		folder, err := u.store.Move(session.folder, id, requesterID)
		if err != nil {
			return nil, err
		}
		session.folder = folder

		candidate := &model.Order{
			ID:              id,
			RequesterID:     requesterID,
			RequesterName:   session.RequesterName,
			Discipline:      session.Discipline,
			WorkType:        session.WorkType,
			CustomWork:      session.CustomWork,
			Description:     description,
			Deadline:        session.Deadline,
			CreatedAt:       now,
			RequestedBudget: session.RequestedBudget,
			Plagiarism:      session.Plagiarism,
			SubmittedFiles:  session.Files,
			Status:          model.OrderStatusNew,
		}

		err = u.orders.Create(ctx, candidate)
		if err == nil {
			order = candidate
			break
		}
		if !errors.Is(err, domainErrors.ErrDuplicateID) {
			return nil, err
		}
	}
	if order == nil {
		return nil, domainErrors.ErrDuplicateID
	}

	u.mu.Lock()
	delete(u.sessions, requesterID)
	u.mu.Unlock()
	return order, nil
}

// Cancel abandons the session and purges its draft attachments.
func (u *IntakeUseCase) Cancel(requesterID int64) error {
	u.mu.Lock()
	session, ok := u.sessions[requesterID]
	if ok {
		delete(u.sessions, requesterID)
	}
	u.mu.Unlock()
	if !ok {
		return domainErrors.ErrNoSession
	}
	return u.store.Purge(session.folder)
}

// generateOrderID yields a human-readable id: requester, day and month of
// creation, and a short random suffix.
func generateOrderID(requesterID int64, now time.Time) string {
	return fmt.Sprintf("%d-%s-%s", requesterID, now.Format("0201"), uuid.NewString()[:4])
}
