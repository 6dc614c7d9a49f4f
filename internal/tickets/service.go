package tickets

import (
	"context"
	"time"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) List(ctx context.Context) ([]Ticket, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, number string) (*Ticket, error) {
	return s.repo.GetByNumber(ctx, number)
}

func (s *Service) Create(ctx context.Context, req *CreateTicketRequest) (*Ticket, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	opened := s.now()
	t := &Ticket{
		Number:         req.Number,
		ContactID:      req.ContactID,
		Owner:          req.Owner,
		Status:         req.Status,
		Priority:       req.Priority,
		Subject:        req.Subject,
		Description:    req.Description,
		OpenedAt:       &opened,
		Store:          req.Store,
		Classification: req.Classification,
		SubSubject:     req.SubSubject,
		ContractNumber: req.ContractNumber,
		Manufacturer:   req.Manufacturer,
		ProductCode:    req.ProductCode,
		ProductType:    req.ProductType,
		DamageType:     req.DamageType,
		Origin:         req.Origin,
		Language:       req.Language,
		FromWeb:        req.FromWeb,
	}

	if req.DeliveryDate != "" {
		d, err := time.Parse("2006-01-02", req.DeliveryDate)
		if err != nil {
			return nil, err
		}
		t.DeliveryDate = &d
	}

	if _, err := s.repo.Insert(ctx, t); err != nil {
		return nil, err
	}

	return s.repo.GetByNumber(ctx, t.Number)
}

// SetStatus updates a ticket's status, stamping closed_at when the
// ticket is closed and clearing it otherwise.
func (s *Service) SetStatus(ctx context.Context, number string, req *UpdateStatusRequest) (*Ticket, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var closedAt *time.Time
	if req.Status == StatusClosed {
		now := s.now()
		closedAt = &now
	}

	return s.repo.UpdateStatus(ctx, number, req.Status, closedAt)
}

func (s *Service) CreateContact(ctx context.Context, c *Contact) (*Contact, error) {
	id, err := s.repo.InsertContact(ctx, c)
	if err != nil {
		return nil, err
	}
	c.ID = id
	return c, nil
}
