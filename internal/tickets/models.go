package tickets

import (
	"fmt"
	"time"
)

// Status values mirror the Salesforce case lifecycle the mockup
// replicates; labels stay in French like the production org.
type Status string

const (
	StatusNew             Status = "nouveau"
	StatusInProgress      Status = "en_traitement"
	StatusWaitingCustomer Status = "en_attente_client"
	StatusOnHold          Status = "en_suspens"
	StatusClosed          Status = "ferme"
)

type Priority string

const (
	PriorityLow    Priority = "bas"
	PriorityMedium Priority = "moyen"
	PriorityHigh   Priority = "haut"
)

var validStatuses = map[Status]bool{
	StatusNew:             true,
	StatusInProgress:      true,
	StatusWaitingCustomer: true,
	StatusOnHold:          true,
	StatusClosed:          true,
}

var validPriorities = map[Priority]bool{
	PriorityLow:    true,
	PriorityMedium: true,
	PriorityHigh:   true,
}

type Contact struct {
	ID          int64  `json:"id"`
	FullName    string `json:"full_name"`
	AccountName string `json:"account_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	MobilePhone string `json:"mobile_phone"`
}

// Ticket is a customer case ("requête").
type Ticket struct {
	ID               int64      `json:"id"`
	Number           string     `json:"number"`
	ContactID        *int64     `json:"contact_id,omitempty"`
	Owner            string     `json:"owner"`
	Status           Status     `json:"status"`
	Priority         Priority   `json:"priority"`
	Subject          string     `json:"subject"`
	Description      string     `json:"description"`
	OpenedAt         *time.Time `json:"opened_at,omitempty"`
	ClosedAt         *time.Time `json:"closed_at,omitempty"`
	Store            string     `json:"store"`
	Classification   string     `json:"classification"`
	SubSubject       string     `json:"sub_subject"`
	ContractNumber   string     `json:"contract_number"`
	Manufacturer     string     `json:"manufacturer"`
	ProductCode      string     `json:"product_code"`
	ProductType      string     `json:"product_type"`
	SerialNumber     string     `json:"serial_number"`
	DamageType       string     `json:"damage_type"`
	DeliveryDate     *time.Time `json:"delivery_date,omitempty"`
	Origin           string     `json:"origin"`
	Language         string     `json:"language"`
	DefectiveTotal   int        `json:"defective_total"`
	DefectiveOpen    int        `json:"defective_open"`
	FromWeb          bool       `json:"from_web"`
	InternalComments string     `json:"internal_comments"`
	Solution         string     `json:"solution"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// CreateTicketRequest is the body of POST /api/tickets.
type CreateTicketRequest struct {
	Number         string   `json:"number"`
	ContactID      *int64   `json:"contact_id,omitempty"`
	Owner          string   `json:"owner"`
	Status         Status   `json:"status"`
	Priority       Priority `json:"priority"`
	Subject        string   `json:"subject"`
	Description    string   `json:"description"`
	Store          string   `json:"store"`
	Classification string   `json:"classification"`
	SubSubject     string   `json:"sub_subject"`
	ContractNumber string   `json:"contract_number"`
	Manufacturer   string   `json:"manufacturer"`
	ProductCode    string   `json:"product_code"`
	ProductType    string   `json:"product_type"`
	DamageType     string   `json:"damage_type"`
	DeliveryDate   string   `json:"delivery_date,omitempty"`
	Origin         string   `json:"origin"`
	Language       string   `json:"language"`
	FromWeb        bool     `json:"from_web"`
}

func (r *CreateTicketRequest) Validate() error {
	if r.Number == "" {
		return fmt.Errorf("number is required")
	}
	if r.Subject == "" {
		return fmt.Errorf("subject is required")
	}
	if r.Status == "" {
		r.Status = StatusNew
	}
	if !validStatuses[r.Status] {
		return fmt.Errorf("invalid status %q", r.Status)
	}
	if r.Priority == "" {
		r.Priority = PriorityMedium
	}
	if !validPriorities[r.Priority] {
		return fmt.Errorf("invalid priority %q", r.Priority)
	}
	if r.DeliveryDate != "" {
		if _, err := time.Parse("2006-01-02", r.DeliveryDate); err != nil {
			return fmt.Errorf("delivery_date must be YYYY-MM-DD")
		}
	}
	if r.Language == "" {
		r.Language = "Français"
	}
	return nil
}

// UpdateStatusRequest is the body of POST /api/tickets/{number}/status.
type UpdateStatusRequest struct {
	Status Status `json:"status"`
}

func (r *UpdateStatusRequest) Validate() error {
	if !validStatuses[r.Status] {
		return fmt.Errorf("invalid status %q", r.Status)
	}
	return nil
}
