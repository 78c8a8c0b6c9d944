package handlers

import (
	"time"

	"github.com/sbms-academy/server/internal/domain/events"
	"github.com/sbms-academy/server/internal/domain/leads"
	"github.com/sbms-academy/server/internal/domain/profiles"
	"github.com/sbms-academy/server/internal/domain/registrations"
)

// Response bodies use the snake_case field names the dashboard and the
// marketing site already consume.

type participantResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email,omitempty"`
	FullName     string `json:"full_name"`
	Number       string `json:"number"`
	InstaID      string `json:"insta_id,omitempty"`
	Organisation string `json:"organisation,omitempty"`
	PhotoURL     string `json:"photo_url,omitempty"`
}

type eventSummaryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	ImageURL  string    `json:"image_url,omitempty"`
}

type sessionSummaryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Cost      *float64  `json:"cost"`
	UPILink   string    `json:"upi_link,omitempty"`
}

type registrationResponse struct {
	ID               string                  `json:"id"`
	UserID           string                  `json:"user_id"`
	EventID          string                  `json:"event_id"`
	SessionID        *string                 `json:"session_id"`
	Reference        string                  `json:"registration_reference"`
	PaymentStatus    string                  `json:"payment_status"`
	MarketingConsent bool                    `json:"marketing_consent"`
	QRCodeURL        string                  `json:"qr_code_url,omitempty"`
	IDCardURL        string                  `json:"id_card_url,omitempty"`
	CreatedAt        time.Time               `json:"created_at"`
	User             *participantResponse    `json:"users,omitempty"`
	Event            *eventSummaryResponse   `json:"events,omitempty"`
	Session          *sessionSummaryResponse `json:"sessions,omitempty"`
}

func toRegistrationResponse(reg registrations.Registration) registrationResponse {
	out := registrationResponse{
		ID:               reg.ID,
		UserID:           reg.UserID,
		EventID:          reg.EventID,
		SessionID:        reg.SessionID,
		Reference:        reg.Reference,
		PaymentStatus:    reg.PaymentStatus,
		MarketingConsent: reg.MarketingConsent,
		QRCodeURL:        reg.QRCodeURL,
		IDCardURL:        reg.IDCardURL,
		CreatedAt:        reg.CreatedAt,
	}
	if u := reg.User; u != nil {
		out.User = &participantResponse{
			ID:           u.ID,
			Email:        u.Email,
			FullName:     u.FullName,
			Number:       u.Number,
			InstaID:      u.InstaID,
			Organisation: u.Organisation,
			PhotoURL:     u.PhotoURL,
		}
	}
	if e := reg.Event; e != nil {
		out.Event = &eventSummaryResponse{ID: e.ID, Name: e.Name, StartTime: e.StartTime, ImageURL: e.ImageURL}
	}
	if s := reg.Session; s != nil {
		out.Session = &sessionSummaryResponse{
			ID:        s.ID,
			Name:      s.Name,
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
			Cost:      s.Cost,
			UPILink:   s.UPILink,
		}
	}
	return out
}

func toRegistrationResponses(regs []registrations.Registration) []registrationResponse {
	out := make([]registrationResponse, 0, len(regs))
	for _, reg := range regs {
		out = append(out, toRegistrationResponse(reg))
	}
	return out
}

type sessionResponse struct {
	ID               string    `json:"id"`
	EventID          string    `json:"event_id"`
	Name             string    `json:"name"`
	Description      string    `json:"description,omitempty"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	Cost             *float64  `json:"cost"`
	Currency         string    `json:"currency,omitempty"`
	ImageURL         string    `json:"image_url,omitempty"`
	RegistrationLink string    `json:"registration_link,omitempty"`
	UPILink          string    `json:"upi_link,omitempty"`
}

type eventResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Venue       string            `json:"venue"`
	Location    string            `json:"location"`
	ImageURL    string            `json:"image_url,omitempty"`
	StartTime   time.Time         `json:"start_time"`
	EndTime     *time.Time        `json:"end_time"`
	Sessions    []sessionResponse `json:"sessions,omitempty"`
}

func toSessionResponse(s events.Session) sessionResponse {
	return sessionResponse{
		ID:               s.ID,
		EventID:          s.EventID,
		Name:             s.Name,
		Description:      s.Description,
		StartTime:        s.StartTime,
		EndTime:          s.EndTime,
		Cost:             s.Cost,
		Currency:         s.Currency,
		ImageURL:         s.ImageURL,
		RegistrationLink: s.RegistrationLink,
		UPILink:          s.UPILink,
	}
}

func toSessionResponses(sessions []events.Session) []sessionResponse {
	out := make([]sessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, toSessionResponse(s))
	}
	return out
}

func toEventResponse(e events.Event) eventResponse {
	out := eventResponse{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		Venue:       e.Venue,
		Location:    e.Location,
		ImageURL:    e.ImageURL,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
	}
	if len(e.Sessions) > 0 {
		out.Sessions = toSessionResponses(e.Sessions)
	}
	return out
}

type profileResponse struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	FullName         string    `json:"full_name"`
	Number           string    `json:"number"`
	InstaID          string    `json:"insta_id"`
	Organisation     string    `json:"organisation"`
	Age              *int      `json:"age"`
	Gender           string    `json:"gender"`
	Role             string    `json:"role,omitempty"`
	MarketingConsent bool      `json:"marketing_consent"`
	TermsAccepted    bool      `json:"terms_accepted"`
	PhotoURL         string    `json:"photo_url,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func toProfileResponse(p profiles.Profile) profileResponse {
	return profileResponse{
		ID:               p.ID,
		Email:            p.Email,
		FullName:         p.FullName,
		Number:           p.Number,
		InstaID:          p.InstaID,
		Organisation:     p.Organisation,
		Age:              p.Age,
		Gender:           p.Gender,
		Role:             p.Role,
		MarketingConsent: p.MarketingConsent,
		TermsAccepted:    p.TermsAccepted,
		PhotoURL:         p.PhotoURL,
		UpdatedAt:        p.UpdatedAt,
	}
}

type interactionResponse struct {
	ID          string     `json:"id"`
	LeadID      string     `json:"lead_id"`
	Type        string     `json:"interaction_type"`
	Status      string     `json:"status"`
	Notes       string     `json:"notes"`
	FollowUpAt  *time.Time `json:"follow_up_at,omitempty"`
	ContactedBy *employee  `json:"contacted_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type employee struct {
	ID       string `json:"id"`
	FullName string `json:"full_name,omitempty"`
	Role     string `json:"role,omitempty"`
}

type leadResponse struct {
	ID           string                `json:"id"`
	Name         string                `json:"name,omitempty"`
	Number       string                `json:"number"`
	InstaID      string                `json:"insta_id,omitempty"`
	Source       string                `json:"source,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
	Interactions []interactionResponse `json:"lead_interactions"`
}

func toInteractionResponse(i leads.Interaction) interactionResponse {
	out := interactionResponse{
		ID:         i.ID,
		LeadID:     i.LeadID,
		Type:       i.Type,
		Status:     i.Status,
		Notes:      i.Notes,
		FollowUpAt: i.FollowUpAt,
		CreatedAt:  i.CreatedAt,
	}
	if i.ContactedBy != "" {
		out.ContactedBy = &employee{ID: i.ContactedBy, FullName: i.ContactedByName, Role: i.ContactedByRole}
	}
	return out
}

func toLeadResponse(l leads.Lead) leadResponse {
	out := leadResponse{
		ID:           l.ID,
		Name:         l.Name,
		Number:       l.Number,
		InstaID:      l.InstaID,
		Source:       l.Source,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
		Interactions: make([]interactionResponse, 0, len(l.Interactions)),
	}
	for _, i := range l.Interactions {
		out.Interactions = append(out.Interactions, toInteractionResponse(i))
	}
	return out
}
