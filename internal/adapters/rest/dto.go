package rest

import (
	"time"

	"homiio/internal/core/domain"

	"github.com/google/uuid"
)

// PaginationResponse - метаданные страницы.
type PaginationResponse struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

type PaginatedResponse[T any] struct {
	Items      []T                `json:"items"`
	Pagination PaginationResponse `json:"pagination"`
}

func toPaginated[S any, T any](p *domain.Paginated[S], mapFn func(S) T) PaginatedResponse[T] {
	items := make([]T, len(p.Items))
	for i, item := range p.Items {
		items[i] = mapFn(item)
	}
	return PaginatedResponse[T]{
		Items: items,
		Pagination: PaginationResponse{
			Page:       p.Page,
			PerPage:    p.PerPage,
			Total:      p.TotalCount,
			TotalPages: p.TotalPages(),
		},
	}
}

func mapSlice[S any, T any](in []S, mapFn func(S) T) []T {
	out := make([]T, len(in))
	for i, item := range in {
		out[i] = mapFn(item)
	}
	return out
}

// --- профили ---

type ProfileRequest struct {
	Type         domain.ProfileType     `json:"type"`
	DisplayName  *string                `json:"display_name"`
	Bio          *string                `json:"bio"`
	ContactEmail *string                `json:"contact_email"`
	ContactPhone *string                `json:"contact_phone"`
	AvatarURL    *string                `json:"avatar_url"`
	Details      *domain.ProfileDetails `json:"details"`
}

func (req ProfileRequest) toInput() domain.ProfileInput {
	return domain.ProfileInput{
		Type:         req.Type,
		DisplayName:  req.DisplayName,
		Bio:          req.Bio,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		AvatarURL:    req.AvatarURL,
		Details:      req.Details,
	}
}

type ProfileResponse struct {
	ID           uuid.UUID             `json:"id"`
	OxyUserID    string                `json:"oxy_user_id"`
	Type         domain.ProfileType    `json:"type"`
	DisplayName  string                `json:"display_name"`
	Bio          string                `json:"bio"`
	ContactEmail string                `json:"contact_email,omitempty"`
	ContactPhone string                `json:"contact_phone,omitempty"`
	AvatarURL    string                `json:"avatar_url,omitempty"`
	Details      domain.ProfileDetails `json:"details"`
	IsPrimary    bool                  `json:"is_primary"`
	IsActive     bool                  `json:"is_active"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

func toProfileResponse(p domain.Profile) ProfileResponse {
	return ProfileResponse{
		ID:           p.ID,
		OxyUserID:    p.OxyUserID,
		Type:         p.Type,
		DisplayName:  p.DisplayName,
		Bio:          p.Bio,
		ContactEmail: p.ContactEmail,
		ContactPhone: p.ContactPhone,
		AvatarURL:    p.AvatarURL,
		Details:      p.Details,
		IsPrimary:    p.IsPrimary,
		IsActive:     p.IsActive,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

type MeResponse struct {
	User    *domain.Identity `json:"user"`
	Profile ProfileResponse  `json:"profile"`
}

type SavePropertyRequest struct {
	Notes string `json:"notes"`
}

// --- объекты ---

type PropertyRequest struct {
	Title          *string                `json:"title"`
	Description    *string                `json:"description"`
	Type           *domain.PropertyType   `json:"type"`
	Address        *domain.Address        `json:"address"`
	Location       *domain.Location       `json:"location"`
	Bedrooms       *int                   `json:"bedrooms"`
	Bathrooms      *int                   `json:"bathrooms"`
	SquareMeters   *float64               `json:"square_meters"`
	Floor          *int                   `json:"floor"`
	Rent           *domain.Rent           `json:"rent"`
	Amenities      []string               `json:"amenities"`
	Images         []string               `json:"images"`
	Status         *domain.PropertyStatus `json:"status"`
	AvailableFrom  *string                `json:"available_from"`
	IsFurnished    *bool                  `json:"is_furnished"`
	PetsAllowed    *bool                  `json:"pets_allowed"`
	SmokingAllowed *bool                  `json:"smoking_allowed"`
}

func (req PropertyRequest) toInput() (domain.PropertyInput, error) {
	in := domain.PropertyInput{
		Title:          req.Title,
		Description:    req.Description,
		Type:           req.Type,
		Address:        req.Address,
		Location:       req.Location,
		Bedrooms:       req.Bedrooms,
		Bathrooms:      req.Bathrooms,
		SquareMeters:   req.SquareMeters,
		Floor:          req.Floor,
		Rent:           req.Rent,
		Amenities:      req.Amenities,
		Images:         req.Images,
		Status:         req.Status,
		IsFurnished:    req.IsFurnished,
		PetsAllowed:    req.PetsAllowed,
		SmokingAllowed: req.SmokingAllowed,
	}
	if req.AvailableFrom != nil && *req.AvailableFrom != "" {
		t, err := parseDate(*req.AvailableFrom)
		if err != nil {
			return in, domain.NewValidation("validation failed", map[string]string{"available_from": "must be YYYY-MM-DD or RFC3339"})
		}
		in.AvailableFrom = &t
	}
	return in, nil
}

type PropertyResponse struct {
	ID             uuid.UUID             `json:"id"`
	OwnerProfileID uuid.UUID             `json:"owner_profile_id"`
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	Type           domain.PropertyType   `json:"type"`
	Address        domain.Address        `json:"address"`
	Location       *domain.Location      `json:"location,omitempty"`
	Bedrooms       int                   `json:"bedrooms"`
	Bathrooms      int                   `json:"bathrooms"`
	SquareMeters   float64               `json:"square_meters"`
	Floor          *int                  `json:"floor,omitempty"`
	Rent           domain.Rent           `json:"rent"`
	Amenities      []string              `json:"amenities"`
	Images         []string              `json:"images"`
	Status         domain.PropertyStatus `json:"status"`
	AvailableFrom  *time.Time            `json:"available_from,omitempty"`
	IsFurnished    bool                  `json:"is_furnished"`
	PetsAllowed    bool                  `json:"pets_allowed"`
	SmokingAllowed bool                  `json:"smoking_allowed"`
	ViewsCount     int64                 `json:"views_count"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

func toPropertyResponse(p domain.Property) PropertyResponse {
	return PropertyResponse{
		ID:             p.ID,
		OwnerProfileID: p.OwnerProfileID,
		Title:          p.Title,
		Description:    p.Description,
		Type:           p.Type,
		Address:        p.Address,
		Location:       p.Location,
		Bedrooms:       p.Bedrooms,
		Bathrooms:      p.Bathrooms,
		SquareMeters:   p.SquareMeters,
		Floor:          p.Floor,
		Rent:           p.Rent,
		Amenities:      nonNilStrings(p.Amenities),
		Images:         nonNilStrings(p.Images),
		Status:         p.Status,
		AvailableFrom:  p.AvailableFrom,
		IsFurnished:    p.IsFurnished,
		PetsAllowed:    p.PetsAllowed,
		SmokingAllowed: p.SmokingAllowed,
		ViewsCount:     p.ViewsCount,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// --- комнаты ---

type RoomRequest struct {
	Name         *string            `json:"name"`
	Type         *domain.RoomType   `json:"type"`
	SizeSqm      *float64           `json:"size_sqm"`
	MaxOccupants *int               `json:"max_occupants"`
	RentAmount   *float64           `json:"rent_amount"`
	RentCurrency *string            `json:"rent_currency"`
	Amenities    []string           `json:"amenities"`
	Images       []string           `json:"images"`
	Status       *domain.RoomStatus `json:"status"`
}

func (req RoomRequest) toInput() domain.RoomInput {
	return domain.RoomInput{
		Name:         req.Name,
		Type:         req.Type,
		SizeSqm:      req.SizeSqm,
		MaxOccupants: req.MaxOccupants,
		RentAmount:   req.RentAmount,
		RentCurrency: req.RentCurrency,
		Amenities:    req.Amenities,
		Images:       req.Images,
		Status:       req.Status,
	}
}

type RoomResponse struct {
	ID           uuid.UUID         `json:"id"`
	PropertyID   uuid.UUID         `json:"property_id"`
	Name         string            `json:"name"`
	Type         domain.RoomType   `json:"type"`
	SizeSqm      float64           `json:"size_sqm"`
	MaxOccupants int               `json:"max_occupants"`
	RentAmount   float64           `json:"rent_amount"`
	RentCurrency string            `json:"rent_currency"`
	Amenities    []string          `json:"amenities"`
	Images       []string          `json:"images"`
	Status       domain.RoomStatus `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func toRoomResponse(rm domain.Room) RoomResponse {
	return RoomResponse{
		ID:           rm.ID,
		PropertyID:   rm.PropertyID,
		Name:         rm.Name,
		Type:         rm.Type,
		SizeSqm:      rm.SizeSqm,
		MaxOccupants: rm.MaxOccupants,
		RentAmount:   rm.RentAmount,
		RentCurrency: rm.RentCurrency,
		Amenities:    nonNilStrings(rm.Amenities),
		Images:       nonNilStrings(rm.Images),
		Status:       rm.Status,
		CreatedAt:    rm.CreatedAt,
		UpdatedAt:    rm.UpdatedAt,
	}
}

// --- договоры ---

type LeaseRequest struct {
	PropertyID      *uuid.UUID `json:"property_id"`
	RoomID          *uuid.UUID `json:"room_id"`
	TenantProfileID *uuid.UUID `json:"tenant_profile_id"`
	StartDate       *string    `json:"start_date"`
	EndDate         *string    `json:"end_date"`
	RentAmount      *float64   `json:"rent_amount"`
	RentCurrency    *string    `json:"rent_currency"`
	Deposit         *float64   `json:"deposit"`
	PaymentDueDay   *int       `json:"payment_due_day"`
	Terms           *string    `json:"terms"`
}

func (req LeaseRequest) toInput() (domain.LeaseInput, error) {
	in := domain.LeaseInput{
		PropertyID:      req.PropertyID,
		RoomID:          req.RoomID,
		TenantProfileID: req.TenantProfileID,
		RentAmount:      req.RentAmount,
		RentCurrency:    req.RentCurrency,
		Deposit:         req.Deposit,
		PaymentDueDay:   req.PaymentDueDay,
		Terms:           req.Terms,
	}
	errs := domain.ValidationErrors{}
	if req.StartDate != nil {
		if t, err := parseDate(*req.StartDate); err != nil {
			errs.Add("start_date", "must be YYYY-MM-DD or RFC3339")
		} else {
			in.StartDate = &t
		}
	}
	if req.EndDate != nil {
		if t, err := parseDate(*req.EndDate); err != nil {
			errs.Add("end_date", "must be YYYY-MM-DD or RFC3339")
		} else {
			in.EndDate = &t
		}
	}
	if len(errs) > 0 {
		return in, domain.NewValidation("validation failed", errs)
	}
	return in, nil
}

type TerminateLeaseRequest struct {
	Reason string `json:"reason"`
}

type LeaseResponse struct {
	ID                uuid.UUID          `json:"id"`
	PropertyID        uuid.UUID          `json:"property_id"`
	RoomID            *uuid.UUID         `json:"room_id,omitempty"`
	LandlordProfileID uuid.UUID          `json:"landlord_profile_id"`
	TenantProfileID   uuid.UUID          `json:"tenant_profile_id"`
	StartDate         string             `json:"start_date"`
	EndDate           string             `json:"end_date"`
	RentAmount        float64            `json:"rent_amount"`
	RentCurrency      string             `json:"rent_currency"`
	Deposit           float64            `json:"deposit"`
	PaymentDueDay     int                `json:"payment_due_day"`
	Terms             string             `json:"terms"`
	Status            domain.LeaseStatus `json:"status"`
	LandlordSignedAt  *time.Time         `json:"landlord_signed_at,omitempty"`
	TenantSignedAt    *time.Time         `json:"tenant_signed_at,omitempty"`
	TerminatedAt      *time.Time         `json:"terminated_at,omitempty"`
	TerminationReason string             `json:"termination_reason,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

func toLeaseResponse(l domain.Lease) LeaseResponse {
	return LeaseResponse{
		ID:                l.ID,
		PropertyID:        l.PropertyID,
		RoomID:            l.RoomID,
		LandlordProfileID: l.LandlordProfileID,
		TenantProfileID:   l.TenantProfileID,
		StartDate:         l.StartDate.Format("2006-01-02"),
		EndDate:           l.EndDate.Format("2006-01-02"),
		RentAmount:        l.RentAmount,
		RentCurrency:      l.RentCurrency,
		Deposit:           l.Deposit,
		PaymentDueDay:     l.PaymentDueDay,
		Terms:             l.Terms,
		Status:            l.Status,
		LandlordSignedAt:  l.LandlordSignedAt,
		TenantSignedAt:    l.TenantSignedAt,
		TerminatedAt:      l.TerminatedAt,
		TerminationReason: l.TerminationReason,
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
	}
}

// --- просмотры ---

type CreateViewingRequest struct {
	PropertyID  uuid.UUID `json:"property_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Message     string    `json:"message"`
}

type ViewingDecisionRequest struct {
	Note string `json:"note"`
}

type ViewingResponse struct {
	ID                 uuid.UUID            `json:"id"`
	PropertyID         uuid.UUID            `json:"property_id"`
	RequesterProfileID uuid.UUID            `json:"requester_profile_id"`
	OwnerProfileID     uuid.UUID            `json:"owner_profile_id"`
	ScheduledAt        time.Time            `json:"scheduled_at"`
	Message            string               `json:"message,omitempty"`
	Status             domain.ViewingStatus `json:"status"`
	DecidedAt          *time.Time           `json:"decided_at,omitempty"`
	DecisionNote       string               `json:"decision_note,omitempty"`
	CancelledBy        *uuid.UUID           `json:"cancelled_by,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

func toViewingResponse(v domain.ViewingRequest) ViewingResponse {
	return ViewingResponse{
		ID:                 v.ID,
		PropertyID:         v.PropertyID,
		RequesterProfileID: v.RequesterProfileID,
		OwnerProfileID:     v.OwnerProfileID,
		ScheduledAt:        v.ScheduledAt,
		Message:            v.Message,
		Status:             v.Status,
		DecidedAt:          v.DecidedAt,
		DecisionNote:       v.DecisionNote,
		CancelledBy:        v.CancelledBy,
		CreatedAt:          v.CreatedAt,
		UpdatedAt:          v.UpdatedAt,
	}
}

// --- уведомления ---

type NotificationListResponse struct {
	PaginatedResponse[domain.Notification]
	UnreadCount int64 `json:"unread_count"`
	Degraded    bool  `json:"degraded,omitempty"`
}

func identityNotification(n domain.Notification) domain.Notification { return n }

type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

// --- оплата ---

type CheckoutRequest struct {
	Product domain.BillingProduct `json:"product"`
}

type CheckoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

type ConfirmCheckoutRequest struct {
	SessionID string `json:"session_id"`
}

// --- ассистент ---

type ChatMessageRequest struct {
	ConversationID *uuid.UUID `json:"conversation_id"`
	Message        string     `json:"message"`
}

type ChatMessageResponse struct {
	ID             uuid.UUID       `json:"id"`
	ConversationID uuid.UUID       `json:"conversation_id"`
	Role           domain.ChatRole `json:"role"`
	Content        string          `json:"content"`
	CreatedAt      time.Time       `json:"created_at"`
}

func toChatMessageResponse(m domain.ChatMessage) ChatMessageResponse {
	return ChatMessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Role:           m.Role,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
}

type ConversationResponse struct {
	ID        uuid.UUID             `json:"id"`
	Title     string                `json:"title"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
	Messages  []ChatMessageResponse `json:"messages,omitempty"`
}

func toConversationResponse(c domain.ChatConversation) ConversationResponse {
	resp := ConversationResponse{
		ID:        c.ID,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.Messages != nil {
		resp.Messages = mapSlice(c.Messages, toChatMessageResponse)
	}
	return resp
}

type ChatReplyResponse struct {
	Conversation ConversationResponse `json:"conversation"`
	UserMessage  ChatMessageResponse  `json:"user_message"`
	Reply        ChatMessageResponse  `json:"reply"`
}
