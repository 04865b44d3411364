package contracts

import (
	"encoding/json"
	"testing"
	"time"

	"homiio/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKnownSchemasMatchEventTypes(t *testing.T) {
	assert.ElementsMatch(t, []string{
		domain.EventViewingStatusChanged + "/" + domain.EventVersionV1,
		domain.EventLeaseStatusChanged + "/" + domain.EventVersionV1,
		domain.EventPaymentSucceeded + "/" + domain.EventVersionV1,
	}, Known())
}

func TestKeyFromPath(t *testing.T) {
	assert.Equal(t, "LeaseStatusChangedEvent/1.0.0", keyFromPath("events/lease-status-changed/v1.json"))
	assert.Equal(t, "", keyFromPath("events/broken.json"))
}

func TestValidateEvent_DomainEventsPass(t *testing.T) {
	viewing := &domain.ViewingRequest{
		ID:                 uuid.New(),
		PropertyID:         uuid.New(),
		RequesterProfileID: uuid.New(),
		OwnerProfileID:     uuid.New(),
		ScheduledAt:        time.Date(2026, 11, 3, 17, 30, 0, 0, time.UTC),
		Status:             domain.ViewingPending,
	}
	lease := &domain.Lease{
		ID:                uuid.New(),
		PropertyID:        uuid.New(),
		LandlordProfileID: uuid.New(),
		TenantProfileID:   uuid.New(),
		Status:            domain.LeaseTerminated,
		TerminationReason: "relocation",
	}
	actor := lease.TenantProfileID

	events := []domain.Event{
		domain.NewViewingEvent(domain.ViewingActionRequested, viewing, "Sunny studio"),
		domain.NewLeaseEvent(domain.LeaseActionTerminated, lease, &actor),
		domain.NewLeaseEvent(domain.LeaseActionExpired, lease, nil),
		domain.PaymentSucceeded{
			EventID:    uuid.New(),
			PaymentID:  uuid.New(),
			ProfileID:  uuid.New(),
			Product:    domain.ProductFileCredits,
			Amount:     499,
			Currency:   "eur",
			OccurredAt: time.Now().UTC(),
		},
	}

	for _, e := range events {
		body, err := json.Marshal(e)
		require.NoError(t, err)
		assert.NoError(t, ValidateEvent(e.EventType(), domain.EventVersionV1, body), e.RoutingKey())
	}
}

func TestValidateEvent_Rejects(t *testing.T) {
	t.Run("unknown version", func(t *testing.T) {
		err := ValidateEvent(domain.EventLeaseStatusChanged, "2.0.0", []byte(`{}`))
		assert.ErrorContains(t, err, "not found")
	})

	t.Run("invalid json", func(t *testing.T) {
		err := ValidateEvent(domain.EventLeaseStatusChanged, domain.EventVersionV1, []byte(`{`))
		assert.ErrorContains(t, err, "not a valid JSON")
	})

	t.Run("missing fields", func(t *testing.T) {
		err := ValidateEvent(domain.EventViewingStatusChanged, domain.EventVersionV1, []byte(`{"action":"requested"}`))
		assert.ErrorContains(t, err, "schema validation failed")
	})

	t.Run("bad uuid", func(t *testing.T) {
		body := `{"event_id":"nope","payment_id":"` + uuid.NewString() + `","profile_id":"` + uuid.NewString() +
			`","product":"plus","amount":100,"currency":"EUR","occurred_at":"2026-10-01T10:00:00Z"}`
		err := ValidateEvent(domain.EventPaymentSucceeded, domain.EventVersionV1, []byte(body))
		assert.Error(t, err)
	})
}
