package notifier

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/pulsewatch/pulsewatch/internal/models"
	"github.com/pulsewatch/pulsewatch/internal/testutil"
	"github.com/pulsewatch/pulsewatch/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDeliverer struct {
	delivered []string
	fail      bool
}

func (f *fakeDeliverer) Deliver(ctx context.Context, recipient Recipient, event types.Event) error {
	if f.fail {
		return fmt.Errorf("webhook unreachable")
	}
	f.delivered = append(f.delivered, recipient.String()+"/"+event.Reference)
	return nil
}

func testEvent(reference string) types.Event {
	return types.Event{
		Type:        types.EventIncidentNew,
		Reference:   reference,
		Title:       "Login issues",
		Description: "Impact: major",
		Timestamp:   time.Now(),
	}
}

func TestNotifyDeliversOncePerRecipient(t *testing.T) {
	db := testutil.OpenDB(t)
	fake := &fakeDeliverer{}
	n := New(db, fake)

	recipients := []Recipient{
		GuildRecipient("g1", "http://example.com/hook"),
		UserRecipient("u1", "http://example.com/hook2"),
	}

	sent, skipped := n.Notify(context.Background(), testEvent("inc-1"), recipients)
	assert.Equal(t, 2, sent)
	assert.Zero(t, skipped)
	assert.Len(t, fake.delivered, 2)

	// Same event again: the ledger suppresses every delivery.
	sent, skipped = n.Notify(context.Background(), testEvent("inc-1"), recipients)
	assert.Zero(t, sent)
	assert.Equal(t, 2, skipped)
	assert.Len(t, fake.delivered, 2)
}

func TestNotifyDistinctReferencesDeliverSeparately(t *testing.T) {
	db := testutil.OpenDB(t)
	fake := &fakeDeliverer{}
	n := New(db, fake)

	recipients := []Recipient{GuildRecipient("g1", "http://example.com/hook")}

	n.Notify(context.Background(), testEvent("inc-1"), recipients)
	sent, skipped := n.Notify(context.Background(), testEvent("inc-2"), recipients)

	assert.Equal(t, 1, sent)
	assert.Zero(t, skipped)
	assert.Len(t, fake.delivered, 2)
}

func TestNotifyFailedDeliveryIsNotRetried(t *testing.T) {
	db := testutil.OpenDB(t)
	fake := &fakeDeliverer{fail: true}
	n := New(db, fake)

	recipients := []Recipient{GuildRecipient("g1", "http://example.com/hook")}

	sent, skipped := n.Notify(context.Background(), testEvent("inc-1"), recipients)
	assert.Equal(t, 1, sent)
	assert.Zero(t, skipped)

	// The ledger row committed before the failed send, so a retry is skipped.
	fake.fail = false
	sent, skipped = n.Notify(context.Background(), testEvent("inc-1"), recipients)
	assert.Zero(t, sent)
	assert.Equal(t, 1, skipped)
	assert.Empty(t, fake.delivered)

	var count int64
	db.Model(&models.SentAlert{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestResolveRecipientsSkipsDisabledAndUnconfigured(t *testing.T) {
	db := testutil.OpenDB(t)

	require.NoError(t, db.Create(&models.GuildConfig{GuildID: "g1", WebhookURL: "http://example.com/1", Enabled: true}).Error)
	require.NoError(t, db.Create(&models.GuildConfig{GuildID: "g2", WebhookURL: "http://example.com/2", Enabled: false}).Error)
	require.NoError(t, db.Create(&models.GuildConfig{GuildID: "g3", WebhookURL: "", Enabled: true}).Error)
	require.NoError(t, db.Create(&models.UserConfig{UserID: "u1", WebhookURL: "http://example.com/3", Enabled: true}).Error)

	recipients := ResolveRecipients(db)

	require.Len(t, recipients, 2)
	assert.Equal(t, "guild:g1", recipients[0].String())
	assert.Equal(t, "user:u1", recipients[1].String())
}
