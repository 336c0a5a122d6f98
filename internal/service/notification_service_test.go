package service

import (
	"context"
	"errors"
	"testing"

	"nutrivida/clinic-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type notificationFixture struct {
	svc           NotificationService
	users         *fakeUserRepo
	notifications *fakeNotificationRepo
	messages      *fakeMessageRepo
}

func newNotificationFixture() *notificationFixture {
	f := &notificationFixture{
		users:         newFakeUserRepo(),
		notifications: &fakeNotificationRepo{},
		messages:      &fakeMessageRepo{},
	}
	f.svc = NewNotificationService(f.notifications, f.messages, f.users)
	return f
}

func (f *notificationFixture) seedUser(t *testing.T, firstName, email string) primitive.ObjectID {
	t.Helper()
	id, err := f.users.Create(context.Background(), &domain.User{
		FirstName: firstName,
		Email:     email,
		Role:      domain.RolePatient,
		Status:    domain.StatusActive,
	})
	if err != nil {
		t.Fatalf("seed user failed: %v", err)
	}
	return id
}

func TestMarkReadRequiresOwnership(t *testing.T) {
	f := newNotificationFixture()
	ctx := context.Background()
	owner := f.seedUser(t, "Ana", "ana@example.com")
	intruder := f.seedUser(t, "Eva", "eva@example.com")

	if err := f.svc.Notify(ctx, owner, "Recordatorio", "Registra tu peso de hoy.", "system"); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	list, _ := f.svc.GetNotifications(ctx, owner, false)
	if len(list) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(list))
	}

	if err := f.svc.MarkRead(ctx, intruder, list[0].ID); !errors.Is(err, ErrNotificationNotFound) {
		t.Fatalf("expected ErrNotificationNotFound for another user's notification, got %v", err)
	}
	if err := f.svc.MarkRead(ctx, owner, list[0].ID); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}

	unread, _ := f.svc.CountUnread(ctx, owner)
	if unread != 0 {
		t.Errorf("expected 0 unread, got %d", unread)
	}

	if err := f.svc.DeleteNotification(ctx, intruder, list[0].ID); !errors.Is(err, ErrNotificationNotFound) {
		t.Fatalf("expected ErrNotificationNotFound deleting another user's notification, got %v", err)
	}
	if err := f.svc.DeleteNotification(ctx, owner, list[0].ID); err != nil {
		t.Fatalf("DeleteNotification failed: %v", err)
	}
	list, _ = f.svc.GetNotifications(ctx, owner, false)
	if len(list) != 0 {
		t.Errorf("expected empty feed after delete, got %d", len(list))
	}
}

func TestSendMessageNotifiesReceiver(t *testing.T) {
	f := newNotificationFixture()
	ctx := context.Background()
	sender := f.seedUser(t, "Ana", "ana@example.com")
	receiver := f.seedUser(t, "Luis", "luis@example.com")

	msg, err := f.svc.SendMessage(ctx, sender, receiver, "Hola, ¿cómo va la semana?")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if msg.ID.IsZero() {
		t.Error("expected an assigned message ID")
	}

	feed, _ := f.svc.GetNotifications(ctx, receiver, true)
	if len(feed) != 1 || feed[0].Type != "message" {
		t.Fatalf("expected one message notification, got %+v", feed)
	}

	if _, err := f.svc.SendMessage(ctx, sender, primitive.NewObjectID(), "hola"); !errors.Is(err, ErrReceiverNotFound) {
		t.Fatalf("expected ErrReceiverNotFound, got %v", err)
	}
	if _, err := f.svc.SendMessage(ctx, sender, receiver, ""); err == nil {
		t.Fatal("expected an error for empty content")
	}
}

func TestGetConversationMarksRead(t *testing.T) {
	f := newNotificationFixture()
	ctx := context.Background()
	ana := f.seedUser(t, "Ana", "ana@example.com")
	luis := f.seedUser(t, "Luis", "luis@example.com")

	if _, err := f.svc.SendMessage(ctx, luis, ana, "Primera"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if _, err := f.svc.SendMessage(ctx, luis, ana, "Segunda"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	unread, _ := f.svc.CountUnreadMessages(ctx, ana)
	if unread != 2 {
		t.Fatalf("expected 2 unread messages, got %d", unread)
	}

	thread, err := f.svc.GetConversation(ctx, ana, luis)
	if err != nil {
		t.Fatalf("GetConversation failed: %v", err)
	}
	if len(thread) != 2 {
		t.Fatalf("expected 2 messages in thread, got %d", len(thread))
	}

	unread, _ = f.svc.CountUnreadMessages(ctx, ana)
	if unread != 0 {
		t.Errorf("expected 0 unread after reading the thread, got %d", unread)
	}
}

func TestGetConversationsBuildsInbox(t *testing.T) {
	f := newNotificationFixture()
	ctx := context.Background()
	ana := f.seedUser(t, "Ana", "ana@example.com")
	luis := f.seedUser(t, "Luis", "luis@example.com")
	marta := f.seedUser(t, "Marta", "marta@example.com")

	if _, err := f.svc.SendMessage(ctx, luis, ana, "Hola Ana"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if _, err := f.svc.SendMessage(ctx, ana, marta, "Hola Marta"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if _, err := f.svc.SendMessage(ctx, marta, ana, "Hola de vuelta"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	inbox, err := f.svc.GetConversations(ctx, ana)
	if err != nil {
		t.Fatalf("GetConversations failed: %v", err)
	}
	if len(inbox) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(inbox))
	}
	for _, conv := range inbox {
		if conv.LastMessage == nil {
			t.Errorf("conversation with %s has no last message", conv.Partner.FirstName)
			continue
		}
		if conv.Unread != 1 {
			t.Errorf("conversation with %s: expected 1 unread, got %d", conv.Partner.FirstName, conv.Unread)
		}
		if conv.Partner.FirstName == "Marta" && conv.LastMessage.Content != "Hola de vuelta" {
			t.Errorf("expected last message from Marta, got %q", conv.LastMessage.Content)
		}
	}
}
