package service

import (
	"context"
	"errors"
	"nutrivida/clinic-app/internal/domain"
	"nutrivida/clinic-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrReceiverNotFound     = errors.New("message receiver not found")
)

// Conversation is one thread in a user's inbox.
type Conversation struct {
	Partner     domain.User      `json:"partner"`
	LastMessage *domain.Message  `json:"lastMessage,omitempty"`
	Unread      int              `json:"unread"`
}

type NotificationService interface {
	Notify(ctx context.Context, userID primitive.ObjectID, title, message, kind string) error
	GetNotifications(ctx context.Context, userID primitive.ObjectID, unreadOnly bool) ([]domain.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID primitive.ObjectID) error
	MarkAllRead(ctx context.Context, userID primitive.ObjectID) error
	CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error)
	DeleteNotification(ctx context.Context, userID, notificationID primitive.ObjectID) error

	SendMessage(ctx context.Context, senderID, receiverID primitive.ObjectID, content string) (*domain.Message, error)
	GetConversation(ctx context.Context, userID, partnerID primitive.ObjectID) ([]domain.Message, error)
	GetConversations(ctx context.Context, userID primitive.ObjectID) ([]Conversation, error)
	CountUnreadMessages(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

// notificationService implements the NotificationService interface.
type notificationService struct {
	notificationRepo repository.NotificationRepository
	messageRepo      repository.MessageRepository
	userRepo         repository.UserRepository
}

// NewNotificationService creates a new instance of notificationService.
func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		messageRepo:      messageRepo,
		userRepo:         userRepo,
	}
}

func (s *notificationService) Notify(ctx context.Context, userID primitive.ObjectID, title, message, kind string) error {
	if title == "" || message == "" {
		return errors.New("notification title and message cannot be empty")
	}
	_, err := s.notificationRepo.Create(ctx, &domain.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    kind,
	})
	return err
}

func (s *notificationService) GetNotifications(ctx context.Context, userID primitive.ObjectID, unreadOnly bool) ([]domain.Notification, error) {
	return s.notificationRepo.GetByUserID(ctx, userID, unreadOnly)
}

// MarkRead flags one notification as read. The notification must belong
// to the calling user.
func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID primitive.ObjectID) error {
	notifications, err := s.notificationRepo.GetByUserID(ctx, userID, false)
	if err != nil {
		return err
	}
	for _, n := range notifications {
		if n.ID == notificationID {
			return s.notificationRepo.MarkRead(ctx, notificationID)
		}
	}
	return ErrNotificationNotFound
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID primitive.ObjectID) error {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}

func (s *notificationService) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.notificationRepo.CountUnread(ctx, userID)
}

// DeleteNotification removes one of the calling user's notifications.
func (s *notificationService) DeleteNotification(ctx context.Context, userID, notificationID primitive.ObjectID) error {
	if err := s.notificationRepo.Delete(ctx, userID, notificationID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	return nil
}

// SendMessage writes a message and drops a notification into the
// receiver's feed.
func (s *notificationService) SendMessage(ctx context.Context, senderID, receiverID primitive.ObjectID, content string) (*domain.Message, error) {
	if content == "" {
		return nil, errors.New("message content cannot be empty")
	}

	sender, err := s.userRepo.GetByID(ctx, senderID)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, receiverID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReceiverNotFound
		}
		return nil, err
	}

	msg := &domain.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
	}
	id, err := s.messageRepo.Create(ctx, msg)
	if err != nil {
		return nil, err
	}
	msg.ID = id

	_, _ = s.notificationRepo.Create(ctx, &domain.Notification{
		UserID:  receiverID,
		Title:   "Nuevo mensaje",
		Message: "Tienes un mensaje de " + sender.FullName() + ".",
		Type:    "message",
	})
	return msg, nil
}

// GetConversation returns the thread with a partner and marks the
// partner's messages as read.
func (s *notificationService) GetConversation(ctx context.Context, userID, partnerID primitive.ObjectID) ([]domain.Message, error) {
	messages, err := s.messageRepo.GetConversation(ctx, userID, partnerID)
	if err != nil {
		return nil, err
	}
	if err := s.messageRepo.MarkConversationRead(ctx, userID, partnerID); err != nil {
		return nil, err
	}
	return messages, nil
}

// GetConversations lists every thread of a user's inbox with its last
// message and unread count.
func (s *notificationService) GetConversations(ctx context.Context, userID primitive.ObjectID) ([]Conversation, error) {
	partners, err := s.messageRepo.GetPartners(ctx, userID)
	if err != nil {
		return nil, err
	}

	conversations := make([]Conversation, 0, len(partners))
	for _, pid := range partners {
		partner, err := s.userRepo.GetByID(ctx, pid)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, err
		}
		partner.PasswordHash = ""

		messages, err := s.messageRepo.GetConversation(ctx, userID, pid)
		if err != nil {
			return nil, err
		}

		conv := Conversation{Partner: *partner}
		if len(messages) > 0 {
			last := messages[len(messages)-1]
			conv.LastMessage = &last
		}
		for _, m := range messages {
			if m.ReceiverID == userID && !m.Read {
				conv.Unread++
			}
		}
		conversations = append(conversations, conv)
	}
	return conversations, nil
}

func (s *notificationService) CountUnreadMessages(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.messageRepo.CountUnread(ctx, userID)
}
