package services

import (
	"context"
	"fmt"
	"log"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/botiapp/watertruck-backend/internal/models"
	"google.golang.org/api/option"
	"gorm.io/gorm"
)

// InitFirebase initializes Firebase Cloud Messaging. Returns a nil client
// when FIREBASE_SERVICE_ACCOUNT_PATH is not set; the notifier then persists
// notifications without pushing.
func InitFirebase() (*messaging.Client, error) {
	ctx := context.Background()

	serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")
	if serviceAccountPath == "" {
		log.Println("Warning: FIREBASE_SERVICE_ACCOUNT_PATH not set. Push notifications will be disabled.")
		return nil, nil
	}

	opt := option.WithCredentialsFile(serviceAccountPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %v", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %v", err)
	}

	log.Println("Firebase Cloud Messaging initialized successfully")
	return client, nil
}

// Notifier writes in-app notification records and pushes them best-effort
// to every registered device of the recipient. It never reports failure to
// its caller; push and storage errors are logged and swallowed.
type Notifier struct {
	db     *gorm.DB
	client *messaging.Client
}

// NewNotifier creates a notifier. client may be nil (push disabled).
func NewNotifier(db *gorm.DB, client *messaging.Client) *Notifier {
	return &Notifier{db: db, client: client}
}

// Notify persists the notification, then attempts delivery to each of the
// user's registered tokens. One failed token does not affect the others.
func (n *Notifier) Notify(ctx context.Context, userID uint, title, body string) {
	notification := models.Notification{
		UserID: userID,
		Title:  title,
		Body:   body,
	}
	if err := n.db.Create(&notification).Error; err != nil {
		log.Printf("Failed to persist notification for user %d: %v", userID, err)
	}

	if n.client == nil {
		return
	}

	var subs []models.PushSubscription
	if err := n.db.Where("user_id = ?", userID).Find(&subs).Error; err != nil {
		log.Printf("Failed to load push subscriptions for user %d: %v", userID, err)
		return
	}

	for _, sub := range subs {
		message := &messaging.Message{
			Notification: &messaging.Notification{
				Title: title,
				Body:  body,
			},
			Token: sub.Token,
		}
		if _, err := n.client.Send(ctx, message); err != nil {
			log.Printf("Push failed for user %d: %v", userID, err)
		}
	}
}
