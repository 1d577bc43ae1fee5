package utils

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

var (
	FirebaseApp    *firebase.App
	FirebaseClient *messaging.Client
	firebaseOnce   sync.Once
	firebaseErr    error
)

// InitFirebase initializes the Firebase Admin SDK and FCM client once. The
// server keeps running without push notifications when credentials are absent.
func InitFirebase() error {
	firebaseOnce.Do(func() {
		ctx := context.Background()

		credentialsPath := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
		if credentialsPath == "" {
			credentialsPath = os.Getenv("FCM_CREDENTIALS_PATH")
		}
		projectID := os.Getenv("FCM_PROJECT_ID")

		if credentialsPath == "" {
			firebaseErr = fmt.Errorf("no firebase credentials configured")
			return
		}
		if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
			firebaseErr = fmt.Errorf("firebase credentials file not found: %s", credentialsPath)
			return
		}

		app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID},
			option.WithCredentialsFile(credentialsPath))
		if err != nil {
			firebaseErr = fmt.Errorf("firebase app initialization failed: %w", err)
			return
		}
		FirebaseApp = app

		client, err := app.Messaging(ctx)
		if err != nil {
			firebaseErr = fmt.Errorf("fcm client unavailable: %w", err)
			return
		}
		FirebaseClient = client
		log.Printf("✅ Firebase initialized for project %s", projectID)
	})
	return firebaseErr
}

// IsFCMEnabled reports whether push notifications can be sent.
func IsFCMEnabled() bool {
	return FirebaseClient != nil
}

// GetInitError returns the initialization failure, if any.
func GetInitError() error {
	return firebaseErr
}
